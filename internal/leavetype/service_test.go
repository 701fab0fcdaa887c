package leavetype_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/core/database"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type auditSpy struct {
	entries []audit.Entry
}

func (a *auditSpy) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func (a *auditSpy) actions() []string {
	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

var _ = Describe("LeaveType Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		spy     *auditSpy
		service *leavetype.Service
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		spy = &auditSpy{}
		service = leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(db), spy, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	create := func(code string, carry int64) *leavetype.LeaveType {
		lt, err := service.Create(ctx, leavetype.CreateLeaveTypeDTO{
			Code:             code,
			Name:             code + " leave",
			IsPaid:           true,
			MaxCarryOverDays: decimal.NewFromInt(carry),
		}, 1)
		Expect(err).NotTo(HaveOccurred())
		return lt
	}

	Describe("Create", func() {
		It("upper-cases the code and audits the creation", func() {
			lt := create(" annual ", 5)
			Expect(lt.Code).To(Equal(leavetype.CodeAnnual))
			Expect(lt.IsActive).To(BeTrue())
			Expect(spy.actions()).To(ConsistOf(audit.ActionLeaveTypeCreate))
		})

		It("rejects duplicate codes", func() {
			create("SICK", 0)
			_, err := service.Create(ctx, leavetype.CreateLeaveTypeDTO{Code: "sick", Name: "Again"}, 1)
			Expect(errors.Is(err, leavetype.ErrLeaveTypeExists)).To(BeTrue())
		})

		It("rejects malformed codes and fractional carry caps", func() {
			_, err := service.Create(ctx, leavetype.CreateLeaveTypeDTO{Code: "bad-code", Name: "x"}, 1)
			Expect(err).To(HaveOccurred())

			_, err = service.Create(ctx, leavetype.CreateLeaveTypeDTO{Code: "OK", Name: "x", MaxCarryOverDays: decimal.RequireFromString("1.25")}, 1)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update and SetActive", func() {
		It("applies partial updates", func() {
			lt := create("ANNUAL", 5)
			name := "Annual Leave"
			maxDays := 10
			updated, err := service.Update(ctx, lt.ID, leavetype.UpdateLeaveTypeDTO{Name: &name, MaxConsecutiveDays: &maxDays}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal(name))
			Expect(updated.MaxConsecutiveDays).To(Equal(10))
			Expect(updated.MaxCarryOverDays.Equal(decimal.NewFromInt(5))).To(BeTrue())
		})

		It("hides inactive types from the default listing", func() {
			annual := create("ANNUAL", 5)
			create("SICK", 0)

			_, err := service.SetActive(ctx, annual.ID, false, 1)
			Expect(err).NotTo(HaveOccurred())

			active, err := service.List(ctx, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(active).To(HaveLen(1))
			Expect(active[0].Code).To(Equal(leavetype.CodeSick))

			all, err := service.List(ctx, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))

			reactivated, err := service.SetActive(ctx, annual.ID, true, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(reactivated.IsActive).To(BeTrue())
			Expect(spy.actions()).To(ContainElements(audit.ActionLeaveTypeDeactivate, audit.ActionLeaveTypeActivate))
		})

		It("reports unknown ids", func() {
			_, err := service.SetActive(ctx, 99, true, 1)
			Expect(errors.Is(err, leavetype.ErrLeaveTypeNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("removes unreferenced types", func() {
			lt := create("PERSONAL", 0)
			Expect(service.Delete(ctx, lt.ID, 1)).To(Succeed())

			_, err := service.GetByCode(ctx, "personal")
			Expect(errors.Is(err, leavetype.ErrLeaveTypeNotFound)).To(BeTrue())
		})

		It("refuses types that quotas reference", func() {
			lt := create("ANNUAL", 5)
			Expect(db.Create(&leaveDatamodel.LeaveQuota{EmployeeID: 1, LeaveTypeID: lt.ID, Year: 2025, TotalDays: decimal.NewFromInt(12)}).Error).To(Succeed())

			err := service.Delete(ctx, lt.ID, 1)
			Expect(errors.Is(err, leavetype.ErrLeaveTypeInUse)).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var handler *leavetype.Handler

		BeforeEach(func() {
			handler = leavetype.NewHandler(service)
		})

		withUser := func(req *http.Request) *http.Request {
			return req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: 1, Role: "HR"}))
		}

		It("creates and lists leave types", func() {
			rec := httptest.NewRecorder()
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/leave-types", strings.NewReader(`{"code":"annual","name":"Annual","is_paid":true,"max_carry_over_days":"5"}`)))
			handler.CreateLeaveType(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = httptest.NewRecorder()
			handler.GetLeaveTypes(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leave-types", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"code":"ANNUAL"`))
		})

		It("looks a type up by id or by code", func() {
			lt := create("SICK", 0)
			for _, ref := range []string{strconv.FormatInt(lt.ID, 10), "sick"} {
				rctx := chi.NewRouteContext()
				rctx.URLParams.Add("id", ref)
				req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-types/"+ref, nil)
				req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

				rec := httptest.NewRecorder()
				handler.GetLeaveType(rec, req)
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Body.String()).To(ContainSubstring(`"code":"SICK"`))
			}

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "NOPE")
			req := httptest.NewRequest(http.MethodGet, "/api/v1/leave-types/NOPE", nil)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rec := httptest.NewRecorder()
			handler.GetLeaveType(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("maps a referenced delete to 409", func() {
			lt := create("SICK", 0)
			Expect(db.Create(&leaveDatamodel.LeaveQuota{EmployeeID: 1, LeaveTypeID: lt.ID, Year: 2025}).Error).To(Succeed())

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "1")
			req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/leave-types/1", nil))
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			handler.DeleteLeaveType(rec, req)
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeLeaveTypeInUse)))
		})
	})
})
