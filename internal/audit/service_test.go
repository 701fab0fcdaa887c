package audit_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/frahmantamala/leave-management/internal/audit"
	auditPostgres "github.com/frahmantamala/leave-management/internal/audit/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Audit Service", func() {
	var (
		ctx     context.Context
		bus     *events.EventBus
		service *audit.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus = events.NewEventBus(logger)
		service = audit.NewService(auditPostgres.NewAuditRepository(db), bus, logger)
	})

	Describe("Record", func() {
		It("stores the detail as JSON and announces the entry", func() {
			var (
				mu       sync.Mutex
				received []*events.AuditLoggedEvent
			)
			bus.Subscribe(events.EventTypeAuditLogged, func(_ context.Context, e events.Event) error {
				mu.Lock()
				defer mu.Unlock()
				received = append(received, e.(*events.AuditLoggedEvent))
				return nil
			})

			err := service.Record(ctx, audit.Entry{
				ActorID:    7,
				Action:     audit.ActionYearEndProcess,
				EntityType: "system_config",
				EntityID:   "2025",
				Detail:     map[string]int{"target_year": 2026},
			})
			Expect(err).NotTo(HaveOccurred())
			bus.Wait()

			logs, total, err := service.List(ctx, audit.ListFilter{Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(logs[0].Detail).To(MatchJSON(`{"target_year":2026}`))

			mu.Lock()
			defer mu.Unlock()
			Expect(received).To(HaveLen(1))
			Expect(received[0].AuditID).To(Equal(logs[0].ID))
			Expect(received[0].Action).To(Equal(audit.ActionYearEndProcess))
		})

		It("works without a publisher", func() {
			db, err := database.OpenInMemory()
			Expect(err).NotTo(HaveOccurred())
			quiet := audit.NewService(auditPostgres.NewAuditRepository(db), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

			Expect(quiet.Record(ctx, audit.Entry{ActorID: 1, Action: audit.ActionHolidayCreate, EntityType: "holiday"})).To(Succeed())
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for _, e := range []audit.Entry{
				{ActorID: 1, Action: audit.ActionLeaveApprove, EntityType: "leave_request", EntityID: "1"},
				{ActorID: 1, Action: audit.ActionLeaveReject, EntityType: "leave_request", EntityID: "2"},
				{ActorID: 2, Action: audit.ActionLeaveApprove, EntityType: "leave_request", EntityID: "3"},
			} {
				Expect(service.Record(ctx, e)).To(Succeed())
			}
		})

		It("filters by action and actor, newest first", func() {
			logs, total, err := service.List(ctx, audit.ListFilter{Action: audit.ActionLeaveApprove, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(logs[0].EntityID).To(Equal("3"))

			logs, total, err = service.List(ctx, audit.ListFilter{ActorID: 1, Limit: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(logs).To(HaveLen(1))
		})

		It("serves the trail over HTTP", func() {
			handler := audit.NewHandler(service)
			rec := httptest.NewRecorder()
			handler.ListAuditLogs(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?actor_id=2", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body struct {
				AuditLogs []audit.AuditLog `json:"audit_logs"`
				Total     int64            `json:"total"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Total).To(Equal(int64(1)))
			Expect(body.AuditLogs[0].EntityID).To(Equal("3"))
		})
	})
})
