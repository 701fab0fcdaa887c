package attendance_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/leave-management/internal/attendance/postgres"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

type recordingAudit struct {
	entries []audit.Entry
}

func (a *recordingAudit) Record(_ context.Context, entry audit.Entry) error {
	a.entries = append(a.entries, entry)
	return nil
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 3, hour, minute, 0, 0, time.UTC)
}

var _ = Describe("Attendance Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		service  *attendance.Service
		recorder *recordingAudit
		worker   int64
		hr       int64
		retired  int64
	)

	createEmployee := func(email, role string, active bool) int64 {
		row := &employeeDatamodel.Employee{Email: email, Name: email, Role: role, PasswordHash: "x", IsActive: active}
		Expect(db.Create(row).Error).NotTo(HaveOccurred())
		return row.ID
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		worker = createEmployee("a-worker@example.com", "WORKER", true)
		hr = createEmployee("b-hr@example.com", "HR", true)
		retired = createEmployee("c-retired@example.com", "WORKER", false)

		recorder = &recordingAudit{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = attendance.NewService(attendancePostgres.NewAttendanceRepository(db), recorder,
			internal.AttendanceConfig{DefaultStartMinute: 9 * 60}, slogger)
		attendance.SetClock(service, func() time.Time { return at(12, 0) })
	})

	Describe("check-in and check-out", func() {
		It("moves NOT_IN to IN to OUT", func() {
			today, err := service.Today(ctx, worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(today.Status).To(Equal(attendance.StatusNotIn))
			Expect(today.Record).To(BeNil())

			rec, err := service.CheckIn(ctx, worker, at(8, 55), worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(attendance.StatusIn))
			Expect(rec.IsLate).To(BeFalse())
			Expect(rec.RecordedBy).To(BeNil())

			rec, err = service.CheckOut(ctx, worker, at(17, 30), worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(attendance.StatusOut))

			today, err = service.Today(ctx, worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(today.Status).To(Equal(attendance.StatusOut))
			Expect(recorder.entries).To(BeEmpty())
		})

		It("refuses invalid transitions", func() {
			_, err := service.CheckOut(ctx, worker, at(17, 0), worker)
			Expect(err).To(MatchError(attendance.ErrNotCheckedIn))

			_, err = service.CheckIn(ctx, worker, at(9, 0), worker)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckIn(ctx, worker, at(9, 5), worker)
			Expect(err).To(MatchError(attendance.ErrAlreadyCheckedIn))

			_, err = service.CheckOut(ctx, worker, at(17, 0), worker)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckOut(ctx, worker, at(17, 5), worker)
			Expect(err).To(MatchError(attendance.ErrAlreadyCheckedOut))
			_, err = service.CheckIn(ctx, worker, at(18, 0), worker)
			Expect(err).To(MatchError(attendance.ErrAlreadyCheckedOut))
		})

		It("starts a fresh day the next morning", func() {
			_, err := service.CheckIn(ctx, worker, at(9, 0), worker)
			Expect(err).NotTo(HaveOccurred())

			next := at(9, 0).AddDate(0, 0, 1)
			rec, err := service.CheckIn(ctx, worker, next, worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.WorkDate.String()).To(Equal("2025-03-04"))
		})

		It("measures lateness against the default start", func() {
			rec, err := service.CheckIn(ctx, worker, at(9, 20), worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.IsLate).To(BeTrue())
			Expect(rec.LateMinutes).To(Equal(20))
		})

		It("reads lateness and the work date in the office timezone", func() {
			jakarta := attendance.NewService(attendancePostgres.NewAttendanceRepository(db), recorder,
				internal.AttendanceConfig{DefaultStartMinute: 9 * 60, Timezone: "Asia/Jakarta"},
				slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))

			// 02:20 UTC is 09:20 in Jakarta
			rec, err := jakarta.CheckIn(ctx, worker, at(2, 20), worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.IsLate).To(BeTrue())
			Expect(rec.LateMinutes).To(Equal(20))
			Expect(rec.WorkDate.String()).To(Equal("2025-03-03"))

			// 20:00 UTC on the 3rd is already the 4th in Jakarta
			rec, err = jakarta.CheckIn(ctx, hr, at(20, 0), hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.WorkDate.String()).To(Equal("2025-03-04"))
			Expect(rec.IsLate).To(BeFalse())
		})

		It("measures lateness against the role schedule", func() {
			_, err := service.SetSchedule(ctx, "WORKER", attendance.SetScheduleDTO{StartTime: "09:30"}, hr)
			Expect(err).NotTo(HaveOccurred())

			rec, err := service.CheckIn(ctx, worker, at(9, 20), worker)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.IsLate).To(BeFalse())

			rec, err = service.CheckIn(ctx, hr, at(9, 20), hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.LateMinutes).To(Equal(20))
		})

		It("records and audits writes made on behalf of an employee", func() {
			rec, err := service.CheckIn(ctx, worker, at(9, 0), hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.RecordedBy).NotTo(BeNil())
			Expect(*rec.RecordedBy).To(Equal(hr))

			_, err = service.CheckOut(ctx, worker, at(17, 0), hr)
			Expect(err).NotTo(HaveOccurred())

			Expect(recorder.entries).To(HaveLen(2))
			Expect(recorder.entries[0].Action).To(Equal(audit.ActionAttendanceCheckIn))
			Expect(recorder.entries[1].Action).To(Equal(audit.ActionAttendanceCheckOut))
			Expect(recorder.entries[0].ActorID).To(Equal(hr))
		})

		It("rejects unknown and inactive employees", func() {
			_, err := service.CheckIn(ctx, 9999, at(9, 0), hr)
			Expect(err).To(MatchError(attendance.ErrEmployeeNotFound))

			_, err = service.CheckIn(ctx, retired, at(9, 0), hr)
			Expect(err).To(MatchError(attendance.ErrEmployeeInactive))
		})

		It("refuses a check-out before the check-in", func() {
			_, err := service.CheckIn(ctx, worker, at(10, 0), worker)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CheckOut(ctx, worker, at(9, 0), worker)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("team and history", func() {
		BeforeEach(func() {
			_, err := service.CheckIn(ctx, worker, at(9, 10), worker)
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists active employees with their status", func() {
			members, total, err := service.TeamToday(ctx, attendance.TeamFilter{Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(members[0].EmployeeID).To(Equal(worker))
			Expect(members[0].Status).To(Equal(attendance.StatusIn))
			Expect(members[0].LateMinutes).To(Equal(10))
			Expect(members[1].Status).To(Equal(attendance.StatusNotIn))
		})

		It("filters by status and role", func() {
			members, total, err := service.TeamToday(ctx, attendance.TeamFilter{Status: attendance.StatusNotIn, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(members[0].EmployeeID).To(Equal(hr))

			_, total, err = service.TeamToday(ctx, attendance.TeamFilter{Role: "WORKER", Status: attendance.StatusOut, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())

			_, _, err = service.TeamToday(ctx, attendance.TeamFilter{Status: "AWAY"})
			Expect(err).To(HaveOccurred())
		})

		It("returns history newest first within the range", func() {
			_, err := service.CheckIn(ctx, worker, at(9, 0).AddDate(0, 0, 1), worker)
			Expect(err).NotTo(HaveOccurred())

			records, err := service.History(ctx, worker, at(0, 0), at(0, 0).AddDate(0, 0, 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].WorkDate.String()).To(Equal("2025-03-04"))

			records, err = service.History(ctx, worker, at(0, 0).AddDate(0, 0, 1), at(0, 0).AddDate(0, 0, 1))
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))

			_, err = service.History(ctx, worker, at(0, 0), at(0, 0).AddDate(0, 0, -1))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("schedules", func() {
		It("upserts per role and validates the minute", func() {
			minute := 8 * 60
			s, err := service.SetSchedule(ctx, "WORKER", attendance.SetScheduleDTO{StartMinute: &minute}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.StartTime).To(Equal("08:00"))

			_, err = service.SetSchedule(ctx, "WORKER", attendance.SetScheduleDTO{StartTime: "10:15"}, hr)
			Expect(err).NotTo(HaveOccurred())

			list, err := service.ListSchedules(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Schedules).To(HaveLen(1))
			Expect(list.Schedules[0].StartMinute).To(Equal(615))
			Expect(list.Default.StartTime).To(Equal("09:00"))

			bad := 1440
			_, err = service.SetSchedule(ctx, "WORKER", attendance.SetScheduleDTO{StartMinute: &bad}, hr)
			Expect(err).To(HaveOccurred())
			_, err = service.SetSchedule(ctx, "INTERN", attendance.SetScheduleDTO{StartMinute: &minute}, hr)
			Expect(err).To(HaveOccurred())
			Expect(recorder.entries).To(HaveLen(2))
		})
	})

	Describe("Handler", func() {
		var handler *attendance.Handler

		withUser := func(req *http.Request, id int64, perms ...string) *http.Request {
			return req.WithContext(internal.ContextWithUser(req.Context(), &internal.User{ID: id, Permissions: perms}))
		}

		BeforeEach(func() {
			handler = attendance.NewHandler(service)
			handler.Now = func() time.Time { return at(9, 45) }
		})

		It("checks the caller in and reports a second attempt as 409", func() {
			rec := httptest.NewRecorder()
			handler.CheckIn(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil), worker))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body attendance.TimeRecord
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.LateMinutes).To(Equal(45))

			rec = httptest.NewRecorder()
			handler.CheckIn(rec, withUser(httptest.NewRequest(http.MethodPost, "/api/v1/attendance/check-in", nil), worker))
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeAlreadyCheckedIn)))
		})

		It("checks in on behalf of the employee in the path", func() {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("employeeId", "1")
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/attendance/1/check-in", nil), hr, internal.PermManageAttendance)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			handler.CheckInFor(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(recorder.entries).To(HaveLen(1))
		})

		It("only lets managers read another employee's history", func() {
			rec := httptest.NewRecorder()
			handler.History(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/history?employee_id=2", nil), worker))
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			rec = httptest.NewRecorder()
			handler.History(rec, withUser(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/history?employee_id=1&from=2025-03-01&to=2025-03-05", nil), hr, internal.PermManageAttendance))
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("sets a schedule from the role path parameter", func() {
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("role", "HR")
			req := withUser(httptest.NewRequest(http.MethodPut, "/api/v1/attendance/schedules/HR", strings.NewReader(`{"start_time":"08:30"}`)), hr)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			handler.SetSchedule(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"start_minute":510`))
		})
	})
})
