package report_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/database"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/report"
	reportPostgres "github.com/frahmantamala/leave-management/internal/report/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Report Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *report.Service
		ana     int64
		ben     int64
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		anaRow := &employeeDatamodel.Employee{Email: "ana@example.com", Name: "Ana", Role: "WORKER", PasswordHash: "x", IsActive: true}
		benRow := &employeeDatamodel.Employee{Email: "ben@example.com", Name: "Ben", Role: "WORKER", PasswordHash: "x", IsActive: true}
		Expect(db.Create(anaRow).Error).To(Succeed())
		Expect(db.Create(benRow).Error).To(Succeed())
		ana, ben = anaRow.ID, benRow.ID

		annual := &leaveDatamodel.LeaveType{Code: "ANNUAL", Name: "Annual", IsActive: true}
		sick := &leaveDatamodel.LeaveType{Code: "SICK", Name: "Sick", IsActive: true}
		Expect(db.Create(annual).Error).To(Succeed())
		Expect(db.Create(sick).Error).To(Succeed())

		for _, q := range []*leaveDatamodel.LeaveQuota{
			{EmployeeID: ana, LeaveTypeID: annual.ID, Year: 2025, TotalDays: decimal.NewFromInt(12), UsedDays: decimal.RequireFromString("2.5")},
			{EmployeeID: ana, LeaveTypeID: sick.ID, Year: 2025, TotalDays: decimal.NewFromInt(30), UsedDays: decimal.Zero},
			{EmployeeID: ben, LeaveTypeID: annual.ID, Year: 2025, TotalDays: decimal.NewFromInt(10), UsedDays: decimal.NewFromInt(10)},
			{EmployeeID: ben, LeaveTypeID: annual.ID, Year: 2024, TotalDays: decimal.NewFromInt(8), UsedDays: decimal.Zero},
		} {
			Expect(db.Create(q).Error).To(Succeed())
		}

		checkIn := func(employeeID int64, d int, lateMinutes int) {
			at := day(d).Add(9*time.Hour + time.Duration(lateMinutes)*time.Minute)
			Expect(db.Create(&attendanceDatamodel.TimeRecord{
				EmployeeID: employeeID, WorkDate: day(d), CheckInAt: &at,
				IsLate: lateMinutes > 0, LateMinutes: lateMinutes,
			}).Error).To(Succeed())
		}
		checkIn(ana, 3, 0)
		checkIn(ana, 4, 15)
		checkIn(ana, 5, 5)
		checkIn(ben, 3, 0)
		checkIn(ben, 20, 30)

		sqlxDB, err := database.SQLX(db, database.DriverSQLite)
		Expect(err).NotTo(HaveOccurred())
		service = report.NewService(reportPostgres.NewReportRepository(sqlxDB), slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("LeaveBalances", func() {
		It("derives remaining days per employee and type", func() {
			resp, err := service.LeaveBalances(ctx, report.BalanceFilter{Year: 2025})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Rows).To(HaveLen(3))

			first := resp.Rows[0]
			Expect(first.EmployeeName).To(Equal("Ana"))
			Expect(first.LeaveTypeCode).To(Equal("ANNUAL"))
			Expect(first.RemainingDays.Equal(decimal.RequireFromString("9.5"))).To(BeTrue())
			Expect(resp.Rows[2].RemainingDays.IsZero()).To(BeTrue())
		})

		It("narrows to one employee", func() {
			resp, err := service.LeaveBalances(ctx, report.BalanceFilter{Year: 2024, EmployeeID: ben})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Rows).To(HaveLen(1))
			Expect(resp.Rows[0].TotalDays.Equal(decimal.NewFromInt(8))).To(BeTrue())
		})

		It("rejects implausible years", func() {
			_, err := service.LeaveBalances(ctx, report.BalanceFilter{Year: 1999})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AttendanceSummary", func() {
		It("counts present and late days inside the range", func() {
			resp, err := service.AttendanceSummary(ctx, day(1), day(10))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Rows).To(HaveLen(2))

			Expect(resp.Rows[0].EmployeeID).To(Equal(ana))
			Expect(resp.Rows[0].DaysPresent).To(Equal(3))
			Expect(resp.Rows[0].DaysLate).To(Equal(2))
			Expect(resp.Rows[0].LateMinutes).To(Equal(20))

			Expect(resp.Rows[1].EmployeeID).To(Equal(ben))
			Expect(resp.Rows[1].DaysPresent).To(Equal(1))
			Expect(resp.Rows[1].DaysLate).To(BeZero())
		})

		It("lists employees without records as zero", func() {
			resp, err := service.AttendanceSummary(ctx, day(25), day(28))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Rows).To(HaveLen(2))
			Expect(resp.Rows[0].DaysPresent).To(BeZero())
		})

		It("rejects reversed ranges", func() {
			_, err := service.AttendanceSummary(ctx, day(10), day(1))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Handler", func() {
		It("reads year and range from the query", func() {
			handler := report.NewHandler(service)

			rec := httptest.NewRecorder()
			handler.LeaveBalances(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/leave-balances?year=2025", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"remaining_days":"9.5"`))

			rec = httptest.NewRecorder()
			handler.AttendanceSummary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/attendance?from=2025-03-01&to=2025-03-31", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"days_late":2`))

			rec = httptest.NewRecorder()
			handler.AttendanceSummary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/attendance?from=march", nil))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
