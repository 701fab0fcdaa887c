package leave_test

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/core/database"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type sent struct {
	employeeID int64
	kind       string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (n *fakeNotifier) Notify(_ context.Context, employeeID int64, kind, _ string, _ *int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sent{employeeID, kind})
	return nil
}

func (n *fakeNotifier) NotifyMany(ctx context.Context, ids []int64, kind, message string, requestID *int64) error {
	for _, id := range ids {
		_ = n.Notify(ctx, id, kind, message, requestID)
	}
	return nil
}

func (n *fakeNotifier) kinds(employeeID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, s := range n.sent {
		if s.employeeID == employeeID {
			out = append(out, s.kind)
		}
	}
	return out
}

type staticHR []int64

func (h staticHR) ListHRIDs(context.Context) ([]int64, error) {
	return h, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) calendar.Date {
	t, err := calendar.Parse(s)
	Expect(err).NotTo(HaveOccurred())
	return calendar.Date{Time: t}
}

var _ = Describe("Leave Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		service  *leave.Service
		notifier *fakeNotifier
		worker   int64
		other    int64
		hr       int64
		annual   int64
		sick     int64
	)

	createEmployee := func(email, role string) int64 {
		row := &employeeDatamodel.Employee{Email: email, Name: email, Role: role, PasswordHash: "x", IsActive: true}
		Expect(db.Create(row).Error).NotTo(HaveOccurred())
		return row.ID
	}

	createType := func(code string, maxConsecutive int) int64 {
		row := &leaveDatamodel.LeaveType{Code: code, Name: code, IsPaid: true, MaxCarryOverDays: d("0"), MaxConsecutiveDays: maxConsecutive, IsActive: true}
		Expect(db.Create(row).Error).NotTo(HaveOccurred())
		return row.ID
	}

	grant := func(employeeID, typeID int64, total string) {
		Expect(db.Create(&leaveDatamodel.LeaveQuota{
			EmployeeID: employeeID, LeaveTypeID: typeID, Year: 2025, TotalDays: d(total), UsedDays: decimal.Zero,
		}).Error).NotTo(HaveOccurred())
	}

	loadQuota := func(employeeID, typeID int64) *leaveDatamodel.LeaveQuota {
		var q leaveDatamodel.LeaveQuota
		Expect(db.Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, typeID, 2025).First(&q).Error).NotTo(HaveOccurred())
		return &q
	}

	// Monday 3 March to Friday 7 March 2025, Wednesday is a holiday.
	weekRequest := func() leave.CreateLeaveRequestDTO {
		return leave.CreateLeaveRequestDTO{
			LeaveTypeCode: "annual",
			StartDate:     day("2025-03-03"),
			EndDate:       day("2025-03-07"),
			Reason:        "family trip",
		}
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = database.OpenInMemory()
		Expect(err).NotTo(HaveOccurred())

		worker = createEmployee("worker@example.com", "WORKER")
		other = createEmployee("other@example.com", "WORKER")
		hr = createEmployee("hr@example.com", "HR")
		annual = createType("ANNUAL", 5)
		sick = createType("SICK", 0)
		grant(worker, annual, "10")
		grant(worker, sick, "2")
		grant(other, annual, "10")

		Expect(db.Create(&leaveDatamodel.Holiday{Date: day("2025-03-05").Time, Name: "Day of Silence"}).Error).NotTo(HaveOccurred())

		store, err := storage.NewLocal(internal.StorageConfig{UploadDir: GinkgoT().TempDir(), MaxUploadBytes: 1024})
		Expect(err).NotTo(HaveOccurred())

		notifier = &fakeNotifier{}
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(leavePostgres.NewLeaveRepository(db), nil, notifier, staticHR{hr}, store, slogger)
	})

	Describe("Create", func() {
		It("counts working days without weekends or holidays and tells HR", func() {
			req, err := service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.Status).To(Equal(leave.StatusPending))
			Expect(req.LeaveTypeCode).To(Equal("ANNUAL"))
			Expect(req.TotalDaysRequested.Equal(d("4"))).To(BeTrue(), "days %s", req.TotalDaysRequested)
			Expect(notifier.kinds(hr)).To(ContainElement(notification.TypeLeaveRequested))
		})

		It("subtracts half days at the edges", func() {
			dto := weekRequest()
			dto.StartDuration = calendar.DurationHalfAfternoon
			dto.EndDuration = calendar.DurationHalfMorning

			req, err := service.Create(ctx, worker, dto, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.TotalDaysRequested.Equal(d("3"))).To(BeTrue(), "days %s", req.TotalDaysRequested)
		})

		It("enforces the consecutive day cap", func() {
			dto := weekRequest()
			dto.EndDate = day("2025-03-11")

			_, err := service.Create(ctx, worker, dto, nil)
			Expect(err).To(MatchError(leave.ErrConsecutiveExceeded))
		})

		It("refuses requests above the remaining balance", func() {
			dto := weekRequest()
			dto.LeaveTypeCode = "SICK"

			_, err := service.Create(ctx, worker, dto, nil)
			Expect(err).To(MatchError(leave.ErrInsufficientQuota))
		})

		It("refuses ranges without working days", func() {
			dto := weekRequest()
			dto.StartDate = day("2025-03-08")
			dto.EndDate = day("2025-03-09")

			_, err := service.Create(ctx, worker, dto, nil)
			Expect(err).To(MatchError(leave.ErrNoWorkingDays))
		})

		It("refuses overlapping requests", func() {
			_, err := service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())

			dto := weekRequest()
			dto.StartDate = day("2025-03-07")
			dto.EndDate = day("2025-03-10")
			_, err = service.Create(ctx, worker, dto, nil)
			Expect(err).To(MatchError(leave.ErrOverlap))
		})

		It("refuses requests in a closed year", func() {
			Expect(db.Create(&leaveDatamodel.SystemConfig{Year: 2025, IsClosed: true}).Error).NotTo(HaveOccurred())

			_, err := service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).To(MatchError(leave.ErrYearClosed))
		})

		It("refuses end dates before start dates", func() {
			dto := weekRequest()
			dto.EndDate = day("2025-03-01")

			_, err := service.Create(ctx, worker, dto, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})

		It("stores an attachment and links it", func() {
			req, err := service.Create(ctx, worker, weekRequest(), &leave.Attachment{
				Filename: "note.pdf",
				Content:  strings.NewReader("%PDF"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(req.AttachmentURL).NotTo(BeNil())
			Expect(*req.AttachmentURL).To(HavePrefix(storage.URLPrefix))
		})
	})

	Describe("decisions", func() {
		var pending *leave.LeaveRequest

		BeforeEach(func() {
			var err error
			pending, err = service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("approves and deducts the quota once", func() {
			approved, err := service.Approve(ctx, pending.ID, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(leave.StatusApproved))
			Expect(*approved.ApprovedBy).To(Equal(hr))
			Expect(loadQuota(worker, annual).UsedDays.Equal(d("4"))).To(BeTrue())
			Expect(notifier.kinds(worker)).To(ContainElement(notification.TypeLeaveApproved))

			_, err = service.Approve(ctx, pending.ID, hr)
			Expect(err).To(MatchError(leave.ErrInvalidStatus))
			Expect(loadQuota(worker, annual).UsedDays.Equal(d("4"))).To(BeTrue())
		})

		It("requires a rejection reason", func() {
			_, err := service.Reject(ctx, pending.ID, leave.ReasonDTO{Reason: ""}, hr)
			Expect(err).To(HaveOccurred())

			rejected, err := service.Reject(ctx, pending.ID, leave.ReasonDTO{Reason: "team offsite"}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(leave.StatusRejected))
			Expect(*rejected.RejectionReason).To(Equal("team offsite"))
			Expect(loadQuota(worker, annual).UsedDays.IsZero()).To(BeTrue())
		})

		It("points to special approval when the balance shrank", func() {
			Expect(db.Model(&leaveDatamodel.LeaveQuota{}).Where("employee_id = ? AND leave_type_id = ?", worker, annual).
				Update("total_days", d("1")).Error).NotTo(HaveOccurred())

			_, err := service.Approve(ctx, pending.ID, hr)
			Expect(err).To(MatchError(leave.ErrInsufficientQuota))

			approved, err := service.SpecialApprove(ctx, pending.ID, leave.SpecialApproveDTO{}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(approved.Status).To(Equal(leave.StatusApproved))

			q := loadQuota(worker, annual)
			Expect(q.TotalDays.Equal(d("4"))).To(BeTrue(), "total %s", q.TotalDays)
			Expect(q.UsedDays.Equal(d("4"))).To(BeTrue())
		})

		It("grants extra days on special approval when asked", func() {
			extra := d("2")
			_, err := service.SpecialApprove(ctx, pending.ID, leave.SpecialApproveDTO{ExtraDays: &extra}, hr)
			Expect(err).NotTo(HaveOccurred())

			q := loadQuota(worker, annual)
			Expect(q.TotalDays.Equal(d("12"))).To(BeTrue())
			Expect(q.UsedDays.Equal(d("4"))).To(BeTrue())
		})

		It("runs the withdraw cycle and refunds on acceptance", func() {
			_, err := service.Approve(ctx, pending.ID, hr)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RequestWithdraw(ctx, pending.ID, other, leave.ReasonDTO{Reason: "not mine"})
			Expect(err).To(MatchError(leave.ErrLeaveRequestNotFound))

			withdrawing, err := service.RequestWithdraw(ctx, pending.ID, worker, leave.ReasonDTO{Reason: "trip cancelled"})
			Expect(err).NotTo(HaveOccurred())
			Expect(withdrawing.Status).To(Equal(leave.StatusWithdrawPending))
			Expect(notifier.kinds(hr)).To(ContainElement(notification.TypeWithdrawRequested))

			voided, err := service.DecideWithdraw(ctx, pending.ID, true, leave.DecideWithdrawDTO{}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(voided.Status).To(Equal(leave.StatusRejected))
			Expect(*voided.CancelReason).To(Equal("trip cancelled"))
			Expect(loadQuota(worker, annual).UsedDays.IsZero()).To(BeTrue())
		})

		It("keeps the leave when a withdrawal is declined", func() {
			_, err := service.Approve(ctx, pending.ID, hr)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.RequestWithdraw(ctx, pending.ID, worker, leave.ReasonDTO{Reason: "maybe"})
			Expect(err).NotTo(HaveOccurred())

			kept, err := service.DecideWithdraw(ctx, pending.ID, false, leave.DecideWithdrawDTO{Note: "peak season"}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Status).To(Equal(leave.StatusApproved))
			Expect(loadQuota(worker, annual).UsedDays.Equal(d("4"))).To(BeTrue())
		})

		It("hides other employees' requests from workers", func() {
			_, err := service.Get(ctx, pending.ID, other, false)
			Expect(err).To(MatchError(leave.ErrLeaveRequestNotFound))

			req, err := service.Get(ctx, pending.ID, hr, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.EmployeeID).To(Equal(worker))
		})

		It("lists by owner and status", func() {
			mine, total, err := service.ListMine(ctx, worker, leave.ListFilter{Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(mine[0].ID).To(Equal(pending.ID))

			_, total, err = service.List(ctx, leave.ListFilter{Status: leave.StatusApproved, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())

			_, total, err = service.List(ctx, leave.ListFilter{Year: 2025, Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
		})
	})

	Describe("bulk decisions", func() {
		It("approves all or nothing", func() {
			first, err := service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())

			dto := weekRequest()
			second, err := service.Create(ctx, other, dto, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Reject(ctx, second.ID, leave.ReasonDTO{Reason: "coverage"}, hr)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.BulkApprove(ctx, leave.BulkDecisionDTO{IDs: []int64{first.ID, second.ID}}, hr)
			Expect(err).To(MatchError(leave.ErrInvalidStatus))

			still, err := service.Get(ctx, first.ID, hr, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(still.Status).To(Equal(leave.StatusPending))
			Expect(loadQuota(worker, annual).UsedDays.IsZero()).To(BeTrue())
		})

		It("rejects every listed request with one reason", func() {
			first, err := service.Create(ctx, worker, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())
			second, err := service.Create(ctx, other, weekRequest(), nil)
			Expect(err).NotTo(HaveOccurred())

			result, err := service.BulkReject(ctx, leave.BulkDecisionDTO{IDs: []int64{first.ID, second.ID}, Reason: "freeze"}, hr)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Processed).To(Equal(2))
			for _, req := range result.Requests {
				Expect(req.Status).To(Equal(leave.StatusRejected))
			}
		})

		It("validates the id list", func() {
			_, err := service.BulkApprove(ctx, leave.BulkDecisionDTO{IDs: []int64{1, 1}}, hr)
			Expect(err).To(HaveOccurred())
			_, err = service.BulkReject(ctx, leave.BulkDecisionDTO{IDs: []int64{1}}, hr)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("holidays", func() {
		It("creates, lists and deletes", func() {
			h, err := service.CreateHoliday(ctx, leave.CreateHolidayDTO{Date: day("2025-12-25"), Name: "Christmas"}, hr)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateHoliday(ctx, leave.CreateHolidayDTO{Date: day("2025-12-25"), Name: "Again"}, hr)
			Expect(err).To(MatchError(leave.ErrHolidayExists))

			holidays, err := service.ListHolidays(ctx, 2025)
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(HaveLen(2))
			Expect(holidays[1].Date.Format(calendar.Layout)).To(Equal("2025-12-25"))

			Expect(service.DeleteHoliday(ctx, h.ID, hr)).To(Succeed())
			Expect(service.DeleteHoliday(ctx, h.ID, hr)).To(MatchError(leave.ErrHolidayNotFound))
		})

		It("ignores holidays of other years", func() {
			holidays, err := service.ListHolidays(ctx, 2024)
			Expect(err).NotTo(HaveOccurred())
			Expect(holidays).To(BeEmpty())
		})
	})
})
