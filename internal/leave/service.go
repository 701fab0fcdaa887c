package leave

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/yearend"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error

	Create(ctx context.Context, req *leaveDatamodel.LeaveRequest) error
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error)
	LockByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error)
	Update(ctx context.Context, req *leaveDatamodel.LeaveRequest) error
	List(ctx context.Context, filter ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error)
	HasOverlap(ctx context.Context, employeeID int64, start, end time.Time) (bool, error)

	GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	GetLeaveTypeByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error)
	// LockQuota returns nil without error when the employee has no row for that year.
	LockQuota(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveQuota, error)
	SaveQuota(ctx context.Context, q *leaveDatamodel.LeaveQuota) error
	YearClosed(ctx context.Context, year int) (bool, error)

	HolidaySet(ctx context.Context, from, to time.Time) (map[string]bool, error)
	ListHolidays(ctx context.Context, year int) ([]*leaveDatamodel.Holiday, error)
	CreateHoliday(ctx context.Context, h *leaveDatamodel.Holiday) error
	HolidayExists(ctx context.Context, date time.Time) (bool, error)
	DeleteHoliday(ctx context.Context, id int64) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, employeeID int64, kind, message string, requestID *int64) error
	NotifyMany(ctx context.Context, employeeIDs []int64, kind, message string, requestID *int64) error
}

type HRDirectory interface {
	ListHRIDs(ctx context.Context) ([]int64, error)
}

type AttachmentStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

// Attachment is an uploaded supporting document.
type Attachment struct {
	Filename string
	Content  io.Reader
}

type Service struct {
	repo     RepositoryAPI
	audit    AuditRecorder
	notifier Notifier
	hr       HRDirectory
	store    AttachmentStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo RepositoryAPI, auditRecorder AuditRecorder, notifier Notifier, hr HRDirectory, store AttachmentStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		audit:    auditRecorder,
		notifier: notifier,
		hr:       hr,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, employeeID int64, dto CreateLeaveRequestDTO, attachment *Attachment) (*LeaveRequest, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	lt, err := s.resolveLeaveType(ctx, dto)
	if err != nil {
		return nil, err
	}

	holidays, err := s.repo.HolidaySet(ctx, dto.StartDate.Time, dto.EndDate.Time)
	if err != nil {
		return nil, err
	}
	days := calendar.WorkingDays(dto.StartDate.Time, dto.EndDate.Time, holidays, dto.StartDuration, dto.EndDuration)
	if !days.IsPositive() {
		return nil, ErrNoWorkingDays
	}
	if lt.MaxConsecutiveDays > 0 && days.GreaterThan(decimal.NewFromInt(int64(lt.MaxConsecutiveDays))) {
		return nil, ErrConsecutiveExceeded.WithMessage(
			fmt.Sprintf("%s allows at most %d consecutive days, requested %s", lt.Code, lt.MaxConsecutiveDays, days.String()))
	}

	var attachmentURL *string
	if attachment != nil && s.store != nil {
		url, err := s.store.Save(ctx, attachment.Filename, attachment.Content)
		if err != nil {
			return nil, err
		}
		attachmentURL = &url
	}

	now := s.now()
	row := &leaveDatamodel.LeaveRequest{
		EmployeeID:         employeeID,
		LeaveTypeID:        lt.ID,
		StartDate:          dto.StartDate.Time,
		EndDate:            dto.EndDate.Time,
		StartDuration:      dto.StartDuration,
		EndDuration:        dto.EndDuration,
		Status:             StatusPending,
		TotalDaysRequested: days,
		Reason:             dto.Reason,
		AttachmentURL:      attachmentURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	year := dto.StartDate.Year()
	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		closed, err := tx.YearClosed(ctx, year)
		if err != nil {
			return err
		}
		if closed {
			return ErrYearClosed
		}

		overlap, err := tx.HasOverlap(ctx, employeeID, dto.StartDate.Time, dto.EndDate.Time)
		if err != nil {
			return err
		}
		if overlap {
			return ErrOverlap
		}

		q, err := tx.LockQuota(ctx, employeeID, lt.ID, year)
		if err != nil {
			return err
		}
		if remaining := remainingOf(q); remaining.LessThan(days) {
			return ErrInsufficientQuota.WithMessage(
				fmt.Sprintf("requested %s days but only %s remain for %s in %d", days.String(), remaining.String(), lt.Code, year))
		}

		return tx.Create(ctx, row)
	})
	if err != nil {
		if attachmentURL != nil {
			if rmErr := s.store.Remove(ctx, *attachmentURL); rmErr != nil {
				s.logger.Warn("failed to remove orphaned attachment", "url", *attachmentURL, "error", rmErr)
			}
		}
		return nil, err
	}

	row.LeaveType = lt
	created := FromDataModel(row)

	s.logger.Info("leave request created",
		"leave_request_id", created.ID,
		"employee_id", employeeID,
		"leave_type", lt.Code,
		"days", days.String())

	s.record(ctx, employeeID, audit.ActionLeaveCreate, created.ID, map[string]interface{}{
		"leave_type": lt.Code,
		"start_date": created.StartDate.String(),
		"end_date":   created.EndDate.String(),
		"days":       days,
	})
	s.notifyHR(ctx, notification.TypeLeaveRequested,
		fmt.Sprintf("New %s request for %s day(s) from %s", lt.Code, days.String(), created.StartDate.String()), created.ID)

	return created, nil
}

func (s *Service) resolveLeaveType(ctx context.Context, dto CreateLeaveRequestDTO) (*leaveDatamodel.LeaveType, error) {
	var (
		lt  *leaveDatamodel.LeaveType
		err error
	)
	if dto.LeaveTypeID != 0 {
		lt, err = s.repo.GetLeaveType(ctx, dto.LeaveTypeID)
	} else {
		lt, err = s.repo.GetLeaveTypeByCode(ctx, dto.LeaveTypeCode)
	}
	if err != nil {
		return nil, err
	}
	if lt == nil || !lt.IsActive {
		return nil, ErrLeaveTypeUnavailable
	}
	return lt, nil
}

func remainingOf(q *leaveDatamodel.LeaveQuota) decimal.Decimal {
	if q == nil {
		return decimal.Zero
	}
	return yearend.Remaining(q.TotalDays, q.UsedDays)
}

// Get hides requests of other employees unless the viewer can manage leave.
func (s *Service) Get(ctx context.Context, id, viewerID int64, canManage bool) (*LeaveRequest, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage && row.EmployeeID != viewerID {
		return nil, ErrLeaveRequestNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) ListMine(ctx context.Context, employeeID int64, filter ListFilter) ([]*LeaveRequest, int64, error) {
	filter.EmployeeID = employeeID
	return s.List(ctx, filter)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*LeaveRequest, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err)
		return nil, 0, err
	}
	return FromDataModelSlice(rows), total, nil
}

func (s *Service) Approve(ctx context.Context, id, actorID int64) (*LeaveRequest, error) {
	var approved *LeaveRequest
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		var err error
		approved, err = s.approveTx(ctx, tx, id, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterApprove(ctx, approved, actorID, audit.ActionLeaveApprove, nil)
	return approved, nil
}

func (s *Service) approveTx(ctx context.Context, tx RepositoryAPI, id, actorID int64) (*LeaveRequest, error) {
	row, err := tx.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := FromDataModel(row)
	if !req.CanBeApproved() {
		return nil, ErrInvalidStatus
	}
	if err := s.ensureYearOpen(ctx, tx, req.Year()); err != nil {
		return nil, err
	}

	q, err := tx.LockQuota(ctx, req.EmployeeID, req.LeaveTypeID, req.Year())
	if err != nil {
		return nil, err
	}
	if remainingOf(q).LessThan(req.TotalDaysRequested) {
		return nil, ErrInsufficientQuota.WithMessage(
			fmt.Sprintf("leave request %d needs %s days but only %s remain; use special approval", id, req.TotalDaysRequested.String(), remainingOf(q).String()))
	}

	q.UsedDays = q.UsedDays.Add(req.TotalDaysRequested)
	if err := tx.SaveQuota(ctx, q); err != nil {
		return nil, fmt.Errorf("deduct quota: %w", err)
	}

	req.Approve(actorID, s.now())
	if err := tx.Update(ctx, ToDataModel(req)); err != nil {
		return nil, err
	}
	return req, nil
}

// SpecialApprove grants the shortfall (or extra_days, whichever is larger) to
// the quota and approves in the same transaction.
func (s *Service) SpecialApprove(ctx context.Context, id int64, dto SpecialApproveDTO, actorID int64) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		approved *LeaveRequest
		granted  decimal.Decimal
	)
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.LockByID(ctx, id)
		if err != nil {
			return err
		}
		req := FromDataModel(row)
		if !req.CanBeApproved() {
			return ErrInvalidStatus
		}
		if err := s.ensureYearOpen(ctx, tx, req.Year()); err != nil {
			return err
		}

		q, err := tx.LockQuota(ctx, req.EmployeeID, req.LeaveTypeID, req.Year())
		if err != nil {
			return err
		}
		if q == nil {
			q = &leaveDatamodel.LeaveQuota{
				EmployeeID:  req.EmployeeID,
				LeaveTypeID: req.LeaveTypeID,
				Year:        req.Year(),
				TotalDays:   decimal.Zero,
				UsedDays:    decimal.Zero,
			}
		}

		shortfall := decimal.Max(req.TotalDaysRequested.Sub(remainingOf(q)), decimal.Zero)
		granted = shortfall
		if dto.ExtraDays != nil {
			granted = decimal.Max(shortfall, *dto.ExtraDays)
		}

		q.TotalDays = q.TotalDays.Add(granted)
		q.UsedDays = q.UsedDays.Add(req.TotalDaysRequested)
		if err := tx.SaveQuota(ctx, q); err != nil {
			return fmt.Errorf("grant quota: %w", err)
		}

		req.Approve(actorID, s.now())
		if err := tx.Update(ctx, ToDataModel(req)); err != nil {
			return err
		}
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterApprove(ctx, approved, actorID, audit.ActionLeaveSpecialApprove, map[string]interface{}{
		"granted_days": granted,
		"note":         dto.Note,
	})
	return approved, nil
}

func (s *Service) afterApprove(ctx context.Context, req *LeaveRequest, actorID int64, action string, detail interface{}) {
	s.logger.Info("leave request approved", "leave_request_id", req.ID, "actor_id", actorID, "action", action)
	s.record(ctx, actorID, action, req.ID, detail)
	s.notifyEmployee(ctx, req.EmployeeID, notification.TypeLeaveApproved,
		fmt.Sprintf("Your leave from %s to %s was approved", req.StartDate.String(), req.EndDate.String()), req.ID)
}

func (s *Service) Reject(ctx context.Context, id int64, dto ReasonDTO, actorID int64) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var rejected *LeaveRequest
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		var err error
		rejected, err = s.rejectTx(ctx, tx, id, dto.Reason, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterReject(ctx, rejected, actorID)
	return rejected, nil
}

func (s *Service) rejectTx(ctx context.Context, tx RepositoryAPI, id int64, reason string, actorID int64) (*LeaveRequest, error) {
	row, err := tx.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req := FromDataModel(row)
	if !req.CanBeRejected() {
		return nil, ErrInvalidStatus
	}

	req.Reject(actorID, reason, s.now())
	if err := tx.Update(ctx, ToDataModel(req)); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Service) afterReject(ctx context.Context, req *LeaveRequest, actorID int64) {
	reason := ""
	if req.RejectionReason != nil {
		reason = *req.RejectionReason
	}
	s.logger.Info("leave request rejected", "leave_request_id", req.ID, "actor_id", actorID)
	s.record(ctx, actorID, audit.ActionLeaveReject, req.ID, map[string]string{"reason": reason})
	s.notifyEmployee(ctx, req.EmployeeID, notification.TypeLeaveRejected,
		fmt.Sprintf("Your leave from %s was rejected: %s", req.StartDate.String(), reason), req.ID)
}

// RequestWithdraw lets the owner ask HR to cancel an approved leave.
func (s *Service) RequestWithdraw(ctx context.Context, id, employeeID int64, dto ReasonDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var req *LeaveRequest
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if row.EmployeeID != employeeID {
			return ErrLeaveRequestNotFound
		}
		req = FromDataModel(row)
		if !req.CanRequestWithdraw() {
			return ErrInvalidStatus
		}
		if err := s.ensureYearOpen(ctx, tx, req.Year()); err != nil {
			return err
		}

		req.RequestWithdraw(dto.Reason, s.now())
		return tx.Update(ctx, ToDataModel(req))
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, employeeID, audit.ActionLeaveWithdraw, req.ID, map[string]string{"reason": dto.Reason})
	s.notifyHR(ctx, notification.TypeWithdrawRequested,
		fmt.Sprintf("Employee %d asked to withdraw leave from %s", employeeID, req.StartDate.String()), req.ID)
	return req, nil
}

// DecideWithdraw refunds the used days when accepted; otherwise the leave stands.
func (s *Service) DecideWithdraw(ctx context.Context, id int64, accept bool, dto DecideWithdrawDTO, actorID int64) (*LeaveRequest, error) {
	var req *LeaveRequest
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.LockByID(ctx, id)
		if err != nil {
			return err
		}
		req = FromDataModel(row)
		if !req.CanDecideWithdraw() {
			return ErrInvalidStatus
		}

		if accept {
			if err := s.ensureYearOpen(ctx, tx, req.Year()); err != nil {
				return err
			}
			q, err := tx.LockQuota(ctx, req.EmployeeID, req.LeaveTypeID, req.Year())
			if err != nil {
				return err
			}
			if q != nil {
				q.UsedDays = decimal.Max(q.UsedDays.Sub(req.TotalDaysRequested), decimal.Zero)
				if err := tx.SaveQuota(ctx, q); err != nil {
					return fmt.Errorf("refund quota: %w", err)
				}
			}
		}

		req.ResolveWithdraw(accept, s.now())
		return tx.Update(ctx, ToDataModel(req))
	})
	if err != nil {
		return nil, err
	}

	action, kind, verb := audit.ActionLeaveWithdrawDenied, notification.TypeWithdrawRejected, "declined"
	if accept {
		action, kind, verb = audit.ActionLeaveWithdrawOK, notification.TypeWithdrawApproved, "accepted"
	}
	s.record(ctx, actorID, action, req.ID, map[string]string{"note": dto.Note})
	s.notifyEmployee(ctx, req.EmployeeID, kind,
		fmt.Sprintf("Your withdrawal for leave from %s was %s", req.StartDate.String(), verb), req.ID)
	return req, nil
}

// BulkApprove approves every id or none of them.
func (s *Service) BulkApprove(ctx context.Context, dto BulkDecisionDTO, actorID int64) (*BulkResult, error) {
	if err := dto.Validate(false); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		for _, id := range dto.IDs {
			req, err := s.approveTx(ctx, tx, id, actorID)
			if err != nil {
				return bulkItemError(id, err)
			}
			result.Requests = append(result.Requests, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, req := range result.Requests {
		s.afterApprove(ctx, req, actorID, audit.ActionLeaveApprove, map[string]bool{"bulk": true})
	}
	result.Processed = len(result.Requests)
	return result, nil
}

// BulkReject rejects every id or none of them.
func (s *Service) BulkReject(ctx context.Context, dto BulkDecisionDTO, actorID int64) (*BulkResult, error) {
	if err := dto.Validate(true); err != nil {
		return nil, err
	}

	result := &BulkResult{}
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		for _, id := range dto.IDs {
			req, err := s.rejectTx(ctx, tx, id, dto.Reason, actorID)
			if err != nil {
				return bulkItemError(id, err)
			}
			result.Requests = append(result.Requests, req)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, req := range result.Requests {
		s.afterReject(ctx, req, actorID)
	}
	result.Processed = len(result.Requests)
	return result, nil
}

func bulkItemError(id int64, err error) error {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.WithMessage(fmt.Sprintf("leave request %d: %s", id, appErr.Message)).
			WithDetails(map[string]int64{"failed_id": id})
	}
	return fmt.Errorf("leave request %d: %w", id, err)
}

func (s *Service) ensureYearOpen(ctx context.Context, tx RepositoryAPI, year int) error {
	closed, err := tx.YearClosed(ctx, year)
	if err != nil {
		return err
	}
	if closed {
		return ErrYearClosed
	}
	return nil
}

func (s *Service) ListHolidays(ctx context.Context, year int) ([]*Holiday, error) {
	rows, err := s.repo.ListHolidays(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make([]*Holiday, len(rows))
	for i, row := range rows {
		out[i] = HolidayFromDataModel(row)
	}
	return out, nil
}

func (s *Service) CreateHoliday(ctx context.Context, dto CreateHolidayDTO, actorID int64) (*Holiday, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	date := calendar.Normalize(dto.Date.Time)
	exists, err := s.repo.HolidayExists(ctx, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrHolidayExists
	}

	row := &leaveDatamodel.Holiday{Date: date, Name: dto.Name}
	if err := s.repo.CreateHoliday(ctx, row); err != nil {
		s.logger.Error("failed to create holiday", "date", date, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionHolidayCreate, row.ID, map[string]string{"date": date.Format(calendar.Layout), "name": dto.Name})
	return HolidayFromDataModel(row), nil
}

func (s *Service) DeleteHoliday(ctx context.Context, id, actorID int64) error {
	deleted, err := s.repo.DeleteHoliday(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrHolidayNotFound
	}
	s.record(ctx, actorID, audit.ActionHolidayDelete, id, nil)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64, detail interface{}) {
	if s.audit == nil {
		return
	}
	entityType := "leave_request"
	if action == audit.ActionHolidayCreate || action == audit.ActionHolidayDelete {
		entityType = "holiday"
	}
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   strconv.FormatInt(id, 10),
		Detail:     detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to audit leave action", "action", action, "error", err)
	}
}

func (s *Service) notifyEmployee(ctx context.Context, employeeID int64, kind, message string, requestID int64) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, employeeID, kind, message, &requestID); err != nil {
		s.logger.Warn("failed to notify employee", "employee_id", employeeID, "type", kind, "error", err)
	}
}

func (s *Service) notifyHR(ctx context.Context, kind, message string, requestID int64) {
	if s.notifier == nil || s.hr == nil {
		return
	}
	ids, err := s.hr.ListHRIDs(ctx)
	if err != nil {
		s.logger.Warn("failed to resolve HR recipients", "error", err)
		return
	}
	if err := s.notifier.NotifyMany(ctx, ids, kind, message, &requestID); err != nil {
		s.logger.Warn("failed to notify HR", "type", kind, "error", err)
	}
}
