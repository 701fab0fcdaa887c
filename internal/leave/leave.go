package leave

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/shopspring/decimal"
)

const (
	StatusPending         = "PENDING"
	StatusApproved        = "APPROVED"
	StatusRejected        = "REJECTED"
	StatusWithdrawPending = "WITHDRAW_PENDING"
)

// ActiveStatuses hold days on the calendar and count towards overlap checks.
var ActiveStatuses = []string{StatusPending, StatusApproved, StatusWithdrawPending}

type LeaveRequest struct {
	ID                 int64           `json:"id"`
	EmployeeID         int64           `json:"employee_id"`
	LeaveTypeID        int64           `json:"leave_type_id"`
	LeaveTypeCode      string          `json:"leave_type_code,omitempty"`
	LeaveTypeName      string          `json:"leave_type_name,omitempty"`
	StartDate          calendar.Date   `json:"start_date"`
	EndDate            calendar.Date   `json:"end_date"`
	StartDuration      string          `json:"start_duration"`
	EndDuration        string          `json:"end_duration"`
	Status             string          `json:"status"`
	TotalDaysRequested decimal.Decimal `json:"total_days_requested"`
	Reason             string          `json:"reason,omitempty"`
	AttachmentURL      *string         `json:"attachment_url,omitempty"`
	ApprovedBy         *int64          `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time      `json:"approved_at,omitempty"`
	RejectionReason    *string         `json:"rejection_reason,omitempty"`
	CancelReason       *string         `json:"cancel_reason,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (l *LeaveRequest) CanBeApproved() bool {
	return l.Status == StatusPending
}

func (l *LeaveRequest) CanBeRejected() bool {
	return l.Status == StatusPending
}

func (l *LeaveRequest) CanRequestWithdraw() bool {
	return l.Status == StatusApproved
}

func (l *LeaveRequest) CanDecideWithdraw() bool {
	return l.Status == StatusWithdrawPending
}

// Year is the quota year the request draws from.
func (l *LeaveRequest) Year() int {
	return l.StartDate.Year()
}

func (l *LeaveRequest) Approve(actorID int64, at time.Time) {
	l.Status = StatusApproved
	l.ApprovedBy = &actorID
	l.ApprovedAt = &at
	l.UpdatedAt = at
}

func (l *LeaveRequest) Reject(actorID int64, reason string, at time.Time) {
	l.Status = StatusRejected
	l.ApprovedBy = &actorID
	l.RejectionReason = &reason
	l.UpdatedAt = at
}

func (l *LeaveRequest) RequestWithdraw(reason string, at time.Time) {
	l.Status = StatusWithdrawPending
	l.CancelReason = &reason
	l.UpdatedAt = at
}

// ResolveWithdraw voids the leave when the withdrawal is accepted and
// restores it otherwise.
func (l *LeaveRequest) ResolveWithdraw(accepted bool, at time.Time) {
	if accepted {
		l.Status = StatusRejected
	} else {
		l.Status = StatusApproved
	}
	l.UpdatedAt = at
}

type Holiday struct {
	ID        int64         `json:"id"`
	Date      calendar.Date `json:"date"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
}

type ListFilter struct {
	Status      string
	EmployeeID  int64
	LeaveTypeID int64
	Year        int
	Limit       int
	Offset      int
}

var (
	ErrLeaveRequestNotFound = internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveRequestNotFound)
	ErrInvalidStatus        = internal.NewConflictError("leave request cannot move to that status", internal.ErrCodeInvalidLeaveStatus)
	ErrInsufficientQuota    = internal.NewConflictError("requested days exceed the remaining quota", internal.ErrCodeInsufficientQuota)
	ErrConsecutiveExceeded  = internal.NewValidationError("requested days exceed the leave type's consecutive limit", internal.ErrCodeConsecutiveExceeded)
	ErrOverlap              = internal.NewConflictError("request overlaps another pending or approved leave", internal.ErrCodeLeaveOverlap)
	ErrYearClosed           = internal.NewConflictError("the leave year is closed", internal.ErrCodeYearClosed)
	ErrNoWorkingDays        = internal.NewValidationError("the requested range contains no working days", internal.ErrCodeInvalidDays)
	ErrLeaveTypeUnavailable = internal.NewValidationError("leave type does not exist or is inactive", internal.ErrCodeInvalidLeaveType)
	ErrHolidayNotFound      = internal.NewNotFoundError("holiday not found", internal.ErrCodeHolidayNotFound)
	ErrHolidayExists        = internal.NewConflictError("a holiday already exists on that date", internal.ErrCodeHolidayExists)
)

func ToDataModel(l *LeaveRequest) *leaveDatamodel.LeaveRequest {
	return &leaveDatamodel.LeaveRequest{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		LeaveTypeID:        l.LeaveTypeID,
		StartDate:          calendar.Normalize(l.StartDate.Time),
		EndDate:            calendar.Normalize(l.EndDate.Time),
		StartDuration:      l.StartDuration,
		EndDuration:        l.EndDuration,
		Status:             l.Status,
		TotalDaysRequested: l.TotalDaysRequested,
		Reason:             l.Reason,
		AttachmentURL:      l.AttachmentURL,
		ApprovedBy:         l.ApprovedBy,
		ApprovedAt:         l.ApprovedAt,
		RejectionReason:    l.RejectionReason,
		CancelReason:       l.CancelReason,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func FromDataModel(l *leaveDatamodel.LeaveRequest) *LeaveRequest {
	out := &LeaveRequest{
		ID:                 l.ID,
		EmployeeID:         l.EmployeeID,
		LeaveTypeID:        l.LeaveTypeID,
		StartDate:          calendar.NewDate(l.StartDate),
		EndDate:            calendar.NewDate(l.EndDate),
		StartDuration:      l.StartDuration,
		EndDuration:        l.EndDuration,
		Status:             l.Status,
		TotalDaysRequested: l.TotalDaysRequested,
		Reason:             l.Reason,
		AttachmentURL:      l.AttachmentURL,
		ApprovedBy:         l.ApprovedBy,
		ApprovedAt:         l.ApprovedAt,
		RejectionReason:    l.RejectionReason,
		CancelReason:       l.CancelReason,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
	if l.LeaveType != nil {
		out.LeaveTypeCode = l.LeaveType.Code
		out.LeaveTypeName = l.LeaveType.Name
	}
	return out
}

func FromDataModelSlice(rows []*leaveDatamodel.LeaveRequest) []*LeaveRequest {
	out := make([]*LeaveRequest, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}

func HolidayFromDataModel(h *leaveDatamodel.Holiday) *Holiday {
	return &Holiday{
		ID:        h.ID,
		Date:      calendar.NewDate(h.Date),
		Name:      h.Name,
		CreatedAt: h.CreatedAt,
	}
}
