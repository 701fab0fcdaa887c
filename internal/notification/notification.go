package notification

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
)

const (
	TypeLeaveRequested    = "LEAVE_REQUESTED"
	TypeLeaveApproved     = "LEAVE_APPROVED"
	TypeLeaveRejected     = "LEAVE_REJECTED"
	TypeWithdrawRequested = "WITHDRAW_REQUESTED"
	TypeWithdrawApproved  = "WITHDRAW_APPROVED"
	TypeWithdrawRejected  = "WITHDRAW_REJECTED"
	TypeQuotaUpdated      = "QUOTA_UPDATED"
	TypeAnnouncement      = "ANNOUNCEMENT"
)

type Notification struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	RequestID  *int64    `json:"request_id,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)

func FromDataModel(n *notificationDatamodel.Notification) *Notification {
	return &Notification{
		ID:         n.ID,
		EmployeeID: n.EmployeeID,
		Type:       n.Type,
		Message:    n.Message,
		RequestID:  n.RequestID,
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}
