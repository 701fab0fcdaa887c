package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaveType struct {
	ID                 int64           `gorm:"primaryKey"`
	Code               string          `gorm:"column:code;uniqueIndex;not null"`
	Name               string          `gorm:"column:name;not null"`
	IsPaid             bool            `gorm:"column:is_paid;not null"`
	MaxCarryOverDays   decimal.Decimal `gorm:"column:max_carry_over_days;type:decimal(6,2);not null;default:0"`
	MaxConsecutiveDays int             `gorm:"column:max_consecutive_days;not null;default:0"`
	IsActive           bool            `gorm:"column:is_active;not null"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// LeaveQuota holds one entitlement row per employee, leave type and year.
// Remaining days are derived from TotalDays and UsedDays and never stored.
type LeaveQuota struct {
	ID          int64           `gorm:"primaryKey"`
	EmployeeID  int64           `gorm:"column:employee_id;not null;uniqueIndex:idx_leave_quotas_employee_type_year"`
	LeaveTypeID int64           `gorm:"column:leave_type_id;not null;uniqueIndex:idx_leave_quotas_employee_type_year"`
	Year        int             `gorm:"column:year;not null;uniqueIndex:idx_leave_quotas_employee_type_year"`
	TotalDays   decimal.Decimal `gorm:"column:total_days;type:decimal(6,2);not null;default:0"`
	UsedDays    decimal.Decimal `gorm:"column:used_days;type:decimal(6,2);not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	LeaveType *LeaveType `gorm:"foreignKey:LeaveTypeID"`
}

func (LeaveQuota) TableName() string {
	return "leave_quotas"
}

type LeaveRequest struct {
	ID                 int64           `gorm:"primaryKey"`
	EmployeeID         int64           `gorm:"column:employee_id;not null;index"`
	LeaveTypeID        int64           `gorm:"column:leave_type_id;not null;index"`
	StartDate          time.Time       `gorm:"column:start_date;type:date;not null"`
	EndDate            time.Time       `gorm:"column:end_date;type:date;not null"`
	StartDuration      string          `gorm:"column:start_duration;not null;default:FULL"`
	EndDuration        string          `gorm:"column:end_duration;not null;default:FULL"`
	Status             string          `gorm:"column:status;not null;index"`
	TotalDaysRequested decimal.Decimal `gorm:"column:total_days_requested;type:decimal(6,2);not null"`
	Reason             string          `gorm:"column:reason"`
	AttachmentURL      *string         `gorm:"column:attachment_url"`
	ApprovedBy         *int64          `gorm:"column:approved_by"`
	ApprovedAt         *time.Time      `gorm:"column:approved_at"`
	RejectionReason    *string         `gorm:"column:rejection_reason"`
	CancelReason       *string         `gorm:"column:cancel_reason"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`

	LeaveType *LeaveType `gorm:"foreignKey:LeaveTypeID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// SystemConfig is the year lock ledger row.
type SystemConfig struct {
	ID           int64      `gorm:"primaryKey"`
	Year         int        `gorm:"column:year;uniqueIndex;not null"`
	IsClosed     bool       `gorm:"column:is_closed;not null;default:false"`
	ClosedAt     *time.Time `gorm:"column:closed_at"`
	ClosedBy     *int64     `gorm:"column:closed_by"`
	ReopenedAt   *time.Time `gorm:"column:reopened_at"`
	ReopenReason *string    `gorm:"column:reopen_reason"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (SystemConfig) TableName() string {
	return "system_configs"
}

type Holiday struct {
	ID        int64     `gorm:"primaryKey"`
	Date      time.Time `gorm:"column:date;type:date;uniqueIndex;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Holiday) TableName() string {
	return "holidays"
}
