package yearend

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/shopspring/decimal"
)

type SystemConfig struct {
	ID           int64      `json:"id"`
	Year         int        `json:"year"`
	IsClosed     bool       `json:"is_closed"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	ClosedBy     *int64     `json:"closed_by,omitempty"`
	ReopenedAt   *time.Time `json:"reopened_at,omitempty"`
	ReopenReason *string    `json:"reopen_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// QuotaLine explains one (employee, leave type) row written by a run.
type QuotaLine struct {
	EmployeeID        int64           `json:"employee_id"`
	LeaveTypeID       int64           `json:"leave_type_id"`
	LeaveTypeCode     string          `json:"leave_type_code"`
	PreviousRemaining decimal.Decimal `json:"previous_remaining"`
	CarriedOver       decimal.Decimal `json:"carried_over"`
	BaseQuota         decimal.Decimal `json:"base_quota"`
	TotalDays         decimal.Decimal `json:"total_days"`
}

type Result struct {
	ClosedYear         int         `json:"closed_year"`
	TargetYear         int         `json:"target_year"`
	EmployeesProcessed int         `json:"employees_processed"`
	LeaveTypes         []string    `json:"leave_types"`
	QuotasWritten      int         `json:"quotas_written"`
	ClosedAt           time.Time   `json:"closed_at"`
	Lines              []QuotaLine `json:"lines"`
}

var (
	ErrYearConfigNotFound = internal.NewNotFoundError("no system config exists for this year", internal.ErrCodeYearConfigNotFound)
	ErrYearConfigExists   = internal.NewConflictError("system config already exists for this year", internal.ErrCodeYearConfigExists)
	ErrYearAlreadyClosed  = internal.NewConflictError("source year is already closed; reopen it before processing again", internal.ErrCodeYearAlreadyClosed)
	ErrYearNotClosed      = internal.NewConflictError("year is not closed", internal.ErrCodeYearNotClosed)
	ErrTargetYearClosed   = internal.NewConflictError("target year is closed", internal.ErrCodeYearClosed)
)

func FromDataModel(c *leaveDatamodel.SystemConfig) *SystemConfig {
	return &SystemConfig{
		ID:           c.ID,
		Year:         c.Year,
		IsClosed:     c.IsClosed,
		ClosedAt:     c.ClosedAt,
		ClosedBy:     c.ClosedBy,
		ReopenedAt:   c.ReopenedAt,
		ReopenReason: c.ReopenReason,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
