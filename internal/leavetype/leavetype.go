package leavetype

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/shopspring/decimal"
)

// Well-known leave type codes.
const (
	CodeAnnual    = "ANNUAL"
	CodeSick      = "SICK"
	CodePersonal  = "PERSONAL"
	CodeMaternity = "MATERNITY"
	CodeUnpaid    = "UNPAID"
)

type LeaveType struct {
	ID                 int64           `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	IsPaid             bool            `json:"is_paid"`
	MaxCarryOverDays   decimal.Decimal `json:"max_carry_over_days"`
	MaxConsecutiveDays int             `json:"max_consecutive_days"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

var (
	ErrLeaveTypeNotFound = internal.NewNotFoundError("leave type not found", internal.ErrCodeLeaveTypeNotFound)
	ErrLeaveTypeExists   = internal.NewConflictError("leave type code already exists", internal.ErrCodeLeaveTypeExists)
	ErrLeaveTypeInUse    = internal.NewConflictError("leave type is referenced by quotas or requests; deactivate it instead", internal.ErrCodeLeaveTypeInUse)
)

// AllowsConsecutive reports whether a request of days fits the consecutive cap; zero means unlimited.
func (t *LeaveType) AllowsConsecutive(days decimal.Decimal) bool {
	if t.MaxConsecutiveDays <= 0 {
		return true
	}
	return days.LessThanOrEqual(decimal.NewFromInt(int64(t.MaxConsecutiveDays)))
}

func (t *LeaveType) Activate() {
	t.IsActive = true
	t.UpdatedAt = time.Now()
}

func (t *LeaveType) Deactivate() {
	t.IsActive = false
	t.UpdatedAt = time.Now()
}

func ToDataModel(t *LeaveType) *leaveDatamodel.LeaveType {
	return &leaveDatamodel.LeaveType{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		IsPaid:             t.IsPaid,
		MaxCarryOverDays:   t.MaxCarryOverDays,
		MaxConsecutiveDays: t.MaxConsecutiveDays,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func FromDataModel(t *leaveDatamodel.LeaveType) *LeaveType {
	return &LeaveType{
		ID:                 t.ID,
		Code:               t.Code,
		Name:               t.Name,
		IsPaid:             t.IsPaid,
		MaxCarryOverDays:   t.MaxCarryOverDays,
		MaxConsecutiveDays: t.MaxConsecutiveDays,
		IsActive:           t.IsActive,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}
