package quota

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/yearend"
	"github.com/shopspring/decimal"
)

type Quota struct {
	ID            int64           `json:"id"`
	EmployeeID    int64           `json:"employee_id"`
	LeaveTypeID   int64           `json:"leave_type_id"`
	LeaveTypeCode string          `json:"leave_type_code,omitempty"`
	LeaveTypeName string          `json:"leave_type_name,omitempty"`
	Year          int             `json:"year"`
	TotalDays     decimal.Decimal `json:"total_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
	// Clamped is set when a requested total was raised to the used days.
	Clamped   bool      `json:"clamped,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListFilter struct {
	Year       int
	EmployeeID int64
	Limit      int
	Offset     int
}

var (
	ErrEmployeeNotFound = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrYearClosed       = internal.NewConflictError("year is closed; reopen it before changing quotas", internal.ErrCodeYearClosed)
)

func FromDataModel(q *leaveDatamodel.LeaveQuota) *Quota {
	out := &Quota{
		ID:            q.ID,
		EmployeeID:    q.EmployeeID,
		LeaveTypeID:   q.LeaveTypeID,
		Year:          q.Year,
		TotalDays:     q.TotalDays,
		UsedDays:      q.UsedDays,
		RemainingDays: yearend.Remaining(q.TotalDays, q.UsedDays),
		UpdatedAt:     q.UpdatedAt,
	}
	if q.LeaveType != nil {
		out.LeaveTypeCode = q.LeaveType.Code
		out.LeaveTypeName = q.LeaveType.Name
	}
	return out
}

func FromDataModelSlice(rows []*leaveDatamodel.LeaveQuota) []*Quota {
	out := make([]*Quota, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
