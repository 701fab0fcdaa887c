package report

import (
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/shopspring/decimal"
)

// BalanceRow is one quota row joined with its employee and leave type.
type BalanceRow struct {
	EmployeeID    int64           `db:"employee_id" json:"employee_id"`
	EmployeeName  string          `db:"employee_name" json:"employee_name"`
	LeaveTypeCode string          `db:"leave_type_code" json:"leave_type_code"`
	TotalDays     decimal.Decimal `db:"total_days" json:"total_days"`
	UsedDays      decimal.Decimal `db:"used_days" json:"used_days"`
	RemainingDays decimal.Decimal `db:"-" json:"remaining_days"`
}

type AttendanceRow struct {
	EmployeeID   int64  `db:"employee_id" json:"employee_id"`
	EmployeeName string `db:"employee_name" json:"employee_name"`
	DaysPresent  int    `db:"days_present" json:"days_present"`
	DaysLate     int    `db:"days_late" json:"days_late"`
	LateMinutes  int    `db:"late_minutes" json:"late_minutes"`
}

type BalanceFilter struct {
	Year       int
	EmployeeID int64
}

type LeaveBalancesResponse struct {
	Year int           `json:"year"`
	Rows []*BalanceRow `json:"rows"`
}

type AttendanceSummaryResponse struct {
	From calendar.Date    `json:"from"`
	To   calendar.Date    `json:"to"`
	Rows []*AttendanceRow `json:"rows"`
}
