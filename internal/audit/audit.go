package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
)

const (
	ActionEmployeeCreate     = "employee.create"
	ActionEmployeeUpdate     = "employee.update"
	ActionEmployeeDeactivate = "employee.deactivate"
	ActionEmployeePurge      = "employee.purge"

	ActionLeaveTypeCreate     = "leave_type.create"
	ActionLeaveTypeUpdate     = "leave_type.update"
	ActionLeaveTypeDelete     = "leave_type.delete"
	ActionLeaveTypeActivate   = "leave_type.activate"
	ActionLeaveTypeDeactivate = "leave_type.deactivate"

	ActionSystemConfigCreate = "system_config.create"
	ActionYearEndProcess     = "year_end.process"
	ActionYearReopen         = "year_end.reopen"
	ActionQuotaAdjust        = "quota.adjust"

	ActionLeaveCreate         = "leave.create"
	ActionLeaveApprove        = "leave.approve"
	ActionLeaveSpecialApprove = "leave.special_approve"
	ActionLeaveReject         = "leave.reject"
	ActionLeaveWithdraw       = "leave.withdraw_request"
	ActionLeaveWithdrawOK     = "leave.withdraw_approve"
	ActionLeaveWithdrawDenied = "leave.withdraw_reject"
	ActionHolidayCreate       = "holiday.create"
	ActionHolidayDelete       = "holiday.delete"

	ActionAttendanceCheckIn  = "attendance.check_in"
	ActionAttendanceCheckOut = "attendance.check_out"
	ActionScheduleUpdate     = "attendance.schedule"
)

// Entry is what callers hand to Record; Detail is stored as JSON.
type Entry struct {
	ActorID    int64
	Action     string
	EntityType string
	EntityID   string
	Detail     interface{}
}

type AuditLog struct {
	ID         int64     `json:"id"`
	ActorID    int64     `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListFilter struct {
	Action  string
	ActorID int64
	Limit   int
	Offset  int
}

func FromDataModel(a *auditDatamodel.AuditLog) *AuditLog {
	return &AuditLog{
		ID:         a.ID,
		ActorID:    a.ActorID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Detail:     a.Detail,
		CreatedAt:  a.CreatedAt,
	}
}
