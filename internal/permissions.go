package internal

// Permission names carried on User.Permissions.
const (
	PermRequestLeave     = "request_leave"
	PermCheckIn          = "check_in"
	PermManageLeave      = "manage_leave"
	PermManageQuota      = "manage_quota"
	PermRunYearEnd       = "run_year_end"
	PermManageEmployees  = "manage_employees"
	PermManageAttendance = "manage_attendance"
	PermViewAuditLog     = "view_audit_log"
	PermViewReports      = "view_reports"
)
