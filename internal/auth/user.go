package auth

import (
	"github.com/frahmantamala/leave-management/internal"
)

const (
	RoleWorker = "WORKER"
	RoleHR     = "HR"
)

var workerPermissions = []string{
	internal.PermRequestLeave,
	internal.PermCheckIn,
}

// HR holds every permission, including the worker ones.
var hrPermissions = []string{
	internal.PermRequestLeave,
	internal.PermCheckIn,
	internal.PermManageLeave,
	internal.PermManageQuota,
	internal.PermRunYearEnd,
	internal.PermManageEmployees,
	internal.PermManageAttendance,
	internal.PermViewAuditLog,
	internal.PermViewReports,
}

// PermissionsForRole returns a fresh slice; unknown roles get nothing.
func PermissionsForRole(role string) []string {
	var src []string
	switch role {
	case RoleHR:
		src = hrPermissions
	case RoleWorker:
		src = workerPermissions
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

func ToUser(acc *Account) *internal.User {
	return &internal.User{
		ID:          acc.ID,
		Email:       acc.Email,
		Role:        acc.Role,
		Permissions: PermissionsForRole(acc.Role),
	}
}
