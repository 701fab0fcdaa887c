package auth

import (
	"context"

	"github.com/frahmantamala/leave-management/internal"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, user *internal.User, permission string) (bool, error)
	HasAnyPermission(ctx context.Context, user *internal.User, permissions []string) (bool, error)
}

// RolePermissionChecker trusts the permissions resolved at authentication and
// falls back to the role table when the principal carries none.
type RolePermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &RolePermissionChecker{}
}

func (c *RolePermissionChecker) HasPermission(ctx context.Context, user *internal.User, permission string) (bool, error) {
	return c.HasAnyPermission(ctx, user, []string{permission})
}

func (c *RolePermissionChecker) HasAnyPermission(_ context.Context, user *internal.User, permissions []string) (bool, error) {
	if user == nil {
		return false, nil
	}
	granted := user.Permissions
	if len(granted) == 0 {
		granted = PermissionsForRole(user.Role)
	}
	for _, have := range granted {
		for _, want := range permissions {
			if have == want {
				return true, nil
			}
		}
	}
	return false, nil
}
