package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
)

type RBACAuthorization struct {
	checker PermissionChecker
	base    *transport.BaseHandler
	logger  *slog.Logger
}

func NewRBACAuthorization(checker PermissionChecker, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		checker: checker,
		base:    transport.NewBaseHandler(logger),
		logger:  logger,
	}
}

// Require lets the request through when the principal holds any of permissions.
func (ra *RBACAuthorization) Require(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: user not found in context")
				ra.base.WriteAppError(w, internal.ErrInvalidToken.WithMessage("unauthorized"))
				return
			}

			allowed, err := ra.checker.HasAnyPermission(r.Context(), user, permissions)
			if err != nil {
				ra.logger.ErrorContext(r.Context(), "authorization check failed", "error", err, "user_id", user.ID)
				ra.base.HandleServiceError(w, err)
				return
			}

			if !allowed {
				ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
					"user_id", user.ID,
					"required_permissions", permissions,
					"user_permissions", user.Permissions)
				ra.base.WriteAppError(w, internal.ErrUnauthorizedAccess)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
