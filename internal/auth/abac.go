package auth

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/jmoiron/sqlx"
)

var errLeaveHidden = internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveRequestNotFound)

// ABACPolicy decides access from the principal and the resource owner.
type ABACPolicy struct {
	checker PermissionChecker
}

func NewABACPolicy(checker PermissionChecker) *ABACPolicy {
	return &ABACPolicy{checker: checker}
}

// CanViewLeave allows the owner and holders of manage_leave. Others get a
// not-found so ids of other employees' requests are not disclosed.
func (p *ABACPolicy) CanViewLeave(ctx context.Context, u *internal.User, ownerID int64) error {
	if u == nil {
		return internal.ErrInvalidToken
	}
	if u.ID == ownerID {
		return nil
	}
	ok, err := p.checker.HasPermission(ctx, u, internal.PermManageLeave)
	if err != nil {
		return err
	}
	if !ok {
		return errLeaveHidden
	}
	return nil
}

// LeaveOwnerLookup reads the owner of a leave request with a raw query.
type LeaveOwnerLookup struct {
	db *sqlx.DB
}

func NewLeaveOwnerLookup(db *sqlx.DB) *LeaveOwnerLookup {
	return &LeaveOwnerLookup{db: db}
}

func (l *LeaveOwnerLookup) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var ownerID int64
	err := l.db.GetContext(ctx, &ownerID, l.db.Rebind("SELECT employee_id FROM leave_requests WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errLeaveHidden
	}
	return ownerID, err
}

// RequireCanViewLeave guards routes carrying a leave request {id}.
func RequireCanViewLeave(lookup *LeaveOwnerLookup, policy *ABACPolicy, logger *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := base.CurrentUser(w, r)
			if !ok {
				return
			}
			id, ok := base.IDParam(w, r, "id")
			if !ok {
				return
			}

			ownerID, err := lookup.OwnerOf(r.Context(), id)
			if err == nil {
				err = policy.CanViewLeave(r.Context(), user, ownerID)
			}
			if err != nil {
				logger.Warn("leave access denied", "user_id", user.ID, "leave_request_id", id, "error", err)
				base.HandleServiceError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
