package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	ListMine(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	UnreadCount(ctx context.Context, employeeID int64) (int64, error)
	MarkRead(ctx context.Context, employeeID, id int64) error
	MarkAllRead(ctx context.Context, employeeID int64) (int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
	}
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	limit, offset := h.Pagination(r)
	unreadOnly := r.URL.Query().Get("unread") == "true"

	items, err := h.Service.ListMine(r.Context(), user.ID, unreadOnly, limit, offset)
	if err != nil {
		h.Logger.Error("ListNotifications: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	count, err := h.Service.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("UnreadCount: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"unread": count})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.MarkRead(r.Context(), user.ID, id); err != nil {
		h.Logger.Error("MarkRead: service error", "error", err, "notification_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	updated, err := h.Service.MarkAllRead(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("MarkAllRead: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
