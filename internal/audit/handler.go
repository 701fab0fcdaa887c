package audit

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*AuditLog, int64, error)
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

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		Action:  r.URL.Query().Get("action"),
		ActorID: int64(h.QueryInt(r, "actor_id", 0)),
		Limit:   limit,
		Offset:  offset,
	}

	logs, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListAuditLogs: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audit_logs": logs,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}
