package quota

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Quota, int64, error)
	ForEmployee(ctx context.Context, employeeID int64, year int) ([]*Quota, error)
	Adjust(ctx context.Context, employeeID int64, dto AdjustQuotaDTO, actorID int64) ([]*Quota, error)
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

func (h *Handler) ListQuotas(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ListFilter{
		Year:       h.QueryInt(r, "year", 0),
		EmployeeID: int64(h.QueryInt(r, "employee_id", 0)),
		Limit:      limit,
		Offset:     offset,
	}

	quotas, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListQuotas: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, QuotasResponse{
		Quotas: quotas,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *Handler) GetEmployeeQuotas(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.IDParam(w, r, "employeeId")
	if !ok {
		return
	}
	h.writeEmployeeQuotas(w, r, employeeID)
}

func (h *Handler) GetMyQuotas(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	h.writeEmployeeQuotas(w, r, user.ID)
}

func (h *Handler) writeEmployeeQuotas(w http.ResponseWriter, r *http.Request, employeeID int64) {
	year := h.QueryInt(r, "year", time.Now().Year())

	quotas, err := h.Service.ForEmployee(r.Context(), employeeID, year)
	if err != nil {
		h.Logger.Error("GetEmployeeQuotas: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, QuotasResponse{Quotas: quotas, Total: int64(len(quotas))})
}

func (h *Handler) AdjustQuotas(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	employeeID, ok := h.IDParam(w, r, "employeeId")
	if !ok {
		return
	}

	var dto AdjustQuotaDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	quotas, err := h.Service.Adjust(r.Context(), employeeID, dto, user.ID)
	if err != nil {
		h.Logger.Error("AdjustQuotas: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, QuotasResponse{Quotas: quotas, Total: int64(len(quotas))})
}
