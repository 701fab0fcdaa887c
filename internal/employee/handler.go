package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEmployeeDTO, actorID int64) (*Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*Employee, int64, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO, actorID int64) (*Employee, error)
	Deactivate(ctx context.Context, id, actorID int64) (*Employee, error)
	Purge(ctx context.Context, id, actorID int64) error
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

func (h *Handler) GetCurrentEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	emp, err := h.Service.Get(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetCurrentEmployee: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"employee":    emp,
		"permissions": user.Permissions,
	})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	q := r.URL.Query()
	filter := ListFilter{
		Role:   q.Get("role"),
		Search: q.Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	if active := q.Get("active"); active != "" {
		isActive := active == "true"
		filter.Active = &isActive
	}

	employees, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListEmployees: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EmployeesResponse{
		Employees: employees,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	})
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateEmployeeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	emp, err := h.Service.Create(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateEmployee: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, emp)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	emp, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetEmployee: service error", "error", err, "employee_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateEmployeeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	emp, err := h.Service.Update(r.Context(), id, dto, user.ID)
	if err != nil {
		h.Logger.Error("UpdateEmployee: service error", "error", err, "employee_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) DeactivateEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	emp, err := h.Service.Deactivate(r.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("DeactivateEmployee: service error", "error", err, "employee_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, emp)
}

func (h *Handler) PurgeEmployee(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Purge(r.Context(), id, user.ID); err != nil {
		h.Logger.Error("PurgeEmployee: service error", "error", err, "employee_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
