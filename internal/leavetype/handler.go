package leavetype

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, includeInactive bool) ([]*LeaveType, error)
	Get(ctx context.Context, id int64) (*LeaveType, error)
	GetByCode(ctx context.Context, code string) (*LeaveType, error)
	Create(ctx context.Context, dto CreateLeaveTypeDTO, actorID int64) (*LeaveType, error)
	Update(ctx context.Context, id int64, dto UpdateLeaveTypeDTO, actorID int64) (*LeaveType, error)
	SetActive(ctx context.Context, id int64, active bool, actorID int64) (*LeaveType, error)
	Delete(ctx context.Context, id, actorID int64) error
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

func (h *Handler) GetLeaveTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	types, err := h.Service.List(r.Context(), includeInactive)
	if err != nil {
		h.Logger.Error("GetLeaveTypes: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveTypesResponse{LeaveTypes: types})
}

// GetLeaveType resolves {id} as a numeric id or, failing that, a type code.
func (h *Handler) GetLeaveType(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "id")

	var (
		lt  *LeaveType
		err error
	)
	if id, convErr := strconv.ParseInt(ref, 10, 64); convErr == nil {
		lt, err = h.Service.Get(r.Context(), id)
	} else {
		lt, err = h.Service.GetByCode(r.Context(), ref)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) CreateLeaveType(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateLeaveTypeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	lt, err := h.Service.Create(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateLeaveType: service error", "error", err, "code", dto.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, lt)
}

func (h *Handler) UpdateLeaveType(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto UpdateLeaveTypeDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	lt, err := h.Service.Update(r.Context(), id, dto, user.ID)
	if err != nil {
		h.Logger.Error("UpdateLeaveType: service error", "error", err, "leave_type_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) ActivateLeaveType(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) DeactivateLeaveType(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	lt, err := h.Service.SetActive(r.Context(), id, active, user.ID)
	if err != nil {
		h.Logger.Error("SetLeaveTypeActive: service error", "error", err, "leave_type_id", id, "active", active)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, lt)
}

func (h *Handler) DeleteLeaveType(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id, user.ID); err != nil {
		h.Logger.Error("DeleteLeaveType: service error", "error", err, "leave_type_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
