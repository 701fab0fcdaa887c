package yearend

import (
	"context"
	"net/http"

	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	ListSystemConfigs(ctx context.Context) ([]*SystemConfig, error)
	GetSystemConfig(ctx context.Context, year int) (*SystemConfig, error)
	CreateSystemConfig(ctx context.Context, dto CreateSystemConfigDTO, actorID int64) (*SystemConfig, error)
	ProcessCarryOver(ctx context.Context, dto ProcessCarryOverDTO, actorID int64) (*Result, error)
	ReopenYear(ctx context.Context, dto ReopenYearDTO, actorID int64) (*SystemConfig, error)
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

func (h *Handler) ListSystemConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.Service.ListSystemConfigs(r.Context())
	if err != nil {
		h.Logger.Error("ListSystemConfigs: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SystemConfigsResponse{Configs: configs})
}

func (h *Handler) GetSystemConfig(w http.ResponseWriter, r *http.Request) {
	year, ok := h.IDParam(w, r, "year")
	if !ok {
		return
	}

	cfg, err := h.Service.GetSystemConfig(r.Context(), int(year))
	if err != nil {
		h.Logger.Error("GetSystemConfig: service error", "error", err, "year", year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cfg)
}

func (h *Handler) CreateSystemConfig(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateSystemConfigDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	cfg, err := h.Service.CreateSystemConfig(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateSystemConfig: service error", "error", err, "year", dto.Year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, cfg)
}

func (h *Handler) ProcessCarryOver(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto ProcessCarryOverDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.ProcessCarryOver(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("ProcessCarryOver: service error", "error", err, "target_year", dto.TargetYear)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ReopenYear(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto ReopenYearDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	cfg, err := h.Service.ReopenYear(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("ReopenYear: service error", "error", err, "year", dto.Year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cfg)
}
