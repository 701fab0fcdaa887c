package report

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type ServiceAPI interface {
	LeaveBalances(ctx context.Context, filter BalanceFilter) (*LeaveBalancesResponse, error)
	AttendanceSummary(ctx context.Context, from, to time.Time) (*AttendanceSummaryResponse, error)
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

func (h *Handler) LeaveBalances(w http.ResponseWriter, r *http.Request) {
	filter := BalanceFilter{
		Year:       h.QueryInt(r, "year", time.Now().Year()),
		EmployeeID: int64(h.QueryInt(r, "employee_id", 0)),
	}

	resp, err := h.Service.LeaveBalances(r.Context(), filter)
	if err != nil {
		h.Logger.Error("LeaveBalances: service error", "error", err, "year", filter.Year)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AttendanceSummary defaults to the current month.
func (h *Handler) AttendanceSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := calendar.Normalize(now)

	for field, target := range map[string]*time.Time{"from": &from, "to": &to} {
		raw := r.URL.Query().Get(field)
		if raw == "" {
			continue
		}
		t, err := calendar.Parse(raw)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError(field, err.Error(), internal.ErrCodeInvalidDate))
			return
		}
		*target = t
	}

	resp, err := h.Service.AttendanceSummary(r.Context(), from, to)
	if err != nil {
		h.Logger.Error("AttendanceSummary: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}
