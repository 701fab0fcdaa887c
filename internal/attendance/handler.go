package attendance

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
	"github.com/go-chi/chi"
)

const defaultHistoryDays = 30

type ServiceAPI interface {
	Today(ctx context.Context, employeeID int64) (*Today, error)
	CheckIn(ctx context.Context, employeeID int64, at time.Time, actorID int64) (*TimeRecord, error)
	CheckOut(ctx context.Context, employeeID int64, at time.Time, actorID int64) (*TimeRecord, error)
	TeamToday(ctx context.Context, filter TeamFilter) ([]*TeamMember, int64, error)
	History(ctx context.Context, employeeID int64, from, to time.Time) ([]*TimeRecord, error)
	ListSchedules(ctx context.Context) (*SchedulesResponse, error)
	SetSchedule(ctx context.Context, role string, dto SetScheduleDTO, actorID int64) (*Schedule, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Now     func() time.Time
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     service,
		Now:         time.Now,
	}
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	today, err := h.Service.Today(r.Context(), user.ID)
	if err != nil {
		h.Logger.Error("GetToday: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, today)
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	h.checkIn(w, r, user.ID, user.ID)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	h.checkOut(w, r, user.ID, user.ID)
}

// CheckInFor records a check-in on behalf of {employeeId}.
func (h *Handler) CheckInFor(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	employeeID, ok := h.IDParam(w, r, "employeeId")
	if !ok {
		return
	}
	h.checkIn(w, r, employeeID, user.ID)
}

func (h *Handler) CheckOutFor(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	employeeID, ok := h.IDParam(w, r, "employeeId")
	if !ok {
		return
	}
	h.checkOut(w, r, employeeID, user.ID)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request, employeeID, actorID int64) {
	rec, err := h.Service.CheckIn(r.Context(), employeeID, h.Now(), actorID)
	if err != nil {
		h.Logger.Error("CheckIn: service error", "error", err, "employee_id", employeeID, "actor_id", actorID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request, employeeID, actorID int64) {
	rec, err := h.Service.CheckOut(r.Context(), employeeID, h.Now(), actorID)
	if err != nil {
		h.Logger.Error("CheckOut: service error", "error", err, "employee_id", employeeID, "actor_id", actorID)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) TeamToday(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := TeamFilter{
		Role:   r.URL.Query().Get("role"),
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}

	members, total, err := h.Service.TeamToday(r.Context(), filter)
	if err != nil {
		h.Logger.Error("TeamToday: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, TeamResponse{Members: members, Total: total, Limit: limit, Offset: offset})
}

// History defaults to the last 30 days. Only attendance managers may pass employee_id.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	employeeID := user.ID
	if requested := int64(h.QueryInt(r, "employee_id", 0)); requested != 0 && requested != user.ID {
		if !user.HasPermission(internal.PermManageAttendance) {
			h.WriteAppError(w, internal.ErrUnauthorizedAccess)
			return
		}
		employeeID = requested
	}

	to := calendar.Normalize(h.Now())
	from := to.AddDate(0, 0, -defaultHistoryDays)
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

	records, err := h.Service.History(r.Context(), employeeID, from, to)
	if err != nil {
		h.Logger.Error("History: service error", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, HistoryResponse{Records: records})
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.Service.ListSchedules(r.Context())
	if err != nil {
		h.Logger.Error("ListSchedules: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, schedules)
}

func (h *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto SetScheduleDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	role := chi.URLParam(r, "role")
	schedule, err := h.Service.SetSchedule(r.Context(), role, dto, user.ID)
	if err != nil {
		h.Logger.Error("SetSchedule: service error", "error", err, "role", role)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, schedule)
}
