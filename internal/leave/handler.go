package leave

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

const defaultMaxUploadBytes = 5 << 20

type ServiceAPI interface {
	Create(ctx context.Context, employeeID int64, dto CreateLeaveRequestDTO, attachment *Attachment) (*LeaveRequest, error)
	Get(ctx context.Context, id, viewerID int64, canManage bool) (*LeaveRequest, error)
	ListMine(ctx context.Context, employeeID int64, filter ListFilter) ([]*LeaveRequest, int64, error)
	List(ctx context.Context, filter ListFilter) ([]*LeaveRequest, int64, error)
	Approve(ctx context.Context, id, actorID int64) (*LeaveRequest, error)
	SpecialApprove(ctx context.Context, id int64, dto SpecialApproveDTO, actorID int64) (*LeaveRequest, error)
	Reject(ctx context.Context, id int64, dto ReasonDTO, actorID int64) (*LeaveRequest, error)
	RequestWithdraw(ctx context.Context, id, employeeID int64, dto ReasonDTO) (*LeaveRequest, error)
	DecideWithdraw(ctx context.Context, id int64, accept bool, dto DecideWithdrawDTO, actorID int64) (*LeaveRequest, error)
	BulkApprove(ctx context.Context, dto BulkDecisionDTO, actorID int64) (*BulkResult, error)
	BulkReject(ctx context.Context, dto BulkDecisionDTO, actorID int64) (*BulkResult, error)
	ListHolidays(ctx context.Context, year int) ([]*Holiday, error)
	CreateHoliday(ctx context.Context, dto CreateHolidayDTO, actorID int64) (*Holiday, error)
	DeleteHoliday(ctx context.Context, id, actorID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(service ServiceAPI, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:        service,
		MaxUploadBytes: maxUploadBytes,
	}
}

// CreateLeaveRequest accepts JSON or a multipart form with an "attachment" file.
func (h *Handler) CreateLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var (
		dto        CreateLeaveRequestDTO
		attachment *Attachment
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var ok bool
		dto, attachment, ok = h.parseMultipart(w, r)
		if !ok {
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		if attachment != nil {
			if c, isCloser := attachment.Content.(io.Closer); isCloser {
				defer c.Close()
			}
		}
	} else if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.Create(r.Context(), user.ID, dto, attachment)
	if err != nil {
		h.Logger.Error("CreateLeaveRequest: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, req)
}

func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request) (CreateLeaveRequestDTO, *Attachment, bool) {
	var dto CreateLeaveRequestDTO

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.Logger.Warn("CreateLeaveRequest: invalid multipart form", "error", err)
		h.WriteAppError(w, internal.NewValidationError("invalid multipart form or attachment too large", internal.ErrCodeInvalidAttachment))
		return dto, nil, false
	}

	form := r.MultipartForm.Value
	first := func(key string) string {
		if v := form[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	if raw := first("leave_type_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid leave_type_id")
			return dto, nil, false
		}
		dto.LeaveTypeID = id
	}
	dto.LeaveTypeCode = first("leave_type_code")
	dto.StartDuration = first("start_duration")
	dto.EndDuration = first("end_duration")
	dto.Reason = first("reason")

	for field, target := range map[string]*calendar.Date{"start_date": &dto.StartDate, "end_date": &dto.EndDate} {
		raw := first(field)
		if raw == "" {
			continue
		}
		t, err := calendar.Parse(raw)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError(field, err.Error(), internal.ErrCodeInvalidDate))
			return dto, nil, false
		}
		target.Time = t
	}

	file, header, err := r.FormFile("attachment")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return dto, nil, true
		}
		h.WriteAppError(w, internal.NewValidationError("unreadable attachment", internal.ErrCodeInvalidAttachment))
		return dto, nil, false
	}
	return dto, &Attachment{Filename: header.Filename, Content: file}, true
}

func (h *Handler) GetLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	req, err := h.Service.Get(r.Context(), id, user.ID, user.HasPermission(internal.PermManageLeave))
	if err != nil {
		h.Logger.Error("GetLeaveRequest: service error", "error", err, "leave_request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) listFilter(r *http.Request) ListFilter {
	limit, offset := h.Pagination(r)
	q := r.URL.Query()
	return ListFilter{
		Status:      strings.ToUpper(q.Get("status")),
		EmployeeID:  int64(h.QueryInt(r, "employee_id", 0)),
		LeaveTypeID: int64(h.QueryInt(r, "leave_type_id", 0)),
		Year:        h.QueryInt(r, "year", 0),
		Limit:       limit,
		Offset:      offset,
	}
}

func (h *Handler) ListMyLeaveRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	filter := h.listFilter(r)
	requests, total, err := h.Service.ListMine(r.Context(), user.ID, filter)
	if err != nil {
		h.Logger.Error("ListMyLeaveRequests: service error", "error", err, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveRequestsResponse{Requests: requests, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	filter := h.listFilter(r)
	requests, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListLeaveRequests: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, LeaveRequestsResponse{Requests: requests, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

func (h *Handler) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	req, err := h.Service.Approve(r.Context(), id, user.ID)
	if err != nil {
		h.Logger.Error("ApproveLeaveRequest: service error", "error", err, "leave_request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) SpecialApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto SpecialApproveDTO
	if r.ContentLength != 0 && !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.SpecialApprove(r.Context(), id, dto, user.ID)
	if err != nil {
		h.Logger.Error("SpecialApproveLeaveRequest: service error", "error", err, "leave_request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto ReasonDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.Reject(r.Context(), id, dto, user.ID)
	if err != nil {
		h.Logger.Error("RejectLeaveRequest: service error", "error", err, "leave_request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) WithdrawLeaveRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto ReasonDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.RequestWithdraw(r.Context(), id, user.ID, dto)
	if err != nil {
		h.Logger.Error("WithdrawLeaveRequest: service error", "error", err, "leave_request_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ApproveWithdraw(w http.ResponseWriter, r *http.Request) {
	h.decideWithdraw(w, r, true)
}

func (h *Handler) RejectWithdraw(w http.ResponseWriter, r *http.Request) {
	h.decideWithdraw(w, r, false)
}

func (h *Handler) decideWithdraw(w http.ResponseWriter, r *http.Request, accept bool) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	var dto DecideWithdrawDTO
	if r.ContentLength != 0 && !h.DecodeJSON(w, r, &dto) {
		return
	}

	req, err := h.Service.DecideWithdraw(r.Context(), id, accept, dto, user.ID)
	if err != nil {
		h.Logger.Error("DecideWithdraw: service error", "error", err, "leave_request_id", id, "accept", accept)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto BulkDecisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.BulkApprove(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("BulkApprove: service error", "error", err, "count", len(dto.IDs))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) BulkReject(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto BulkDecisionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.BulkReject(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("BulkReject: service error", "error", err, "count", len(dto.IDs))
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Service.ListHolidays(r.Context(), h.QueryInt(r, "year", 0))
	if err != nil {
		h.Logger.Error("ListHolidays: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, HolidaysResponse{Holidays: holidays})
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}

	var dto CreateHolidayDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	holiday, err := h.Service.CreateHoliday(r.Context(), dto, user.ID)
	if err != nil {
		h.Logger.Error("CreateHoliday: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, holiday)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	user, ok := h.CurrentUser(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteHoliday(r.Context(), id, user.ID); err != nil {
		h.Logger.Error("DeleteHoliday: service error", "error", err, "holiday_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
