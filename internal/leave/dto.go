package leave

import (
	"fmt"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const (
	maxRequestSpanDays = 366
	MaxBulkItems       = 100
)

// CreateLeaveRequestDTO accepts either leave_type_id or leave_type_code.
type CreateLeaveRequestDTO struct {
	LeaveTypeID   int64         `json:"leave_type_id"`
	LeaveTypeCode string        `json:"leave_type_code"`
	StartDate     calendar.Date `json:"start_date"`
	EndDate       calendar.Date `json:"end_date"`
	StartDuration string        `json:"start_duration"`
	EndDuration   string        `json:"end_duration"`
	Reason        string        `json:"reason"`
}

func (dto *CreateLeaveRequestDTO) Normalize() {
	dto.LeaveTypeCode = strings.ToUpper(strings.TrimSpace(dto.LeaveTypeCode))
	dto.Reason = strings.TrimSpace(dto.Reason)
	if dto.StartDuration == "" {
		dto.StartDuration = calendar.DurationFull
	}
	if dto.EndDuration == "" {
		dto.EndDuration = calendar.DurationFull
	}
	dto.StartDate = calendar.NewDate(dto.StartDate.Time)
	dto.EndDate = calendar.NewDate(dto.EndDate.Time)
}

func (dto CreateLeaveRequestDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.LeaveTypeID == 0 {
		v.Field("leave_type_code", dto.LeaveTypeCode).Required()
	}
	v.Field("start_date", dto.StartDate.Time).Required()
	v.Field("end_date", dto.EndDate.Time).Required()
	v.Field("start_duration", dto.StartDuration).OneOf(calendar.DurationFull, calendar.DurationHalfMorning, calendar.DurationHalfAfternoon)
	v.Field("end_duration", dto.EndDuration).OneOf(calendar.DurationFull, calendar.DurationHalfMorning, calendar.DurationHalfAfternoon)
	v.Field("reason", dto.Reason).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}

	if dto.EndDate.Before(dto.StartDate.Time) {
		return internal.NewValidationFieldError("end_date", "end_date must not be before start_date", internal.ErrCodeInvalidDate)
	}
	if calendar.ConsecutiveDays(dto.StartDate.Time, dto.EndDate.Time) > maxRequestSpanDays {
		return internal.NewValidationFieldError("end_date", fmt.Sprintf("a request may span at most %d days", maxRequestSpanDays), internal.ErrCodeInvalidDate)
	}
	if err := validation.ValidateYear("start_date", dto.StartDate.Year()); err != nil {
		return err
	}
	return nil
}

type ReasonDTO struct {
	Reason string `json:"reason"`
}

func (dto ReasonDTO) Validate() *internal.AppError {
	return validation.ValidateReason("reason", dto.Reason)
}

// SpecialApproveDTO optionally grants more than the shortfall.
type SpecialApproveDTO struct {
	ExtraDays *decimal.Decimal `json:"extra_days,omitempty"`
	Note      string           `json:"note,omitempty"`
}

func (dto SpecialApproveDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.ExtraDays != nil {
		v.Field("extra_days", *dto.ExtraDays).
			DaysRange(decimal.Zero, validation.MaxDaysPerYear, internal.ErrCodeInvalidDays).
			HalfDayStep(internal.ErrCodeInvalidDays)
	}
	v.Field("note", dto.Note).MaxLength(1000)
	return v.Validate()
}

type DecideWithdrawDTO struct {
	Note string `json:"note,omitempty"`
}

type BulkDecisionDTO struct {
	IDs    []int64 `json:"ids"`
	Reason string  `json:"reason,omitempty"`
}

func (dto BulkDecisionDTO) Validate(reasonRequired bool) *internal.AppError {
	if len(dto.IDs) == 0 {
		return internal.NewValidationFieldError("ids", "ids must not be empty", internal.ErrCodeValidationFailed)
	}
	if len(dto.IDs) > MaxBulkItems {
		return internal.NewValidationFieldError("ids", fmt.Sprintf("at most %d ids per call", MaxBulkItems), internal.ErrCodeValidationFailed)
	}
	seen := make(map[int64]bool, len(dto.IDs))
	for _, id := range dto.IDs {
		if id <= 0 || seen[id] {
			return internal.NewValidationFieldError("ids", "ids must be positive and unique", internal.ErrCodeValidationFailed)
		}
		seen[id] = true
	}
	if reasonRequired {
		return validation.ValidateReason("reason", dto.Reason)
	}
	return nil
}

type CreateHolidayDTO struct {
	Date calendar.Date `json:"date"`
	Name string        `json:"name"`
}

func (dto CreateHolidayDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("date", dto.Date.Time).Required()
	v.Field("name", dto.Name).Required().MaxLength(255)
	return v.Validate()
}

type LeaveRequestsResponse struct {
	Requests []*LeaveRequest `json:"requests"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

type HolidaysResponse struct {
	Holidays []*Holiday `json:"holidays"`
}

type BulkResult struct {
	Processed int             `json:"processed"`
	Requests  []*LeaveRequest `json:"requests"`
}
