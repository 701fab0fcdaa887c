package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

const maxHistoryDays = 366

var roles = []string{"WORKER", "HR"}

type SetScheduleDTO struct {
	StartMinute *int   `json:"start_minute,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
}

// Minute resolves the start either from start_minute or an HH:MM start_time.
func (dto SetScheduleDTO) Minute() (int, *internal.AppError) {
	if dto.StartMinute != nil {
		v := validation.NewValidator()
		v.Field("start_minute", *dto.StartMinute).IntRange(0, MinutesPerDay-1, internal.ErrCodeValidationFailed)
		if err := v.Validate(); err != nil {
			return 0, err
		}
		return *dto.StartMinute, nil
	}
	t, err := time.Parse("15:04", strings.TrimSpace(dto.StartTime))
	if err != nil {
		return 0, internal.NewValidationFieldError("start_time", "start_time must be HH:MM", internal.ErrCodeValidationFailed)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func ValidateRole(role string) *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", role).Required().OneOf(roles...)
	return v.Validate()
}

func ValidateTeamFilter(f TeamFilter) *internal.AppError {
	v := validation.NewValidator()
	if f.Role != "" {
		v.Field("role", f.Role).OneOf(roles...)
	}
	if f.Status != "" {
		v.Field("status", f.Status).OneOf(StatusNotIn, StatusIn, StatusOut)
	}
	return v.Validate()
}

func ValidateRange(from, to time.Time) *internal.AppError {
	if to.Before(from) {
		return internal.NewValidationFieldError("to", "to must not be before from", internal.ErrCodeInvalidDate)
	}
	if to.Sub(from) > maxHistoryDays*24*time.Hour {
		return internal.NewValidationFieldError("to", fmt.Sprintf("history spans at most %d days", maxHistoryDays), internal.ErrCodeInvalidDate)
	}
	return nil
}

type TeamResponse struct {
	Members []*TeamMember `json:"members"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
}

type HistoryResponse struct {
	Records []*TimeRecord `json:"records"`
}

type SchedulesResponse struct {
	Schedules []*Schedule `json:"schedules"`
	Default   *Schedule   `json:"default"`
}
