package leavetype

import (
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

type CreateLeaveTypeDTO struct {
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	IsPaid             bool            `json:"is_paid"`
	MaxCarryOverDays   decimal.Decimal `json:"max_carry_over_days"`
	MaxConsecutiveDays int             `json:"max_consecutive_days"`
}

func (dto *CreateLeaveTypeDTO) Normalize() {
	dto.Code = strings.ToUpper(strings.TrimSpace(dto.Code))
	dto.Name = strings.TrimSpace(dto.Name)
}

func (dto CreateLeaveTypeDTO) Validate() *internal.AppError {
	if err := validation.ValidateLeaveTypeCode(dto.Code); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(100)
	v.Field("max_carry_over_days", dto.MaxCarryOverDays).
		DaysRange(decimal.Zero, validation.MaxDaysPerYear, internal.ErrCodeInvalidDays).
		HalfDayStep(internal.ErrCodeInvalidDays)
	v.Field("max_consecutive_days", dto.MaxConsecutiveDays).IntRange(0, 366, internal.ErrCodeInvalidDays)
	return v.Validate()
}

type UpdateLeaveTypeDTO struct {
	Name               *string          `json:"name,omitempty"`
	IsPaid             *bool            `json:"is_paid,omitempty"`
	MaxCarryOverDays   *decimal.Decimal `json:"max_carry_over_days,omitempty"`
	MaxConsecutiveDays *int             `json:"max_consecutive_days,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
}

func (dto UpdateLeaveTypeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", strings.TrimSpace(*dto.Name)).Required().MaxLength(100)
	}
	if dto.MaxCarryOverDays != nil {
		v.Field("max_carry_over_days", *dto.MaxCarryOverDays).
			DaysRange(decimal.Zero, validation.MaxDaysPerYear, internal.ErrCodeInvalidDays).
			HalfDayStep(internal.ErrCodeInvalidDays)
	}
	if dto.MaxConsecutiveDays != nil {
		v.Field("max_consecutive_days", *dto.MaxConsecutiveDays).IntRange(0, 366, internal.ErrCodeInvalidDays)
	}
	return v.Validate()
}

type LeaveTypesResponse struct {
	LeaveTypes []*LeaveType `json:"leave_types"`
}
