package yearend

import (
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// ProcessCarryOverDTO maps leave type codes to base quotas, carry-over caps and
// consecutive-day caps for the target year.
type ProcessCarryOverDTO struct {
	TargetYear         int                        `json:"targetYear"`
	Quotas             map[string]decimal.Decimal `json:"quotas"`
	CarryConfigs       map[string]decimal.Decimal `json:"carryConfigs"`
	MaxConsecutiveDays map[string]int             `json:"maxConsecutiveDays"`
}

func (dto ProcessCarryOverDTO) Validate() *internal.AppError {
	if err := validation.ValidateYear("targetYear", dto.TargetYear); err != nil {
		return err
	}
	if dto.TargetYear-1 < validation.MinYear {
		return internal.NewValidationFieldError("targetYear", "targetYear must follow a valid source year", internal.ErrCodeInvalidYear)
	}
	if err := validation.ValidateDayMap("quotas", dto.Quotas); err != nil {
		return err
	}
	if err := validation.ValidateDayMap("carryConfigs", dto.CarryConfigs); err != nil {
		return err
	}

	v := validation.NewValidator()
	for code, days := range dto.MaxConsecutiveDays {
		v.Field(fmt.Sprintf("maxConsecutiveDays.%s", code), days).IntRange(0, 366, internal.ErrCodeInvalidDays)
	}
	return v.Validate()
}

// Codes lists every leave type code mentioned anywhere in the request.
func (dto ProcessCarryOverDTO) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	for code := range dto.Quotas {
		add(code)
	}
	for code := range dto.CarryConfigs {
		add(code)
	}
	for code := range dto.MaxConsecutiveDays {
		add(code)
	}
	return codes
}

type ReopenYearDTO struct {
	Year   int    `json:"year"`
	Reason string `json:"reason"`
}

func (dto ReopenYearDTO) Validate() *internal.AppError {
	if err := validation.ValidateYear("year", dto.Year); err != nil {
		return err
	}
	return validation.ValidateReason("reason", dto.Reason)
}

type CreateSystemConfigDTO struct {
	Year int `json:"year"`
}

func (dto CreateSystemConfigDTO) Validate() *internal.AppError {
	return validation.ValidateYear("year", dto.Year)
}

type SystemConfigsResponse struct {
	Configs []*SystemConfig `json:"configs"`
}
