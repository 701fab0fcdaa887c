package quota

import (
	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// AdjustQuotaDTO sets the total days per leave type code for one employee and year.
type AdjustQuotaDTO struct {
	Year   int                        `json:"year"`
	Quotas map[string]decimal.Decimal `json:"quotas"`
}

func (dto AdjustQuotaDTO) Validate() *internal.AppError {
	if err := validation.ValidateYear("year", dto.Year); err != nil {
		return err
	}
	if len(dto.Quotas) == 0 {
		return internal.NewValidationFieldError("quotas", "at least one leave type is required", internal.ErrCodeValidationFailed)
	}
	return validation.ValidateDayMap("quotas", dto.Quotas)
}

type QuotasResponse struct {
	Quotas []*Quota `json:"quotas"`
	Total  int64    `json:"total"`
	Limit  int      `json:"limit,omitempty"`
	Offset int      `json:"offset,omitempty"`
}
