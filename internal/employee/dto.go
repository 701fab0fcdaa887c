package employee

import (
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
)

type CreateEmployeeDTO struct {
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	Password    string         `json:"password"`
	JoiningDate *calendar.Date `json:"joining_date,omitempty"`
}

func (dto *CreateEmployeeDTO) Normalize() {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Role == "" {
		dto.Role = RoleWorker
	}
}

func (dto CreateEmployeeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", dto.Email).Required().Email().MaxLength(255)
	v.Field("name", dto.Name).Required().MaxLength(255)
	v.Field("role", dto.Role).OneOf(RoleWorker, RoleHR)
	v.Field("password", dto.Password).Required().MinLength(8).MaxLength(72)
	return v.Validate()
}

type UpdateEmployeeDTO struct {
	Name        *string        `json:"name,omitempty"`
	Role        *string        `json:"role,omitempty"`
	JoiningDate *calendar.Date `json:"joining_date,omitempty"`
}

func (dto UpdateEmployeeDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(255)
	}
	if dto.Role != nil {
		v.Field("role", *dto.Role).OneOf(RoleWorker, RoleHR)
	}
	return v.Validate()
}

type EmployeesResponse struct {
	Employees []*Employee `json:"employees"`
	Total     int64       `json:"total"`
	Limit     int         `json:"limit"`
	Offset    int         `json:"offset"`
}
