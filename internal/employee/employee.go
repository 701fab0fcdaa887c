package employee

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
)

const (
	RoleWorker = "WORKER"
	RoleHR     = "HR"
)

type Employee struct {
	ID          int64          `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        string         `json:"role"`
	IsActive    bool           `json:"is_active"`
	JoiningDate *calendar.Date `json:"joining_date,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type ListFilter struct {
	Role   string
	Active *bool
	Search string
	Limit  int
	Offset int
}

var (
	ErrEmployeeNotFound = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmailTaken       = internal.NewConflictError("email is already registered", internal.ErrCodeEmailTaken)
	ErrEmployeeInactive = internal.NewConflictError("employee is inactive", internal.ErrCodeEmployeeInactive)
)

func FromDataModel(e *employeeDatamodel.Employee) *Employee {
	emp := &Employee{
		ID:        e.ID,
		Email:     e.Email,
		Name:      e.Name,
		Role:      e.Role,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if e.JoiningDate != nil {
		d := calendar.NewDate(*e.JoiningDate)
		emp.JoiningDate = &d
	}
	return emp
}

func FromDataModelSlice(rows []*employeeDatamodel.Employee) []*Employee {
	result := make([]*Employee, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
