package postgres

import (
	"context"
	"errors"
	"strings"

	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/leave-management/internal/employee"
	"gorm.io/gorm"
)

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &e, nil
}

// GetByEmail returns nil without error when no employee has the address.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListFilter) ([]*employeeDatamodel.Employee, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{})
		if filter.Role != "" {
			query = query.Where("role = ?", filter.Role)
		}
		if filter.Active != nil {
			query = query.Where("is_active = ?", *filter.Active)
		}
		if filter.Search != "" {
			like := "%" + strings.ToLower(filter.Search) + "%"
			query = query.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", like, like)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*employeeDatamodel.Employee
	err := scoped().Order("name ASC, id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *EmployeeRepository) Update(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Model(e).Select("name", "role", "is_active", "joining_date", "updated_at").Updates(e).Error
}

// ListActiveIDs returns active employee ids, optionally restricted to one role.
func (r *EmployeeRepository) ListActiveIDs(ctx context.Context, role string) ([]int64, error) {
	query := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("is_active = ?", true)
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var ids []int64
	err := query.Order("id ASC").Pluck("id", &ids).Error
	return ids, err
}

// Purge deletes dependants before the employee row itself.
func (r *EmployeeRepository) Purge(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependants := []interface{}{
			&notificationDatamodel.Notification{},
			&attendanceDatamodel.TimeRecord{},
			&leaveDatamodel.LeaveRequest{},
			&leaveDatamodel.LeaveQuota{},
		}
		for _, model := range dependants {
			if err := tx.Where("employee_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&employeeDatamodel.Employee{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return employee.ErrEmployeeNotFound
		}
		return nil
	})
}
