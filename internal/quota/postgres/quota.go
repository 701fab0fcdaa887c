package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/quota"
	yearendPostgres "github.com/frahmantamala/leave-management/internal/yearend/postgres"
	"gorm.io/gorm"
)

type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) quota.RepositoryAPI {
	return &QuotaRepository{db: db}
}

func (r *QuotaRepository) Transaction(ctx context.Context, fn func(tx quota.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&QuotaRepository{db: tx})
	})
}

func (r *QuotaRepository) List(ctx context.Context, filter quota.ListFilter) ([]*leaveDatamodel.LeaveQuota, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveQuota{})
		if filter.Year != 0 {
			query = query.Where("year = ?", filter.Year)
		}
		if filter.EmployeeID != 0 {
			query = query.Where("employee_id = ?", filter.EmployeeID)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*leaveDatamodel.LeaveQuota
	err := scoped().Preload("LeaveType").
		Order("year DESC, employee_id ASC, leave_type_id ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *QuotaRepository) ForEmployee(ctx context.Context, employeeID int64, year int) ([]*leaveDatamodel.LeaveQuota, error) {
	var rows []*leaveDatamodel.LeaveQuota
	err := r.db.WithContext(ctx).
		Preload("LeaveType").
		Where("employee_id = ? AND year = ?", employeeID, year).
		Order("leave_type_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *QuotaRepository) Find(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveQuota, error) {
	var row leaveDatamodel.LeaveQuota
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, leaveTypeID, year).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *QuotaRepository) Save(ctx context.Context, q *leaveDatamodel.LeaveQuota) error {
	return r.db.WithContext(ctx).Omit("LeaveType").Save(q).Error
}

func (r *QuotaRepository) EmployeeExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *QuotaRepository) LeaveTypesByCode(ctx context.Context, codes []string) ([]*leaveDatamodel.LeaveType, error) {
	var types []*leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("code IN ?", codes).Find(&types).Error
	return types, err
}

func (r *QuotaRepository) YearClosed(ctx context.Context, year int) (bool, error) {
	return yearendPostgres.YearClosed(r.db.WithContext(ctx), year)
}
