package postgres

import (
	"context"
	"errors"

	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/yearend"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 200

type YearEndRepository struct {
	db *gorm.DB
}

func NewYearEndRepository(db *gorm.DB) yearend.RepositoryAPI {
	return &YearEndRepository{db: db}
}

func (r *YearEndRepository) Transaction(ctx context.Context, fn func(tx yearend.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&YearEndRepository{db: tx})
	})
}

func (r *YearEndRepository) ListConfigs(ctx context.Context) ([]*leaveDatamodel.SystemConfig, error) {
	var configs []*leaveDatamodel.SystemConfig
	err := r.db.WithContext(ctx).Order("year DESC").Find(&configs).Error
	return configs, err
}

func (r *YearEndRepository) GetConfig(ctx context.Context, year int) (*leaveDatamodel.SystemConfig, error) {
	var cfg leaveDatamodel.SystemConfig
	err := r.db.WithContext(ctx).Where("year = ?", year).First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, yearend.ErrYearConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *YearEndRepository) CreateConfig(ctx context.Context, cfg *leaveDatamodel.SystemConfig) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

// EnsureConfig inserts an open row for year unless one already exists.
func (r *YearEndRepository) EnsureConfig(ctx context.Context, year int) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "year"}}, DoNothing: true}).
		Create(&leaveDatamodel.SystemConfig{Year: year}).Error
}

// LockConfig reads the row with FOR UPDATE. sqlite ignores the clause and
// relies on its single writer instead.
func (r *YearEndRepository) LockConfig(ctx context.Context, year int) (*leaveDatamodel.SystemConfig, error) {
	var cfg leaveDatamodel.SystemConfig
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, yearend.ErrYearConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *YearEndRepository) SaveConfig(ctx context.Context, cfg *leaveDatamodel.SystemConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

func (r *YearEndRepository) ActiveLeaveTypes(ctx context.Context) ([]*leaveDatamodel.LeaveType, error) {
	var types []*leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("code ASC").
		Find(&types).Error
	return types, err
}

func (r *YearEndRepository) UpdateLeaveTypeLimits(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveType{}).
		Where("id = ?", t.ID).
		Updates(map[string]interface{}{
			"max_carry_over_days":  t.MaxCarryOverDays,
			"max_consecutive_days": t.MaxConsecutiveDays,
		}).Error
}

func (r *YearEndRepository) ActiveEmployeeIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("is_active = ?", true).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *YearEndRepository) QuotasForYear(ctx context.Context, year int) ([]*leaveDatamodel.LeaveQuota, error) {
	var quotas []*leaveDatamodel.LeaveQuota
	err := r.db.WithContext(ctx).Where("year = ?", year).Find(&quotas).Error
	return quotas, err
}

// UpsertQuotas overwrites total and used days on (employee, type, year) conflicts.
func (r *YearEndRepository) UpsertQuotas(ctx context.Context, rows []*leaveDatamodel.LeaveQuota) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "employee_id"},
				{Name: "leave_type_id"},
				{Name: "year"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"total_days", "used_days", "updated_at"}),
		}).
		CreateInBatches(rows, upsertBatchSize).Error
}

// YearClosed reports whether year has a closed config row. Repositories in
// other packages call it with their own handle so the check joins their
// transaction.
func YearClosed(db *gorm.DB, year int) (bool, error) {
	var count int64
	err := db.Model(&leaveDatamodel.SystemConfig{}).
		Where("year = ? AND is_closed = ?", year, true).
		Count(&count).Error
	return count > 0, err
}
