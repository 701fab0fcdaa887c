package postgres

import (
	"context"
	"errors"

	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"gorm.io/gorm"
)

type LeaveTypeRepository struct {
	db *gorm.DB
}

func NewLeaveTypeRepository(db *gorm.DB) leavetype.RepositoryAPI {
	return &LeaveTypeRepository{db: db}
}

func (r *LeaveTypeRepository) GetAll(ctx context.Context, includeInactive bool) ([]*leaveDatamodel.LeaveType, error) {
	query := r.db.WithContext(ctx)
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var types []*leaveDatamodel.LeaveType
	err := query.Order("code ASC").Find(&types).Error
	return types, err
}

func (r *LeaveTypeRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var t leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leavetype.ErrLeaveTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveTypeRepository) GetByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error) {
	var t leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *LeaveTypeRepository) Create(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *LeaveTypeRepository) Update(ctx context.Context, t *leaveDatamodel.LeaveType) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *LeaveTypeRepository) IsReferenced(ctx context.Context, id int64) (bool, error) {
	for _, model := range []interface{}{&leaveDatamodel.LeaveQuota{}, &leaveDatamodel.LeaveRequest{}} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Where("leave_type_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *LeaveTypeRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&leaveDatamodel.LeaveType{}, id).Error
}
