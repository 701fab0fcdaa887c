package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/leave"
	yearendPostgres "github.com/frahmantamala/leave-management/internal/yearend/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Transaction(ctx context.Context, fn func(tx leave.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LeaveRepository{db: tx})
	})
}

func (r *LeaveRepository) Create(ctx context.Context, req *leaveDatamodel.LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("LeaveType").Create(req).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error) {
	var req leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).Preload("LeaveType").Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrLeaveRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) LockByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveRequest, error) {
	var req leaveDatamodel.LeaveRequest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrLeaveRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) Update(ctx context.Context, req *leaveDatamodel.LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("LeaveType").Save(req).Error
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.ListFilter) ([]*leaveDatamodel.LeaveRequest, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&leaveDatamodel.LeaveRequest{})
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.EmployeeID != 0 {
			query = query.Where("employee_id = ?", filter.EmployeeID)
		}
		if filter.LeaveTypeID != 0 {
			query = query.Where("leave_type_id = ?", filter.LeaveTypeID)
		}
		if filter.Year != 0 {
			from, to := calendar.YearBounds(filter.Year)
			query = query.Where("start_date >= ? AND start_date < ?", from, to)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*leaveDatamodel.LeaveRequest
	err := scoped().Preload("LeaveType").
		Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	return rows, total, err
}

func (r *LeaveRepository) HasOverlap(ctx context.Context, employeeID int64, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveRequest{}).
		Where("employee_id = ? AND status IN ?", employeeID, leave.ActiveStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *LeaveRepository) GetLeaveType(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error) {
	var lt leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lt, nil
}

func (r *LeaveRepository) GetLeaveTypeByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error) {
	var lt leaveDatamodel.LeaveType
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&lt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &lt, nil
}

func (r *LeaveRepository) LockQuota(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveQuota, error) {
	var q leaveDatamodel.LeaveQuota
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("employee_id = ? AND leave_type_id = ? AND year = ?", employeeID, leaveTypeID, year).
		First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *LeaveRepository) SaveQuota(ctx context.Context, q *leaveDatamodel.LeaveQuota) error {
	return r.db.WithContext(ctx).Omit("LeaveType").Save(q).Error
}

func (r *LeaveRepository) YearClosed(ctx context.Context, year int) (bool, error) {
	return yearendPostgres.YearClosed(r.db.WithContext(ctx), year)
}

// HolidaySet keys holidays in [from, to] by YYYY-MM-DD.
func (r *LeaveRepository) HolidaySet(ctx context.Context, from, to time.Time) (map[string]bool, error) {
	var rows []*leaveDatamodel.Holiday
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", calendar.Normalize(from), calendar.Normalize(to)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(rows))
	for _, h := range rows {
		set[calendar.Normalize(h.Date).Format(calendar.Layout)] = true
	}
	return set, nil
}

func (r *LeaveRepository) ListHolidays(ctx context.Context, year int) ([]*leaveDatamodel.Holiday, error) {
	query := r.db.WithContext(ctx)
	if year != 0 {
		from, to := calendar.YearBounds(year)
		query = query.Where("date >= ? AND date < ?", from, to)
	}

	var rows []*leaveDatamodel.Holiday
	err := query.Order("date ASC").Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) CreateHoliday(ctx context.Context, h *leaveDatamodel.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *LeaveRepository) HolidayExists(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&leaveDatamodel.Holiday{}).
		Where("date = ?", calendar.Normalize(date)).
		Count(&count).Error
	return count > 0, err
}

func (r *LeaveRepository) DeleteHoliday(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&leaveDatamodel.Holiday{}, id)
	return res.RowsAffected > 0, res.Error
}
