package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/leave-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.RepositoryAPI {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Transaction(ctx context.Context, fn func(tx attendance.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AttendanceRepository{db: tx})
	})
}

func (r *AttendanceRepository) Employee(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	var row employeeDatamodel.Employee
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AttendanceRepository) LockRecord(ctx context.Context, employeeID int64, day time.Time) (*attendanceDatamodel.TimeRecord, error) {
	return r.findRecord(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), employeeID, day)
}

func (r *AttendanceRepository) FindRecord(ctx context.Context, employeeID int64, day time.Time) (*attendanceDatamodel.TimeRecord, error) {
	return r.findRecord(r.db.WithContext(ctx), employeeID, day)
}

func (r *AttendanceRepository) findRecord(query *gorm.DB, employeeID int64, day time.Time) (*attendanceDatamodel.TimeRecord, error) {
	var row attendanceDatamodel.TimeRecord
	err := query.Where("employee_id = ? AND work_date = ?", employeeID, day).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AttendanceRepository) CreateRecord(ctx context.Context, rec *attendanceDatamodel.TimeRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *AttendanceRepository) UpdateRecord(ctx context.Context, rec *attendanceDatamodel.TimeRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *AttendanceRepository) History(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendanceDatamodel.TimeRecord, error) {
	var rows []*attendanceDatamodel.TimeRecord
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND work_date >= ? AND work_date <= ?", employeeID, from, to).
		Order("work_date DESC").
		Find(&rows).Error
	return rows, err
}

// Team left joins active employees with their record for day so absent
// employees show up as NOT_IN.
func (r *AttendanceRepository) Team(ctx context.Context, day time.Time, filter attendance.TeamFilter) ([]*attendance.TeamRow, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).
			Table("employees e").
			Joins("LEFT JOIN time_records t ON t.employee_id = e.id AND t.work_date = ?", day).
			Where("e.is_active = ?", true)
		if filter.Role != "" {
			query = query.Where("e.role = ?", filter.Role)
		}
		switch filter.Status {
		case attendance.StatusNotIn:
			query = query.Where("t.check_in_at IS NULL")
		case attendance.StatusIn:
			query = query.Where("t.check_in_at IS NOT NULL AND t.check_out_at IS NULL")
		case attendance.StatusOut:
			query = query.Where("t.check_out_at IS NOT NULL")
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*attendance.TeamRow
	err := scoped().
		Select(`e.id AS employee_id, e.name, e.email, e.role,
			t.id AS record_id, t.check_in_at, t.check_out_at, t.is_late, t.late_minutes`).
		Order("e.name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Scan(&rows).Error
	return rows, total, err
}

func (r *AttendanceRepository) Schedule(ctx context.Context, role string) (*attendanceDatamodel.RoleSchedule, error) {
	var row attendanceDatamodel.RoleSchedule
	if err := r.db.WithContext(ctx).Where("role = ?", role).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AttendanceRepository) ListSchedules(ctx context.Context) ([]*attendanceDatamodel.RoleSchedule, error) {
	var rows []*attendanceDatamodel.RoleSchedule
	err := r.db.WithContext(ctx).Order("role ASC").Find(&rows).Error
	return rows, err
}

func (r *AttendanceRepository) SaveSchedule(ctx context.Context, s *attendanceDatamodel.RoleSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}},
			DoUpdates: clause.AssignmentColumns([]string{"start_minute", "updated_at"}),
		}).
		Create(s).Error
}
