package attendance

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error

	// Employee returns nil without error when the id is unknown.
	Employee(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	// LockRecord returns nil without error when there is no record for that day.
	LockRecord(ctx context.Context, employeeID int64, day time.Time) (*attendanceDatamodel.TimeRecord, error)
	FindRecord(ctx context.Context, employeeID int64, day time.Time) (*attendanceDatamodel.TimeRecord, error)
	CreateRecord(ctx context.Context, rec *attendanceDatamodel.TimeRecord) error
	UpdateRecord(ctx context.Context, rec *attendanceDatamodel.TimeRecord) error
	History(ctx context.Context, employeeID int64, from, to time.Time) ([]*attendanceDatamodel.TimeRecord, error)
	Team(ctx context.Context, day time.Time, filter TeamFilter) ([]*TeamRow, int64, error)

	Schedule(ctx context.Context, role string) (*attendanceDatamodel.RoleSchedule, error)
	ListSchedules(ctx context.Context) ([]*attendanceDatamodel.RoleSchedule, error)
	SaveSchedule(ctx context.Context, s *attendanceDatamodel.RoleSchedule) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	repo               RepositoryAPI
	audit              AuditRecorder
	defaultStartMinute int
	loc                *time.Location
	logger             *slog.Logger
	now                func() time.Time
}

// NewService reads work dates and lateness in cfg's timezone. An unknown zone
// is rejected by Config.Validate; here it falls back to UTC.
func NewService(repo RepositoryAPI, auditRecorder AuditRecorder, cfg internal.AttendanceConfig, logger *slog.Logger) *Service {
	loc, err := cfg.Location()
	if err != nil {
		logger.Warn("attendance timezone not loaded, using UTC", "timezone", cfg.Timezone, "error", err)
		loc = time.UTC
	}
	return &Service{
		repo:               repo,
		audit:              auditRecorder,
		defaultStartMinute: cfg.DefaultStartMinute,
		loc:                loc,
		logger:             logger,
		now:                time.Now,
	}
}

// workDay is the office calendar day containing at.
func (s *Service) workDay(at time.Time) time.Time {
	return calendar.Normalize(at.In(s.loc))
}

func (s *Service) Today(ctx context.Context, employeeID int64) (*Today, error) {
	day := s.workDay(s.now())
	row, err := s.repo.FindRecord(ctx, employeeID, day)
	if err != nil {
		return nil, err
	}
	today := &Today{Date: calendar.NewDate(day), Status: StatusNotIn}
	if row != nil {
		today.Record = FromDataModel(row)
		today.Status = today.Record.Status
	}
	return today, nil
}

// CheckIn opens the day for employeeID. When actorID differs from employeeID
// the write is made on the employee's behalf and audited.
func (s *Service) CheckIn(ctx context.Context, employeeID int64, at time.Time, actorID int64) (*TimeRecord, error) {
	day := s.workDay(at)

	var created *attendanceDatamodel.TimeRecord
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		emp, err := s.activeEmployee(ctx, tx, employeeID)
		if err != nil {
			return err
		}

		existing, err := tx.LockRecord(ctx, employeeID, day)
		if err != nil {
			return err
		}
		if existing != nil && existing.CheckInAt != nil {
			if existing.CheckOutAt != nil {
				return ErrAlreadyCheckedOut
			}
			return ErrAlreadyCheckedIn
		}

		startMinute, err := s.startMinute(ctx, tx, emp.Role)
		if err != nil {
			return err
		}
		late := MinutesLate(at.In(s.loc), startMinute)

		rec := existing
		if rec == nil {
			rec = &attendanceDatamodel.TimeRecord{EmployeeID: employeeID, WorkDate: day}
		}
		rec.CheckInAt = &at
		rec.IsLate = late > 0
		rec.LateMinutes = late
		if actorID != employeeID {
			rec.RecordedBy = &actorID
		}

		if existing == nil {
			err = tx.CreateRecord(ctx, rec)
		} else {
			err = tx.UpdateRecord(ctx, rec)
		}
		if err != nil {
			return err
		}
		created = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checked in",
		"employee_id", employeeID,
		"actor_id", actorID,
		"late_minutes", created.LateMinutes)
	if actorID != employeeID {
		s.record(ctx, actorID, audit.ActionAttendanceCheckIn, created, map[string]interface{}{
			"employee_id": employeeID,
			"at":          at,
		})
	}
	return FromDataModel(created), nil
}

func (s *Service) CheckOut(ctx context.Context, employeeID int64, at time.Time, actorID int64) (*TimeRecord, error) {
	day := s.workDay(at)

	var updated *attendanceDatamodel.TimeRecord
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if _, err := s.activeEmployee(ctx, tx, employeeID); err != nil {
			return err
		}

		rec, err := tx.LockRecord(ctx, employeeID, day)
		if err != nil {
			return err
		}
		if rec == nil || rec.CheckInAt == nil {
			return ErrNotCheckedIn
		}
		if rec.CheckOutAt != nil {
			return ErrAlreadyCheckedOut
		}
		if at.Before(*rec.CheckInAt) {
			return internal.NewValidationError("check-out cannot precede check-in", internal.ErrCodeValidationFailed)
		}

		rec.CheckOutAt = &at
		if actorID != employeeID {
			rec.RecordedBy = &actorID
		}
		if err := tx.UpdateRecord(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checked out", "employee_id", employeeID, "actor_id", actorID)
	if actorID != employeeID {
		s.record(ctx, actorID, audit.ActionAttendanceCheckOut, updated, map[string]interface{}{
			"employee_id": employeeID,
			"at":          at,
		})
	}
	return FromDataModel(updated), nil
}

func (s *Service) activeEmployee(ctx context.Context, tx RepositoryAPI, id int64) (*employeeDatamodel.Employee, error) {
	emp, err := tx.Employee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	if !emp.IsActive {
		return nil, ErrEmployeeInactive
	}
	return emp, nil
}

func (s *Service) startMinute(ctx context.Context, tx RepositoryAPI, role string) (int, error) {
	sched, err := tx.Schedule(ctx, role)
	if err != nil {
		return 0, err
	}
	if sched == nil {
		return s.defaultStartMinute, nil
	}
	return sched.StartMinute, nil
}

// TeamToday lists every active employee with their status for the current day.
func (s *Service) TeamToday(ctx context.Context, filter TeamFilter) ([]*TeamMember, int64, error) {
	if err := ValidateTeamFilter(filter); err != nil {
		return nil, 0, err
	}

	rows, total, err := s.repo.Team(ctx, s.workDay(s.now()), filter)
	if err != nil {
		s.logger.Error("failed to load team attendance", "error", err)
		return nil, 0, err
	}
	members := make([]*TeamMember, len(rows))
	for i, row := range rows {
		members[i] = row.ToMember()
	}
	return members, total, nil
}

func (s *Service) History(ctx context.Context, employeeID int64, from, to time.Time) ([]*TimeRecord, error) {
	from, to = calendar.Normalize(from), calendar.Normalize(to)
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}

	rows, err := s.repo.History(ctx, employeeID, from, to)
	if err != nil {
		s.logger.Error("failed to load attendance history", "employee_id", employeeID, "error", err)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) ListSchedules(ctx context.Context) (*SchedulesResponse, error) {
	rows, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	out := &SchedulesResponse{
		Schedules: make([]*Schedule, len(rows)),
		Default:   &Schedule{StartMinute: s.defaultStartMinute, StartTime: FormatMinute(s.defaultStartMinute)},
	}
	for i, row := range rows {
		out.Schedules[i] = ScheduleFromDataModel(row)
	}
	return out, nil
}

func (s *Service) SetSchedule(ctx context.Context, role string, dto SetScheduleDTO, actorID int64) (*Schedule, error) {
	if err := ValidateRole(role); err != nil {
		return nil, err
	}
	minute, appErr := dto.Minute()
	if appErr != nil {
		return nil, appErr
	}

	row := &attendanceDatamodel.RoleSchedule{Role: role, StartMinute: minute, UpdatedAt: s.now()}
	if err := s.repo.SaveSchedule(ctx, row); err != nil {
		s.logger.Error("failed to save schedule", "role", role, "error", err)
		return nil, err
	}

	s.logger.Info("schedule updated", "role", role, "start_minute", minute, "actor_id", actorID)
	if s.audit != nil {
		if err := s.audit.Record(ctx, audit.Entry{
			ActorID:    actorID,
			Action:     audit.ActionScheduleUpdate,
			EntityType: "role_schedule",
			EntityID:   role,
			Detail:     map[string]interface{}{"start_minute": minute},
		}); err != nil {
			s.logger.Warn("failed to record audit log", "action", audit.ActionScheduleUpdate, "error", err)
		}
	}
	return ScheduleFromDataModel(row), nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, rec *attendanceDatamodel.TimeRecord, detail interface{}) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "time_record",
		EntityID:   strconv.FormatInt(rec.ID, 10),
		Detail:     detail,
	})
	if err != nil {
		s.logger.Warn("failed to record audit log", "action", action, "record_id", rec.ID, "error", err)
	}
}
