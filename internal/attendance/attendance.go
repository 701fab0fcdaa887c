package attendance

import (
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
)

const (
	StatusNotIn = "NOT_IN"
	StatusIn    = "IN"
	StatusOut   = "OUT"
)

const MinutesPerDay = 24 * 60

type TimeRecord struct {
	ID          int64         `json:"id"`
	EmployeeID  int64         `json:"employee_id"`
	WorkDate    calendar.Date `json:"work_date"`
	Status      string        `json:"status"`
	CheckInAt   *time.Time    `json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time    `json:"check_out_at,omitempty"`
	IsLate      bool          `json:"is_late"`
	LateMinutes int           `json:"late_minutes"`
	RecordedBy  *int64        `json:"recorded_by,omitempty"`
}

// Today is what an employee sees for the current day; Record is nil before check-in.
type Today struct {
	Date   calendar.Date `json:"date"`
	Status string        `json:"status"`
	Record *TimeRecord   `json:"record,omitempty"`
}

// TeamRow is one employee joined with their record for a day, if any.
type TeamRow struct {
	EmployeeID  int64
	Name        string
	Email       string
	Role        string
	RecordID    *int64
	CheckInAt   *time.Time
	CheckOutAt  *time.Time
	IsLate      *bool
	LateMinutes *int
}

type TeamMember struct {
	EmployeeID  int64      `json:"employee_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CheckInAt   *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt  *time.Time `json:"check_out_at,omitempty"`
	IsLate      bool       `json:"is_late"`
	LateMinutes int        `json:"late_minutes"`
}

type Schedule struct {
	Role        string    `json:"role"`
	StartMinute int       `json:"start_minute"`
	StartTime   string    `json:"start_time"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

type TeamFilter struct {
	Role   string
	Status string
	Limit  int
	Offset int
}

var (
	ErrAlreadyCheckedIn  = internal.NewConflictError("already checked in today", internal.ErrCodeAlreadyCheckedIn)
	ErrNotCheckedIn      = internal.NewConflictError("not checked in today", internal.ErrCodeNotCheckedIn)
	ErrAlreadyCheckedOut = internal.NewConflictError("already checked out today", internal.ErrCodeAlreadyCheckedOut)
	ErrEmployeeNotFound  = internal.NewNotFoundError("employee not found", internal.ErrCodeEmployeeNotFound)
	ErrEmployeeInactive  = internal.NewConflictError("employee is inactive", internal.ErrCodeEmployeeInactive)
)

// StatusOf derives the day status from a record; nil means no check-in yet.
func StatusOf(checkInAt, checkOutAt *time.Time) string {
	switch {
	case checkOutAt != nil:
		return StatusOut
	case checkInAt != nil:
		return StatusIn
	default:
		return StatusNotIn
	}
}

// MinutesLate is how far at falls after startMinute, read on at's own clock. Never negative.
func MinutesLate(at time.Time, startMinute int) int {
	late := at.Hour()*60 + at.Minute() - startMinute
	if late < 0 {
		return 0
	}
	return late
}

// FormatMinute renders minutes after midnight as HH:MM.
func FormatMinute(minute int) string {
	return time.Date(0, 1, 1, minute/60, minute%60, 0, 0, time.UTC).Format("15:04")
}

func FromDataModel(r *attendanceDatamodel.TimeRecord) *TimeRecord {
	if r == nil {
		return nil
	}
	return &TimeRecord{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		WorkDate:    calendar.NewDate(r.WorkDate),
		Status:      StatusOf(r.CheckInAt, r.CheckOutAt),
		CheckInAt:   r.CheckInAt,
		CheckOutAt:  r.CheckOutAt,
		IsLate:      r.IsLate,
		LateMinutes: r.LateMinutes,
		RecordedBy:  r.RecordedBy,
	}
}

func FromDataModelSlice(rows []*attendanceDatamodel.TimeRecord) []*TimeRecord {
	out := make([]*TimeRecord, len(rows))
	for i, r := range rows {
		out[i] = FromDataModel(r)
	}
	return out
}

func ScheduleFromDataModel(s *attendanceDatamodel.RoleSchedule) *Schedule {
	return &Schedule{
		Role:        s.Role,
		StartMinute: s.StartMinute,
		StartTime:   FormatMinute(s.StartMinute),
		UpdatedAt:   s.UpdatedAt,
	}
}

func (row *TeamRow) ToMember() *TeamMember {
	m := &TeamMember{
		EmployeeID: row.EmployeeID,
		Name:       row.Name,
		Email:      row.Email,
		Role:       row.Role,
		Status:     StatusOf(row.CheckInAt, row.CheckOutAt),
		CheckInAt:  row.CheckInAt,
		CheckOutAt: row.CheckOutAt,
	}
	if row.IsLate != nil {
		m.IsLate = *row.IsLate
	}
	if row.LateMinutes != nil {
		m.LateMinutes = *row.LateMinutes
	}
	return m
}
