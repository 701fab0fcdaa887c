package attendance

import "time"

type TimeRecord struct {
	ID          int64      `gorm:"primaryKey"`
	EmployeeID  int64      `gorm:"column:employee_id;not null;uniqueIndex:idx_time_records_employee_day"`
	WorkDate    time.Time  `gorm:"column:work_date;type:date;not null;uniqueIndex:idx_time_records_employee_day"`
	CheckInAt   *time.Time `gorm:"column:check_in_at"`
	CheckOutAt  *time.Time `gorm:"column:check_out_at"`
	IsLate      bool       `gorm:"column:is_late;not null;default:false"`
	LateMinutes int        `gorm:"column:late_minutes;not null;default:0"`
	RecordedBy  *int64     `gorm:"column:recorded_by"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (TimeRecord) TableName() string {
	return "time_records"
}

// RoleSchedule stores the expected start of day per role in minutes after midnight.
type RoleSchedule struct {
	Role        string    `gorm:"column:role;primaryKey"`
	StartMinute int       `gorm:"column:start_minute;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RoleSchedule) TableName() string {
	return "role_schedules"
}
