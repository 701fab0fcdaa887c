package notification

import "time"

type Notification struct {
	ID         int64     `gorm:"primaryKey"`
	EmployeeID int64     `gorm:"column:employee_id;not null;index"`
	Type       string    `gorm:"column:type;not null"`
	Message    string    `gorm:"column:message;not null"`
	RequestID  *int64    `gorm:"column:request_id"`
	IsRead     bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
