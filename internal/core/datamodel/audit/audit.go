package audit

import "time"

type AuditLog struct {
	ID         int64     `gorm:"primaryKey"`
	ActorID    int64     `gorm:"column:actor_id;not null;index"`
	Action     string    `gorm:"column:action;not null;index"`
	EntityType string    `gorm:"column:entity_type;not null"`
	EntityID   string    `gorm:"column:entity_id"`
	Detail     string    `gorm:"column:detail"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
