package postgres

import (
	"context"

	"github.com/frahmantamala/leave-management/internal/audit"
	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, entry *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AuditRepository) List(ctx context.Context, filter audit.ListFilter) ([]*auditDatamodel.AuditLog, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{})
		if filter.Action != "" {
			query = query.Where("action = ?", filter.Action)
		}
		if filter.ActorID > 0 {
			query = query.Where("actor_id = ?", filter.ActorID)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []*auditDatamodel.AuditLog
	err := scoped().Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&logs).Error
	return logs, total, err
}
