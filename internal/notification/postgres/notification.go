package postgres

import (
	"context"

	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/leave-management/internal/notification"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) notification.RepositoryAPI {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notificationDatamodel.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByEmployee(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error) {
	query := r.db.WithContext(ctx).Where("employee_id = ?", employeeID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var items []*notificationDatamodel.Notification
	err := query.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	return items, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, employeeID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("employee_id = ? AND is_read = ?", employeeID, false).
		Count(&count).Error
	return count, err
}

// MarkRead reports false when the notification does not belong to employeeID.
func (r *NotificationRepository) MarkRead(ctx context.Context, employeeID, id int64) (bool, error) {
	var n notificationDatamodel.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND employee_id = ?", id, employeeID).First(&n).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, err
	}

	err = r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	return err == nil, err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, employeeID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationDatamodel.Notification{}).
		Where("employee_id = ? AND is_read = ?", employeeID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
