package notification

import (
	"context"
	"log/slog"

	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/frahmantamala/leave-management/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, n *notificationDatamodel.Notification) error
	ListByEmployee(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]*notificationDatamodel.Notification, error)
	CountUnread(ctx context.Context, employeeID int64) (int64, error)
	MarkRead(ctx context.Context, employeeID, id int64) (bool, error)
	MarkAllRead(ctx context.Context, employeeID int64) (int64, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Notify stores a message for one employee and pushes it to their room.
func (s *Service) Notify(ctx context.Context, employeeID int64, kind, message string, requestID *int64) error {
	row := &notificationDatamodel.Notification{
		EmployeeID: employeeID,
		Type:       kind,
		Message:    message,
		RequestID:  requestID,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to store notification", "employee_id", employeeID, "type", kind, "error", err)
		return err
	}

	s.publish(ctx, events.NewNotificationCreatedEvent(row.ID, employeeID, kind, message, requestID))
	return nil
}

// NotifyMany fans one message out to several employees, stopping at the first failure.
func (s *Service) NotifyMany(ctx context.Context, employeeIDs []int64, kind, message string, requestID *int64) error {
	for _, id := range employeeIDs {
		if err := s.Notify(ctx, id, kind, message, requestID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ListMine(ctx context.Context, employeeID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	rows, err := s.repo.ListByEmployee(ctx, employeeID, unreadOnly, limit, offset)
	if err != nil {
		s.logger.Error("failed to list notifications", "employee_id", employeeID, "error", err)
		return nil, err
	}

	result := make([]*Notification, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result, nil
}

func (s *Service) UnreadCount(ctx context.Context, employeeID int64) (int64, error) {
	return s.repo.CountUnread(ctx, employeeID)
}

func (s *Service) MarkRead(ctx context.Context, employeeID, id int64) error {
	found, err := s.repo.MarkRead(ctx, employeeID, id)
	if err != nil {
		s.logger.Error("failed to mark notification read", "notification_id", id, "error", err)
		return err
	}
	if !found {
		return ErrNotificationNotFound
	}

	s.publish(ctx, events.NewNotificationsReadEvent(employeeID))
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, employeeID int64) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, employeeID)
	if err != nil {
		s.logger.Error("failed to mark notifications read", "employee_id", employeeID, "error", err)
		return 0, err
	}

	s.publish(ctx, events.NewNotificationsReadEvent(employeeID))
	return updated, nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish notification event", "event_type", evt.EventType(), "error", err)
	}
}
