package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
	"github.com/frahmantamala/leave-management/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, entry *auditDatamodel.AuditLog) error
	List(ctx context.Context, filter ListFilter) ([]*auditDatamodel.AuditLog, int64, error)
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

// Record persists the entry and announces it to HR listeners.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	row := &auditDatamodel.AuditLog{
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}
	if entry.Detail != nil {
		b, err := json.Marshal(entry.Detail)
		if err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
		row.Detail = string(b)
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to record audit log", "action", entry.Action, "error", err)
		return err
	}

	if s.publisher != nil {
		evt := events.NewAuditLoggedEvent(row.ID, row.ActorID, row.Action, row.EntityType, row.EntityID)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("failed to publish audit event", "audit_id", row.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*AuditLog, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		return nil, 0, err
	}

	logs := make([]*AuditLog, len(rows))
	for i, row := range rows {
		logs[i] = FromDataModel(row)
	}
	return logs, total, nil
}
