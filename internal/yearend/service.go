package yearend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/shopspring/decimal"
)

// RepositoryAPI is transaction aware: methods called on the value handed to
// Transaction's callback run inside that transaction.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error

	ListConfigs(ctx context.Context) ([]*leaveDatamodel.SystemConfig, error)
	GetConfig(ctx context.Context, year int) (*leaveDatamodel.SystemConfig, error)
	CreateConfig(ctx context.Context, cfg *leaveDatamodel.SystemConfig) error
	EnsureConfig(ctx context.Context, year int) error
	LockConfig(ctx context.Context, year int) (*leaveDatamodel.SystemConfig, error)
	SaveConfig(ctx context.Context, cfg *leaveDatamodel.SystemConfig) error

	ActiveLeaveTypes(ctx context.Context) ([]*leaveDatamodel.LeaveType, error)
	UpdateLeaveTypeLimits(ctx context.Context, t *leaveDatamodel.LeaveType) error
	ActiveEmployeeIDs(ctx context.Context) ([]int64, error)
	QuotasForYear(ctx context.Context, year int) ([]*leaveDatamodel.LeaveQuota, error)
	UpsertQuotas(ctx context.Context, rows []*leaveDatamodel.LeaveQuota) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	repo      RepositoryAPI
	audit     AuditRecorder
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, auditRecorder AuditRecorder, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		audit:     auditRecorder,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessCarryOver distributes targetYear quotas to every active employee and
// closes targetYear-1, all in one transaction. The source year row is locked for
// the duration so concurrent runs serialize and the loser sees it closed.
func (s *Service) ProcessCarryOver(ctx context.Context, dto ProcessCarryOverDTO, actorID int64) (*Result, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	sourceYear := dto.TargetYear - 1
	result := &Result{
		ClosedYear: sourceYear,
		TargetYear: dto.TargetYear,
	}

	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := tx.EnsureConfig(ctx, sourceYear); err != nil {
			return err
		}
		source, err := tx.LockConfig(ctx, sourceYear)
		if err != nil {
			return err
		}
		if source.IsClosed {
			return ErrYearAlreadyClosed
		}

		if err := tx.EnsureConfig(ctx, dto.TargetYear); err != nil {
			return err
		}
		target, err := tx.LockConfig(ctx, dto.TargetYear)
		if err != nil {
			return err
		}
		if target.IsClosed {
			return ErrTargetYearClosed
		}

		types, err := s.applyTypeLimits(ctx, tx, dto)
		if err != nil {
			return err
		}

		employeeIDs, err := tx.ActiveEmployeeIDs(ctx)
		if err != nil {
			return err
		}

		previous, err := tx.QuotasForYear(ctx, sourceYear)
		if err != nil {
			return err
		}
		remaining := make(map[quotaKey]decimal.Decimal, len(previous))
		for _, q := range previous {
			remaining[quotaKey{q.EmployeeID, q.LeaveTypeID}] = Remaining(q.TotalDays, q.UsedDays)
		}

		rows := make([]*leaveDatamodel.LeaveQuota, 0, len(employeeIDs)*len(types))
		for _, employeeID := range employeeIDs {
			for _, lt := range types {
				prev := remaining[quotaKey{employeeID, lt.ID}]
				base := dto.Quotas[lt.Code]
				carried := CarryOver(prev, lt.MaxCarryOverDays)
				total := NewTotal(base, carried)

				rows = append(rows, &leaveDatamodel.LeaveQuota{
					EmployeeID:  employeeID,
					LeaveTypeID: lt.ID,
					Year:        dto.TargetYear,
					TotalDays:   total,
					UsedDays:    decimal.Zero,
				})
				result.Lines = append(result.Lines, QuotaLine{
					EmployeeID:        employeeID,
					LeaveTypeID:       lt.ID,
					LeaveTypeCode:     lt.Code,
					PreviousRemaining: prev,
					CarriedOver:       carried,
					BaseQuota:         base,
					TotalDays:         total,
				})
			}
		}

		if err := tx.UpsertQuotas(ctx, rows); err != nil {
			return fmt.Errorf("upsert quotas for %d: %w", dto.TargetYear, err)
		}

		closedAt := s.now()
		source.IsClosed = true
		source.ClosedAt = &closedAt
		source.ClosedBy = &actorID
		if err := tx.SaveConfig(ctx, source); err != nil {
			return fmt.Errorf("close year %d: %w", sourceYear, err)
		}

		result.EmployeesProcessed = len(employeeIDs)
		result.QuotasWritten = len(rows)
		result.ClosedAt = closedAt
		for _, lt := range types {
			result.LeaveTypes = append(result.LeaveTypes, lt.Code)
		}
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("year-end processing failed", "target_year", dto.TargetYear, "error", err)
		}
		return nil, err
	}

	s.logger.Info("year-end processing completed",
		"closed_year", sourceYear,
		"target_year", dto.TargetYear,
		"employees", result.EmployeesProcessed,
		"quotas_written", result.QuotasWritten)

	s.record(ctx, actorID, audit.ActionYearEndProcess, sourceYear, map[string]interface{}{
		"target_year":          dto.TargetYear,
		"quotas":               dto.Quotas,
		"carry_configs":        dto.CarryConfigs,
		"max_consecutive_days": dto.MaxConsecutiveDays,
		"employees_processed":  result.EmployeesProcessed,
		"quotas_written":       result.QuotasWritten,
	})
	s.publish(ctx, events.NewYearEndProcessedEvent(sourceYear, dto.TargetYear, actorID, result.EmployeesProcessed))

	return result, nil
}

type quotaKey struct {
	employeeID  int64
	leaveTypeID int64
}

// applyTypeLimits resolves the active registry, rejects unknown codes and
// persists any caps supplied with the request.
func (s *Service) applyTypeLimits(ctx context.Context, tx RepositoryAPI, dto ProcessCarryOverDTO) ([]*leaveDatamodel.LeaveType, error) {
	types, err := tx.ActiveLeaveTypes(ctx)
	if err != nil {
		return nil, err
	}

	byCode := make(map[string]*leaveDatamodel.LeaveType, len(types))
	for _, lt := range types {
		byCode[lt.Code] = lt
	}

	var unknown []string
	for _, code := range dto.Codes() {
		if _, ok := byCode[code]; !ok {
			unknown = append(unknown, code)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, internal.NewValidationFieldError("quotas",
			fmt.Sprintf("unknown or inactive leave type codes: %s", strings.Join(unknown, ", ")),
			internal.ErrCodeInvalidLeaveType)
	}

	for _, lt := range types {
		carry, hasCarry := dto.CarryConfigs[lt.Code]
		consecutive, hasConsecutive := dto.MaxConsecutiveDays[lt.Code]
		if !hasCarry && !hasConsecutive {
			continue
		}
		if hasCarry {
			lt.MaxCarryOverDays = carry
		}
		if hasConsecutive {
			lt.MaxConsecutiveDays = consecutive
		}
		if err := tx.UpdateLeaveTypeLimits(ctx, lt); err != nil {
			return nil, fmt.Errorf("update limits for %s: %w", lt.Code, err)
		}
	}

	return types, nil
}

// ReopenYear clears the lock flag of a closed year and stamps when and why.
// Quotas and the previous close stamp are left untouched.
func (s *Service) ReopenYear(ctx context.Context, dto ReopenYearDTO, actorID int64) (*SystemConfig, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var reopened *leaveDatamodel.SystemConfig
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		cfg, err := tx.LockConfig(ctx, dto.Year)
		if err != nil {
			return err
		}
		if !cfg.IsClosed {
			return ErrYearNotClosed
		}

		now := s.now()
		reason := strings.TrimSpace(dto.Reason)
		// closed_at and closed_by stay as the record of the last lock
		cfg.IsClosed = false
		cfg.ReopenedAt = &now
		cfg.ReopenReason = &reason
		if err := tx.SaveConfig(ctx, cfg); err != nil {
			return err
		}
		reopened = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("year reopened", "year", dto.Year, "actor_id", actorID)
	s.record(ctx, actorID, audit.ActionYearReopen, dto.Year, map[string]string{"reason": dto.Reason})
	s.publish(ctx, events.NewYearReopenedEvent(dto.Year, actorID, dto.Reason))

	return FromDataModel(reopened), nil
}

func (s *Service) ListSystemConfigs(ctx context.Context) ([]*SystemConfig, error) {
	rows, err := s.repo.ListConfigs(ctx)
	if err != nil {
		s.logger.Error("failed to list system configs", "error", err)
		return nil, err
	}

	configs := make([]*SystemConfig, len(rows))
	for i, row := range rows {
		configs[i] = FromDataModel(row)
	}
	return configs, nil
}

func (s *Service) GetSystemConfig(ctx context.Context, year int) (*SystemConfig, error) {
	row, err := s.repo.GetConfig(ctx, year)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) CreateSystemConfig(ctx context.Context, dto CreateSystemConfigDTO, actorID int64) (*SystemConfig, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetConfig(ctx, dto.Year); err == nil {
		return nil, ErrYearConfigExists
	} else if !errors.Is(err, ErrYearConfigNotFound) {
		return nil, err
	}

	row := &leaveDatamodel.SystemConfig{Year: dto.Year}
	if err := s.repo.CreateConfig(ctx, row); err != nil {
		s.logger.Error("failed to create system config", "year", dto.Year, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionSystemConfigCreate, dto.Year, nil)
	return FromDataModel(row), nil
}

// IsYearClosed reports false for years without a config row.
func (s *Service) IsYearClosed(ctx context.Context, year int) (bool, error) {
	row, err := s.repo.GetConfig(ctx, year)
	if err != nil {
		if errors.Is(err, ErrYearConfigNotFound) {
			return false, nil
		}
		return false, err
	}
	return row.IsClosed, nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, year int, detail interface{}) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "system_config",
		EntityID:   strconv.Itoa(year),
		Detail:     detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to audit year-end action", "action", action, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("failed to publish year-end event", "event_type", evt.EventType(), "error", err)
	}
}
