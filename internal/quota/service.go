package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/audit"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error

	List(ctx context.Context, filter ListFilter) ([]*leaveDatamodel.LeaveQuota, int64, error)
	ForEmployee(ctx context.Context, employeeID int64, year int) ([]*leaveDatamodel.LeaveQuota, error)
	// Find returns nil without error when the row does not exist.
	Find(ctx context.Context, employeeID, leaveTypeID int64, year int) (*leaveDatamodel.LeaveQuota, error)
	Save(ctx context.Context, q *leaveDatamodel.LeaveQuota) error
	EmployeeExists(ctx context.Context, id int64) (bool, error)
	LeaveTypesByCode(ctx context.Context, codes []string) ([]*leaveDatamodel.LeaveType, error)
	YearClosed(ctx context.Context, year int) (bool, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Notifier interface {
	Notify(ctx context.Context, employeeID int64, kind, message string, requestID *int64) error
}

type Service struct {
	repo     RepositoryAPI
	audit    AuditRecorder
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, auditRecorder AuditRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		audit:    auditRecorder,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Quota, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list quotas", "error", err)
		return nil, 0, err
	}
	return FromDataModelSlice(rows), total, nil
}

func (s *Service) ForEmployee(ctx context.Context, employeeID int64, year int) ([]*Quota, error) {
	rows, err := s.repo.ForEmployee(ctx, employeeID, year)
	if err != nil {
		s.logger.Error("failed to load employee quotas", "employee_id", employeeID, "year", year, "error", err)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// Adjust overwrites total days per type. A total below the days already used is
// raised to the used amount so remaining never goes negative.
func (s *Service) Adjust(ctx context.Context, employeeID int64, dto AdjustQuotaDTO, actorID int64) ([]*Quota, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	codes := make([]string, 0, len(dto.Quotas))
	for code := range dto.Quotas {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var adjusted []*Quota
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		closed, err := tx.YearClosed(ctx, dto.Year)
		if err != nil {
			return err
		}
		if closed {
			return ErrYearClosed
		}

		exists, err := tx.EmployeeExists(ctx, employeeID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrEmployeeNotFound
		}

		types, err := tx.LeaveTypesByCode(ctx, codes)
		if err != nil {
			return err
		}
		byCode := make(map[string]*leaveDatamodel.LeaveType, len(types))
		for _, lt := range types {
			byCode[lt.Code] = lt
		}

		var unknown []string
		for _, code := range codes {
			if _, ok := byCode[code]; !ok {
				unknown = append(unknown, code)
			}
		}
		if len(unknown) > 0 {
			return internal.NewValidationFieldError("quotas",
				fmt.Sprintf("unknown leave type codes: %s", strings.Join(unknown, ", ")),
				internal.ErrCodeInvalidLeaveType)
		}

		for _, code := range codes {
			lt := byCode[code]
			row, err := tx.Find(ctx, employeeID, lt.ID, dto.Year)
			if err != nil {
				return err
			}
			if row == nil {
				row = &leaveDatamodel.LeaveQuota{
					EmployeeID:  employeeID,
					LeaveTypeID: lt.ID,
					Year:        dto.Year,
					UsedDays:    decimal.Zero,
				}
			}

			total := dto.Quotas[code]
			clamped := false
			if total.LessThan(row.UsedDays) {
				total = row.UsedDays
				clamped = true
			}
			row.TotalDays = total

			if err := tx.Save(ctx, row); err != nil {
				return fmt.Errorf("save quota %s: %w", code, err)
			}

			row.LeaveType = lt
			q := FromDataModel(row)
			q.Clamped = clamped
			adjusted = append(adjusted, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotas adjusted", "employee_id", employeeID, "year", dto.Year, "types", len(adjusted))
	s.record(ctx, actorID, employeeID, dto)
	if s.notifier != nil {
		msg := fmt.Sprintf("Your leave quotas for %d were updated", dto.Year)
		if err := s.notifier.Notify(ctx, employeeID, notification.TypeQuotaUpdated, msg, nil); err != nil {
			s.logger.Warn("failed to notify quota change", "employee_id", employeeID, "error", err)
		}
	}

	return adjusted, nil
}

func (s *Service) record(ctx context.Context, actorID, employeeID int64, dto AdjustQuotaDTO) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     audit.ActionQuotaAdjust,
		EntityType: "employee",
		EntityID:   strconv.FormatInt(employeeID, 10),
		Detail:     map[string]interface{}{"year": dto.Year, "quotas": dto.Quotas},
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to audit quota adjustment", "employee_id", employeeID, "error", err)
	}
}
