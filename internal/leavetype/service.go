package leavetype

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/frahmantamala/leave-management/internal/audit"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context, includeInactive bool) ([]*leaveDatamodel.LeaveType, error)
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveType, error)
	GetByCode(ctx context.Context, code string) (*leaveDatamodel.LeaveType, error)
	Create(ctx context.Context, t *leaveDatamodel.LeaveType) error
	Update(ctx context.Context, t *leaveDatamodel.LeaveType) error
	IsReferenced(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	repo   RepositoryAPI
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, auditRecorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		audit:  auditRecorder,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]*LeaveType, error) {
	rows, err := s.repo.GetAll(ctx, includeInactive)
	if err != nil {
		s.logger.Error("failed to get leave types from repository", "error", err)
		return nil, err
	}

	types := make([]*LeaveType, 0, len(rows))
	for _, row := range rows {
		types = append(types, FromDataModel(row))
	}
	return types, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*LeaveType, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) GetByCode(ctx context.Context, code string) (*LeaveType, error) {
	row, err := s.repo.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrLeaveTypeNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateLeaveTypeDTO, actorID int64) (*LeaveType, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLeaveTypeExists
	}

	row := &leaveDatamodel.LeaveType{
		Code:               dto.Code,
		Name:               dto.Name,
		IsPaid:             dto.IsPaid,
		MaxCarryOverDays:   dto.MaxCarryOverDays,
		MaxConsecutiveDays: dto.MaxConsecutiveDays,
		IsActive:           true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create leave type", "code", dto.Code, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionLeaveTypeCreate, row.ID, dto)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateLeaveTypeDTO, actorID int64) (*LeaveType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		row.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.IsPaid != nil {
		row.IsPaid = *dto.IsPaid
	}
	if dto.MaxCarryOverDays != nil {
		row.MaxCarryOverDays = *dto.MaxCarryOverDays
	}
	if dto.MaxConsecutiveDays != nil {
		row.MaxConsecutiveDays = *dto.MaxConsecutiveDays
	}
	if dto.IsActive != nil {
		row.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update leave type", "leave_type_id", id, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionLeaveTypeUpdate, id, dto)
	return FromDataModel(row), nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool, actorID int64) (*LeaveType, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lt := FromDataModel(row)
	action := audit.ActionLeaveTypeDeactivate
	if active {
		lt.Activate()
		action = audit.ActionLeaveTypeActivate
	} else {
		lt.Deactivate()
	}

	if err := s.repo.Update(ctx, ToDataModel(lt)); err != nil {
		s.logger.Error("failed to toggle leave type", "leave_type_id", id, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, action, id, nil)
	return lt, nil
}

// Delete hard-deletes a type nothing references; referenced types must be deactivated.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.repo.IsReferenced(ctx, id)
	if err != nil {
		s.logger.Error("failed to check leave type references", "leave_type_id", id, "error", err)
		return err
	}
	if inUse {
		return ErrLeaveTypeInUse
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete leave type", "leave_type_id", id, "error", err)
		return err
	}

	s.record(ctx, actorID, audit.ActionLeaveTypeDelete, id, map[string]string{"code": row.Code})
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64, detail interface{}) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "leave_type",
		EntityID:   strconv.FormatInt(id, 10),
		Detail:     detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to audit leave type change", "action", action, "error", err)
	}
}
