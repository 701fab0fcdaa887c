package employee

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/frahmantamala/leave-management/internal/audit"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
)

type RepositoryAPI interface {
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	GetByEmail(ctx context.Context, email string) (*employeeDatamodel.Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*employeeDatamodel.Employee, int64, error)
	Update(ctx context.Context, e *employeeDatamodel.Employee) error
	ListActiveIDs(ctx context.Context, role string) ([]int64, error)
	Purge(ctx context.Context, id int64) error
}

type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type AuditRecorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

type Service struct {
	repo   RepositoryAPI
	hasher PasswordHasher
	audit  AuditRecorder
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, hasher PasswordHasher, auditRecorder AuditRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		audit:  auditRecorder,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO, actorID int64) (*Employee, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to look up employee email", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	row := &employeeDatamodel.Employee{
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         dto.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if dto.JoiningDate != nil {
		t := dto.JoiningDate.Time
		row.JoiningDate = &t
	}

	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create employee", "email", dto.Email, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionEmployeeCreate, row.ID, map[string]interface{}{"email": row.Email, "role": row.Role})
	s.logger.Info("employee created", "employee_id", row.ID, "role", row.Role)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Employee, int64, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, 0, err
	}
	return FromDataModelSlice(rows), total, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO, actorID int64) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Role != nil {
		row.Role = *dto.Role
	}
	if dto.JoiningDate != nil {
		t := dto.JoiningDate.Time
		row.JoiningDate = &t
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update employee", "employee_id", id, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionEmployeeUpdate, id, dto)
	return FromDataModel(row), nil
}

// Deactivate is the soft removal used on resignation; history stays intact.
func (s *Service) Deactivate(ctx context.Context, id, actorID int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !row.IsActive {
		return FromDataModel(row), nil
	}

	row.IsActive = false
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to deactivate employee", "employee_id", id, "error", err)
		return nil, err
	}

	s.record(ctx, actorID, audit.ActionEmployeeDeactivate, id, nil)
	return FromDataModel(row), nil
}

// Purge removes the employee and every personal record they own.
func (s *Service) Purge(ctx context.Context, id, actorID int64) error {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Purge(ctx, id); err != nil {
		s.logger.Error("failed to purge employee", "employee_id", id, "error", err)
		return err
	}

	s.record(ctx, actorID, audit.ActionEmployeePurge, id, map[string]interface{}{"email": row.Email})
	s.logger.Info("employee purged", "employee_id", id)
	return nil
}

func (s *Service) ListActiveIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListActiveIDs(ctx, "")
}

func (s *Service) ListHRIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListActiveIDs(ctx, RoleHR)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64, detail interface{}) {
	if s.audit == nil {
		return
	}
	entry := audit.Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: "employee",
		EntityID:   strconv.FormatInt(id, 10),
		Detail:     detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to audit employee change", "action", action, "error", err)
	}
}
