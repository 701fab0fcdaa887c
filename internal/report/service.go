package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/core/common/calendar"
	"github.com/frahmantamala/leave-management/internal/core/common/validation"
	"github.com/frahmantamala/leave-management/internal/yearend"
)

const maxRangeDays = 366

type RepositoryAPI interface {
	LeaveBalances(ctx context.Context, filter BalanceFilter) ([]*BalanceRow, error)
	AttendanceSummary(ctx context.Context, from, to time.Time) ([]*AttendanceRow, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) LeaveBalances(ctx context.Context, filter BalanceFilter) (*LeaveBalancesResponse, error) {
	if err := validation.ValidateYear("year", filter.Year); err != nil {
		return nil, err
	}

	rows, err := s.repo.LeaveBalances(ctx, filter)
	if err != nil {
		s.logger.Error("failed to build leave balance report", "year", filter.Year, "error", err)
		return nil, err
	}
	for _, row := range rows {
		row.RemainingDays = yearend.Remaining(row.TotalDays, row.UsedDays)
	}
	return &LeaveBalancesResponse{Year: filter.Year, Rows: rows}, nil
}

func (s *Service) AttendanceSummary(ctx context.Context, from, to time.Time) (*AttendanceSummaryResponse, error) {
	from, to = calendar.Normalize(from), calendar.Normalize(to)
	if to.Before(from) {
		return nil, internal.NewValidationFieldError("to", "to must not be before from", internal.ErrCodeInvalidDate)
	}
	if calendar.ConsecutiveDays(from, to) > maxRangeDays {
		return nil, internal.NewValidationFieldError("to", "range is limited to one year", internal.ErrCodeInvalidDate)
	}

	rows, err := s.repo.AttendanceSummary(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to build attendance report", "from", from, "to", to, "error", err)
		return nil, err
	}
	return &AttendanceSummaryResponse{From: calendar.NewDate(from), To: calendar.NewDate(to), Rows: rows}, nil
}
