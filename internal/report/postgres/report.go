package postgres

import (
	"context"
	"time"

	"github.com/frahmantamala/leave-management/internal/report"
	"github.com/jmoiron/sqlx"
)

const leaveBalancesQuery = `
SELECT e.id AS employee_id,
       e.name AS employee_name,
       lt.code AS leave_type_code,
       q.total_days,
       q.used_days
FROM leave_quotas q
JOIN employees e ON e.id = q.employee_id
JOIN leave_types lt ON lt.id = q.leave_type_id
WHERE q.year = ?`

const attendanceSummaryQuery = `
SELECT e.id AS employee_id,
       e.name AS employee_name,
       COUNT(t.id) AS days_present,
       COALESCE(SUM(CASE WHEN t.is_late THEN 1 ELSE 0 END), 0) AS days_late,
       COALESCE(SUM(t.late_minutes), 0) AS late_minutes
FROM employees e
LEFT JOIN time_records t
       ON t.employee_id = e.id
      AND t.work_date >= ?
      AND t.work_date <= ?
      AND t.check_in_at IS NOT NULL
WHERE e.is_active = ?
GROUP BY e.id, e.name
ORDER BY e.name ASC`

// ReportRepository runs hand-written aggregate queries through sqlx.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) LeaveBalances(ctx context.Context, filter report.BalanceFilter) ([]*report.BalanceRow, error) {
	query := leaveBalancesQuery
	args := []interface{}{filter.Year}
	if filter.EmployeeID != 0 {
		query += " AND q.employee_id = ?"
		args = append(args, filter.EmployeeID)
	}
	query += " ORDER BY e.name ASC, lt.code ASC"

	rows := []*report.BalanceRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...)
	return rows, err
}

func (r *ReportRepository) AttendanceSummary(ctx context.Context, from, to time.Time) ([]*report.AttendanceRow, error) {
	rows := []*report.AttendanceRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(attendanceSummaryQuery), from, to, true)
	return rows, err
}
