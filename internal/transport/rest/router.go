package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/attendance"
	"github.com/frahmantamala/leave-management/internal/audit"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/employee"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/quota"
	"github.com/frahmantamala/leave-management/internal/realtime"
	"github.com/frahmantamala/leave-management/internal/report"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/yearend"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
)

// Handlers groups every HTTP surface mounted by RegisterAllRoutes.
// A nil handler leaves its routes unmounted.
type Handlers struct {
	Auth         *auth.Handler
	Employee     *employee.Handler
	LeaveType    *leavetype.Handler
	YearEnd      *yearend.Handler
	Quota        *quota.Handler
	Leave        *leave.Handler
	Attendance   *attendance.Handler
	Notification *notification.Handler
	Audit        *audit.Handler
	Report       *report.Handler
	Realtime     *realtime.Handler
}

// Options carries the authorization middleware and static asset locations.
type Options struct {
	RBAC           *auth.RBACAuthorization
	CanViewLeave   func(http.Handler) http.Handler
	UploadDir      string
	OpenAPIPath    string
	AllowedOrigins []string
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, opts.UploadDir)
	rbac := opts.RBAC

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceHeader},
		ExposedHeaders:   []string{middleware.TraceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, opts.OpenAPIPath)
	})
	router.Handle("/swagger/*", swagger.Handler())

	if opts.UploadDir != "" {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		// the websocket authenticates itself from the query token
		if h.Realtime != nil {
			r.Get("/ws", h.Realtime.ServeWS)
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if h.Employee != nil {
				pr.Get("/employees/me", h.Employee.GetCurrentEmployee)
				pr.Route("/employees", func(er chi.Router) {
					er.Use(rbac.Require(internal.PermManageEmployees))
					er.Get("/", h.Employee.ListEmployees)
					er.Post("/", h.Employee.CreateEmployee)
					er.Get("/{id}", h.Employee.GetEmployee)
					er.Put("/{id}", h.Employee.UpdateEmployee)
					er.Post("/{id}/deactivate", h.Employee.DeactivateEmployee)
					er.Delete("/{id}", h.Employee.PurgeEmployee)
				})
			}

			if h.LeaveType != nil {
				pr.Route("/leave-types", func(lr chi.Router) {
					lr.Get("/", h.LeaveType.GetLeaveTypes)
					lr.Get("/{id}", h.LeaveType.GetLeaveType)
					lr.Group(func(mr chi.Router) {
						mr.Use(rbac.Require(internal.PermManageQuota))
						mr.Post("/", h.LeaveType.CreateLeaveType)
						mr.Put("/{id}", h.LeaveType.UpdateLeaveType)
						mr.Post("/{id}/activate", h.LeaveType.ActivateLeaveType)
						mr.Post("/{id}/deactivate", h.LeaveType.DeactivateLeaveType)
						mr.Delete("/{id}", h.LeaveType.DeleteLeaveType)
					})
				})
			}

			pr.Route("/leaves", func(lr chi.Router) {
				if h.YearEnd != nil {
					lr.Group(func(yr chi.Router) {
						yr.Use(rbac.Require(internal.PermRunYearEnd))
						yr.Get("/system-configs", h.YearEnd.ListSystemConfigs)
						yr.Get("/system-configs/{year}", h.YearEnd.GetSystemConfig)
						yr.Post("/system-configs", h.YearEnd.CreateSystemConfig)
						yr.Post("/process-carry-over", h.YearEnd.ProcessCarryOver)
						yr.Post("/reopen-year", h.YearEnd.ReopenYear)
					})
				}

				if h.Quota != nil {
					lr.With(rbac.Require(internal.PermRequestLeave)).Get("/quotas/me", h.Quota.GetMyQuotas)
					lr.Group(func(qr chi.Router) {
						qr.Use(rbac.Require(internal.PermManageQuota))
						qr.Get("/policy/quotas", h.Quota.ListQuotas)
						qr.Get("/policy/quotas/{employeeId}", h.Quota.GetEmployeeQuotas)
						qr.Put("/policy/quotas/{employeeId}", h.Quota.AdjustQuotas)
					})
				}

				if h.Leave == nil {
					return
				}

				lr.Group(func(wr chi.Router) {
					wr.Use(rbac.Require(internal.PermRequestLeave))
					wr.Post("/", h.Leave.CreateLeaveRequest)
					wr.Get("/me", h.Leave.ListMyLeaveRequests)
					wr.Post("/{id}/withdraw", h.Leave.WithdrawLeaveRequest)
				})

				if opts.CanViewLeave != nil {
					lr.With(opts.CanViewLeave).Get("/{id}", h.Leave.GetLeaveRequest)
				} else {
					lr.Get("/{id}", h.Leave.GetLeaveRequest)
				}

				lr.Group(func(mr chi.Router) {
					mr.Use(rbac.Require(internal.PermManageLeave))
					mr.Get("/", h.Leave.ListLeaveRequests)
					mr.Post("/{id}/approve", h.Leave.ApproveLeaveRequest)
					mr.Post("/{id}/special-approve", h.Leave.SpecialApproveLeaveRequest)
					mr.Post("/{id}/reject", h.Leave.RejectLeaveRequest)
					mr.Post("/{id}/withdraw/approve", h.Leave.ApproveWithdraw)
					mr.Post("/{id}/withdraw/reject", h.Leave.RejectWithdraw)
					mr.Post("/bulk/approve", h.Leave.BulkApprove)
					mr.Post("/bulk/reject", h.Leave.BulkReject)
				})
			})

			if h.Leave != nil {
				pr.Route("/holidays", func(hr chi.Router) {
					hr.Get("/", h.Leave.ListHolidays)
					hr.Group(func(mr chi.Router) {
						mr.Use(rbac.Require(internal.PermManageLeave))
						mr.Post("/", h.Leave.CreateHoliday)
						mr.Delete("/{id}", h.Leave.DeleteHoliday)
					})
				})
			}

			if h.Attendance != nil {
				pr.Route("/attendance", func(ar chi.Router) {
					ar.Get("/history", h.Attendance.History)
					ar.Group(func(sr chi.Router) {
						sr.Use(rbac.Require(internal.PermCheckIn))
						sr.Get("/me", h.Attendance.GetToday)
						sr.Post("/check-in", h.Attendance.CheckIn)
						sr.Post("/check-out", h.Attendance.CheckOut)
					})
					ar.Group(func(mr chi.Router) {
						mr.Use(rbac.Require(internal.PermManageAttendance))
						mr.Get("/team-today", h.Attendance.TeamToday)
						mr.Get("/schedules", h.Attendance.ListSchedules)
						mr.Put("/schedules/{role}", h.Attendance.SetSchedule)
						mr.Post("/{employeeId}/check-in", h.Attendance.CheckInFor)
						mr.Post("/{employeeId}/check-out", h.Attendance.CheckOutFor)
					})
				})
			}

			if h.Notification != nil {
				pr.Route("/notifications", func(nr chi.Router) {
					nr.Get("/", h.Notification.ListNotifications)
					nr.Get("/unread-count", h.Notification.UnreadCount)
					nr.Post("/read-all", h.Notification.MarkAllRead)
					nr.Post("/{id}/read", h.Notification.MarkRead)
				})
			}

			if h.Audit != nil {
				pr.With(rbac.Require(internal.PermViewAuditLog)).Get("/audit-logs", h.Audit.ListAuditLogs)
			}

			if h.Report != nil {
				pr.Route("/reports", func(rr chi.Router) {
					rr.Use(rbac.Require(internal.PermViewReports))
					rr.Get("/leave-balances", h.Report.LeaveBalances)
					rr.Get("/attendance", h.Report.AttendanceSummary)
				})
			}
		})
	})
}
