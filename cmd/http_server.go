package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/leave-management/internal/attendance/postgres"
	"github.com/frahmantamala/leave-management/internal/audit"
	auditPostgres "github.com/frahmantamala/leave-management/internal/audit/postgres"
	"github.com/frahmantamala/leave-management/internal/auth"
	authPostgres "github.com/frahmantamala/leave-management/internal/auth/postgres"
	"github.com/frahmantamala/leave-management/internal/core/database"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/employee"
	employeePostgres "github.com/frahmantamala/leave-management/internal/employee/postgres"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavePostgres "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	leavetypePostgres "github.com/frahmantamala/leave-management/internal/leavetype/postgres"
	"github.com/frahmantamala/leave-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/leave-management/internal/notification/postgres"
	"github.com/frahmantamala/leave-management/internal/quota"
	quotaPostgres "github.com/frahmantamala/leave-management/internal/quota/postgres"
	"github.com/frahmantamala/leave-management/internal/realtime"
	"github.com/frahmantamala/leave-management/internal/report"
	reportPostgres "github.com/frahmantamala/leave-management/internal/report/postgres"
	"github.com/frahmantamala/leave-management/internal/storage"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/yearend"
	yearendPostgres "github.com/frahmantamala/leave-management/internal/yearend/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is the wired application shared by the server and the
// operational commands.
type Dependencies struct {
	Config *internal.Config
	Gorm   *gorm.DB
	DB     *sqlx.DB
	Bus    *events.EventBus
	Hub    *realtime.Hub
	Store  *storage.Local
	Logger *slog.Logger

	Auth         *auth.Service
	Audit        *audit.Service
	Employee     *employee.Service
	LeaveType    *leavetype.Service
	YearEnd      *yearend.Service
	Quota        *quota.Service
	Leave        *leave.Service
	Attendance   *attendance.Service
	Notification *notification.Service
	Report       *report.Service
}

func (d *Dependencies) Close() {
	d.Bus.Wait()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	cfg := deps.Config
	if _, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath); err != nil {
		deps.Logger.Warn("openapi document unavailable", "path", cfg.Server.OpenAPIPath, "error", err)
	}

	router := chi.NewRouter()
	setupRoutes(router, deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", cfg.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(router *chi.Mux, deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	checker := auth.NewPermissionChecker()
	canView := auth.RequireCanViewLeave(auth.NewLeaveOwnerLookup(deps.DB), auth.NewABACPolicy(checker), lg)

	rest.RegisterAllRoutes(router, deps.DB.DB, rest.Handlers{
		Auth:         auth.NewHandler(deps.Auth),
		Employee:     employee.NewHandler(deps.Employee),
		LeaveType:    leavetype.NewHandler(deps.LeaveType),
		YearEnd:      yearend.NewHandler(deps.YearEnd),
		Quota:        quota.NewHandler(deps.Quota),
		Leave:        leave.NewHandler(deps.Leave, cfg.Storage.MaxUploadBytes),
		Attendance:   attendance.NewHandler(deps.Attendance),
		Notification: notification.NewHandler(deps.Notification),
		Audit:        audit.NewHandler(deps.Audit),
		Report:       report.NewHandler(deps.Report),
		Realtime:     realtime.NewHandler(deps.Hub, deps.Auth, cfg.Server.Origins()),
	}, rest.Options{
		RBAC:           auth.NewRBACAuthorization(checker, lg),
		CanViewLeave:   canView,
		UploadDir:      deps.Store.Dir(),
		OpenAPIPath:    cfg.Server.OpenAPIPath,
		AllowedOrigins: cfg.Server.Origins(),
	}, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return buildDependencies(config)
}

func buildDependencies(config *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	gdb, err := database.Open(config.Database, gormLogger.Warn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if config.Database.Driver == database.DriverSQLite {
		if err := database.AutoMigrate(gdb); err != nil {
			return nil, err
		}
	}

	sqlxDB, err := database.SQLX(gdb, config.Database.Driver)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap database: %w", err)
	}

	store, err := storage.NewLocal(config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload storage: %w", err)
	}

	bus := events.NewEventBus(lg)
	hub := realtime.NewHub(lg)
	realtime.Bridge(bus, hub)

	authService := auth.NewService(
		authPostgres.NewRepository(gdb),
		auth.NewJWTTokenGenerator(
			config.Security.AccessTokenSecret,
			config.Security.RefreshTokenSecret,
			config.Security.AccessTokenDuration,
			config.Security.RefreshTokenDuration,
		),
		config.Security.BCryptCost,
		lg,
	)
	auditService := audit.NewService(auditPostgres.NewAuditRepository(gdb), bus, lg)
	notificationService := notification.NewService(notificationPostgres.NewNotificationRepository(gdb), bus, lg)
	employeeService := employee.NewService(employeePostgres.NewEmployeeRepository(gdb), authService, auditService, lg)

	return &Dependencies{
		Config: config,
		Gorm:   gdb,
		DB:     sqlxDB,
		Bus:    bus,
		Hub:    hub,
		Store:  store,
		Logger: lg,

		Auth:         authService,
		Audit:        auditService,
		Employee:     employeeService,
		LeaveType:    leavetype.NewService(leavetypePostgres.NewLeaveTypeRepository(gdb), auditService, lg),
		YearEnd:      yearend.NewService(yearendPostgres.NewYearEndRepository(gdb), auditService, bus, lg),
		Quota:        quota.NewService(quotaPostgres.NewQuotaRepository(gdb), auditService, notificationService, lg),
		Leave:        leave.NewService(leavePostgres.NewLeaveRepository(gdb), auditService, notificationService, employeeService, store, lg),
		Attendance:   attendance.NewService(attendancePostgres.NewAttendanceRepository(gdb), auditService, config.Attendance, lg),
		Notification: notificationService,
		Report:       report.NewService(reportPostgres.NewReportRepository(sqlxDB), lg),
	}, nil
}
