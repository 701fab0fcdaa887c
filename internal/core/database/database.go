package database

import (
	"fmt"

	"github.com/frahmantamala/leave-management/internal"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	auditDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/audit"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	notificationDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/notification"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Models lists every table in foreign key order.
func Models() []interface{} {
	return []interface{}{
		&employeeDatamodel.Employee{},
		&leaveDatamodel.LeaveType{},
		&leaveDatamodel.SystemConfig{},
		&leaveDatamodel.Holiday{},
		&leaveDatamodel.LeaveQuota{},
		&leaveDatamodel.LeaveRequest{},
		&attendanceDatamodel.TimeRecord{},
		&attendanceDatamodel.RoleSchedule{},
		&notificationDatamodel.Notification{},
		&auditDatamodel.AuditLog{},
	}
}

// Open connects gorm to the configured driver and applies pool settings.
func Open(cfg internal.DatabaseConfig, level logger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.GetDSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.GetDSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite serializes writers; one connection keeps in-memory databases shared
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// OpenInMemory returns a migrated, silent sqlite database.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(internal.DatabaseConfig{Driver: DriverSQLite, Source: ":memory:"}, logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SQLX wraps the gorm connection pool for hand-written read queries.
func SQLX(db *gorm.DB, driver string) (*sqlx.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	driverName := "pgx"
	if driver == DriverSQLite {
		driverName = "sqlite3"
	}
	return sqlx.NewDb(sqlDB, driverName), nil
}
