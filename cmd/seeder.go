package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/core/database"
	attendanceDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/leave-management/internal/core/datamodel/leave"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample employees, leave types, quotas and schedules for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := database.Open(cfg.Database, gormLogger.Warn)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		if cfg.Database.Driver == database.DriverSQLite {
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("failed to migrate sqlite: %v", err)
			}
		}

		if clearData {
			if err := clearTables(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(db, time.Now().Year()); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
	},
}

type seedEmployee struct {
	Email string
	Name  string
	Role  string
}

var seedEmployees = []seedEmployee{
	{"hr@mail.com", "Hana HR", auth.RoleHR},
	{"fadhil@mail.com", "Fadhil", auth.RoleWorker},
	{"padil@mail.com", "Padil", auth.RoleWorker},
}

var seedLeaveTypes = []leaveDatamodel.LeaveType{
	{Code: "ANNUAL", Name: "Annual Leave", IsPaid: true, MaxCarryOverDays: decimal.NewFromInt(5), MaxConsecutiveDays: 10, IsActive: true},
	{Code: "SICK", Name: "Sick Leave", IsPaid: true, IsActive: true},
	{Code: "UNPAID", Name: "Unpaid Leave", IsPaid: false, MaxConsecutiveDays: 30, IsActive: true},
}

var seedQuotaDays = map[string]int64{"ANNUAL": 12, "SICK": 14, "UNPAID": 30}

func clearTables(db *gorm.DB) error {
	models := database.Models()
	// children first
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seed(db *gorm.DB, year int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var employeeIDs []int64
		for _, e := range seedEmployees {
			row := employeeDatamodel.Employee{Email: e.Email, Name: e.Name, Role: e.Role, PasswordHash: string(hash), IsActive: true}
			if err := tx.Where("email = ?", e.Email).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("employee %s: %w", e.Email, err)
			}
			employeeIDs = append(employeeIDs, row.ID)
			fmt.Println("Seeded employee:", e.Email, e.Role)
		}

		for _, lt := range seedLeaveTypes {
			row := lt
			if err := tx.Where("code = ?", lt.Code).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("leave type %s: %w", lt.Code, err)
			}
			for _, employeeID := range employeeIDs {
				quota := leaveDatamodel.LeaveQuota{
					EmployeeID:  employeeID,
					LeaveTypeID: row.ID,
					Year:        year,
					TotalDays:   decimal.NewFromInt(seedQuotaDays[lt.Code]),
					UsedDays:    decimal.Zero,
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&quota).Error; err != nil {
					return fmt.Errorf("quota %s: %w", lt.Code, err)
				}
			}
		}
		fmt.Println("Seeded leave types and quotas for", year)

		config := leaveDatamodel.SystemConfig{Year: year}
		if err := tx.Where("year = ?", year).FirstOrCreate(&config).Error; err != nil {
			return fmt.Errorf("system config: %w", err)
		}

		for role, start := range map[string]int{auth.RoleWorker: 9 * 60, auth.RoleHR: 8*60 + 30} {
			schedule := attendanceDatamodel.RoleSchedule{Role: role, StartMinute: start}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&schedule).Error; err != nil {
				return fmt.Errorf("schedule %s: %w", role, err)
			}
		}
		fmt.Println("Seeded role schedules; every account uses password \"password\"")
		return nil
	})
}
