package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/frahmantamala/leave-management/internal/yearend"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var yearEndCmd = &cobra.Command{
	Use:   "yearend",
	Short: "Year-end carry-over operations",
	Long:  `Close a leave year with carry-over, or reopen a closed year.`,
}

var (
	yearEndActor      int64
	yearEndTarget     int
	yearEndQuotas     map[string]string
	yearEndCarry      map[string]string
	yearEndMaxDays    map[string]int
	reopenYear        int
	reopenReason      string
	yearEndPrintLines bool
)

var processCarryOverCmd = &cobra.Command{
	Use:   "process",
	Short: "Close the year before --target-year and write the new quotas",
	RunE: func(cmd *cobra.Command, args []string) error {
		dto := yearend.ProcessCarryOverDTO{
			TargetYear:         yearEndTarget,
			MaxConsecutiveDays: yearEndMaxDays,
		}
		var err error
		if dto.Quotas, err = parseDayFlags("quota", yearEndQuotas); err != nil {
			return err
		}
		if dto.CarryConfigs, err = parseDayFlags("carry", yearEndCarry); err != nil {
			return err
		}

		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		result, err := deps.YearEnd.ProcessCarryOver(ctx, dto, yearEndActor)
		if err != nil {
			return err
		}

		deps.Logger.Info("year-end processed",
			"closed_year", result.ClosedYear,
			"target_year", result.TargetYear,
			"employees", result.EmployeesProcessed,
			"quotas_written", result.QuotasWritten)

		if !yearEndPrintLines {
			result.Lines = nil
		}
		return json.NewEncoder(os.Stdout).Encode(result)
	},
}

var reopenYearCmd = &cobra.Command{
	Use:   "reopen",
	Short: "Reopen a closed year",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := initializeDependencies()
		if err != nil {
			return err
		}
		defer deps.Close()

		cfg, err := deps.YearEnd.ReopenYear(context.Background(), yearend.ReopenYearDTO{Year: reopenYear, Reason: reopenReason}, yearEndActor)
		if err != nil {
			return err
		}
		deps.Logger.Info("year reopened", "year", cfg.Year)
		return nil
	},
}

// parseDayFlags turns CODE=days pairs into decimal day amounts.
func parseDayFlags(flag string, raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for code, value := range raw {
		days, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("--%s %s=%s: %w", flag, code, value, err)
		}
		out[code] = days
	}
	return out, nil
}

func init() {
	yearEndCmd.PersistentFlags().Int64Var(&yearEndActor, "actor", 0, "employee id recorded as the actor")
	_ = yearEndCmd.MarkPersistentFlagRequired("actor")

	processCarryOverCmd.Flags().IntVar(&yearEndTarget, "target-year", time.Now().Year()+1, "year receiving the new quotas")
	processCarryOverCmd.Flags().StringToStringVar(&yearEndQuotas, "quota", nil, "base quota per leave type, e.g. ANNUAL=12")
	processCarryOverCmd.Flags().StringToStringVar(&yearEndCarry, "carry", nil, "carry-over cap per leave type, e.g. ANNUAL=5")
	processCarryOverCmd.Flags().StringToIntVar(&yearEndMaxDays, "max-consecutive", nil, "consecutive-day cap per leave type")
	processCarryOverCmd.Flags().BoolVar(&yearEndPrintLines, "lines", false, "print every quota line")

	reopenYearCmd.Flags().IntVar(&reopenYear, "year", 0, "closed year to reopen")
	reopenYearCmd.Flags().StringVar(&reopenReason, "reason", "", "why the year is reopened")
	_ = reopenYearCmd.MarkFlagRequired("year")
	_ = reopenYearCmd.MarkFlagRequired("reason")

	yearEndCmd.AddCommand(processCarryOverCmd)
	yearEndCmd.AddCommand(reopenYearCmd)
	rootCmd.AddCommand(yearEndCmd)
}
