package nutrilog

import (
	"fmt"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake, activity, and remaining calories",
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseDateOrToday(todayDate)
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			status, err := l.DailySummary(target)
			if err != nil {
				return err
			}
			if todayJSON {
				return printJSON(cmd, status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Date: %s\n", status.Date)
			fmt.Fprintf(cmd.OutOrStdout(), "Intake: %d kcal (%d foods)\n", status.CaloriesIn, len(status.FoodLogs))
			fmt.Fprintf(cmd.OutOrStdout(), "Activity: %d kcal (%d activities)\n", status.CaloriesOut, len(status.ActivityLogs))
			fmt.Fprintf(cmd.OutOrStdout(), "Net: %d kcal\n", status.NetCalories)
			fmt.Fprintf(cmd.OutOrStdout(), "Macros: P %.1fg | C %.1fg | F %.1fg | Sodium %.0fmg\n", status.ProteinG, status.CarbsG, status.FatG, status.SodiumMg)
			if status.HasProfile {
				fmt.Fprintf(cmd.OutOrStdout(), "Target: %d kcal\n", status.CalorieTarget)
				fmt.Fprintf(cmd.OutOrStdout(), "Remaining: %d kcal\n", status.RemainingCalories)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Target: no profile (run `nutrilog profile set`)")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Output JSON")
}
