package nutrilog

import (
	"fmt"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			report, err := l.RunDoctor(doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving/weight mismatches: %d\n", len(report.ServingMismatches))
			for _, m := range report.ServingMismatches {
				fmt.Fprintf(cmd.OutOrStdout(), "  food log %d (%s): stored %.1fg, servings give %.1fg\n", m.FoodLogID, m.FoodName, m.StoredWeight, m.ServingTotal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logs pointing at missing food items: %d\n", len(report.OrphanItemRefs))
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed serving rows: %d\n", report.FixedServingRows)
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared item references: %d\n", report.FixedOrphanRows)
				// Re-check after fixes so exit status reflects final state.
				report, err = l.RunDoctor(false)
				if err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
