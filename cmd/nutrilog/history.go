package nutrilog

import (
	"fmt"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var (
	historyPeriod string
	historyDate   string
	historyLocale string
	historyJSON   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show calories in and out per day or month",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := service.ParsePeriod(historyPeriod)
		if err != nil {
			return err
		}
		anchor, err := parseDateOrToday(historyDate)
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			loc, err := resolveLocale(l, historyLocale)
			if err != nil {
				return err
			}
			buckets, err := l.History(period, anchor, loc)
			if err != nil {
				return err
			}
			if historyJSON {
				return printJSON(cmd, buckets)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "LABEL\tFROM\tTO\tIN\tOUT\tP\tC\tF\tSODIUM")
			for _, b := range buckets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d\t%d\t%.1f\t%.1f\t%.1f\t%.0f\n",
					b.Label, b.From, b.To, b.CaloriesIn, b.CaloriesOut, b.ProteinG, b.CarbsG, b.FatG, b.SodiumMg)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyPeriod, "period", "week", "day|week|month_day|year")
	historyCmd.Flags().StringVar(&historyDate, "date", "", "Anchor date YYYY-MM-DD (default today)")
	historyCmd.Flags().StringVar(&historyLocale, "locale", "", "Label locale, e.g. en or zh-TW")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output JSON")
}
