package nutrilog

import (
	"fmt"
	"path/filepath"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var (
	exportOut    string
	exportPeriod string
	exportDate   string
	exportLocale string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history and logs for a period to an .xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := service.ParsePeriod(exportPeriod)
		if err != nil {
			return err
		}
		anchor, err := parseDateOrToday(exportDate)
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = fmt.Sprintf("nutrilog-%s-%s.xlsx", period, anchor.Format("20060102"))
		}
		if filepath.Ext(out) != ".xlsx" {
			return fmt.Errorf("--out must end in .xlsx")
		}
		return withLedger(func(l *service.Ledger) error {
			loc, err := resolveLocale(l, exportLocale)
			if err != nil {
				return err
			}
			report, err := l.ExportWorkbook(service.ExportOptions{Path: out, Period: period, Anchor: anchor, Locale: loc})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d buckets, %d food logs, %d activity logs to %s\n",
				report.Buckets, report.FoodLogs, report.ActivityLogs, report.Path)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output .xlsx path")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "week", "day|week|month_day|year")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Anchor date YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVar(&exportLocale, "locale", "", "Label locale, e.g. en or zh-TW")
}
