package nutrilog

import (
	"fmt"

	"github.com/nutrilog/nutrilog/internal/app"
	"github.com/nutrilog/nutrilog/internal/db"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local nutrilog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		if err := app.EnsureDBDir(path); err != nil {
			return err
		}

		sqldb, err := db.Open(path)
		if err != nil {
			return err
		}
		defer sqldb.Close()

		l := service.NewLedger(sqldb)
		report, err := l.Init()
		if err != nil {
			return err
		}
		if _, err := l.GetOrCreateProfile(); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutrilog database at %s\n", path)
		if len(report.Applied) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d column migration(s)\n", len(report.Applied))
		}
		if len(report.Failed) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Skipped failing column migration(s): %v\n", report.Failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
