package nutrilog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nutrilog/nutrilog/internal/app"
	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nutrilog",
	Short: "nutrilog keeps a local ledger of meals, workouts, and calorie targets",
	Long:  "nutrilog is a local-first nutrition and activity ledger with barcode lookup, daily targets, and history.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var dirs []string
		if dir, err := app.Dir(); err == nil {
			dirs = append(dirs, dir)
		}
		loaded, err := config.Load(configPath, dirs...)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose || cfg.Log.Verbose {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
		return nil
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to nutrilog.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log provider and migration details to stderr")
}
