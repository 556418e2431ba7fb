package nutrilog

import (
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Log workouts and daily movement",
}

var (
	activityName      string
	activityCategory  string
	activityIntensity string
	activityDuration  int
	activityMET       float64
	activityCalories  int
	activityDistance  float64
	activitySteps     int
	activityFloors    int
	activityFeeling   string
	activityDate      string
	activityTime      string
	activityNotes     string
	activityListDate  string
	activityListFrom  string
	activityListTo    string
	activityJSON      bool
)

// applyActivityFlags copies the flags the user set onto in.
func applyActivityFlags(cmd *cobra.Command, in *service.ActivityLogInput) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		in.ActivityName = activityName
	}
	if flags.Changed("category") {
		in.Category = activityCategory
	}
	if flags.Changed("intensity") {
		in.Intensity = model.Intensity(activityIntensity)
	}
	if flags.Changed("duration") {
		in.DurationMin = activityDuration
	}
	if flags.Changed("met") {
		in.METValue = activityMET
	}
	if flags.Changed("calories") {
		in.CaloriesOverride = &activityCalories
	}
	if flags.Changed("distance") {
		in.DistanceKm = &activityDistance
	}
	if flags.Changed("steps") {
		in.Steps = &activitySteps
	}
	if flags.Changed("floors") {
		in.Floors = &activityFloors
	}
	if flags.Changed("feeling") {
		in.Feeling = model.Feeling(activityFeeling)
	}
	if flags.Changed("notes") {
		in.Notes = activityNotes
	}
	if flags.Changed("date") || flags.Changed("time") {
		loggedAt, err := parseDateTimeOrNow(activityDate, activityTime)
		if err != nil {
			return err
		}
		in.LoggedAt = loggedAt
		in.LogDate = ""
	}
	return nil
}

var activityAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an activity; calories come from MET x weight x hours unless --calories is set",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in service.ActivityLogInput
		if err := applyActivityFlags(cmd, &in); err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			id, err := l.CreateActivityLog(in)
			if err != nil {
				return err
			}
			a, err := l.ActivityLogByID(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged activity %d: %s %d min, %d kcal\n", id, a.ActivityName, a.DurationMin, a.CaloriesBurned)
			return nil
		})
	},
}

var activityUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an activity log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			current, err := l.ActivityLogByID(id)
			if err != nil {
				return err
			}
			in := service.ActivityLogInput{
				LogDate:      current.LogDate,
				LoggedAt:     current.LoggedAt,
				Category:     current.Category,
				ActivityName: current.ActivityName,
				Intensity:    current.Intensity,
				DurationMin:  current.DurationMin,
				METValue:     current.METValue,
				DistanceKm:   current.DistanceKm,
				Steps:        current.Steps,
				Floors:       current.Floors,
				Feeling:      current.Feeling,
				Notes:        current.Notes,
			}
			if current.CaloriesOverridden {
				calories := current.CaloriesBurned
				in.CaloriesOverride = &calories
			}
			if err := applyActivityFlags(cmd, &in); err != nil {
				return err
			}
			if _, err := l.UpdateActivityLog(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated activity log %d\n", id)
			return nil
		})
	},
}

var activityDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an activity log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			n, err := l.DeleteActivityLog(id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("activity log %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity log %d\n", id)
			return nil
		})
	},
}

var activityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List activity logs for a day or a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			var logs []model.ActivityLog
			var err error
			if strings.TrimSpace(activityListFrom) != "" || strings.TrimSpace(activityListTo) != "" {
				logs, err = l.QueryActivityLogsBetween(activityListFrom, activityListTo)
			} else {
				day, perr := parseDateOrToday(activityListDate)
				if perr != nil {
					return perr
				}
				logs, err = l.QueryActivityLogsByDate(day.Format("2006-01-02"))
			}
			if err != nil {
				return err
			}
			if activityJSON {
				return printJSON(cmd, logs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tCATEGORY\tACTIVITY\tINTENSITY\tMIN\tMET\tKCAL")
			for _, a := range logs {
				kcal := fmt.Sprintf("%d", a.CaloriesBurned)
				if a.CaloriesOverridden {
					kcal += "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%d\t%.1f\t%s\n",
					a.ID, a.LogDate, a.Category, a.ActivityName, a.Intensity, a.DurationMin, a.METValue, kcal)
			}
			return nil
		})
	},
}

var activityCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List known activities and their MET values",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := service.ActivityCatalog()
		if activityJSON {
			return printJSON(cmd, catalog)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "CATEGORY\tACTIVITY\tMET")
		for _, a := range catalog {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\n", a.Category, a.Name, a.MET)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Other activities use MET %.1f\n", service.DefaultMET)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(activityCmd)
	activityCmd.AddCommand(activityAddCmd, activityUpdateCmd, activityDeleteCmd, activityListCmd, activityCatalogCmd)

	for _, c := range []*cobra.Command{activityAddCmd, activityUpdateCmd} {
		c.Flags().StringVar(&activityName, "name", "", "Activity name, e.g. jogging")
		c.Flags().StringVar(&activityCategory, "category", "", "Category (default from catalog)")
		c.Flags().StringVar(&activityIntensity, "intensity", "", "low|medium|high (default medium)")
		intFlag(c, &activityDuration, "duration", 0, "Duration in minutes")
		floatFlag(c, &activityMET, "met", 0, "MET value (default from catalog)")
		intFlag(c, &activityCalories, "calories", 0, "Calories burned, overriding the estimate")
		floatFlag(c, &activityDistance, "distance", 0, "Distance in km")
		intFlag(c, &activitySteps, "steps", 0, "Steps")
		intFlag(c, &activityFloors, "floors", 0, "Floors climbed")
		c.Flags().StringVar(&activityFeeling, "feeling", "", "great|good|okay|tired|exhausted")
		c.Flags().StringVar(&activityDate, "date", "", "Date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&activityTime, "time", "", "Time HH:MM (default now)")
		c.Flags().StringVar(&activityNotes, "notes", "", "Notes")
	}
	_ = activityAddCmd.MarkFlagRequired("name")

	activityListCmd.Flags().StringVar(&activityListDate, "date", "", "Date YYYY-MM-DD (default today)")
	activityListCmd.Flags().StringVar(&activityListFrom, "from", "", "Range start YYYY-MM-DD")
	activityListCmd.Flags().StringVar(&activityListTo, "to", "", "Range end YYYY-MM-DD")
	activityListCmd.Flags().BoolVar(&activityJSON, "json", false, "Output JSON")
	activityCatalogCmd.Flags().BoolVar(&activityJSON, "json", false, "Output JSON")
}
