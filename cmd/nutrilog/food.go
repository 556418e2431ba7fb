package nutrilog

import (
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Log what you ate",
}

var (
	foodName       string
	foodItemID     int64
	foodMeal       string
	foodDate       string
	foodTime       string
	foodServings   float64
	foodUnitWeight float64
	foodWeight     float64
	foodWeightUnit string
	foodNotes      string
	foodNutrients  model.Nutrients
	foodListDate   string
	foodListFrom   string
	foodListTo     string
	foodListJSON   bool
)

// servingFromFlags builds a serving spec from --servings/--unit-weight or
// --weight/--unit. Servings win when both are given.
func servingFromFlags(cmd *cobra.Command) (service.ServingSpec, bool, error) {
	flags := cmd.Flags()
	if flags.Changed("servings") {
		return service.ServingSpec{Type: model.ServingTypeServing, Amount: foodServings, UnitWeightG: foodUnitWeight}, true, nil
	}
	if flags.Changed("weight") {
		grams, err := service.ConvertToGrams(foodWeight, foodWeightUnit)
		if err != nil {
			return service.ServingSpec{}, false, err
		}
		return service.ServingSpec{Type: model.ServingTypeWeight, TotalWeightG: grams, UnitWeightG: foodUnitWeight}, true, nil
	}
	return service.ServingSpec{}, false, nil
}

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food with explicit nutrient totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		loggedAt, err := parseDateTimeOrNow(foodDate, foodTime)
		if err != nil {
			return err
		}
		serving, _, err := servingFromFlags(cmd)
		if err != nil {
			return err
		}
		in := service.FoodLogInput{
			FoodName: foodName,
			MealTime: model.MealTime(foodMeal),
			LoggedAt: loggedAt,
			Serving:  serving,
			Totals:   foodNutrients,
			Notes:    foodNotes,
		}
		if cmd.Flags().Changed("item") {
			in.FoodItemID = &foodItemID
		}
		return withLedger(func(l *service.Ledger) error {
			id, err := l.CreateFoodLog(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged food %d\n", id)
			return nil
		})
	},
}

var foodLogItemCmd = &cobra.Command{
	Use:   "log-item <item-id>",
	Short: "Log a portion of a stored food item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := parseInt64Arg("item id", args[0])
		if err != nil {
			return err
		}
		loggedAt, err := parseDateTimeOrNow(foodDate, foodTime)
		if err != nil {
			return err
		}
		serving, ok, err := servingFromFlags(cmd)
		if err != nil {
			return err
		}
		if !ok {
			serving = service.ServingSpec{Type: model.ServingTypeServing, Amount: 1}
		}
		return withLedger(func(l *service.Ledger) error {
			id, err := l.LogFoodItem(itemID, serving, model.MealTime(foodMeal), loggedAt, foodNotes)
			if err != nil {
				return err
			}
			entry, err := l.FoodLogByID(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged food %d: %s %.0fg, %.0f kcal (%s)\n", id, entry.FoodName, entry.TotalWeightG, entry.Totals.Calories, entry.MealTime)
			return nil
		})
	},
}

var foodUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a food log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			current, err := l.FoodLogByID(id)
			if err != nil {
				return err
			}
			in := service.FoodLogInput{
				FoodItemID: current.FoodItemID,
				FoodName:   current.FoodName,
				MealTime:   current.MealTime,
				LoggedAt:   current.LoggedAt,
				LogDate:    current.LogDate,
				Serving: service.ServingSpec{
					Type:         current.ServingType,
					Amount:       current.ServingAmount,
					UnitWeightG:  current.UnitWeightG,
					TotalWeightG: current.TotalWeightG,
				},
				Totals: current.Totals,
				Notes:  current.Notes,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.FoodName = foodName
			}
			if flags.Changed("meal") {
				in.MealTime = model.MealTime(foodMeal)
			}
			if flags.Changed("date") || flags.Changed("time") {
				loggedAt, err := parseDateTimeOrNow(foodDate, foodTime)
				if err != nil {
					return err
				}
				in.LoggedAt = loggedAt
				in.LogDate = ""
			}
			if flags.Changed("notes") {
				in.Notes = foodNotes
			}
			if serving, ok, err := servingFromFlags(cmd); err != nil {
				return err
			} else if ok {
				if !flags.Changed("unit-weight") {
					serving.UnitWeightG = in.Serving.UnitWeightG
				}
				in.Serving = serving
				in.RescaleTotals = !nutrientFlagsChanged(cmd)
			}
			mergeNutrientFlags(cmd, &in.Totals, foodNutrients)
			if _, err := l.UpdateFoodLog(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food log %d\n", id)
			return nil
		})
	},
}

var foodDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a food log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			n, err := l.DeleteFoodLog(id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("food log %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food log %d\n", id)
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food logs for a day or a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			var logs []model.FoodLog
			var err error
			if strings.TrimSpace(foodListFrom) != "" || strings.TrimSpace(foodListTo) != "" {
				logs, err = l.QueryFoodLogsBetween(foodListFrom, foodListTo)
			} else {
				day, perr := parseDateOrToday(foodListDate)
				if perr != nil {
					return perr
				}
				logs, err = l.QueryFoodLogsByDate(day.Format("2006-01-02"))
			}
			if err != nil {
				return err
			}
			if foodListJSON {
				return printJSON(cmd, logs)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tDATE\tMEAL\tFOOD\tGRAMS\tKCAL\tP\tC\tF")
			for _, e := range logs {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%.0f\t%.0f\t%.1f\t%.1f\t%.1f\n",
					e.ID, e.LogDate, e.MealTime, e.FoodName, e.TotalWeightG, e.Totals.Calories, e.Totals.ProteinG, e.Totals.CarbsG, e.Totals.FatG)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodLogItemCmd, foodUpdateCmd, foodDeleteCmd, foodListCmd)

	for _, c := range []*cobra.Command{foodAddCmd, foodLogItemCmd, foodUpdateCmd} {
		c.Flags().StringVar(&foodMeal, "meal", "", "breakfast|lunch|afternoon_tea|dinner|late_night (default from time)")
		c.Flags().StringVar(&foodDate, "date", "", "Date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&foodTime, "time", "", "Time HH:MM (default now)")
		floatFlag(c, &foodServings, "servings", 0, "Number of servings")
		floatFlag(c, &foodUnitWeight, "unit-weight", 0, "Grams per serving")
		floatFlag(c, &foodWeight, "weight", 0, "Total weight eaten")
		c.Flags().StringVar(&foodWeightUnit, "unit", "g", "Unit for --weight (g, kg, mg, oz, lb)")
		c.Flags().StringVar(&foodNotes, "notes", "", "Notes")
	}
	for _, c := range []*cobra.Command{foodAddCmd, foodUpdateCmd} {
		c.Flags().StringVar(&foodName, "name", "", "Food name")
		bindNutrientFlags(c, &foodNutrients)
	}
	foodAddCmd.Flags().Int64Var(&foodItemID, "item", 0, "Link to a food item id")
	_ = foodAddCmd.MarkFlagRequired("name")

	foodListCmd.Flags().StringVar(&foodListDate, "date", "", "Date YYYY-MM-DD (default today)")
	foodListCmd.Flags().StringVar(&foodListFrom, "from", "", "Range start YYYY-MM-DD")
	foodListCmd.Flags().StringVar(&foodListTo, "to", "", "Range end YYYY-MM-DD")
	foodListCmd.Flags().BoolVar(&foodListJSON, "json", false, "Output JSON")
}
