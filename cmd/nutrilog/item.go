package nutrilog

import (
	"fmt"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage reusable food items",
}

var (
	itemName          string
	itemBarcode       string
	itemBrand         string
	itemBaseAmount    float64
	itemBaseUnit      string
	itemServingWeight float64
	itemNutrients     model.Nutrients
	itemQuery         string
	itemLimit         int
	itemJSON          bool
)

var itemAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a food item with nutrients per base amount",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			id, err := l.CreateFoodItem(service.FoodItemInput{
				Name:           itemName,
				Barcode:        itemBarcode,
				Brand:          itemBrand,
				BaseAmount:     itemBaseAmount,
				BaseUnit:       itemBaseUnit,
				ServingWeightG: itemServingWeight,
				Source:         service.SourceManual,
				Nutrients:      itemNutrients,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food item %d\n", id)
			return nil
		})
	},
}

var itemUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a food item; existing logs keep their totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			current, err := l.FoodItemByID(id)
			if err != nil {
				return err
			}
			in := service.FoodItemInput{
				Name:           current.Name,
				Barcode:        current.Barcode,
				Brand:          current.Brand,
				BaseAmount:     current.BaseAmount,
				BaseUnit:       current.BaseUnit,
				ServingWeightG: current.ServingWeightG,
				Source:         current.Source,
				Nutrients:      current.Nutrients,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = itemName
			}
			if flags.Changed("barcode") {
				in.Barcode = itemBarcode
			}
			if flags.Changed("brand") {
				in.Brand = itemBrand
			}
			if flags.Changed("base-amount") {
				in.BaseAmount = itemBaseAmount
			}
			if flags.Changed("base-unit") {
				in.BaseUnit = itemBaseUnit
			}
			if flags.Changed("serving-weight") {
				in.ServingWeightG = itemServingWeight
			}
			mergeNutrientFlags(cmd, &in.Nutrients, itemNutrients)
			if _, err := l.UpdateFoodItem(id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated food item %d\n", id)
			return nil
		})
	},
}

var itemListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withLedger(func(l *service.Ledger) error {
			items, err := l.ListFoodItems(itemQuery, itemLimit)
			if err != nil {
				return err
			}
			if itemJSON {
				return printJSON(cmd, items)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBRAND\tBARCODE\tPER\tKCAL\tP\tC\tF")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%.0f%s\t%.0f\t%.1f\t%.1f\t%.1f\n",
					it.ID, it.Name, it.Brand, it.Barcode, it.BaseAmount, it.BaseUnit, it.Nutrients.Calories, it.Nutrients.ProteinG, it.Nutrients.CarbsG, it.Nutrients.FatG)
			}
			return nil
		})
	},
}

var itemShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a food item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			it, err := l.FoodItemByID(id)
			if err != nil {
				return err
			}
			if itemJSON {
				return printJSON(cmd, it)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Food item %d: %s\n", it.ID, it.Name)
			if it.Brand != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Brand: %s\n", it.Brand)
			}
			if it.Barcode != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", it.Barcode)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Per %.0f%s (serving %.0fg, source %s)\n", it.BaseAmount, it.BaseUnit, it.ServingWeightG, it.Source)
			printNutrients(cmd, it.Nutrients)
			return nil
		})
	},
}

var itemDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a food item; logs keep their name and totals",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("id", args[0])
		if err != nil {
			return err
		}
		return withLedger(func(l *service.Ledger) error {
			n, err := l.DeleteFoodItem(id)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("food item %d not found", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted food item %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd, itemUpdateCmd, itemListCmd, itemShowCmd, itemDeleteCmd)

	for _, c := range []*cobra.Command{itemAddCmd, itemUpdateCmd} {
		c.Flags().StringVar(&itemName, "name", "", "Food name")
		c.Flags().StringVar(&itemBarcode, "barcode", "", "Barcode (8-14 digits)")
		c.Flags().StringVar(&itemBrand, "brand", "", "Brand")
		floatFlag(c, &itemBaseAmount, "base-amount", service.DefaultBaseAmount, "Amount the nutrients are given for")
		c.Flags().StringVar(&itemBaseUnit, "base-unit", "g", "Unit of the base amount (g, kg, mg, oz, lb)")
		floatFlag(c, &itemServingWeight, "serving-weight", 0, "Grams in one serving")
		bindNutrientFlags(c, &itemNutrients)
	}
	_ = itemAddCmd.MarkFlagRequired("name")

	itemListCmd.Flags().StringVar(&itemQuery, "query", "", "Match name, brand, or barcode")
	itemListCmd.Flags().IntVar(&itemLimit, "limit", 50, "Max rows")
	itemListCmd.Flags().BoolVar(&itemJSON, "json", false, "Output JSON")
	itemShowCmd.Flags().BoolVar(&itemJSON, "json", false, "Output JSON")
}
