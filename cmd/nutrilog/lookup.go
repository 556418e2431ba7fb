package nutrilog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Lookup nutrition data from external providers",
}

var (
	lookupProviders string
	lookupSave      bool
	lookupJSON      bool
)

var lookupBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Lookup a packaged food by barcode, trying each provider in order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		barcode := strings.TrimSpace(args[0])
		return withLedger(func(l *service.Ledger) error {
			if existing, err := l.FoodItemByBarcode(barcode); err == nil {
				if lookupJSON {
					return printJSON(cmd, existing)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Found saved food item %d: %s\n", existing.ID, existing.Name)
				printNutrients(cmd, existing.Nutrients)
				return nil
			} else if !errors.Is(err, service.ErrNotFound) {
				return err
			}

			adapter, err := barcodeAdapter(l, lookupProviders)
			if err != nil {
				return err
			}
			baseline, ok := service.LookupBarcode(context.Background(), adapter, barcode)
			if !ok {
				return fmt.Errorf("no product found for barcode %s (run with --verbose for provider errors)", barcode)
			}
			if lookupSave {
				id, err := l.CreateFoodItem(service.FoodItemFromBaseline(baseline))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved food item %d\n", id)
			}
			if lookupJSON {
				return printJSON(cmd, baseline)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Barcode: %s\n", baseline.Barcode)
			fmt.Fprintf(cmd.OutOrStdout(), "Food: %s\n", baseline.Name)
			if baseline.Brand != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Brand: %s\n", baseline.Brand)
			}
			if baseline.ServingWeightG > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Serving: %.0fg\n", baseline.ServingWeightG)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Per 100g:")
			printNutrients(cmd, baseline.Per100g)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
	lookupCmd.AddCommand(lookupBarcodeCmd)

	lookupBarcodeCmd.Flags().StringVar(&lookupProviders, "providers", "", "Provider order, e.g. openfoodfacts,usda")
	lookupBarcodeCmd.Flags().BoolVar(&lookupSave, "save", false, "Save the result as a food item")
	lookupBarcodeCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output JSON")
}
