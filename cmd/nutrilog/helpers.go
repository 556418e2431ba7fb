package nutrilog

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/app"
	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/db"
	"github.com/nutrilog/nutrilog/internal/locale"
	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/provider"
	"github.com/nutrilog/nutrilog/internal/provider/openfoodfacts"
	"github.com/nutrilog/nutrilog/internal/provider/upcitemdb"
	"github.com/nutrilog/nutrilog/internal/provider/usda"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, nil
	}
	return app.DefaultDBPath()
}

func withLedger(run func(*service.Ledger) error) error {
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
	if _, err := l.Init(); err != nil {
		return err
	}
	return run(l)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func parseInt64Arg(name, value string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func parseDateOrToday(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t, nil
}

// parseDateTimeOrNow returns now when both are empty. A date alone means
// noon of that day so the derived meal slot is stable.
func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if timeStr == "" {
		timeStr = "12:00"
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

// resolveLocale prefers the flag, then the stored preference, then config.
func resolveLocale(l *service.Ledger, flag string) (locale.Locale, error) {
	if strings.TrimSpace(flag) != "" {
		return locale.Parse(flag), nil
	}
	stored, ok, err := l.GetConfig(service.ConfigLocale)
	if err != nil {
		return locale.Locale{}, err
	}
	if ok {
		return locale.Parse(stored), nil
	}
	if cfg != nil {
		return locale.Parse(cfg.Locale), nil
	}
	return locale.Default(), nil
}

// barcodeAdapter chains the configured providers. The order comes from the
// flag, then the stored preference, then config.
func barcodeAdapter(l *service.Ledger, override string) (*service.FallbackBarcodeAdapter, error) {
	c := cfg
	if c == nil {
		loaded, err := config.Load("")
		if err != nil {
			return nil, err
		}
		c = loaded
	}
	names := c.Barcode.Providers
	if strings.TrimSpace(override) != "" {
		parsed, err := service.ParseProviderList(override)
		if err != nil {
			return nil, err
		}
		names = parsed
	} else if stored, ok, err := l.GetConfig(service.ConfigBarcodeProviders); err != nil {
		return nil, err
	} else if ok {
		parsed, err := service.ParseProviderList(stored)
		if err != nil {
			return nil, err
		}
		names = parsed
	}

	httpClient := &http.Client{Timeout: c.Barcode.Timeout}
	chain := &service.FallbackBarcodeAdapter{}
	for _, name := range names {
		switch name {
		case service.BarcodeProviderOpenFoodFacts:
			chain.Adapters = append(chain.Adapters, service.NamedBarcodeAdapter{
				Name: name,
				Adapter: service.NewOpenFoodFactsAdapter(&openfoodfacts.Client{
					BaseURL:    c.Barcode.OpenFoodFactsURL,
					HTTPClient: httpClient,
					Limiter:    provider.NewLimiter(c.Barcode.RatePerMinute),
				}),
			})
		case service.BarcodeProviderUSDA:
			if strings.TrimSpace(c.Barcode.USDAAPIKey) == "" {
				log.Printf("[barcode] skipping usda: barcode.usda_api_key is not set")
				continue
			}
			chain.Adapters = append(chain.Adapters, service.NamedBarcodeAdapter{
				Name: name,
				Adapter: service.NewUSDAAdapter(&usda.Client{
					APIKey:     c.Barcode.USDAAPIKey,
					BaseURL:    c.Barcode.USDAURL,
					HTTPClient: httpClient,
					Limiter:    provider.NewLimiter(c.Barcode.RatePerMinute),
				}),
			})
		case service.BarcodeProviderUPCItemDB:
			chain.Adapters = append(chain.Adapters, service.NamedBarcodeAdapter{
				Name: name,
				Adapter: service.NewUPCItemDBAdapter(&upcitemdb.Client{
					BaseURL:    c.Barcode.UPCItemDBURL,
					APIKey:     c.Barcode.UPCItemDBAPIKey,
					APIKeyType: c.Barcode.UPCItemDBKeyType,
					HTTPClient: httpClient,
					Limiter:    provider.NewLimiter(c.Barcode.RatePerMinute),
				}),
			})
		}
	}
	return chain, nil
}

type nutrientFlag struct {
	name  string
	usage string
	field func(*model.Nutrients) *float64
}

var nutrientFlags = []nutrientFlag{
	{"calories", "Calories (kcal)", func(n *model.Nutrients) *float64 { return &n.Calories }},
	{"protein", "Protein grams", func(n *model.Nutrients) *float64 { return &n.ProteinG }},
	{"fat", "Fat grams", func(n *model.Nutrients) *float64 { return &n.FatG }},
	{"saturated-fat", "Saturated fat grams", func(n *model.Nutrients) *float64 { return &n.SaturatedFatG }},
	{"trans-fat", "Trans fat grams", func(n *model.Nutrients) *float64 { return &n.TransFatG }},
	{"carbs", "Carbohydrate grams", func(n *model.Nutrients) *float64 { return &n.CarbsG }},
	{"sugar", "Sugar grams", func(n *model.Nutrients) *float64 { return &n.SugarG }},
	{"fiber", "Fiber grams", func(n *model.Nutrients) *float64 { return &n.FiberG }},
	{"sodium", "Sodium mg", func(n *model.Nutrients) *float64 { return &n.SodiumMg }},
	{"cholesterol", "Cholesterol mg", func(n *model.Nutrients) *float64 { return &n.CholesterolMg }},
	{"magnesium", "Magnesium mg", func(n *model.Nutrients) *float64 { return &n.MagnesiumMg }},
	{"zinc", "Zinc mg", func(n *model.Nutrients) *float64 { return &n.ZincMg }},
	{"iron", "Iron mg", func(n *model.Nutrients) *float64 { return &n.IronMg }},
}

func bindNutrientFlags(cmd *cobra.Command, n *model.Nutrients) {
	for _, f := range nutrientFlags {
		floatFlag(cmd, f.field(n), f.name, 0, f.usage)
	}
}

// mergeNutrientFlags copies only the nutrient flags the user set from src
// into dst.
func mergeNutrientFlags(cmd *cobra.Command, dst *model.Nutrients, src model.Nutrients) {
	for _, f := range nutrientFlags {
		if cmd.Flags().Changed(f.name) {
			*f.field(dst) = *f.field(&src)
		}
	}
}

func nutrientFlagsChanged(cmd *cobra.Command) bool {
	for _, f := range nutrientFlags {
		if cmd.Flags().Changed(f.name) {
			return true
		}
	}
	return false
}

func printNutrients(cmd *cobra.Command, n model.Nutrients) {
	fmt.Fprintf(cmd.OutOrStdout(), "Calories: %.0f kcal\n", n.Calories)
	fmt.Fprintf(cmd.OutOrStdout(), "Macros: P %.1fg | C %.1fg | F %.1fg\n", n.ProteinG, n.CarbsG, n.FatG)
	fmt.Fprintf(cmd.OutOrStdout(), "Sugar: %.1fg | Fiber: %.1fg | Sodium: %.0fmg\n", n.SugarG, n.FiberG, n.SodiumMg)
}
