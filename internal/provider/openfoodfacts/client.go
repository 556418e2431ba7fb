package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/provider"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "https://world.openfoodfacts.org"
	defaultUserAgent  = "nutrilog/1.0 (+https://github.com/nutrilog/nutrilog)"
	kilojoulesPerKcal = 4.184
)

// Product is a product's nutrition per 100 g. Minerals are in mg.
type Product struct {
	Barcode        string
	Name           string
	Brand          string
	ServingWeightG float64
	Calories       float64
	ProteinG       float64
	FatG           float64
	SaturatedFatG  float64
	TransFatG      float64
	CarbsG         float64
	SugarG         float64
	FiberG         float64
	SodiumMg       float64
	CholesterolMg  float64
	MagnesiumMg    float64
	ZincMg         float64
	IronMg         float64
}

type Client struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Product{}, fmt.Errorf("openfoodfacts rate limit: %w", err)
		}
	}

	url := fmt.Sprintf("%s/api/v2/product/%s.json", base, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Product{}, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Product{}, fmt.Errorf("openfoodfacts barcode %q: %w", barcode, provider.ErrNotFound)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Product{}, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return Product{}, fmt.Errorf("openfoodfacts barcode %q: %w", barcode, provider.ErrNotFound)
	}

	n := parsed.Product.Nutriments
	calories, ok := per100g(n, "energy-kcal")
	if !ok {
		if kj, ok := per100g(n, "energy"); ok {
			calories = kj / kilojoulesPerKcal
		}
	}
	return Product{
		Barcode:        barcode,
		Name:           strings.TrimSpace(parsed.Product.ProductName),
		Brand:          firstBrand(parsed.Product.Brands),
		ServingWeightG: servingGrams(parsed.Product),
		Calories:       calories,
		ProteinG:       value(n, "proteins"),
		FatG:           value(n, "fat"),
		SaturatedFatG:  value(n, "saturated-fat"),
		TransFatG:      value(n, "trans-fat"),
		CarbsG:         value(n, "carbohydrates"),
		SugarG:         value(n, "sugars"),
		FiberG:         value(n, "fiber"),
		SodiumMg:       value(n, "sodium") * 1000,
		CholesterolMg:  value(n, "cholesterol") * 1000,
		MagnesiumMg:    value(n, "magnesium") * 1000,
		ZincMg:         value(n, "zinc") * 1000,
		IronMg:         value(n, "iron") * 1000,
	}, nil
}

func value(n map[string]any, base string) float64 {
	v, _ := per100g(n, base)
	return v
}

// per100g reads the "<base>_100g" nutriment. Open Food Facts reports masses
// in grams.
func per100g(n map[string]any, base string) (float64, bool) {
	v, ok := parseFloatAny(n[base+"_100g"])
	if !ok || v < 0 {
		return 0, false
	}
	return v, true
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

// servingGrams returns the labeled serving in grams, or 0 when the label is
// missing or not a mass.
func servingGrams(p offProduct) float64 {
	unit := strings.ToLower(strings.TrimSpace(p.ServingQuantityUnit))
	if q, ok := parseFloatAny(p.ServingQuantity); ok && q > 0 && (unit == "" || unit == "g") {
		return q
	}
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(p.ServingSize)))
	if len(parts) >= 2 && parts[1] == "g" {
		if v, err := strconv.ParseFloat(parts[0], 64); err == nil && v > 0 {
			return v
		}
	}
	if len(parts) == 1 && strings.HasSuffix(parts[0], "g") && !strings.HasSuffix(parts[0], "kg") && !strings.HasSuffix(parts[0], "mg") {
		if v, err := strconv.ParseFloat(strings.TrimSuffix(parts[0], "g"), 64); err == nil && v > 0 {
			return v
		}
	}
	return 0
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}
