package upcitemdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/provider"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.upcitemdb.com"

// Product is a product's nutrition label rescaled from one serving to
// 100 g. Minerals are in mg.
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

// Client calls the trial endpoint when APIKey is empty. The trial allows
// 100 lookups per day.
type Client struct {
	BaseURL    string
	APIKey     string
	APIKeyType string
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
			return Product{}, fmt.Errorf("upcitemdb rate limit: %w", err)
		}
	}
	path := "/prod/trial/lookup"
	if strings.TrimSpace(c.APIKey) != "" {
		path = "/prod/v1/lookup"
	}
	endpoint := fmt.Sprintf("%s%s?upc=%s", base, path, url.QueryEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Product{}, fmt.Errorf("create upcitemdb request: %w", err)
	}
	if strings.TrimSpace(c.APIKey) != "" {
		keyType := strings.TrimSpace(c.APIKeyType)
		if keyType == "" {
			keyType = "3scale"
		}
		req.Header.Set("key_type", keyType)
		req.Header.Set("user_key", strings.TrimSpace(c.APIKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Product{}, fmt.Errorf("execute upcitemdb request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return Product{}, fmt.Errorf("upcitemdb barcode %q: %w", barcode, provider.ErrNotFound)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, fmt.Errorf("read upcitemdb response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Product{}, fmt.Errorf("upcitemdb request failed with status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("decode upcitemdb response: %w", err)
	}
	if strings.ToUpper(parsed.Code) != "OK" || len(parsed.Items) == 0 {
		return Product{}, fmt.Errorf("upcitemdb barcode %q: %w", barcode, provider.ErrNotFound)
	}
	item := parsed.Items[0]
	serving := servingGrams(item.Size)
	if serving <= 0 {
		return Product{}, fmt.Errorf("upcitemdb barcode %q has no gram serving size %q: %w", barcode, item.Size, provider.ErrNotFound)
	}

	facts := parseFacts(item.NutritionFacts)
	per100 := func(key string) float64 { return facts[key] * 100 / serving }
	return Product{
		Barcode:        barcode,
		Name:           strings.TrimSpace(item.Title),
		Brand:          strings.TrimSpace(item.Brand),
		ServingWeightG: serving,
		Calories:       per100("calories"),
		ProteinG:       per100("protein"),
		FatG:           per100("fat"),
		SaturatedFatG:  per100("saturated_fat"),
		TransFatG:      per100("trans_fat"),
		CarbsG:         per100("carbs"),
		SugarG:         per100("sugar"),
		FiberG:         per100("fiber"),
		SodiumMg:       per100("sodium"),
		CholesterolMg:  per100("cholesterol"),
		MagnesiumMg:    per100("magnesium"),
		ZincMg:         per100("zinc"),
		IronMg:         per100("iron"),
	}, nil
}

// servingGrams reads sizes like "40 g" or "40g". Other units yield 0.
func servingGrams(size string) float64 {
	v, unit, ok := parseQuantity(size)
	if !ok || v <= 0 {
		return 0
	}
	switch unit {
	case "g", "gram", "grams":
		return v
	case "kg":
		return v * 1000
	case "oz":
		return v * 28.349523125
	}
	return 0
}

var factKeys = map[string]string{
	"calories":           "calories",
	"energy":             "calories",
	"protein":            "protein",
	"total fat":          "fat",
	"fat":                "fat",
	"saturated fat":      "saturated_fat",
	"trans fat":          "trans_fat",
	"total carbohydrate": "carbs",
	"carbohydrate":       "carbs",
	"total sugars":       "sugar",
	"sugars":             "sugar",
	"dietary fiber":      "fiber",
	"fiber":              "fiber",
	"sodium":             "sodium",
	"cholesterol":        "cholesterol",
	"magnesium":          "magnesium",
	"zinc":               "zinc",
	"iron":               "iron",
}

// milligramFacts are reported in mg; the rest are grams except calories.
var milligramFacts = map[string]bool{"sodium": true, "cholesterol": true, "magnesium": true, "zinc": true, "iron": true}

// parseFacts maps label rows like "Total Fat": "2g" onto canonical keys in
// the unit the Product field expects.
func parseFacts(n map[string]any) map[string]float64 {
	out := make(map[string]float64, len(n))
	for label, raw := range n {
		key, ok := factKeys[strings.ToLower(strings.TrimSpace(label))]
		if !ok {
			continue
		}
		v, unit, ok := parseQuantity(fmt.Sprintf("%v", raw))
		if !ok || v < 0 {
			continue
		}
		switch {
		case key == "calories":
		case milligramFacts[key] && unit == "g":
			v *= 1000
		case !milligramFacts[key] && unit == "mg":
			v /= 1000
		}
		out[key] = v
	}
	return out
}

// parseQuantity splits "120mg" or "40 g" into a number and a lower-case unit.
func parseQuantity(s string) (float64, string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, "", false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, "", false
	}
	return v, strings.TrimSpace(strings.TrimLeft(s[end:], ", ")), true
}

type response struct {
	Code  string `json:"code"`
	Items []item `json:"items"`
}

type item struct {
	Title          string         `json:"title"`
	Brand          string         `json:"brand"`
	Size           string         `json:"size"`
	NutritionFacts map[string]any `json:"nutrition_facts"`
}
