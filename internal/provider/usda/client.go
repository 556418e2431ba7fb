package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/provider"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// Food is a branded food's nutrition per 100 g, as reported by FoodData
// Central search results.
type Food struct {
	FDCID          int64
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
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Food, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return Food{}, fmt.Errorf("missing USDA API key")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return Food{}, fmt.Errorf("USDA rate limit: %w", err)
		}
	}

	payload, err := json.Marshal(searchRequest{Query: barcode, DataType: []string{"Branded"}, PageSize: 20})
	if err != nil {
		return Food{}, fmt.Errorf("marshal USDA search payload: %w", err)
	}
	endpoint := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Food{}, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return Food{}, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Food{}, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Food{}, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Food{}, fmt.Errorf("decode USDA response: %w", err)
	}
	food, ok := selectBarcodeMatch(parsed.Foods, barcode)
	if !ok {
		return Food{}, fmt.Errorf("USDA barcode %q: %w", barcode, provider.ErrNotFound)
	}

	out := Food{
		FDCID:   food.FDCID,
		Barcode: barcode,
		Name:    strings.TrimSpace(food.Description),
		Brand:   strings.TrimSpace(food.BrandOwner),
	}
	if strings.EqualFold(strings.TrimSpace(food.ServingSizeUnit), "g") && food.ServingSize > 0 {
		out.ServingWeightG = food.ServingSize
	}
	for _, n := range food.FoodNutrients {
		if n.Value < 0 {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(n.NutrientName)) {
		case "energy":
			if strings.EqualFold(n.UnitName, "kcal") || n.UnitName == "" {
				out.Calories = n.Value
			}
		case "protein":
			out.ProteinG = n.Value
		case "total lipid (fat)":
			out.FatG = n.Value
		case "fatty acids, total saturated":
			out.SaturatedFatG = n.Value
		case "fatty acids, total trans":
			out.TransFatG = n.Value
		case "carbohydrate, by difference":
			out.CarbsG = n.Value
		case "sugars, total including nlea", "sugars, total", "total sugars":
			out.SugarG = n.Value
		case "fiber, total dietary":
			out.FiberG = n.Value
		case "sodium, na":
			out.SodiumMg = n.Value
		case "cholesterol":
			out.CholesterolMg = n.Value
		case "magnesium, mg":
			out.MagnesiumMg = n.Value
		case "zinc, zn":
			out.ZincMg = n.Value
		case "iron, fe":
			out.IronMg = n.Value
		}
	}
	return out, nil
}

// selectBarcodeMatch returns the food whose GTIN equals barcode, ignoring
// leading zero padding.
func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	want := strings.TrimLeft(strings.TrimSpace(barcode), "0")
	for _, f := range foods {
		if strings.TrimLeft(strings.TrimSpace(f.GTINUPC), "0") == want {
			return f, true
		}
	}
	return usdaFood{}, false
}

type searchRequest struct {
	Query    string   `json:"query"`
	DataType []string `json:"dataType"`
	PageSize int      `json:"pageSize"`
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	GTINUPC         string         `json:"gtinUpc"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
