package openfoodfacts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutrilog/nutrilog/internal/provider"
)

func TestLookupBarcodeParsesPer100gNutriments(t *testing.T) {
	t.Parallel()

	var gotPath, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": "Yogurt Cup",
    "brands": "Brand Co, Parent Co",
    "serving_quantity": "170",
    "serving_quantity_unit": "g",
    "nutriments": {
      "energy-kcal_serving": 120,
      "energy-kcal_100g": 70.5,
      "proteins_100g": 5.9,
      "carbohydrates_100g": 8.8,
      "fat_100g": 1.2,
      "saturated-fat_100g": "0.8",
      "sodium_100g": 0.04,
      "iron_100g": 0.0002
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Limiter: provider.NewLimiter(0)}
	item, err := c.LookupBarcode(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if gotPath != "/api/v2/product/12345678.json" {
		t.Fatalf("unexpected request path %q", gotPath)
	}
	if gotUA != defaultUserAgent {
		t.Fatalf("unexpected user agent %q", gotUA)
	}
	if item.Name != "Yogurt Cup" || item.Brand != "Brand Co" {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.Calories != 70.5 || item.ProteinG != 5.9 || item.SaturatedFatG != 0.8 {
		t.Fatalf("expected per-100g values, got %+v", item)
	}
	if item.SodiumMg != 40 {
		t.Fatalf("expected sodium in mg, got %v", item.SodiumMg)
	}
	if item.ServingWeightG != 170 {
		t.Fatalf("expected serving weight 170, got %v", item.ServingWeightG)
	}
}

func TestLookupBarcodeConvertsKilojoules(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Crackers","serving_size":"30 g","nutriments":{"energy_100g":1841}}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	item, err := c.LookupBarcode(context.Background(), "87654321")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if item.Calories < 439.9 || item.Calories > 440.1 {
		t.Fatalf("expected ~440 kcal, got %v", item.Calories)
	}
	if item.ServingWeightG != 30 {
		t.Fatalf("expected serving weight parsed from label, got %v", item.ServingWeightG)
	}
}

func TestLookupBarcodeUnknownProductIsNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "00000000")
	if !errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupBarcodeServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "12345678")
	if err == nil || errors.Is(err, provider.ErrNotFound) {
		t.Fatalf("expected a transport error, got %v", err)
	}
}
