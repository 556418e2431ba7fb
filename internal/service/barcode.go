package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/provider/openfoodfacts"
	"github.com/nutrilog/nutrilog/internal/provider/upcitemdb"
	"github.com/nutrilog/nutrilog/internal/provider/usda"
)

const (
	BarcodeProviderOpenFoodFacts = "openfoodfacts"
	BarcodeProviderUSDA          = "usda"
	BarcodeProviderUPCItemDB     = "upcitemdb"
)

var barcodePattern = regexp.MustCompile(`^[0-9]{8,14}$`)

func isValidBarcode(barcode string) bool {
	return barcodePattern.MatchString(barcode)
}

// NormalizeBarcodeProvider maps provider aliases to their canonical name.
func NormalizeBarcodeProvider(name string) string {
	switch normalizeName(name) {
	case "openfoodfacts", "off":
		return BarcodeProviderOpenFoodFacts
	case "usda", "fdc":
		return BarcodeProviderUSDA
	case "upcitemdb", "upc":
		return BarcodeProviderUPCItemDB
	}
	return ""
}

type openFoodFactsAdapter struct {
	client *openfoodfacts.Client
}

func NewOpenFoodFactsAdapter(client *openfoodfacts.Client) BarcodeAdapter {
	return &openFoodFactsAdapter{client: client}
}

func (a *openFoodFactsAdapter) Lookup(ctx context.Context, barcode string) (NutrientBaseline, error) {
	p, err := a.client.LookupBarcode(ctx, barcode)
	if err != nil {
		return NutrientBaseline{}, err
	}
	return NutrientBaseline{
		Name:           p.Name,
		Brand:          p.Brand,
		Barcode:        p.Barcode,
		ServingWeightG: p.ServingWeightG,
		Source:         SourceBarcode,
		Per100g: model.Nutrients{
			Calories:      p.Calories,
			ProteinG:      p.ProteinG,
			FatG:          p.FatG,
			SaturatedFatG: p.SaturatedFatG,
			TransFatG:     p.TransFatG,
			CarbsG:        p.CarbsG,
			SugarG:        p.SugarG,
			FiberG:        p.FiberG,
			SodiumMg:      p.SodiumMg,
			CholesterolMg: p.CholesterolMg,
			MagnesiumMg:   p.MagnesiumMg,
			ZincMg:        p.ZincMg,
			IronMg:        p.IronMg,
		},
	}, nil
}

type usdaAdapter struct {
	client *usda.Client
}

func NewUSDAAdapter(client *usda.Client) BarcodeAdapter {
	return &usdaAdapter{client: client}
}

func (a *usdaAdapter) Lookup(ctx context.Context, barcode string) (NutrientBaseline, error) {
	f, err := a.client.LookupBarcode(ctx, barcode)
	if err != nil {
		return NutrientBaseline{}, err
	}
	return NutrientBaseline{
		Name:           f.Name,
		Brand:          f.Brand,
		Barcode:        f.Barcode,
		ServingWeightG: f.ServingWeightG,
		Source:         SourceBarcode,
		Per100g: model.Nutrients{
			Calories:      f.Calories,
			ProteinG:      f.ProteinG,
			FatG:          f.FatG,
			SaturatedFatG: f.SaturatedFatG,
			TransFatG:     f.TransFatG,
			CarbsG:        f.CarbsG,
			SugarG:        f.SugarG,
			FiberG:        f.FiberG,
			SodiumMg:      f.SodiumMg,
			CholesterolMg: f.CholesterolMg,
			MagnesiumMg:   f.MagnesiumMg,
			ZincMg:        f.ZincMg,
			IronMg:        f.IronMg,
		},
	}, nil
}

type upcItemDBAdapter struct {
	client *upcitemdb.Client
}

func NewUPCItemDBAdapter(client *upcitemdb.Client) BarcodeAdapter {
	return &upcItemDBAdapter{client: client}
}

func (a *upcItemDBAdapter) Lookup(ctx context.Context, barcode string) (NutrientBaseline, error) {
	p, err := a.client.LookupBarcode(ctx, barcode)
	if err != nil {
		return NutrientBaseline{}, err
	}
	return NutrientBaseline{
		Name:           p.Name,
		Brand:          p.Brand,
		Barcode:        p.Barcode,
		ServingWeightG: p.ServingWeightG,
		Source:         SourceBarcode,
		Per100g: model.Nutrients{
			Calories:      p.Calories,
			ProteinG:      p.ProteinG,
			FatG:          p.FatG,
			SaturatedFatG: p.SaturatedFatG,
			TransFatG:     p.TransFatG,
			CarbsG:        p.CarbsG,
			SugarG:        p.SugarG,
			FiberG:        p.FiberG,
			SodiumMg:      p.SodiumMg,
			CholesterolMg: p.CholesterolMg,
			MagnesiumMg:   p.MagnesiumMg,
			ZincMg:        p.ZincMg,
			IronMg:        p.IronMg,
		},
	}, nil
}

// NamedBarcodeAdapter labels an adapter for error messages.
type NamedBarcodeAdapter struct {
	Name    string
	Adapter BarcodeAdapter
}

// FallbackBarcodeAdapter tries each adapter in order and returns the first
// hit. Barcodes that are not 8 to 14 digits are rejected before any call.
type FallbackBarcodeAdapter struct {
	Adapters []NamedBarcodeAdapter
}

func (f *FallbackBarcodeAdapter) Lookup(ctx context.Context, barcode string) (NutrientBaseline, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return NutrientBaseline{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	if len(f.Adapters) == 0 {
		return NutrientBaseline{}, fmt.Errorf("no barcode providers configured")
	}
	var errs []error
	for _, a := range f.Adapters {
		if err := ctx.Err(); err != nil {
			return NutrientBaseline{}, err
		}
		b, err := a.Adapter.Lookup(ctx, barcode)
		if err == nil {
			return b, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}
	return NutrientBaseline{}, errors.Join(errs...)
}
