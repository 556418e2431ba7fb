package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
)

// SyncTolerance is the largest difference at which the serving and gram
// representations of an amount are considered to already agree.
const SyncTolerance = 0.1

// DefaultBaseAmount is the reference amount nutrient baselines are expressed in.
const DefaultBaseAmount = 100.0

var massUnitGrams = map[string]float64{
	"mg":  0.001,
	"g":   1,
	"kg":  1000,
	"oz":  28.349523125,
	"lb":  453.59237,
	"lbs": 453.59237,
}

// ServingSpec describes how much of a food was eaten. In serving mode the
// total weight is Amount x UnitWeightG; in weight mode it is TotalWeightG.
type ServingSpec struct {
	Type         model.ServingType
	Amount       float64
	UnitWeightG  float64
	TotalWeightG float64
}

func ToGrams(servings, unitWeightG float64) float64 {
	if !usable(servings) || !usable(unitWeightG) || unitWeightG <= 0 || servings <= 0 {
		return 0
	}
	return servings * unitWeightG
}

func ToServings(grams, unitWeightG float64) float64 {
	if !usable(grams) || !usable(unitWeightG) || unitWeightG <= 0 || grams <= 0 {
		return 0
	}
	return grams / unitWeightG
}

// ScaleNutrients scales a per-100g baseline to grams.
func ScaleNutrients(baselinePer100g model.Nutrients, grams float64) model.Nutrients {
	return ScaleNutrientsPer(baselinePer100g, DefaultBaseAmount, grams)
}

// ScaleNutrientsPer scales a baseline expressed per baseAmount grams. Every
// field is rounded to the nearest whole unit.
func ScaleNutrientsPer(baseline model.Nutrients, baseAmount, grams float64) model.Nutrients {
	if !usable(baseAmount) || !usable(grams) || baseAmount <= 0 || grams <= 0 {
		return model.Nutrients{}
	}
	clean := baseline.Map(func(v float64) float64 {
		if !usable(v) || v <= 0 {
			return 0
		}
		return v
	})
	return clean.Scale(grams / baseAmount).Round()
}

// SyncGrams recomputes grams after the serving count was edited. changed is
// false when currentGrams already matches, which stops edit loops between the
// two fields.
func SyncGrams(servings, unitWeightG, currentGrams float64) (grams float64, changed bool) {
	next := ToGrams(servings, unitWeightG)
	if math.Abs(next-currentGrams) < SyncTolerance {
		return currentGrams, false
	}
	return next, true
}

// SyncServings is the inverse of SyncGrams.
func SyncServings(grams, unitWeightG, currentServings float64) (servings float64, changed bool) {
	next := ToServings(grams, unitWeightG)
	if math.Abs(next-currentServings) < SyncTolerance {
		return currentServings, false
	}
	return next, true
}

// ResolveServing normalizes a serving spec so that both representations
// agree and returns it with TotalWeightG filled in.
func ResolveServing(spec ServingSpec) (ServingSpec, error) {
	switch spec.Type {
	case model.ServingTypeServing:
		if spec.Amount < 0 || spec.UnitWeightG < 0 {
			return ServingSpec{}, fmt.Errorf("serving amount and unit weight must be >= 0")
		}
		spec.TotalWeightG = ToGrams(spec.Amount, spec.UnitWeightG)
	case model.ServingTypeWeight, "":
		if spec.TotalWeightG < 0 {
			return ServingSpec{}, fmt.Errorf("total weight must be >= 0")
		}
		spec.Type = model.ServingTypeWeight
		if !usable(spec.TotalWeightG) {
			spec.TotalWeightG = 0
		}
		if spec.UnitWeightG > 0 {
			spec.Amount = ToServings(spec.TotalWeightG, spec.UnitWeightG)
		}
	default:
		return ServingSpec{}, fmt.Errorf("invalid serving type %q (use serving or weight)", spec.Type)
	}
	return spec, nil
}

// ParseNumber reads user-typed numeric text. Anything that does not parse
// as a finite number is treated as 0.
func ParseNumber(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !usable(v) {
		return 0
	}
	return v
}

// ConvertToGrams converts a mass in the given unit to grams.
func ConvertToGrams(value float64, unit string) (float64, error) {
	if value < 0 {
		return 0, fmt.Errorf("amount must be >= 0")
	}
	factor, ok := massUnitGrams[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q (use g, kg, mg, oz, or lb)", unit)
	}
	return value * factor, nil
}

func usable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
