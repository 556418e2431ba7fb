package service_test

import (
	"math"
	"testing"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToGramsAndToServingsRejectInvalidUnitWeight(t *testing.T) {
	t.Parallel()

	for _, w := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		assert.Zero(t, service.ToGrams(2, w), "unit weight %v", w)
		assert.Zero(t, service.ToServings(200, w), "unit weight %v", w)
	}
	assert.Zero(t, service.ToGrams(math.NaN(), 30))
	assert.Equal(t, 60.0, service.ToGrams(2, 30))
	assert.Equal(t, 2.5, service.ToServings(75, 30))
}

func TestServingsRoundTrip(t *testing.T) {
	t.Parallel()

	for _, unit := range []float64{0.5, 1, 28.35, 30, 113.4, 250} {
		for _, servings := range []float64{0.25, 1, 1.5, 3, 12.75} {
			got := service.ToServings(service.ToGrams(servings, unit), unit)
			if math.Abs(got-servings) > 1e-9 {
				t.Fatalf("round trip %v servings of %vg: got %v", servings, unit, got)
			}
		}
	}
}

func TestScaleNutrientsScenario(t *testing.T) {
	t.Parallel()

	totals := service.ScaleNutrients(model.Nutrients{Calories: 250}, 150)
	if totals.Calories != 375 {
		t.Fatalf("expected 375 kcal, got %v", totals.Calories)
	}
}

func TestScaleNutrientsRoundsEveryField(t *testing.T) {
	t.Parallel()

	baseline := model.Nutrients{Calories: 52, ProteinG: 0.3, CarbsG: 13.8, FiberG: 2.4, SodiumMg: 1}
	for _, grams := range []float64{0, 1, 37, 100, 182, 1000} {
		got := service.ScaleNutrients(baseline, grams)
		assert.Equal(t, math.Round(52*grams/100), got.Calories, "grams %v", grams)
		assert.Equal(t, math.Round(13.8*grams/100), got.CarbsG, "grams %v", grams)
	}
	assert.Equal(t, model.Nutrients{}, service.ScaleNutrientsPer(baseline, 0, 100))
	assert.Equal(t, model.Nutrients{}, service.ScaleNutrients(baseline, -10))
}

func TestScaleNutrientsPerServingBase(t *testing.T) {
	t.Parallel()

	got := service.ScaleNutrientsPer(model.Nutrients{Calories: 120, ProteinG: 10}, 170, 340)
	assert.Equal(t, 240.0, got.Calories)
	assert.Equal(t, 20.0, got.ProteinG)
}

func TestSyncDoesNotOscillate(t *testing.T) {
	t.Parallel()

	grams, changed := service.SyncGrams(2, 30, 0)
	require.True(t, changed)
	require.Equal(t, 60.0, grams)

	servings, changed := service.SyncServings(grams, 30, 2)
	assert.False(t, changed, "servings already agree with grams")
	assert.Equal(t, 2.0, servings)

	_, changed = service.SyncGrams(2, 30, 60.05)
	assert.False(t, changed, "difference below tolerance must not write")

	servings, changed = service.SyncServings(90, 30, 2)
	assert.True(t, changed)
	assert.Equal(t, 3.0, servings)
}

func TestResolveServing(t *testing.T) {
	t.Parallel()

	spec, err := service.ResolveServing(service.ServingSpec{Type: model.ServingTypeServing, Amount: 1.5, UnitWeightG: 40})
	require.NoError(t, err)
	assert.Equal(t, 60.0, spec.TotalWeightG)

	spec, err = service.ResolveServing(service.ServingSpec{TotalWeightG: 80, UnitWeightG: 40})
	require.NoError(t, err)
	assert.Equal(t, model.ServingTypeWeight, spec.Type)
	assert.Equal(t, 2.0, spec.Amount)

	_, err = service.ResolveServing(service.ServingSpec{Type: "cup"})
	assert.Error(t, err)
	_, err = service.ResolveServing(service.ServingSpec{Type: model.ServingTypeWeight, TotalWeightG: -1})
	assert.Error(t, err)
}

func TestParseNumberIsForgiving(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"":       0,
		"  12.5": 12.5,
		"abc":    0,
		"NaN":    0,
		"1e3":    1000,
		"1,000":  0,
		"-3":     -3,
	}
	for in, want := range cases {
		assert.Equal(t, want, service.ParseNumber(in), "input %q", in)
	}
}

func TestConvertToGrams(t *testing.T) {
	t.Parallel()

	got, err := service.ConvertToGrams(1, "oz")
	require.NoError(t, err)
	assert.InDelta(t, 28.35, got, 0.01)

	got, err = service.ConvertToGrams(2, " KG ")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, got)

	_, err = service.ConvertToGrams(1, "cup")
	assert.Error(t, err)
	_, err = service.ConvertToGrams(-1, "g")
	assert.Error(t, err)
}
