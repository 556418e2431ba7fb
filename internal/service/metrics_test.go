package service_test

import (
	"testing"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeIsCalendarAware(t *testing.T) {
	t.Parallel()

	birth := date(1994, time.June, 16)
	assert.Equal(t, 29, service.Age(birth, date(2024, time.June, 15)))
	assert.Equal(t, 30, service.Age(birth, date(2024, time.June, 16)))
	assert.Equal(t, 0, service.Age(birth, date(1990, time.January, 1)))
	assert.Equal(t, 23, service.Age(date(2000, time.February, 29), date(2024, time.February, 28)))
}

func TestCalorieTargetScenarios(t *testing.T) {
	t.Parallel()

	bmr := service.BMR(70, 170, 30, model.GenderMale)
	if bmr != 1617.5 {
		t.Fatalf("expected BMR 1617.5, got %v", bmr)
	}
	if got := service.CalorieTarget(service.TDEE(bmr, model.ActivitySedentary), model.GoalMaintain); got != 1941 {
		t.Fatalf("maintain: expected 1941, got %d", got)
	}

	tdee := service.TDEE(1572.5, model.ActivitySedentary)
	assert.InDelta(t, 1887, tdee, 1e-9)
	if got := service.CalorieTarget(tdee, model.GoalMaintain); got != 1887 {
		t.Fatalf("maintain: expected 1887, got %d", got)
	}
	if got := service.CalorieTarget(tdee, model.GoalLoseWeight); got != 1387 {
		t.Fatalf("lose_weight: expected 1387, got %d", got)
	}
	if got := service.CalorieTarget(tdee, model.GoalGainWeight); got != 2187 {
		t.Fatalf("gain_weight: expected 2187, got %d", got)
	}
	for _, g := range []model.Goal{model.GoalRecomp, model.GoalBloodSugar} {
		assert.Equal(t, 1887, service.CalorieTarget(tdee, g), "goal %s", g)
	}
	assert.Zero(t, service.CalorieTarget(400, model.GoalLoseWeight))
}

func TestComputeCalorieTargetFromProfile(t *testing.T) {
	t.Parallel()

	p := model.Profile{
		Gender:        model.GenderMale,
		BirthDate:     "1994-01-01",
		HeightCm:      170,
		WeightKg:      70,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalLoseWeight,
	}
	assert.Equal(t, 1441, service.ComputeCalorieTarget(p, date(2024, time.June, 15)))
}

func TestBMRMonotonicity(t *testing.T) {
	t.Parallel()

	for _, g := range []model.Gender{model.GenderMale, model.GenderFemale} {
		assert.Less(t, service.BMR(60, 170, 30, g), service.BMR(61, 170, 30, g))
		assert.Less(t, service.BMR(60, 170, 30, g), service.BMR(60, 171, 30, g))
		assert.Greater(t, service.BMR(60, 170, 30, g), service.BMR(60, 170, 31, g))
	}
	assert.Equal(t, service.BMR(60, 160, 40, model.GenderMale)-166, service.BMR(60, 160, 40, model.GenderFemale))
	assert.Zero(t, service.BMR(0, 170, 30, model.GenderMale))
}

func TestTDEEUnknownLevelFallsBackToSedentary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, service.TDEE(1500, model.ActivitySedentary), service.TDEE(1500, "couch"))
	assert.InDelta(t, 2850, service.TDEE(1500, model.ActivityExtraActive), 1e-9)
}

func TestWorkoutCaloriesScenario(t *testing.T) {
	t.Parallel()

	jogging, ok := service.METFor("Jogging")
	if !ok || jogging.MET != 6.0 {
		t.Fatalf("expected jogging MET 6.0, got %+v ok=%v", jogging, ok)
	}
	if got := service.WorkoutCalories(jogging.MET, model.IntensityMedium, 70, 45); got != 315 {
		t.Fatalf("expected 315 kcal, got %d", got)
	}
	assert.Equal(t, 252, service.WorkoutCalories(6.0, model.IntensityLow, 70, 45))
	assert.Equal(t, 378, service.WorkoutCalories(6.0, model.IntensityHigh, 70, 45))
	assert.Equal(t, 315, service.WorkoutCalories(6.0, "unknown", 70, 45))
	assert.Zero(t, service.WorkoutCalories(6.0, model.IntensityMedium, 70, 0))
}

func TestMETForCustomActivity(t *testing.T) {
	t.Parallel()

	custom, ok := service.METFor("underwater basket weaving")
	assert.False(t, ok)
	assert.Equal(t, service.DefaultMET, custom.MET)
	assert.Equal(t, "custom", custom.Category)
}

func TestActivityCatalogIsSorted(t *testing.T) {
	t.Parallel()

	catalog := service.ActivityCatalog()
	if len(catalog) == 0 {
		t.Fatalf("expected a non-empty catalog")
	}
	for i := 1; i < len(catalog); i++ {
		prev, cur := catalog[i-1], catalog[i]
		if prev.Category > cur.Category || (prev.Category == cur.Category && prev.Name > cur.Name) {
			t.Fatalf("catalog out of order at %d: %+v then %+v", i, prev, cur)
		}
	}
}
