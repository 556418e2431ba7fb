package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
	"github.com/nutrilog/nutrilog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRejectsUseBeforeInit(t *testing.T) {
	t.Parallel()

	l := service.NewLedger(newTestDB(t))
	require.False(t, l.Ready())

	_, err := l.Profile()
	assert.ErrorIs(t, err, service.ErrNotReady)
	_, err = l.CreateFoodItem(service.FoodItemInput{Name: "Apple", Nutrients: model.Nutrients{Calories: 52}})
	assert.ErrorIs(t, err, service.ErrNotReady)
	_, err = l.QueryFoodLogsByDate("2024-06-15")
	assert.ErrorIs(t, err, service.ErrNotReady)
	_, err = l.DailySummary(testNow)
	assert.ErrorIs(t, err, service.ErrNotReady)

	_, err = l.Init()
	require.NoError(t, err)
	assert.True(t, l.Ready())
	_, err = l.Init()
	require.NoError(t, err, "init must be repeatable")
}

func TestGetOrCreateProfileCreatesDefaultOnce(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	none, err := l.Profile()
	require.NoError(t, err)
	require.Nil(t, none)

	first, err := l.GetOrCreateProfile()
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.NotEmpty(t, first.InstallationID)
	assert.Equal(t, model.ActivitySedentary, first.ActivityLevel)
	assert.Equal(t, 1917, first.DailyCalorieTarget)

	second, err := l.GetOrCreateProfile()
	require.NoError(t, err)
	assert.Equal(t, first.InstallationID, second.InstallationID)
}

func TestUpsertProfileRecomputesTargetAndKeepsIdentity(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	created, err := l.GetOrCreateProfile()
	require.NoError(t, err)

	in := service.InputFromProfile(*created)
	in.BirthDate = "1994-01-01"
	in.Goal = model.GoalLoseWeight
	in.TargetWeightKg = ptr(65.0)
	in.TargetDate = "2024-07-01"
	updated, err := l.UpsertProfile(in)
	require.NoError(t, err)

	assert.Equal(t, created.InstallationID, updated.InstallationID)
	assert.Equal(t, 1441, updated.DailyCalorieTarget)
	require.NotNil(t, updated.TargetWeightKg)
	assert.Equal(t, 65.0, *updated.TargetWeightKg)
	assert.Equal(t, "2024-07-01", updated.TargetDate)
	assert.Equal(t, testNow.Unix(), updated.UpdatedAt.Unix())
}

func TestUpsertProfileValidation(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	cases := map[string]func(*service.ProfileInput){
		"zero height":      func(in *service.ProfileInput) { in.HeightCm = 0 },
		"negative weight":  func(in *service.ProfileInput) { in.WeightKg = -1 },
		"future birth":     func(in *service.ProfileInput) { in.BirthDate = "2030-01-01" },
		"bad birth format": func(in *service.ProfileInput) { in.BirthDate = "01/02/1990" },
		"body fat > 100":   func(in *service.ProfileInput) { in.BodyFatPct = ptr(120.0) },
		"unknown gender":   func(in *service.ProfileInput) { in.Gender = "other" },
		"unknown goal":     func(in *service.ProfileInput) { in.Goal = "bulk" },
		"unknown level":    func(in *service.ProfileInput) { in.ActivityLevel = "athlete" },
	}
	for name, mutate := range cases {
		in := service.DefaultProfileInput()
		mutate(&in)
		if _, err := l.UpsertProfile(in); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	p, err := l.Profile()
	require.NoError(t, err)
	assert.Nil(t, p, "rejected input must not create a profile")
}

func TestFoodItemLifecycle(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	id, err := l.CreateFoodItem(service.FoodItemInput{
		Name:           "Greek Yogurt",
		Barcode:        "012345678905",
		Brand:          "Test Brand",
		ServingWeightG: 170,
		Nutrients:      model.Nutrients{Calories: 59, ProteinG: 10.2, IronMg: 0.1},
	})
	require.NoError(t, err)

	item, err := l.FoodItemByID(id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, item.BaseAmount)
	assert.Equal(t, "g", item.BaseUnit)
	assert.Equal(t, service.SourceManual, item.Source)
	assert.Equal(t, 0.1, item.Nutrients.IronMg)

	byBarcode, err := l.FoodItemByBarcode("012345678905")
	require.NoError(t, err)
	assert.Equal(t, id, byBarcode.ID)

	affected, err := l.UpdateFoodItem(id, service.FoodItemInput{Name: "Greek Yogurt 0%", Nutrients: model.Nutrients{Calories: 54}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	items, err := l.ListFoodItems("yogurt", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Greek Yogurt 0%", items[0].Name)

	affected, err = l.DeleteFoodItem(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	_, err = l.FoodItemByID(id)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFoodItemValidation(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	_, err := l.CreateFoodItem(service.FoodItemInput{Name: " ", Nutrients: model.Nutrients{Calories: 1}})
	assert.Error(t, err)
	_, err = l.CreateFoodItem(service.FoodItemInput{Name: "Bad", Nutrients: model.Nutrients{Calories: 10, SugarG: -1}})
	assert.ErrorContains(t, err, "sugar_g")

	id, err := l.CreateFoodItem(service.FoodItemInput{Name: "Rice", BaseAmount: 1, BaseUnit: "oz", Nutrients: model.Nutrients{Calories: 37}})
	require.NoError(t, err)
	item, err := l.FoodItemByID(id)
	require.NoError(t, err)
	assert.InDelta(t, 28.35, item.BaseAmount, 0.01)
	assert.Equal(t, "g", item.BaseUnit)
}

func TestWritesToMissingIDAffectNothing(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	affected, err := l.UpdateFoodItem(404, service.FoodItemInput{Name: "Ghost", Nutrients: model.Nutrients{Calories: 1}})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = l.UpdateFoodLog(404, service.FoodLogInput{FoodName: "Ghost", Serving: service.ServingSpec{TotalWeightG: 1}})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = l.DeleteFoodLog(404)
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = l.UpdateActivityLog(404, service.ActivityLogInput{ActivityName: "walking", DurationMin: 10})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = l.DeleteActivityLog(404)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestLogFoodItemScalesBaseline(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	itemID, err := l.CreateFoodItem(service.FoodItemInput{Name: "Granola", ServingWeightG: 50, Nutrients: model.Nutrients{Calories: 250, ProteinG: 8, SodiumMg: 30}})
	require.NoError(t, err)

	logID, err := l.LogFoodItem(itemID, service.ServingSpec{Type: model.ServingTypeWeight, TotalWeightG: 150}, "", testNow, "")
	require.NoError(t, err)
	entry, err := l.FoodLogByID(logID)
	require.NoError(t, err)
	if entry.Totals.Calories != 375 {
		t.Fatalf("expected 375 kcal, got %v", entry.Totals.Calories)
	}
	assert.Equal(t, 12.0, entry.Totals.ProteinG)
	assert.Equal(t, 45.0, entry.Totals.SodiumMg)
	assert.Equal(t, "Granola", entry.FoodName)
	require.NotNil(t, entry.FoodItemID)
	assert.Equal(t, itemID, *entry.FoodItemID)
	assert.Equal(t, model.MealAfternoonTea, entry.MealTime)
	assert.Equal(t, "2024-06-15", entry.LogDate)
	assert.Equal(t, 3.0, entry.ServingAmount)

	servingID, err := l.LogFoodItem(itemID, service.ServingSpec{Type: model.ServingTypeServing, Amount: 2}, model.MealBreakfast, testNow, "")
	require.NoError(t, err)
	serving, err := l.FoodLogByID(servingID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, serving.TotalWeightG)
	assert.Equal(t, serving.ServingAmount*serving.UnitWeightG, serving.TotalWeightG)
	assert.Equal(t, 250.0, serving.Totals.Calories)
	assert.Equal(t, model.MealBreakfast, serving.MealTime)
}

func TestFoodLogsKeepNameAfterItemDeleted(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	itemID, err := l.CreateFoodItem(service.FoodItemInput{Name: "Banana", Nutrients: model.Nutrients{Calories: 89}})
	require.NoError(t, err)
	logID, err := l.LogFoodItem(itemID, service.ServingSpec{TotalWeightG: 120}, "", testNow, "")
	require.NoError(t, err)

	_, err = l.DeleteFoodItem(itemID)
	require.NoError(t, err)

	entry, err := l.FoodLogByID(logID)
	require.NoError(t, err)
	assert.Nil(t, entry.FoodItemID)
	assert.Equal(t, "Banana", entry.FoodName)
	assert.Equal(t, 107.0, entry.Totals.Calories)
}

func TestUpdatingFoodItemDoesNotRewriteHistory(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	itemID, err := l.CreateFoodItem(service.FoodItemInput{Name: "Bread", Nutrients: model.Nutrients{Calories: 265}})
	require.NoError(t, err)
	logID, err := l.LogFoodItem(itemID, service.ServingSpec{TotalWeightG: 100}, "", testNow, "")
	require.NoError(t, err)

	_, err = l.UpdateFoodItem(itemID, service.FoodItemInput{Name: "Bread", Nutrients: model.Nutrients{Calories: 300}})
	require.NoError(t, err)

	entry, err := l.FoodLogByID(logID)
	require.NoError(t, err)
	assert.Equal(t, 265.0, entry.Totals.Calories)
}

func TestFoodLogQueriesFilterByLogDate(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	late := time.Date(2024, time.June, 14, 23, 30, 0, 0, time.Local)
	early := time.Date(2024, time.June, 15, 7, 0, 0, 0, time.Local)
	noon := time.Date(2024, time.June, 15, 12, 15, 0, 0, time.Local)
	for _, in := range []service.FoodLogInput{
		{FoodName: "Lunch", LoggedAt: noon, Serving: service.ServingSpec{TotalWeightG: 200}, Totals: model.Nutrients{Calories: 600}},
		{FoodName: "Snack", LoggedAt: late, Serving: service.ServingSpec{TotalWeightG: 30}, Totals: model.Nutrients{Calories: 150}},
		{FoodName: "Oats", LoggedAt: early, Serving: service.ServingSpec{TotalWeightG: 40}, Totals: model.Nutrients{Calories: 150}},
	} {
		_, err := l.CreateFoodLog(in)
		require.NoError(t, err)
	}

	logs, err := l.QueryFoodLogsByDate("2024-06-15")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Oats", logs[0].FoodName)
	assert.Equal(t, model.MealBreakfast, logs[0].MealTime)
	assert.Equal(t, "Lunch", logs[1].FoodName)
	assert.Equal(t, model.MealLunch, logs[1].MealTime)

	prev, err := l.QueryFoodLogsByDate("2024-06-14")
	require.NoError(t, err)
	require.Len(t, prev, 1)
	assert.Equal(t, model.MealLateNight, prev[0].MealTime)

	empty, err := l.QueryFoodLogsByDate("2024-01-01")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateAndDeleteFoodLog(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	id, err := l.CreateFoodLog(service.FoodLogInput{FoodName: "Soup", LoggedAt: testNow, Serving: service.ServingSpec{TotalWeightG: 250}, Totals: model.Nutrients{Calories: 180}})
	require.NoError(t, err)

	baseline := model.Nutrients{Calories: 72}
	affected, err := l.UpdateFoodLog(id, service.FoodLogInput{
		FoodName: "Soup",
		MealTime: model.MealDinner,
		LoggedAt: testNow,
		Serving:  service.ServingSpec{Type: model.ServingTypeServing, Amount: 2, UnitWeightG: 250},
		Baseline: &baseline,
		Notes:    "second bowl",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	entry, err := l.FoodLogByID(id)
	require.NoError(t, err)
	assert.Equal(t, 500.0, entry.TotalWeightG)
	assert.Equal(t, 360.0, entry.Totals.Calories)
	assert.Equal(t, model.MealDinner, entry.MealTime)
	assert.Equal(t, "second bowl", entry.Notes)

	affected, err = l.DeleteFoodLog(id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	_, err = l.FoodLogByID(id)
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestUpdateFoodLogRescalesTotals(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	itemID, err := l.CreateFoodItem(service.FoodItemInput{Name: "Rice", ServingWeightG: 75, Nutrients: model.Nutrients{Calories: 250, CarbsG: 56}})
	require.NoError(t, err)
	logID, err := l.LogFoodItem(itemID, service.ServingSpec{TotalWeightG: 150}, "", testNow, "")
	require.NoError(t, err)
	entry, err := l.FoodLogByID(logID)
	require.NoError(t, err)
	require.Equal(t, 375.0, entry.Totals.Calories)

	in := service.FoodLogInput{
		FoodItemID:    entry.FoodItemID,
		FoodName:      entry.FoodName,
		LoggedAt:      entry.LoggedAt,
		Serving:       service.ServingSpec{Type: model.ServingTypeWeight, TotalWeightG: 300, UnitWeightG: entry.UnitWeightG},
		Totals:        entry.Totals,
		RescaleTotals: true,
	}
	affected, err := l.UpdateFoodLog(logID, in)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	entry, err = l.FoodLogByID(logID)
	require.NoError(t, err)
	assert.Equal(t, 300.0, entry.TotalWeightG)
	assert.Equal(t, 750.0, entry.Totals.Calories)
	assert.Equal(t, 168.0, entry.Totals.CarbsG)
	assert.Equal(t, 4.0, entry.ServingAmount)

	in.Serving = service.ServingSpec{Type: model.ServingTypeServing, Amount: 1, UnitWeightG: 75}
	_, err = l.UpdateFoodLog(logID, in)
	require.NoError(t, err)
	entry, err = l.FoodLogByID(logID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, entry.TotalWeightG)
	assert.Equal(t, 188.0, entry.Totals.Calories)

	affected, err = l.UpdateFoodLog(404, in)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestUpdateFoodLogRescalesFromItemWhenWeightWasZero(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	itemID, err := l.CreateFoodItem(service.FoodItemInput{Name: "Lentils", Nutrients: model.Nutrients{Calories: 116, ProteinG: 9}})
	require.NoError(t, err)
	logID, err := l.LogFoodItem(itemID, service.ServingSpec{TotalWeightG: 0}, "", testNow, "")
	require.NoError(t, err)

	_, err = l.UpdateFoodLog(logID, service.FoodLogInput{
		FoodItemID:    &itemID,
		FoodName:      "Lentils",
		LoggedAt:      testNow,
		Serving:       service.ServingSpec{TotalWeightG: 200},
		RescaleTotals: true,
	})
	require.NoError(t, err)
	entry, err := l.FoodLogByID(logID)
	require.NoError(t, err)
	assert.Equal(t, 232.0, entry.Totals.Calories)
	assert.Equal(t, 18.0, entry.Totals.ProteinG)
}

func TestFoodLogValidation(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	_, err := l.CreateFoodLog(service.FoodLogInput{FoodName: "", Serving: service.ServingSpec{TotalWeightG: 10}})
	assert.Error(t, err)
	_, err = l.CreateFoodLog(service.FoodLogInput{FoodName: "x", MealTime: "brunch", Serving: service.ServingSpec{TotalWeightG: 10}})
	assert.Error(t, err)
	_, err = l.CreateFoodLog(service.FoodLogInput{FoodName: "x", Serving: service.ServingSpec{TotalWeightG: 10}, Totals: model.Nutrients{Calories: -5}})
	assert.Error(t, err)
	_, err = l.CreateFoodLog(service.FoodLogInput{FoodName: "x", LogDate: "15/06/2024", Serving: service.ServingSpec{TotalWeightG: 10}})
	assert.Error(t, err)
}

func TestMealTimeFor(t *testing.T) {
	t.Parallel()

	at := func(h, m int) time.Time { return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC) }
	cases := []struct {
		when time.Time
		want model.MealTime
	}{
		{at(4, 59), model.MealLateNight},
		{at(5, 0), model.MealBreakfast},
		{at(10, 59), model.MealBreakfast},
		{at(11, 0), model.MealLunch},
		{at(14, 0), model.MealAfternoonTea},
		{at(17, 0), model.MealDinner},
		{at(20, 59), model.MealDinner},
		{at(21, 0), model.MealLateNight},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, service.MealTimeFor(tc.when), "at %s", tc.when.Format("15:04"))
	}
}

func TestActivityCaloriesUseProfileWeight(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	_, err := l.GetOrCreateProfile()
	require.NoError(t, err)

	id, err := l.CreateActivityLog(service.ActivityLogInput{
		ActivityName: "Jogging",
		DurationMin:  45,
		LoggedAt:     testNow,
		DistanceKm:   ptr(6.2),
		Feeling:      model.FeelingGood,
	})
	require.NoError(t, err)

	entry, err := l.ActivityLogByID(id)
	require.NoError(t, err)
	if entry.CaloriesBurned != 315 {
		t.Fatalf("expected 315 kcal, got %d", entry.CaloriesBurned)
	}
	assert.Equal(t, "cardio", entry.Category)
	assert.Equal(t, model.IntensityMedium, entry.Intensity)
	assert.Equal(t, 6.0, entry.METValue)
	assert.False(t, entry.CaloriesOverridden)
	require.NotNil(t, entry.DistanceKm)
	assert.Equal(t, 6.2, *entry.DistanceKm)
	assert.Nil(t, entry.Steps)
	assert.Equal(t, model.FeelingGood, entry.Feeling)
}

func TestActivityWithoutProfileUsesDefaultWeight(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	id, err := l.CreateActivityLog(service.ActivityLogInput{ActivityName: "Jogging", DurationMin: 45, LoggedAt: testNow})
	require.NoError(t, err)
	entry, err := l.ActivityLogByID(id)
	require.NoError(t, err)
	want := service.WorkoutCalories(6.0, model.IntensityMedium, service.DefaultProfileInput().WeightKg, 45)
	assert.Equal(t, want, entry.CaloriesBurned)
	assert.NotZero(t, entry.CaloriesBurned)

	p, err := l.Profile()
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestActivityOverrideIsStoredVerbatim(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	id, err := l.CreateActivityLog(service.ActivityLogInput{
		ActivityName:     "Rock climbing",
		DurationMin:      60,
		WeightKg:         80,
		CaloriesOverride: ptr(612),
		LoggedAt:         testNow,
	})
	require.NoError(t, err)

	entry, err := l.ActivityLogByID(id)
	require.NoError(t, err)
	assert.Equal(t, 612, entry.CaloriesBurned)
	assert.True(t, entry.CaloriesOverridden)
	assert.Equal(t, "custom", entry.Category)
	assert.Equal(t, service.DefaultMET, entry.METValue)

	affected, err := l.UpdateActivityLog(id, service.ActivityLogInput{ActivityName: "Rock climbing", DurationMin: 60, WeightKg: 80, LoggedAt: testNow})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	entry, err = l.ActivityLogByID(id)
	require.NoError(t, err)
	assert.Equal(t, 320, entry.CaloriesBurned)
	assert.False(t, entry.CaloriesOverridden)

	logs, err := l.QueryActivityLogsByDate("2024-06-15")
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestActivityValidation(t *testing.T) {
	t.Parallel()
	l := newTestLedger(t)

	bad := []service.ActivityLogInput{
		{ActivityName: "", DurationMin: 10},
		{ActivityName: "walking", DurationMin: -1},
		{ActivityName: "walking", Intensity: "extreme"},
		{ActivityName: "walking", Feeling: "meh"},
		{ActivityName: "walking", Steps: ptr(-3)},
		{ActivityName: "walking", CaloriesOverride: ptr(-1)},
	}
	for i, in := range bad {
		if _, err := l.CreateActivityLog(in); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, in)
		}
	}
}
