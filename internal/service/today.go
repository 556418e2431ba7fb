package service

import (
	"time"

	"github.com/nutrilog/nutrilog/internal/locale"
	"github.com/nutrilog/nutrilog/internal/model"
)

type DailySummary struct {
	Date              string              `json:"date"`
	CaloriesIn        int                 `json:"calories_in"`
	CaloriesOut       int                 `json:"calories_out"`
	NetCalories       int                 `json:"net_calories"`
	ProteinG          float64             `json:"protein_g"`
	CarbsG            float64             `json:"carbs_g"`
	FatG              float64             `json:"fat_g"`
	SodiumMg          float64             `json:"sodium_mg"`
	CalorieTarget     int                 `json:"calorie_target,omitempty"`
	RemainingCalories int                 `json:"remaining_calories"`
	HasProfile        bool                `json:"has_profile"`
	FoodLogs          []model.FoodLog     `json:"food_logs"`
	ActivityLogs      []model.ActivityLog `json:"activity_logs"`
}

// DailySummary returns the day's totals and entries. The log slices are
// never nil.
func (l *Ledger) DailySummary(date time.Time) (*DailySummary, error) {
	buckets, err := l.History(PeriodDay, date, locale.Default())
	if err != nil {
		return nil, err
	}
	day := buckets[0]
	summary := &DailySummary{
		Date:        day.From,
		CaloriesIn:  day.CaloriesIn,
		CaloriesOut: day.CaloriesOut,
		NetCalories: day.CaloriesIn - day.CaloriesOut,
		ProteinG:    day.ProteinG,
		CarbsG:      day.CarbsG,
		FatG:        day.FatG,
		SodiumMg:    day.SodiumMg,
	}
	if summary.FoodLogs, err = l.QueryFoodLogsByDate(day.From); err != nil {
		return nil, err
	}
	if summary.ActivityLogs, err = l.QueryActivityLogsByDate(day.From); err != nil {
		return nil, err
	}

	profile, err := l.Profile()
	if err != nil {
		return nil, err
	}
	if profile != nil {
		summary.HasProfile = true
		summary.CalorieTarget = profile.DailyCalorieTarget
		summary.RemainingCalories = profile.DailyCalorieTarget - summary.CaloriesIn + summary.CaloriesOut
	}
	return summary, nil
}

// RemainingCalories is target - intake + burned for the day. Without a
// profile the target is 0.
func (l *Ledger) RemainingCalories(date time.Time) (int, error) {
	buckets, err := l.History(PeriodDay, date, locale.Default())
	if err != nil {
		return 0, err
	}
	profile, err := l.Profile()
	if err != nil {
		return 0, err
	}
	target := 0
	if profile != nil {
		target = profile.DailyCalorieTarget
	}
	return target - buckets[0].CaloriesIn + buckets[0].CaloriesOut, nil
}
