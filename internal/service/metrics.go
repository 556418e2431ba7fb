package service

import (
	"math"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

var activityMultipliers = map[model.ActivityLevel]float64{
	model.ActivitySedentary:        1.2,
	model.ActivityLightlyActive:    1.375,
	model.ActivityModeratelyActive: 1.55,
	model.ActivityVeryActive:       1.725,
	model.ActivityExtraActive:      1.9,
}

var intensityMultipliers = map[model.Intensity]float64{
	model.IntensityLow:    0.8,
	model.IntensityMedium: 1.0,
	model.IntensityHigh:   1.2,
}

var goalAdjustments = map[model.Goal]float64{
	model.GoalLoseWeight: -500,
	model.GoalMaintain:   0,
	model.GoalGainWeight: 300,
	model.GoalRecomp:     0,
	model.GoalBloodSugar: 0,
}

// Age returns whole years between birthDate and today. A birth date after
// today yields 0.
func Age(birthDate, today time.Time) int {
	if birthDate.IsZero() || today.Before(birthDate) {
		return 0
	}
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() || (today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(weightKg, heightCm float64, age int, gender model.Gender) float64 {
	if !usable(weightKg) || !usable(heightCm) || weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == model.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales bmr by the activity multiplier. Unknown levels fall back to
// sedentary.
func TDEE(bmr float64, level model.ActivityLevel) float64 {
	if !usable(bmr) || bmr <= 0 {
		return 0
	}
	mult, ok := activityMultipliers[level]
	if !ok {
		mult = activityMultipliers[model.ActivitySedentary]
	}
	return bmr * mult
}

func CalorieTarget(tdee float64, goal model.Goal) int {
	if !usable(tdee) || tdee <= 0 {
		return 0
	}
	target := math.Round(tdee + goalAdjustments[goal])
	if target < 0 {
		return 0
	}
	return int(target)
}

// WorkoutCalories is round(MET x intensity x kg x hours).
func WorkoutCalories(metValue float64, intensity model.Intensity, weightKg float64, durationMinutes int) int {
	if !usable(metValue) || !usable(weightKg) || metValue <= 0 || weightKg <= 0 || durationMinutes <= 0 {
		return 0
	}
	mult, ok := intensityMultipliers[intensity]
	if !ok {
		mult = intensityMultipliers[model.IntensityMedium]
	}
	return int(math.Round(metValue * mult * weightKg * float64(durationMinutes) / 60))
}

// ComputeCalorieTarget runs the profile through age, BMR, TDEE and the goal
// adjustment.
func ComputeCalorieTarget(p model.Profile, today time.Time) int {
	birth, err := time.ParseInLocation("2006-01-02", p.BirthDate, today.Location())
	if err != nil {
		birth = time.Time{}
	}
	bmr := BMR(p.WeightKg, p.HeightCm, Age(birth, today), p.Gender)
	return CalorieTarget(TDEE(bmr, p.ActivityLevel), p.Goal)
}

func ValidActivityLevel(level model.ActivityLevel) bool {
	_, ok := activityMultipliers[level]
	return ok
}

func ValidGoal(goal model.Goal) bool {
	_, ok := goalAdjustments[goal]
	return ok
}

func ValidIntensity(intensity model.Intensity) bool {
	_, ok := intensityMultipliers[intensity]
	return ok
}
