package model

import (
	"fmt"
	"math"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary        ActivityLevel = "sedentary"
	ActivityLightlyActive    ActivityLevel = "lightly_active"
	ActivityModeratelyActive ActivityLevel = "moderately_active"
	ActivityVeryActive       ActivityLevel = "very_active"
	ActivityExtraActive      ActivityLevel = "extra_active"
)

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalMaintain   Goal = "maintain"
	GoalGainWeight Goal = "gain_weight"
	GoalRecomp     Goal = "recomp"
	GoalBloodSugar Goal = "blood_sugar"
)

type MealTime string

const (
	MealBreakfast    MealTime = "breakfast"
	MealLunch        MealTime = "lunch"
	MealAfternoonTea MealTime = "afternoon_tea"
	MealDinner       MealTime = "dinner"
	MealLateNight    MealTime = "late_night"
)

type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

type Feeling string

const (
	FeelingGreat     Feeling = "great"
	FeelingGood      Feeling = "good"
	FeelingOkay      Feeling = "okay"
	FeelingTired     Feeling = "tired"
	FeelingExhausted Feeling = "exhausted"
)

type ServingType string

const (
	ServingTypeServing ServingType = "serving"
	ServingTypeWeight  ServingType = "weight"
)

// Nutrients is the full nutrient vector shared by food item baselines and
// food log totals. Missing values are zero.
type Nutrients struct {
	Calories      float64 `json:"calories"`
	ProteinG      float64 `json:"protein_g"`
	FatG          float64 `json:"fat_g"`
	SaturatedFatG float64 `json:"saturated_fat_g"`
	TransFatG     float64 `json:"trans_fat_g"`
	CarbsG        float64 `json:"carbs_g"`
	SugarG        float64 `json:"sugar_g"`
	FiberG        float64 `json:"fiber_g"`
	SodiumMg      float64 `json:"sodium_mg"`
	CholesterolMg float64 `json:"cholesterol_mg"`
	MagnesiumMg   float64 `json:"magnesium_mg"`
	ZincMg        float64 `json:"zinc_mg"`
	IronMg        float64 `json:"iron_mg"`
}

// Map applies fn to every field and returns the result.
func (n Nutrients) Map(fn func(float64) float64) Nutrients {
	return Nutrients{
		Calories:      fn(n.Calories),
		ProteinG:      fn(n.ProteinG),
		FatG:          fn(n.FatG),
		SaturatedFatG: fn(n.SaturatedFatG),
		TransFatG:     fn(n.TransFatG),
		CarbsG:        fn(n.CarbsG),
		SugarG:        fn(n.SugarG),
		FiberG:        fn(n.FiberG),
		SodiumMg:      fn(n.SodiumMg),
		CholesterolMg: fn(n.CholesterolMg),
		MagnesiumMg:   fn(n.MagnesiumMg),
		ZincMg:        fn(n.ZincMg),
		IronMg:        fn(n.IronMg),
	}
}

func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories:      n.Calories + o.Calories,
		ProteinG:      n.ProteinG + o.ProteinG,
		FatG:          n.FatG + o.FatG,
		SaturatedFatG: n.SaturatedFatG + o.SaturatedFatG,
		TransFatG:     n.TransFatG + o.TransFatG,
		CarbsG:        n.CarbsG + o.CarbsG,
		SugarG:        n.SugarG + o.SugarG,
		FiberG:        n.FiberG + o.FiberG,
		SodiumMg:      n.SodiumMg + o.SodiumMg,
		CholesterolMg: n.CholesterolMg + o.CholesterolMg,
		MagnesiumMg:   n.MagnesiumMg + o.MagnesiumMg,
		ZincMg:        n.ZincMg + o.ZincMg,
		IronMg:        n.IronMg + o.IronMg,
	}
}

func (n Nutrients) Scale(factor float64) Nutrients {
	return n.Map(func(v float64) float64 { return v * factor })
}

// Round rounds every field to the nearest whole unit.
func (n Nutrients) Round() Nutrients {
	return n.Map(math.Round)
}

// Validate rejects negative and non-finite values.
func (n Nutrients) Validate() error {
	for _, f := range n.Fields() {
		if math.IsNaN(f.Value) || math.IsInf(f.Value, 0) {
			return fmt.Errorf("%s must be a finite number", f.Name)
		}
		if f.Value < 0 {
			return fmt.Errorf("%s must be >= 0", f.Name)
		}
	}
	return nil
}

// Fields lists the vector as name/value pairs in column order.
func (n Nutrients) Fields() []NutrientField {
	return []NutrientField{
		{"calories", n.Calories},
		{"protein_g", n.ProteinG},
		{"fat_g", n.FatG},
		{"saturated_fat_g", n.SaturatedFatG},
		{"trans_fat_g", n.TransFatG},
		{"carbs_g", n.CarbsG},
		{"sugar_g", n.SugarG},
		{"fiber_g", n.FiberG},
		{"sodium_mg", n.SodiumMg},
		{"cholesterol_mg", n.CholesterolMg},
		{"magnesium_mg", n.MagnesiumMg},
		{"zinc_mg", n.ZincMg},
		{"iron_mg", n.IronMg},
	}
}

type NutrientField struct {
	Name  string
	Value float64
}

type Profile struct {
	ID                 int64
	InstallationID     string
	Gender             Gender
	BirthDate          string
	HeightCm           float64
	WeightKg           float64
	BodyFatPct         *float64
	TargetWeightKg     *float64
	TargetBodyFatPct   *float64
	TargetDate         string
	ActivityLevel      ActivityLevel
	Goal               Goal
	DailyCalorieTarget int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type FoodItem struct {
	ID             int64
	Name           string
	Barcode        string
	Brand          string
	BaseAmount     float64
	BaseUnit       string
	ServingWeightG float64
	Source         string
	Nutrients      Nutrients
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type FoodLog struct {
	ID            int64
	FoodItemID    *int64
	FoodName      string
	MealTime      MealTime
	LogDate       string
	LoggedAt      time.Time
	ServingType   ServingType
	ServingAmount float64
	UnitWeightG   float64
	TotalWeightG  float64
	Totals        Nutrients
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ActivityLog struct {
	ID                 int64
	LogDate            string
	LoggedAt           time.Time
	Category           string
	ActivityName       string
	Intensity          Intensity
	DurationMin        int
	METValue           float64
	CaloriesBurned     int
	CaloriesOverridden bool
	DistanceKm         *float64
	Steps              *int
	Floors             *int
	Feeling            Feeling
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
