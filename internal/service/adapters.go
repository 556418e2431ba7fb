package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

// NutrientBaseline is a candidate food returned by an external source, with
// nutrients per 100 g.
type NutrientBaseline struct {
	Name           string
	Brand          string
	Barcode        string
	Per100g        model.Nutrients
	ServingWeightG float64
	Source         string
}

type BarcodeAdapter interface {
	Lookup(ctx context.Context, barcode string) (NutrientBaseline, error)
}

// EstimateRequest carries a free-text description, a photo, or both.
type EstimateRequest struct {
	Text      string
	Image     []byte
	ImageMIME string
}

type NutritionEstimator interface {
	Estimate(ctx context.Context, req EstimateRequest, pc ProfileContext) (*NutrientBaseline, error)
}

type Suggestion struct {
	Title    string
	Body     string
	Calories int
}

type ChatMessage struct {
	Role    string
	Content string
}

type CoachingAdapter interface {
	SuggestRecipe(ctx context.Context, remainingKcal int, pc ProfileContext) (Suggestion, error)
	SuggestWorkout(ctx context.Context, pc ProfileContext, remainingKcal int) (Suggestion, error)
	Chat(ctx context.Context, history []ChatMessage, message string, pc ProfileContext) (string, error)
}

type Urgency string

const (
	UrgencyNone    Urgency = ""
	UrgencyLow     Urgency = "low"
	UrgencyMedium  Urgency = "medium"
	UrgencyHigh    Urgency = "high"
	UrgencyOverdue Urgency = "overdue"
)

// ProfileContext is a value snapshot of the profile handed to adapters.
// Adapters never see the store.
type ProfileContext struct {
	Age                int
	Gender             model.Gender
	HeightCm           float64
	WeightKg           float64
	ActivityLevel      model.ActivityLevel
	Goal               model.Goal
	DailyCalorieTarget int
	TargetWeightKg     float64
	TargetDate         string
	DaysToTarget       int
	Urgency            Urgency
}

func NewProfileContext(p model.Profile, today time.Time) ProfileContext {
	pc := ProfileContext{
		Gender:             p.Gender,
		HeightCm:           p.HeightCm,
		WeightKg:           p.WeightKg,
		ActivityLevel:      p.ActivityLevel,
		Goal:               p.Goal,
		DailyCalorieTarget: p.DailyCalorieTarget,
		TargetDate:         p.TargetDate,
	}
	if birth, err := time.ParseInLocation(dateLayout, p.BirthDate, today.Location()); err == nil {
		pc.Age = Age(birth, today)
	}
	if p.TargetWeightKg != nil {
		pc.TargetWeightKg = *p.TargetWeightKg
	}
	if target, err := time.ParseInLocation(dateLayout, p.TargetDate, today.Location()); err == nil {
		pc.DaysToTarget = int(math.Round(target.Sub(beginningOfDay(today)).Hours() / 24))
		pc.Urgency = urgencyFor(pc.DaysToTarget)
	}
	return pc
}

func urgencyFor(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 14:
		return UrgencyHigh
	case days <= 60:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// LookupBarcode asks the adapter for a baseline. Failures are logged and
// reported as ok=false.
func LookupBarcode(ctx context.Context, adapter BarcodeAdapter, barcode string) (NutrientBaseline, bool) {
	if adapter == nil {
		return NutrientBaseline{}, false
	}
	b, err := adapter.Lookup(ctx, barcode)
	if err != nil {
		log.Printf("[barcode] lookup %s: %v", barcode, fmt.Errorf("%w: %v", ErrAdapter, err))
		return NutrientBaseline{}, false
	}
	if b.Barcode == "" {
		b.Barcode = barcode
	}
	return b, true
}

// EstimateNutrition asks the estimator for a baseline. A failed or empty
// estimate is reported as ok=false.
func EstimateNutrition(ctx context.Context, est NutritionEstimator, req EstimateRequest, pc ProfileContext) (NutrientBaseline, bool) {
	if est == nil {
		return NutrientBaseline{}, false
	}
	b, err := est.Estimate(ctx, req, pc)
	if err != nil {
		log.Printf("[estimate] %v", fmt.Errorf("%w: %v", ErrAdapter, err))
		return NutrientBaseline{}, false
	}
	if b == nil {
		return NutrientBaseline{}, false
	}
	if b.Source == "" {
		b.Source = SourceAI
	}
	return *b, true
}
