package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nutrilog/nutrilog/internal/model"
)

type ProfileInput struct {
	Gender           model.Gender
	BirthDate        string
	HeightCm         float64
	WeightKg         float64
	BodyFatPct       *float64
	TargetWeightKg   *float64
	TargetBodyFatPct *float64
	TargetDate       string
	ActivityLevel    model.ActivityLevel
	Goal             model.Goal
}

// DefaultProfileInput is the profile created on first use.
func DefaultProfileInput() ProfileInput {
	return ProfileInput{
		Gender:        model.GenderMale,
		BirthDate:     "1990-01-01",
		HeightCm:      170,
		WeightKg:      70,
		ActivityLevel: model.ActivitySedentary,
		Goal:          model.GoalMaintain,
	}
}

// InputFromProfile copies the editable fields of p.
func InputFromProfile(p model.Profile) ProfileInput {
	return ProfileInput{
		Gender:           p.Gender,
		BirthDate:        p.BirthDate,
		HeightCm:         p.HeightCm,
		WeightKg:         p.WeightKg,
		BodyFatPct:       p.BodyFatPct,
		TargetWeightKg:   p.TargetWeightKg,
		TargetBodyFatPct: p.TargetBodyFatPct,
		TargetDate:       p.TargetDate,
		ActivityLevel:    p.ActivityLevel,
		Goal:             p.Goal,
	}
}

const profileColumns = `id, installation_id, gender, birth_date, height_cm, weight_kg, body_fat_pct, target_weight_kg, target_body_fat_pct, target_date, activity_level, goal, daily_calorie_target, created_at, updated_at`

// Profile returns the stored profile, or nil when none exists yet.
func (l *Ledger) Profile() (*model.Profile, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	var p model.Profile
	var bodyFat, targetWeight, targetBodyFat sql.NullFloat64
	var gender, level, goal, createdRaw, updatedRaw string
	err := l.sqldb.QueryRow(`SELECT `+profileColumns+` FROM user_profiles WHERE id = 1`).Scan(
		&p.ID, &p.InstallationID, &gender, &p.BirthDate, &p.HeightCm, &p.WeightKg,
		&bodyFat, &targetWeight, &targetBodyFat, &p.TargetDate, &level, &goal,
		&p.DailyCalorieTarget, &createdRaw, &updatedRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	p.Gender = model.Gender(gender)
	p.ActivityLevel = model.ActivityLevel(level)
	p.Goal = model.Goal(goal)
	if bodyFat.Valid {
		v := bodyFat.Float64
		p.BodyFatPct = &v
	}
	if targetWeight.Valid {
		v := targetWeight.Float64
		p.TargetWeightKg = &v
	}
	if targetBodyFat.Valid {
		v := targetBodyFat.Float64
		p.TargetBodyFatPct = &v
	}
	p.CreatedAt = parseStoredTime(createdRaw)
	p.UpdatedAt = parseStoredTime(updatedRaw)
	return &p, nil
}

// GetOrCreateProfile returns the profile, creating the default one on first use.
func (l *Ledger) GetOrCreateProfile() (*model.Profile, error) {
	p, err := l.Profile()
	if err != nil || p != nil {
		return p, err
	}
	return l.UpsertProfile(DefaultProfileInput())
}

// UpsertProfile validates in, recomputes the daily calorie target and
// writes the single profile row. The installation id and creation time of
// an existing row are kept.
func (l *Ledger) UpsertProfile(in ProfileInput) (*model.Profile, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	now := l.now()
	normalized, err := normalizeProfileInput(in, now)
	if err != nil {
		return nil, err
	}
	target := ComputeCalorieTarget(model.Profile{
		Gender:        normalized.Gender,
		BirthDate:     normalized.BirthDate,
		HeightCm:      normalized.HeightCm,
		WeightKg:      normalized.WeightKg,
		ActivityLevel: normalized.ActivityLevel,
		Goal:          normalized.Goal,
	}, now)

	stamp := formatTime(now)
	_, err = l.sqldb.Exec(`
INSERT INTO user_profiles(id, installation_id, gender, birth_date, height_cm, weight_kg, body_fat_pct, target_weight_kg, target_body_fat_pct, target_date, activity_level, goal, daily_calorie_target, created_at, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  gender = excluded.gender,
  birth_date = excluded.birth_date,
  height_cm = excluded.height_cm,
  weight_kg = excluded.weight_kg,
  body_fat_pct = excluded.body_fat_pct,
  target_weight_kg = excluded.target_weight_kg,
  target_body_fat_pct = excluded.target_body_fat_pct,
  target_date = excluded.target_date,
  activity_level = excluded.activity_level,
  goal = excluded.goal,
  daily_calorie_target = excluded.daily_calorie_target,
  updated_at = excluded.updated_at
`, uuid.NewString(), string(normalized.Gender), normalized.BirthDate, normalized.HeightCm, normalized.WeightKg,
		nullableFloat(normalized.BodyFatPct), nullableFloat(normalized.TargetWeightKg), nullableFloat(normalized.TargetBodyFatPct),
		normalized.TargetDate, string(normalized.ActivityLevel), string(normalized.Goal), target, stamp, stamp)
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return l.Profile()
}

func normalizeProfileInput(in ProfileInput, now time.Time) (ProfileInput, error) {
	in.Gender = model.Gender(normalizeName(string(in.Gender)))
	if in.Gender != model.GenderMale && in.Gender != model.GenderFemale {
		return ProfileInput{}, fmt.Errorf("invalid gender %q (use male or female)", in.Gender)
	}
	birth, err := parseDate(in.BirthDate)
	if err != nil {
		return ProfileInput{}, fmt.Errorf("birth date: %w", err)
	}
	if birth.After(now) {
		return ProfileInput{}, fmt.Errorf("birth date cannot be in the future")
	}
	in.BirthDate = birth.Format(dateLayout)
	if in.HeightCm <= 0 || !usable(in.HeightCm) {
		return ProfileInput{}, fmt.Errorf("height must be > 0")
	}
	if in.WeightKg <= 0 || !usable(in.WeightKg) {
		return ProfileInput{}, fmt.Errorf("weight must be > 0")
	}
	if err := validatePercent("body fat", in.BodyFatPct); err != nil {
		return ProfileInput{}, err
	}
	if err := validatePercent("target body fat", in.TargetBodyFatPct); err != nil {
		return ProfileInput{}, err
	}
	if in.TargetWeightKg != nil && *in.TargetWeightKg <= 0 {
		return ProfileInput{}, fmt.Errorf("target weight must be > 0")
	}
	in.TargetDate = strings.TrimSpace(in.TargetDate)
	if in.TargetDate != "" {
		target, err := parseDate(in.TargetDate)
		if err != nil {
			return ProfileInput{}, fmt.Errorf("target date: %w", err)
		}
		in.TargetDate = target.Format(dateLayout)
	}
	in.ActivityLevel = model.ActivityLevel(normalizeName(string(in.ActivityLevel)))
	if !ValidActivityLevel(in.ActivityLevel) {
		return ProfileInput{}, fmt.Errorf("invalid activity level %q", in.ActivityLevel)
	}
	in.Goal = model.Goal(normalizeName(string(in.Goal)))
	if !ValidGoal(in.Goal) {
		return ProfileInput{}, fmt.Errorf("invalid goal %q", in.Goal)
	}
	return in, nil
}

func validatePercent(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 100 || !usable(*v) {
		return fmt.Errorf("%s must be between 0 and 100", name)
	}
	return nil
}
