package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

// ActivityLogInput is one workout or daily activity. METValue defaults to the
// catalog value for ActivityName. Calories are computed from the MET value,
// intensity, duration and WeightKg (the profile weight when zero) unless
// CaloriesOverride is set.
type ActivityLogInput struct {
	LogDate          string
	LoggedAt         time.Time
	Category         string
	ActivityName     string
	Intensity        model.Intensity
	DurationMin      int
	METValue         float64
	WeightKg         float64
	CaloriesOverride *int
	DistanceKm       *float64
	Steps            *int
	Floors           *int
	Feeling          model.Feeling
	Notes            string
}

var activityLogColumns = []string{"log_date", "logged_at", "category", "activity_name", "intensity", "duration_min", "met_value", "calories_burned", "calories_overridden", "distance_km", "steps", "floors", "feeling", "notes"}

const activityLogSelect = `SELECT id, log_date, logged_at, category, activity_name, intensity, duration_min, met_value, calories_burned, calories_overridden, distance_km, steps, floors, feeling, notes, created_at, updated_at FROM activity_logs`

type activityRow struct {
	ActivityLogInput
	calories   int
	overridden bool
}

func (r activityRow) args() []any {
	return []any{r.LogDate, formatTime(r.LoggedAt), r.Category, r.ActivityName, string(r.Intensity), r.DurationMin, r.METValue, r.calories, r.overridden,
		nullableFloat(r.DistanceKm), nullableInt(r.Steps), nullableInt(r.Floors), string(r.Feeling), r.Notes}
}

func (l *Ledger) CreateActivityLog(in ActivityLogInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	row, err := l.normalizeActivityInput(in)
	if err != nil {
		return 0, err
	}
	stamp := formatTime(l.now())
	cols := append(append([]string{}, activityLogColumns...), "created_at", "updated_at")
	args := append(row.args(), stamp, stamp)
	res, err := l.sqldb.Exec(`INSERT INTO activity_logs(`+strings.Join(cols, ", ")+`) VALUES(`+placeholders(len(cols))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("create activity log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve activity log id: %w", err)
	}
	return id, nil
}

func (l *Ledger) UpdateActivityLog(id int64, in ActivityLogInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("activity log id must be > 0")
	}
	row, err := l.normalizeActivityInput(in)
	if err != nil {
		return 0, err
	}
	cols := append(append([]string{}, activityLogColumns...), "updated_at")
	args := append(row.args(), formatTime(l.now()), id)
	res, err := l.sqldb.Exec(`UPDATE activity_logs SET `+assignments(cols)+` WHERE id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update activity log %d: %w", id, err)
	}
	return rowsAffected(res)
}

func (l *Ledger) DeleteActivityLog(id int64) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("activity log id must be > 0")
	}
	res, err := l.sqldb.Exec(`DELETE FROM activity_logs WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete activity log %d: %w", id, err)
	}
	return rowsAffected(res)
}

func (l *Ledger) ActivityLogByID(id int64) (*model.ActivityLog, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	entry, err := scanActivityLog(l.sqldb.QueryRow(activityLogSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity log %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load activity log %d: %w", id, err)
	}
	return entry, nil
}

func (l *Ledger) QueryActivityLogsByDate(date string) ([]model.ActivityLog, error) {
	return l.QueryActivityLogsBetween(date, date)
}

func (l *Ledger) QueryActivityLogsBetween(from, to string) ([]model.ActivityLog, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	fromDate, toDate, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := l.sqldb.Query(activityLogSelect+` WHERE log_date >= ? AND log_date <= ? ORDER BY log_date ASC, logged_at ASC, id ASC`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query activity logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.ActivityLog, 0)
	for rows.Next() {
		entry, err := scanActivityLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity log: %w", err)
		}
		logs = append(logs, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity logs: %w", err)
	}
	return logs, nil
}

func ValidFeeling(f model.Feeling) bool {
	switch f {
	case "", model.FeelingGreat, model.FeelingGood, model.FeelingOkay, model.FeelingTired, model.FeelingExhausted:
		return true
	}
	return false
}

func (l *Ledger) normalizeActivityInput(in ActivityLogInput) (activityRow, error) {
	in.ActivityName = strings.TrimSpace(in.ActivityName)
	if in.ActivityName == "" {
		return activityRow{}, fmt.Errorf("activity name is required")
	}
	if err := validateNonNegativeInt("duration", in.DurationMin); err != nil {
		return activityRow{}, err
	}
	in.Intensity = model.Intensity(normalizeName(string(in.Intensity)))
	if in.Intensity == "" {
		in.Intensity = model.IntensityMedium
	}
	if !ValidIntensity(in.Intensity) {
		return activityRow{}, fmt.Errorf("invalid intensity %q (use low, medium, or high)", in.Intensity)
	}
	in.Feeling = model.Feeling(normalizeName(string(in.Feeling)))
	if !ValidFeeling(in.Feeling) {
		return activityRow{}, fmt.Errorf("invalid feeling %q", in.Feeling)
	}
	if in.DistanceKm != nil {
		if err := validateNonNegativeFloat("distance", *in.DistanceKm); err != nil {
			return activityRow{}, err
		}
	}
	if in.Steps != nil {
		if err := validateNonNegativeInt("steps", *in.Steps); err != nil {
			return activityRow{}, err
		}
	}
	if in.Floors != nil {
		if err := validateNonNegativeInt("floors", *in.Floors); err != nil {
			return activityRow{}, err
		}
	}
	if err := validateNonNegativeFloat("met value", in.METValue); err != nil {
		return activityRow{}, err
	}
	catalog, _ := METFor(in.ActivityName)
	if in.METValue == 0 {
		in.METValue = catalog.MET
	}
	in.Category = normalizeName(in.Category)
	if in.Category == "" {
		in.Category = catalog.Category
	}

	if in.LoggedAt.IsZero() {
		in.LoggedAt = l.now()
	}
	in.LogDate = strings.TrimSpace(in.LogDate)
	if in.LogDate == "" {
		in.LogDate = in.LoggedAt.Format(dateLayout)
	} else {
		d, err := parseDate(in.LogDate)
		if err != nil {
			return activityRow{}, err
		}
		in.LogDate = d.Format(dateLayout)
	}
	in.Notes = strings.TrimSpace(in.Notes)

	row := activityRow{ActivityLogInput: in}
	if in.CaloriesOverride != nil {
		if err := validateNonNegativeInt("calories", *in.CaloriesOverride); err != nil {
			return activityRow{}, err
		}
		row.calories = *in.CaloriesOverride
		row.overridden = true
		return row, nil
	}
	weight := in.WeightKg
	if weight <= 0 {
		p, err := l.GetOrCreateProfile()
		if err != nil {
			return activityRow{}, err
		}
		weight = p.WeightKg
	}
	row.calories = WorkoutCalories(in.METValue, in.Intensity, weight, in.DurationMin)
	return row, nil
}

func scanActivityLog(row rowScanner) (*model.ActivityLog, error) {
	var entry model.ActivityLog
	var distance sql.NullFloat64
	var steps, floors sql.NullInt64
	var intensity, feeling, loggedRaw, createdRaw, updatedRaw string
	if err := row.Scan(&entry.ID, &entry.LogDate, &loggedRaw, &entry.Category, &entry.ActivityName, &intensity, &entry.DurationMin,
		&entry.METValue, &entry.CaloriesBurned, &entry.CaloriesOverridden, &distance, &steps, &floors, &feeling, &entry.Notes,
		&createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	entry.Intensity = model.Intensity(intensity)
	entry.Feeling = model.Feeling(feeling)
	if distance.Valid {
		v := distance.Float64
		entry.DistanceKm = &v
	}
	if steps.Valid {
		v := int(steps.Int64)
		entry.Steps = &v
	}
	if floors.Valid {
		v := int(floors.Int64)
		entry.Floors = &v
	}
	entry.LoggedAt = parseStoredTime(loggedRaw)
	entry.CreatedAt = parseStoredTime(createdRaw)
	entry.UpdatedAt = parseStoredTime(updatedRaw)
	return &entry, nil
}
