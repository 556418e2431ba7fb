package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

// FoodLogInput is one eaten portion. When Baseline is set the totals are
// computed from it and the resolved serving weight; otherwise Totals is
// stored as given.
type FoodLogInput struct {
	FoodItemID *int64
	FoodName   string
	MealTime   model.MealTime
	LoggedAt   time.Time
	LogDate    string
	Serving    ServingSpec
	Baseline   *model.Nutrients
	BaseAmount float64
	Totals     model.Nutrients
	Notes      string
	// RescaleTotals makes UpdateFoodLog derive totals from the stored row
	// scaled to the new total weight, ignoring Totals.
	RescaleTotals bool
}

var foodLogNutrientColumns = nutrientColumns("total_")

func foodLogSelect() string {
	return `SELECT id, food_item_id, food_name, meal_time, log_date, logged_at, serving_type, serving_amount, unit_weight_g, total_weight_g, ` +
		strings.Join(foodLogNutrientColumns, ", ") + `, notes, created_at, updated_at FROM food_logs`
}

var foodLogColumns = func() []string {
	cols := []string{"food_item_id", "food_name", "meal_time", "log_date", "logged_at", "serving_type", "serving_amount", "unit_weight_g", "total_weight_g"}
	cols = append(cols, foodLogNutrientColumns...)
	return append(cols, "notes")
}()

func foodLogArgs(in FoodLogInput) []any {
	var itemID any
	if in.FoodItemID != nil {
		itemID = *in.FoodItemID
	}
	args := []any{itemID, in.FoodName, string(in.MealTime), in.LogDate, formatTime(in.LoggedAt), string(in.Serving.Type), in.Serving.Amount, in.Serving.UnitWeightG, in.Serving.TotalWeightG}
	args = append(args, nutrientArgs(in.Totals)...)
	return append(args, in.Notes)
}

func (l *Ledger) CreateFoodLog(in FoodLogInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	normalized, err := l.normalizeFoodLogInput(in)
	if err != nil {
		return 0, err
	}
	stamp := formatTime(l.now())
	cols := append(append([]string{}, foodLogColumns...), "created_at", "updated_at")
	args := append(foodLogArgs(normalized), stamp, stamp)
	res, err := l.sqldb.Exec(`INSERT INTO food_logs(`+strings.Join(cols, ", ")+`) VALUES(`+placeholders(len(cols))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("create food log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve food log id: %w", err)
	}
	return id, nil
}

func (l *Ledger) UpdateFoodLog(id int64, in FoodLogInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("food log id must be > 0")
	}
	if in.RescaleTotals && in.Baseline == nil {
		rescaled, found, err := l.rescaledFoodLogInput(id, in)
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, nil
		}
		in = rescaled
	}
	normalized, err := l.normalizeFoodLogInput(in)
	if err != nil {
		return 0, err
	}
	cols := append(append([]string{}, foodLogColumns...), "updated_at")
	args := append(foodLogArgs(normalized), formatTime(l.now()), id)
	res, err := l.sqldb.Exec(`UPDATE food_logs SET `+assignments(cols)+` WHERE id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update food log %d: %w", id, err)
	}
	return rowsAffected(res)
}

// rescaledFoodLogInput scales the stored totals of a log to the new serving
// weight. A stored weight of 0 falls back to the linked item's baseline.
func (l *Ledger) rescaledFoodLogInput(id int64, in FoodLogInput) (FoodLogInput, bool, error) {
	current, err := l.FoodLogByID(id)
	if errors.Is(err, ErrNotFound) {
		return in, false, nil
	}
	if err != nil {
		return in, false, err
	}
	serving, err := ResolveServing(in.Serving)
	if err != nil {
		return in, false, err
	}
	switch {
	case current.TotalWeightG > 0:
		in.Totals = rescaleTotals(current.Totals, current.TotalWeightG, serving.TotalWeightG)
	case current.FoodItemID != nil:
		item, err := l.FoodItemByID(*current.FoodItemID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return in, false, err
		}
		if item != nil {
			baseline := item.Nutrients
			in.Baseline = &baseline
			in.BaseAmount = item.BaseAmount
		}
	default:
		in.Totals = current.Totals
	}
	return in, true, nil
}

func (l *Ledger) DeleteFoodLog(id int64) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("food log id must be > 0")
	}
	res, err := l.sqldb.Exec(`DELETE FROM food_logs WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete food log %d: %w", id, err)
	}
	return rowsAffected(res)
}

func (l *Ledger) FoodLogByID(id int64) (*model.FoodLog, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	entry, err := scanFoodLog(l.sqldb.QueryRow(foodLogSelect()+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("food log %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load food log %d: %w", id, err)
	}
	return entry, nil
}

// QueryFoodLogsByDate returns the logs of one local day in eating order.
func (l *Ledger) QueryFoodLogsByDate(date string) ([]model.FoodLog, error) {
	return l.QueryFoodLogsBetween(date, date)
}

// QueryFoodLogsBetween returns logs whose log date falls in [from, to].
func (l *Ledger) QueryFoodLogsBetween(from, to string) ([]model.FoodLog, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	fromDate, toDate, err := dateRange(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := l.sqldb.Query(foodLogSelect()+` WHERE log_date >= ? AND log_date <= ? ORDER BY log_date ASC, logged_at ASC, id ASC`, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query food logs: %w", err)
	}
	defer rows.Close()

	logs := make([]model.FoodLog, 0)
	for rows.Next() {
		entry, err := scanFoodLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food log: %w", err)
		}
		logs = append(logs, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food logs: %w", err)
	}
	return logs, nil
}

// LogFoodItem logs a portion of a stored food item. A serving spec without a
// unit weight uses the item's serving weight.
func (l *Ledger) LogFoodItem(itemID int64, serving ServingSpec, meal model.MealTime, loggedAt time.Time, notes string) (int64, error) {
	item, err := l.FoodItemByID(itemID)
	if err != nil {
		return 0, err
	}
	if serving.UnitWeightG == 0 {
		serving.UnitWeightG = item.ServingWeightG
	}
	if serving.Type == model.ServingTypeServing && serving.UnitWeightG <= 0 {
		return 0, fmt.Errorf("food item %d has no serving weight; log by weight instead", itemID)
	}
	baseline := item.Nutrients
	return l.CreateFoodLog(FoodLogInput{
		FoodItemID: &item.ID,
		FoodName:   item.Name,
		MealTime:   meal,
		LoggedAt:   loggedAt,
		Serving:    serving,
		Baseline:   &baseline,
		BaseAmount: item.BaseAmount,
		Notes:      notes,
	})
}

// MealTimeFor derives the meal slot from the local time of day.
func MealTimeFor(t time.Time) model.MealTime {
	switch h := t.Hour(); {
	case h >= 5 && h < 11:
		return model.MealBreakfast
	case h >= 11 && h < 14:
		return model.MealLunch
	case h >= 14 && h < 17:
		return model.MealAfternoonTea
	case h >= 17 && h < 21:
		return model.MealDinner
	default:
		return model.MealLateNight
	}
}

func ValidMealTime(m model.MealTime) bool {
	switch m {
	case model.MealBreakfast, model.MealLunch, model.MealAfternoonTea, model.MealDinner, model.MealLateNight:
		return true
	}
	return false
}

func (l *Ledger) normalizeFoodLogInput(in FoodLogInput) (FoodLogInput, error) {
	in.FoodName = strings.TrimSpace(in.FoodName)
	if in.FoodName == "" {
		return FoodLogInput{}, fmt.Errorf("food name is required")
	}
	if in.FoodItemID != nil && *in.FoodItemID <= 0 {
		return FoodLogInput{}, fmt.Errorf("food item id must be > 0")
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
			return FoodLogInput{}, err
		}
		in.LogDate = d.Format(dateLayout)
	}
	in.MealTime = model.MealTime(normalizeName(string(in.MealTime)))
	if in.MealTime == "" {
		in.MealTime = MealTimeFor(in.LoggedAt)
	}
	if !ValidMealTime(in.MealTime) {
		return FoodLogInput{}, fmt.Errorf("invalid meal time %q", in.MealTime)
	}
	serving, err := ResolveServing(in.Serving)
	if err != nil {
		return FoodLogInput{}, err
	}
	in.Serving = serving
	if in.Baseline != nil {
		base := in.BaseAmount
		if base == 0 {
			base = DefaultBaseAmount
		}
		in.Totals = ScaleNutrientsPer(*in.Baseline, base, in.Serving.TotalWeightG)
	}
	if err := in.Totals.Validate(); err != nil {
		return FoodLogInput{}, err
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return in, nil
}

func scanFoodLog(row rowScanner) (*model.FoodLog, error) {
	var entry model.FoodLog
	var itemID sql.NullInt64
	var meal, servingType, loggedRaw, createdRaw, updatedRaw string
	dest := []any{&entry.ID, &itemID, &entry.FoodName, &meal, &entry.LogDate, &loggedRaw, &servingType, &entry.ServingAmount, &entry.UnitWeightG, &entry.TotalWeightG}
	dest = append(dest, nutrientDest(&entry.Totals)...)
	dest = append(dest, &entry.Notes, &createdRaw, &updatedRaw)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if itemID.Valid {
		v := itemID.Int64
		entry.FoodItemID = &v
	}
	entry.MealTime = model.MealTime(meal)
	entry.ServingType = model.ServingType(servingType)
	entry.LoggedAt = parseStoredTime(loggedRaw)
	entry.CreatedAt = parseStoredTime(createdRaw)
	entry.UpdatedAt = parseStoredTime(updatedRaw)
	return &entry, nil
}

func dateRange(from, to string) (string, string, error) {
	fromDate, err := parseDate(from)
	if err != nil {
		return "", "", err
	}
	toDate, err := parseDate(to)
	if err != nil {
		return "", "", err
	}
	if toDate.Before(fromDate) {
		return "", "", fmt.Errorf("date range end %s is before start %s", to, from)
	}
	return fromDate.Format(dateLayout), toDate.Format(dateLayout), nil
}
