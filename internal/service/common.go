package service

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/model"
)

const dateLayout = "2006-01-02"

func validateNonNegativeInt(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func validateNonNegativeFloat(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%s must be a finite number", name)
	}
	if value < 0 {
		return fmt.Errorf("%s must be >= 0", name)
	}
	return nil
}

func normalizeName(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// parseStoredTime accepts RFC3339 and the sqlite CURRENT_TIMESTAMP layout.
func parseStoredTime(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

// nutrientColumns returns the nutrient column names in Nutrients.Fields order.
func nutrientColumns(prefix string) []string {
	fields := model.Nutrients{}.Fields()
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		cols = append(cols, prefix+f.Name)
	}
	return cols
}

func nutrientArgs(n model.Nutrients) []any {
	fields := n.Fields()
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f.Value)
	}
	return args
}

func nutrientDest(n *model.Nutrients) []any {
	return []any{
		&n.Calories, &n.ProteinG, &n.FatG, &n.SaturatedFatG, &n.TransFatG,
		&n.CarbsG, &n.SugarG, &n.FiberG, &n.SodiumMg, &n.CholesterolMg,
		&n.MagnesiumMg, &n.ZincMg, &n.IronMg,
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func assignments(cols []string) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, c+" = ?")
	}
	return strings.Join(parts, ", ")
}

func rowsAffected(res sql.Result) (int64, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return affected, nil
}
