package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrSchema marks a failure to create the base tables. Callers must not use
// the store after seeing it.
var ErrSchema = errors.New("create ledger schema")

const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  installation_id TEXT NOT NULL,
  gender TEXT NOT NULL CHECK(gender IN ('male', 'female')),
  birth_date TEXT NOT NULL,
  height_cm REAL NOT NULL CHECK(height_cm > 0),
  weight_kg REAL NOT NULL CHECK(weight_kg > 0),
  body_fat_pct REAL CHECK(body_fat_pct >= 0 AND body_fat_pct <= 100),
  target_weight_kg REAL CHECK(target_weight_kg > 0),
  target_body_fat_pct REAL CHECK(target_body_fat_pct >= 0 AND target_body_fat_pct <= 100),
  activity_level TEXT NOT NULL,
  goal TEXT NOT NULL,
  daily_calorie_target INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS food_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  barcode TEXT NOT NULL DEFAULT '',
  brand TEXT NOT NULL DEFAULT '',
  base_amount REAL NOT NULL DEFAULT 100 CHECK(base_amount > 0),
  base_unit TEXT NOT NULL DEFAULT 'g',
  calories REAL NOT NULL CHECK(calories >= 0),
  protein_g REAL NOT NULL DEFAULT 0 CHECK(protein_g >= 0),
  fat_g REAL NOT NULL DEFAULT 0 CHECK(fat_g >= 0),
  carbs_g REAL NOT NULL DEFAULT 0 CHECK(carbs_g >= 0),
  sodium_mg REAL NOT NULL DEFAULT 0 CHECK(sodium_mg >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_food_items_barcode ON food_items(barcode);

CREATE TABLE IF NOT EXISTS food_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  food_item_id INTEGER REFERENCES food_items(id) ON DELETE SET NULL,
  food_name TEXT NOT NULL,
  meal_time TEXT NOT NULL,
  log_date TEXT NOT NULL,
  logged_at DATETIME NOT NULL,
  serving_type TEXT NOT NULL DEFAULT 'weight' CHECK(serving_type IN ('serving', 'weight')),
  serving_amount REAL NOT NULL DEFAULT 0 CHECK(serving_amount >= 0),
  unit_weight_g REAL NOT NULL DEFAULT 0 CHECK(unit_weight_g >= 0),
  total_weight_g REAL NOT NULL DEFAULT 0 CHECK(total_weight_g >= 0),
  total_calories REAL NOT NULL DEFAULT 0 CHECK(total_calories >= 0),
  total_protein_g REAL NOT NULL DEFAULT 0 CHECK(total_protein_g >= 0),
  total_fat_g REAL NOT NULL DEFAULT 0 CHECK(total_fat_g >= 0),
  total_carbs_g REAL NOT NULL DEFAULT 0 CHECK(total_carbs_g >= 0),
  total_sodium_mg REAL NOT NULL DEFAULT 0 CHECK(total_sodium_mg >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_food_logs_log_date ON food_logs(log_date);

CREATE TABLE IF NOT EXISTS activity_logs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  log_date TEXT NOT NULL,
  logged_at DATETIME NOT NULL,
  category TEXT NOT NULL,
  activity_name TEXT NOT NULL,
  intensity TEXT NOT NULL CHECK(intensity IN ('low', 'medium', 'high')),
  duration_min INTEGER NOT NULL CHECK(duration_min >= 0),
  calories_burned INTEGER NOT NULL CHECK(calories_burned >= 0),
  distance_km REAL CHECK(distance_km >= 0),
  steps INTEGER CHECK(steps >= 0),
  floors INTEGER CHECK(floors >= 0),
  feeling TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_activity_logs_log_date ON activity_logs(log_date);

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

type columnMigration struct {
	table      string
	column     string
	definition string
}

// Additive only. Never reorder or remove entries; append new columns at the end.
var columnMigrations = []columnMigration{
	{"user_profiles", "target_date", "TEXT NOT NULL DEFAULT ''"},

	{"food_items", "saturated_fat_g", "REAL NOT NULL DEFAULT 0 CHECK(saturated_fat_g >= 0)"},
	{"food_items", "trans_fat_g", "REAL NOT NULL DEFAULT 0 CHECK(trans_fat_g >= 0)"},
	{"food_items", "sugar_g", "REAL NOT NULL DEFAULT 0 CHECK(sugar_g >= 0)"},
	{"food_items", "fiber_g", "REAL NOT NULL DEFAULT 0 CHECK(fiber_g >= 0)"},
	{"food_items", "cholesterol_mg", "REAL NOT NULL DEFAULT 0 CHECK(cholesterol_mg >= 0)"},
	{"food_items", "magnesium_mg", "REAL NOT NULL DEFAULT 0 CHECK(magnesium_mg >= 0)"},
	{"food_items", "zinc_mg", "REAL NOT NULL DEFAULT 0 CHECK(zinc_mg >= 0)"},
	{"food_items", "iron_mg", "REAL NOT NULL DEFAULT 0 CHECK(iron_mg >= 0)"},
	{"food_items", "serving_weight_g", "REAL NOT NULL DEFAULT 0 CHECK(serving_weight_g >= 0)"},
	{"food_items", "source", "TEXT NOT NULL DEFAULT 'manual'"},

	{"food_logs", "total_saturated_fat_g", "REAL NOT NULL DEFAULT 0 CHECK(total_saturated_fat_g >= 0)"},
	{"food_logs", "total_trans_fat_g", "REAL NOT NULL DEFAULT 0 CHECK(total_trans_fat_g >= 0)"},
	{"food_logs", "total_sugar_g", "REAL NOT NULL DEFAULT 0 CHECK(total_sugar_g >= 0)"},
	{"food_logs", "total_fiber_g", "REAL NOT NULL DEFAULT 0 CHECK(total_fiber_g >= 0)"},
	{"food_logs", "total_cholesterol_mg", "REAL NOT NULL DEFAULT 0 CHECK(total_cholesterol_mg >= 0)"},
	{"food_logs", "total_magnesium_mg", "REAL NOT NULL DEFAULT 0 CHECK(total_magnesium_mg >= 0)"},
	{"food_logs", "total_zinc_mg", "REAL NOT NULL DEFAULT 0 CHECK(total_zinc_mg >= 0)"},
	{"food_logs", "total_iron_mg", "REAL NOT NULL DEFAULT 0 CHECK(total_iron_mg >= 0)"},
	{"food_logs", "notes", "TEXT NOT NULL DEFAULT ''"},

	{"activity_logs", "met_value", "REAL NOT NULL DEFAULT 0 CHECK(met_value >= 0)"},
	{"activity_logs", "calories_overridden", "INTEGER NOT NULL DEFAULT 0"},
}

// MigrationReport lists column migrations by outcome, as "table.column".
type MigrationReport struct {
	Applied []string
	Skipped []string
	Failed  []string
}

// ApplyMigrations creates the base tables and then adds every additive
// column. Only a failure to create the tables is returned; a column that
// already exists is skipped and any other column failure is logged and left
// for the next run.
func ApplyMigrations(db *sql.DB) (MigrationReport, error) {
	report := MigrationReport{}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("%w: begin tx: %v", ErrSchema, err)
	}
	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return report, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("%w: commit: %v", ErrSchema, err)
	}

	for _, m := range columnMigrations {
		name := m.table + "." + m.column
		_, err := db.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, m.table, m.column, m.definition))
		switch {
		case err == nil:
			report.Applied = append(report.Applied, name)
		case isDuplicateColumn(err):
			report.Skipped = append(report.Skipped, name)
		default:
			log.Printf("[migrate] add column %s: %v", name, err)
			report.Failed = append(report.Failed, name)
		}
	}
	if len(report.Applied) > 0 {
		log.Printf("[migrate] added %d column(s)", len(report.Applied))
	}
	return report, nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column")
}
