package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/db"
	"github.com/nutrilog/nutrilog/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

type ServingMismatch struct {
	FoodLogID    int64   `json:"food_log_id"`
	FoodName     string  `json:"food_name"`
	StoredWeight float64 `json:"stored_weight_g"`
	ServingTotal float64 `json:"serving_total_g"`
}

type DoctorReport struct {
	ServingMismatches []ServingMismatch `json:"serving_mismatches"`
	OrphanItemRefs    []int64           `json:"orphan_item_refs"`
	FixedServingRows  int               `json:"fixed_serving_rows,omitempty"`
	FixedOrphanRows   int               `json:"fixed_orphan_rows,omitempty"`
}

func (r DoctorReport) Healthy() bool {
	return len(r.ServingMismatches) == 0 && len(r.OrphanItemRefs) == 0
}

// CreateBackup writes a consistent copy of the live database with VACUUM
// INTO and a .sha256 sidecar.
func (l *Ledger) CreateBackup(outPath string) (BackupInfo, error) {
	if err := l.checkReady(); err != nil {
		return BackupInfo{}, err
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if _, err := os.Stat(outPath); err == nil {
		return BackupInfo{}, fmt.Errorf("backup %s already exists", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if _, err := l.sqldb.Exec(`VACUUM INTO ?`, outPath); err != nil {
		return BackupInfo{}, fmt.Errorf("write backup: %w", err)
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup verifies the checksum sidecar (when present) and that the
// backup opens as a ledger, then copies it over dbPath. The target must not
// be open.
func RestoreBackup(backupPath, dbPath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(dbPath) == "" {
		return fmt.Errorf("backup path and db path are required")
	}
	if !force {
		if _, err := os.Stat(dbPath); err == nil {
			return fmt.Errorf("target db already exists; use --force to overwrite")
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch")
		}
	}
	if err := checkLedgerFile(backupPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}
	return copyFile(backupPath, dbPath)
}

func checkLedgerFile(path string) error {
	sqldb, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer sqldb.Close()
	var result string
	if err := sqldb.QueryRow(`PRAGMA integrity_check`).Scan(&result); err != nil {
		return fmt.Errorf("check backup: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("backup failed integrity check: %s", result)
	}
	var tables int
	if err := sqldb.QueryRow(`SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name IN ('user_profiles', 'food_items', 'food_logs', 'activity_logs')`).Scan(&tables); err != nil {
		return fmt.Errorf("check backup tables: %w", err)
	}
	if tables != 4 {
		return fmt.Errorf("backup %s is not a nutrilog database", path)
	}
	return nil
}

// RunDoctor finds serving-mode food logs whose stored total weight disagrees
// with amount x unit weight, and logs that reference a food item that no
// longer exists. With fix, the weight is recomputed and totals are rescaled
// to it, and dangling item references are cleared.
func (l *Ledger) RunDoctor(fix bool) (DoctorReport, error) {
	if err := l.checkReady(); err != nil {
		return DoctorReport{}, err
	}
	report := DoctorReport{ServingMismatches: []ServingMismatch{}, OrphanItemRefs: []int64{}}

	rows, err := l.sqldb.Query(`
SELECT id, food_name, serving_amount, unit_weight_g, total_weight_g
FROM food_logs
WHERE serving_type = 'serving'
ORDER BY id ASC
`)
	if err != nil {
		return report, fmt.Errorf("doctor serving query: %w", err)
	}
	for rows.Next() {
		var m ServingMismatch
		var amount, unit float64
		if err := rows.Scan(&m.FoodLogID, &m.FoodName, &amount, &unit, &m.StoredWeight); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor serving scan: %w", err)
		}
		m.ServingTotal = ToGrams(amount, unit)
		if math.Abs(m.ServingTotal-m.StoredWeight) >= SyncTolerance {
			report.ServingMismatches = append(report.ServingMismatches, m)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor serving iterate: %w", err)
	}
	_ = rows.Close()

	rows, err = l.sqldb.Query(`
SELECT fl.id FROM food_logs fl
LEFT JOIN food_items fi ON fi.id = fl.food_item_id
WHERE fl.food_item_id IS NOT NULL AND fi.id IS NULL
ORDER BY fl.id ASC
`)
	if err != nil {
		return report, fmt.Errorf("doctor orphan query: %w", err)
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return report, fmt.Errorf("doctor orphan scan: %w", err)
		}
		report.OrphanItemRefs = append(report.OrphanItemRefs, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return report, fmt.Errorf("doctor orphan iterate: %w", err)
	}
	_ = rows.Close()

	if !fix || report.Healthy() {
		return report, nil
	}
	for _, m := range report.ServingMismatches {
		entry, err := l.FoodLogByID(m.FoodLogID)
		if err != nil {
			return report, err
		}
		totals := rescaleTotals(entry.Totals, m.StoredWeight, m.ServingTotal)
		cols := append([]string{"total_weight_g"}, foodLogNutrientColumns...)
		cols = append(cols, "updated_at")
		args := append([]any{m.ServingTotal}, nutrientArgs(totals)...)
		args = append(args, formatTime(l.now()), m.FoodLogID)
		if _, err := l.sqldb.Exec(`UPDATE food_logs SET `+assignments(cols)+` WHERE id = ?`, args...); err != nil {
			return report, fmt.Errorf("doctor fix food log %d: %w", m.FoodLogID, err)
		}
		report.FixedServingRows++
	}
	for _, id := range report.OrphanItemRefs {
		if _, err := l.sqldb.Exec(`UPDATE food_logs SET food_item_id = NULL, updated_at = ? WHERE id = ?`, formatTime(l.now()), id); err != nil {
			return report, fmt.Errorf("doctor fix orphan %d: %w", id, err)
		}
		report.FixedOrphanRows++
	}
	return report, nil
}

func rescaleTotals(totals model.Nutrients, fromGrams, toGrams float64) model.Nutrients {
	if fromGrams <= 0 {
		return totals
	}
	return totals.Scale(toGrams / fromGrams).Round()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
