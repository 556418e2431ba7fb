package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/nutrilog/nutrilog/internal/locale"
	"github.com/xuri/excelize/v2"
)

const (
	SheetHistory    = "History"
	SheetFoodLogs   = "Food Logs"
	SheetActivities = "Activity Logs"
)

type ExportOptions struct {
	Path   string
	Period Period
	Anchor time.Time
	Locale locale.Locale
}

type ExportReport struct {
	Path         string `json:"path"`
	Buckets      int    `json:"buckets"`
	FoodLogs     int    `json:"food_logs"`
	ActivityLogs int    `json:"activity_logs"`
}

// ExportWorkbook writes the period's history buckets and every food and
// activity log inside it to an .xlsx file.
func (l *Ledger) ExportWorkbook(opts ExportOptions) (ExportReport, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return ExportReport{}, fmt.Errorf("export path is required")
	}
	buckets, err := l.History(opts.Period, opts.Anchor, opts.Locale)
	if err != nil {
		return ExportReport{}, err
	}
	from, to := buckets[0].From, buckets[len(buckets)-1].To
	foods, err := l.QueryFoodLogsBetween(from, to)
	if err != nil {
		return ExportReport{}, err
	}
	activities, err := l.QueryActivityLogsBetween(from, to)
	if err != nil {
		return ExportReport{}, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetHistory); err != nil {
		return ExportReport{}, fmt.Errorf("name history sheet: %w", err)
	}
	rows := [][]any{{"Label", "From", "To", "Calories In", "Calories Out", "Protein (g)", "Carbs (g)", "Fat (g)", "Sodium (mg)"}}
	for _, b := range buckets {
		rows = append(rows, []any{b.Label, b.From, b.To, b.CaloriesIn, b.CaloriesOut, b.ProteinG, b.CarbsG, b.FatG, b.SodiumMg})
	}
	if err := writeSheet(f, SheetHistory, rows); err != nil {
		return ExportReport{}, err
	}

	header := []any{"ID", "Date", "Logged At", "Meal", "Food", "Serving Type", "Amount", "Unit Weight (g)", "Total Weight (g)"}
	for _, col := range nutrientColumns("") {
		header = append(header, col)
	}
	header = append(header, "Notes")
	rows = [][]any{header}
	for _, e := range foods {
		row := []any{e.ID, e.LogDate, e.LoggedAt.Format(time.RFC3339), string(e.MealTime), e.FoodName, string(e.ServingType), e.ServingAmount, e.UnitWeightG, e.TotalWeightG}
		row = append(row, nutrientArgs(e.Totals)...)
		rows = append(rows, append(row, e.Notes))
	}
	if _, err := f.NewSheet(SheetFoodLogs); err != nil {
		return ExportReport{}, fmt.Errorf("create food sheet: %w", err)
	}
	if err := writeSheet(f, SheetFoodLogs, rows); err != nil {
		return ExportReport{}, err
	}

	rows = [][]any{{"ID", "Date", "Logged At", "Category", "Activity", "Intensity", "Duration (min)", "MET", "Calories", "Overridden", "Distance (km)", "Steps", "Floors", "Feeling", "Notes"}}
	for _, a := range activities {
		rows = append(rows, []any{a.ID, a.LogDate, a.LoggedAt.Format(time.RFC3339), a.Category, a.ActivityName, string(a.Intensity), a.DurationMin, a.METValue,
			a.CaloriesBurned, a.CaloriesOverridden, nullableFloat(a.DistanceKm), nullableInt(a.Steps), nullableInt(a.Floors), string(a.Feeling), a.Notes})
	}
	if _, err := f.NewSheet(SheetActivities); err != nil {
		return ExportReport{}, fmt.Errorf("create activity sheet: %w", err)
	}
	if err := writeSheet(f, SheetActivities, rows); err != nil {
		return ExportReport{}, err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(opts.Path); err != nil {
		return ExportReport{}, fmt.Errorf("save workbook: %w", err)
	}
	return ExportReport{Path: opts.Path, Buckets: len(buckets), FoodLogs: len(foods), ActivityLogs: len(activities)}, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
