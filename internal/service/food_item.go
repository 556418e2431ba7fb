package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nutrilog/nutrilog/internal/model"
)

const (
	SourceManual  = "manual"
	SourceBarcode = "barcode"
	SourceAI      = "ai"
)

// FoodItemInput describes a reusable food. Nutrients are per BaseAmount of
// BaseUnit, which defaults to 100 g.
type FoodItemInput struct {
	Name           string
	Barcode        string
	Brand          string
	BaseAmount     float64
	BaseUnit       string
	ServingWeightG float64
	Source         string
	Nutrients      model.Nutrients
}

// FoodItemFromBaseline turns an adapter result into a food item input.
func FoodItemFromBaseline(b NutrientBaseline) FoodItemInput {
	source := b.Source
	if source == "" {
		source = SourceBarcode
	}
	return FoodItemInput{
		Name:           b.Name,
		Barcode:        b.Barcode,
		Brand:          b.Brand,
		BaseAmount:     DefaultBaseAmount,
		BaseUnit:       "g",
		ServingWeightG: b.ServingWeightG,
		Source:         source,
		Nutrients:      b.Per100g,
	}
}

var foodItemNutrientColumns = nutrientColumns("")

func foodItemSelect() string {
	return `SELECT id, name, barcode, brand, base_amount, base_unit, serving_weight_g, source, ` +
		strings.Join(foodItemNutrientColumns, ", ") + `, created_at, updated_at FROM food_items`
}

func (l *Ledger) CreateFoodItem(in FoodItemInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	normalized, err := normalizeFoodItemInput(in)
	if err != nil {
		return 0, err
	}
	stamp := formatTime(l.now())
	cols := append([]string{"name", "barcode", "brand", "base_amount", "base_unit", "serving_weight_g", "source"}, foodItemNutrientColumns...)
	cols = append(cols, "created_at", "updated_at")
	args := []any{normalized.Name, normalized.Barcode, normalized.Brand, normalized.BaseAmount, normalized.BaseUnit, normalized.ServingWeightG, normalized.Source}
	args = append(args, nutrientArgs(normalized.Nutrients)...)
	args = append(args, stamp, stamp)

	res, err := l.sqldb.Exec(`INSERT INTO food_items(`+strings.Join(cols, ", ")+`) VALUES(`+placeholders(len(cols))+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("create food item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("resolve food item id: %w", err)
	}
	return id, nil
}

// UpdateFoodItem rewrites the item and returns the number of rows changed.
// Existing food logs keep the totals computed when they were logged.
func (l *Ledger) UpdateFoodItem(id int64, in FoodItemInput) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("food item id must be > 0")
	}
	normalized, err := normalizeFoodItemInput(in)
	if err != nil {
		return 0, err
	}
	cols := append([]string{"name", "barcode", "brand", "base_amount", "base_unit", "serving_weight_g", "source"}, foodItemNutrientColumns...)
	cols = append(cols, "updated_at")
	args := []any{normalized.Name, normalized.Barcode, normalized.Brand, normalized.BaseAmount, normalized.BaseUnit, normalized.ServingWeightG, normalized.Source}
	args = append(args, nutrientArgs(normalized.Nutrients)...)
	args = append(args, formatTime(l.now()), id)

	res, err := l.sqldb.Exec(`UPDATE food_items SET `+assignments(cols)+` WHERE id = ?`, args...)
	if err != nil {
		return 0, fmt.Errorf("update food item %d: %w", id, err)
	}
	return rowsAffected(res)
}

func (l *Ledger) DeleteFoodItem(id int64) (int64, error) {
	if err := l.checkReady(); err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("food item id must be > 0")
	}
	res, err := l.sqldb.Exec(`DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete food item %d: %w", id, err)
	}
	return rowsAffected(res)
}

func (l *Ledger) FoodItemByID(id int64) (*model.FoodItem, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	item, err := scanFoodItem(l.sqldb.QueryRow(foodItemSelect()+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("food item %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load food item %d: %w", id, err)
	}
	return item, nil
}

// FoodItemByBarcode returns the most recently updated item with the barcode.
func (l *Ledger) FoodItemByBarcode(barcode string) (*model.FoodItem, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, fmt.Errorf("barcode is required")
	}
	item, err := scanFoodItem(l.sqldb.QueryRow(foodItemSelect()+` WHERE barcode = ? ORDER BY updated_at DESC, id DESC LIMIT 1`, barcode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("barcode %s: %w", barcode, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load food item by barcode %s: %w", barcode, err)
	}
	return item, nil
}

// ListFoodItems matches query against name, brand and barcode. An empty
// query lists everything.
func (l *Ledger) ListFoodItems(query string, limit int) ([]model.FoodItem, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	stmt := foodItemSelect() + ` WHERE 1=1`
	args := make([]any, 0)
	if q := strings.TrimSpace(query); q != "" {
		stmt += ` AND (name LIKE ? OR brand LIKE ? OR barcode = ?)`
		like := "%" + q + "%"
		args = append(args, like, like, q)
	}
	stmt += ` ORDER BY name COLLATE NOCASE ASC, id ASC`
	if limit <= 0 {
		limit = 50
	}
	stmt += ` LIMIT ?`
	args = append(args, limit)

	rows, err := l.sqldb.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list food items: %w", err)
	}
	defer rows.Close()

	items := make([]model.FoodItem, 0)
	for rows.Next() {
		item, err := scanFoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food items: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFoodItem(row rowScanner) (*model.FoodItem, error) {
	var item model.FoodItem
	var createdRaw, updatedRaw string
	dest := []any{&item.ID, &item.Name, &item.Barcode, &item.Brand, &item.BaseAmount, &item.BaseUnit, &item.ServingWeightG, &item.Source}
	dest = append(dest, nutrientDest(&item.Nutrients)...)
	dest = append(dest, &createdRaw, &updatedRaw)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	item.CreatedAt = parseStoredTime(createdRaw)
	item.UpdatedAt = parseStoredTime(updatedRaw)
	return &item, nil
}

func normalizeFoodItemInput(in FoodItemInput) (FoodItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return FoodItemInput{}, fmt.Errorf("food name is required")
	}
	in.Barcode = strings.TrimSpace(in.Barcode)
	in.Brand = strings.TrimSpace(in.Brand)
	if in.BaseAmount == 0 {
		in.BaseAmount = DefaultBaseAmount
	}
	if in.BaseAmount < 0 || !usable(in.BaseAmount) {
		return FoodItemInput{}, fmt.Errorf("base amount must be > 0")
	}
	in.BaseUnit = normalizeName(in.BaseUnit)
	if in.BaseUnit == "" {
		in.BaseUnit = "g"
	}
	if in.BaseUnit != "g" {
		grams, err := ConvertToGrams(in.BaseAmount, in.BaseUnit)
		if err != nil {
			return FoodItemInput{}, err
		}
		in.BaseAmount = grams
		in.BaseUnit = "g"
	}
	if err := validateNonNegativeFloat("serving weight", in.ServingWeightG); err != nil {
		return FoodItemInput{}, err
	}
	in.Source = normalizeName(in.Source)
	if in.Source == "" {
		in.Source = SourceManual
	}
	if err := in.Nutrients.Validate(); err != nil {
		return FoodItemInput{}, err
	}
	return in, nil
}
