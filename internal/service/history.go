package service

import (
	"fmt"
	"math"
	"time"

	"github.com/nutrilog/nutrilog/internal/locale"
)

type Period string

const (
	PeriodDay      Period = "day"
	PeriodWeek     Period = "week"
	PeriodMonthDay Period = "month_day"
	PeriodYear     Period = "year"
)

const (
	weekBuckets  = 7
	monthBuckets = 30
)

// Bucket is one labeled slice of history. From and To are inclusive local
// dates.
type Bucket struct {
	Label       string  `json:"label"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	CaloriesIn  int     `json:"calories_in"`
	CaloriesOut int     `json:"calories_out"`
	ProteinG    float64 `json:"protein_g"`
	CarbsG      float64 `json:"carbs_g"`
	FatG        float64 `json:"fat_g"`
	SodiumMg    float64 `json:"sodium_mg"`
}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(normalizeName(s)); p {
	case PeriodDay, PeriodWeek, PeriodMonthDay, PeriodYear:
		return p, nil
	case "month":
		return PeriodMonthDay, nil
	}
	return "", fmt.Errorf("invalid period %q (use day, week, month_day, or year)", s)
}

// Buckets lays out the empty, labeled buckets of a period ending at anchor:
// one day, the trailing 7 or 30 days with the anchor day last, or January to
// December of the anchor's year.
func Buckets(period Period, anchor time.Time, loc locale.Locale) ([]Bucket, error) {
	day := beginningOfDay(anchor)
	switch period {
	case PeriodDay:
		return []Bucket{dayBucket(day, loc.MonthDay(day))}, nil
	case PeriodWeek:
		out := make([]Bucket, 0, weekBuckets)
		for i := weekBuckets - 1; i >= 0; i-- {
			d := day.AddDate(0, 0, -i)
			out = append(out, dayBucket(d, loc.WeekdayShort(d.Weekday())))
		}
		return out, nil
	case PeriodMonthDay:
		out := make([]Bucket, 0, monthBuckets)
		for i := monthBuckets - 1; i >= 0; i-- {
			d := day.AddDate(0, 0, -i)
			out = append(out, dayBucket(d, loc.MonthDay(d)))
		}
		return out, nil
	case PeriodYear:
		out := make([]Bucket, 0, 12)
		for m := time.January; m <= time.December; m++ {
			first := time.Date(day.Year(), m, 1, 0, 0, 0, 0, day.Location())
			last := first.AddDate(0, 1, -1)
			out = append(out, Bucket{Label: loc.MonthShort(m), From: first.Format(dateLayout), To: last.Format(dateLayout)})
		}
		return out, nil
	}
	return nil, fmt.Errorf("invalid period %q", period)
}

func dayBucket(d time.Time, label string) Bucket {
	date := d.Format(dateLayout)
	return Bucket{Label: label, From: date, To: date}
}

type dayTotals struct {
	caloriesIn  float64
	caloriesOut int
	protein     float64
	carbs       float64
	fat         float64
	sodium      float64
}

// History sums food and activity logs into the period's buckets by log date.
// Buckets without entries stay at zero.
func (l *Ledger) History(period Period, anchor time.Time, loc locale.Locale) ([]Bucket, error) {
	if err := l.checkReady(); err != nil {
		return nil, err
	}
	buckets, err := Buckets(period, anchor, loc)
	if err != nil {
		return nil, err
	}
	from, to := buckets[0].From, buckets[len(buckets)-1].To
	days, err := l.loadDayTotals(from, to)
	if err != nil {
		return nil, err
	}

	in := make([]float64, len(buckets))
	for date, totals := range days {
		for i := range buckets {
			if date < buckets[i].From || date > buckets[i].To {
				continue
			}
			in[i] += totals.caloriesIn
			buckets[i].CaloriesOut += totals.caloriesOut
			buckets[i].ProteinG += totals.protein
			buckets[i].CarbsG += totals.carbs
			buckets[i].FatG += totals.fat
			buckets[i].SodiumMg += totals.sodium
			break
		}
	}
	for i := range buckets {
		buckets[i].CaloriesIn = int(math.Round(in[i]))
	}
	return buckets, nil
}

func (l *Ledger) loadDayTotals(from, to string) (map[string]*dayTotals, error) {
	days := map[string]*dayTotals{}
	get := func(date string) *dayTotals {
		t, ok := days[date]
		if !ok {
			t = &dayTotals{}
			days[date] = t
		}
		return t
	}

	rows, err := l.sqldb.Query(`
SELECT log_date,
       IFNULL(SUM(total_calories), 0),
       IFNULL(SUM(total_protein_g), 0),
       IFNULL(SUM(total_carbs_g), 0),
       IFNULL(SUM(total_fat_g), 0),
       IFNULL(SUM(total_sodium_mg), 0)
FROM food_logs
WHERE log_date >= ? AND log_date <= ?
GROUP BY log_date
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum food logs: %w", err)
	}
	for rows.Next() {
		var date string
		var calories, protein, carbs, fat, sodium float64
		if err := rows.Scan(&date, &calories, &protein, &carbs, &fat, &sodium); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan food log totals: %w", err)
		}
		t := get(date)
		t.caloriesIn += calories
		t.protein += protein
		t.carbs += carbs
		t.fat += fat
		t.sodium += sodium
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate food log totals: %w", err)
	}
	rows.Close()

	rows, err = l.sqldb.Query(`
SELECT log_date, IFNULL(SUM(calories_burned), 0)
FROM activity_logs
WHERE log_date >= ? AND log_date <= ?
GROUP BY log_date
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("sum activity logs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var burned int
		if err := rows.Scan(&date, &burned); err != nil {
			return nil, fmt.Errorf("scan activity totals: %w", err)
		}
		get(date).caloriesOut += burned
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity totals: %w", err)
	}
	return days, nil
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
