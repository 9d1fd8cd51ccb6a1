// Package aggregation turns a user's dated ledger records into the series,
// breakdowns, and recent-activity lists the dashboard renders. Everything
// here is pure computation over an in-memory snapshot.
package aggregation

import (
	"sort"
	"time"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// Window selects the time span records are aggregated over.
type Window string

const (
	WindowWeek         Window = "week"
	WindowMonth        Window = "month"
	WindowYear         Window = "year"
	WindowPreviousYear Window = "previous_year"
	WindowCustom       Window = "custom"
)

// customDayBucketMax is the longest custom span bucketed per day; longer
// spans fall back to month buckets.
const customDayBucketMax = 90 * 24 * time.Hour

// Range is a resolved [Start, End] interval.
type Range struct {
	Start time.Time
	End   time.Time
}

// Resolve turns a window selector into a concrete interval relative to now.
// Custom windows require both start and end.
func (w Window) Resolve(now time.Time, start, end time.Time) (Range, error) {
	switch w {
	case WindowWeek:
		return Range{Start: now.AddDate(0, 0, -7), End: now}, nil
	case WindowMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Range{Start: first, End: first.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	case WindowYear:
		first := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: first, End: first.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	case WindowPreviousYear:
		first := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, now.Location())
		return Range{Start: first, End: first.AddDate(1, 0, 0).Add(-time.Nanosecond)}, nil
	case WindowCustom:
		if start.IsZero() || end.IsZero() {
			return Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "custom range requires start and end dates")
		}
		if end.Before(start) {
			return Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must not precede start date")
		}
		return Range{Start: start, End: end}, nil
	default:
		return Range{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown time range")
	}
}

// Contains reports whether t falls inside the range, inclusive.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Point is a single dated amount feeding a series.
type Point struct {
	Date   time.Time
	Amount float64
}

// Bucket is one entry of a chronological series.
type Bucket struct {
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// ExpensePoints filters expenses to the range and converts them to points.
func ExpensePoints(expenses []models.Expense, r Range) []Point {
	points := make([]Point, 0, len(expenses))
	for _, e := range expenses {
		if r.Contains(e.Date) {
			points = append(points, Point{Date: e.Date, Amount: e.Amount})
		}
	}
	return points
}

// IncomePoints filters incomes to the range and converts them to points.
func IncomePoints(incomes []models.Income, r Range) []Point {
	points := make([]Point, 0, len(incomes))
	for _, i := range incomes {
		if r.Contains(i.Date) {
			points = append(points, Point{Date: i.Date, Amount: i.Amount})
		}
	}
	return points
}

// Series buckets points chronologically, summing amounts per bucket. Bucket
// granularity follows the window: day-of-week labels for a week, day of
// month for a month, month-year for year windows, and adaptive day/month
// for custom spans.
func Series(points []Point, w Window, r Range) []Bucket {
	layout := bucketLayout(w, r)
	byDay := layout != "Jan 2006"

	type entry struct {
		key   time.Time
		total float64
	}
	buckets := map[string]*entry{}
	for _, p := range points {
		label := p.Date.Format(layout)
		if b, ok := buckets[label]; ok {
			b.total += p.Amount
			continue
		}
		buckets[label] = &entry{key: bucketKey(p.Date, byDay), total: p.Amount}
	}

	labels := make([]string, 0, len(buckets))
	for label := range buckets {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		return buckets[labels[i]].key.Before(buckets[labels[j]].key)
	})

	series := make([]Bucket, 0, len(labels))
	for _, label := range labels {
		series = append(series, Bucket{Label: label, Total: buckets[label].total})
	}
	return series
}

func bucketLayout(w Window, r Range) string {
	switch w {
	case WindowWeek:
		return "Mon, Jan 02"
	case WindowMonth:
		return "Jan 02"
	case WindowYear, WindowPreviousYear:
		return "Jan 2006"
	case WindowCustom:
		if r.End.Sub(r.Start) <= customDayBucketMax {
			return "Jan 02"
		}
		return "Jan 2006"
	default:
		return "2006-01-02"
	}
}

func bucketKey(t time.Time, byDay bool) time.Time {
	if byDay {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// CategoryTotal is the summed spend for one category label.
type CategoryTotal struct {
	Category models.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
}

// CategoryBreakdown sums expense amounts per fixed category label, in
// display order. Unrecognized categories fold into the "other" bucket.
func CategoryBreakdown(expenses []models.Expense) []CategoryTotal {
	totals := map[models.ExpenseCategory]float64{}
	for _, e := range expenses {
		category := e.Category
		if !knownCategory(category) {
			category = models.CategoryOther
		}
		totals[category] += e.Amount
	}

	breakdown := make([]CategoryTotal, 0, len(models.Categories))
	for _, category := range models.Categories {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: totals[category]})
	}
	return breakdown
}

func knownCategory(c models.ExpenseCategory) bool {
	for _, known := range models.Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Kind distinguishes the two ledger record types in a merged listing.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Transaction is a merged view of an expense or income for recent-activity
// listings.
type Transaction struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Amount   float64                `json:"amount"`
	Category models.ExpenseCategory `json:"category,omitempty"`
	Date     time.Time              `json:"date"`
	Kind     Kind                   `json:"kind"`
}

// Recent merges expenses and incomes, sorts them by date descending, and
// returns at most n entries.
func Recent(expenses []models.Expense, incomes []models.Income, n int) []Transaction {
	merged := make([]Transaction, 0, len(expenses)+len(incomes))
	for _, e := range expenses {
		merged = append(merged, Transaction{
			ID:       e.ID,
			Title:    e.Title,
			Amount:   e.Amount,
			Category: e.Category,
			Date:     e.Date,
			Kind:     KindExpense,
		})
	}
	for _, i := range incomes {
		merged = append(merged, Transaction{
			ID:     i.ID,
			Title:  i.Title,
			Amount: i.Amount,
			Date:   i.Date,
			Kind:   KindIncome,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date.After(merged[j].Date)
	})

	if n > 0 && len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

// Sum totals the amounts of a point slice.
func Sum(points []Point) float64 {
	var total float64
	for _, p := range points {
		total += p.Amount
	}
	return total
}
