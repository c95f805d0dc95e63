package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RecordSource indicates how an expense record was created.
type RecordSource string

const (
	// RecordSourceAuto indicates the record came from a confirmed capture event.
	RecordSourceAuto RecordSource = CaptureSourceAuto
	// RecordSourceManual indicates the record was entered by hand.
	RecordSourceManual RecordSource = "MANUAL"
)

// DefaultCategory is used when a record is confirmed without a category.
const DefaultCategory = "Other"

// Record is a single confirmed expense.
type Record struct {
	Timestamp  time.Time
	Amount     decimal.Decimal
	Category   string
	Note       string
	Source     RecordSource
	PaymentApp string // Display label of the payment app, empty for manual records
	PrefillID  string // Prefill request the record was confirmed from, if any
	ID         int64
}

// CategoryTotal is the summed amount of all records in one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// TotalsByCategory sums records per category, largest total first.
func TotalsByCategory(records []Record) []CategoryTotal {
	index := make(map[string]int)
	var totals []CategoryTotal
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(totals)
			index[r.Category] = i
			totals = append(totals, CategoryTotal{Category: r.Category, Total: decimal.Zero})
		}
		totals[i].Total = totals[i].Total.Add(r.Amount)
		totals[i].Count++
	}

	sort.SliceStable(totals, func(a, b int) bool {
		if c := totals[a].Total.Cmp(totals[b].Total); c != 0 {
			return c > 0
		}
		return totals[a].Category < totals[b].Category
	})
	return totals
}
