// Package query derives filtered, grouped and aggregated views from a
// snapshot of expenses. Every function is pure: inputs are never modified
// and results are freshly allocated.
//
// Calendar days are taken in the location of the time value passed in, so
// callers pass "now" or the selected day already converted to the user's zone.
package query

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"smartexpense/internal/core"
)

// DefaultWindowDays is the trailing window used by ForLastNDays and reports.
const DefaultWindowDays = 7

// ForDate returns the records dated within day's calendar day.
func ForDate(list []core.Expense, day time.Time) []core.Expense {
	return between(list, day, day)
}

// TotalForToday sums the amounts of records dated on now's calendar day.
func TotalForToday(list []core.Expense, now time.Time) float64 {
	return Total(ForDate(list, now))
}

// ForLastNDays returns records within the n calendar days ending today,
// today included. n <= 0 means DefaultWindowDays.
func ForLastNDays(list []core.Expense, now time.Time, n int) []core.Expense {
	from, to := Window(now, n)
	return between(list, from, to)
}

// Window returns the first and last day of the n-day window ending at now.
func Window(now time.Time, n int) (time.Time, time.Time) {
	if n <= 0 {
		n = DefaultWindowDays
	}
	return core.StartOfDay(now).AddDate(0, 0, -(n - 1)), core.EndOfDay(now)
}

func between(list []core.Expense, from, to time.Time) []core.Expense {
	out := []core.Expense{}
	for _, e := range list {
		if core.InDayRange(e.Date, from, to) {
			out = append(out, e)
		}
	}
	return out
}

// Search keeps records whose title or category contains q, ignoring case.
// A blank query keeps everything.
func Search(list []core.Expense, q string) []core.Expense {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]core.Expense, 0, len(list))
	for _, e := range list {
		if q == "" ||
			strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.Category), q) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums amounts in decimal so that e.g. 0.1 + 0.2 totals 0.3.
func Total(list []core.Expense) float64 {
	f, _ := sum(list).Float64()
	return f
}

func sum(list []core.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total
}

// Summary is the count and total of a list.
type Summary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

func Summarize(list []core.Expense) Summary {
	return Summary{Count: len(list), Total: Total(list)}
}
