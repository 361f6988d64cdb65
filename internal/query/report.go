package query

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"smartexpense/internal/core"
)

const (
	rangeLayout = "02 Jan"
	chartLayout = "Jan 2"
)

// DayTotal is the spend of one calendar day.
type DayTotal struct {
	Day   time.Time `json:"day"`
	Label string    `json:"label"`
	Total float64   `json:"total"`
}

// CategoryShare is one category's total and its fraction of the set total.
type CategoryShare struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Share    float64 `json:"share"`
}

// DailySeries returns one entry per calendar day of the n-day window ending
// at now, oldest first, zero-filled. n <= 0 means DefaultWindowDays.
func DailySeries(list []core.Expense, now time.Time, n int) []DayTotal {
	from, _ := Window(now, n)
	if n <= 0 {
		n = DefaultWindowDays
	}

	series := make([]DayTotal, n)
	for i := range series {
		d := from.AddDate(0, 0, i)
		series[i] = DayTotal{
			Day:   d,
			Label: d.Format(chartLayout),
			Total: Total(ForDate(list, d)),
		}
	}
	return series
}

// CategoryBreakdown totals list per category, largest first. Ties keep the
// order in which categories first appear. Shares are 0 when the set total is 0.
func CategoryBreakdown(list []core.Expense) []CategoryShare {
	groups := GroupByCategory(list)
	total := sum(list)

	out := make([]CategoryShare, len(groups))
	for i, g := range groups {
		gt := sum(g.Expenses)
		share := 0.0
		if !total.IsZero() {
			share, _ = gt.DivRound(total, 8).Float64()
		}
		t, _ := gt.Float64()
		out[i] = CategoryShare{Category: g.Key, Total: t, Share: share}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// Report is the seven-day spending overview.
type Report struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	RangeLabel   string          `json:"range_label"`
	Total        float64         `json:"total"`
	DailyAverage float64         `json:"daily_average"`
	Series       []DayTotal      `json:"series"`
	Breakdown    []CategoryShare `json:"breakdown"`
	ChartMax     float64         `json:"chart_max"`
}

// WeeklyReport summarizes the DefaultWindowDays days ending at now. The
// average always divides by the window length, days without spend included.
// ChartMax is the largest daily total and never below 1.
func WeeklyReport(list []core.Expense, now time.Time) Report {
	from, to := Window(now, DefaultWindowDays)
	week := between(list, from, to)

	total := sum(week)
	avg, _ := total.DivRound(decimal.NewFromInt(DefaultWindowDays), 2).Float64()
	t, _ := total.Float64()

	series := DailySeries(week, now, DefaultWindowDays)
	chartMax := 1.0
	for _, d := range series {
		if d.Total > chartMax {
			chartMax = d.Total
		}
	}

	return Report{
		From:         from,
		To:           to,
		RangeLabel:   from.Format(rangeLayout) + " - " + to.Format(rangeLayout),
		Total:        t,
		DailyAverage: avg,
		Series:       series,
		Breakdown:    CategoryBreakdown(week),
		ChartMax:     chartMax,
	}
}
