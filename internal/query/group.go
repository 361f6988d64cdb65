package query

import (
	"time"

	"smartexpense/internal/core"
)

// hourLayout labels an hour bucket on the 12-hour clock, e.g. "09 AM".
const hourLayout = "03 PM"

// Group is one partition of a list. Groups keep the first-seen order of
// their keys and records keep their relative order within a group.
type Group struct {
	Key      string
	Expenses []core.Expense
	Total    float64
}

// GroupByCategory partitions by exact category.
func GroupByCategory(list []core.Expense) []Group {
	return groupBy(list, func(e core.Expense) string { return e.Category })
}

// GroupByHour partitions by hour of day in loc. A nil loc means time.Local.
func GroupByHour(list []core.Expense, loc *time.Location) []Group {
	if loc == nil {
		loc = time.Local
	}
	return groupBy(list, func(e core.Expense) string { return HourLabel(e.Date, loc) })
}

// HourLabel formats t's hour in loc, e.g. "09 AM".
func HourLabel(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(hourLayout)
}

func groupBy(list []core.Expense, key func(core.Expense) string) []Group {
	groups := []Group{}
	index := make(map[string]int)
	for _, e := range list {
		k := key(e)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Expenses = append(groups[i].Expenses, e)
	}
	for i := range groups {
		groups[i].Total = Total(groups[i].Expenses)
	}
	return groups
}
