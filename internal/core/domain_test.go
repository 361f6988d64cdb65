package core

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewExpenseDefaults(t *testing.T) {
	before := time.Now().Add(-time.Second)
	e := NewExpense("Coffee", 50, "Food", "", time.Time{}, "")
	if e.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if e.Date.Before(before) {
		t.Fatalf("expected zero date to default to now, got %v", e.Date)
	}
	if e.Date.Nanosecond()%int(time.Millisecond) != 0 {
		t.Fatalf("expected millisecond precision, got %v", e.Date)
	}
	if e.HasReceipt() {
		t.Fatalf("expected no receipt")
	}

	other := NewExpense("Coffee", 50, "Food", "", time.Time{}, "")
	if other.ID == e.ID {
		t.Fatalf("ids must not be reused")
	}
}

func TestExpenseValidate(t *testing.T) {
	now := time.Now()
	good := NewExpense("Lunch", 120.5, "Food", "with team", now, "content://receipts/1")
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"blank title", Expense{Title: "   ", Amount: 1, Date: now}, ErrEmptyTitle},
		{"zero amount", Expense{Title: "a", Amount: 0, Date: now}, ErrInvalidAmount},
		{"negative amount", Expense{Title: "a", Amount: -3, Date: now}, ErrInvalidAmount},
		{"infinite amount", Expense{Title: "a", Amount: math.Inf(1), Date: now}, ErrInvalidAmount},
		{"NaN amount", Expense{Title: "a", Amount: math.NaN(), Date: now}, ErrInvalidAmount},
		{"amount above max", Expense{Title: "a", Amount: MaxAmount * 10, Date: now}, ErrInvalidAmount},
		{"long notes", Expense{Title: "a", Amount: 1, Notes: strings.Repeat("n", 101), Date: now}, ErrNotesTooLong},
		{"zero date", Expense{Title: "a", Amount: 1}, ErrInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.e.Validate(); err != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// 100 multi-byte characters are still within bounds
	ok := Expense{Title: "a", Amount: 1, Notes: strings.Repeat("€", 100), Date: now}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected 100 runes to be accepted, got %v", err)
	}
}

func TestCategories(t *testing.T) {
	got := Categories()
	want := []Category{Food, Staff, Travel, Utility}
	if len(got) != len(want) {
		t.Fatalf("unexpected categories: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}
