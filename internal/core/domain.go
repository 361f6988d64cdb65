package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	Food    Category = "Food"
	Staff   Category = "Staff"
	Travel  Category = "Travel"
	Utility Category = "Utility"
)

// MaxNotesLength bounds the free-text notes of an expense, in characters.
const MaxNotesLength = 100

type (
	Category string

	// Expense is a single recorded spend. Records are immutable once created.
	Expense struct {
		ID         uuid.UUID
		Title      string
		Amount     float64
		Category   string
		Notes      string
		Date       time.Time // millisecond precision
		ReceiptURI string    // empty when no receipt is attached
	}
)

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotesTooLong  = errors.New("notes too long (max 100 characters)")
	ErrInvalidDate   = errors.New("invalid date")
)

// Categories returns the fixed set offered to users. Any other string is still accepted.
func Categories() []Category {
	return []Category{Food, Staff, Travel, Utility}
}

func (c Category) String() string {
	return string(c)
}

// NewExpense builds a record with a fresh id. A zero date defaults to now.
func NewExpense(title string, amount float64, category, notes string, date time.Time, receiptURI string) Expense {
	if date.IsZero() {
		date = time.Now()
	}
	return Expense{
		ID:         uuid.New(),
		Title:      title,
		Amount:     amount,
		Category:   category,
		Notes:      notes,
		Date:       TruncateMillis(date),
		ReceiptURI: receiptURI,
	}
}

// TruncateMillis drops sub-millisecond precision so a time survives the
// millisecond epoch encoding unchanged.
func TruncateMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).In(t.Location())
}

// HasReceipt reports whether a receipt reference is attached.
func (e Expense) HasReceipt() bool {
	return e.ReceiptURI != ""
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if !(e.Amount > 0) || !IsFiniteAmount(e.Amount) || e.Amount > MaxAmount {
		return ErrInvalidAmount
	}
	if utf8.RuneCountInString(e.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
