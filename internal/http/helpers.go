package http

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"smartexpense/internal/core"
	"smartexpense/internal/query"
	"smartexpense/internal/services"
)

// sanitizeInput strips control characters other than common whitespace.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// expenseDTO is the wire form of an expense.
type expenseDTO struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Amount        float64 `json:"amount"`
	AmountDisplay string  `json:"amount_display"`
	Category      string  `json:"category"`
	Notes         string  `json:"notes"`
	Date          string  `json:"date"`
	DateMillis    int64   `json:"date_ms"`
	ReceiptURI    string  `json:"receipt_uri,omitempty"`
}

func toDTO(e core.Expense, loc *time.Location) expenseDTO {
	return expenseDTO{
		ID:            e.ID.String(),
		Title:         e.Title,
		Amount:        e.Amount,
		AmountDisplay: core.FormatAmount(e.Amount),
		Category:      e.Category,
		Notes:         e.Notes,
		Date:          e.Date.In(loc).Format(time.RFC3339),
		DateMillis:    e.Date.UnixMilli(),
		ReceiptURI:    e.ReceiptURI,
	}
}

func toDTOs(list []core.Expense, loc *time.Location) []expenseDTO {
	out := make([]expenseDTO, 0, len(list))
	for _, e := range list {
		out = append(out, toDTO(e, loc))
	}
	return out
}

type groupDTO struct {
	Key      string       `json:"key"`
	Total    float64      `json:"total"`
	Expenses []expenseDTO `json:"expenses"`
}

func toGroupDTOs(groups []query.Group, loc *time.Location) []groupDTO {
	out := make([]groupDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupDTO{Key: g.Key, Total: g.Total, Expenses: toDTOs(g.Expenses, loc)})
	}
	return out
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrEmptyTitle),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrNotesTooLong),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, errInvalidDate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
