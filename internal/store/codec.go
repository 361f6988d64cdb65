package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
)

// record is the persisted shape of one expense. Date is epoch milliseconds.
type record struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Notes      string  `json:"notes"`
	Date       int64   `json:"date"`
	ReceiptURI string  `json:"receiptUri,omitempty"`
}

// Encode serializes the collection as a JSON array. An empty collection
// encodes as "[]".
func Encode(expenses []core.Expense) (string, error) {
	records := make([]record, 0, len(expenses))
	for _, e := range expenses {
		records = append(records, record{
			ID:         e.ID.String(),
			Title:      e.Title,
			Amount:     e.Amount,
			Category:   e.Category,
			Notes:      e.Notes,
			Date:       e.Date.UnixMilli(),
			ReceiptURI: e.ReceiptURI,
		})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode expenses: %w", err)
	}
	return string(data), nil
}

// Decode parses a persisted blob. Individual fields are read leniently:
// a missing or invalid id gets a fresh one, missing strings and numbers
// default to empty and zero, and array elements that are not objects are
// skipped. Only a blob that is not a JSON array at all is an error.
func Decode(blob string) ([]core.Expense, error) {
	if strings.TrimSpace(blob) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(blob))
	dec.UseNumber()
	var elems []json.RawMessage
	if err := dec.Decode(&elems); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}

	expenses := make([]core.Expense, 0, len(elems))
	for _, raw := range elems {
		obj, ok := decodeObject(raw)
		if !ok {
			continue
		}
		expenses = append(expenses, fromObject(obj))
	}
	return expenses, nil
}

func decodeObject(raw json.RawMessage) (map[string]any, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	return obj, true
}

func fromObject(obj map[string]any) core.Expense {
	id, err := uuid.Parse(optString(obj["id"]))
	if err != nil {
		id = uuid.New()
	}
	return core.Expense{
		ID:         id,
		Title:      optString(obj["title"]),
		Amount:     optFloat(obj["amount"]),
		Category:   optString(obj["category"]),
		Notes:      optString(obj["notes"]),
		Date:       time.UnixMilli(optInt(obj["date"])),
		ReceiptURI: optReceipt(obj["receiptUri"]),
	}
}

// optReceipt keeps the reference verbatim; only absent or null is empty.
func optReceipt(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func optString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func optFloat(v any) float64 {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func optInt(v any) int64 {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
