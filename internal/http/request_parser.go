// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// a body parser that accepts JSON or form encoding and the date forms the
// API understands.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes caps request bodies; an expense is a handful of short fields.
const maxBodyBytes = 64 << 10

const (
	dayLayout        = "2006-01-02"
	compactDayLayout = "20060102"

	// minEpochMillisDigits keeps short digit strings from reading as 1970 instants.
	minEpochMillisDigits = 10
)

var errInvalidDate = errors.New("invalid date")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := strings.TrimSpace(string(p.body))
	if body == "" {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if body[0] == '{' || strings.Contains(p.contentType, "json") {
		p.jsonData = make(map[string]any)
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("decode json body: %w", err)
			p.jsonData = nil
			return p.err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(body)
	if p.err != nil {
		p.err = fmt.Errorf("parse form body: %w", p.err)
	}
	return p.err
}

// Get returns a trimmed, sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	return strings.TrimSpace(sanitizeInput(p.GetRaw(key)))
}

// GetRaw returns a value as sent, without sanitizing.
func (p *RequestBodyParser) GetRaw(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// Has reports whether key was present in the body at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDay parses a YYYY-MM-DD query value as midnight of that day in loc.
// An empty value yields the zero time and no error.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(dayLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
	}
	return d, nil
}

// ParseExpenseDate accepts the date forms a client may send for a new expense:
//
//	""                      -> zero time (the service uses now)
//	"2025-03-15"            -> that day at the current time of day
//	"20250315"              -> the same, compact form
//	"2025-03-15T09:30:00Z"  -> that instant (RFC 3339)
//	"1741995000000"         -> epoch milliseconds, at least 10 digits
func ParseExpenseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{dayLayout, compactDayLayout} {
		if d, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(),
				now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location()), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(now.Location()), nil
	}
	if len(s) >= minEpochMillisDigits {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).In(now.Location()), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
}

// ParseBool reads the usual spellings of a boolean flag.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
