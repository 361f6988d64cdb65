package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantJSON    bool
		want        map[string]string
	}{
		{
			name:        "json body",
			body:        `{"title":" Coffee ","amount":3.5,"category":"Food"}`,
			contentType: "application/json",
			wantJSON:    true,
			want:        map[string]string{"title": "Coffee", "amount": "3.5", "category": "Food"},
		},
		{
			name:        "form body",
			body:        "title=Taxi&amount=12%2C50&category=Travel",
			contentType: "application/x-www-form-urlencoded",
			want:        map[string]string{"title": "Taxi", "amount": "12,50", "category": "Travel"},
		},
		{
			name: "control characters are stripped",
			body: "title=Lun%00ch",
			want: map[string]string{"title": "Lunch"},
		},
		{
			name: "empty body",
			body: "",
			want: map[string]string{"title": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			for k, v := range tt.want {
				if got := p.Get(k); got != v {
					t.Errorf("Get(%q) = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	// a second call returns the same result without re-reading
	if err := p.Parse(); err == nil {
		t.Fatal("expected cached error")
	}
}

func TestRequestBodyParser_Has(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"online":false}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if !p.Has("online") || p.Has("other") {
		t.Error("Has() reports wrong keys")
	}
	if p.Get("online") != "false" {
		t.Errorf("Get(online) = %q", p.Get("online"))
	}
}

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	d, err := ParseDay("2025-03-15", loc)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 3, 15, 0, 0, 0, 0, loc)
	if !d.Equal(want) {
		t.Errorf("ParseDay() = %v, want %v", d, want)
	}

	if d, err := ParseDay("", loc); err != nil || !d.IsZero() {
		t.Errorf("ParseDay(\"\") = %v, %v", d, err)
	}
	if _, err := ParseDay("15/03/2025", loc); !errors.Is(err, errInvalidDate) {
		t.Errorf("expected errInvalidDate, got %v", err)
	}
}

func TestParseExpenseDate(t *testing.T) {
	now := time.Date(2025, 3, 20, 14, 30, 15, 0, time.UTC)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"empty means now", "", time.Time{}, false},
		{"day keeps time of day", "2025-03-15", time.Date(2025, 3, 15, 14, 30, 15, 0, time.UTC), false},
		{"rfc3339", "2025-03-15T09:00:00+01:00", time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC), false},
		{"epoch millis", "1742032800000", time.UnixMilli(1742032800000), false},
		{"compact day", "20250315", time.Date(2025, 3, 15, 14, 30, 15, 0, time.UTC), false},
		{"short digit string", "123456", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpenseDate(tt.input, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseExpenseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseExpenseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "on", "YES"} {
		if v, err := ParseBool(s); err != nil || !v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	for _, s := range []string{"false", "0", "off", "no"} {
		if v, err := ParseBool(s); err != nil || v {
			t.Errorf("ParseBool(%q) = %v, %v", s, v, err)
		}
	}
	if _, err := ParseBool("maybe"); err == nil {
		t.Error("expected error")
	}
}
