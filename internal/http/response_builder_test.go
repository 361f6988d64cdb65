package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusCreated).
		JSON(map[string]int{"count": 2}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["count"] != 2 {
		t.Errorf("unexpected body %q (err %v)", w.Body.String(), err)
	}
}

func TestResponseBuilder_Triggers(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		TriggerExpenseCreated("abc", "2025-03-15").
		TriggerExpensesCleared(3).
		Trigger("custom", nil).
		Write(w)

	trigger := w.Header().Get("HX-Trigger")
	if trigger == "" {
		t.Fatal("HX-Trigger header not set")
	}

	expectedParts := []string{
		`"expense:created"`,
		`"id":"abc"`,
		`"date":"2025-03-15"`,
		`"expenses:cleared"`,
		`"removed":3`,
		`"custom":{}`,
	}
	for _, part := range expectedParts {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
}

func TestResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusNoContent).
		TriggerExpenseDeleted("abc").
		JSON(map[string]string{"ignored": "x"}).
		Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), "expense:deleted") {
		t.Error("expected trigger on 204 response")
	}
}

func TestResponseBuilder_CustomHeader(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().Header("X-Custom", "value").Write(w)
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("X-Custom = %q", w.Header().Get("X-Custom"))
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResponseBuilder
		code    int
	}{
		{"bad request", BadRequestError("bad"), http.StatusBadRequest},
		{"unprocessable", UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{"conflict", ConflictError("bad"), http.StatusConflict},
		{"not found", NotFoundError("bad"), http.StatusNotFound},
		{"internal", InternalServerError("bad"), http.StatusInternalServerError},
		{"rate limited", TooManyRequestsError(), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)
			if w.Code != tt.code {
				t.Errorf("Status code = %d, want %d", w.Code, tt.code)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Errorf("expected JSON error body, got %q", w.Body.String())
			}
		})
	}
}
