package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"smartexpense/internal/core"
	applog "smartexpense/internal/log"
	"smartexpense/internal/services"
)

type listResponse struct {
	Version  uint64       `json:"version"`
	Expenses []expenseDTO `json:"expenses"`
	Groups   []groupDTO   `json:"groups,omitempty"`
	Count    int          `json:"count"`
	Total    float64      `json:"total"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := s.svc.Location()

	day, err := ParseDay(q.Get("date"), loc)
	if err != nil {
		BadRequestError("date must be YYYY-MM-DD").Write(w)
		return
	}
	group := services.GroupMode(strings.ToLower(strings.TrimSpace(q.Get("group"))))
	if group != "" && !group.IsValid() {
		BadRequestError("group must be one of none, category, time").Write(w)
		return
	}

	res, err := s.svc.List(r.Context(), services.ListQuery{
		Date:  day,
		Text:  q.Get("q"),
		Group: group,
	})
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	NewResponse().JSON(listResponse{
		Version:  res.Version,
		Expenses: toDTOs(res.Expenses, loc),
		Groups:   toGroupDTOs(res.Groups, loc),
		Count:    res.Summary.Count,
		Total:    res.Summary.Total,
	}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(r.Context(), "Invalid request body", applog.FieldError, err)
		BadRequestError("invalid request body").Write(w)
		return
	}

	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		UnprocessableEntityError("amount must be a positive number").Write(w)
		return
	}
	date, err := ParseExpenseDate(p.Get("date"), s.svc.Now())
	if err != nil {
		UnprocessableEntityError("date must be YYYY-MM-DD, RFC 3339 or epoch milliseconds").Write(w)
		return
	}

	e, err := s.svc.Create(r.Context(), services.CreateInput{
		Title:      p.Get("title"),
		Amount:     amount,
		Category:   p.Get("category"),
		Notes:      p.Get("notes"),
		Date:       date,
		ReceiptURI: p.Get("receipt_uri"),
	})
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			applog.NewStructuredLogger(logger).LogError(r.Context(), "Failed to create expense", err, applog.OpCreate, nil)
			InternalServerError("could not save expense").Write(w)
			return
		}
		ErrorResponse(status, errorMessage(err)).Write(w)
		return
	}

	loc := s.svc.Location()
	NewResponse().
		Status(http.StatusCreated).
		TriggerExpenseCreated(e.ID.String(), e.Date.In(loc).Format(dayLayout)).
		JSON(toDTO(e, loc)).
		Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := s.svc.Get(r.Context(), id)
	if err != nil {
		NotFoundError("expense not found").Write(w)
		return
	}
	NewResponse().JSON(toDTO(e, s.svc.Location())).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Delete(r.Context(), id); err != nil {
		NotFoundError("expense not found").Write(w)
		return
	}
	NewResponse().
		Status(http.StatusNoContent).
		TriggerExpenseDeleted(id.String()).
		Write(w)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	n := s.svc.Clear(r.Context())
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expenses cleared",
		applog.FieldOperation, applog.OpClear,
		applog.FieldCount, n)

	NewResponse().
		TriggerExpensesCleared(n).
		JSON(map[string]int{"removed": n}).
		Write(w)
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		BadRequestError("invalid expense id").Write(w)
		return uuid.Nil, false
	}
	return id, true
}

// errorMessage turns a service error into a client-facing message.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrDuplicate):
		return "an identical expense already exists"
	case errors.Is(err, core.ErrEmptyTitle):
		return "title is required"
	case errors.Is(err, core.ErrInvalidAmount):
		return "amount must be a positive number"
	case errors.Is(err, core.ErrNotesTooLong):
		return "notes must be at most 100 characters"
	case errors.Is(err, core.ErrInvalidDate):
		return "invalid date"
	}
	return err.Error()
}
