package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
	applog "smartexpense/internal/log"
	"smartexpense/internal/query"
	"smartexpense/internal/store"
)

var (
	// ErrDuplicate is returned when Create matches an existing expense.
	ErrDuplicate = errors.New("duplicate expense")
	// ErrNotFound is returned when Delete finds no expense with the id.
	ErrNotFound = errors.New("expense not found")
)

// ExpenseStore is the subset of the store the service drives.
type ExpenseStore interface {
	Add(e core.Expense) bool
	Delete(id uuid.UUID) bool
	Clear()
	Snapshot() store.Snapshot
	Observe() (<-chan store.Snapshot, func())
	Online() bool
	SetOnline(online bool)
	ToggleOnline() bool
	PersistStatus() store.PersistStatus
	Flush(ctx context.Context) error
}

// CreateInput carries the user-entered fields of a new expense. A zero Date
// means now.
type CreateInput struct {
	Title      string
	Amount     float64
	Category   string
	Notes      string
	Date       time.Time
	ReceiptURI string
}

// ExpenseService is the single place where input is validated before it
// reaches the store, which only deduplicates.
type ExpenseService struct {
	store  ExpenseStore
	logger *applog.StructuredLogger
	loc    *time.Location
	now    func() time.Time
	report *ReportCache
}

type ServiceOption func(*ExpenseService)

func WithLocation(loc *time.Location) ServiceOption {
	return func(s *ExpenseService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *ExpenseService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l *applog.Logger) ServiceOption {
	return func(s *ExpenseService) {
		if l != nil {
			s.logger = applog.NewStructuredLogger(l.WithComponent(applog.ComponentExpense))
		}
	}
}

// WithReportCache memoizes weekly reports.
func WithReportCache(rc *ReportCache) ServiceOption {
	return func(s *ExpenseService) {
		s.report = rc
	}
}

func NewExpenseService(st ExpenseStore, opts ...ServiceOption) *ExpenseService {
	s := &ExpenseService{
		store:  st,
		logger: applog.NewStructuredLogger(applog.Discard()),
		loc:    time.Local,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current time in the service's zone.
func (s *ExpenseService) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *ExpenseService) Location() *time.Location {
	return s.loc
}

// Create validates in and adds it to the store.
func (s *ExpenseService) Create(ctx context.Context, in CreateInput) (core.Expense, error) {
	date := in.Date
	if date.IsZero() {
		date = s.Now()
	}
	e := core.NewExpense(in.Title, in.Amount, in.Category, in.Notes, date, in.ReceiptURI)
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("validate expense: %w", err)
	}

	if !s.store.Add(e) {
		s.logger.LogDuplicateRejected(ctx, e)
		return core.Expense{}, ErrDuplicate
	}
	s.logger.LogExpenseCreated(ctx, e, s.store.Snapshot().Version)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.store.Delete(id) {
		return ErrNotFound
	}
	return nil
}

// Clear removes every expense and returns how many were removed.
func (s *ExpenseService) Clear(ctx context.Context) int {
	n := s.store.Snapshot().Len()
	s.store.Clear()
	return n
}

func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	e, ok := s.store.Snapshot().Find(id)
	if !ok {
		return core.Expense{}, ErrNotFound
	}
	return e, nil
}

func (s *ExpenseService) Snapshot() store.Snapshot {
	return s.store.Snapshot()
}

func (s *ExpenseService) Observe() (<-chan store.Snapshot, func()) {
	return s.store.Observe()
}

func (s *ExpenseService) Categories() []core.Category {
	return core.Categories()
}

// GroupMode selects how List partitions its result.
type GroupMode string

const (
	GroupNone     GroupMode = "none"
	GroupCategory GroupMode = "category"
	GroupTime     GroupMode = "time"
)

func (g GroupMode) IsValid() bool {
	switch g {
	case GroupNone, GroupCategory, GroupTime:
		return true
	}
	return false
}

// ListQuery filters the collection. A zero Date means every day.
type ListQuery struct {
	Date  time.Time
	Text  string
	Group GroupMode
}

type ListResult struct {
	Version  uint64
	Expenses []core.Expense
	Groups   []query.Group
	Summary  query.Summary
}

// List applies the day filter, then the text filter, then grouping.
func (s *ExpenseService) List(ctx context.Context, q ListQuery) (ListResult, error) {
	if q.Group == "" {
		q.Group = GroupNone
	}
	if !q.Group.IsValid() {
		return ListResult{}, fmt.Errorf("unknown group mode %q", q.Group)
	}

	snap := s.store.Snapshot()
	list := snap.Expenses
	if !q.Date.IsZero() {
		list = query.ForDate(list, q.Date.In(s.loc))
	}
	list = query.Search(list, q.Text)

	res := ListResult{
		Version:  snap.Version,
		Expenses: list,
		Summary:  query.Summarize(list),
	}
	switch q.Group {
	case GroupCategory:
		res.Groups = query.GroupByCategory(list)
	case GroupTime:
		res.Groups = query.GroupByHour(list, s.loc)
	}
	return res, nil
}

// TodayTotal returns the amount spent on the current calendar day.
func (s *ExpenseService) TodayTotal(ctx context.Context) float64 {
	return query.TotalForToday(s.store.Snapshot().Expenses, s.Now())
}

// WeeklyReport returns the seven-day report, from the cache when possible.
func (s *ExpenseService) WeeklyReport(ctx context.Context) query.Report {
	snap := s.store.Snapshot()
	now := s.Now()
	if s.report == nil {
		return query.WeeklyReport(snap.Expenses, now)
	}
	return s.report.Get(snap, now)
}

func (s *ExpenseService) Online() bool {
	return s.store.Online()
}

func (s *ExpenseService) SetOnline(ctx context.Context, online bool) bool {
	s.store.SetOnline(online)
	return online
}

func (s *ExpenseService) ToggleOnline(ctx context.Context) bool {
	return s.store.ToggleOnline()
}

// Status describes the store for health and status endpoints.
type Status struct {
	Online        bool
	Version       uint64
	Count         int
	PersistStatus store.PersistStatus
}

func (s *ExpenseService) Status(ctx context.Context) Status {
	snap := s.store.Snapshot()
	return Status{
		Online:        s.store.Online(),
		Version:       snap.Version,
		Count:         snap.Len(),
		PersistStatus: s.store.PersistStatus(),
	}
}

// Flush waits for pending writes.
func (s *ExpenseService) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}
