// Package store owns the canonical, insertion-ordered expense collection.
//
// Every change publishes a new immutable Snapshot to observers and schedules
// an asynchronous write of the whole collection to a durable storage.Slot.
// The store deduplicates on insert but does not validate records; callers
// validate before Add.
package store

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"smartexpense/internal/core"
	applog "smartexpense/internal/log"
	"smartexpense/internal/observable"
	"smartexpense/internal/storage"
)

// amountEpsilon is the largest amount difference still treated as equal.
const amountEpsilon = 0.0001

// Snapshot is one published state of the collection. Expenses must not be
// modified by readers.
type Snapshot struct {
	Version  uint64
	Expenses []core.Expense
}

// Len returns the number of records.
func (s Snapshot) Len() int {
	return len(s.Expenses)
}

// Find returns the record with the given id.
func (s Snapshot) Find(id uuid.UUID) (core.Expense, bool) {
	for _, e := range s.Expenses {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

type Store struct {
	slot   storage.Slot
	logger *applog.Logger
	now    func() time.Time
	loc    *time.Location

	// mu serializes initialization and mutations.
	mu          sync.Mutex
	initialized bool

	state  *observable.Value[Snapshot]
	online *observable.Value[bool]
	status *observable.Value[PersistStatus]

	wake      chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	closeOnce sync.Once
	closed    bool
}

type Option func(*Store)

func WithLogger(l *applog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for persist timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone whose calendar days the duplicate rule compares.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// New creates a store backed by slot and starts its background writer.
// Call Close to flush and stop it.
func New(slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:   slot,
		logger: applog.New(applog.DefaultConfig()),
		now:    time.Now,
		loc:    time.Local,
		state:  observable.New(Snapshot{}),
		online: observable.New(false),
		status: observable.New(PersistStatus{}),
		wake:   make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentStore)

	go s.runWriter()
	return s
}

// Initialize loads the persisted collection once. A missing, empty or
// corrupt blob yields an empty collection and is only logged. Later calls
// are no-ops.
func (s *Store) Initialize(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(ctx)
}

func (s *Store) initLocked(ctx context.Context) {
	if s.initialized {
		return
	}
	s.initialized = true

	expenses := s.load(ctx)
	snap := Snapshot{Version: s.state.Get().Version + 1, Expenses: expenses}
	s.status.Set(PersistStatus{Version: snap.Version, At: s.now()})
	s.state.Set(snap)

	s.logger.InfoContext(ctx, "Expense store initialized",
		applog.FieldCount, len(expenses),
		applog.FieldSnapshotVersion, snap.Version)
}

func (s *Store) load(ctx context.Context) []core.Expense {
	blob, ok, err := s.slot.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load persisted expenses, starting empty",
			applog.FieldOperation, applog.OpLoad, applog.FieldError, err)
		return nil
	}
	if !ok || strings.TrimSpace(blob) == "" {
		return nil
	}
	expenses, err := Decode(blob)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted expenses are corrupt, starting empty",
			applog.FieldOperation, applog.OpLoad, applog.FieldError, err)
		return nil
	}
	return dedupeIDs(expenses)
}

// dedupeIDs keeps ids unique in data written by older or foreign versions.
func dedupeIDs(expenses []core.Expense) []core.Expense {
	seen := make(map[uuid.UUID]struct{}, len(expenses))
	for i := range expenses {
		if _, dup := seen[expenses[i].ID]; dup || expenses[i].ID == uuid.Nil {
			expenses[i].ID = uuid.New()
		}
		seen[expenses[i].ID] = struct{}{}
	}
	return expenses
}

// Initialized reports whether the initial load has happened.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Add appends e unless it duplicates an existing record, reporting whether
// it was inserted. A record reusing an existing id is rejected too; a nil id
// is replaced with a fresh one. A NaN or infinite amount cannot be encoded
// and is refused.
func (s *Store) Add(e core.Expense) bool {
	if !core.IsFiniteAmount(e.Amount) {
		s.logger.Warn("Refusing expense with non-finite amount",
			applog.FieldExpenseID, e.ID.String(),
			applog.FieldOperation, applog.OpCreate)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())

	cur := s.state.Get()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	for _, existing := range cur.Expenses {
		if existing.ID == e.ID || s.isDuplicate(existing, e) {
			return false
		}
	}

	next := make([]core.Expense, len(cur.Expenses), len(cur.Expenses)+1)
	copy(next, cur.Expenses)
	next = append(next, e)
	s.publishLocked(next)
	return true
}

// isDuplicate applies the insert dedup rule: same calendar day, same
// trimmed title ignoring case, same category, amounts within amountEpsilon
// and the same receipt reference.
func (s *Store) isDuplicate(a, b core.Expense) bool {
	return core.SameDay(a.Date, b.Date, s.loc) &&
		strings.EqualFold(strings.TrimSpace(a.Title), strings.TrimSpace(b.Title)) &&
		a.Category == b.Category &&
		math.Abs(a.Amount-b.Amount) < amountEpsilon &&
		a.ReceiptURI == b.ReceiptURI
}

// Delete removes the record with id, reporting whether one was removed.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())

	cur := s.state.Get()
	idx := -1
	for i, e := range cur.Expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	next := make([]core.Expense, 0, len(cur.Expenses)-1)
	next = append(next, cur.Expenses[:idx]...)
	next = append(next, cur.Expenses[idx+1:]...)
	s.publishLocked(next)
	return true
}

// Clear empties the collection unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked(context.Background())

	s.publishLocked(nil)
}

// publishLocked replaces the snapshot and schedules a persist.
func (s *Store) publishLocked(expenses []core.Expense) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	snap := s.state.Update(func(cur Snapshot) Snapshot {
		return Snapshot{Version: cur.Version + 1, Expenses: expenses}
	})
	if s.closed {
		s.logger.Warn("Store is closed, change kept in memory only",
			applog.FieldSnapshotVersion, snap.Version)
		return
	}
	s.schedulePersist()
}

// Snapshot returns the current state without blocking on storage.
func (s *Store) Snapshot() Snapshot {
	return s.state.Get()
}

// Observe subscribes to snapshots. The current one is delivered first; a slow
// reader only ever sees the newest. Call cancel to unsubscribe.
func (s *Store) Observe() (<-chan Snapshot, func()) {
	return s.state.Subscribe()
}

// Online returns the connectivity flag. It has no effect on the store.
func (s *Store) Online() bool {
	return s.online.Get()
}

func (s *Store) SetOnline(online bool) {
	s.online.Set(online)
}

// ToggleOnline flips the flag and returns the new value.
func (s *Store) ToggleOnline() bool {
	return s.online.Update(func(cur bool) bool { return !cur })
}

func (s *Store) ObserveOnline() (<-chan bool, func()) {
	return s.online.Subscribe()
}
