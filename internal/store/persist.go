package store

import (
	"context"
	"errors"
	"time"

	applog "smartexpense/internal/log"
)

// persistTimeout bounds a single slot write.
const persistTimeout = 10 * time.Second

// ErrClosed is returned by Flush once the writer has stopped with writes
// still outstanding.
var ErrClosed = errors.New("store closed")

// PersistStatus describes the most recent write attempt. Version is the
// snapshot version that was written; Err is nil when it succeeded.
type PersistStatus struct {
	Version uint64
	Err     error
	At      time.Time
}

// PersistStatus returns the outcome of the latest write.
func (s *Store) PersistStatus() PersistStatus {
	return s.status.Get()
}

// ObservePersist subscribes to write outcomes.
func (s *Store) ObservePersist() (<-chan PersistStatus, func()) {
	return s.status.Subscribe()
}

// schedulePersist wakes the writer. Pending wake-ups coalesce.
func (s *Store) schedulePersist() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// runWriter is the only goroutine writing to the slot, so writes happen in
// issue order and the newest snapshot is always written last.
func (s *Store) runWriter() {
	defer close(s.doneCh)

	for {
		select {
		case <-s.wake:
			s.persistLatest()
		case <-s.stopCh:
			s.persistLatest()
			return
		}
	}
}

func (s *Store) persistLatest() {
	snap := s.state.Get()
	if snap.Version <= s.status.Get().Version {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	start := time.Now()
	blob, err := Encode(snap.Expenses)
	if err == nil {
		err = s.slot.Save(ctx, blob)
	}
	s.status.Set(PersistStatus{Version: snap.Version, Err: err, At: s.now()})

	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist expenses",
			applog.FieldOperation, applog.OpPersist,
			applog.FieldSnapshotVersion, snap.Version,
			applog.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Expenses persisted",
		applog.FieldOperation, applog.OpPersist,
		applog.FieldSnapshotVersion, snap.Version,
		applog.FieldCount, len(snap.Expenses),
		applog.FieldDuration, time.Since(start).Milliseconds())
}

// Flush waits until the snapshot current at call time has been written and
// returns that write's error.
func (s *Store) Flush(ctx context.Context) error {
	target := s.state.Get().Version

	ch, cancel := s.status.Subscribe()
	defer cancel()

	s.schedulePersist()
	for {
		select {
		case st := <-ch:
			if st.Version >= target {
				return st.Err
			}
		case <-s.doneCh:
			if st := s.status.Get(); st.Version >= target {
				return st.Err
			}
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close flushes outstanding writes and stops the writer. The slot itself is
// left open for its owner to close.
func (s *Store) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.stopCh)
	})
	select {
	case <-s.doneCh:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	if err != nil {
		s.logger.Warn("Store closed with unpersisted changes",
			applog.FieldOperation, applog.OpShutdown, applog.FieldError, err)
	}
	return err
}
