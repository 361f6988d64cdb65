// Package storage provides durable named slots. A slot holds one UTF-8
// string, typically the JSON snapshot of the expense collection.
package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed slot.
var ErrClosed = errors.New("slot closed")

// Slot is a single durable string value. Load reports ok=false when nothing
// has been saved yet.
type Slot interface {
	Load(ctx context.Context) (value string, ok bool, err error)
	Save(ctx context.Context, value string) error
	Close() error
}

// MemorySlot keeps the value in process memory. Used for tests and for the
// ephemeral backend.
type MemorySlot struct {
	mu     sync.RWMutex
	value  string
	set    bool
	closed bool
	saves  int
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// NewMemorySlotWithValue returns a slot pre-populated with value.
func NewMemorySlotWithValue(value string) *MemorySlot {
	return &MemorySlot{value: value, set: true}
}

func (m *MemorySlot) Load(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	return m.value, m.set, nil
}

func (m *MemorySlot) Save(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.value = value
	m.set = true
	m.saves++
	return nil
}

func (m *MemorySlot) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemorySlot) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
