package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSlots(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		open func(t *testing.T) Slot
	}{
		{
			name: "memory",
			open: func(t *testing.T) Slot { return NewMemorySlot() },
		},
		{
			name: "file",
			open: func(t *testing.T) Slot {
				s, err := NewFileSlot(filepath.Join(t.TempDir(), "nested", "expenses.json"))
				if err != nil {
					t.Fatalf("NewFileSlot: %v", err)
				}
				return s
			},
		},
		{
			name: "sqlite",
			open: func(t *testing.T) Slot {
				s, err := NewSQLiteSlot(filepath.Join(t.TempDir(), "expenses.db"), "expenses_json")
				if err != nil {
					t.Fatalf("NewSQLiteSlot: %v", err)
				}
				return s
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := tt.open(t)
			defer slot.Close()

			if _, ok, err := slot.Load(ctx); err != nil || ok {
				t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
			}

			if err := slot.Save(ctx, `[{"title":"Coffee"}]`); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if err := slot.Save(ctx, `[]`); err != nil {
				t.Fatalf("Save overwrite: %v", err)
			}

			got, ok, err := slot.Load(ctx)
			if err != nil || !ok {
				t.Fatalf("Load: ok=%v err=%v", ok, err)
			}
			if got != `[]` {
				t.Fatalf("expected last saved value, got %q", got)
			}
		})
	}
}

func TestFileSlotLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	slot, err := NewFileSlot(filepath.Join(dir, "expenses.json"))
	if err != nil {
		t.Fatalf("NewFileSlot: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := slot.Save(context.Background(), "x"); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the slot file, found %d entries", len(entries))
	}
}

func TestSQLiteSlotPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "expenses.db")

	first, err := NewSQLiteSlot(path, "expenses_json")
	if err != nil {
		t.Fatalf("NewSQLiteSlot: %v", err)
	}
	if err := first.Save(ctx, "persisted"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first.Close()

	second, err := NewSQLiteSlot(path, "expenses_json")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()

	got, ok, err := second.Load(ctx)
	if err != nil || !ok || got != "persisted" {
		t.Fatalf("expected persisted value, got %q ok=%v err=%v", got, ok, err)
	}
	if at, err := second.UpdatedAt(ctx); err != nil || at.IsZero() {
		t.Fatalf("expected update timestamp, got %v err=%v", at, err)
	}

	other, err := NewSQLiteSlot(path, "other")
	if err != nil {
		t.Fatalf("open other slot: %v", err)
	}
	defer other.Close()
	if _, ok, _ := other.Load(ctx); ok {
		t.Fatal("slots with different names must not share values")
	}
}

func TestClosedSlot(t *testing.T) {
	slot := NewMemorySlot()
	slot.Close()
	if err := slot.Save(context.Background(), "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
