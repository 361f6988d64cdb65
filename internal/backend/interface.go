package backend

import (
	"context"

	"smartexpense/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SlotResult contains the slot instance and optional cleanup function
type SlotResult struct {
	Slot    storage.Slot
	Cleanup CleanupFunc
}

// Factory creates durable slots based on configuration
type Factory interface {
	CreateSlot(ctx context.Context, config Config) (*SlotResult, error)
}

// Config holds configuration for slot creation
type Config struct {
	Type BackendType

	// Name of the slot holding the expense snapshot
	SlotName string

	// File specific
	DataFilePath string

	// SQLite specific
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	FileBackend   BackendType = "file"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, FileBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
