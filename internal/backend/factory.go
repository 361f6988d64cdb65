package backend

import (
	"context"
	"fmt"

	applog "smartexpense/internal/log"
	"smartexpense/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
	}
}

// CreateSlot implements Factory.CreateSlot
func (f *DefaultFactory) CreateSlot(ctx context.Context, config Config) (*SlotResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteSlot(config)
	case FileBackend:
		return f.createFileSlot(config)
	case MemoryBackend:
		return f.createMemorySlot()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteSlot(config Config) (*SlotResult, error) {
	slot, err := storage.NewSQLiteSlot(config.SQLiteDBPath, config.SlotName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite slot: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		applog.FieldSlot, config.SlotName)

	return &SlotResult{
		Slot:    slot,
		Cleanup: slot.Close,
	}, nil
}

func (f *DefaultFactory) createFileSlot(config Config) (*SlotResult, error) {
	slot, err := storage.NewFileSlot(config.DataFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file slot: %w", err)
	}

	f.logger.Info("Initialized file backend", "path", config.DataFilePath)

	return &SlotResult{
		Slot:    slot,
		Cleanup: slot.Close,
	}, nil
}

func (f *DefaultFactory) createMemorySlot() (*SlotResult, error) {
	f.logger.Warn("Initialized memory backend, data is lost on exit")

	return &SlotResult{
		Slot:    storage.NewMemorySlot(),
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
