package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSlot stores the value as one row of the slots table.
type SQLiteSlot struct {
	db   *sql.DB
	name string
	now  func() time.Time
}

func NewSQLiteSlot(dbPath, name string) (*SQLiteSlot, error) {
	if name == "" {
		return nil, errors.New("slot name is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("SQLite slot ready", "path", dbPath, "slot", name)

	return &SQLiteSlot{db: db, name: name, now: time.Now}, nil
}

func (s *SQLiteSlot) Load(ctx context.Context) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM slots WHERE name = ?`, s.name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load slot %q: %w", s.name, err)
	}
	return value, true, nil
}

func (s *SQLiteSlot) Save(ctx context.Context, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("save slot %q: %w", s.name, err)
	}
	return nil
}

// UpdatedAt returns when the slot was last written, or the zero time.
func (s *SQLiteSlot) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM slots WHERE name = ?`, s.name).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read slot timestamp: %w", err)
	}
	return time.UnixMilli(ms), nil
}

func (s *SQLiteSlot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
