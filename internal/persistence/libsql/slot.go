// Package libsql stores the plan slot in a libSQL (sqld or Turso) database.
package libsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const schema = `CREATE TABLE IF NOT EXISTS plan_slots (
    slot_key   TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// Slot implements planstore.Slot on a single libSQL table.
type Slot struct {
	db *sql.DB
}

// Open connects to url (http://, https://, libsql:// or ws://) and creates the table if needed.
func Open(ctx context.Context, url string) (*Slot, error) {
	db, err := sql.Open("libsql", url)
	if err != nil {
		return nil, fmt.Errorf("open libsql %s: %w", url, err)
	}
	slot, err := NewSlot(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return slot, nil
}

// NewSlot wraps an existing handle and creates the table if needed.
func NewSlot(ctx context.Context, db *sql.DB) (*Slot, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("initialize plan_slots: %w", err)
	}
	return &Slot{db: db}, nil
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM plan_slots WHERE slot_key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(payload), true, nil
}

func (s *Slot) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_slots (slot_key, payload, updated_at) VALUES (?, ?, ?)
         ON CONFLICT (slot_key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM plan_slots WHERE slot_key = ?`, key)
	return err
}

// Close releases the database handle.
func (s *Slot) Close() error {
	return s.db.Close()
}
