// Package cache mirrors the last successfully fetched record list so the
// map can render before the network answers.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/joeblew999/plat-soundmap/internal/markers"
)

// MarkersKey is the slot holding the last fetched record list.
const MarkersKey = "min_ak_markers"

// Slot is one key of the cache_slots table.
type Slot struct {
	db  *sql.DB
	key string
	now func() time.Time
}

// NewSlot binds key in db. The cache_slots table must exist.
func NewSlot(db *sql.DB, key string) *Slot {
	return &Slot{db: db, key: key, now: time.Now}
}

// Key returns the slot key.
func (s *Slot) Key() string { return s.key }

// Load returns the cached records. ok is false when the slot is empty.
// A slot holding unreadable JSON is reported as an error.
func (s *Slot) Load(ctx context.Context) (recs []markers.Record, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM cache_slots WHERE key = ?`, s.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache %s: %w", s.key, err)
	}
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, false, fmt.Errorf("cache %s: corrupt value: %w", s.key, err)
	}
	return recs, true, nil
}

// Store overwrites the slot with recs.
func (s *Slot) Store(ctx context.Context, recs []markers.Record) error {
	if recs == nil {
		recs = []markers.Record{}
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("cache %s: %w", s.key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_slots (key, value, updated_at) VALUES (?, ?, ?)`,
		s.key, string(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("cache %s: %w", s.key, err)
	}
	return nil
}

// UpdatedAt returns when the slot was last written.
func (s *Slot) UpdatedAt(ctx context.Context) (time.Time, bool, error) {
	var at time.Time
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM cache_slots WHERE key = ?`, s.key).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cache %s: %w", s.key, err)
	}
	return at, true, nil
}

// Clear empties the slot.
func (s *Slot) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_slots WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("cache %s: %w", s.key, err)
	}
	return nil
}
