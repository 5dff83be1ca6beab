package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/suderio/draconic-arena/internal/battle"
)

// ErrSlotNotFound is returned when loading a slot that was never saved.
var ErrSlotNotFound = errors.New("save slot not found")

const schema = `CREATE TABLE IF NOT EXISTS slots (
	name     TEXT PRIMARY KEY,
	saved_at INTEGER NOT NULL,
	turn     INTEGER NOT NULL DEFAULT 0,
	state    BLOB NOT NULL
)`

// SlotInfo describes a saved slot without decoding it.
type SlotInfo struct {
	Name    string
	SavedAt time.Time
	Turn    int
}

// Slots persists battle snapshots in SQLite, one row per named slot.
type Slots struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSlots opens the slot database at path, creating the schema if needed.
// The path ":memory:" keeps everything in process.
func OpenSlots(path string) (*Slots, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A memory database lives only as long as its single connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create slots table: %w", err)
	}
	return &Slots{db: db, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Slots) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes st under name, replacing any earlier save.
func (s *Slots) Save(ctx context.Context, name string, st battle.State) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("slot name is required")
	}
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slots (name, saved_at, turn, state) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET saved_at = excluded.saved_at, turn = excluded.turn, state = excluded.state`,
		name, s.now().UTC().UnixMilli(), st.Turn, blob,
	)
	if err != nil {
		return fmt.Errorf("save slot %s: %w", name, err)
	}
	return nil
}

// Load reads the state saved under name.
func (s *Slots) Load(ctx context.Context, name string) (battle.State, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT state FROM slots WHERE name = ?`, strings.TrimSpace(name)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return battle.State{}, fmt.Errorf("%w: %s", ErrSlotNotFound, name)
	}
	if err != nil {
		return battle.State{}, fmt.Errorf("load slot %s: %w", name, err)
	}
	var st battle.State
	if err := json.Unmarshal(blob, &st); err != nil {
		return battle.State{}, fmt.Errorf("decode slot %s: %w", name, err)
	}
	return st, nil
}

// List returns every slot, most recent first.
func (s *Slots) List(ctx context.Context) ([]SlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, saved_at, turn FROM slots ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []SlotInfo
	for rows.Next() {
		var (
			info SlotInfo
			ms   int64
		)
		if err := rows.Scan(&info.Name, &ms, &info.Turn); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		info.SavedAt = time.UnixMilli(ms).UTC()
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes a slot. Deleting a missing slot is not an error.
func (s *Slots) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete slot %s: %w", name, err)
	}
	return nil
}
