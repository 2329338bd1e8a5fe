package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
)

// SQLiteStore persists slots in a single SQLite table of JSON payloads. It
// keeps the same one-slot, whole-value semantics as the file store but
// survives concurrent process access better than a bare file.
type SQLiteStore struct {
	db   *sql.DB
	slot string
	mu   sync.Mutex
}

var _ repositories.CartStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating when needed) the database at path and
// prepares the slot table.
func NewSQLiteStore(path, slot string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("localstore: sqlite path is required")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = DefaultSlot
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("localstore: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localstore: open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("localstore: create slots table: %w", err)
	}
	return &SQLiteStore{db: db, slot: slot}, nil
}

// Load reads the slot row. A missing row is an empty cart.
func (s *SQLiteStore) Load(ctx context.Context) (domain.CartList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM slots WHERE name = ?`, s.slot).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CartList{}, nil
		}
		return nil, wrapError("localstore: select slot", err)
	}

	var list domain.CartList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("localstore: decode slot %q: %w", s.slot, err)
	}
	return list, nil
}

// Save upserts the slot row with the whole serialized list.
func (s *SQLiteStore) Save(ctx context.Context, list domain.CartList) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list == nil {
		list = domain.CartList{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("localstore: encode slot %q: %w", s.slot, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slots(name, payload) VALUES(?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload`,
		s.slot, raw)
	if err != nil {
		return wrapError("localstore: upsert slot", err)
	}
	return nil
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return wrapError("localstore: ping", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
