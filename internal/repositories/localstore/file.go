package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
)

// DefaultSlot is the slot name the storefront persists its cart under.
const DefaultSlot = "cartList"

// FileStore keeps each slot as a JSON file inside a directory. It is the
// file-system analogue of the browser's local storage: one named slot, one
// whole value, last writer wins.
type FileStore struct {
	dir  string
	slot string
	mu   sync.Mutex
}

var _ repositories.CartStore = (*FileStore)(nil)

// NewFileStore constructs a FileStore rooted at dir using the given slot
// name. The directory is created when missing.
func NewFileStore(dir, slot string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("localstore: directory is required")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = DefaultSlot
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("localstore: create directory: %w", err)
	}
	return &FileStore{dir: dir, slot: slot}, nil
}

func (s *FileStore) path() string {
	return filepath.Join(s.dir, s.slot+".json")
}

// Load reads the slot file. A missing file is an empty cart.
func (s *FileStore) Load(ctx context.Context) (domain.CartList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CartList{}, nil
		}
		return nil, wrapError("localstore: read slot", err)
	}

	var list domain.CartList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("localstore: decode slot %q: %w", s.slot, err)
	}
	return list, nil
}

// Save replaces the slot value. The file is written whole via a temporary
// file and rename so readers never observe a partial value from this process;
// concurrent external writers still race (last writer wins).
func (s *FileStore) Save(ctx context.Context, list domain.CartList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if list == nil {
		list = domain.CartList{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("localstore: encode slot %q: %w", s.slot, err)
	}

	tmp, err := os.CreateTemp(s.dir, s.slot+"-*.tmp")
	if err != nil {
		return wrapError("localstore: write slot", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return wrapError("localstore: write slot", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return wrapError("localstore: write slot", err)
	}
	if err := os.Rename(tmpName, s.path()); err != nil {
		_ = os.Remove(tmpName)
		return wrapError("localstore: write slot", err)
	}
	return nil
}

// Ping verifies the backing directory is accessible.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := os.Stat(s.dir); err != nil {
		return wrapError("localstore: ping", err)
	}
	return nil
}
