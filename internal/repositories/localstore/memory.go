package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
)

// MemoryStore holds the slot value in memory. It round-trips values through
// JSON so it behaves exactly like the persistent backends, which makes it the
// store of choice for tests.
type MemoryStore struct {
	mu      sync.Mutex
	raw     []byte
	present bool
}

var _ repositories.CartStore = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the current slot value, or an empty list when nothing has been
// saved yet.
func (s *MemoryStore) Load(ctx context.Context) (domain.CartList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		return domain.CartList{}, nil
	}
	var list domain.CartList
	if err := json.Unmarshal(s.raw, &list); err != nil {
		return nil, fmt.Errorf("localstore: decode slot: %w", err)
	}
	return list, nil
}

// Save replaces the slot value.
func (s *MemoryStore) Save(ctx context.Context, list domain.CartList) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if list == nil {
		list = domain.CartList{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("localstore: encode slot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = raw
	s.present = true
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Corrupt overwrites the slot with non-JSON content. Tests use it to exercise
// the malformed-slot path.
func (s *MemoryStore) Corrupt(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw = []byte(content)
	s.present = true
}
