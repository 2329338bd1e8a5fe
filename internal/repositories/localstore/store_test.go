package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/quince-goods/storefront/internal/domain"
	"github.com/quince-goods/storefront/internal/repositories"
)

func storesUnderTest(t *testing.T) map[string]repositories.CartStore {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "file"), "cartList")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(dir, "cart.db"), "cartList")
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]repositories.CartStore{
		"file":   fileStore,
		"sqlite": sqliteStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoresAbsentSlotIsEmptyCart(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			list, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(list) != 0 {
				t.Fatalf("expected empty cart for absent slot, got %v", list)
			}
		})
	}
}

func TestStoresRoundTripWholeValue(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saved := domain.CartList{
				{ProductID: "p1", Quantity: 2},
				{ProductID: "p2", Quantity: 1},
			}
			if err := store.Save(ctx, saved); err != nil {
				t.Fatalf("save: %v", err)
			}

			loaded, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(loaded) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(loaded))
			}
			if loaded[0] != saved[0] || loaded[1] != saved[1] {
				t.Fatalf("expected %v, got %v", saved, loaded)
			}

			// A second save replaces the whole value, never merges.
			if err := store.Save(ctx, domain.CartList{{ProductID: "p3", Quantity: 4}}); err != nil {
				t.Fatalf("second save: %v", err)
			}
			loaded, err = store.Load(ctx)
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if len(loaded) != 1 || loaded[0].ProductID != "p3" {
				t.Fatalf("expected slot replaced with p3, got %v", loaded)
			}
		})
	}
}

func TestStoresLastWriterWins(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := store.Save(ctx, domain.CartList{{ProductID: "first", Quantity: 1}}); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, domain.CartList{{ProductID: "second", Quantity: 1}}); err != nil {
				t.Fatalf("save: %v", err)
			}
			loaded, err := store.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(loaded) != 1 || loaded[0].ProductID != "second" {
				t.Fatalf("expected last write to win, got %v", loaded)
			}
		})
	}
}

func TestStoresPing(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Ping(context.Background()); err != nil {
				t.Fatalf("ping: %v", err)
			}
		})
	}
}

func TestFileStoreMalformedSlotSurfacesParseError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "cartList")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "cartList.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt slot: %v", err)
	}

	_, err = store.Load(context.Background())
	if err == nil {
		t.Fatal("expected parse error for malformed slot")
	}
}

func TestMemoryStoreMalformedSlotSurfacesParseError(t *testing.T) {
	store := NewMemoryStore()
	store.Corrupt("][")

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected parse error for corrupt slot")
	}
}

func TestFileStoreRequiresDirectory(t *testing.T) {
	if _, err := NewFileStore("  ", "cartList"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "cartList")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := store.Save(ctx, domain.CartList{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
