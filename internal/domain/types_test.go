package domain

import (
	"testing"
	"time"
)

func TestCartListUpsertReplacesExistingEntry(t *testing.T) {
	list := CartList{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	updated := list.Upsert(CartEntry{ProductID: "p1", Quantity: 5})

	if len(updated) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(updated))
	}
	entry, ok := updated.Find("p1")
	if !ok {
		t.Fatal("expected entry for p1")
	}
	if entry.Quantity != 5 {
		t.Fatalf("expected quantity overwritten to 5, got %d", entry.Quantity)
	}
	if original, _ := list.Find("p1"); original.Quantity != 2 {
		t.Fatalf("expected original list untouched, got quantity %d", original.Quantity)
	}
}

func TestCartListUpsertAppendsNewEntry(t *testing.T) {
	var list CartList

	updated := list.Upsert(CartEntry{ProductID: "p9", Quantity: 3})

	if len(updated) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(updated))
	}
	if entry, ok := updated.Find("p9"); !ok || entry.Quantity != 3 {
		t.Fatalf("expected p9 with quantity 3, got %+v ok=%v", entry, ok)
	}
}

func TestCartListRemove(t *testing.T) {
	list := CartList{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

	updated := list.Remove("p1")
	if _, ok := updated.Find("p1"); ok {
		t.Fatal("expected p1 removed")
	}
	if _, ok := updated.Find("p2"); !ok {
		t.Fatal("expected p2 kept")
	}

	same := updated.Remove("missing")
	if len(same) != 1 {
		t.Fatalf("expected removal of absent entry to be a no-op, got %d entries", len(same))
	}
}

func TestSortReviewsNewestFirst(t *testing.T) {
	reviews := []Review{
		{ID: "a", CreatedAt: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", CreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "c", CreatedAt: time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC)},
	}

	SortReviewsNewestFirst(reviews)

	got := []string{reviews[0].ID, reviews[1].ID, reviews[2].ID}
	want := []string{"b", "a", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSortReviewsNewestFirstStableOnTies(t *testing.T) {
	ts := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	reviews := []Review{
		{ID: "first", CreatedAt: ts},
		{ID: "second", CreatedAt: ts},
		{ID: "newer", CreatedAt: ts.Add(time.Hour)},
	}

	SortReviewsNewestFirst(reviews)

	if reviews[0].ID != "newer" {
		t.Fatalf("expected newer first, got %s", reviews[0].ID)
	}
	if reviews[1].ID != "first" || reviews[2].ID != "second" {
		t.Fatalf("expected ties to keep relative order, got %s then %s", reviews[1].ID, reviews[2].ID)
	}
}

func TestPanelViewFor(t *testing.T) {
	cases := []struct {
		name      string
		available int
		inCart    bool
		want      PanelView
	}{
		{name: "out of stock wins", available: 0, inCart: true, want: PanelOutOfStock},
		{name: "negative stock", available: -1, inCart: false, want: PanelOutOfStock},
		{name: "purchasable", available: 3, inCart: false, want: PanelNotInCart},
		{name: "already added", available: 3, inCart: true, want: PanelInCart},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PanelViewFor(tc.available, tc.inCart); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestQuantityOptions(t *testing.T) {
	if opts := QuantityOptions(0); opts != nil {
		t.Fatalf("expected no options for zero stock, got %v", opts)
	}
	opts := QuantityOptions(4)
	if len(opts) != 4 || opts[0] != 1 || opts[3] != 4 {
		t.Fatalf("expected 1..4, got %v", opts)
	}
}
