package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"bondstream/internal/model"
)

func newTestInstrument(id string) *model.Instrument {
	return &model.Instrument{
		ID:         id,
		Kind:       model.KindBond,
		Symbol:     id,
		Currency:   "USD",
		Sector:     "Treasury",
		Rating:     "AAA",
		Status:     model.StatusActive,
		LastUpdate: time.UnixMilli(1000),
		Bond: &model.BondFields{
			Price: 100,
			Yield: 4.0,
		},
	}
}

func TestInsertAndLookup(t *testing.T) {
	t.Parallel()
	s := New()

	if err := s.Insert(newTestInstrument("US10Y")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := s.Lookup("US10Y")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Bond.Price != 100 {
		t.Errorf("Price = %v, want 100", got.Bond.Price)
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	t.Parallel()
	s := New()
	_ = s.Insert(newTestInstrument("US10Y"))

	err := s.Insert(newTestInstrument("US10Y"))
	if !errors.Is(err, model.ErrAlreadyExists) {
		t.Fatalf("Insert duplicate: got %v, want ErrAlreadyExists", err)
	}
}

func TestLookupMissingFails(t *testing.T) {
	t.Parallel()
	s := New()
	_, err := s.Lookup("nope")
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Lookup missing: got %v, want ErrNotFound", err)
	}
}

func TestRemoveErasesInstrument(t *testing.T) {
	t.Parallel()
	s := New()
	_ = s.Insert(newTestInstrument("US10Y"))

	if err := s.Remove("US10Y"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists("US10Y") {
		t.Error("instrument still present after Remove")
	}
	if err := s.Remove("US10Y"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("second Remove: got %v, want ErrNotFound", err)
	}
}

func TestListByKindFiltersConsistently(t *testing.T) {
	t.Parallel()
	s := New()
	_ = s.Insert(newTestInstrument("US10Y"))

	future := newTestInstrument("ZN-U23")
	future.Kind = model.KindFuture
	future.Bond = nil
	future.Future = &model.FutureFields{Price: 110}
	_ = s.Insert(future)

	bonds := s.ListByKind(model.KindBond)
	if len(bonds) != 1 || bonds[0].ID != "US10Y" {
		t.Fatalf("ListByKind(Bond) = %+v, want only US10Y", bonds)
	}
}

func TestReplacePublishedSnapshotIsIndependentOfCurrent(t *testing.T) {
	t.Parallel()
	s := New()
	_ = s.Insert(newTestInstrument("US10Y"))

	cur, _ := s.TakeCurrentSnapshot("US10Y")
	cur.Bond.Price = 99
	_ = s.ReplacePublishedSnapshot("US10Y", cur)

	// Mutate current independently; published must not follow.
	_ = s.Mutate("US10Y", func(i *model.Instrument) { i.Bond.Price = 50 })

	pub, _ := s.PublishedSnapshot("US10Y")
	if pub.Bond.Price != 99 {
		t.Errorf("published price = %v, want 99 (unaffected by later current mutation)", pub.Bond.Price)
	}
}

func TestConcurrentMutateDoesNotBlockOtherInstruments(t *testing.T) {
	t.Parallel()
	s := New()
	_ = s.Insert(newTestInstrument("A"))
	_ = s.Insert(newTestInstrument("B"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.Mutate("A", func(inst *model.Instrument) { inst.Bond.Price++ })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = s.Mutate("B", func(inst *model.Instrument) { inst.Bond.Price++ })
		}
	}()
	wg.Wait()

	a, _ := s.Lookup("A")
	b, _ := s.Lookup("B")
	if a.Bond.Price != 1100 || b.Bond.Price != 1100 {
		t.Errorf("prices = %v, %v, want 1100, 1100", a.Bond.Price, b.Bond.Price)
	}
}
