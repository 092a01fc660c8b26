// Package store holds the authoritative in-memory instrument catalog.
//
// A top-level map lock guards which instruments exist, and a
// per-instrument mutex guards that instrument's current/published pair so a
// writer mutating one instrument never blocks a reader of another for
// longer than an O(1) critical section.
package store

import (
	"fmt"
	"sync"

	"bondstream/internal/model"
)

// entry pairs the live, continuously-mutated state ("current") with the
// last state the Delta Engine published from ("published"). Both start
// out equal at instrument creation.
type entry struct {
	mu        sync.RWMutex
	current   *model.Instrument
	published *model.Instrument
}

// Store is the authoritative instrument catalog. All exported methods are
// safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	byID map[string]*entry
}

// New creates an empty instrument store.
func New() *Store {
	return &Store{byID: make(map[string]*entry)}
}

// Insert adds a new instrument. Returns model.ErrAlreadyExists if the id is
// already present.
func (s *Store) Insert(inst *model.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[inst.ID]; ok {
		return fmt.Errorf("insert %q: %w", inst.ID, model.ErrAlreadyExists)
	}

	cur := inst.Clone()
	pub := inst.Clone()
	s.byID[inst.ID] = &entry{current: cur, published: pub}
	return nil
}

// Remove deletes an instrument. Returns model.ErrNotFound if the id is absent.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return fmt.Errorf("remove %q: %w", id, model.ErrNotFound)
	}
	delete(s.byID, id)
	return nil
}

// Lookup returns a deep copy of the current state of one instrument.
func (s *Store) Lookup(id string) (*model.Instrument, error) {
	e, ok := s.entryFor(id)
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", id, model.ErrNotFound)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.Clone(), nil
}

// ListAll returns a deep copy of every instrument's current state. Each
// instrument's copy is internally consistent; there is no cross-instrument
// atomicity guarantee, matching the "all-or-none per instrument" contract.
func (s *Store) ListAll() []*model.Instrument {
	return s.listWhere(func(*model.Instrument) bool { return true })
}

// ListByKind returns instruments with the given discriminant.
func (s *Store) ListByKind(kind model.InstrumentKind) []*model.Instrument {
	return s.listWhere(func(i *model.Instrument) bool { return i.Kind == kind })
}

// ListByCurrency returns instruments quoted in the given currency.
func (s *Store) ListByCurrency(currency string) []*model.Instrument {
	return s.listWhere(func(i *model.Instrument) bool { return i.Currency == currency })
}

// ListByStatus returns instruments in the given lifecycle status.
func (s *Store) ListByStatus(status model.InstrumentStatus) []*model.Instrument {
	return s.listWhere(func(i *model.Instrument) bool { return i.Status == status })
}

// ListByRating returns instruments with the given credit rating.
func (s *Store) ListByRating(rating string) []*model.Instrument {
	return s.listWhere(func(i *model.Instrument) bool { return i.Rating == rating })
}

func (s *Store) listWhere(pred func(*model.Instrument) bool) []*model.Instrument {
	ids := s.snapshotIDs()
	out := make([]*model.Instrument, 0, len(ids))
	for _, id := range ids {
		e, ok := s.entryFor(id)
		if !ok {
			continue // removed concurrently between snapshotIDs and here
		}
		e.mu.RLock()
		cur := e.current
		if pred(cur) {
			out = append(out, cur.Clone())
		}
		e.mu.RUnlock()
	}
	return out
}

func (s *Store) snapshotIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) entryFor(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	return e, ok
}

// UpdateMerge merge-updates an instrument's current state field-by-field.
// Used by the admin API's PATCH route. Returns model.ErrNotFound if the id
// is absent.
func (s *Store) UpdateMerge(id string, fields map[string]any) error {
	e, ok := s.entryFor(id)
	if !ok {
		return fmt.Errorf("update %q: %w", id, model.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current.ApplyFieldMap(fields)
	return nil
}

// Mutate runs fn with exclusive access to one instrument's current state.
// fn must not block or call back into the Store — the critical section is
// meant to stay O(1).
func (s *Store) Mutate(id string, fn func(cur *model.Instrument)) error {
	e, ok := s.entryFor(id)
	if !ok {
		return fmt.Errorf("mutate %q: %w", id, model.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.current)
	return nil
}

// TakeCurrentSnapshot returns a deep copy of the current state, for handing
// to the Delta Engine alongside the published baseline.
func (s *Store) TakeCurrentSnapshot(id string) (*model.Instrument, error) {
	e, ok := s.entryFor(id)
	if !ok {
		return nil, fmt.Errorf("snapshot %q: %w", id, model.ErrNotFound)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current.Clone(), nil
}

// PublishedSnapshot returns a deep copy of the last-published baseline.
func (s *Store) PublishedSnapshot(id string) (*model.Instrument, error) {
	e, ok := s.entryFor(id)
	if !ok {
		return nil, fmt.Errorf("published snapshot %q: %w", id, model.ErrNotFound)
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.published.Clone(), nil
}

// ReplacePublishedSnapshot atomically swaps the published baseline for a
// deep copy of newState. Called by the Delta Engine immediately after it
// emits a non-empty delta.
func (s *Store) ReplacePublishedSnapshot(id string, newState *model.Instrument) error {
	e, ok := s.entryFor(id)
	if !ok {
		return fmt.Errorf("replace published %q: %w", id, model.ErrNotFound)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.published = newState.Clone()
	return nil
}

// Exists reports whether id is present, without copying the instrument.
func (s *Store) Exists(id string) bool {
	_, ok := s.entryFor(id)
	return ok
}

// Len returns the number of instruments currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
