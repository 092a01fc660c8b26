package delta

import (
	"testing"
	"time"

	"bondstream/internal/model"
	"bondstream/internal/store"
)

func newBond(id string, price float64, lastUpdate time.Time) *model.Instrument {
	return &model.Instrument{
		ID:         id,
		Kind:       model.KindBond,
		Symbol:     id,
		Currency:   "USD",
		Sector:     "Treasury",
		Rating:     "AAA",
		Status:     model.StatusActive,
		LastUpdate: lastUpdate,
		Bond: &model.BondFields{
			Price: price,
			Yield: 4,
		},
	}
}

func TestDiffOmitsUnchangedFields(t *testing.T) {
	t.Parallel()
	t0 := time.UnixMilli(1000)
	t1 := time.UnixMilli(1500)

	prev := newBond("A", 100, t0)
	next := newBond("A", 100.5, t1)

	fields := Diff(prev, next)
	if fields[model.FieldPrice] != 100.5 {
		t.Errorf("price = %v, want 100.5", fields[model.FieldPrice])
	}
	if _, ok := fields[model.FieldYield]; ok {
		t.Errorf("yield unchanged, should be omitted: %v", fields)
	}
	if _, ok := fields[model.FieldSymbol]; ok {
		t.Errorf("symbol unchanged, should be omitted: %v", fields)
	}
}

func TestDiffEmptyWhenNothingChanged(t *testing.T) {
	t.Parallel()
	t0 := time.UnixMilli(1000)
	prev := newBond("A", 100, t0)
	next := newBond("A", 100, t0)

	if fields := Diff(prev, next); len(fields) != 0 {
		t.Errorf("Diff = %v, want empty", fields)
	}
}

func TestDiffTimestampComparesAsEpochMillis(t *testing.T) {
	t.Parallel()
	// Same instant, different monotonic reading / Location — UnixMilli must
	// still treat them as equal.
	t0 := time.UnixMilli(5000)
	t0Local := t0.In(time.FixedZone("X", 3600))

	prev := newBond("A", 100, t0)
	next := newBond("A", 100, t0Local)

	if fields := Diff(prev, next); len(fields) != 0 {
		t.Errorf("Diff across equal-instant, different-location times = %v, want empty", fields)
	}
}

type recordingSink struct {
	delivered []model.Delta
}

func (r *recordingSink) Deliver(d model.Delta) {
	r.delivered = append(r.delivered, d)
}

func TestEngineSubmitEmitsAndPublishesOnChange(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newBond("A", 100, time.UnixMilli(1000)))

	sink := &recordingSink{}
	eng := New(st, sink, nil)

	prevPublished, _ := st.PublishedSnapshot("A")
	newState := newBond("A", 101, time.UnixMilli(2000))

	eng.Submit(prevPublished, newState)

	if len(sink.delivered) != 1 {
		t.Fatalf("delivered %d deltas, want 1", len(sink.delivered))
	}
	if sink.delivered[0].Fields[model.FieldPrice] != 101.0 {
		t.Errorf("delta price = %v, want 101", sink.delivered[0].Fields[model.FieldPrice])
	}

	published, _ := st.PublishedSnapshot("A")
	if published.Bond.Price != 101 {
		t.Errorf("published snapshot not advanced: price = %v, want 101", published.Bond.Price)
	}
}

func TestEngineSubmitEmitsNothingWhenUnchanged(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newBond("A", 100, time.UnixMilli(1000)))

	sink := &recordingSink{}
	eng := New(st, sink, nil)

	prevPublished, _ := st.PublishedSnapshot("A")
	same := newBond("A", 100, time.UnixMilli(1000))

	eng.Submit(prevPublished, same)

	if len(sink.delivered) != 0 {
		t.Fatalf("delivered %d deltas, want 0 for an unchanged snapshot", len(sink.delivered))
	}
}
