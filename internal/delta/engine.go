// Package delta is the Delta Engine: it reduces a (previous-published,
// new-state) instrument pair to the minimal set of changed fields,
// publishes the new baseline, and forwards non-empty deltas downstream.
package delta

import (
	"log/slog"
	"time"

	"bondstream/internal/model"
	"bondstream/internal/store"
)

// Sink receives every delta with at least one changed field. The
// Dispatcher is the production implementation.
type Sink interface {
	Deliver(d model.Delta)
}

// Engine implements simulator.Sink, so a Generator can Submit directly
// into it without either package importing the other's concrete type.
type Engine struct {
	store *store.Store
	out   Sink
	log   *slog.Logger

	// clock is overridable in tests; defaults to time.Now.
	clock func() time.Time
}

// New creates a Delta Engine that publishes accepted snapshots back into
// st and forwards emitted deltas to out.
func New(st *store.Store, out Sink, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{store: st, out: out, log: log, clock: time.Now}
}

// Submit compares newState against prevPublished field-by-field. If any
// field changed, it emits a delta and atomically advances the store's
// published snapshot to newState; otherwise it emits nothing and leaves
// published untouched.
func (e *Engine) Submit(prevPublished, newState *model.Instrument) {
	fields := Diff(prevPublished, newState)
	if len(fields) == 0 {
		return
	}

	if err := e.store.ReplacePublishedSnapshot(newState.ID, newState); err != nil {
		e.log.Warn("delta engine: publish snapshot", "instrument", newState.ID, "err", err)
		return
	}

	e.out.Deliver(model.Delta{
		InstrumentID: newState.ID,
		Timestamp:    e.clock(),
		Fields:       fields,
	})
}

// Diff returns the fields present in newState whose value differs from
// prev: timestamps compare as epoch-millisecond integers, arrays compare
// element-wise, and everything else compares with floating-point/string/
// bool ==.
func Diff(prev, next *model.Instrument) map[string]any {
	prevFields := prev.ToFieldMap()
	nextFields := next.ToFieldMap()

	changed := make(map[string]any)
	for name, nv := range nextFields {
		pv, existed := prevFields[name]
		if !existed || !valuesEqual(pv, nv) {
			changed[name] = nv
		}
	}
	return changed
}

func valuesEqual(a, b any) bool {
	at, aok := a.(time.Time)
	bt, bok := b.(time.Time)
	if aok || bok {
		if aok != bok {
			return false
		}
		return at.UnixMilli() == bt.UnixMilli()
	}

	aArr, aIsArr := a.([]any)
	bArr, bIsArr := b.([]any)
	if aIsArr || bIsArr {
		if aIsArr != bIsArr || len(aArr) != len(bArr) {
			return false
		}
		for i := range aArr {
			if !valuesEqual(aArr[i], bArr[i]) {
				return false
			}
		}
		return true
	}

	return a == b
}
