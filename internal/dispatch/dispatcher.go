// Package dispatch is the Dispatcher: for every delta emitted by the Delta
// Engine, it finds interested sessions and admits or drops the delta
// through the pacing and filter gates before handing it to the transport.
package dispatch

import (
	"log/slog"

	"bondstream/internal/filter"
	"bondstream/internal/model"
	"bondstream/internal/registry"
	"bondstream/internal/store"
)

// Transport is the narrow slice of the Transport Adapter the Dispatcher
// depends on. Send returns false if the session's
// outbound queue is full; the Dispatcher treats that exactly like a
// pacing skip — the delta is dropped for that session only.
type Transport interface {
	Send(sessionID string, d model.Delta) bool
}

// Dispatcher implements delta.Sink, so a delta.Engine can Deliver directly
// into it.
type Dispatcher struct {
	store     *store.Store
	registry  *registry.Registry
	transport Transport
	log       *slog.Logger
}

// New creates a Dispatcher wired to the given collaborators.
func New(st *store.Store, reg *registry.Registry, transport Transport, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: st, registry: reg, transport: transport, log: log}
}

// Deliver runs one delta through the admission pipeline: lookup the
// snapshot, enumerate interested sessions, gate each on bucket + pacing +
// predicate, then send. It is called synchronously from the Delta Engine on
// the ticker task, which is what gives the "within one (session,
// instrument) pair, deltas are delivered in emission order" guarantee —
// there is no concurrent fan-out to reorder them.
func (d *Dispatcher) Deliver(delta model.Delta) {
	snapshot, err := d.store.Lookup(delta.InstrumentID)
	if err != nil {
		d.log.Debug("dispatcher: instrument vanished before dispatch", "instrument", delta.InstrumentID)
		return
	}
	fields := snapshot.ToFieldMap()

	for _, sessionID := range d.registry.LookupInterested(delta.InstrumentID) {
		if !d.registry.Admit(sessionID, delta.InstrumentID) {
			continue // token bucket empty or pacing interval not elapsed
		}

		if !d.matchesAnySubscription(sessionID, delta.InstrumentID, fields) {
			continue
		}

		if !d.transport.Send(sessionID, delta) {
			d.log.Debug("dispatcher: send-queue full, dropping delta", "session", sessionID, "instrument", delta.InstrumentID)
		}
	}
}

func (d *Dispatcher) matchesAnySubscription(sessionID, instrumentID string, fields map[string]any) bool {
	for _, sub := range d.registry.MatchingSubscriptions(sessionID, instrumentID) {
		if filter.Evaluate(sub.Predicate, fields, d.log) {
			return true
		}
	}
	return false
}
