package dispatch

import (
	"testing"
	"time"

	"bondstream/internal/model"
	"bondstream/internal/registry"
	"bondstream/internal/store"
)

func newTestInstrument(id string) *model.Instrument {
	return &model.Instrument{
		ID:       id,
		Kind:     model.KindBond,
		Symbol:   id,
		Currency: "USD",
		Sector:   "Treasury",
		Rating:   "AAA",
		Status:   model.StatusActive,
		Bond:     &model.BondFields{Price: 100, Yield: 4},
	}
}

type fakeTransport struct {
	sent []struct {
		sessionID string
		delta     model.Delta
	}
	rejectSession string
}

func (f *fakeTransport) Send(sessionID string, d model.Delta) bool {
	if sessionID == f.rejectSession {
		return false
	}
	f.sent = append(f.sent, struct {
		sessionID string
		delta     model.Delta
	}{sessionID, d})
	return true
}

func TestDeliverSendsToInterestedSession(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newTestInstrument("A"))

	reg := registry.New()
	reg.Register("s1", 10, 10)
	_ = reg.AddSubscription("s1", &model.Subscription{ID: "sub1", InstrumentIDs: []string{"A"}})

	transport := &fakeTransport{}
	d := New(st, reg, transport, nil)

	d.Deliver(model.Delta{InstrumentID: "A", Timestamp: time.Now(), Fields: map[string]any{model.FieldPrice: 101.0}})

	if len(transport.sent) != 1 || transport.sent[0].sessionID != "s1" {
		t.Fatalf("sent = %+v, want one delivery to s1", transport.sent)
	}
}

func TestDeliverSkipsSessionsNotInterested(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newTestInstrument("A"))
	_ = st.Insert(newTestInstrument("B"))

	reg := registry.New()
	reg.Register("s1", 10, 10)
	_ = reg.AddSubscription("s1", &model.Subscription{ID: "sub1", InstrumentIDs: []string{"B"}})

	transport := &fakeTransport{}
	d := New(st, reg, transport, nil)
	d.Deliver(model.Delta{InstrumentID: "A", Timestamp: time.Now(), Fields: map[string]any{model.FieldPrice: 101.0}})

	if len(transport.sent) != 0 {
		t.Fatalf("sent = %+v, want none (session not subscribed to A)", transport.sent)
	}
}

func TestDeliverAppliesPredicateFilter(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newTestInstrument("A"))

	reg := registry.New()
	reg.Register("s1", 10, 10)
	predicate := &model.PredicateNode{
		Op: model.OpGt,
		Args: []*model.PredicateNode{
			{IsVar: model.FieldPrice},
			{IsLiteral: true, Literal: 200.0},
		},
	}
	_ = reg.AddSubscription("s1", &model.Subscription{ID: "sub1", InstrumentIDs: []string{"A"}, Predicate: predicate})

	transport := &fakeTransport{}
	d := New(st, reg, transport, nil)
	d.Deliver(model.Delta{InstrumentID: "A", Timestamp: time.Now(), Fields: map[string]any{model.FieldPrice: 101.0}})

	if len(transport.sent) != 0 {
		t.Fatalf("sent = %+v, want none (price 100 fails > 200 predicate)", transport.sent)
	}
}

func TestDeliverSkipsWhenBucketExhausted(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newTestInstrument("A"))

	reg := registry.New()
	reg.Register("s1", 0, 0) // empty bucket, no refill
	_ = reg.AddSubscription("s1", &model.Subscription{ID: "sub1", InstrumentIDs: []string{"A"}})

	transport := &fakeTransport{}
	d := New(st, reg, transport, nil)
	d.Deliver(model.Delta{InstrumentID: "A", Timestamp: time.Now(), Fields: map[string]any{model.FieldPrice: 101.0}})

	if len(transport.sent) != 0 {
		t.Fatalf("sent = %+v, want none (token bucket empty)", transport.sent)
	}
}

func TestDeliverSkipsOnTransportBackpressure(t *testing.T) {
	t.Parallel()
	st := store.New()
	_ = st.Insert(newTestInstrument("A"))

	reg := registry.New()
	reg.Register("s1", 10, 10)
	_ = reg.AddSubscription("s1", &model.Subscription{ID: "sub1", InstrumentIDs: []string{"A"}})

	transport := &fakeTransport{rejectSession: "s1"}
	d := New(st, reg, transport, nil)

	// Should not panic even though the transport rejects every send.
	d.Deliver(model.Delta{InstrumentID: "A", Timestamp: time.Now(), Fields: map[string]any{model.FieldPrice: 101.0}})
	if len(transport.sent) != 0 {
		t.Fatalf("sent = %+v, want none", transport.sent)
	}
}
