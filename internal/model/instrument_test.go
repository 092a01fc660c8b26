package model

import (
	"testing"
	"time"
)

func newTestBond() *Instrument {
	return &Instrument{
		ID:         "US10Y",
		Kind:       KindBond,
		Symbol:     "US10Y",
		Currency:   "USD",
		Sector:     "Treasury",
		Rating:     "AAA",
		Status:     StatusActive,
		LastUpdate: time.UnixMilli(1000),
		Bond: &BondFields{
			Price:    99.5,
			Yield:    4.2,
			BidPrice: 99.4,
			AskPrice: 99.6,
		},
	}
}

func TestToFieldMapOmitsTradeFieldsWithoutTrade(t *testing.T) {
	t.Parallel()
	inst := newTestBond()
	fields := inst.ToFieldMap()

	for _, tf := range []string{FieldLastTradePrice, FieldLastTradeSize, FieldLastTradeTime} {
		if _, ok := fields[tf]; ok {
			t.Errorf("field map should omit %q on a non-trade instrument", tf)
		}
	}
	if fields[FieldBidPrice] != 99.4 {
		t.Errorf("bidPrice = %v, want 99.4", fields[FieldBidPrice])
	}
}

func TestToFieldMapIncludesTradeFieldsWhenSet(t *testing.T) {
	t.Parallel()
	inst := newTestBond()
	inst.Bond.HasTrade = true
	inst.Bond.LastTradePrice = 99.45
	inst.Bond.LastTradeSize = 5_000_000
	inst.Bond.LastTradeTime = time.UnixMilli(2000)

	fields := inst.ToFieldMap()
	if fields[FieldLastTradePrice] != 99.45 {
		t.Errorf("lastTradePrice = %v, want 99.45", fields[FieldLastTradePrice])
	}
}

func TestApplyFieldMapRoundTrip(t *testing.T) {
	t.Parallel()
	inst := newTestBond()
	before := inst.ToFieldMap()

	mutated := inst.Clone()
	mutated.Bond.BidPrice = 99.35

	// Apply only the field that changed — this is exactly what the Delta
	// Engine hands the Dispatcher/transport.
	changed := map[string]any{FieldBidPrice: 99.35}
	inst.ApplyFieldMap(changed)

	if inst.Bond.BidPrice != 99.35 {
		t.Errorf("bidPrice after apply = %v, want 99.35", inst.Bond.BidPrice)
	}
	// Everything else must be untouched by the merge.
	after := inst.ToFieldMap()
	for k, v := range before {
		if k == FieldBidPrice {
			continue
		}
		if after[k] != v {
			t.Errorf("field %q changed unexpectedly: before=%v after=%v", k, v, after[k])
		}
	}
}

func TestToWireFieldMapConvertsTimestampsToEpochMillis(t *testing.T) {
	t.Parallel()
	inst := newTestBond()
	fields := inst.ToWireFieldMap()

	got, ok := fields[FieldLastUpdate].(int64)
	if !ok {
		t.Fatalf("lastUpdate = %T, want int64", fields[FieldLastUpdate])
	}
	if got != inst.LastUpdate.UnixMilli() {
		t.Errorf("lastUpdate = %d, want %d", got, inst.LastUpdate.UnixMilli())
	}
	// Non-timestamp fields are unaffected.
	if fields[FieldBidPrice] != 99.4 {
		t.Errorf("bidPrice = %v, want 99.4", fields[FieldBidPrice])
	}
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	inst := newTestBond()
	clone := inst.Clone()
	clone.Bond.Price = 0

	if inst.Bond.Price == 0 {
		t.Fatal("mutating the clone's Bond payload mutated the original")
	}
}
