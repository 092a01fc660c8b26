// Package seed provides the fixed example catalog the server starts with
// when no external instrument feed is configured — a bond, a swap, a
// future and a call/put option pair, covering every kind-specific field the Tick
// Generator and Delta Engine need to exercise. A small, hand-picked list
// baked into the binary rather than loaded from a file.
package seed

import "bondstream/internal/model"

// Instruments returns a fresh deep copy of the default catalog. Called
// once at startup; callers are free to mutate the returned slice.
func Instruments() []*model.Instrument {
	return []*model.Instrument{
		bond(), swap(), future(), call(), put(),
	}
}

func bond() *model.Instrument {
	return &model.Instrument{
		ID:       "BOND-UST10Y",
		Kind:     model.KindBond,
		Symbol:   "UST10Y",
		Currency: "USD",
		Sector:   "Sovereign",
		Rating:   "AAA",
		Status:   model.StatusActive,
		Bond: &model.BondFields{
			Price:             99.50,
			Yield:             4.25,
			BidPrice:          99.45,
			AskPrice:          99.55,
			Duration:          8.7,
			Convexity:         0.92,
			SpreadToBenchmark: 0.0,
		},
	}
}

func swap() *model.Instrument {
	return &model.Instrument{
		ID:       "SWAP-USD10Y",
		Kind:     model.KindSwap,
		Symbol:   "USD10Y-IRS",
		Currency: "USD",
		Sector:   "Rates",
		Rating:   "N/A",
		Status:   model.StatusActive,
		Swap: &model.SwapFields{
			SwapRate:     4.10,
			BidRate:      4.08,
			AskRate:      4.12,
			FixedDV01:    9800,
			FloatingDV01: 120,
		},
	}
}

func future() *model.Instrument {
	return &model.Instrument{
		ID:       "FUT-ED-H26",
		Kind:     model.KindFuture,
		Symbol:   "EDH26",
		Currency: "USD",
		Sector:   "Rates",
		Rating:   "N/A",
		Status:   model.StatusActive,
		Future: &model.FutureFields{
			Price:        96.25,
			ImpliedRate:  3.75,
			OpenInterest: 150000,
		},
	}
}

func call() *model.Instrument {
	return &model.Instrument{
		ID:       "OPT-UST10Y-C100",
		Kind:     model.KindOption,
		Symbol:   "UST10Y 100C",
		Currency: "USD",
		Sector:   "Sovereign",
		Rating:   "N/A",
		Status:   model.StatusActive,
		Option: &model.OptionFields{
			UnderlyingID:   "BOND-UST10Y",
			Strike:         100,
			OptionType:     model.OptionCall,
			Premium:        1.35,
			ImpliedVol:     0.12,
			Delta:          0.45,
			Gamma:          0.08,
			Theta:          -0.015,
			Vega:           0.22,
			IntrinsicValue: 0,
			TimeValue:      1.35,
		},
	}
}

func put() *model.Instrument {
	return &model.Instrument{
		ID:       "OPT-UST10Y-P99",
		Kind:     model.KindOption,
		Symbol:   "UST10Y 99P",
		Currency: "USD",
		Sector:   "Sovereign",
		Rating:   "N/A",
		Status:   model.StatusActive,
		Option: &model.OptionFields{
			UnderlyingID:   "BOND-UST10Y",
			Strike:         99,
			OptionType:     model.OptionPut,
			Premium:        0.95,
			ImpliedVol:     0.13,
			Delta:          -0.40,
			Gamma:          0.07,
			Theta:          -0.012,
			Vega:           0.20,
			IntrinsicValue: 0,
			TimeValue:      0.95,
		},
	}
}
