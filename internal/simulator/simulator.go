// Package simulator is the Tick Generator: the stochastic engine that
// advances every instrument's state once per tick, shaped by time-of-day,
// scenario, correlation and rare flash excursions.
//
// The ticker loop runs on a single goroutine driven by a time.Ticker,
// selecting on ctx.Done alongside the ticker channel.
package simulator

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"bondstream/internal/correlation"
	"bondstream/internal/model"
	"bondstream/internal/store"
)

// Config holds the tunables exposed through the process configuration
// layer.
type Config struct {
	UpdateFrequencyMs     int
	VolatilityFactor      float64
	CorrelationStrength   float64
	Scenario              model.Scenario
	TimeOfDay             model.TimeOfDay
	FlashEventProbability float64
	FlashEventMagnitude   float64
}

// Sink receives the (previous-published, new-state) pair the Delta Engine
// needs for every instrument mutated on a tick. Emission is immediate per
// instrument — there is no batch barrier at tick boundaries.
type Sink interface {
	Submit(prevPublished, newState *model.Instrument)
}

// Generator is the Tick Generator. It owns no instrument state itself —
// the Instrument Store remains the single source of truth — and it is the
// only writer that mutates instruments once they exist, apart from the
// Admin API's merge-update route.
type Generator struct {
	store *store.Store
	graph *correlation.Graph
	pct   *pctChangeTracker
	cfg   Config
	rng   *rand.Rand
	log   *slog.Logger

	// clock is overridable in tests; defaults to time.Now.
	clock func() time.Time
}

// New creates a Tick Generator over the given store and correlation graph.
// seed selects the deterministic RNG stream (pass time.Now().UnixNano() in
// production, a fixed value in tests).
func New(st *store.Store, graph *correlation.Graph, cfg Config, seed int64, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		store: st,
		graph: graph,
		pct:   newPctChangeTracker(),
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
		clock: time.Now,
	}
}

// Run drives the ticker task until ctx is cancelled: one tick every
// cfg.UpdateFrequencyMs, each tick visiting every instrument exactly once.
// The ticker never holds a lock across the suspension between instruments.
func (g *Generator) Run(ctx context.Context, sink Sink) {
	interval := time.Duration(g.cfg.UpdateFrequencyMs) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Tick(sink)
		}
	}
}

// Tick advances every active instrument currently in the store exactly
// once (halted and matured instruments are skipped) and
// hands each mutated instrument's (previous-published, new-state) pair to
// sink. Visit order is unspecified.
func (g *Generator) Tick(sink Sink) {
	instruments := g.store.ListAll()

	todMult := timeOfDayMultiplier(g.resolveTimeOfDay())
	scenarioMult := scenarioMultiplier(g.cfg.Scenario)
	flashThisTick := g.rng.Float64() < g.cfg.FlashEventProbability

	byID := make(map[string]*model.Instrument, len(instruments))
	for _, inst := range instruments {
		byID[inst.ID] = inst
	}

	for _, inst := range instruments {
		if inst.Status != model.StatusActive {
			continue // halted/matured instruments do not trade
		}

		v := g.cfg.VolatilityFactor * todMult * scenarioMult
		if flashThisTick {
			v *= g.cfg.FlashEventMagnitude
		}

		raw := (g.rng.Float64() - 0.5) * v
		switch g.cfg.Scenario {
		case model.ScenarioTrendingUp:
			raw += 0.1 * v
		case model.ScenarioTrendingDn:
			raw -= 0.1 * v
		}

		priceDelta := raw + g.correlatedMove(inst.ID)

		prevPublished, err := g.store.PublishedSnapshot(inst.ID)
		if err != nil {
			continue // removed between ListAll and here
		}

		err = g.store.Mutate(inst.ID, func(cur *model.Instrument) {
			g.applyKindUpdate(cur, priceDelta, byID)
		})
		if err != nil {
			continue
		}
		g.pct.set(inst.ID, priceDelta)

		newState, err := g.store.TakeCurrentSnapshot(inst.ID)
		if err != nil {
			continue
		}
		sink.Submit(prevPublished, newState)
	}
}

// OnInstrumentRemoved forgets any per-instrument state the generator keeps
// outside the Store (the pct-change tracker), so a re-used id doesn't
// inherit a stale correlated-move contribution.
func (g *Generator) OnInstrumentRemoved(id string) {
	g.pct.remove(id)
}

// correlatedMove computes 0.3 * sum_{j != i} c(i,j) * pct_change(j) from a
// single consistent snapshot of instrument i's correlation row.
func (g *Generator) correlatedMove(id string) float64 {
	row := g.graph.Row(id)
	var sum float64
	for j, c := range row {
		sum += c * g.pct.get(j)
	}
	return 0.3 * sum
}

func (g *Generator) resolveTimeOfDay() model.TimeOfDay {
	if g.cfg.TimeOfDay != model.TimeAuto {
		return g.cfg.TimeOfDay
	}
	hour := g.clock().Hour()
	switch {
	case hour == 9:
		return model.TimeMarketOpen
	case hour >= 10 && hour < 12:
		return model.TimeMorning
	case hour == 12:
		return model.TimeLunch
	case hour > 12 && hour < 16:
		return model.TimeAfternoon
	case hour == 16:
		return model.TimeMarketClose
	default:
		return model.TimeAfterHours
	}
}

func timeOfDayMultiplier(tod model.TimeOfDay) float64 {
	switch tod {
	case model.TimeMarketOpen, model.TimeMarketClose:
		return 2
	case model.TimeLunch:
		return 0.5
	default:
		return 1
	}
}

func scenarioMultiplier(s model.Scenario) float64 {
	switch s {
	case model.ScenarioHighVol:
		return 3
	case model.ScenarioTrendingUp, model.ScenarioTrendingDn:
		return 1.5
	default: // normal, flash_event: flash excursions are handled separately
		return 1
	}
}

func (g *Generator) applyKindUpdate(inst *model.Instrument, priceDelta float64, byID map[string]*model.Instrument) {
	now := g.clock()
	switch inst.Kind {
	case model.KindBond:
		g.applyBond(inst.Bond, priceDelta, now)
	case model.KindSwap:
		g.applySwap(inst.Swap, priceDelta, now)
	case model.KindFuture:
		g.applyFuture(inst.Future, priceDelta, now)
	case model.KindOption:
		g.applyOption(inst.Option, priceDelta, now, byID)
	}
	inst.LastUpdate = now
}

func (g *Generator) noise(spread float64) float64 {
	return 1 + (g.rng.Float64()*2-1)*spread
}

func (g *Generator) applyBond(b *model.BondFields, priceDelta float64, now time.Time) {
	b.Price = math.Max(0.1, b.Price*(1+priceDelta/100))
	b.Yield -= priceDelta * 1.2 / 100

	spread := 0.05 * math.Max(0.5, 1+2*math.Abs(priceDelta))
	b.BidPrice = b.Price * (1 - spread/200)
	b.AskPrice = b.Price * (1 + spread/200)

	b.Duration *= g.noise(0.01)
	b.Convexity *= g.noise(0.01)
	b.SpreadToBenchmark *= g.noise(0.02)

	if g.rng.Float64() < 0.10 {
		b.HasTrade = true
		b.LastTradePrice = b.Price
		b.LastTradeSize = float64(1+g.rng.Intn(10)) * 1e6
		b.LastTradeTime = now
	}
}

func (g *Generator) applySwap(s *model.SwapFields, priceDelta float64, now time.Time) {
	s.SwapRate = math.Max(0.001, s.SwapRate+priceDelta/100)

	spread := 0.02 * math.Max(0.5, 1+2*math.Abs(priceDelta))
	s.BidRate = s.SwapRate * (1 - spread/200)
	s.AskRate = s.SwapRate * (1 + spread/200)

	s.FixedDV01 *= g.noise(0.01)
	s.FloatingDV01 *= g.noise(0.01)

	if g.rng.Float64() < 0.05 {
		s.HasTrade = true
		s.LastTradePrice = s.SwapRate
		s.LastTradeSize = float64(1+g.rng.Intn(20)) * 5e6
		s.LastTradeTime = now
	}
}

func (g *Generator) applyFuture(f *model.FutureFields, priceDelta float64, now time.Time) {
	f.Price = math.Max(0.01, f.Price*(1+priceDelta/100))
	f.ImpliedRate = 100 - f.Price

	walk := math.Floor((g.rng.Float64() - 0.45) * 100)
	f.OpenInterest = math.Max(0, f.OpenInterest+walk)

	if g.rng.Float64() < 0.20 {
		f.HasTrade = true
		f.LastTradePrice = f.Price
		f.LastTradeSize = float64(1+g.rng.Intn(50)) * 1e5
		f.LastTradeTime = now
	}
}

func (g *Generator) applyOption(o *model.OptionFields, priceDelta float64, now time.Time, byID map[string]*model.Instrument) {
	underlying, ok := byID[o.UnderlyingID]
	if !ok {
		return // dangling reference; leave the option's state untouched this tick
	}
	mark := markPrice(underlying)
	underlyingDelta := g.pct.get(o.UnderlyingID)

	u := underlyingDelta * (mark / 100)
	o.Premium = math.Max(0.001, o.Premium+o.Delta*u+0.5*o.Gamma*u*u-o.Theta/365)

	o.ImpliedVol = math.Max(0.0001, o.ImpliedVol+(g.rng.Float64()*2-1)*0.005)
	o.Gamma *= g.noise(0.01)
	o.Theta *= g.noise(0.01)
	o.Vega *= g.noise(0.01)
	o.Delta = nudgeDelta(o.Delta, o.OptionType, g.noise(0.01))

	var intrinsic float64
	if o.OptionType == model.OptionCall {
		intrinsic = math.Max(0, mark-o.Strike)
	} else {
		intrinsic = math.Max(0, o.Strike-mark)
	}
	o.IntrinsicValue = intrinsic
	o.TimeValue = math.Max(0, o.Premium-intrinsic)

	if g.rng.Float64() < 0.05 {
		o.HasTrade = true
		o.LastTradePrice = o.Premium
		o.LastTradeSize = float64(1+g.rng.Intn(10)) * 100
		o.LastTradeTime = now
	}
}

// markPrice extracts the kind-appropriate current mark used as the
// underlying's spot price S in the option formulas.
func markPrice(inst *model.Instrument) float64 {
	switch inst.Kind {
	case model.KindBond:
		return inst.Bond.Price
	case model.KindFuture:
		return inst.Future.Price
	case model.KindSwap:
		return inst.Swap.SwapRate
	default:
		return 0
	}
}

// nudgeDelta applies multiplicative noise while respecting the call/put
// delta-sign invariant: calls stay in [0, 1], puts in [-1, 0].
func nudgeDelta(d float64, ot model.OptionType, factor float64) float64 {
	d *= factor
	if ot == model.OptionCall {
		return math.Min(1, math.Max(0, d))
	}
	return math.Min(0, math.Max(-1, d))
}
