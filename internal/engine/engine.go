// Package engine is the central orchestrator of the fan-out server.
//
// It wires together all subsystems in dependency order: Store →
// Correlation Graph → Tick Generator → Delta Engine → Registry → Filter
// Evaluator → Dispatcher → Transport Adapter → Admin API.
//
// Lifecycle: New() → Start() → [runs until signaled] → Stop()
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"bondstream/internal/adminapi"
	"bondstream/internal/config"
	"bondstream/internal/correlation"
	"bondstream/internal/delta"
	"bondstream/internal/dispatch"
	"bondstream/internal/filter"
	"bondstream/internal/model"
	"bondstream/internal/registry"
	"bondstream/internal/seed"
	"bondstream/internal/simulator"
	"bondstream/internal/store"
	"bondstream/internal/transport"
)

// Engine orchestrates every component of the fan-out system. It owns the
// lifecycle of all goroutines.
type Engine struct {
	cfg config.Config

	store           *store.Store
	graph           *correlation.Graph
	sim             *simulator.Generator
	deltaEng        *delta.Engine
	registry        *registry.Registry
	dispatcher      *dispatch.Dispatcher
	hub             *transport.Hub
	transportServer *http.Server
	admin           *adminapi.Server

	logger *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	hubStop chan struct{}
}

// New wires all engine components and seeds the Instrument Store with the
// default catalog.
func New(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	st := store.New()
	for _, inst := range seed.Instruments() {
		if err := st.Insert(inst); err != nil {
			return nil, fmt.Errorf("seed instrument %q: %w", inst.ID, err)
		}
	}
	graph := correlation.New(cfg.Simulator.CorrelationStrength)
	seedCorrelationGraph(st, graph)

	reg := registry.New()

	ctx, cancel := context.WithCancel(context.Background())

	e := &Engine{
		cfg:     cfg,
		store:   st,
		graph:   graph,
		logger:  logger.With("component", "engine"),
		ctx:     ctx,
		cancel:  cancel,
		hubStop: make(chan struct{}),
	}

	simCfg := simulator.Config{
		UpdateFrequencyMs:     cfg.Simulator.UpdateFrequencyMs,
		VolatilityFactor:      cfg.Simulator.VolatilityFactor,
		CorrelationStrength:   cfg.Simulator.CorrelationStrength,
		Scenario:              model.Scenario(cfg.Simulator.Scenario),
		TimeOfDay:             model.TimeOfDay(cfg.Simulator.TimeOfDay),
		FlashEventProbability: cfg.Simulator.FlashEventProbability,
		FlashEventMagnitude:   cfg.Simulator.FlashEventMagnitude,
	}
	e.sim = simulator.New(st, e.graph, simCfg, time.Now().UnixNano(), logger)
	e.registry = reg

	hub := transport.NewHub(e, cfg.Transport.AllowedOrigins, logger)
	e.hub = hub

	transportMux := http.NewServeMux()
	transportMux.HandleFunc("/ws", hub.HandleWebSocket)
	e.transportServer = &http.Server{
		Addr:    cfg.Transport.ListenAddr,
		Handler: transportMux,
	}

	e.dispatcher = dispatch.New(st, reg, hub, logger)
	e.deltaEng = delta.New(st, e.dispatcher, logger)

	e.admin = adminapi.New(cfg.Admin.ListenAddr, st, e.graph, e.sim, logger)

	return e, nil
}

// seedCorrelationGraph installs pairwise coefficients between every seeded
// instrument so the correlated-move term has something to read from the
// moment the server starts, mirroring how the admin API's insert handler
// grows the graph one insertion at a time.
func seedCorrelationGraph(st *store.Store, graph *correlation.Graph) {
	instruments := st.ListAll()
	rng := rand.New(rand.NewSource(1))
	var inserted []correlation.Attrs
	for _, inst := range instruments {
		attrs := correlation.Attrs{ID: inst.ID, Kind: inst.Kind, Sector: inst.Sector, Currency: inst.Currency}
		graph.OnInsert(attrs, inserted, rng)
		inserted = append(inserted, attrs)
	}
}

// Start launches the ticker goroutine and the hub's event loop, both
// tracked on a sync.WaitGroup, then the admin HTTP server and the WebSocket
// transport server, which are not tracked and are shut down by Stop.
func (e *Engine) Start() error {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.sim.Run(e.ctx, e.deltaEng)
	}()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.hub.Run(e.hubStop)
	}()

	if err := e.admin.Start(); err != nil {
		return fmt.Errorf("start admin api: %w", err)
	}

	go func() {
		if err := e.transportServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			e.logger.Error("transport server error", "err", err)
		}
	}()

	e.logger.Info("engine started",
		"instruments", e.store.Len(),
		"admin_addr", e.cfg.Admin.ListenAddr,
		"transport_addr", e.cfg.Transport.ListenAddr,
	)
	return nil
}

// Stop cancels the root context, stops the hub, waits for the ticker and
// hub goroutines, then shuts down both HTTP servers within a bounded
// deadline.
func (e *Engine) Stop() {
	e.logger.Info("shutting down...")

	e.cancel()
	close(e.hubStop)
	e.wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.admin.Stop(shutdownCtx); err != nil {
		e.logger.Error("admin api shutdown", "err", err)
	}
	if err := e.transportServer.Shutdown(shutdownCtx); err != nil {
		e.logger.Error("transport server shutdown", "err", err)
	}

	e.logger.Info("shutdown complete")
}

// Hub returns the WebSocket Transport Adapter, for callers that want to
// inspect live session count without going through the HTTP boundary.
func (e *Engine) Hub() *transport.Hub {
	return e.hub
}

// --- transport.Core implementation ---

// RegisterSession creates the session's entry in the Subscriber Registry
// with the server-wide default token-bucket parameters.
func (e *Engine) RegisterSession(sessionID string) {
	e.registry.Register(sessionID, e.cfg.Registry.BucketSize, e.cfg.Registry.MaxUpdatesPerSecond)
}

// UnregisterSession tears down everything the registry holds for a
// disconnected session.
func (e *Engine) UnregisterSession(sessionID string) {
	e.registry.Unregister(sessionID)
}

// Subscribe validates and installs a new subscription, returning the
// subscription id and the current snapshot of every instrument the
// subscription admits.
func (e *Engine) Subscribe(sessionID string, req model.SubscribeRequest) (string, []*model.Instrument, error) {
	if len(req.InstrumentIDs) == 0 {
		return "", nil, fmt.Errorf("%w: instrumentIds must not be empty", model.ErrInvalidArgument)
	}
	if err := req.Filter.Validate(); err != nil {
		return "", nil, err
	}

	subID := fmt.Sprintf("%s-%d", sessionID, time.Now().UnixNano())
	sub := &model.Subscription{
		ID:              subID,
		InstrumentIDs:   req.InstrumentIDs,
		Predicate:       req.Filter,
		UpdateFrequency: req.UpdateFrequency,
	}
	if err := e.registry.AddSubscription(sessionID, sub); err != nil {
		return "", nil, err
	}

	var initial []*model.Instrument
	for _, id := range req.InstrumentIDs {
		inst, err := e.store.Lookup(id)
		if err != nil {
			continue
		}
		if filter.Evaluate(req.Filter, inst.ToFieldMap(), e.logger) {
			initial = append(initial, inst)
		}
	}
	return subID, initial, nil
}

// Unsubscribe removes subscriptionID from sessionID.
func (e *Engine) Unsubscribe(sessionID, subscriptionID string) error {
	return e.registry.RemoveSubscription(sessionID, subscriptionID)
}
