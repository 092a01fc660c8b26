// bondstream — a real-time market-data fan-out service for fixed-income
// trading blotters.
//
// Architecture:
//
//	main.go                  — entry point: loads config, starts the engine, waits for SIGINT/SIGTERM
//	internal/engine          — orchestrator: wires store → correlation graph → simulator → delta engine → registry → dispatcher → transport → admin API
//	internal/store           — the Instrument Store: authoritative current/published state per instrument
//	internal/correlation     — the Correlation Graph: symmetric pairwise affinity coefficients
//	internal/simulator       — the Tick Generator: stochastic market model
//	internal/delta           — the Delta Engine: minimal field-level diffs
//	internal/registry        — the Subscriber Registry: subscriptions, token buckets, pacing
//	internal/filter          — the Filter Evaluator: declarative predicate trees
//	internal/dispatch        — the Dispatcher: admits or drops deltas per subscriber
//	internal/transport       — the WebSocket Transport Adapter
//	internal/adminapi        — the Admin HTTP API: CRUD over the instrument catalog
//
// How it feeds a blotter:
//
//	The Tick Generator mutates every instrument once per tick according to
//	a stochastic model shaped by scenario, time-of-day, and correlation.
//	The Delta Engine reduces each mutation to its changed fields and hands
//	the result to the Dispatcher, which fans it out to every subscriber
//	whose interest set, predicate filter, and rate budget admit it.
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bondstream/internal/config"
	"bondstream/internal/engine"
)

func main() {
	// No config file is required to start: internal/config.Load falls back
	// to built-in defaults with BONDSTREAM_-prefixed env overrides when
	// cfgPath is empty. Set BONDSTREAM_CONFIG to point at a YAML file for
	// anything beyond the defaults.
	cfgPath := os.Getenv("BONDSTREAM_CONFIG")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", "error", err, "path", cfgPath)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Logging.Level)}
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)

	eng, err := engine.New(*cfg, logger)
	if err != nil {
		logger.Error("failed to create engine", "error", err)
		os.Exit(1)
	}

	if err := eng.Start(); err != nil {
		logger.Error("failed to start engine", "error", err)
		os.Exit(1)
	}

	logger.Info("bondstream started",
		"admin_addr", cfg.Admin.ListenAddr,
		"transport_addr", cfg.Transport.ListenAddr,
		"scenario", cfg.Simulator.Scenario,
		"update_frequency_ms", cfg.Simulator.UpdateFrequencyMs,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig.String())

	eng.Stop()
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
