package config

import "testing"

func validConfig() *Config {
	return &Config{
		Simulator: SimulatorConfig{
			UpdateFrequencyMs:     500,
			VolatilityFactor:      0.2,
			CorrelationStrength:   0.7,
			Scenario:              "normal",
			TimeOfDay:             "auto",
			FlashEventProbability: 0.001,
			FlashEventMagnitude:   3.0,
		},
		Registry: RegistryConfig{MaxUpdatesPerSecond: 10, BucketSize: 20},
		Admin:    AdminConfig{ListenAddr: ":8090"},
		Transport: TransportConfig{
			ListenAddr: ":8091",
		},
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsOutOfRangeVolatility(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Simulator.VolatilityFactor = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for volatilityFactor > 1")
	}
}

func TestValidateRejectsUnknownScenario(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Simulator.Scenario = "bullish"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unrecognized scenario")
	}
}

func TestValidateRejectsUnknownTimeOfDay(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Simulator.TimeOfDay = "midnight"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unrecognized timeOfDay")
	}
}

func TestValidateRejectsNonPositiveUpdateFrequency(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Simulator.UpdateFrequencyMs = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for updateFrequencyMs <= 0")
	}
}

func TestValidateRejectsMissingListenAddrs(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Admin.ListenAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing admin.listenAddr")
	}

	cfg = validConfig()
	cfg.Transport.ListenAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing transport.listenAddr")
	}
}

func TestLoadAppliesDefaultsWithNoFile(t *testing.T) {
	t.Parallel()
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed Validate(): %v", err)
	}
	if cfg.Simulator.UpdateFrequencyMs != 500 {
		t.Fatalf("UpdateFrequencyMs = %d, want default 500", cfg.Simulator.UpdateFrequencyMs)
	}
}
