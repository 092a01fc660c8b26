// Package config defines all configuration for the fan-out server. Config
// is loaded from a YAML file with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"bondstream/internal/model"
)

// Config is the top-level configuration. Maps directly to the YAML file
// structure.
type Config struct {
	Simulator SimulatorConfig `mapstructure:"simulator"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Transport TransportConfig `mapstructure:"transport"`
}

// SimulatorConfig tunes the Tick Generator, one key per tunable.
type SimulatorConfig struct {
	UpdateFrequencyMs     int     `mapstructure:"updateFrequencyMs"`
	VolatilityFactor      float64 `mapstructure:"volatilityFactor"`
	CorrelationStrength   float64 `mapstructure:"correlationStrength"`
	Scenario              string  `mapstructure:"scenario"`
	TimeOfDay             string  `mapstructure:"timeOfDay"`
	FlashEventProbability float64 `mapstructure:"flashEventProbability"`
	FlashEventMagnitude   float64 `mapstructure:"flashEventMagnitude"`
}

// RegistryConfig sets the server-wide defaults for the Subscriber
// Registry's token bucket. Every session is registered with these values;
// the transport adapter passes no per-session override.
type RegistryConfig struct {
	MaxUpdatesPerSecond float64 `mapstructure:"maxUpdatesPerSecond"`
	BucketSize          float64 `mapstructure:"bucketSize"`
}

// LoggingConfig controls the log/slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AdminConfig controls the Admin HTTP API listener (§4.K).
type AdminConfig struct {
	ListenAddr string `mapstructure:"listenAddr"`
}

// TransportConfig controls the WebSocket Transport Adapter listener (§4.H).
type TransportConfig struct {
	ListenAddr     string   `mapstructure:"listenAddr"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// Load reads config from a YAML file with environment overrides. Unset keys
// fall back to the built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BONDSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulator.updateFrequencyMs", 500)
	v.SetDefault("simulator.volatilityFactor", 0.2)
	v.SetDefault("simulator.correlationStrength", 0.7)
	v.SetDefault("simulator.scenario", "normal")
	v.SetDefault("simulator.timeOfDay", "auto")
	v.SetDefault("simulator.flashEventProbability", 0.001)
	v.SetDefault("simulator.flashEventMagnitude", 3.0)

	v.SetDefault("registry.maxUpdatesPerSecond", 10)
	v.SetDefault("registry.bucketSize", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("admin.listenAddr", ":8090")
	v.SetDefault("transport.listenAddr", ":8091")
}

var validScenarios = map[string]bool{
	string(model.ScenarioNormal):     true,
	string(model.ScenarioHighVol):    true,
	string(model.ScenarioTrendingUp): true,
	string(model.ScenarioTrendingDn): true,
	string(model.ScenarioFlashEvent): true,
}

var validTimesOfDay = map[string]bool{
	string(model.TimeMarketOpen):  true,
	string(model.TimeMorning):     true,
	string(model.TimeLunch):       true,
	string(model.TimeAfternoon):   true,
	string(model.TimeMarketClose): true,
	string(model.TimeAfterHours):  true,
	string(model.TimeAuto):        true,
}

// Validate enforces each option's legal range. Callers abort startup on a
// validation error; nothing downstream re-checks these.
func (c *Config) Validate() error {
	s := c.Simulator
	if s.UpdateFrequencyMs <= 0 {
		return fmt.Errorf("simulator.updateFrequencyMs must be > 0")
	}
	if s.VolatilityFactor < 0 || s.VolatilityFactor > 1 {
		return fmt.Errorf("simulator.volatilityFactor must be in [0,1]")
	}
	if s.CorrelationStrength < 0 || s.CorrelationStrength > 1 {
		return fmt.Errorf("simulator.correlationStrength must be in [0,1]")
	}
	if !validScenarios[s.Scenario] {
		return fmt.Errorf("simulator.scenario %q is not one of normal, high_vol, trending_up, trending_down, flash_event", s.Scenario)
	}
	if !validTimesOfDay[s.TimeOfDay] {
		return fmt.Errorf("simulator.timeOfDay %q is not a recognized bucket or auto", s.TimeOfDay)
	}
	if s.FlashEventProbability < 0 || s.FlashEventProbability > 1 {
		return fmt.Errorf("simulator.flashEventProbability must be in [0,1]")
	}
	if s.FlashEventMagnitude <= 0 {
		return fmt.Errorf("simulator.flashEventMagnitude must be > 0")
	}

	if c.Registry.MaxUpdatesPerSecond <= 0 {
		return fmt.Errorf("registry.maxUpdatesPerSecond must be > 0")
	}
	if c.Registry.BucketSize <= 0 {
		return fmt.Errorf("registry.bucketSize must be > 0")
	}

	if c.Admin.ListenAddr == "" {
		return fmt.Errorf("admin.listenAddr is required")
	}
	if c.Transport.ListenAddr == "" {
		return fmt.Errorf("transport.listenAddr is required")
	}
	return nil
}
