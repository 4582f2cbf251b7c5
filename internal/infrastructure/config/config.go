package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the engine's full runtime configuration. Values come from
// defaults, then an optional YAML file, then ARI_-prefixed environment
// variables, each layer overriding the last.
type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Redis       RedisConfig       `koanf:"redis"`
	Recommender RecommenderConfig `koanf:"recommender"`
	Learning    LearningConfig    `koanf:"learning"`
	Registry    RegistryConfig    `koanf:"registry"`
	Telemetry   TelemetryConfig   `koanf:"telemetry"`
}

type RedisConfig struct {
	URL      string        `koanf:"url"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

type RecommenderConfig struct {
	FanoutTimeout  time.Duration `koanf:"fanout_timeout"`
	LookbackMonths int           `koanf:"lookback_months"`
}

type LearningConfig struct {
	QueueCapacity    int     `koanf:"queue_capacity"`
	BatchesPerSecond float64 `koanf:"batches_per_second"`
}

type RegistryConfig struct {
	TrainingDelay time.Duration `koanf:"training_delay"`
}

type TelemetryConfig struct {
	MeterName      string `koanf:"meter_name"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// Load reads configuration from defaults, the optional file at path, and the
// ARI_ environment prefix.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Redis: RedisConfig{
			URL:      "localhost:6379",
			DB:       0,
			CacheTTL: 15 * time.Minute,
		},
		Recommender: RecommenderConfig{
			FanoutTimeout:  5 * time.Second,
			LookbackMonths: 12,
		},
		Learning: LearningConfig{
			QueueCapacity:    16,
			BatchesPerSecond: 4,
		},
		Registry: RegistryConfig{
			TrainingDelay: 100 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			MeterName:      "audit-intelligence",
			MetricsEnabled: true,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// The config file is optional.
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !strings.Contains(err.Error(), "no such file") {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// Double underscore separates nesting levels so single underscores
	// survive in key names (ARI_LEARNING__QUEUE_CAPACITY).
	if err := k.Load(env.Provider("ARI_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ARI_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
