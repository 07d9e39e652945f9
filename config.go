package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// TrainConfig is the tunable surface of the train subcommand. Values stack
// in order: built-in defaults, then the -config YAML file, then COACH_*
// environment variables.
type TrainConfig struct {
	LR          float64 `yaml:"lr" env:"COACH_LR, overwrite"`
	Epochs      int     `yaml:"epochs" env:"COACH_EPOCHS, overwrite"`
	BatchSize   int     `yaml:"batch_size" env:"COACH_BATCH_SIZE, overwrite"`
	LogEvery    int     `yaml:"log_every" env:"COACH_LOG_EVERY, overwrite"`
	Seed        int64   `yaml:"seed" env:"COACH_SEED, overwrite"`
	MetricsAddr string  `yaml:"metrics_addr" env:"COACH_METRICS_ADDR, overwrite"`
}

func defaultTrainConfig() TrainConfig {
	return TrainConfig{
		LR:          0.01,
		Epochs:      10,
		BatchSize:   64,
		LogEvery:    100,
		Seed:        1,
		MetricsAddr: ":2112",
	}
}

func loadTrainConfig(ctx context.Context, path string) (TrainConfig, error) {
	cfg := defaultTrainConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}
