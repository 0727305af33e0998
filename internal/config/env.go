// Package config defines environment configuration structs and loaders.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type AppConfig struct {
	Environment string `env:"ENVIRONMENT, default=prod"`

	SeedEnvConfig
	PlotEnvConfig
	TSNEEnvConfig
	ReportEnvConfig
}

func LoadConfig(ctx context.Context) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return cfg, nil
}

// SeedEnvConfig controls reproducibility of random draws.
type SeedEnvConfig struct {
	Seed          int64 `env:"EVAL_SEED, default=42"`
	Deterministic bool  `env:"EVAL_DETERMINISTIC, default=true"`
	DeviceCount   int   `env:"EVAL_DEVICE_COUNT, default=1"`
}

// PlotEnvConfig configures rendered figures.
type PlotEnvConfig struct {
	OutputDir    string  `env:"EVAL_OUTPUT_DIR, default=plots"`
	OverlayAlpha float64 `env:"EVAL_OVERLAY_ALPHA, default=0.5"`
	PlotWidth    int     `env:"EVAL_PLOT_WIDTH, default=800"`
	PlotHeight   int     `env:"EVAL_PLOT_HEIGHT, default=600"`
	ImageSizeMM  float64 `env:"EVAL_IMAGE_SIZE_MM, default=152"`
}

// TSNEEnvConfig configures the embedding projection. A zero learning rate
// selects the automatic rate.
type TSNEEnvConfig struct {
	Perplexity   float64 `env:"EVAL_TSNE_PERPLEXITY, default=30"`
	Iterations   int     `env:"EVAL_TSNE_ITERATIONS, default=500"`
	LearningRate float64 `env:"EVAL_TSNE_LEARNING_RATE, default=0"`
}

type ReportEnvConfig struct {
	Compress bool `env:"EVAL_REPORT_COMPRESS, default=false"`
}
