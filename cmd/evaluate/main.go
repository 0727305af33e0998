package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/evalkit/internal/config"
	"github.com/tensorplex-labs/evalkit/internal/evaluation"
	"github.com/tensorplex-labs/evalkit/internal/report"
	"github.com/tensorplex-labs/evalkit/internal/seed"
	"github.com/tensorplex-labs/evalkit/internal/utils/logger"
)

var (
	inputPath = flag.String("input", "", "evaluation input (.json or .json.zst); a synthetic dataset is used when empty")
	modelName = flag.String("model", "", "model name shown in plot titles and the report")
	samples   = flag.Int("samples", 200, "number of samples in the synthetic dataset")
	dims      = flag.Int("dims", 16, "embedding dimensions of the synthetic dataset")
	classes   = flag.Int("classes", 4, "embedding classes of the synthetic dataset")
	terminal  = flag.Bool("terminal", false, "print the score chart to stdout")
)

func main() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	seed.Set(seed.FromEnv(cfg.SeedEnvConfig))

	in, err := loadInput()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load evaluation input")
	}

	opts := evaluation.FromConfig(cfg)
	if *modelName != "" {
		opts = append(opts, evaluation.WithModelName(*modelName))
	}
	if *terminal {
		opts = append(opts, evaluation.WithTerminal(os.Stdout))
	}

	r, err := evaluation.NewPipeline(opts...).Run(ctx, in)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	log.Info().
		Str("model", r.ModelName).
		Float64("auc", r.AUC).
		Int("positives", r.Positives).
		Int("negatives", r.Negatives).
		Msgf("ROC AUC %.4f", r.AUC)
	for name, path := range r.Artifacts {
		log.Info().Str("artifact", name).Str("path", path).Msg("artifact written")
	}
}

func loadInput() (*report.EvalInput, error) {
	if *inputPath == "" {
		log.Info().Int("samples", *samples).Int("dims", *dims).Int("classes", *classes).Msg("no input given, using synthetic dataset")
		return evaluation.SyntheticInput(*samples, *dims, *classes)
	}
	return report.ReadInput(*inputPath)
}
