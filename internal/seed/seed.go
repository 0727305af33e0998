// Package seed configures every random number generator in the process from
// a single seed. Call Set once at start-up, before any random draw.
package seed

import (
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/config"
	"github.com/tensorplex-labs/evalkit/internal/tensor"
)

const DefaultSeed int64 = 42

type Config struct {
	Seed int64
	// Deterministic selects deterministic kernels and turns off kernel
	// auto-tuning.
	Deterministic bool
	// DeviceCount is the number of accelerators to seed. Zero keeps the
	// current count.
	DeviceCount int
}

func DefaultConfig() Config {
	return Config{Seed: DefaultSeed, Deterministic: true}
}

func FromEnv(env config.SeedEnvConfig) Config {
	return Config{
		Seed:          env.Seed,
		Deterministic: env.Deterministic,
		DeviceCount:   env.DeviceCount,
	}
}

// Set seeds the tensor CPU generator, the generators of all accelerators and
// the array generator, then applies the kernel selection flags. The effect is
// process-wide and lasts until the next call.
func Set(cfg Config) {
	if cfg.DeviceCount > 0 {
		tensor.SetDeviceCount(cfg.DeviceCount)
	}

	tensor.ManualSeed(cfg.Seed)
	tensor.ManualSeedAll(cfg.Seed)
	array.Seed(cfg.Seed)

	tensor.SetDeterministic(cfg.Deterministic)
	tensor.SetBenchmark(!cfg.Deterministic)

	log.Info().
		Int64("seed", cfg.Seed).
		Bool("deterministic", tensor.Deterministic()).
		Bool("benchmark", tensor.Benchmark()).
		Int("devices", tensor.DeviceCount()).
		Msg("random generators seeded")
}
