package array

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

const defaultSeed = 42

var (
	rngMu sync.Mutex
	rng   = newRand(defaultSeed)
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// Seed resets the process-wide array generator.
func Seed(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = newRand(seed)
}

// Rand draws uniform values in [0, 1).
func Rand(shape ...int) *Array {
	out := Zeros(shape...)

	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range out.data {
		out.data[i] = rng.Float64()
	}
	return out
}

// Randn draws standard normal values.
func Randn(shape ...int) *Array {
	return Normal(0, 1, shape...)
}

func Normal(mu, sigma float64, shape ...int) *Array {
	out := Zeros(shape...)

	rngMu.Lock()
	defer rngMu.Unlock()
	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: rng}
	for i := range out.data {
		out.data[i] = dist.Rand()
	}
	return out
}

func Permutation(n int) []int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Perm(n)
}

// ShuffleAligned shuffles n items through swap, so several sequences can be
// permuted together and stay index-aligned.
func ShuffleAligned(n int, swap func(i, j int)) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng.Shuffle(n, swap)
}
