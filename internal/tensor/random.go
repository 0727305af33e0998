package tensor

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"
)

const defaultSeed = 42

var genMu sync.Mutex

// One generator for the CPU and one per accelerator.
var (
	cpuGen     = newGenerator(defaultSeed)
	deviceGens = []*rand.Rand{newGenerator(defaultSeed)}
)

func newGenerator(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// SetDeviceCount sets how many accelerators have a generator. New
// generators start from the default seed.
func SetDeviceCount(n int) {
	genMu.Lock()
	defer genMu.Unlock()
	if n < 0 {
		n = 0
	}
	for len(deviceGens) < n {
		deviceGens = append(deviceGens, newGenerator(defaultSeed))
	}
	deviceGens = deviceGens[:n]
}

func DeviceCount() int {
	genMu.Lock()
	defer genMu.Unlock()
	return len(deviceGens)
}

// ManualSeed seeds the CPU generator.
func ManualSeed(seed int64) {
	genMu.Lock()
	defer genMu.Unlock()
	cpuGen = newGenerator(seed)
}

// ManualSeedAll seeds the generator of every accelerator.
func ManualSeedAll(seed int64) {
	genMu.Lock()
	defer genMu.Unlock()
	for i := range deviceGens {
		deviceGens[i] = newGenerator(seed)
	}
}

func generatorFor(d Device) (*rand.Rand, error) {
	if d.Type == DeviceCPU {
		return cpuGen, nil
	}
	if d.Index < 0 || d.Index >= len(deviceGens) {
		return nil, fmt.Errorf("tensor: no generator for %s (%d devices)", d, len(deviceGens))
	}
	return deviceGens[d.Index], nil
}

// Rand draws uniform values in [0, 1) from the CPU generator.
func Rand(shape ...int) *Tensor {
	t, _ := RandOn(CPU, shape...)
	return t
}

// Randn draws standard normal values from the CPU generator.
func Randn(shape ...int) *Tensor {
	t, _ := RandnOn(CPU, shape...)
	return t
}

func RandOn(d Device, shape ...int) (*Tensor, error) {
	genMu.Lock()
	defer genMu.Unlock()
	gen, err := generatorFor(d)
	if err != nil {
		return nil, err
	}

	t := zeros(d, shape)
	for i := range t.data {
		t.data[i] = gen.Float64()
	}
	return t, nil
}

func RandnOn(d Device, shape ...int) (*Tensor, error) {
	genMu.Lock()
	defer genMu.Unlock()
	gen, err := generatorFor(d)
	if err != nil {
		return nil, err
	}

	t := zeros(d, shape)
	dist := distuv.Normal{Mu: 0, Sigma: 1, Src: gen}
	for i := range t.data {
		t.data[i] = dist.Rand()
	}
	return t, nil
}

func zeros(d Device, shape []int) *Tensor {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Tensor{shape: append([]int(nil), shape...), data: make([]float64, n), device: d}
}
