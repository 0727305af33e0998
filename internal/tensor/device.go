package tensor

import (
	"fmt"
	"sync"
)

type DeviceType int

const (
	DeviceCPU DeviceType = iota
	DeviceAccelerator
)

// Device identifies where a tensor's values live.
type Device struct {
	Type  DeviceType
	Index int
}

var CPU = Device{Type: DeviceCPU}

func Accelerator(index int) Device {
	return Device{Type: DeviceAccelerator, Index: index}
}

func (d Device) String() string {
	if d.Type == DeviceCPU {
		return "cpu"
	}
	return fmt.Sprintf("accel:%d", d.Index)
}

var (
	backendMu     sync.RWMutex
	deterministic bool
	benchmark     = true
)

// SetDeterministic selects deterministic kernel variants when on.
func SetDeterministic(on bool) {
	backendMu.Lock()
	defer backendMu.Unlock()
	deterministic = on
}

func Deterministic() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return deterministic
}

// SetBenchmark toggles kernel auto-tuning.
func SetBenchmark(on bool) {
	backendMu.Lock()
	defer backendMu.Unlock()
	benchmark = on
}

func Benchmark() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return benchmark
}
