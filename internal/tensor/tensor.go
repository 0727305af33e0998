// Package tensor provides a float64 tensor with device placement and
// gradient tracking, the framework random generators, and the bridge that
// turns a tensor into a host-memory array.
package tensor

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrShape        = errors.New("tensor: data length does not match shape")
	ErrRank         = errors.New("tensor: unsupported rank")
	ErrNotHost      = errors.New("tensor: tensor is not in host memory, call CPU() first")
	ErrRequiresGrad = errors.New("tensor: tensor requires grad, call Detach() first")
)

// Tensor is a row-major float64 tensor. Values are shared between a tensor
// and the tensors returned by Detach; every other operation copies.
type Tensor struct {
	shape        []int
	data         []float64
	device       Device
	requiresGrad bool
	gradFn       string
}

type Option func(*Tensor)

func WithRequiresGrad() Option {
	return func(t *Tensor) { t.requiresGrad = true }
}

func OnDevice(d Device) Option {
	return func(t *Tensor) { t.device = d }
}

func New(shape []int, data []float64, opts ...Option) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		n *= d
	}
	if len(data) != n {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, shape, n, len(data))
	}

	t := &Tensor{shape: append([]int(nil), shape...), data: data, device: CPU}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

func (t *Tensor) Rank() int { return len(t.shape) }

func (t *Tensor) NumElements() int { return len(t.data) }

func (t *Tensor) Device() Device { return t.device }

func (t *Tensor) RequiresGrad() bool { return t.requiresGrad }

// GradFn names the operation that produced t, empty for leaf tensors.
func (t *Tensor) GradFn() string { return t.gradFn }

// RequireGrad marks t as a leaf that tracks gradients.
func (t *Tensor) RequireGrad() *Tensor {
	t.requiresGrad = true
	return t
}

// Detach returns a tensor sharing t's values with gradient tracking removed.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		shape:  t.shape,
		data:   t.data,
		device: t.device,
	}
}

// To copies t to device d. It returns t itself when already there.
func (t *Tensor) To(d Device) *Tensor {
	if t.device == d {
		return t
	}
	out := t.derive("ToCopyBackward", t.shape)
	copy(out.data, t.data)
	out.device = d
	return out
}

func (t *Tensor) CPU() *Tensor { return t.To(CPU) }

// Unsqueeze inserts a dimension of size 1 at dim.
func (t *Tensor) Unsqueeze(dim int) (*Tensor, error) {
	if dim < 0 || dim > len(t.shape) {
		return nil, fmt.Errorf("tensor: unsqueeze dim %d out of range for rank %d", dim, len(t.shape))
	}
	shape := make([]int, 0, len(t.shape)+1)
	shape = append(shape, t.shape[:dim]...)
	shape = append(shape, 1)
	shape = append(shape, t.shape[dim:]...)

	out := t.derive("UnsqueezeBackward", shape)
	copy(out.data, t.data)
	return out, nil
}

// Min returns the global minimum. It panics on an empty tensor.
func (t *Tensor) Min() float64 { return floats.Min(t.data) }

// Max returns the global maximum. It panics on an empty tensor.
func (t *Tensor) Max() float64 { return floats.Max(t.data) }

// AddScalar returns t + c.
func (t *Tensor) AddScalar(c float64) *Tensor {
	out := t.derive("AddBackward", t.shape)
	copy(out.data, t.data)
	floats.AddConst(c, out.data)
	return out
}

// MulScalar returns t * c.
func (t *Tensor) MulScalar(c float64) *Tensor {
	out := t.derive("MulBackward", t.shape)
	copy(out.data, t.data)
	floats.Scale(c, out.data)
	return out
}

// DivScalar returns t / c.
func (t *Tensor) DivScalar(c float64) *Tensor {
	out := t.derive("DivBackward", t.shape)
	for i, v := range t.data {
		out.data[i] = v / c
	}
	return out
}

// Values copies the values into a plain slice. It refuses tensors that
// track gradients or live off the host.
func (t *Tensor) Values() ([]float64, error) {
	if t.requiresGrad {
		return nil, ErrRequiresGrad
	}
	if t.device != CPU {
		return nil, fmt.Errorf("%w: tensor is on %s", ErrNotHost, t.device)
	}
	out := make([]float64, len(t.data))
	copy(out, t.data)
	return out, nil
}

func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(shape=%v, device=%s, requires_grad=%t)", t.shape, t.device, t.requiresGrad)
}

// derive allocates the output of an op on t. Outputs of tracked inputs are
// tracked as well and remember the op that produced them.
func (t *Tensor) derive(op string, shape []int) *Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	out := &Tensor{
		shape:        append([]int(nil), shape...),
		data:         make([]float64, n),
		device:       t.device,
		requiresGrad: t.requiresGrad,
	}
	if t.requiresGrad {
		out.gradFn = op
	}
	return out
}
