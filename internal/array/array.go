// Package array provides a plain host-memory n-dimensional float64 array and
// the process-wide array random number generator.
package array

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrShape = errors.New("array: data length does not match shape")
	ErrAxes  = errors.New("array: invalid axes permutation")
	ErrIndex = errors.New("array: index out of range")
)

// Array is a row-major n-dimensional array of float64 values.
type Array struct {
	shape []int
	data  []float64
}

func New(shape []int, data []float64) (*Array, error) {
	n := numel(shape)
	if n < 0 || len(data) != n {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, shape, n, len(data))
	}

	return &Array{shape: append([]int(nil), shape...), data: data}, nil
}

func Zeros(shape ...int) *Array {
	return &Array{shape: append([]int(nil), shape...), data: make([]float64, numel(shape))}
}

// FromSlice wraps a 1D slice without copying.
func FromSlice(data []float64) *Array {
	return &Array{shape: []int{len(data)}, data: data}
}

func numel(shape []int) int {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return -1
		}
		n *= d
	}
	return n
}

func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

func (a *Array) Rank() int { return len(a.shape) }

func (a *Array) Size() int { return len(a.data) }

// Data returns a copy of the underlying values.
func (a *Array) Data() []float64 {
	out := make([]float64, len(a.data))
	copy(out, a.data)
	return out
}

// Raw exposes the backing slice. Mutating it mutates the array.
func (a *Array) Raw() []float64 { return a.data }

func (a *Array) Clone() *Array {
	return &Array{shape: a.Shape(), data: a.Data()}
}

func (a *Array) strides() []int {
	strides := make([]int, len(a.shape))
	s := 1
	for i := len(a.shape) - 1; i >= 0; i-- {
		strides[i] = s
		s *= a.shape[i]
	}
	return strides
}

func (a *Array) offset(idx []int) (int, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: got %d indices for rank %d", ErrIndex, len(idx), len(a.shape))
	}
	off := 0
	strides := a.strides()
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			return 0, fmt.Errorf("%w: index %d on axis %d of size %d", ErrIndex, v, i, a.shape[i])
		}
		off += v * strides[i]
	}
	return off, nil
}

// At panics on a bad index, like slice indexing.
func (a *Array) At(idx ...int) float64 {
	off, err := a.offset(idx)
	if err != nil {
		panic(err)
	}
	return a.data[off]
}

func (a *Array) Set(v float64, idx ...int) {
	off, err := a.offset(idx)
	if err != nil {
		panic(err)
	}
	a.data[off] = v
}

// Min returns the global minimum. It panics on an empty array.
func (a *Array) Min() float64 { return floats.Min(a.data) }

// Max returns the global maximum. It panics on an empty array.
func (a *Array) Max() float64 { return floats.Max(a.data) }

// AddConst returns a new array with c added to every element.
func (a *Array) AddConst(c float64) *Array {
	out := a.Clone()
	floats.AddConst(c, out.data)
	return out
}

// Scale returns a new array with every element multiplied by c.
func (a *Array) Scale(c float64) *Array {
	out := a.Clone()
	floats.Scale(c, out.data)
	return out
}

// DivConst returns a new array with every element divided by c.
func (a *Array) DivConst(c float64) *Array {
	out := a.Clone()
	for i := range out.data {
		out.data[i] /= c
	}
	return out
}

func (a *Array) Reshape(shape ...int) (*Array, error) {
	if numel(shape) != len(a.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShape, a.shape, shape)
	}
	return &Array{shape: append([]int(nil), shape...), data: a.Data()}, nil
}

// Squeeze drops axis when it has size 1.
func (a *Array) Squeeze(axis int) (*Array, error) {
	if axis < 0 || axis >= len(a.shape) || a.shape[axis] != 1 {
		return nil, fmt.Errorf("%w: cannot squeeze axis %d of %v", ErrShape, axis, a.shape)
	}
	shape := append(a.Shape()[:axis], a.shape[axis+1:]...)
	return &Array{shape: shape, data: a.Data()}, nil
}

// Transpose permutes the axes. With no arguments the axes are reversed.
func (a *Array) Transpose(axes ...int) (*Array, error) {
	rank := len(a.shape)
	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		return nil, fmt.Errorf("%w: %v for rank %d", ErrAxes, axes, rank)
	}
	seen := make([]bool, rank)
	for _, ax := range axes {
		if ax < 0 || ax >= rank || seen[ax] {
			return nil, fmt.Errorf("%w: %v for rank %d", ErrAxes, axes, rank)
		}
		seen[ax] = true
	}

	outShape := make([]int, rank)
	for i, ax := range axes {
		outShape[i] = a.shape[ax]
	}
	out := Zeros(outShape...)
	if len(a.data) == 0 {
		return out, nil
	}

	srcStrides := a.strides()
	idx := make([]int, rank)
	for i := range out.data {
		off := 0
		for d, ax := range axes {
			off += idx[d] * srcStrides[ax]
		}
		out.data[i] = a.data[off]

		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < outShape[d] {
				break
			}
			idx[d] = 0
		}
	}

	return out, nil
}
