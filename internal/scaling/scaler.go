package scaling

import (
	"errors"
	"fmt"

	"github.com/tensorplex-labs/evalkit/internal/array"
	"github.com/tensorplex-labs/evalkit/internal/tensor"
)

var (
	ErrUnsupportedInput = errors.New("scaling: input is neither a tensor nor an array")
	ErrEmpty            = errors.New("scaling: empty input")
)

// Reducer is implemented by both numeric representations.
type Reducer interface {
	Min() float64
	Max() float64
}

var (
	_ Reducer = (*tensor.Tensor)(nil)
	_ Reducer = (*array.Array)(nil)
)

// bounds returns the minimum and the span of r. A constant input has a zero
// span and every element maps to 0.
func bounds(r Reducer) (min, span float64) {
	min = r.Min()
	return min, r.Max() - min
}

// Scale dispatches on the representation of x and returns a value of the
// same representation.
func Scale(x any) (any, error) {
	switch v := x.(type) {
	case *tensor.Tensor:
		return ScaleTensor(v)
	case *array.Array:
		return ScaleArray(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedInput, x)
	}
}

// ScaleTensor keeps gradient tracking: the result of a tracked tensor is
// tracked too.
func ScaleTensor(t *tensor.Tensor) (*tensor.Tensor, error) {
	if t == nil || t.NumElements() == 0 {
		return nil, ErrEmpty
	}
	min, span := bounds(t)
	if span == 0 {
		return t.AddScalar(-min).MulScalar(0), nil
	}
	return t.AddScalar(-min).DivScalar(span), nil
}

func ScaleArray(a *array.Array) (*array.Array, error) {
	if a == nil || a.Size() == 0 {
		return nil, ErrEmpty
	}
	min, span := bounds(a)
	if span == 0 {
		return a.AddConst(-min).Scale(0), nil
	}
	return a.AddConst(-min).DivConst(span), nil
}
