package metrics

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

var ErrNotMonotonic = errors.New("metrics: x is neither increasing nor decreasing")

// AUC computes the area under y(x) with the trapezoidal rule. x must be
// monotonic; for decreasing x the area is taken in increasing direction.
func AUC(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("metrics: at least 2 points are needed to compute an area, got %d", len(x))
	}

	switch {
	case floats.HasNaN(x) || floats.HasNaN(y):
		return 0, fmt.Errorf("%w: NaN in curve", ErrNotMonotonic)
	case slices.IsSorted(x):
		return integrate.Trapezoidal(x, y), nil
	case isDecreasing(x):
		rx := slices.Clone(x)
		ry := slices.Clone(y)
		slices.Reverse(rx)
		slices.Reverse(ry)
		return integrate.Trapezoidal(rx, ry), nil
	default:
		return 0, ErrNotMonotonic
	}
}

func isDecreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] > x[i-1] {
			return false
		}
	}
	return true
}
