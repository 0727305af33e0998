// Package scaling maps tensors, arrays and slices onto [0, 1] by
// min-max normalization.
package scaling

import (
	"gonum.org/v1/gonum/floats"
)

// MinMaxScale returns (x - min) / (max - min). Constant input maps to zeros.
func MinMaxScale(values []float64) []float64 {
	result := make([]float64, len(values))
	copy(result, values)
	if len(result) == 0 {
		return result
	}

	min := floats.Min(result)
	max := floats.Max(result)

	if max != min {
		floats.AddConst(-min, result)
		span := max - min
		for i := range result {
			result[i] /= span
		}
	} else {
		floats.Scale(0, result)
	}

	return result
}
