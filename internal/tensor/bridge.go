package tensor

import (
	"fmt"

	"github.com/tensorplex-labs/evalkit/internal/array"
)

// ToArray converts t into a host-memory array. The tensor is detached and
// moved to the CPU first. A rank 3 tensor is promoted to a batch of one, a
// rank 4 tensor keeps its shape, and any other rank is rejected.
func ToArray(t *Tensor) (*array.Array, error) {
	host := t.Detach().CPU()

	switch host.Rank() {
	case 3:
		promoted, err := host.Unsqueeze(0)
		if err != nil {
			return nil, err
		}
		host = promoted
	case 4:
	default:
		return nil, fmt.Errorf("%w: expected rank 3 or 4, got shape %v", ErrRank, t.shape)
	}

	values, err := host.Values()
	if err != nil {
		return nil, err
	}
	return array.New(host.shape, values)
}

// FromArray builds a CPU tensor holding a copy of a's values.
func FromArray(a *array.Array, opts ...Option) (*Tensor, error) {
	return New(a.Shape(), a.Data(), opts...)
}
