package entity

import (
	"encoding/json"
	"fmt"
)

// Coeff is a material or boundary coefficient given either as a scalar
// (isotropic) or as a 3-vector along the material axes.
type Coeff []float64

// Scalar returns an isotropic coefficient.
func Scalar(v float64) Coeff {
	return Coeff{v}
}

// Diag returns an anisotropic coefficient.
func Diag(x, y, z float64) Coeff {
	return Coeff{x, y, z}
}

// IsScalar reports whether c holds a single value.
func (c Coeff) IsScalar() bool {
	return len(c) == 1
}

func (c Coeff) validate(name string) error {
	if len(c) != 1 && len(c) != 3 {
		return fmt.Errorf("%s has %d components: %w", name, len(c), ErrCoefficientArity)
	}
	return nil
}

// MarshalJSON emits a bare number for scalars and an array otherwise.
func (c Coeff) MarshalJSON() ([]byte, error) {
	if c.IsScalar() {
		return json.Marshal(c[0])
	}
	return json.Marshal([]float64(c))
}
