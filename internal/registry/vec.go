package registry

import "fmt"

// Vec3 converts a decoded list attribute into a 3-vector.
func Vec3(name string, v []float64) ([3]float64, error) {
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("%s: expected 3 components, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

// OptVec3 is Vec3 for an optional attribute; a nil pointer stays unset.
func OptVec3(name string, v *[]float64) (*[3]float64, error) {
	if v == nil {
		return nil, nil
	}
	out, err := Vec3(name, *v)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
