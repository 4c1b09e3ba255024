package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// maxReportedValues bounds how many offending values an instability error carries.
const maxReportedValues = 10

// CheckNumericalStability checks if values contain NaN or Inf
// and returns an error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// CheckMatrix scans a matrix for NaN or Inf entries. Only the first
// offending row is collected into the returned error.
func CheckMatrix(operation string, m mat.Matrix, iteration int) error {
	rows, cols := m.Dims()
	var unstable []float64

	for i := 0; i < rows && len(unstable) == 0; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
				if len(unstable) >= maxReportedValues {
					break
				}
			}
		}
	}

	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}
