package ot

import (
	"math"

	"github.com/YuminosukeSato/wot/pkg/errors"
)

// Config holds every tunable of the parameter search and the solver it drives.
type Config struct {
	// GrowthRatio is the ratio between the upper and lower asymptote of the
	// growth-weight curve: over one day a proliferative cell is expected to
	// produce GrowthRatio times as many offspring as a non-proliferative one.
	GrowthRatio float64 `json:"growth_ratio" yaml:"growth_ratio"`

	// DeltaDays is the elapsed time between the two point sets. Growth
	// weights are raised to this power.
	DeltaDays float64 `json:"delta_days" yaml:"delta_days"`

	// Epsilon is the base entropy regularization.
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`

	// Lambda1 and Lambda2 control the fidelity of the source and target
	// marginal constraints. Larger values make the constraints stricter.
	Lambda1 float64 `json:"lambda1" yaml:"lambda1"`
	Lambda2 float64 `json:"lambda2" yaml:"lambda2"`

	// MinTransportFraction and MaxTransportFraction bound the accepted
	// average transport as a fraction of the number of target points.
	MinTransportFraction float64 `json:"min_transport_fraction" yaml:"min_transport_fraction"`
	MaxTransportFraction float64 `json:"max_transport_fraction" yaml:"max_transport_fraction"`

	// MinGrowthFit is the growth fit below which regularization is escalated.
	MinGrowthFit float64 `json:"min_growth_fit" yaml:"min_growth_fit"`

	// L0Max caps the regularization multiplier.
	L0Max float64 `json:"l0_max" yaml:"l0_max"`

	// ScalingIter is the number of scaling iterations per solver call.
	ScalingIter int `json:"scaling_iter" yaml:"scaling_iter"`

	// MaxIterations caps the number of solver calls of one search.
	// Zero leaves the search unbounded.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`

	// ParallelThreshold is the row count above which dense kernels are
	// split across cores. Zero uses parallel.DefaultThreshold.
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"`
}

// DefaultConfig returns the default search configuration.
func DefaultConfig() Config {
	return Config{
		GrowthRatio:          2.5,
		DeltaDays:            1,
		Epsilon:              0.1,
		Lambda1:              1.0,
		Lambda2:              1.0,
		MinTransportFraction: 0.05,
		MaxTransportFraction: 0.4,
		MinGrowthFit:         0.9,
		L0Max:                100,
		ScalingIter:          250,
	}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// Validate reports the first invalid field as a ValidationError.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"growth_ratio", c.GrowthRatio},
		{"epsilon", c.Epsilon},
		{"lambda1", c.Lambda1},
		{"lambda2", c.Lambda2},
		{"l0_max", c.L0Max},
	}
	for _, p := range positive {
		if !finite(p.value) || p.value <= 0 {
			return errors.NewValidationError(p.name, "must be a positive finite number", p.value)
		}
	}

	if !finite(c.DeltaDays) {
		return errors.NewValidationError("delta_days", "must be finite", c.DeltaDays)
	}
	if !finite(c.MinGrowthFit) {
		return errors.NewValidationError("min_growth_fit", "must be finite", c.MinGrowthFit)
	}
	if !finite(c.MinTransportFraction) || c.MinTransportFraction < 0 {
		return errors.NewValidationError("min_transport_fraction", "must be a non-negative finite number", c.MinTransportFraction)
	}
	if !finite(c.MaxTransportFraction) || c.MaxTransportFraction < c.MinTransportFraction {
		return errors.NewValidationError("max_transport_fraction", "must be finite and not below min_transport_fraction", c.MaxTransportFraction)
	}
	if c.ScalingIter < 1 {
		return errors.NewValidationError("scaling_iter", "must be at least 1", c.ScalingIter)
	}
	if c.MaxIterations < 0 {
		return errors.NewValidationError("max_iterations", "must be non-negative", c.MaxIterations)
	}
	if c.ParallelThreshold < 0 {
		return errors.NewValidationError("parallel_threshold", "must be non-negative", c.ParallelThreshold)
	}
	return nil
}
