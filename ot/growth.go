package ot

import "math"

// Shape of the growth-weight curve.
const (
	DefaultLowerAsymptote = 0.5
	DefaultInflection     = 0.22
	DefaultSteepness      = 10.0
)

// GrowthCurve is a logistic map from raw growth rates into [Lower, Upper].
type GrowthCurve struct {
	Lower      float64
	Upper      float64
	Inflection float64
	Steepness  float64
}

// NewGrowthCurve returns the standard curve whose upper asymptote is
// growthRatio times the lower one.
func NewGrowthCurve(growthRatio float64) GrowthCurve {
	return GrowthCurve{
		Lower:      DefaultLowerAsymptote,
		Upper:      DefaultLowerAsymptote * growthRatio,
		Inflection: DefaultInflection,
		Steepness:  DefaultSteepness,
	}
}

// Weight maps one growth rate through the curve.
func (c GrowthCurve) Weight(rate float64) float64 {
	return (c.Upper-c.Lower)/(1+math.Exp(-c.Steepness*(rate-c.Inflection))) + c.Lower
}

// GrowthWeights maps raw growth rates to per-source weights over deltaDays.
// Single-day weights from the curve are raised to the power deltaDays.
func GrowthWeights(rates []float64, growthRatio, deltaDays float64) []float64 {
	curve := NewGrowthCurve(growthRatio)
	g := make([]float64, len(rates))
	for i, r := range rates {
		g[i] = math.Pow(curve.Weight(r), deltaDays)
	}
	return g
}
