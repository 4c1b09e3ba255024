package metrics

import (
	"math"
	"testing"

	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEffectiveSupport(t *testing.T) {
	tests := []struct {
		name string
		row  []float64
		want float64
	}{
		{name: "point mass", row: []float64{0, 0.3, 0}, want: 1},
		{name: "uniform over four", row: []float64{0.25, 0.25, 0.25, 0.25}, want: 4},
		{name: "unnormalized uniform", row: []float64{2, 2}, want: 2},
		{name: "zero row", row: []float64{0, 0, 0}, want: 0},
		{name: "nan row", row: []float64{math.NaN(), 1}, want: 0},
		{name: "inf row", row: []float64{math.Inf(1), 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EffectiveSupport(tt.row), 1e-12)
		})
	}
}

func TestRowEntropy(t *testing.T) {
	assert.InDelta(t, math.Log(2), RowEntropy([]float64{0.5, 0.5}), 1e-12)
	assert.True(t, math.IsNaN(RowEntropy([]float64{0, 0})))
}

func TestAverageTransport(t *testing.T) {
	coupling := mat.NewDense(2, 2, []float64{
		0.5, 0,
		0.25, 0.25,
	})
	got, err := AverageTransport(coupling)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-12)

	t.Run("collapsed coupling is zero", func(t *testing.T) {
		nan := math.NaN()
		got, err := AverageTransport(mat.NewDense(2, 2, []float64{nan, nan, nan, nan}))
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := AverageTransport(&mat.Dense{})
		var valueErr *errors.ValueError
		assert.True(t, errors.As(err, &valueErr))
	})
}

func TestGrowthFit(t *testing.T) {
	g := []float64{1, 1}

	t.Run("perfect", func(t *testing.T) {
		coupling := mat.NewDense(2, 2, []float64{0.4, 0.1, 0.1, 0.4})
		got, err := GrowthFit(coupling, g)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got, 1e-12)
	})

	t.Run("half mass", func(t *testing.T) {
		// row sums 0.25 vs expected 0.5: 1 - (2*0.0625)/(2*0.25) = 0.75
		coupling := mat.NewDense(2, 2, []float64{0.25, 0, 0, 0.25})
		got, err := GrowthFit(coupling, g)
		require.NoError(t, err)
		assert.InDelta(t, 0.75, got, 1e-12)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := GrowthFit(mat.NewDense(2, 2, nil), []float64{1, 1, 1})
		var dimErr *errors.DimensionError
		assert.True(t, errors.As(err, &dimErr))
	})
}

func TestRowAndColSums(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		1, 2, 3,
		4, 5, 6,
	})
	assert.Equal(t, []float64{6, 15}, RowSums(m))
	assert.Equal(t, []float64{5, 7, 9}, ColSums(m))
}

func TestMarginalResiduals(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{0.5, 0, 0, 0.4})

	rowErr, colErr, err := MarginalResiduals(m, []float64{0.5, 0.5}, []float64{0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, rowErr, 1e-12)
	assert.InDelta(t, 0.1, colErr, 1e-12)

	_, _, err = MarginalResiduals(m, []float64{1}, []float64{0.5, 0.5})
	assert.Error(t, err)
	_, _, err = MarginalResiduals(m, []float64{0.5, 0.5}, []float64{1})
	assert.Error(t, err)
}
