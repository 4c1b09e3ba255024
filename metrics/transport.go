// Package metrics computes the feedback statistics the parameter search uses
// to judge a coupling matrix.
package metrics

import (
	"math"

	"github.com/YuminosukeSato/wot/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RowEntropy は行を確率分布に正規化したときのシャノンエントロピー（自然対数）を返す。
// 質量が0または有限でない行は分布として定義できないため NaN を返す。
func RowEntropy(row []float64) float64 {
	sum := floats.Sum(row)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return math.NaN()
	}
	p := make([]float64, len(row))
	floats.ScaleTo(p, 1/sum, row)
	return stat.Entropy(p)
}

// EffectiveSupport は exp(エントロピー) で、その行から実質的に質量を受け取る
// ターゲット点の数を表す。質量のない行（数値的崩壊）は 0 とする。
func EffectiveSupport(row []float64) float64 {
	h := RowEntropy(row)
	if math.IsNaN(h) {
		return 0
	}
	return math.Exp(h)
}

// AverageTransport は全ソース点についての EffectiveSupport の平均を返す。
// 全ての行が崩壊している場合に限り 0 になる。
func AverageTransport(coupling mat.Matrix) (float64, error) {
	r, c := coupling.Dims()
	if r == 0 || c == 0 {
		return 0, errors.NewValueError("AverageTransport", "empty coupling matrix")
	}

	row := make([]float64, c)
	var total float64
	for i := 0; i < r; i++ {
		mat.Row(row, i, coupling)
		total += EffectiveSupport(row)
	}
	return total / float64(r), nil
}

// GrowthFit は 1 - ‖rowSums - g/n‖² / ‖g/n‖² を返す。n はソース点の数。
// 行和が成長で重み付けされた周辺分布に一致すれば 1 になる。
func GrowthFit(coupling mat.Matrix, g []float64) (float64, error) {
	r, _ := coupling.Dims()
	if r == 0 {
		return 0, errors.NewValueError("GrowthFit", "empty coupling matrix")
	}
	if len(g) != r {
		return 0, errors.NewDimensionError("GrowthFit", r, len(g), 0)
	}

	expected := make([]float64, r)
	floats.ScaleTo(expected, 1/float64(r), g)

	d := floats.Distance(RowSums(coupling), expected, 2)
	n := floats.Norm(expected, 2)
	return 1 - (d*d)/(n*n), nil
}

// RowSums は各行の和を返す。
func RowSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, m)
		sums[i] = floats.Sum(row)
	}
	return sums
}

// ColSums は各列の和を返す。
func ColSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	sums := make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		sums[j] = floats.Sum(col)
	}
	return sums
}

// MarginalResiduals は行和・列和と目標周辺分布との最大絶対誤差を返す。
// 結合行列が与えられた周辺制約をどの程度満たしているかの監査に使う。
func MarginalResiduals(coupling mat.Matrix, rowTarget, colTarget []float64) (rowErr, colErr float64, err error) {
	r, c := coupling.Dims()
	if len(rowTarget) != r {
		return 0, 0, errors.NewDimensionError("MarginalResiduals", r, len(rowTarget), 0)
	}
	if len(colTarget) != c {
		return 0, 0, errors.NewDimensionError("MarginalResiduals", c, len(colTarget), 1)
	}

	rowErr = floats.Distance(RowSums(coupling), rowTarget, math.Inf(1))
	colErr = floats.Distance(ColSums(coupling), colTarget, math.Inf(1))
	return rowErr, colErr, nil
}
