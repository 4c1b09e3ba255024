package ot

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// createBenchmarkProblem は二つの点群の二乗距離をコストとする問題を生成する
func createBenchmarkProblem(sources, targets, dims int) (Problem, []float64) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	points := func(n int, shift float64) *mat.Dense {
		x := mat.NewDense(n, dims, nil)
		for i := 0; i < n; i++ {
			for d := 0; d < dims; d++ {
				x.Set(i, d, rng.Float64()+shift)
			}
		}
		return x
	}
	xs := points(sources, 0)
	ys := points(targets, 0.1)

	cost := mat.NewDense(sources, targets, nil)
	for i := 0; i < sources; i++ {
		for j := 0; j < targets; j++ {
			var d2 float64
			for d := 0; d < dims; d++ {
				diff := xs.At(i, d) - ys.At(j, d)
				d2 += diff * diff
			}
			cost.Set(i, j, d2)
		}
	}

	rates := make([]float64, sources)
	for i := range rates {
		rates[i] = rng.NormFloat64() * 0.5
	}
	return Problem{Cost: cost}, rates
}

// BenchmarkTransport は1回のソルバー呼び出しを測定する
func BenchmarkTransport(b *testing.B) {
	sizes := []struct {
		name    string
		sources int
		targets int
	}{
		{"Small_100x100", 100, 100},
		{"Medium_500x500", 500, 500}, // 並列処理の閾値(256)を超える
		{"Large_2000x1000", 2000, 1000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			prob, rates := createBenchmarkProblem(size.sources, size.targets, 5)
			g := GrowthWeights(rates, 2.5, 1)
			params := Params{Epsilon: 0.05, Lambda1: 1, Lambda2: 50, ScalingIter: 50}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Transport(prob, g, params); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkTransportSequential は並列化を無効にした版（比較用）
func BenchmarkTransportSequential(b *testing.B) {
	prob, rates := createBenchmarkProblem(500, 500, 5)
	g := GrowthWeights(rates, 2.5, 1)
	params := Params{Epsilon: 0.05, Lambda1: 1, Lambda2: 50, ScalingIter: 50}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Transport(prob, g, params, WithParallelThreshold(1<<30)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSearch は探索全体を測定する
func BenchmarkSearch(b *testing.B) {
	prob, rates := createBenchmarkProblem(200, 200, 5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Search(prob, rates, WithScalingIter(50), WithMaxIterations(30)); err != nil {
			b.Fatal(err)
		}
	}
}
