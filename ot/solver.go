package ot

import (
	"context"
	"math"

	"github.com/YuminosukeSato/wot/core/parallel"
	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/YuminosukeSato/wot/pkg/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StabilizationThreshold is the scaling-factor magnitude above which the
// factors are absorbed into the log-domain potentials.
const StabilizationThreshold = 1e100

// Problem is one transport instance: a cost matrix between source points
// (rows) and target points (columns) and the two marginals.
type Problem struct {
	// Cost is the non-negative cost of moving source i to target j.
	Cost mat.Matrix

	// P is the source distribution. Nil means uniform.
	P []float64

	// Q is the target distribution. Nil means uniform.
	Q []float64
}

// Params is one parameter setting of the scaling solver.
type Params struct {
	Epsilon     float64
	Lambda1     float64
	Lambda2     float64
	ScalingIter int
}

func uniform(n int) []float64 {
	u := make([]float64, n)
	for i := range u {
		u[i] = 1 / float64(n)
	}
	return u
}

// marginals checks shapes and fills in uniform defaults.
func (pr Problem) marginals(op string) (p, q []float64, err error) {
	if pr.Cost == nil {
		return nil, nil, errors.NewValueError(op, "cost matrix is nil")
	}
	n, m := pr.Cost.Dims()
	if n == 0 || m == 0 {
		return nil, nil, errors.Wrapf(errors.ErrEmptyData, "%s: cost matrix is %dx%d", op, n, m)
	}

	p, q = pr.P, pr.Q
	if p == nil {
		p = uniform(n)
	}
	if q == nil {
		q = uniform(m)
	}
	if len(p) != n {
		return nil, nil, errors.NewDimensionError(op, n, len(p), 0)
	}
	if len(q) != m {
		return nil, nil, errors.NewDimensionError(op, m, len(q), 1)
	}
	return p, q, nil
}

// Transport runs one stabilized scaling solve for a single parameter
// triple. g holds the per-source growth weights; nil means no growth.
// The returned coupling has row sums close to p·g and column sums close to
// q·mean(g), more closely as lambda1 and lambda2 grow.
//
// Only shapes are checked. Non-finite or negative inputs propagate into
// the result as NaN or Inf.
func Transport(prob Problem, g []float64, params Params, opts ...Option) (*mat.Dense, error) {
	s := newSettings("ot.solver", opts)

	p, q, err := prob.marginals("Transport")
	if err != nil {
		return nil, err
	}
	if g == nil {
		g = make([]float64, len(p))
		for i := range g {
			g[i] = 1
		}
	}
	if len(g) != len(p) {
		return nil, errors.NewDimensionError("Transport", len(p), len(g), 0)
	}
	if params.ScalingIter < 1 {
		return nil, errors.NewValidationError("scaling_iter", "must be at least 1", params.ScalingIter)
	}

	sv := &solver{logger: s.logger, threshold: s.cfg.ParallelThreshold}
	return sv.solve(prob.Cost, p, q, g, params), nil
}

// solver carries the ambient settings of the scaling iterations.
type solver struct {
	logger    log.Logger
	threshold int
}

func (sv *solver) solve(cost mat.Matrix, p, q, g []float64, params Params) *mat.Dense {
	n, m := cost.Dims()
	eps := params.Epsilon

	pg := make([]float64, n)
	floats.MulTo(pg, p, g)
	qg := make([]float64, m)
	floats.ScaleTo(qg, floats.Sum(g)/float64(len(g)), q)

	k0 := sv.kernel(cost, eps)
	k := mat.DenseCopyOf(k0)

	u := make([]float64, n)
	v := make([]float64, m)
	a := make([]float64, n)
	b := make([]float64, m)
	fill(b, 1)

	av := mat.NewVecDense(n, a)
	bv := mat.NewVecDense(m, b)
	kb := mat.NewVecDense(n, nil)
	kta := mat.NewVecDense(m, nil)

	alpha1 := params.Lambda1 / (params.Lambda1 + eps)
	alpha2 := params.Lambda2 / (params.Lambda2 + eps)
	damp1 := params.Lambda1 + eps
	damp2 := params.Lambda2 + eps

	absorptions := 0
	for it := 0; it < params.ScalingIter; it++ {
		kb.MulVec(k, bv)
		for i := range a {
			a[i] = math.Pow(pg[i]/kb.AtVec(i), alpha1) * math.Exp(-u[i]/damp1)
		}
		kta.MulVec(k.T(), av)
		for j := range b {
			b[j] = math.Pow(qg[j]/kta.AtVec(j), alpha2) * math.Exp(-v[j]/damp2)
		}

		if math.Max(maxAbs(a), maxAbs(b)) > StabilizationThreshold {
			st := sv.absorb(k0, u, v, a, b, eps)
			u, v, k = st.U, st.V, st.K
			copy(a, st.A)
			copy(b, st.B)
			absorptions++
			if sv.logger.Enabled(context.Background(), log.LevelDebug) {
				sv.logger.Debug("Absorbed scaling factors into log domain",
					log.IterationKey, it,
					log.AbsorptionsKey, absorptions,
					log.EpsilonKey, eps,
				)
			}
		}
	}

	return sv.couple(k, a, b)
}

// kernel computes K0 = exp(-C/epsilon).
func (sv *solver) kernel(cost mat.Matrix, eps float64) *mat.Dense {
	n, m := cost.Dims()
	k0 := mat.NewDense(n, m, nil)
	parallel.RowsWithThreshold(n, sv.threshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := k0.RawRowView(i)
			mat.Row(row, i, cost)
			for j, c := range row {
				row[j] = math.Exp(-c / eps)
			}
		}
	})
	return k0
}

// couple returns diag(a)·K·diag(b).
func (sv *solver) couple(k *mat.Dense, a, b []float64) *mat.Dense {
	n, m := k.Dims()
	out := mat.NewDense(n, m, nil)
	parallel.RowsWithThreshold(n, sv.threshold, func(start, end int) {
		for i := start; i < end; i++ {
			src := k.RawRowView(i)
			dst := out.RawRowView(i)
			for j := range dst {
				dst[j] = src[j] * a[i] * b[j]
			}
		}
	})
	return out
}

// Stabilized is the solver state right after a log-domain absorption.
type Stabilized struct {
	// U and V are the updated log-domain dual potentials.
	U, V []float64

	// K is K0 reweighted by exp(U/epsilon) on rows and exp(V/epsilon) on columns.
	K *mat.Dense

	// A and B are the reset scaling vectors (all ones).
	A, B []float64
}

// Absorb moves the scale of a and b into the potentials u and v and rebuilds
// the working kernel from k0. It does not modify its arguments.
func Absorb(k0 *mat.Dense, u, v, a, b []float64, epsilon float64) Stabilized {
	sv := &solver{}
	return sv.absorb(k0, u, v, a, b, epsilon)
}

func (sv *solver) absorb(k0 *mat.Dense, u, v, a, b []float64, eps float64) Stabilized {
	n, m := k0.Dims()

	nu := make([]float64, n)
	for i := range nu {
		nu[i] = u[i] + eps*math.Log(a[i])
	}
	nv := make([]float64, m)
	for j := range nv {
		nv[j] = v[j] + eps*math.Log(b[j])
	}

	ru := make([]float64, n)
	for i := range ru {
		ru[i] = math.Exp(nu[i] / eps)
	}
	rv := make([]float64, m)
	for j := range rv {
		rv[j] = math.Exp(nv[j] / eps)
	}

	k := mat.NewDense(n, m, nil)
	parallel.RowsWithThreshold(n, sv.threshold, func(start, end int) {
		for i := start; i < end; i++ {
			src := k0.RawRowView(i)
			dst := k.RawRowView(i)
			for j := range dst {
				dst[j] = src[j] * ru[i] * rv[j]
			}
		}
	})

	na := make([]float64, n)
	fill(na, 1)
	nb := make([]float64, m)
	fill(nb, 1)

	return Stabilized{U: nu, V: nv, K: k, A: na, B: nb}
}

// maxAbs ignores NaN entries, matching the comparison semantics of the
// stabilization check.
func maxAbs(x []float64) float64 {
	var m float64
	for _, v := range x {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func fill(x []float64, v float64) {
	for i := range x {
		x[i] = v
	}
}
