package ot

import (
	"context"
	"time"

	"github.com/YuminosukeSato/wot/metrics"
	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/YuminosukeSato/wot/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Multiplicative steps applied to the search multipliers.
const (
	lambdaStep  = 1.5
	epsilonStep = 1.1
)

// Decision is the branch the search takes after inspecting one coupling.
type Decision int

const (
	// DecisionRecover: the coupling collapsed (average transport is zero).
	DecisionRecover Decision = iota
	// DecisionEscalateLambda: growth fit too poor and l0 below its ceiling.
	DecisionEscalateLambda
	// DecisionRaiseEpsilon: transport too concentrated.
	DecisionRaiseEpsilon
	// DecisionAccept: transport inside the acceptance band.
	DecisionAccept
	// DecisionLowerEpsilon: transport too diffuse.
	DecisionLowerEpsilon
)

func (d Decision) String() string {
	switch d {
	case DecisionRecover:
		return "recover"
	case DecisionEscalateLambda:
		return "escalate_lambda"
	case DecisionRaiseEpsilon:
		return "raise_epsilon"
	case DecisionAccept:
		return "accept"
	case DecisionLowerEpsilon:
		return "lower_epsilon"
	default:
		return "unknown"
	}
}

// Feedback is what the search observes about one coupling.
type Feedback struct {
	AvgTransport float64
	GrowthFit    float64
}

// Decide picks the next step of the search. The branches are checked in a
// fixed order and the first match wins; reordering them changes which
// parameters the search converges to.
func Decide(fb Feedback, l0 float64, targets int, cfg Config) Decision {
	n := float64(targets)
	switch {
	case fb.AvgTransport == 0:
		return DecisionRecover
	case fb.GrowthFit < cfg.MinGrowthFit && l0 < cfg.L0Max:
		return DecisionEscalateLambda
	case fb.AvgTransport < n*cfg.MinTransportFraction:
		return DecisionRaiseEpsilon
	case fb.AvgTransport < n*cfg.MaxTransportFraction:
		return DecisionAccept
	default:
		return DecisionLowerEpsilon
	}
}

// Exit tells how a search ended.
type Exit int

const (
	// ExitAccepted: the average transport fell inside the acceptance band.
	ExitAccepted Exit = iota
	// ExitRecovered: the coupling collapsed and epsilon was raised until it
	// carried mass again. Fit and band were not checked.
	ExitRecovered
	// ExitIterationLimit: MaxIterations solver calls were spent first.
	ExitIterationLimit
)

func (e Exit) String() string {
	switch e {
	case ExitAccepted:
		return "accepted"
	case ExitRecovered:
		return "recovered"
	case ExitIterationLimit:
		return "iteration_limit"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (e Exit) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// Result is the coupling a search settled on and the parameters that
// produced it.
type Result struct {
	Transport *mat.Dense

	Epsilon float64
	Lambda1 float64
	Lambda2 float64

	AvgTransport float64
	GrowthFit    float64

	// Calls is the number of solver calls the search made.
	Calls int
	Exit  Exit
}

// multipliers is the mutable state of one search run.
type multipliers struct {
	l0 float64
	e0 float64
}

type search struct {
	cfg    Config
	logger log.Logger
	solver *solver
	cost   mat.Matrix
	p, q   []float64
	g      []float64
	calls  int
}

// Search computes growth weights from growthRate and then repeatedly solves
// the transport problem, adjusting epsilon and the regularization
// multiplier until the coupling is accepted.
//
// Without WithMaxIterations the search has no iteration bound. Use
// SearchContext to cancel it.
func Search(prob Problem, growthRate []float64, opts ...Option) (*Result, error) {
	return SearchContext(context.Background(), prob, growthRate, opts...)
}

// SearchContext is Search with cancellation checked before every solver call.
func SearchContext(ctx context.Context, prob Problem, growthRate []float64, opts ...Option) (*Result, error) {
	s := newSettings("ot.search", opts)
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	p, q, err := prob.marginals("Search")
	if err != nil {
		return nil, err
	}
	if len(growthRate) != len(p) {
		return nil, errors.NewDimensionError("Search", len(p), len(growthRate), 0)
	}

	sr := &search{
		cfg:    s.cfg,
		logger: s.logger.With(log.SourcesKey, len(p), log.TargetsKey, len(q)),
		solver: &solver{logger: s.logger, threshold: s.cfg.ParallelThreshold},
		cost:   prob.Cost,
		p:      p,
		q:      q,
		g:      GrowthWeights(growthRate, s.cfg.GrowthRatio, s.cfg.DeltaDays),
	}
	return sr.run(ctx)
}

func (sr *search) run(ctx context.Context) (*Result, error) {
	start := time.Now()
	m := multipliers{l0: 1, e0: 1}

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "search cancelled after %d solver calls", sr.calls)
		}

		res, err := sr.solve(m)
		if err != nil {
			return nil, err
		}

		d := Decide(Feedback{AvgTransport: res.AvgTransport, GrowthFit: res.GrowthFit}, m.l0, len(sr.q), sr.cfg)
		sr.trace(log.PhaseSearch, m, res, d)

		switch d {
		case DecisionRecover:
			return sr.recoverCollapsed(ctx, m, res, start)
		case DecisionEscalateLambda:
			m.l0 *= lambdaStep
		case DecisionRaiseEpsilon:
			m.e0 *= epsilonStep
		case DecisionAccept:
			res.Exit = ExitAccepted
			return sr.finish(res, start), nil
		case DecisionLowerEpsilon:
			m.e0 /= epsilonStep
		}

		if sr.exhausted() {
			return sr.giveUp(res, start, "iteration ceiling reached before the average transport entered the acceptance band"), nil
		}
	}
}

// recoverCollapsed raises epsilon until the coupling carries mass again and
// returns that coupling. It leaves the outer loop for good: growth fit and
// the acceptance band are not consulted.
func (sr *search) recoverCollapsed(ctx context.Context, m multipliers, collapsed *Result, start time.Time) (*Result, error) {
	last := collapsed
	for {
		if sr.exhausted() {
			return sr.giveUp(last, start, "iteration ceiling reached while the coupling was still collapsed"), nil
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "recovery cancelled after %d solver calls", sr.calls)
		}

		m.e0 *= epsilonStep
		res, err := sr.solve(m)
		if err != nil {
			return nil, err
		}
		sr.trace(log.PhaseRecovery, m, res, DecisionRecover)

		if res.AvgTransport != 0 {
			res.Exit = ExitRecovered
			return sr.finish(res, start), nil
		}
		last = res
	}
}

// solve runs the scaling solver at the current multipliers and measures
// the coupling.
func (sr *search) solve(m multipliers) (*Result, error) {
	params := Params{
		Epsilon:     sr.cfg.Epsilon * m.e0,
		Lambda1:     sr.cfg.Lambda1 * m.l0,
		Lambda2:     sr.cfg.Lambda2 * m.l0,
		ScalingIter: sr.cfg.ScalingIter,
	}
	coupling := sr.solver.solve(sr.cost, sr.p, sr.q, sr.g, params)
	sr.calls++

	avg, err := metrics.AverageTransport(coupling)
	if err != nil {
		return nil, err
	}
	fit, err := metrics.GrowthFit(coupling, sr.g)
	if err != nil {
		return nil, err
	}

	return &Result{
		Transport:    coupling,
		Epsilon:      params.Epsilon,
		Lambda1:      params.Lambda1,
		Lambda2:      params.Lambda2,
		AvgTransport: avg,
		GrowthFit:    fit,
		Calls:        sr.calls,
	}, nil
}

func (sr *search) exhausted() bool {
	return sr.cfg.MaxIterations > 0 && sr.calls >= sr.cfg.MaxIterations
}

func (sr *search) trace(phase string, m multipliers, res *Result, d Decision) {
	if !sr.logger.Enabled(context.Background(), log.LevelDebug) {
		return
	}
	sr.logger.Debug("Solver call evaluated",
		log.PhaseKey, phase,
		log.CallKey, sr.calls,
		log.L0Key, m.l0,
		log.E0Key, m.e0,
		log.EpsilonKey, res.Epsilon,
		log.Lambda1Key, res.Lambda1,
		log.Lambda2Key, res.Lambda2,
		log.AvgTransportKey, res.AvgTransport,
		log.GrowthFitKey, res.GrowthFit,
		log.DecisionKey, d.String(),
	)
}

func (sr *search) finish(res *Result, start time.Time) *Result {
	sr.logger.Info("Transport search finished",
		log.OperationKey, log.OperationSearch,
		"exit", res.Exit.String(),
		log.CallKey, res.Calls,
		log.EpsilonKey, res.Epsilon,
		log.Lambda1Key, res.Lambda1,
		log.Lambda2Key, res.Lambda2,
		log.AvgTransportKey, res.AvgTransport,
		log.GrowthFitKey, res.GrowthFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res
}

// giveUp returns the last coupling when the ceiling stops the search.
func (sr *search) giveUp(res *Result, start time.Time, reason string) *Result {
	res.Exit = ExitIterationLimit
	errors.Warn(errors.NewConvergenceWarning("OptimalTransport", sr.calls, reason))
	return sr.finish(res, start)
}
