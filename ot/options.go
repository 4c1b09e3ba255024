package ot

import "github.com/YuminosukeSato/wot/pkg/log"

type settings struct {
	cfg    Config
	logger log.Logger
}

func newSettings(component string, opts []Option) *settings {
	s := &settings{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName(component)
	}
	return s
}

// Option configures Search and Transport.
type Option func(*settings)

// WithConfig replaces the whole configuration. Options applied after it
// still override individual fields.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.cfg = cfg
	}
}

// WithEpsilon sets the base entropy regularization.
func WithEpsilon(epsilon float64) Option {
	return func(s *settings) {
		s.cfg.Epsilon = epsilon
	}
}

// WithLambda1 sets the base source-marginal regularization.
func WithLambda1(lambda float64) Option {
	return func(s *settings) {
		s.cfg.Lambda1 = lambda
	}
}

// WithLambda2 sets the base target-marginal regularization.
func WithLambda2(lambda float64) Option {
	return func(s *settings) {
		s.cfg.Lambda2 = lambda
	}
}

// WithGrowthRatio sets the upper/lower asymptote ratio of the growth curve.
func WithGrowthRatio(ratio float64) Option {
	return func(s *settings) {
		s.cfg.GrowthRatio = ratio
	}
}

// WithDeltaDays sets the elapsed time the growth weights are raised to.
func WithDeltaDays(days float64) Option {
	return func(s *settings) {
		s.cfg.DeltaDays = days
	}
}

// WithTransportFraction sets the acceptance band for the average transport.
func WithTransportFraction(lo, hi float64) Option {
	return func(s *settings) {
		s.cfg.MinTransportFraction = lo
		s.cfg.MaxTransportFraction = hi
	}
}

// WithMinGrowthFit sets the growth fit below which regularization escalates.
func WithMinGrowthFit(fit float64) Option {
	return func(s *settings) {
		s.cfg.MinGrowthFit = fit
	}
}

// WithL0Max caps the regularization multiplier.
func WithL0Max(l0Max float64) Option {
	return func(s *settings) {
		s.cfg.L0Max = l0Max
	}
}

// WithScalingIter sets the number of scaling iterations per solver call.
func WithScalingIter(n int) Option {
	return func(s *settings) {
		s.cfg.ScalingIter = n
	}
}

// WithMaxIterations caps the number of solver calls of one search.
func WithMaxIterations(n int) Option {
	return func(s *settings) {
		s.cfg.MaxIterations = n
	}
}

// WithParallelThreshold sets the row count above which kernels run in parallel.
func WithParallelThreshold(rows int) Option {
	return func(s *settings) {
		s.cfg.ParallelThreshold = rows
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}
