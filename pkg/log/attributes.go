// Standard attribute keys for optimal transport runs.
//
// Keys follow a hierarchical naming convention ("ot.epsilon",
// "data.sources") so that logs from the solver and the search can be
// filtered together.

package log

// Component context.
const (
	// ComponentKey identifies the package performing the operation.
	// Examples: "ot.solver", "ot.search", "cmd"
	ComponentKey = "ot.component"

	// OperationKey names the operation. See the Operation* constants.
	OperationKey = "ot.operation"

	// PhaseKey names the search phase. See the Phase* constants.
	PhaseKey = "ot.phase"
)

// Problem shape.
const (
	// SourcesKey is the number of source points (rows of the cost matrix).
	SourcesKey = "data.sources"

	// TargetsKey is the number of target points (columns of the cost matrix).
	TargetsKey = "data.targets"
)

// Parameters.
const (
	EpsilonKey     = "ot.epsilon"
	Lambda1Key     = "ot.lambda1"
	Lambda2Key     = "ot.lambda2"
	ScalingIterKey = "ot.scaling_iter"

	// L0Key is the regularization multiplier applied to lambda1/lambda2.
	L0Key = "search.l0"

	// E0Key is the multiplier applied to epsilon.
	E0Key = "search.e0"
)

// Search feedback.
const (
	// AvgTransportKey is the mean effective support size of the coupling rows.
	AvgTransportKey = "metrics.avg_transport"

	// GrowthFitKey is 1 minus the squared relative error of the row sums.
	GrowthFitKey = "metrics.growth_fit"

	// DecisionKey is the branch the search took after a solver call.
	DecisionKey = "search.decision"

	// CallKey counts solver calls within one search run, starting at 1.
	CallKey = "search.call"

	// AbsorptionsKey counts log-domain absorptions within one solver call.
	AbsorptionsKey = "solver.absorptions"

	// IterationKey is the scaling iteration at which an event happened.
	IterationKey = "solver.iteration"
)

// Timing and errors.
const (
	DurationMsKey = "perf.duration_ms"
	ErrorKey      = "error"
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationTransport = "transport"
	OperationSearch    = "search"

	PhaseSearch   = "search"
	PhaseRecovery = "recovery"
)
