package main

import (
	"encoding/json"
	"fmt"

	"github.com/YuminosukeSato/wot/config"
	"github.com/YuminosukeSato/wot/metrics"
	"github.com/YuminosukeSato/wot/ot"
	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/YuminosukeSato/wot/pkg/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

// transportOutput is the JSON document printed by the transport command.
type transportOutput struct {
	Exit         string      `json:"exit,omitempty"`
	Calls        int         `json:"calls"`
	Epsilon      float64     `json:"epsilon"`
	Lambda1      float64     `json:"lambda1"`
	Lambda2      float64     `json:"lambda2"`
	AvgTransport float64     `json:"avg_transport"`
	GrowthFit    float64     `json:"growth_fit"`
	Transport    [][]float64 `json:"transport"`
}

func newTransportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transport",
		Short: "Solve the transport problem of a run file",
		Long: `Load a run file, search for epsilon and lambda and print the
accepted coupling as JSON.

With --once the search is skipped and a single solver call is made with
the configured epsilon, lambda1 and lambda2.`,
		Example: `  wot transport --config run.yaml
  wot transport --config run.yaml --epsilon 0.05 --max-iterations 50
  wot transport --config run.yaml --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.SafeExecute("wot transport", func() error {
				return runTransport(cmd)
			})
		},
	}

	cmd.Flags().String("config", "", "Path to the YAML run file (required)")
	cmd.Flags().Float64("epsilon", 0, "Override solver.epsilon")
	cmd.Flags().Float64("lambda1", 0, "Override solver.lambda1")
	cmd.Flags().Float64("lambda2", 0, "Override solver.lambda2")
	cmd.Flags().Int("scaling-iter", 0, "Override solver.scaling_iter")
	cmd.Flags().Int("max-iterations", 0, "Override solver.max_iterations (0 = unbounded)")
	cmd.Flags().Bool("once", false, "Run one solver call instead of the search")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runTransport(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	file, err := config.Load(path)
	if err != nil {
		return err
	}
	if file.Problem == nil {
		return errors.NewValueError("wot transport", fmt.Sprintf("%s has no problem block", path))
	}

	if err := applyFlagOverrides(cmd, file); err != nil {
		return err
	}
	log.SetLevel(file.LogLevel())
	logger := log.GetLoggerWithName("cmd").With(log.OperationKey, log.OperationTransport)

	prob, rates, err := file.Problem.Build()
	if err != nil {
		return err
	}

	once, _ := cmd.Flags().GetBool("once")
	var out *transportOutput
	if once {
		out, err = solveOnce(prob, rates, file.Solver)
	} else {
		out, err = search(cmd, prob, rates, file.Solver)
	}
	if err != nil {
		logger.Error("Transport failed", err)
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func applyFlagOverrides(cmd *cobra.Command, file *config.File) error {
	flags := cmd.Flags()
	if flags.Changed("epsilon") {
		file.Solver.Epsilon, _ = flags.GetFloat64("epsilon")
	}
	if flags.Changed("lambda1") {
		file.Solver.Lambda1, _ = flags.GetFloat64("lambda1")
	}
	if flags.Changed("lambda2") {
		file.Solver.Lambda2, _ = flags.GetFloat64("lambda2")
	}
	if flags.Changed("scaling-iter") {
		file.Solver.ScalingIter, _ = flags.GetInt("scaling-iter")
	}
	if flags.Changed("max-iterations") {
		file.Solver.MaxIterations, _ = flags.GetInt("max-iterations")
	}
	if flags.Changed("log-level") {
		file.Logging.Level, _ = flags.GetString("log-level")
	}
	return file.Validate()
}

func search(cmd *cobra.Command, prob ot.Problem, rates []float64, cfg ot.Config) (*transportOutput, error) {
	res, err := ot.SearchContext(cmd.Context(), prob, rates, ot.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	// JSONはNaN/Infを表現できない
	if err := errors.CheckMatrix("search", res.Transport, res.Calls); err != nil {
		return nil, err
	}

	return &transportOutput{
		Exit:         res.Exit.String(),
		Calls:        res.Calls,
		Epsilon:      res.Epsilon,
		Lambda1:      res.Lambda1,
		Lambda2:      res.Lambda2,
		AvgTransport: res.AvgTransport,
		GrowthFit:    res.GrowthFit,
		Transport:    rows(res.Transport),
	}, nil
}

func solveOnce(prob ot.Problem, rates []float64, cfg ot.Config) (*transportOutput, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var g []float64
	if rates != nil {
		g = ot.GrowthWeights(rates, cfg.GrowthRatio, cfg.DeltaDays)
	}
	params := ot.Params{
		Epsilon:     cfg.Epsilon,
		Lambda1:     cfg.Lambda1,
		Lambda2:     cfg.Lambda2,
		ScalingIter: cfg.ScalingIter,
	}
	coupling, err := ot.Transport(prob, g, params, ot.WithConfig(cfg))
	if err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix("transport", coupling, 1); err != nil {
		return nil, err
	}

	avg, err := metrics.AverageTransport(coupling)
	if err != nil {
		return nil, err
	}
	out := &transportOutput{
		Calls:        1,
		Epsilon:      params.Epsilon,
		Lambda1:      params.Lambda1,
		Lambda2:      params.Lambda2,
		AvgTransport: avg,
		Transport:    rows(coupling),
	}
	if g != nil {
		if out.GrowthFit, err = metrics.GrowthFit(coupling, g); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
