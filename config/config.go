// Package config loads wot run files.
// A run file holds the solver settings, the log level and optionally the
// transport problem itself, and is read from YAML with environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/wot/ot"
	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/YuminosukeSato/wot/pkg/log"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// File is the content of one run file.
type File struct {
	// Solver holds the search and solver settings. Fields missing from the
	// file keep their defaults.
	Solver ot.Config `json:"solver" yaml:"solver"`

	// Logging contains settings for operational logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Problem is the transport problem to solve. Optional.
	Problem *ProblemConfig `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// LoggingConfig configures wot's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "debug", "info" (default), "warn" or "error".
	Level string `json:"level" yaml:"level"`
}

// ProblemConfig is a transport problem written inline in a run file.
type ProblemConfig struct {
	// Cost is the cost matrix, one list per source point.
	Cost [][]float64 `json:"cost" yaml:"cost"`

	// GrowthRate is the proliferation score of each source point.
	GrowthRate []float64 `json:"growth_rate" yaml:"growth_rate"`

	// P and Q are the marginals. Omitted means uniform.
	P []float64 `json:"p,omitempty" yaml:"p,omitempty"`
	Q []float64 `json:"q,omitempty" yaml:"q,omitempty"`
}

// Default returns a File with the default solver settings.
func Default() *File {
	return &File{
		Solver: ot.DefaultConfig(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a run file.
// Order: defaults -> file (with ${VAR} expanded) -> environment variables
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return cfg, nil
}

// Parse decodes run file content, applies environment overrides and
// validates the result.
func Parse(data []byte) (*File, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config file")
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (f *File) Validate() error {
	if err := f.Solver.Validate(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(f.Logging.Level); err != nil {
		return err
	}
	return nil
}

// LogLevel returns the parsed logging level.
func (f *File) LogLevel() log.Level {
	level, _ := log.ParseLevel(f.Logging.Level)
	return level
}

// Build converts the inline problem into solver inputs.
func (pc *ProblemConfig) Build() (ot.Problem, []float64, error) {
	n := len(pc.Cost)
	if n == 0 || len(pc.Cost[0]) == 0 {
		return ot.Problem{}, nil, errors.Wrap(errors.ErrEmptyData, "problem.cost")
	}

	m := len(pc.Cost[0])
	data := make([]float64, 0, n*m)
	for _, row := range pc.Cost {
		if len(row) != m {
			return ot.Problem{}, nil, errors.NewDimensionError("problem.cost", m, len(row), 1)
		}
		data = append(data, row...)
	}

	prob := ot.Problem{
		Cost: mat.NewDense(n, m, data),
		P:    pc.P,
		Q:    pc.Q,
	}
	return prob, pc.GrowthRate, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *File) {
	if v := os.Getenv("WOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("WOT_MAX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Solver.MaxIterations = n
		}
	}
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
