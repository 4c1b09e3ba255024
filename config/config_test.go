package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/YuminosukeSato/wot/ot"
	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/YuminosukeSato/wot/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ot.DefaultConfig(), cfg.Solver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Problem)
	assert.Equal(t, log.LevelInfo, cfg.LogLevel())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
solver:
  epsilon: 0.05
  lambda1: 2
  max_transport_fraction: 0.6
  max_iterations: 40

logging:
  level: debug

problem:
  cost:
    - [0, 1, 2]
    - [1, 0, 1]
  growth_rate: [0.1, -0.3]
  q: [0.2, 0.3, 0.5]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.05, cfg.Solver.Epsilon)
	assert.Equal(t, 2.0, cfg.Solver.Lambda1)
	assert.Equal(t, 0.6, cfg.Solver.MaxTransportFraction)
	assert.Equal(t, 40, cfg.Solver.MaxIterations)
	// 指定のないフィールドは既定値のまま
	assert.Equal(t, 1.0, cfg.Solver.Lambda2)
	assert.Equal(t, 250, cfg.Solver.ScalingIter)
	assert.Equal(t, 0.05, cfg.Solver.MinTransportFraction)
	assert.Equal(t, log.LevelDebug, cfg.LogLevel())

	require.NotNil(t, cfg.Problem)
	prob, rates, err := cfg.Problem.Build()
	require.NoError(t, err)
	r, c := prob.Cost.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 2.0, prob.Cost.At(0, 2))
	assert.Nil(t, prob.P)
	assert.Equal(t, []float64{0.2, 0.3, 0.5}, prob.Q)
	assert.Equal(t, []float64{0.1, -0.3}, rates)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("WOT_TEST_EPSILON", "0.25")
	path := writeConfig(t, `
solver:
  epsilon: ${WOT_TEST_EPSILON}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Solver.Epsilon)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WOT_LOG_LEVEL", "warn")
	t.Setenv("WOT_MAX_ITERATIONS", "12")
	path := writeConfig(t, `
logging:
  level: debug
solver:
  max_iterations: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, log.LevelWarn, cfg.LogLevel())
	assert.Equal(t, 12, cfg.Solver.MaxIterations)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		param   string
	}{
		{name: "negative epsilon", content: "solver:\n  epsilon: -1\n", param: "epsilon"},
		{name: "inverted band", content: "solver:\n  min_transport_fraction: 0.5\n  max_transport_fraction: 0.2\n", param: "max_transport_fraction"},
		{name: "unknown log level", content: "logging:\n  level: loud\n", param: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			var valErr *errors.ValidationError
			require.True(t, errors.As(err, &valErr), "got %v", err)
			assert.Equal(t, tt.param, valErr.ParamName)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "solver: [epsilon\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config file")
	})
}

func TestProblemConfig_Build(t *testing.T) {
	t.Run("ragged rows", func(t *testing.T) {
		pc := &ProblemConfig{Cost: [][]float64{{0, 1}, {1}}, GrowthRate: []float64{0, 0}}
		_, _, err := pc.Build()
		var dimErr *errors.DimensionError
		require.True(t, errors.As(err, &dimErr))
		assert.Equal(t, 2, dimErr.Expected)
		assert.Equal(t, 1, dimErr.Got)
	})

	t.Run("empty cost", func(t *testing.T) {
		pc := &ProblemConfig{}
		_, _, err := pc.Build()
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})
}
