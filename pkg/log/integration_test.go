package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/YuminosukeSato/wot/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger_Levels(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Debug("debug message", "key1", "value1", "number", 42)
	logger.Info("info message", OperationKey, OperationSearch)
	logger.Warn("warning message")
	logger.Error("error message", fmt.Errorf("solver diverged"), CallKey, 3)

	require.NotEmpty(t, buffer.String())
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, logger.ContainsMessage(msg), msg)
	}
	assert.True(t, logger.ContainsField("key1", "value1"))
	assert.True(t, logger.ContainsField("number", 42.0))
	assert.True(t, logger.ContainsField(ErrorKey, "solver diverged"))
	assert.True(t, logger.ContainsField(CallKey, 3.0))
}

func TestTestLogger_With(t *testing.T) {
	logger, _ := NewTestLogger(LevelDebug)

	child := logger.With(ComponentKey, "ot.search", SourcesKey, 10)
	child.Info("coupling accepted", EpsilonKey, 0.1)

	entries := logger.EntriesWithMessage("coupling accepted")
	require.Len(t, entries, 1)
	assert.Equal(t, "ot.search", entries[0][ComponentKey])
	assert.Equal(t, 10.0, entries[0][SourcesKey])
	assert.Equal(t, 0.1, entries[0][EpsilonKey])
}

func TestTestLogger_Enabled(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelError))
	assert.False(t, logger.Enabled(ctx, LevelDebug))

	logger.Debug("hidden")
	logger.Info("shown")
	assert.False(t, logger.ContainsMessage("hidden"))
	assert.True(t, logger.ContainsMessage("shown"))

	logger.Clear()
	assert.False(t, logger.ContainsMessage("shown"))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelInfo)

	logger.Debug("dropped")
	logger.With(ComponentKey, "ot.solver").Info("absorbed", AbsorptionsKey, 2)
	logger.Error("failed", errors.New("boom"), CallKey, 7)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "absorbed", lines[0]["message"])
	assert.Equal(t, "ot.solver", lines[0][ComponentKey])
	assert.Equal(t, 2.0, lines[0][AbsorptionsKey])

	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "boom", lines[1][ErrorKey])
	assert.Equal(t, 7.0, lines[1][CallKey])
	assert.NotEmpty(t, lines[1][StacktraceKey])
}

func TestZerologLogger_Enabled(t *testing.T) {
	logger := NewZerologLogger(&bytes.Buffer{}, LevelWarn)
	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))
}

func TestZerologProvider(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)

	provider.GetLoggerWithName("ot.search").Info("hello")
	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ot.search", lines[0][ComponentKey])
}

func TestWarningsRouteThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	errors.Warn(errors.NewConvergenceWarning("OptimalTransport", 5, "ceiling reached"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "ConvergenceWarning", lines[0]["type"])
	assert.Equal(t, 5.0, lines[0]["iterations"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "trace", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
