package turtle_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	eng := turtle.New()

	assert.Equal(t, domain.DefaultCanvas(), eng.Canvas())
	assert.Equal(t, 1, eng.Log().Len())
	assert.Empty(t, eng.Name)
}

func TestNew_Options(t *testing.T) {
	var buf bytes.Buffer
	var seen []domain.CommandType

	eng := turtle.New(
		turtle.WithName("s-42"),
		turtle.WithCanvas(800, 600, false),
		turtle.WithLogger(logging.NewWithWriter(&buf, slog.LevelDebug, false)),
		turtle.WithLifecycleHooks(domain.LifecycleHooks{
			OnCommand: func(cmd domain.Command) { seen = append(seen, cmd.Type) },
		}),
	)
	require.NoError(t, eng.Forward(1))

	assert.Equal(t, "s-42", eng.Name)
	assert.Equal(t, domain.Canvas{Width: 800, Height: 600}, eng.Canvas())
	assert.Equal(t, []domain.CommandType{domain.CommandReset, domain.CommandLine}, seen)
	assert.True(t, strings.Contains(buf.String(), "session=s-42"))
}

func TestNew_WithMetricsChainsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	var count int
	eng := turtle.New(
		turtle.WithMetrics(m),
		turtle.WithLifecycleHooks(domain.LifecycleHooks{
			OnCommand: func(domain.Command) { count++ },
		}),
	)
	require.NoError(t, eng.Left(45))

	assert.Equal(t, 2, count)
	series, err := testutil.GatherAndCount(reg, "turtle_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
}

func TestSnapshotAndRestore(t *testing.T) {
	eng := turtle.New(turtle.WithName("drawing"), turtle.WithCanvas(100, 100, true))
	require.NoError(t, eng.Forward(10))
	eng.BeginFill()
	require.NoError(t, eng.Circle(5, 360))
	eng.EndFill()

	rec := eng.Snapshot()
	assert.Equal(t, "drawing", rec.ID)

	restored, err := turtle.Restore(rec, turtle.WithCanvas(1, 1, false))
	require.NoError(t, err)
	assert.Equal(t, "drawing", restored.Name)
	assert.Equal(t, domain.Canvas{Width: 100, Height: 100, Fixed: true}, restored.Canvas(), "the record canvas wins")
	assert.Equal(t, eng.State(), restored.State())

	require.NoError(t, restored.Right(90))
	last, _ := restored.Log().Last()
	assert.Equal(t, uint64(6), last.ID)
}

func TestRestore_Nil(t *testing.T) {
	_, err := turtle.Restore(nil)
	assert.Error(t, err)
}
