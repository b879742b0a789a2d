package observability_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/turtle/internal/runtime"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	hooks := m.Hooks()

	hooks.OnCommand(domain.Command{ID: 1, Type: domain.CommandReset})
	hooks.OnCommand(domain.Command{ID: 2, Type: domain.CommandLine})
	hooks.OnCommand(domain.Command{ID: 3, Type: domain.CommandLine})
	hooks.OnRejected("forward", errors.New("boom"))

	count, err := testutil.GatherAndCount(reg, "turtle_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per command type")

	count, err = testutil.GatherAndCount(reg, "turtle_rejected_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP turtle_log_length ID of the most recent command, i.e. the length of its log.
# TYPE turtle_log_length gauge
turtle_log_length 3
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "turtle_log_length"))
}

func TestMetrics_WithEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	e := runtime.NewEngine(runtime.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, e.Forward(10))
	require.NoError(t, e.Forward(10))
	require.Error(t, e.SetPenSize(-1))

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				key := mf.GetName()
				for _, l := range metric.GetLabel() {
					key += "/" + l.GetValue()
				}
				values[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] = metric.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 1.0, values["turtle_commands_total/reset"])
	assert.Equal(t, 2.0, values["turtle_commands_total/line"])
	assert.Equal(t, 1.0, values["turtle_rejected_calls_total/pensize"])
	assert.Equal(t, 3.0, values["turtle_log_length"])
}

func TestMetrics_ObserveCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)

	m.ObserveCall("http", "ok", 20*time.Millisecond)
	m.ObserveCall("mcp", "error", time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "turtle_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
