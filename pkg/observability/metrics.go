package observability

import (
	"time"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors reported by turtle engines and transports.
type Metrics struct {
	commands  *prometheus.CounterVec
	rejected  *prometheus.CounterVec
	logLength prometheus.Gauge
	calls     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turtle_commands_total",
				Help: "Total number of commands appended to turtle logs.",
			},
			[]string{"type"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "turtle_rejected_calls_total",
				Help: "Total number of engine calls rejected for invalid input.",
			},
			[]string{"op"},
		),
		logLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "turtle_log_length",
				Help: "ID of the most recent command, i.e. the length of its log.",
			},
		),
		calls: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "turtle_call_duration_seconds",
				Help:    "Duration of transport calls against a session.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"transport", "status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.commands, m.rejected, m.logLength, m.calls)
	}
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommand: func(cmd domain.Command) {
			m.commands.WithLabelValues(string(cmd.Type)).Inc()
			m.logLength.Set(float64(cmd.ID))
		},
		OnRejected: func(op string, _ error) {
			m.rejected.WithLabelValues(op).Inc()
		},
	}
}

// ObserveCall records how long a transport call took. status is "ok" or
// "error".
func (m *Metrics) ObserveCall(transport, status string, d time.Duration) {
	m.calls.WithLabelValues(transport, status).Observe(d.Seconds())
}
