package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts pipeline events. All counters are safe for concurrent use.
type Metrics struct {
	SamplesAccepted prometheus.Counter
	LinesRejected   prometheus.Counter
	SourceErrors    prometheus.Counter
	SessionsStarted prometheus.Counter
	Stalls          prometheus.Counter
}

// NewMetrics creates the pipeline counters and registers them on reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SamplesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plotter_samples_accepted_total",
			Help: "Samples parsed from device lines and accumulated.",
		}),
		LinesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plotter_lines_rejected_total",
			Help: "Non-empty device lines that could not be parsed.",
		}),
		SourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plotter_source_errors_total",
			Help: "Terminal open or read failures.",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plotter_sessions_started_total",
			Help: "Connections started.",
		}),
		Stalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plotter_stalls_total",
			Help: "Transitions into the stalled liveness state.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SamplesAccepted,
			m.LinesRejected,
			m.SourceErrors,
			m.SessionsStarted,
			m.Stalls,
		)
	}
	return m
}
