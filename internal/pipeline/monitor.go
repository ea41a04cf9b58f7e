package pipeline

import "log"

// DrainResult summarizes one Monitor.Drain call.
type DrainResult struct {
	Samples int
	Opened  bool
	// Failed is set when a terminal control signal was drained; Message holds it.
	Failed  bool
	Message string
}

// Monitor accumulates drained samples into a Series and derives liveness from
// the number of consecutive drains that produced nothing.
type Monitor struct {
	series     Series
	emptyTicks int
	stallTicks int
	liveness   Liveness
	metrics    *Metrics
}

// NewMonitor returns a Monitor that reports Stalled after stallTicks
// consecutive empty drains.
func NewMonitor(stallTicks int, metrics *Metrics) *Monitor {
	if stallTicks <= 0 {
		stallTicks = 1
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Monitor{
		stallTicks: stallTicks,
		metrics:    metrics,
	}
}

// Drain pops everything currently in q without blocking. A terminal error
// stops the drain immediately; items behind it are left in q.
func (m *Monitor) Drain(q *Queue) DrainResult {
	var res DrainResult
	for {
		it, ok := q.TryPop()
		if !ok {
			break
		}

		switch it.Kind {
		case KindError:
			res.Failed = true
			res.Message = it.Message
			m.liveness = NoData
			return res
		case KindOpened:
			res.Opened = true
		case KindSample:
			m.series.Append(it.Sample)
			m.metrics.SamplesAccepted.Inc()
			res.Samples++
		}
	}

	if res.Samples > 0 {
		m.emptyTicks = 0
		m.liveness = Flowing
		return res
	}

	m.emptyTicks++
	if m.emptyTicks >= m.stallTicks && m.liveness != Stalled {
		m.liveness = Stalled
		m.metrics.Stalls.Inc()
		log.Printf("[pipeline] no samples for %d ticks", m.emptyTicks)
	}
	return res
}

func (m *Monitor) Liveness() Liveness {
	return m.liveness
}

// EmptyTicks is the current count of consecutive empty drains.
func (m *Monitor) EmptyTicks() int {
	return m.emptyTicks
}

func (m *Monitor) Len() int {
	return m.series.Len()
}

func (m *Monitor) Snapshot() Snapshot {
	return m.series.Snapshot()
}
