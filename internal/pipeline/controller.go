// Package pipeline moves samples from a background device reader to a
// periodically polled consumer and derives connection liveness.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"serial-plotter/internal/device"
)

// Config holds pipeline timing.
type Config struct {
	// TickInterval is how often Run drains the hand-off queue.
	TickInterval time.Duration
	// StallTicks is the number of consecutive empty ticks before Stalled.
	StallTicks int
	// ReadTimeout bounds a single device read.
	ReadTimeout time.Duration
	// StopTimeout bounds how long Stop waits for the worker to exit.
	StopTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		TickInterval: 100 * time.Millisecond,
		StallTicks:   10,
		ReadTimeout:  time.Second,
		StopTimeout:  2 * time.Second,
	}
}

// Observer receives status changes and new series data. Calls come from the
// goroutine driving Tick, Start or Stop, never from the device worker, and
// are delivered in the order the controller state changed. Implementations
// must not block or call back into the Controller synchronously.
type Observer interface {
	StatusChanged(Status)
	SeriesUpdated(Snapshot)
}

type nopObserver struct{}

func (nopObserver) StatusChanged(Status)   {}
func (nopObserver) SeriesUpdated(Snapshot) {}

// session is everything that belongs to one connection. It is replaced
// wholesale on Start so nothing from a torn-down connection reaches a live one.
type session struct {
	queue   *Queue
	monitor *Monitor
	source  *Source
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func (s *session) run() {
	defer close(s.done)
	s.source.Run(s.ctx)
}

// Controller owns at most one active session and drives its monitor.
type Controller struct {
	cfg      Config
	opener   device.Opener
	observer Observer
	metrics  *Metrics

	// notifyMu orders observer calls: a status is computed and published
	// under it, so a slower caller can never publish after a newer one.
	// Lock order is notifyMu, then mu. Never held across teardown.
	notifyMu sync.Mutex

	mu      sync.Mutex
	session *session
	status  Status
	samples int
}

func NewController(cfg Config, opener device.Opener, observer Observer, metrics *Metrics) *Controller {
	def := DefaultConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.StallTicks <= 0 {
		cfg.StallTicks = def.StallTicks
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = def.StopTimeout
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Controller{
		cfg:      cfg,
		opener:   opener,
		observer: observer,
		metrics:  metrics,
	}
}

// Start tears down any previous session and begins reading target at baud.
// The previous worker is waited for before the new one opens the device.
func (c *Controller) Start(target string, baud int) {
	ctx, cancel := context.WithCancel(context.Background())
	queue := NewQueue()
	sess := &session{
		queue:   queue,
		monitor: NewMonitor(c.cfg.StallTicks, c.metrics),
		source: &Source{
			Opener:      c.opener,
			Target:      target,
			Baud:        baud,
			ReadTimeout: c.cfg.ReadTimeout,
			Queue:       queue,
			Metrics:     c.metrics,
		},
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.notifyMu.Lock()
	c.mu.Lock()
	old := c.session
	c.session = sess
	c.samples = 0
	st, changed := c.setStatus(Status{State: Connecting, Liveness: NoData, Target: target})
	c.mu.Unlock()

	if changed {
		c.observer.StatusChanged(st)
	}
	c.observer.SeriesUpdated(Snapshot{})
	c.notifyMu.Unlock()

	c.teardown(old)

	c.metrics.SessionsStarted.Inc()
	log.Printf("[pipeline] session started: target=%s baud=%d", target, baud)
	go sess.run()
}

// Stop tears down the active session, if any, and reports Disconnected.
// It returns once the worker exited or StopTimeout elapsed.
func (c *Controller) Stop() {
	c.notifyMu.Lock()
	c.mu.Lock()
	old := c.session
	c.session = nil
	st, changed := c.setStatus(Status{State: Disconnected, Liveness: NoData, Target: c.status.Target})
	c.mu.Unlock()

	if changed || old != nil {
		c.observer.StatusChanged(st)
	}
	c.notifyMu.Unlock()

	c.teardown(old)
}

// Tick drains the active session once. Without an active session it does
// nothing, so polling pauses after a terminal error until the next Start.
func (c *Controller) Tick() {
	c.notifyMu.Lock()
	c.mu.Lock()
	sess := c.session
	if sess == nil {
		c.mu.Unlock()
		c.notifyMu.Unlock()
		return
	}

	res := sess.monitor.Drain(sess.queue)

	next := c.status
	next.Liveness = sess.monitor.Liveness()
	if res.Opened && next.State == Connecting {
		next.State = Streaming
	}

	var (
		dead *session
		snap Snapshot
	)
	if res.Samples > 0 {
		snap = sess.monitor.Snapshot()
		c.samples = snap.Len()
	}
	if res.Failed {
		next.State = Errored
		next.Liveness = NoData
		next.Message = res.Message
		c.session = nil
		dead = sess
	}
	st, changed := c.setStatus(next)
	c.mu.Unlock()

	if changed {
		c.observer.StatusChanged(st)
	}
	if res.Samples > 0 {
		c.observer.SeriesUpdated(snap)
	}
	c.notifyMu.Unlock()

	if dead != nil {
		log.Printf("[pipeline] session failed: target=%s err=%s", st.Target, st.Message)
		c.teardown(dead)
	}
}

// Run calls Tick every TickInterval until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SampleCount is the length of the series of the current or last session.
func (c *Controller) SampleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.samples
}

// setStatus must be called with c.mu held.
func (c *Controller) setStatus(st Status) (Status, bool) {
	if st == c.status {
		return st, false
	}
	c.status = st
	return st, true
}

func (c *Controller) teardown(s *session) {
	if s == nil {
		return
	}
	s.cancel()

	timer := time.NewTimer(c.cfg.StopTimeout)
	defer timer.Stop()

	select {
	case <-s.done:
	case <-timer.C:
		log.Printf("[pipeline] worker for %s did not exit within %s; abandoning it", s.source.Target, c.cfg.StopTimeout)
	}
}
