package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"serial-plotter/internal/device"
)

var errClosed = errors.New("port closed")

// fakeConn delivers lines pushed by the test. A conn with hold set ignores
// Close while a read is pending, like a non-interruptible driver, until hold
// is closed.
type fakeConn struct {
	lines    chan string
	failures chan error
	closed   chan struct{}
	once     sync.Once
	timeout  time.Duration
	hold     chan struct{}

	mu         sync.Mutex
	closeCalls int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		lines:    make(chan string, 64),
		failures: make(chan error, 1),
		closed:   make(chan struct{}),
		timeout:  10 * time.Millisecond,
	}
}

func (c *fakeConn) ReadLine() (string, error) {
	if c.hold != nil {
		<-c.hold
		return "", errClosed
	}
	select {
	case <-c.closed:
		return "", errClosed
	case err := <-c.failures:
		return "", err
	case l := <-c.lines:
		return l, nil
	case <-time.After(c.timeout):
		return "", device.ErrTimeout
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closeCalls++
	c.mu.Unlock()
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type fakeOpener struct {
	mu      sync.Mutex
	conns   []*fakeConn
	err     error
	opened  []string
	newConn func() *fakeConn
}

func (o *fakeOpener) Open(name string, baud int, readTimeout time.Duration) (device.Conn, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, name)
	if o.err != nil {
		return nil, o.err
	}
	mk := o.newConn
	if mk == nil {
		mk = newFakeConn
	}
	c := mk()
	o.conns = append(o.conns, c)
	return c, nil
}

func (o *fakeOpener) conn(i int) *fakeConn {
	o.mu.Lock()
	defer o.mu.Unlock()
	if i >= len(o.conns) {
		return nil
	}
	return o.conns[i]
}

type recorder struct {
	mu       sync.Mutex
	statuses []Status
	last     Snapshot
	updates  int
}

func (r *recorder) StatusChanged(st Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, st)
}

func (r *recorder) SeriesUpdated(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = s
	r.updates++
}

func (r *recorder) lastSnapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *recorder) lastStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.statuses) == 0 {
		return Status{}
	}
	return r.statuses[len(r.statuses)-1]
}

// gateObserver records statuses and parks the first Streaming notification
// until release is closed.
type gateObserver struct {
	recorder
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGateObserver() *gateObserver {
	return &gateObserver{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gateObserver) StatusChanged(st Status) {
	g.recorder.StatusChanged(st)
	if st.State != Streaming {
		return
	}
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
}
