package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestSource(o *fakeOpener) *Source {
	return &Source{
		Opener:      o,
		Target:      "COM7",
		Baud:        9600,
		ReadTimeout: 10 * time.Millisecond,
		Queue:       NewQueue(),
		Metrics:     NewMetrics(nil),
	}
}

func runSource(ctx context.Context, s *Source) chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

func drainAll(q *Queue) []Item {
	var items []Item
	for {
		it, ok := q.TryPop()
		if !ok {
			return items
		}
		items = append(items, it)
	}
}

func TestSource_OpenFailure(t *testing.T) {
	o := &fakeOpener{err: errors.New("no such port")}
	s := newTestSource(o)

	s.Run(context.Background())

	items := drainAll(s.Queue)
	require.Len(t, items, 1)
	require.Equal(t, KindError, items[0].Kind)
	require.Contains(t, items[0].Message, "no such port")
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.SourceErrors))
}

func TestSource_ParsesAndFilters(t *testing.T) {
	o := &fakeOpener{}
	s := newTestSource(o)
	ctx, cancel := context.WithCancel(context.Background())
	done := runSource(ctx, s)

	require.Eventually(t, func() bool { return o.conn(0) != nil }, time.Second, time.Millisecond)
	c := o.conn(0)
	for _, l := range []string{"v1=1, v2=2", "", "garbage", "3,4,5"} {
		c.lines <- l
	}
	require.Eventually(t, func() bool { return s.Queue.Len() == 3 }, time.Second, time.Millisecond)

	cancel()
	<-done

	items := drainAll(s.Queue)
	require.Len(t, items, 3)
	require.Equal(t, KindOpened, items[0].Kind)
	require.Equal(t, 1.0, items[1].Sample.V1)
	require.Equal(t, 2.0, items[1].Sample.V2)
	require.Equal(t, 3.0, items[2].Sample.V1)
	require.Equal(t, 4.0, items[2].Sample.V2)
	require.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.LinesRejected))
	require.True(t, c.isClosed())
}

func TestSource_ReadFailureIsReported(t *testing.T) {
	o := &fakeOpener{}
	s := newTestSource(o)
	done := runSource(context.Background(), s)

	require.Eventually(t, func() bool { return o.conn(0) != nil }, time.Second, time.Millisecond)
	o.conn(0).failures <- errors.New("device disconnected")
	<-done

	items := drainAll(s.Queue)
	require.Len(t, items, 2)
	require.Equal(t, KindError, items[1].Kind)
	require.Contains(t, items[1].Message, "device disconnected")
	require.True(t, o.conn(0).isClosed())
}

func TestSource_StopInterruptsSilentDevice(t *testing.T) {
	o := &fakeOpener{newConn: func() *fakeConn {
		c := newFakeConn()
		c.timeout = time.Hour
		return c
	}}
	s := newTestSource(o)
	ctx, cancel := context.WithCancel(context.Background())
	done := runSource(ctx, s)

	require.Eventually(t, func() bool { return s.Queue.Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("source did not exit after cancel")
	}

	items := drainAll(s.Queue)
	require.Len(t, items, 1)
	require.Equal(t, KindOpened, items[0].Kind)
	require.Equal(t, 0.0, testutil.ToFloat64(s.Metrics.SourceErrors))
}

func TestSource_CancelledBeforeOpen(t *testing.T) {
	o := &fakeOpener{}
	s := newTestSource(o)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Run(ctx)

	require.Empty(t, o.opened)
	require.Equal(t, 0, s.Queue.Len())
}

func TestSource_DefaultsMetrics(t *testing.T) {
	o := &fakeOpener{}
	s := newTestSource(o)
	s.Metrics = nil
	done := runSource(context.Background(), s)

	require.Eventually(t, func() bool { return o.conn(0) != nil }, time.Second, time.Millisecond)
	o.conn(0).lines <- "not a sample"
	o.conn(0).failures <- errors.New("unplugged")
	<-done

	items := drainAll(s.Queue)
	require.Len(t, items, 2)
	require.Equal(t, KindError, items[1].Kind)
}

func TestSource_OpenFailureWithoutMetrics(t *testing.T) {
	s := newTestSource(&fakeOpener{err: errors.New("busy")})
	s.Metrics = nil

	s.Run(context.Background())

	items := drainAll(s.Queue)
	require.Len(t, items, 1)
	require.Equal(t, KindError, items[0].Kind)
}
