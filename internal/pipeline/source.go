package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"

	"serial-plotter/internal/device"
	"serial-plotter/internal/sample"
)

// Source reads lines from one device connection and pushes parsed samples
// onto a Queue. It never touches UI state.
type Source struct {
	Opener      device.Opener
	Target      string
	Baud        int
	ReadTimeout time.Duration
	Queue       *Queue
	// Metrics defaults to unregistered counters when nil.
	Metrics *Metrics
}

// Run opens the device and reads until ctx is cancelled or the device fails.
// An open or read failure is pushed once as a KindError item. Cancellation is
// a clean shutdown and pushes nothing.
func (s *Source) Run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if s.Metrics == nil {
		s.Metrics = NewMetrics(nil)
	}

	conn, err := s.Opener.Open(s.Target, s.Baud, s.ReadTimeout)
	if err != nil {
		log.Printf("[source] open failed: target=%s baud=%d err=%v", s.Target, s.Baud, err)
		s.fail(err.Error())
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	// Closing the connection unblocks a pending read as soon as stop is requested.
	release := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer release()

	s.Queue.Push(Item{Kind: KindOpened})
	log.Printf("[source] opened: target=%s baud=%d", s.Target, s.Baud)

	for {
		if ctx.Err() != nil {
			return
		}

		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, device.ErrTimeout) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Printf("[source] read failed: target=%s err=%v", s.Target, err)
			s.fail(errors.Wrap(err, "read failed").Error())
			return
		}

		if line == "" {
			continue
		}

		smp, ok := sample.Parse(line)
		if !ok {
			s.Metrics.LinesRejected.Inc()
			continue
		}
		s.Queue.Push(Item{Kind: KindSample, Sample: smp})
	}
}

func (s *Source) fail(msg string) {
	s.Metrics.SourceErrors.Inc()
	s.Queue.Push(Item{Kind: KindError, Message: msg})
}
