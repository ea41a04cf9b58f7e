package plot

import (
	"context"
	"image"
	"log"

	"github.com/pkg/errors"

	"serial-plotter/internal/pipeline"
)

// Frame is one rendered redraw of both channel plots.
type Frame struct {
	Bounds   Bounds
	Samples  int
	Channel1 image.Image
	Channel2 image.Image
}

// Trigger coalesces redraw requests. Only the newest pending snapshot is
// rendered; older ones are dropped.
type Trigger struct {
	renderer Renderer
	draw     func(Frame)
	pending  chan pipeline.Snapshot
}

func NewTrigger(r Renderer, draw func(Frame)) *Trigger {
	return &Trigger{
		renderer: r,
		draw:     draw,
		pending:  make(chan pipeline.Snapshot, 1),
	}
}

// Request queues s for rendering and returns immediately.
func (t *Trigger) Request(s pipeline.Snapshot) {
	for {
		select {
		case t.pending <- s:
			return
		default:
		}
		select {
		case <-t.pending:
		default:
		}
	}
}

// Run renders requested snapshots until ctx is done.
func (t *Trigger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case s := <-t.pending:
			f, err := t.Render(s)
			if err != nil {
				log.Printf("[plot] %v", err)
				continue
			}
			t.draw(f)
		}
	}
}

// Render computes bounds for s and draws both channels.
func (t *Trigger) Render(s pipeline.Snapshot) (Frame, error) {
	b := ComputeBounds(s)

	img1, err := t.renderer.Render(Channel1, s.Index, s.V1, b.X, b.Y1)
	if err != nil {
		return Frame{}, errors.Wrap(err, "channel 1")
	}
	img2, err := t.renderer.Render(Channel2, s.Index, s.V2, b.X, b.Y2)
	if err != nil {
		return Frame{}, errors.Wrap(err, "channel 2")
	}

	return Frame{
		Bounds:   b,
		Samples:  s.Len(),
		Channel1: img1,
		Channel2: img2,
	}, nil
}
