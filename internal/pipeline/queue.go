package pipeline

import (
	"sync"

	"github.com/gammazero/deque"

	"serial-plotter/internal/sample"
)

// ItemKind tags what travels through the hand-off queue.
type ItemKind int

const (
	KindSample ItemKind = iota
	// KindOpened marks a successful open of the device.
	KindOpened
	// KindError is a terminal control signal; Message says why.
	KindError
)

// Item is one entry in the hand-off queue.
type Item struct {
	Kind    ItemKind
	Sample  sample.Sample
	Message string
}

// Queue is an unbounded multi-producer, single-consumer hand-off queue.
// Push never blocks on the consumer.
type Queue struct {
	mu    sync.Mutex
	items deque.Deque[Item]
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(it Item) {
	q.mu.Lock()
	q.items.PushBack(it)
	q.mu.Unlock()
}

// TryPop returns the oldest item, or false when the queue is empty.
func (q *Queue) TryPop() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return Item{}, false
	}
	return q.items.PopFront(), true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
