package audio

import (
	"sync"

	"github.com/junsooki/ArisLoop/internal/metrics"
)

// MaxDepth is the most buffers a channel holds at once.
const MaxDepth = 16

// queue is the channel side of the buffer handoff: a bounded FIFO of
// submitted buffers drained by a pulling reader.
type queue struct {
	mu      sync.Mutex
	items   []*Buffer
	head    int
	n       int
	off     int // read offset into items[head]
	started bool
	closed  bool
	m       *metrics.Metrics
}

func newQueue(capacity int, m *metrics.Metrics) *queue {
	return &queue{items: make([]*Buffer, capacity), m: m}
}

func (q *queue) push(b *Buffer) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	switch {
	case q.closed:
		return ErrChannelClosed
	case !b.Writable():
		return ErrBufferBusy
	case q.n == len(q.items):
		return ErrQueueFull
	}
	b.SetStatus(StatusQueued)
	q.items[(q.head+q.n)%len(q.items)] = b
	q.n++
	q.started = true
	return nil
}

// Read hands queued samples to the player, releasing each buffer once it has
// been fully copied out. Missing audio is replaced by silence.
func (q *queue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for n < len(p) && q.n > 0 {
		b := q.items[q.head]
		if q.off == 0 {
			b.SetStatus(StatusPlaying)
		}
		c := copy(p[n:], b.data[q.off:])
		n += c
		q.off += c
		if q.off == len(b.data) {
			q.pop()
			b.SetStatus(StatusDone)
		}
	}
	if n < len(p) {
		clear(p[n:])
		if q.started && !q.closed {
			q.m.AudioUnderruns.Add(1)
		}
	}
	return len(p), nil
}

func (q *queue) pop() {
	q.items[q.head] = nil
	q.head = (q.head + 1) % len(q.items)
	q.n--
	q.off = 0
}

// close returns every pending buffer to its owner.
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for q.n > 0 {
		b := q.items[q.head]
		q.pop()
		b.SetStatus(StatusDone)
	}
}

// pending returns how many buffers are waiting or playing.
func (q *queue) pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}
