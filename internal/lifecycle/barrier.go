package lifecycle

import "sync/atomic"

// Barrier is a one-shot rendezvous for a fixed number of parties.
// Every party calls Arrive exactly once; nobody is released until all
// of them have arrived.
type Barrier struct {
	remaining atomic.Int32
	release   chan struct{}
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		panic("lifecycle: barrier needs at least one party")
	}
	b := &Barrier{release: make(chan struct{})}
	b.remaining.Store(int32(parties))
	return b
}

// Arrive registers the caller and blocks until every party has arrived.
// Arriving more often than the barrier has parties panics.
func (b *Barrier) Arrive() {
	switch n := b.remaining.Add(-1); {
	case n == 0:
		close(b.release)
	case n < 0:
		panic("lifecycle: barrier arrived more times than it has parties")
	}
	<-b.release
}

// Done is closed once the barrier has released.
func (b *Barrier) Done() <-chan struct{} {
	return b.release
}
