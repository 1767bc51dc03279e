package input

import "sync/atomic"

// Device is polled once per presented frame.
type Device interface {
	// Scan samples the current input state.
	Scan()
	// KeysDown returns the buttons newly pressed between the previous
	// Scan and the latest one.
	KeysDown() Buttons
}

// Latch collects presses from an event goroutine and hands them to a
// polling consumer. Press may be called from any goroutine; Scan and
// KeysDown belong to the consumer.
type Latch struct {
	pending atomic.Uint32
	down    Buttons
}

// Press records buttons as newly pressed.
func (l *Latch) Press(b Buttons) {
	for {
		old := l.pending.Load()
		if l.pending.CompareAndSwap(old, old|uint32(b)) {
			return
		}
	}
}

// Scan moves everything pressed since the last Scan into KeysDown.
func (l *Latch) Scan() {
	l.down = Buttons(l.pending.Swap(0))
}

// KeysDown returns the buttons captured by the last Scan.
func (l *Latch) KeysDown() Buttons {
	return l.down
}
