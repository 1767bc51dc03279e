package lifecycle

import "sync"

// Signal is a write-once flag. It starts lowered and can only be raised.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal returns a lowered signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Raise sets the signal. Calling it again has no effect.
func (s *Signal) Raise() {
	s.once.Do(func() { close(s.done) })
}

// Raised reports whether Raise has been called. It never blocks.
func (s *Signal) Raised() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done is closed when the signal is raised.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}
