package lifecycle

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestBarrierHoldsUntilAllArrive(t *testing.T) {
	t.Parallel()
	b := NewBarrier(2)

	var released atomic.Bool
	go func() {
		b.Arrive()
		released.Store(true)
	}()

	time.Sleep(20 * time.Millisecond)
	if released.Load() {
		t.Fatal("first party released before second arrived")
	}
	select {
	case <-b.Done():
		t.Fatal("Done closed before all parties arrived")
	default:
	}

	b.Arrive()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("barrier did not release")
	}
	deadline := time.After(time.Second)
	for !released.Load() {
		select {
		case <-deadline:
			t.Fatal("first party still blocked after release")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestBarrierArrivalOrder(t *testing.T) {
	t.Parallel()
	for _, skew := range []time.Duration{0, time.Millisecond, 15 * time.Millisecond} {
		for _, mainFirst := range []bool{true, false} {
			b := NewBarrier(2)
			done := make(chan struct{})
			go func() {
				if mainFirst {
					time.Sleep(skew)
				}
				b.Arrive()
				close(done)
			}()
			if !mainFirst {
				time.Sleep(skew)
			}
			b.Arrive()

			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatalf("skew=%v mainFirst=%v: other party never released", skew, mainFirst)
			}
		}
	}
}

func TestBarrierOverArrivalPanics(t *testing.T) {
	t.Parallel()
	b := NewBarrier(1)
	b.Arrive()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on second arrival")
		}
	}()
	b.Arrive()
}

func TestNewBarrierRejectsZeroParties(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Error("expected panic for zero parties")
		}
	}()
	NewBarrier(0)
}

func TestSignalRaiseOnce(t *testing.T) {
	t.Parallel()
	s := NewSignal()
	if s.Raised() {
		t.Fatal("new signal should be lowered")
	}

	s.Raise()
	s.Raise()

	if !s.Raised() {
		t.Fatal("signal should be raised")
	}
	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed after Raise")
	}
}

func TestSignalObservedByPoller(t *testing.T) {
	t.Parallel()
	s := NewSignal()
	var iterations atomic.Int64
	exited := make(chan int64)

	go func() {
		for !s.Raised() {
			iterations.Add(1)
			time.Sleep(time.Millisecond)
		}
		exited <- iterations.Load()
	}()

	time.Sleep(10 * time.Millisecond)
	s.Raise()
	before := iterations.Load()

	select {
	case after := <-exited:
		if after-before > 1 {
			t.Errorf("poller ran %d extra iterations after Raise, want at most 1", after-before)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not observe Raise")
	}
}
