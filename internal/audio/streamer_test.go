package audio

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/junsooki/ArisLoop/internal/lifecycle"
	"github.com/junsooki/ArisLoop/internal/metrics"
)

// fakeChannel plays nothing by itself; tests drain it through play.
type fakeChannel struct {
	q *queue

	mu         sync.Mutex
	format     Format
	configured bool
	closed     bool
}

func newFakeChannel(m *metrics.Metrics) *fakeChannel {
	return &fakeChannel{q: newQueue(MaxDepth, m)}
}

func (c *fakeChannel) Configure(f Format) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = f
	c.configured = true
	return nil
}

func (c *fakeChannel) Queue(b *Buffer) error { return c.q.push(b) }

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.q.close()
	return nil
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// play consumes n bytes as the hardware would.
func (c *fakeChannel) play(n int) []byte {
	p := make([]byte, n)
	c.q.Read(p)
	return p
}

var testFormat = Format{Encoding: PCM16Stereo, SampleRate: 48000, Interpolation: InterpolationNone, Mix: DefaultMix}

func startStreamer(t *testing.T, s *Streamer) (*lifecycle.Signal, *lifecycle.Barrier, <-chan error) {
	t.Helper()
	shutdown := lifecycle.NewSignal()
	ready := lifecycle.NewBarrier(2)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(shutdown, ready) }()
	return shutdown, ready, errCh
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func joinStreamer(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("streamer did not stop after shutdown")
		return nil
	}
}

func TestStreamerPrimesBeforeReady(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	ch := newFakeChannel(m)
	data := pattern(100)
	s := NewStreamer(func() (Channel, error) { return ch, nil }, NewSource(bytes.NewReader(data)),
		Options{Format: testFormat, ChunkBytes: 12, Depth: 2, Metrics: m})

	shutdown, ready, errCh := startStreamer(t, s)
	ready.Arrive()

	for i, b := range s.Buffers() {
		if b.Status() != StatusQueued {
			t.Errorf("buffer %d: got %v at release, want queued", i, b.Status())
		}
	}
	if !bytes.Equal(s.Buffers()[0].Data(), data[:12]) || !bytes.Equal(s.Buffers()[1].Data(), data[12:24]) {
		t.Error("buffers not primed in index order")
	}
	if !ch.configured || ch.format != testFormat {
		t.Errorf("channel not configured with %+v", testFormat)
	}

	shutdown.Raise()
	if err := joinStreamer(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ch.isClosed() {
		t.Error("channel should be closed after shutdown")
	}
}

func TestStreamerKeepsRingFull(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	ch := newFakeChannel(m)
	data := pattern(50) // not a multiple of the chunk, forces wraps mid-buffer
	const chunk = 16
	s := NewStreamer(func() (Channel, error) { return ch, nil }, NewSource(bytes.NewReader(data)),
		Options{Format: testFormat, ChunkBytes: chunk, Depth: 2, Metrics: m})

	shutdown, ready, errCh := startStreamer(t, s)
	ready.Arrive()

	var played []byte
	for i := 0; i < 20; i++ {
		played = append(played, ch.play(chunk)...)

		writable := 0
		for _, b := range s.Buffers() {
			if b.Writable() {
				writable++
			}
		}
		if writable > 1 {
			t.Fatalf("step %d: %d buffers out of the channel, want at most 1", i, writable)
		}
		waitFor(t, "requeue", func() bool { return ch.q.pending() == 2 })
	}

	shutdown.Raise()
	if err := joinStreamer(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, b := range played {
		if b != data[i%len(data)] {
			t.Fatalf("played byte %d: got %d, want %d", i, b, data[i%len(data)])
		}
	}
	snap := m.Snapshot()
	if snap.BuffersRefilled != 20 {
		t.Errorf("refilled: got %d, want 20", snap.BuffersRefilled)
	}
	// 22 buffers of 16 bytes were read from a 50-byte source.
	if want := uint64(22 * chunk / len(data)); snap.SourceWraps != want {
		t.Errorf("wraps: got %d, want %d", snap.SourceWraps, want)
	}
	if snap.AudioUnderruns != 0 {
		t.Errorf("underruns: got %d, want 0", snap.AudioUnderruns)
	}
}

func TestStreamerDegradedWithoutDevice(t *testing.T) {
	t.Parallel()
	m := metrics.New()
	opened := 0
	s := NewStreamer(func() (Channel, error) {
		opened++
		return nil, ErrDeviceUnavailable
	}, NewSource(bytes.NewReader(pattern(8))), Options{Format: testFormat, ChunkBytes: 4, Depth: 2, Metrics: m})

	_, ready, errCh := startStreamer(t, s)

	select {
	case <-ready.Done():
		t.Fatal("barrier released with one party")
	case <-time.After(10 * time.Millisecond):
	}
	ready.Arrive()

	if err := joinStreamer(t, errCh); err != nil {
		t.Fatalf("degraded Run should return nil, got %v", err)
	}
	if !s.Degraded() {
		t.Error("streamer should report degraded")
	}
	if opened != 1 {
		t.Errorf("open attempts: got %d, want 1", opened)
	}
	for i, b := range s.Buffers() {
		if b.Status() != StatusFree || !bytes.Equal(b.Data(), make([]byte, 4)) {
			t.Errorf("buffer %d touched in degraded mode", i)
		}
	}
	if !m.Snapshot().AudioDegraded {
		t.Error("metrics should flag degraded audio")
	}
}

func TestStreamerPrimeFailureStillReleases(t *testing.T) {
	t.Parallel()
	ch := newFakeChannel(metrics.New())
	s := NewStreamer(func() (Channel, error) { return ch, nil }, NewSource(bytes.NewReader(nil)),
		Options{Format: testFormat, ChunkBytes: 4, Depth: 2})

	_, ready, errCh := startStreamer(t, s)
	ready.Arrive()

	err := joinStreamer(t, errCh)
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("got %v, want ErrEmptySource", err)
	}
	if !ch.isClosed() {
		t.Error("channel should be closed after a failed prime")
	}
}

func TestStreamerShutdownWhileIdle(t *testing.T) {
	t.Parallel()
	ch := newFakeChannel(metrics.New())
	s := NewStreamer(func() (Channel, error) { return ch, nil }, NewSource(bytes.NewReader(pattern(64))),
		Options{Format: testFormat, ChunkBytes: 8, Depth: 3, Poll: 5 * time.Millisecond})

	shutdown, ready, errCh := startStreamer(t, s)
	ready.Arrive()

	// Nothing is played, so the streamer only spins on its poll interval.
	time.Sleep(20 * time.Millisecond)
	start := time.Now()
	shutdown.Raise()
	if err := joinStreamer(t, errCh); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d := time.Since(start); d > 500*time.Millisecond {
		t.Errorf("shutdown took %v", d)
	}
}

func TestNewStreamerValidates(t *testing.T) {
	t.Parallel()
	open := func() (Channel, error) { return nil, ErrDeviceUnavailable }
	src := NewSource(bytes.NewReader(nil))
	for _, opts := range []Options{
		{Format: testFormat, ChunkBytes: 8, Depth: 1},
		{Format: testFormat, ChunkBytes: 6, Depth: 2},
		{Format: testFormat, ChunkBytes: 0, Depth: 2},
	} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("NewStreamer(%+v) should panic", opts)
				}
			}()
			NewStreamer(open, src, opts)
		}()
	}
}
