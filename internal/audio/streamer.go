package audio

import (
	"fmt"
	"runtime"
	"time"

	"github.com/junsooki/ArisLoop/internal/lifecycle"
	"github.com/junsooki/ArisLoop/internal/logger"
	"github.com/junsooki/ArisLoop/internal/metrics"
)

// Options configures a Streamer.
type Options struct {
	Format     Format
	ChunkBytes int
	Depth      int           // number of buffers in rotation, at least 2
	Poll       time.Duration // per-iteration sleep; 0 yields instead
	Metrics    *metrics.Metrics
}

// Streamer keeps a playback channel fed from a looping Source using a fixed
// ring of buffers. At any time at most one buffer is owned by the streamer;
// the rest are queued on the channel.
type Streamer struct {
	open    OpenFunc
	src     *Source
	opts    Options
	bufs    []*Buffer
	cursor  int
	pause   func()
	m       *metrics.Metrics
	degrade bool
}

// NewStreamer allocates the buffer ring up front. It panics on a ring depth
// below 2 or a chunk size that does not hold whole sample frames.
func NewStreamer(open OpenFunc, src *Source, opts Options) *Streamer {
	if opts.Depth < 2 {
		panic(fmt.Sprintf("audio: ring depth must be at least 2, got %d", opts.Depth))
	}
	if opts.ChunkBytes <= 0 || opts.ChunkBytes%opts.Format.BytesPerFrame() != 0 {
		panic(fmt.Sprintf("audio: chunk size %d is not a whole number of frames", opts.ChunkBytes))
	}
	s := &Streamer{
		open: open,
		src:  src,
		opts: opts,
		bufs: make([]*Buffer, opts.Depth),
		m:    opts.Metrics,
	}
	for i := range s.bufs {
		s.bufs[i] = NewBuffer(opts.ChunkBytes)
	}
	if s.m == nil {
		s.m = metrics.New()
	}
	if opts.Poll > 0 {
		s.pause = func() { time.Sleep(opts.Poll) }
	} else {
		s.pause = runtime.Gosched
	}
	return s
}

// Degraded reports whether Run gave up on acquiring a channel. It is valid
// once ready has released.
func (s *Streamer) Degraded() bool { return s.degrade }

// Buffers exposes the ring, in submission order.
func (s *Streamer) Buffers() []*Buffer { return s.bufs }

// Run acquires the channel, primes and submits every buffer, arrives at
// ready, then refills buffers as the channel finishes them until shutdown is
// raised. ready is always arrived at exactly once, whatever happens.
//
// Without a device Run logs a warning and returns nil without touching the
// buffers.
func (s *Streamer) Run(shutdown *lifecycle.Signal, ready *lifecycle.Barrier) error {
	arrived := false
	arrive := func() {
		if !arrived {
			arrived = true
			ready.Arrive()
		}
	}
	defer arrive()

	ch, err := s.open()
	if err != nil {
		s.degrade = true
		s.m.SetAudioDegraded(true)
		logger.Warn("audio", "no playback device (%v), continuing without sound", err)
		return nil
	}
	defer ch.Close()

	if err := s.prime(ch); err != nil {
		return err
	}
	arrive()

	return s.loop(ch, shutdown)
}

func (s *Streamer) prime(ch Channel) error {
	if err := ch.Configure(s.opts.Format); err != nil {
		return fmt.Errorf("configure channel: %w", err)
	}
	for i, b := range s.bufs {
		if err := s.fill(b); err != nil {
			return fmt.Errorf("prime buffer %d: %w", i, err)
		}
	}
	for i, b := range s.bufs {
		if err := ch.Queue(b); err != nil {
			return fmt.Errorf("queue buffer %d: %w", i, err)
		}
	}
	logger.Debug("audio", "primed %d buffers of %d bytes", len(s.bufs), s.opts.ChunkBytes)
	return nil
}

func (s *Streamer) loop(ch Channel, shutdown *lifecycle.Signal) error {
	for !shutdown.Raised() {
		s.pause()

		b := s.bufs[s.cursor]
		if b.Status() != StatusDone {
			continue
		}
		if err := s.fill(b); err != nil {
			return fmt.Errorf("refill buffer %d: %w", s.cursor, err)
		}
		if err := ch.Queue(b); err != nil {
			return fmt.Errorf("requeue buffer %d: %w", s.cursor, err)
		}
		s.m.BuffersRefilled.Add(1)
		s.cursor = (s.cursor + 1) % len(s.bufs)
	}
	logger.Debug("audio", "shutdown observed, stopping")
	return nil
}

func (s *Streamer) fill(b *Buffer) error {
	before := s.src.Wraps()
	if err := s.src.Fill(b.Data()); err != nil {
		return err
	}
	s.m.SourceWraps.Add(s.src.Wraps() - before)
	return nil
}
