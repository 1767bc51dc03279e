//go:build !headless

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/junsooki/ArisLoop/internal/metrics"
)

// otoBufferSize is how much audio oto itself keeps ahead of the queue.
const otoBufferSize = 50 * time.Millisecond

var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

// otoContext creates the process-wide oto context. oto allows only one per
// process, so the first format wins.
func otoContext(f Format) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   f.SampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   otoBufferSize,
		})
		if err != nil {
			otoErr = fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
			return
		}
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// OpenOto returns an OpenFunc that acquires an oto-backed channel.
func OpenOto(f Format, m *metrics.Metrics) OpenFunc {
	return func() (Channel, error) {
		ctx, err := otoContext(f)
		if err != nil {
			return nil, err
		}
		return NewOtoChannel(ctx, f.SampleRate, m), nil
	}
}

// OtoChannel plays queued buffers through an oto player. The player pulls
// through Read on its own goroutine; buffers are released (marked Done) as
// soon as their last byte has been handed to oto.
type OtoChannel struct {
	ctx    *oto.Context
	player *oto.Player
	rate   int
	q      *queue
	m      *metrics.Metrics

	playing bool
}

// NewOtoChannel creates a channel on an existing context running at rate.
// Playback starts with the first queued buffer.
func NewOtoChannel(ctx *oto.Context, rate int, m *metrics.Metrics) *OtoChannel {
	if m == nil {
		m = metrics.New()
	}
	c := &OtoChannel{ctx: ctx, rate: rate, q: newQueue(MaxDepth, m), m: m}
	c.player = ctx.NewPlayer(c.q)
	return c
}

func (c *OtoChannel) Configure(f Format) error {
	if f.Encoding != PCM16Stereo {
		return fmt.Errorf("unsupported encoding %d", f.Encoding)
	}
	if f.Interpolation != InterpolationNone {
		return fmt.Errorf("unsupported interpolation %d", f.Interpolation)
	}
	if f.SampleRate != c.rate {
		return fmt.Errorf("channel rate %d differs from device rate %d", f.SampleRate, c.rate)
	}
	c.player.SetVolume((f.Mix.Left + f.Mix.Right) / 2)
	return nil
}

func (c *OtoChannel) Queue(b *Buffer) error {
	if err := c.q.push(b); err != nil {
		return err
	}
	if !c.playing {
		c.playing = true
		c.player.Play()
	}
	return nil
}

func (c *OtoChannel) Close() error {
	c.q.close()
	return c.player.Close()
}
