package audio

import "errors"

var (
	// ErrDeviceUnavailable means no playback hardware could be acquired.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	// ErrBufferBusy is returned when queueing a buffer the channel still owns.
	ErrBufferBusy = errors.New("buffer is still queued")
	// ErrQueueFull is returned when the channel cannot take another buffer.
	ErrQueueFull = errors.New("channel queue is full")
	// ErrChannelClosed is returned when queueing to a closed channel.
	ErrChannelClosed = errors.New("channel is closed")
)

// Encoding is the sample layout of queued buffers.
type Encoding int

const (
	PCM16Stereo Encoding = iota
)

// Interpolation selects how the channel resamples. Channels play at the
// device rate, so none is the only mode.
type Interpolation int

const (
	InterpolationNone Interpolation = iota
)

// Mix holds per-output gains for a channel.
type Mix struct {
	Left, Right float64
}

// DefaultMix plays both sides at unity gain.
var DefaultMix = Mix{Left: 1, Right: 1}

// Format configures a playback channel.
type Format struct {
	Encoding      Encoding
	SampleRate    int
	Interpolation Interpolation
	Mix           Mix
}

// BytesPerFrame is the size of one interleaved sample frame.
func (f Format) BytesPerFrame() int {
	return 4
}

// Channel is a hardware playback channel that plays queued buffers in order.
// Queue hands ownership of a buffer to the channel; the channel hands it back
// by setting its status to Done.
type Channel interface {
	Configure(f Format) error
	Queue(b *Buffer) error
	Close() error
}

// OpenFunc acquires a playback channel.
type OpenFunc func() (Channel, error)
