package audio

import "sync/atomic"

// Status tracks who owns a Buffer.
type Status uint32

const (
	// StatusFree: never submitted; owned by the streamer.
	StatusFree Status = iota
	// StatusQueued: submitted, waiting in the channel; owned by the channel.
	StatusQueued
	// StatusPlaying: being read by the channel.
	StatusPlaying
	// StatusDone: fully played; ownership is back with the streamer.
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusFree:
		return "free"
	case StatusQueued:
		return "queued"
	case StatusPlaying:
		return "playing"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Buffer is one fixed-size chunk of PCM audio. The status is the only
// synchronization between the streamer and the channel: the streamer may
// write Data only while the status is Free or Done.
type Buffer struct {
	data   []byte
	status atomic.Uint32
}

// NewBuffer allocates a buffer holding size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{data: make([]byte, size)}
}

// Data returns the sample bytes. Only the current owner may touch them.
func (b *Buffer) Data() []byte { return b.data }

// Status returns the current ownership state.
func (b *Buffer) Status() Status { return Status(b.status.Load()) }

// SetStatus is called by channels as they take and release buffers.
func (b *Buffer) SetStatus(s Status) { b.status.Store(uint32(s)) }

// Writable reports whether the streamer owns the buffer.
func (b *Buffer) Writable() bool {
	s := b.Status()
	return s == StatusFree || s == StatusDone
}
