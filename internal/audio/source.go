package audio

import (
	"errors"
	"fmt"
	"io"
)

// ErrEmptySource is returned when the source has no bytes to loop over.
var ErrEmptySource = errors.New("sample source is empty")

// Source is a raw PCM stream that loops forever.
type Source struct {
	r     io.ReadSeeker
	wraps uint64
}

// NewSource wraps r, which is read from its current offset.
func NewSource(r io.ReadSeeker) *Source {
	return &Source{r: r}
}

// maxEmptyReads bounds consecutive (0, nil) reads before Fill gives up.
const maxEmptyReads = 100

// Fill reads exactly len(buf) bytes. When the stream ends it rewinds to the
// start and keeps reading, so the buffer holds the tail of the stream
// followed by its head. Empty reads are retried; only io.EOF rewinds.
func (s *Source) Fill(buf []byte) error {
	n := 0
	progress := true
	empty := 0
	for n < len(buf) {
		m, err := s.r.Read(buf[n:])
		n += m
		if m > 0 {
			progress = true
			empty = 0
		}
		switch {
		case err == io.EOF:
			if !progress {
				return ErrEmptySource
			}
			if err := s.Rewind(); err != nil {
				return err
			}
			progress = false
			empty = 0
		case err != nil:
			return fmt.Errorf("read samples: %w", err)
		case m == 0:
			empty++
			if empty >= maxEmptyReads {
				return fmt.Errorf("read samples: %w", io.ErrNoProgress)
			}
		}
	}
	return nil
}

// Rewind restarts the stream from its first byte.
func (s *Source) Rewind() error {
	if _, err := s.r.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind samples: %w", err)
	}
	s.wraps++
	return nil
}

// Wraps returns how many times the source has restarted.
func (s *Source) Wraps() uint64 { return s.wraps }
