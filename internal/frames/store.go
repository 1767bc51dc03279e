package frames

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"golang.org/x/sync/errgroup"

	"github.com/junsooki/ArisLoop/internal/decoder"
)

// ErrSizeMismatch is returned when a decoded frame does not match the surface.
var ErrSizeMismatch = errors.New("frame size does not match display")

// Frame is one decoded picture laid out exactly like the display back buffer.
// It is never modified after Load.
type Frame []byte

// Store is the fixed, ordered set of frames. Indexing wraps around.
type Store struct {
	frames []Frame
	size   int
}

// Spec describes where frames live and what they must decode to.
type Spec struct {
	Pattern string // fmt pattern applied to the zero-based index, e.g. "aris/aris%02d.qoi"
	Count   int
	Width   int
	Height  int
	Workers int
}

// Load reads and decodes every frame named by spec. The first failure aborts
// the load and names the asset that caused it.
func Load(ctx context.Context, fsys fs.FS, dec decoder.Decoder, spec Spec) (*Store, error) {
	if spec.Count < 1 {
		return nil, fmt.Errorf("frames: count must be at least 1, got %d", spec.Count)
	}
	size := spec.Width * spec.Height * 4
	frames := make([]Frame, spec.Count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(spec.Workers, 1))
	for i := range frames {
		i := i // per-iteration copy; go.mod targets go1.21 loop semantics
		name := fmt.Sprintf(spec.Pattern, i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := loadOne(fsys, dec, name, spec.Width, spec.Height)
			if err != nil {
				return err
			}
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Store{frames: frames, size: size}, nil
}

func loadOne(fsys fs.FS, dec decoder.Decoder, name string, w, h int) (Frame, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", name, err)
	}
	img, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", name, err)
	}
	b := img.Bounds()
	if b.Dx() != w || b.Dy() != h || len(img.Pix) != w*h*4 {
		return nil, fmt.Errorf("frame %s is %dx%d, want %dx%d: %w", name, b.Dx(), b.Dy(), w, h, ErrSizeMismatch)
	}
	return Frame(img.Pix), nil
}

// New builds a store from frames that are already decoded. All frames must
// have the same non-zero length.
func New(frames []Frame) (*Store, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("frames: store needs at least one frame")
	}
	size := len(frames[0])
	for i, f := range frames {
		if len(f) == 0 || len(f) != size {
			return nil, fmt.Errorf("frame %d is %d bytes, want %d: %w", i, len(f), size, ErrSizeMismatch)
		}
	}
	return &Store{frames: frames, size: size}, nil
}

// Len returns the number of frames.
func (s *Store) Len() int { return len(s.frames) }

// FrameSize returns the byte length shared by every frame.
func (s *Store) FrameSize() int { return s.size }

// At returns frame i mod Len.
func (s *Store) At(i int) Frame {
	n := len(s.frames)
	return s.frames[((i%n)+n)%n]
}
