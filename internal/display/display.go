package display

import (
	"sync"

	"github.com/junsooki/ArisLoop/internal/input"
)

// Screen sizes of the dual-screen layout, in logical pixels.
const (
	TopWidth  = 400
	TopHeight = 240
)

const (
	lineHeight = 13
	consoleX   = 4
)

// Display is a dual-screen output: a text console on the top screen and a
// raw frame surface on the bottom one. It is also the input device.
type Display interface {
	// Run blocks until the display is closed. Call it from the main goroutine.
	Run() error
	Close()
	// Done is closed once the display has shut down.
	Done() <-chan struct{}

	Target() []byte
	Flush()
	WaitForVBlank()
	Swap()

	Scan()
	KeysDown() input.Buttons

	Console() *Console
}

var _ Display = (*Headless)(nil)

// Options configures a windowed display.
type Options struct {
	Title  string
	Width  int // bottom screen width
	Height int // bottom screen height
	Scale  int
	// CloseButton is pressed when the user closes the window.
	CloseButton input.Buttons
}

// Line is one line of console text.
type Line struct {
	Text string
	Warn bool
}

// Console is the top screen's text output.
type Console struct {
	mu     sync.Mutex
	lines  []Line
	footer string
	max    int
	onLine func(Line)
}

func newConsole(maxLines int, onLine func(Line)) *Console {
	return &Console{max: maxLines, onLine: onLine}
}

// Print appends a line of text.
func (c *Console) Print(text string) { c.add(Line{Text: text}) }

// Warn appends a highlighted line.
func (c *Console) Warn(text string) { c.add(Line{Text: text, Warn: true}) }

// Footer sets the line pinned to the bottom of the screen.
func (c *Console) Footer(text string) {
	c.mu.Lock()
	c.footer = text
	c.mu.Unlock()
	if c.onLine != nil {
		c.onLine(Line{Text: text})
	}
}

func (c *Console) add(l Line) {
	c.mu.Lock()
	c.lines = append(c.lines, l)
	if len(c.lines) > c.max {
		c.lines = c.lines[len(c.lines)-c.max:]
	}
	c.mu.Unlock()
	if c.onLine != nil {
		c.onLine(l)
	}
}

// Lines returns a copy of the visible lines and the footer.
func (c *Console) Lines() ([]Line, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Line(nil), c.lines...), c.footer
}

// buffers is the back/staged/front triple behind a bottom screen. The back
// buffer belongs to the presenter; staged and front are guarded by mu.
type buffers struct {
	back   []byte
	mu     sync.Mutex
	staged []byte
	front  []byte
	dirty  bool
}

func (b *buffers) alloc(size int) {
	b.back = make([]byte, size)
	b.staged = make([]byte, size)
	b.front = make([]byte, size)
}

func (b *buffers) Target() []byte { return b.back }

func (b *buffers) Flush() {
	b.mu.Lock()
	copy(b.staged, b.back)
	b.mu.Unlock()
}

func (b *buffers) Swap() {
	b.mu.Lock()
	b.staged, b.front = b.front, b.staged
	b.dirty = true
	b.mu.Unlock()
}

// waitBlank blocks until the next tick on blank or until done closes. A tick
// left over from before the call is dropped first.
func waitBlank[T any](blank <-chan T, done <-chan struct{}) {
	select {
	case <-blank:
	default:
	}
	select {
	case <-blank:
	case <-done:
	}
}
