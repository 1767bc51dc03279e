package display

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/junsooki/ArisLoop/internal/input"
	"github.com/junsooki/ArisLoop/internal/logger"
)

// DefaultRefresh is the vblank rate of the headless display.
const DefaultRefresh = 60

// HeadlessOptions configures a Headless display.
type HeadlessOptions struct {
	Width   int
	Height  int
	Refresh int // vblanks per second
	// ExitAfter presses ExitButton on the ExitAfter-th scan. Zero never presses.
	ExitAfter  int
	ExitButton input.Buttons
}

// Headless is a Display without a window. Console output goes to the logger.
type Headless struct {
	buffers
	opts    HeadlessOptions
	console *Console
	latch   input.Latch
	ticker  *time.Ticker
	blank   <-chan time.Time

	scans atomic.Int64
	swaps atomic.Int64

	done      chan struct{}
	closeOnce sync.Once
}

// NewHeadless creates a headless display and starts its vblank ticker.
func NewHeadless(opts HeadlessOptions) *Headless {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.ExitButton == 0 {
		opts.ExitButton = input.ButtonStart
	}
	h := &Headless{
		opts: opts,
		console: newConsole(TopHeight/lineHeight, func(l Line) {
			if l.Warn {
				logger.Warn("console", "%s", l.Text)
				return
			}
			logger.Info("console", "%s", l.Text)
		}),
		ticker: time.NewTicker(time.Second / time.Duration(opts.Refresh)),
		done:   make(chan struct{}),
	}
	h.blank = h.ticker.C
	h.alloc(opts.Width * opts.Height * 4)
	return h
}

// Run blocks until Close.
func (h *Headless) Run() error {
	<-h.done
	return nil
}

func (h *Headless) Close() {
	h.closeOnce.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}

func (h *Headless) Done() <-chan struct{} { return h.done }

func (h *Headless) Console() *Console { return h.console }

func (h *Headless) WaitForVBlank() { waitBlank(h.blank, h.done) }

func (h *Headless) Swap() {
	h.buffers.Swap()
	h.swaps.Add(1)
}

// Front returns a copy of the visible buffer.
func (h *Headless) Front() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]byte(nil), h.front...)
}

// Swaps reports how many frames were made visible.
func (h *Headless) Swaps() int { return int(h.swaps.Load()) }

func (h *Headless) Scan() {
	if n := h.scans.Add(1); h.opts.ExitAfter > 0 && n == int64(h.opts.ExitAfter) {
		h.latch.Press(h.opts.ExitButton)
	}
	h.latch.Scan()
}

func (h *Headless) KeysDown() input.Buttons { return h.latch.KeysDown() }

// Press injects a button press, seen on the next Scan.
func (h *Headless) Press(b input.Buttons) { h.latch.Press(b) }
