//go:build !headless

package display

import (
	"image"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/junsooki/ArisLoop/internal/input"
)

var (
	consoleBg = color.RGBA{0x10, 0x10, 0x18, 0xff}
	textColor = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	warnColor = color.RGBA{0xff, 0xe0, 0x30, 0xff}
)

// EbitenDisplay draws both screens into one Ebitengine window and captures
// keyboard and gamepad input as console buttons.
type EbitenDisplay struct {
	opts    Options
	buffers
	console *Console
	latch   input.Latch

	bottom *ebiten.Image
	vblank chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	closing   bool
}

var _ Display = (*EbitenDisplay)(nil)

// NewWindow returns the windowed display for this build.
func NewWindow(opts Options) Display { return NewEbitenDisplay(opts) }

// NewEbitenDisplay creates a display. Nothing is shown until Run.
func NewEbitenDisplay(opts Options) *EbitenDisplay {
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.CloseButton == 0 {
		opts.CloseButton = input.ButtonStart
	}
	d := &EbitenDisplay{
		opts:    opts,
		console: newConsole(TopHeight/lineHeight-2, nil),
		vblank:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	d.alloc(opts.Width * opts.Height * 4)
	return d
}

// Run starts the Ebitengine game loop. Must be called from the main goroutine.
func (d *EbitenDisplay) Run() error {
	w, h := d.Layout(0, 0)
	ebiten.SetWindowSize(w*d.opts.Scale, h*d.opts.Scale)
	ebiten.SetWindowTitle(d.opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	err := ebiten.RunGame(d)
	d.Close()
	return err
}

// Close ends the game loop and releases anyone waiting for a vblank.
func (d *EbitenDisplay) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

func (d *EbitenDisplay) Done() <-chan struct{} { return d.done }

func (d *EbitenDisplay) Console() *Console { return d.console }

func (d *EbitenDisplay) WaitForVBlank() { waitBlank(d.vblank, d.done) }

func (d *EbitenDisplay) Scan()                   { d.latch.Scan() }
func (d *EbitenDisplay) KeysDown() input.Buttons { return d.latch.KeysDown() }

// --- ebiten.Game interface ---

func (d *EbitenDisplay) Update() error {
	select {
	case <-d.done:
		return ebiten.Termination
	default:
	}
	if ebiten.IsWindowBeingClosed() && !d.closing {
		// Let the presenter wind down; Close ends the loop.
		d.closing = true
		d.latch.Press(d.opts.CloseButton)
	}
	d.captureKeyboardInput()
	d.captureGamepadInput()
	return nil
}

func (d *EbitenDisplay) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	d.drawConsole(screen)

	if d.bottom == nil {
		d.bottom = ebiten.NewImage(d.opts.Width, d.opts.Height)
	}
	d.mu.Lock()
	if d.dirty {
		d.bottom.WritePixels(d.front)
		d.dirty = false
	}
	d.mu.Unlock()

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(d.bottomX()), TopHeight)
	screen.DrawImage(d.bottom, op)

	select {
	case d.vblank <- struct{}{}:
	default:
	}
}

func (d *EbitenDisplay) Layout(outsideWidth, outsideHeight int) (int, int) {
	return max(TopWidth, d.opts.Width), TopHeight + d.opts.Height
}

func (d *EbitenDisplay) bottomX() int {
	w, _ := d.Layout(0, 0)
	return (w - d.opts.Width) / 2
}

func (d *EbitenDisplay) drawConsole(screen *ebiten.Image) {
	w, _ := d.Layout(0, 0)
	top := screen.SubImage(image.Rect(0, 0, w, TopHeight)).(*ebiten.Image)
	top.Fill(consoleBg)

	face := basicfont.Face7x13
	lines, footer := d.console.Lines()
	for i, l := range lines {
		c := textColor
		if l.Warn {
			c = warnColor
		}
		text.Draw(top, l.Text, face, consoleX, (i+1)*lineHeight, c)
	}
	if footer != "" {
		b := text.BoundString(face, footer)
		x := (TopWidth - b.Dx()) / 2
		text.Draw(top, footer, face, max(x, consoleX), TopHeight-lineHeight/2, textColor)
	}
}

// --- Input capture ---

func (d *EbitenDisplay) captureKeyboardInput() {
	for _, k := range keyButtons {
		if inpututil.IsKeyJustPressed(k.key) {
			d.latch.Press(k.btn)
		}
	}
}

func (d *EbitenDisplay) captureGamepadInput() {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}
		for _, p := range padButtons {
			if inpututil.IsStandardGamepadButtonJustPressed(id, p.pad) {
				d.latch.Press(p.btn)
			}
		}
	}
}
