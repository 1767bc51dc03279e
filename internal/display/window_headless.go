//go:build headless

package display

import "github.com/junsooki/ArisLoop/internal/logger"

// NewWindow returns a Headless display: this build has no window support.
func NewWindow(opts Options) Display {
	logger.Warn("display", "built without window support, running headless")
	return NewHeadless(HeadlessOptions{
		Width:      opts.Width,
		Height:     opts.Height,
		ExitButton: opts.CloseButton,
	})
}
