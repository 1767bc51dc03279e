//go:build headless

package audio

import (
	"fmt"

	"github.com/junsooki/ArisLoop/internal/metrics"
)

// OpenOto always fails: this build has no audio backend.
func OpenOto(f Format, m *metrics.Metrics) OpenFunc {
	return func() (Channel, error) {
		return nil, fmt.Errorf("%w: built without audio support", ErrDeviceUnavailable)
	}
}
