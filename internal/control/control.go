// Package control defines how control surfaces deliver parameter changes to
// the synthesizer core.
//
// A surface only produces RawEvents; it knows nothing about smoothing or
// audio. The core registers a Handler once, at startup.
package control

import (
	"context"
	"fmt"

	"github.com/tphakala/subtractesizer/internal/param"
)

// RawEvent is one control movement: a parameter and the integer position
// the surface reports for it, in parameter units.
type RawEvent struct {
	ID  param.ID
	Raw int
}

// String implements fmt.Stringer.
func (e RawEvent) String() string {
	return fmt.Sprintf("%s=%d", e.ID, e.Raw)
}

// Handler consumes RawEvents. Each event is delivered exactly once.
type Handler func(RawEvent)

// Surface is an input device producing RawEvents.
type Surface interface {
	// Start begins delivering events to h until ctx is cancelled or Stop
	// is called. It does not block.
	Start(ctx context.Context, h Handler) error

	// Stop releases the device. It is safe to call more than once.
	Stop()
}
