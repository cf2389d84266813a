// Package output drives the engine's render callback from an audio device or
// from a timer.
package output

import (
	"errors"

	"github.com/go-audio/audio"
)

var (
	// ErrUnavailable is returned when a sink is not compiled into the binary.
	ErrUnavailable = errors.New("audio output not available in this build")

	// ErrAlreadyStarted is returned by Start on a running sink.
	ErrAlreadyStarted = errors.New("sink already started")

	// ErrInvalidConfig indicates invalid sink parameters.
	ErrInvalidConfig = errors.New("invalid sink configuration")
)

// Sink pulls audio from a renderer until closed.
type Sink interface {
	Start() error
	Close() error
}

// Renderer fills mono float32 buffers. *engine.Engine satisfies it.
type Renderer interface {
	Render(dst []float32)
}

// BufferRenderer fills go-audio buffers. *engine.Engine satisfies it.
type BufferRenderer interface {
	RenderBuffer(buf *audio.Float32Buffer) error
}
