//go:build headless

package output

import "log/slog"

// OtoSink is not available in headless builds.
type OtoSink struct{}

// NewOtoSink always fails in headless builds; use a TickerSink instead.
func NewOtoSink(Renderer, int, *slog.Logger) (*OtoSink, error) {
	return nil, ErrUnavailable
}

// Start implements Sink.
func (*OtoSink) Start() error { return ErrUnavailable }

// Close implements Sink.
func (*OtoSink) Close() error { return nil }
