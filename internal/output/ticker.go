package output

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-audio/audio"
)

// TickerConfig configures a TickerSink.
type TickerConfig struct {
	SampleRate int
	Channels   int
	// Frames per rendered buffer. The tick period is Frames/SampleRate.
	Frames int
	// OnBuffer, if set, receives every rendered buffer on the sink's
	// goroutine. The buffer is reused after OnBuffer returns.
	OnBuffer func(*audio.Float32Buffer)
}

// Validate checks if the configuration is valid.
func (c *TickerConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("%w: channel count must be positive", ErrInvalidConfig)
	}
	if c.Frames <= 0 {
		return fmt.Errorf("%w: frames per buffer must be positive", ErrInvalidConfig)
	}
	return nil
}

// Period returns the wall-clock length of one buffer.
func (c *TickerConfig) Period() time.Duration {
	return time.Duration(c.Frames) * time.Second / time.Duration(c.SampleRate)
}

// TickerSink renders one buffer per period on its own goroutine and throws
// the result away (or hands it to OnBuffer). It stands in for a device when
// running headless.
type TickerSink struct {
	cfg      TickerConfig
	renderer BufferRenderer
	logger   *slog.Logger
	buf      *audio.Float32Buffer

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	ticks  uint64
}

// NewTickerSink creates a sink that drives r in real time.
func NewTickerSink(r BufferRenderer, cfg TickerConfig, logger *slog.Logger) (*TickerSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TickerSink{
		cfg:      cfg,
		renderer: r,
		logger:   logger,
		buf: &audio.Float32Buffer{
			Format: &audio.Format{NumChannels: cfg.Channels, SampleRate: cfg.SampleRate},
			Data:   make([]float32, cfg.Frames*cfg.Channels),
		},
	}, nil
}

// Start launches the render loop.
func (s *TickerSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.run(ctx, s.done)

	s.logger.Info("audio output started", "backend", "ticker", "period", s.cfg.Period())
	return nil
}

// Close stops the render loop and waits for it to exit.
func (s *TickerSink) Close() error {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}

// Ticks returns how many buffers have been rendered.
func (s *TickerSink) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// RenderOnce renders a single buffer synchronously. It must not be mixed
// with a running loop.
func (s *TickerSink) RenderOnce() error {
	if err := s.renderer.RenderBuffer(s.buf); err != nil {
		return err
	}
	if s.cfg.OnBuffer != nil {
		s.cfg.OnBuffer(s.buf)
	}
	s.mu.Lock()
	s.ticks++
	s.mu.Unlock()
	return nil
}

func (s *TickerSink) run(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RenderOnce(); err != nil {
				s.logger.Error("render failed, stopping output", "error", err)
				return
			}
		}
	}
}
