//go:build !headless

package output

import (
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoSink plays a Renderer through the system audio device. oto calls Read
// on its own goroutine, which is the real-time audio thread.
type OtoSink struct {
	ctx      *oto.Context
	player   *oto.Player
	renderer Renderer
	logger   *slog.Logger

	// samples is only touched from Read; it never grows.
	samples []float32

	mu      sync.Mutex // setup and control only
	started bool
}

// NewOtoSink opens the default output device as mono float32 at sampleRate.
// Only one oto context may exist per process.
func NewOtoSink(r Renderer, sampleRate int, logger *slog.Logger) (*OtoSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoLatency,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	s := &OtoSink{
		ctx:      ctx,
		renderer: r,
		logger:   logger,
		samples:  make([]float32, otoBufferSamples),
	}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Read renders len(p)/4 samples and encodes them as float32 LE. Requests
// larger than the scratch buffer are rendered in several chunks.
func (s *OtoSink) Read(p []byte) (int, error) {
	return renderFloat32LE(s.renderer, s.samples, p), nil
}

// Start begins playback.
func (s *OtoSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.player.Play()
	s.started = true
	s.logger.Info("audio output started", "backend", "oto", "channels", 1)
	return nil
}

// Close stops playback and releases the player. The oto context itself
// lives until the process exits.
func (s *OtoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	s.started = false
	return err
}
