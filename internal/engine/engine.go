// Package engine is the real-time side of the synthesizer: once per audio
// buffer it pulls the latest parameter targets, advances their smoothing
// ramps and renders a band-pass filtered noise voice.
//
// Render, RenderInterleaved and Pull run on the audio thread. They take no
// locks, perform no I/O and allocate nothing; every buffer they touch is
// allocated in New.
package engine

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"

	"github.com/go-audio/audio"

	"github.com/tphakala/subtractesizer/internal/filter"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/ringbuf"
	"github.com/tphakala/subtractesizer/internal/simdops"
	"github.com/tphakala/subtractesizer/internal/smooth"
)

// Source supplies the latest published parameter targets. *bridge.Bridge
// satisfies it.
type Source interface {
	LoadLatest(id param.ID) float64
	Generation(id param.ID) uint64
}

// Engine renders audio from smoothed parameters.
type Engine struct {
	cfg Config
	set *param.Set
	src Source

	smoothers []*smooth.Value
	gens      []uint64

	volume  *smooth.Value
	volMin  float64
	volSpan float64
	qFactor *smooth.Value
	qSpan   float64

	resonator filter.Section
	tunedQ    float64
	// Retunes rejected by the designer; the previous tuning stays.
	retuneFailures atomic.Uint64

	rng  *rand.Rand
	ops  *simdops.Ops
	gain []float32
	mono []float32
	tap  *ringbuf.Ring

	frames atomic.Uint64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTap routes rendered samples to r instead of the ring sized by
// Config.TapCapacity.
func WithTap(r *ringbuf.Ring) Option {
	return func(e *Engine) {
		e.tap = r
	}
}

// New creates an Engine reading parameter targets from src. The set must
// declare Volume and QFactor.
func New(cfg Config, set *param.Set, src Source, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil parameter source", ErrInvalidConfig)
	}

	vol, err := set.Lookup(param.Volume)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	q, err := set.Lookup(param.QFactor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	e := &Engine{
		cfg:       cfg,
		set:       set,
		src:       src,
		smoothers: make([]*smooth.Value, set.Len()),
		gens:      make([]uint64, set.Len()),
		volMin:    vol.Min,
		volSpan:   vol.Span(),
		qSpan:     q.Span(),
		tunedQ:    -1,
		rng:       rand.New(rand.NewPCG(cfg.Seed, pcgStream)),
		ops:       simdops.Float32Ops(),
		gain:      make([]float32, cfg.BufferSize),
		mono:      make([]float32, cfg.BufferSize),
	}
	if cfg.TapCapacity > 0 {
		e.tap = ringbuf.New(cfg.TapCapacity)
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, p := range set.All() {
		sv, err := smooth.New(p.Min, p.Max, float64(cfg.SampleRate), cfg.MinRamp, src.LoadLatest(p.ID))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, p.Name, err)
		}
		e.smoothers[p.ID] = sv
		e.gens[p.ID] = src.Generation(p.ID)
	}
	e.volume = e.smoothers[param.Volume]
	e.qFactor = e.smoothers[param.QFactor]

	if err := e.retune(); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Params returns the parameter set the engine smooths.
func (e *Engine) Params() *param.Set {
	return e.set
}

// Tap returns the ring receiving a copy of every rendered mono sample, or
// nil if tapping is disabled. The caller is the ring's only reader.
func (e *Engine) Tap() *ringbuf.Ring {
	return e.tap
}

// Frames returns the number of frames rendered so far. Safe from any
// goroutine.
func (e *Engine) Frames() uint64 {
	return e.frames.Load()
}

// RetuneFailures returns how many resonator retunes were rejected. Safe from
// any goroutine.
func (e *Engine) RetuneFailures() uint64 {
	return e.retuneFailures.Load()
}

// Pull returns the current smoothed value of id. Audio thread only.
func (e *Engine) Pull(id param.ID) float64 {
	if id < 0 || int(id) >= len(e.smoothers) {
		return 0
	}
	return e.smoothers[id].Current()
}

// Render fills dst with mono samples in [-1, 1]. Audio thread only.
func (e *Engine) Render(dst []float32) {
	e.pullTargets()
	for len(dst) > 0 {
		n := min(len(dst), e.cfg.BufferSize)
		e.renderBlock(dst[:n])
		dst = dst[n:]
	}
}

// RenderInterleaved fills dst with frames of channels interleaved samples,
// the same signal on every channel. Audio thread only.
func (e *Engine) RenderInterleaved(dst []float32, channels int) {
	if channels <= 1 {
		e.Render(dst)
		return
	}

	e.pullTargets()
	frames := len(dst) / channels
	for frames > 0 {
		n := min(frames, e.cfg.BufferSize)
		block := e.mono[:n]
		e.renderBlock(block)
		for i, s := range block {
			base := i * channels
			for ch := range channels {
				dst[base+ch] = s
			}
		}
		dst = dst[n*channels:]
		frames -= n
	}
	clear(dst)
}

// RenderBuffer renders into a go-audio buffer whose format must match the
// engine's sample rate.
func (e *Engine) RenderBuffer(buf *audio.Float32Buffer) error {
	if buf == nil || buf.Format == nil {
		return fmt.Errorf("%w: buffer has no format", ErrInvalidConfig)
	}
	if buf.Format.SampleRate != e.cfg.SampleRate {
		return fmt.Errorf("%w: buffer rate %d does not match engine rate %d",
			ErrInvalidConfig, buf.Format.SampleRate, e.cfg.SampleRate)
	}
	if buf.Format.NumChannels < 1 {
		return fmt.Errorf("%w: buffer has no channels", ErrInvalidConfig)
	}
	e.RenderInterleaved(buf.Data, buf.Format.NumChannels)
	return nil
}

// pullTargets adopts every target published since the previous buffer.
func (e *Engine) pullTargets() {
	for i, sv := range e.smoothers {
		id := param.ID(i)
		if g := e.src.Generation(id); g != e.gens[i] {
			e.gens[i] = g
			sv.SetTarget(e.src.LoadLatest(id))
		}
	}
}

func (e *Engine) renderBlock(block []float32) {
	n := len(block)

	for i := range block {
		block[i] = e.rng.Float32()*2 - 1
	}

	// Resonance follows its ramp at block granularity.
	e.qFactor.Advance(n)
	if e.qFactor.Current() != e.tunedQ {
		if err := e.retune(); err != nil {
			e.retuneFailures.Add(1)
		}
	}
	e.resonator.ProcessBlock32(block)

	// Gain is the volume's position within its declared range.
	if e.volume.Settled() {
		e.ops.ApplyGain(block, float32((e.volume.Current()-e.volMin)/e.volSpan))
	} else {
		gains := e.gain[:n]
		e.volume.Fill32(gains)
		e.ops.AddScalar(gains, gains, float32(-e.volMin))
		e.ops.Scale(gains, gains, float32(1/e.volSpan))
		e.ops.ApplyGainRamp(block, gains)
	}

	e.ops.Clamp(block, block, -outputCeiling, outputCeiling)

	// Any parameter besides volume and Q still needs its ramp advanced.
	for i, sv := range e.smoothers {
		if id := param.ID(i); id != param.Volume && id != param.QFactor {
			sv.Advance(n)
		}
	}

	if e.tap != nil {
		e.tap.Write(block)
	}
	e.frames.Add(uint64(n))
}

// retune recomputes the resonator for the current Q value. On failure the
// previous coefficients and tunedQ are left in place.
func (e *Engine) retune() error {
	q := e.qFactor.Current()
	c, err := filter.BandPass(e.cfg.CutoffHz, filter.QFromDial(q, e.qSpan), float64(e.cfg.SampleRate))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	e.resonator.SetCoefficients(c)
	e.tunedQ = q
	return nil
}
