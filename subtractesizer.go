package subtractesizer

import (
	"errors"
	"fmt"
	"log/slog"

	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/tphakala/subtractesizer/internal/bridge"
	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/engine"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/simdops"
	"github.com/tphakala/subtractesizer/internal/smooth"
	"github.com/tphakala/subtractesizer/internal/store"
)

// ErrInvalidConfig indicates invalid synthesizer configuration.
var ErrInvalidConfig = errors.New("invalid synthesizer configuration")

// Config holds the synthesizer configuration.
type Config struct {
	// Engine configures the audio side: sample rate, buffer size, minimum
	// ramp time, resonator cutoff and the output tap.
	Engine EngineConfig

	// NormalizeAudio replaces an unusual buffer size or sample rate with a
	// safe default instead of rejecting it.
	NormalizeAudio bool

	// MIDIMappings binds MIDI controllers to parameters.
	MIDIMappings []CCMapping
}

// DefaultConfig returns the configuration used by the command-line front end.
func DefaultConfig() Config {
	return Config{
		Engine:       engine.DefaultConfig(),
		MIDIMappings: control.DefaultMappings(),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Synth owns the parameter set, the bridge, the store and the engine. There
// is no package-level state; several Synths may coexist.
type Synth struct {
	cfg    Config
	logger *slog.Logger

	set    *param.Set
	bridge *bridge.Bridge
	store  *store.Store
	engine *engine.Engine
}

// Option configures a Synth.
type Option func(*options)

type options struct {
	logger *slog.Logger
	decls  []param.Parameter
}

// WithLogger sets the logger used by the store and the synth.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithParameters replaces the built-in declarations. The set must still
// declare Volume and Q-Factor for the engine to start.
func WithParameters(decls ...Parameter) Option {
	return func(o *options) {
		o.decls = decls
	}
}

// New creates a Synth. An invalid parameter declaration is reported with
// ErrInvalidDeclaration, a set lacking a required parameter with
// ErrUnknownParameter; both are wrapped in ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Synth, error) {
	o := options{logger: slog.Default(), decls: param.Declarations()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if cfg.NormalizeAudio {
		before := cfg.Engine
		if cfg.Engine.Normalize() {
			o.logger.Warn("audio configuration adjusted",
				"buffer_size", before.BufferSize, "new_buffer_size", cfg.Engine.BufferSize,
				"sample_rate", before.SampleRate, "new_sample_rate", cfg.Engine.SampleRate)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set, err := param.NewSet(o.decls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for _, id := range set.ClampedDefaults() {
		p := set.MustLookup(id)
		o.logger.Info("parameter default outside its range, clamped",
			"param", p.Name, "now", p.Default, "min", p.Min, "max", p.Max)
	}
	if err := control.ValidateMappings(set, cfg.MIDIMappings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	br := bridge.New(set)
	eng, err := engine.New(cfg.Engine, set, br)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Synth{
		cfg:    cfg,
		logger: o.logger,
		set:    set,
		bridge: br,
		store:  store.New(set, br, store.WithLogger(o.logger)),
		engine: eng,
	}, nil
}

// Config returns the configuration after normalization.
func (s *Synth) Config() Config {
	return s.cfg
}

// Store returns the control-side parameter store.
func (s *Synth) Store() *Store {
	return s.store
}

// Engine returns the audio callback. Its render methods belong to the
// audio goroutine.
func (s *Synth) Engine() *Engine {
	return s.engine
}

// Params returns the declared parameter set.
func (s *Synth) Params() *ParamSet {
	return s.set
}

// OnParameterChanged registers l to be told about every accepted change.
// Register listeners before control surfaces start.
func (s *Synth) OnParameterChanged(l Listener) {
	s.store.Subscribe(l)
}

// FormatDisplay returns the label for id's current target value.
func (s *Synth) FormatDisplay(id ParamID) (string, error) {
	p, err := s.set.Lookup(id)
	if err != nil {
		return "", err
	}
	v, err := s.store.Get(id)
	if err != nil {
		return "", err
	}
	return param.FormatDisplay(p, v), nil
}

// NewMIDISurface creates a MIDI control surface on in using the configured
// mappings. Start it with Store().HandleEvent as the handler.
func (s *Synth) NewMIDISurface(in drivers.In) (*MIDISurface, error) {
	return control.NewMIDISurface(in, s.set, s.cfg.MIDIMappings, s.logger)
}

// Info describes a running Synth.
type Info struct {
	SampleRate int
	BufferSize int

	// RampFrames is the length of a full-range sweep in frames.
	RampFrames int

	// LatencyMs is the duration of one buffer in milliseconds.
	LatencyMs float64

	CutoffHz float64

	// TapBytes is the memory held by the output tap ring.
	TapBytes int

	// SIMDType describes the instruction set used by the gain and meter code.
	SIMDType string
}

// Info returns information about the synth's audio configuration.
func (s *Synth) Info() Info {
	ec := s.cfg.Engine
	info := Info{
		SampleRate: ec.SampleRate,
		BufferSize: ec.BufferSize,
		RampFrames: smooth.RampFrames(ec.MinRamp, float64(ec.SampleRate)),
		LatencyMs:  float64(ec.BufferSize) * msPerSecond / float64(ec.SampleRate),
		CutoffHz:   ec.CutoffHz,
		SIMDType:   simdops.CPUInfo(),
	}
	if tap := s.engine.Tap(); tap != nil {
		info.TapBytes = tap.Capacity() * bytesPerFloat32
	}
	return info
}
