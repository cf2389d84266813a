package subtractesizer

import (
	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/engine"
	"github.com/tphakala/subtractesizer/internal/param"
	"github.com/tphakala/subtractesizer/internal/ringbuf"
	"github.com/tphakala/subtractesizer/internal/store"
)

// Types used by the Synth API.
type (
	// ParamID identifies a declared parameter.
	ParamID = param.ID

	// Parameter describes one control: range, default, unit and precision.
	Parameter = param.Parameter

	// ParamSet is an immutable set of declared parameters.
	ParamSet = param.Set

	// Listener is told about every accepted target change.
	Listener = store.Listener

	// ListenerFunc adapts a function to Listener.
	ListenerFunc = store.ListenerFunc

	// Store holds the control-side targets.
	Store = store.Store

	// Engine is the audio callback.
	Engine = engine.Engine

	// EngineConfig configures the audio side.
	EngineConfig = engine.Config

	// RawEvent is one control movement in parameter units.
	RawEvent = control.RawEvent

	// EventHandler consumes RawEvents; Store.HandleEvent is one.
	EventHandler = control.Handler

	// CCMapping binds a MIDI controller to a parameter.
	CCMapping = control.CCMapping

	// MIDISurface turns MIDI control changes into RawEvents.
	MIDISurface = control.MIDISurface

	// Ring is the single-producer single-consumer output tap.
	Ring = ringbuf.Ring
)

// Built-in parameters.
const (
	Volume  = param.Volume
	QFactor = param.QFactor
)

// AnyChannel makes a CCMapping match every MIDI channel.
const AnyChannel = control.AnyChannel

// Errors reported by parameter lookups, declarations and MIDI mappings.
var (
	ErrUnknownParameter   = param.ErrUnknownParameter
	ErrInvalidDeclaration = param.ErrInvalidDeclaration
	ErrInvalidMapping     = control.ErrInvalidMapping
)

// DefaultParameters returns the built-in Volume and Q-Factor declarations,
// a starting point for WithParameters.
func DefaultParameters() []Parameter {
	return param.Declarations()
}

// DefaultEngineConfig returns the audio defaults.
func DefaultEngineConfig() EngineConfig {
	return engine.DefaultConfig()
}

// FormatDisplay renders v with p's precision, name and unit.
func FormatDisplay(p Parameter, v float64) string {
	return param.FormatDisplay(p, v)
}
