// Package param declares the fixed set of synthesizer parameters shared by
// the control surface and the audio engine.
//
// A parameter set is built once at startup and is read-only afterwards, so
// it can be shared between threads without synchronization.
package param

import (
	"errors"
	"fmt"
	"math"
)

// ID identifies a declared parameter. IDs are dense, starting at zero, so
// they can index fixed-size arrays on the audio thread.
type ID int

const (
	// Volume is the output level dial.
	Volume ID = iota

	// QFactor is the resonance dial of the band-pass voice.
	QFactor

	// Count is the number of parameters the synthesizer declares.
	Count
)

// String returns the parameter's short name.
func (id ID) String() string {
	switch id {
	case Volume:
		return "volume"
	case QFactor:
		return "qfactor"
	default:
		return fmt.Sprintf("param(%d)", int(id))
	}
}

// Common errors returned by parameter lookups and declarations.
var (
	// ErrUnknownParameter indicates an ID outside the declared set.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrInvalidDeclaration indicates a malformed parameter declaration.
	ErrInvalidDeclaration = errors.New("invalid parameter declaration")
)

// Parameter describes one control. It is immutable once declared.
type Parameter struct {
	ID   ID
	Name string
	Unit string

	// Min and Max bound every value the parameter can take.
	Min float64
	Max float64

	// Default is the value used before any event arrives.
	Default float64

	// Precision is the number of decimals shown on the display label.
	Precision int
}

// Clamp limits v to the inclusive range [Min, Max]. NaN maps to Min.
func (p Parameter) Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < p.Min:
		return p.Min
	case v > p.Max:
		return p.Max
	default:
		return v
	}
}

// Contains reports whether v lies inside the declared range.
func (p Parameter) Contains(v float64) bool {
	return v >= p.Min && v <= p.Max
}

// Span returns Max - Min.
func (p Parameter) Span() float64 {
	return p.Max - p.Min
}

// Normalize converts a raw control-surface value into the parameter's
// range. Raw values are expressed in parameter units, so normalization is a
// clamp; the second result reports whether the input was out of range.
func (p Parameter) Normalize(raw int) (float64, bool) {
	v := float64(raw)
	c := p.Clamp(v)
	return c, c != v
}

func (p Parameter) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: parameter %d has no name", ErrInvalidDeclaration, int(p.ID))
	}
	for _, v := range []float64{p.Min, p.Max, p.Default} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s has a non-finite bound or default", ErrInvalidDeclaration, p.Name)
		}
	}
	if p.Min >= p.Max {
		return fmt.Errorf("%w: %s range [%g, %g] is empty", ErrInvalidDeclaration, p.Name, p.Min, p.Max)
	}
	if p.Precision < 0 || p.Precision > maxPrecision {
		return fmt.Errorf("%w: %s precision must be 0-%d", ErrInvalidDeclaration, p.Name, maxPrecision)
	}
	return nil
}

// Declarations returns the synthesizer's built-in parameters.
//
// The Q-factor default is deliberately outside its dial range, as the
// front panel has always shipped it; NewSet clamps it to the maximum.
func Declarations() []Parameter {
	return []Parameter{
		{
			ID:        Volume,
			Name:      "Volume",
			Unit:      "%",
			Min:       volumeMin,
			Max:       volumeMax,
			Default:   volumeDefault,
			Precision: 0,
		},
		{
			ID:        QFactor,
			Name:      "Q-Factor",
			Min:       qFactorMin,
			Max:       qFactorMax,
			Default:   qFactorDefault,
			Precision: 0,
		},
	}
}
