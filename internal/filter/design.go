// Package filter designs and runs the resonator's second-order filters.
//
// Designs come from algo-dsp's RBJ cookbook; this package adds the 0 dB
// band-pass, range checks and the dial-to-Q mapping.
package filter

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// ErrInvalidDesign indicates filter parameters outside their valid range.
var ErrInvalidDesign = errors.New("invalid filter design")

// Kind enumerates the supported responses.
type Kind int

const (
	// BandPassKind has constant 0 dB peak gain at the cutoff.
	BandPassKind Kind = iota
	// LowPassKind is a resonant low-pass.
	LowPassKind
	// HighPassKind is a resonant high-pass.
	HighPassKind
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case BandPassKind:
		return "bandpass"
	case LowPassKind:
		return "lowpass"
	case HighPassKind:
		return "highpass"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Design computes coefficients of the given kind.
func Design(kind Kind, cutoff, q, sampleRate float64) (Coefficients, error) {
	if err := validate(cutoff, q, sampleRate); err != nil {
		return Coefficients{}, err
	}

	switch kind {
	case BandPassKind:
		// Constant skirt gain peaks at Q; scaling the zeros by 1/Q
		// brings the peak to 0 dB.
		c := design.Bandpass(cutoff, q, sampleRate)
		c.B0 /= q
		c.B1 /= q
		c.B2 /= q
		return c, nil
	case LowPassKind:
		return design.Lowpass(cutoff, q, sampleRate), nil
	case HighPassKind:
		return design.Highpass(cutoff, q, sampleRate), nil
	default:
		return Coefficients{}, fmt.Errorf("%w: unsupported kind %s", ErrInvalidDesign, kind)
	}
}

// BandPass designs a constant 0 dB peak gain band-pass.
func BandPass(cutoff, q, sampleRate float64) (Coefficients, error) {
	return Design(BandPassKind, cutoff, q, sampleRate)
}

// LowPass designs a resonant low-pass.
func LowPass(cutoff, q, sampleRate float64) (Coefficients, error) {
	return Design(LowPassKind, cutoff, q, sampleRate)
}

// HighPass designs a resonant high-pass.
func HighPass(cutoff, q, sampleRate float64) (Coefficients, error) {
	return Design(HighPassKind, cutoff, q, sampleRate)
}

func validate(cutoff, q, sampleRate float64) error {
	if !(sampleRate > 0) || sampleRate > MaxSampleRate {
		return fmt.Errorf("%w: sample rate %g outside (0, %g]", ErrInvalidDesign, sampleRate, float64(MaxSampleRate))
	}
	nyquist := sampleRate / 2
	if !(cutoff > 0) || cutoff >= nyquist {
		return fmt.Errorf("%w: cutoff %g Hz outside (0, %g)", ErrInvalidDesign, cutoff, nyquist)
	}
	if !(q > 0) || q > MaxQ {
		return fmt.Errorf("%w: Q %g outside (0, %g]", ErrInvalidDesign, q, MaxQ)
	}
	return nil
}

// QFromDial maps a resonance dial position in [0, dialMax] onto a filter Q
// in [MinQ, MaxQ]. Positions outside the dial are clamped.
func QFromDial(pos, dialMax float64) float64 {
	if dialMax <= 0 || math.IsNaN(pos) || pos < 0 {
		return MinQ
	}
	if pos > dialMax {
		pos = dialMax
	}
	return MinQ + (MaxQ-MinQ)*pos/dialMax
}
