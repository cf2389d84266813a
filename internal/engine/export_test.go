package engine

import "github.com/tphakala/subtractesizer/internal/filter"

// Export internal state for testing.
// This file uses the _test.go suffix so it's only included in test builds.

// TunedQ returns the dial position the resonator was last designed for.
func (e *Engine) TunedQ() float64 {
	return e.tunedQ
}

// ResonatorState exposes the band-pass delay line.
func (e *Engine) ResonatorState() [2]float64 {
	return e.resonator.State()
}

// Coefficients returns the resonator's current coefficients.
func (e *Engine) Coefficients() filter.Coefficients {
	return e.resonator.Coefficients
}

// SetCutoff overrides the configured cutoff so later retunes can fail.
func (e *Engine) SetCutoff(hz float64) {
	e.cfg.CutoffHz = hz
}
