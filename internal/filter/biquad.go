package filter

import "github.com/cwbudde/algo-dsp/dsp/filter/biquad"

// Coefficients holds one second-order section with a0 normalized to 1.
type Coefficients = biquad.Coefficients

// Section is a biquad with coefficients and state. The zero value passes
// silence; use NewSection or SetCoefficients before processing.
type Section struct {
	biquad.Section
}

// NewSection returns a Section with the given coefficients and zero state.
func NewSection(c Coefficients) *Section {
	return &Section{Section: *biquad.NewSection(c)}
}

// SetCoefficients swaps in new coefficients while keeping the delay line,
// so a running filter can be retuned without a discontinuity in its state.
func (s *Section) SetCoefficients(c Coefficients) {
	s.Coefficients = c
}

// ProcessBlock32 filters a float32 buffer in place, keeping float64 state.
// Zero-alloc.
func (s *Section) ProcessBlock32(buf []float32) {
	for i, v := range buf {
		buf[i] = float32(s.ProcessSample(float64(v)))
	}
	st := s.State()
	s.SetState([2]float64{flushDenormal(st[0]), flushDenormal(st[1])})
}

func flushDenormal(x float64) float64 {
	if x > -denormalThreshold && x < denormalThreshold {
		return 0
	}
	return x
}
