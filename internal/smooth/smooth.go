// Package smooth ramps parameter values on the audio thread so that a
// control change never produces a step in the output signal.
//
// A Value moves linearly from its current value to its target. The per-frame
// increment is bounded so that sweeping the whole parameter range takes at
// least the configured minimum ramp duration; shorter moves finish sooner.
// Retargeting mid-ramp continues from wherever the ramp currently is.
//
// A Value is not safe for concurrent use. It belongs to the audio thread.
package smooth

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig indicates a Value could not be created from its arguments.
var ErrInvalidConfig = errors.New("invalid smoothing configuration")

// Value is the ramping state of a single parameter.
type Value struct {
	min, max float64

	rampFrames int
	maxStep    float64

	current   float64
	target    float64
	increment float64
	remaining int
}

// New creates a Value for a parameter ranging over [minV, maxV], running at
// sampleRate frames per second, that needs at least minRamp to cross the
// whole range. The value starts settled at initial (clamped into range).
// A zero minRamp lets the value jump to its target in one frame.
func New(minV, maxV, sampleRate float64, minRamp time.Duration, initial float64) (*Value, error) {
	if math.IsNaN(minV) || math.IsNaN(maxV) || minV >= maxV {
		return nil, fmt.Errorf("%w: range [%g, %g] is empty", ErrInvalidConfig, minV, maxV)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive", ErrInvalidConfig)
	}
	if minRamp < 0 {
		return nil, fmt.Errorf("%w: minimum ramp duration must not be negative", ErrInvalidConfig)
	}

	frames := RampFrames(minRamp, sampleRate)
	v := &Value{
		min:        minV,
		max:        maxV,
		rampFrames: frames,
		maxStep:    (maxV - minV) / float64(frames),
	}
	v.Reset(initial)
	return v, nil
}

// RampFrames converts a duration into whole frames at sampleRate, rounding
// up so the ramp is never shorter than d. The result is at least one.
func RampFrames(d time.Duration, sampleRate float64) int {
	frames := ceilTolerant(d.Seconds() * sampleRate)
	if frames < 1 {
		return 1
	}
	return frames
}

// ceilTolerant rounds x up, ignoring float noise just above an integer.
func ceilTolerant(x float64) int {
	return int(math.Ceil(x - roundingSlack*math.Max(1, math.Abs(x))))
}

func (v *Value) clamp(x float64) float64 {
	switch {
	case math.IsNaN(x), x < v.min:
		return v.min
	case x > v.max:
		return v.max
	default:
		return x
	}
}

// SetTarget adopts t (clamped into range) as the new target. The ramp
// restarts from the current value; it is never reset to its origin.
func (v *Value) SetTarget(t float64) {
	t = v.clamp(t)
	if t == v.target {
		return
	}
	v.target = t

	diff := t - v.current
	if diff == 0 {
		v.increment = 0
		v.remaining = 0
		return
	}

	steps := ceilTolerant(math.Abs(diff) * float64(v.rampFrames) / (v.max - v.min))
	if steps < 1 {
		steps = 1
	}
	v.increment = diff / float64(steps)
	v.remaining = steps
}

// Reset jumps to x without ramping and settles there.
func (v *Value) Reset(x float64) {
	x = v.clamp(x)
	v.current = x
	v.target = x
	v.increment = 0
	v.remaining = 0
}

// Next advances one frame and returns the new current value. The final step
// of a ramp lands exactly on the target.
func (v *Value) Next() float64 {
	if v.remaining == 0 {
		return v.current
	}
	v.remaining--
	if v.remaining == 0 {
		v.current = v.target
	} else {
		v.current += v.increment
	}
	return v.current
}

// Advance moves the value forward by n frames and returns the current value.
func (v *Value) Advance(n int) float64 {
	if n <= 0 || v.remaining == 0 {
		return v.current
	}
	if n >= v.remaining {
		v.current = v.target
		v.remaining = 0
		v.increment = 0
		return v.current
	}
	v.current += v.increment * float64(n)
	v.remaining -= n
	return v.current
}

// Fill writes one value per frame into dst, advancing len(dst) frames.
func (v *Value) Fill(dst []float64) {
	if v.remaining == 0 {
		c := v.current
		for i := range dst {
			dst[i] = c
		}
		return
	}
	for i := range dst {
		dst[i] = v.Next()
	}
}

// Fill32 is like Fill for float32 buffers.
func (v *Value) Fill32(dst []float32) {
	if v.remaining == 0 {
		c := float32(v.current)
		for i := range dst {
			dst[i] = c
		}
		return
	}
	for i := range dst {
		dst[i] = float32(v.Next())
	}
}

// Current returns the value at the current frame.
func (v *Value) Current() float64 { return v.current }

// Target returns the value being ramped to.
func (v *Value) Target() float64 { return v.target }

// Settled reports whether the current value has reached the target.
func (v *Value) Settled() bool { return v.remaining == 0 }

// Remaining returns the frames left in the active ramp.
func (v *Value) Remaining() int { return v.remaining }

// MaxStep returns the largest change Next can make in a single frame.
func (v *Value) MaxStep() float64 { return v.maxStep }

// RampLength returns the number of frames a full-range sweep takes.
func (v *Value) RampLength() int { return v.rampFrames }
