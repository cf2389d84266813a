// Package simdops provides the vector operations used on the audio path.
//
// With Profile-Guided Optimization (Go 1.22+), function pointer calls in hot paths
// can be devirtualized and inlined, achieving near-zero overhead.
package simdops

import (
	"math"

	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
)

// Ops provides SIMD-accelerated float32 operations.
type Ops struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []float32) float32

	// Sum returns the sum of all elements.
	Sum func(a []float32) float32

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []float32, s float32)

	// AddScalar adds s to each element: dst[i] = a[i] + s
	AddScalar func(dst, a []float32, s float32)

	// Mul multiplies element-wise: dst[i] = a[i] * b[i]
	Mul func(dst, a, b []float32)

	// Clamp limits each element to [lo, hi].
	Clamp func(dst, a []float32, lo, hi float32)
}

var ops32 = Ops{
	DotProductUnsafe: f32.DotProductUnsafe,
	Sum:              f32.Sum,
	Scale:            f32.Scale,
	AddScalar:        f32.AddScalar,
	Mul:              f32.Mul,
	Clamp:            f32.Clamp,
}

// Float32Ops returns the shared float32 operations.
func Float32Ops() *Ops {
	return &ops32
}

// ApplyGain multiplies buf by a constant gain in place. Unity gain is a no-op.
func (o *Ops) ApplyGain(buf []float32, gain float32) {
	if gain == 1 || len(buf) == 0 {
		return
	}
	o.Scale(buf, buf, gain)
}

// ApplyGainRamp multiplies buf by a per-sample gain curve in place.
// gains must be at least as long as buf.
func (o *Ops) ApplyGainRamp(buf, gains []float32) {
	o.Mul(buf, buf, gains[:len(buf)])
}

// RMS returns the root mean square level of buf.
func (o *Ops) RMS(buf []float32) float64 {
	if len(buf) == 0 {
		return 0
	}
	energy := float64(o.DotProductUnsafe(buf, buf))
	return math.Sqrt(energy / float64(len(buf)))
}

// Mean returns the arithmetic mean of buf, i.e. its DC offset.
func (o *Ops) Mean(buf []float32) float64 {
	if len(buf) == 0 {
		return 0
	}
	return float64(o.Sum(buf)) / float64(len(buf))
}

// CPUInfo describes the instruction set the vector operations dispatch to.
func CPUInfo() string {
	return cpu.Info()
}
