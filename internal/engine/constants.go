package engine

import "time"

// Standard sample rates accepted without adjustment.
const (
	rate44k1 = 44100
	rate48k  = 48000
	rate96k  = 96000
)

// Defaults.
const (
	defaultSampleRate  = rate48k
	defaultBufferSize  = 512
	defaultMinRamp     = 10 * time.Millisecond
	defaultCutoffHz    = 1000.0
	defaultTapCapacity = 8192
	defaultSeed        = 0x5b7ac7e
)

// Limits.
const (
	fallbackBufferSize = 2048 // covers most modern audio backends
	maxBufferSize      = 1 << 16
	maxSampleRate      = 196000

	// Output is hard-limited to the float sample range.
	outputCeiling = 1.0

	// pcgStream is the second PCG word; the seed selects the first.
	pcgStream = 0x9e3779b97f4a7c15
)
