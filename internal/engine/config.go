package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig indicates invalid engine configuration parameters.
var ErrInvalidConfig = errors.New("invalid engine configuration")

// Config holds the audio engine settings.
type Config struct {
	// SampleRate is the output rate in Hz.
	SampleRate int

	// BufferSize is the largest block rendered in one pass. Render accepts
	// any length and splits it into blocks of at most this many frames.
	BufferSize int

	// MinRamp is the shortest time a parameter may take to sweep its full
	// range.
	MinRamp time.Duration

	// CutoffHz is the centre frequency of the band-pass resonator.
	CutoffHz float64

	// TapCapacity sizes the output tap ring in samples. Zero disables it.
	TapCapacity int

	// Seed makes the noise source reproducible.
	Seed uint64
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SampleRate:  defaultSampleRate,
		BufferSize:  defaultBufferSize,
		MinRamp:     defaultMinRamp,
		CutoffHz:    defaultCutoffHz,
		TapCapacity: defaultTapCapacity,
		Seed:        defaultSeed,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate must be in (0, %d]", ErrInvalidConfig, maxSampleRate)
	}
	if c.BufferSize <= 0 || c.BufferSize > maxBufferSize {
		return fmt.Errorf("%w: buffer size must be in (0, %d]", ErrInvalidConfig, maxBufferSize)
	}
	if c.MinRamp < 0 {
		return fmt.Errorf("%w: minimum ramp must not be negative", ErrInvalidConfig)
	}
	nyquist := float64(c.SampleRate) / 2
	if !(c.CutoffHz > 0) || c.CutoffHz >= nyquist {
		return fmt.Errorf("%w: cutoff %g Hz outside (0, %g)", ErrInvalidConfig, c.CutoffHz, nyquist)
	}
	if c.TapCapacity < 0 {
		return fmt.Errorf("%w: tap capacity must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Normalize replaces a non-power-of-two buffer size and a non-standard
// sample rate with safe defaults, as ValidateAudioConfig does. It reports
// whether anything changed.
func (c *Config) Normalize() bool {
	bs, sr := ValidateAudioConfig(c.BufferSize, c.SampleRate)
	changed := bs != c.BufferSize || sr != c.SampleRate
	c.BufferSize, c.SampleRate = bs, sr
	return changed
}

// ValidateAudioConfig returns a buffer size and sample rate every audio
// backend is expected to accept. Power-of-two buffer sizes are kept, others
// become 2048; the standard rates 44.1, 48 and 96 kHz are kept, others
// become 44.1 kHz.
func ValidateAudioConfig(bufferSize, sampleRate int) (int, int) {
	if bufferSize <= 0 || bufferSize&(bufferSize-1) != 0 || bufferSize > maxBufferSize {
		bufferSize = fallbackBufferSize
	}
	switch sampleRate {
	case rate44k1, rate48k, rate96k:
	default:
		sampleRate = rate44k1
	}
	return bufferSize, sampleRate
}
