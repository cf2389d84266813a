package filter

// Resonance limits. MinQ keeps alpha finite when the dial sits at zero.
const (
	MinQ = 0.1
	MaxQ = 20.0
)

// MaxSampleRate is the highest rate a design accepts.
const MaxSampleRate = 196000

const denormalThreshold = 1e-30
