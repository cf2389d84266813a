package control

// MIDI limits and default controllers.
const (
	maxDataByte = 127 // largest 7-bit MIDI data value
	maxChannel  = 15

	ccVolume    = 7  // channel volume
	ccResonance = 71 // sound controller 2, "timbre/resonance"
)
