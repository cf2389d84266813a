package output

import "time"

const (
	// bytesPerSample is the size of one float32 LE sample.
	bytesPerSample = 4

	// otoBufferSamples is the scratch size allocated up front for oto's
	// callback; larger requests are rendered in chunks of this size.
	otoBufferSamples = 4096

	// otoLatency is the device buffer length requested from oto.
	otoLatency = 20 * time.Millisecond
)
