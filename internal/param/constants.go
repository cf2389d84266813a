package param

// Front-panel dial ranges.
const (
	volumeMin     = 0.0
	volumeMax     = 100.0
	volumeDefault = 0.0

	qFactorMin     = 0.0
	qFactorMax     = 1000.0
	qFactorDefault = 5000.0
)

// maxPrecision bounds the display decimals of a parameter label.
const maxPrecision = 6
