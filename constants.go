package subtractesizer

// Title is shown by front ends.
const Title = "Subtractesizer"

// Unit conversions for Info.
const (
	bytesPerFloat32 = 4
	msPerSecond     = 1000.0
)
