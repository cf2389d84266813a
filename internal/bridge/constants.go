package bridge

const (
	// cacheLineSize covers the common 64-byte line on amd64 and arm64.
	cacheLineSize = 64

	// cellPayloadSize is the bytes used by a cell's two atomic words.
	cellPayloadSize = 16
)
