package ringbuf

const (
	minCapacity = 2

	// padBytes separates the producer and consumer cursors by a cache line.
	padBytes = 56
)
