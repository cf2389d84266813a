// Package ringbuf implements a fixed-size single-producer single-consumer
// sample ring used to tap the audio thread's output.
//
// The producer never blocks and never allocates: samples that do not fit are
// dropped and counted. Capacity is rounded up to a power of two so wrapping
// is a mask instead of a modulo.
package ringbuf

import "sync/atomic"

// Ring is a lock-free SPSC buffer of float32 samples. Exactly one goroutine
// may call Write and exactly one goroutine may call Read.
type Ring struct {
	data []float32
	mask uint64

	// writePos and readPos grow monotonically; their difference is the
	// number of unread samples.
	writePos atomic.Uint64
	_        [padBytes]byte
	readPos  atomic.Uint64
	_        [padBytes]byte

	dropped atomic.Uint64
}

// New creates a ring holding at least capacity samples.
func New(capacity int) *Ring {
	if capacity < minCapacity {
		capacity = minCapacity
	}
	cap2 := 1
	for cap2 < capacity {
		cap2 <<= 1
	}
	return &Ring{
		data: make([]float32, cap2),
		mask: uint64(cap2 - 1),
	}
}

// Write copies as many samples as fit and returns how many were written.
// Producer side only.
func (r *Ring) Write(samples []float32) int {
	w := r.writePos.Load()
	free := uint64(len(r.data)) - (w - r.readPos.Load())

	n := uint64(len(samples))
	if n > free {
		r.dropped.Add(n - free)
		n = free
	}
	if n == 0 {
		return 0
	}

	start := w & r.mask
	first := min(n, uint64(len(r.data))-start)
	copy(r.data[start:start+first], samples[:first])
	copy(r.data[:n-first], samples[first:n])

	r.writePos.Store(w + n)
	return int(n)
}

// Read copies up to len(dst) samples into dst and returns how many were
// read. Consumer side only.
func (r *Ring) Read(dst []float32) int {
	rp := r.readPos.Load()
	avail := r.writePos.Load() - rp

	n := min(uint64(len(dst)), avail)
	if n == 0 {
		return 0
	}

	start := rp & r.mask
	first := min(n, uint64(len(r.data))-start)
	copy(dst[:first], r.data[start:start+first])
	copy(dst[first:n], r.data[:n-first])

	r.readPos.Store(rp + n)
	return int(n)
}

// Discard drops up to n unread samples. Consumer side only.
func (r *Ring) Discard(n int) int {
	rp := r.readPos.Load()
	avail := r.writePos.Load() - rp
	k := min(uint64(max(n, 0)), avail)
	r.readPos.Store(rp + k)
	return int(k)
}

// Available returns the number of unread samples.
func (r *Ring) Available() int {
	return int(r.writePos.Load() - r.readPos.Load())
}

// Space returns the number of samples Write can accept right now.
func (r *Ring) Space() int {
	return len(r.data) - r.Available()
}

// Capacity returns the ring size.
func (r *Ring) Capacity() int {
	return len(r.data)
}

// Dropped returns the number of samples rejected because the ring was full.
func (r *Ring) Dropped() uint64 {
	return r.dropped.Load()
}
