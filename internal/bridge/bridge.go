// Package bridge hands parameter targets from the control thread to the
// audio thread without locks.
//
// Each parameter owns one cell holding the float64 bit pattern of its latest
// target in an atomic word. Publishing is a single atomic store and loading
// is a single atomic load, so neither side can block, allocate, or observe a
// torn value. Only the most recent value is kept: a reader that is slower
// than the writer simply skips the values it never saw.
//
// The Bridge is designed for exactly one writer goroutine and one reader
// goroutine. Additional writers do not corrupt values, but their publishes
// race and the generation counter loses its meaning.
package bridge

import (
	"math"
	"sync/atomic"

	"github.com/tphakala/subtractesizer/internal/param"
)

// cell is padded to a cache line so publishes to one parameter do not
// invalidate the line holding its neighbour.
type cell struct {
	bits atomic.Uint64
	gen  atomic.Uint64
	_    [cacheLineSize - cellPayloadSize]byte
}

// Bridge is a fixed array of last-value-wins cells indexed by param.ID.
type Bridge struct {
	cells []cell
}

// New creates a Bridge with one cell per parameter in set, each holding the
// parameter's default. This is the only allocation the Bridge performs.
func New(set *param.Set) *Bridge {
	b := &Bridge{cells: make([]cell, set.Len())}
	for _, p := range set.All() {
		b.cells[p.ID].bits.Store(math.Float64bits(p.Default))
	}
	return b
}

// Len returns the number of parameter cells.
func (b *Bridge) Len() int {
	return len(b.cells)
}

// Publish makes v the latest target for id. It must only be called from the
// control thread. IDs outside the declared set are ignored.
func (b *Bridge) Publish(id param.ID, v float64) {
	if id < 0 || int(id) >= len(b.cells) {
		return
	}
	c := &b.cells[id]
	c.bits.Store(math.Float64bits(v))
	c.gen.Add(1)
}

// LoadLatest returns the most recently published value for id, or the
// parameter's default if nothing was published yet. It must only be called
// from the audio thread. Unknown IDs read as zero.
func (b *Bridge) LoadLatest(id param.ID) float64 {
	if id < 0 || int(id) >= len(b.cells) {
		return 0
	}
	return math.Float64frombits(b.cells[id].bits.Load())
}

// Generation returns the number of publishes seen for id. The value is
// bumped after the new target is stored, so a reader that observes a new
// generation is guaranteed to load a value at least that recent.
func (b *Bridge) Generation(id param.ID) uint64 {
	if id < 0 || int(id) >= len(b.cells) {
		return 0
	}
	return b.cells[id].gen.Load()
}
