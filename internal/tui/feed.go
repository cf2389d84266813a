package tui

import (
	"github.com/tphakala/subtractesizer/internal/bridge"
	"github.com/tphakala/subtractesizer/internal/param"
)

// Feed forwards parameter changes to the UI without ever blocking the
// caller. It satisfies store.Listener; the store serializes calls to it,
// so the feed has a single writer.
type Feed struct {
	set    *param.Set
	values *bridge.Bridge
	notify chan struct{}
}

// NewFeed creates a Feed holding each parameter's default.
func NewFeed(set *param.Set) *Feed {
	return &Feed{
		set:    set,
		values: bridge.New(set),
		notify: make(chan struct{}, 1),
	}
}

// OnParameterChanged records v and wakes the UI if it is not already
// pending. Bursts of changes collapse into a single wake-up.
func (f *Feed) OnParameterChanged(p param.Parameter, v float64) {
	f.values.Publish(p.ID, v)
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest value of every parameter.
func (f *Feed) Snapshot() []float64 {
	out := make([]float64, f.set.Len())
	for i := range out {
		out[i] = f.values.LoadLatest(param.ID(i))
	}
	return out
}
