// Package store keeps the control-side target value of every parameter and
// forwards each change to the audio thread through a publisher.
package store

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tphakala/subtractesizer/internal/control"
	"github.com/tphakala/subtractesizer/internal/param"
)

// Publisher receives every accepted target value. *bridge.Bridge satisfies
// it; Publish is called with the store's lock held, so the publisher sees a
// single writer even when several control surfaces feed the store.
type Publisher interface {
	Publish(id param.ID, v float64)
}

// Listener is notified after a parameter's target changes, on the goroutine
// that called Set. It must not call back into the Store.
type Listener interface {
	OnParameterChanged(p param.Parameter, v float64)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(p param.Parameter, v float64)

// OnParameterChanged calls f(p, v).
func (f ListenerFunc) OnParameterChanged(p param.Parameter, v float64) {
	f(p, v)
}

// Store is the ParameterStore. It is safe for concurrent use by control
// surfaces; it is never touched by the audio thread.
type Store struct {
	set    *param.Set
	pub    Publisher
	logger *slog.Logger

	mu        sync.Mutex
	targets   []float64
	listeners []Listener

	clamped atomic.Uint64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for clamp and event diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithListener registers l at construction time.
func WithListener(l Listener) Option {
	return func(s *Store) {
		if l != nil {
			s.listeners = append(s.listeners, l)
		}
	}
}

// New creates a Store whose targets start at each parameter's default.
func New(set *param.Set, pub Publisher, opts ...Option) *Store {
	s := &Store{
		set:     set,
		pub:     pub,
		logger:  slog.Default(),
		targets: make([]float64, set.Len()),
	}
	for _, p := range set.All() {
		s.targets[p.ID] = p.Default
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for change notifications. Listeners are meant to be
// registered once during startup.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Set normalizes raw into id's range, stores it as the new target, publishes
// it and notifies listeners. Out-of-range input is clamped, never rejected;
// the only error is param.ErrUnknownParameter.
func (s *Store) Set(id param.ID, raw int) (float64, error) {
	p, err := s.set.Lookup(id)
	if err != nil {
		return 0, err
	}

	v, clamped := p.Normalize(raw)
	if clamped {
		s.clamped.Add(1)
		s.logger.Debug("raw value out of range, clamped",
			"param", p.Name, "raw", raw, "min", p.Min, "max", p.Max, "value", v)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.targets[id] = v
	if s.pub != nil {
		s.pub.Publish(id, v)
	}
	for _, l := range s.listeners {
		l.OnParameterChanged(p, v)
	}
	return v, nil
}

// Get returns the last target set for id, or its default if never set.
func (s *Store) Get(id param.ID) (float64, error) {
	if _, err := s.set.Lookup(id); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targets[id], nil
}

// Snapshot returns every target in ID order.
func (s *Store) Snapshot() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]float64, len(s.targets))
	copy(out, s.targets)
	return out
}

// HandleEvent applies a control-surface event. It has the signature of
// control.Handler so a Store can be handed directly to a surface.
func (s *Store) HandleEvent(ev control.RawEvent) {
	if _, err := s.Set(ev.ID, ev.Raw); err != nil {
		s.logger.Warn("dropping control event", "event", ev.String(), "error", err)
	}
}

// Clamped returns how many events were clamped into range so far.
func (s *Store) Clamped() uint64 {
	return s.clamped.Load()
}

// Params returns the parameter set the store was built with.
func (s *Store) Params() *param.Set {
	return s.set
}
