package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/tphakala/subtractesizer/internal/param"
)

// ErrInvalidMapping indicates a CC mapping that cannot be honoured.
var ErrInvalidMapping = errors.New("invalid MIDI mapping")

// AnyChannel matches control changes on every MIDI channel.
const AnyChannel = -1

// CCMapping binds a MIDI continuous controller to a parameter.
type CCMapping struct {
	Channel    int // 0-15, or AnyChannel
	Controller uint8
	ID         param.ID
}

// DefaultMappings binds CC 7 (channel volume) and CC 71 (resonance) on any
// channel to Volume and QFactor.
func DefaultMappings() []CCMapping {
	return []CCMapping{
		{Channel: AnyChannel, Controller: ccVolume, ID: param.Volume},
		{Channel: AnyChannel, Controller: ccResonance, ID: param.QFactor},
	}
}

// MIDISurface turns control-change messages from a MIDI input port into
// RawEvents. 7-bit CC values are scaled onto the mapped parameter's range.
type MIDISurface struct {
	in       drivers.In
	set      *param.Set
	mappings []CCMapping
	logger   *slog.Logger

	mu      sync.Mutex
	stop    func()
	session uint64
	unwatch func() bool
}

// NewMIDISurface validates mappings against set. in may be nil when the
// surface is only used to Decode messages.
func NewMIDISurface(in drivers.In, set *param.Set, mappings []CCMapping, logger *slog.Logger) (*MIDISurface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ValidateMappings(set, mappings); err != nil {
		return nil, err
	}
	return &MIDISurface{
		in:       in,
		set:      set,
		mappings: append([]CCMapping(nil), mappings...),
		logger:   logger,
	}, nil
}

// ValidateMappings checks that every mapping names a declared parameter and
// a valid controller and channel.
func ValidateMappings(set *param.Set, mappings []CCMapping) error {
	for _, m := range mappings {
		if _, err := set.Lookup(m.ID); err != nil {
			return fmt.Errorf("%w: cc %d: %w", ErrInvalidMapping, m.Controller, err)
		}
		if m.Controller > maxDataByte {
			return fmt.Errorf("%w: controller %d out of range", ErrInvalidMapping, m.Controller)
		}
		if m.Channel != AnyChannel && (m.Channel < 0 || m.Channel > maxChannel) {
			return fmt.Errorf("%w: channel %d out of range", ErrInvalidMapping, m.Channel)
		}
	}
	return nil
}

// Decode converts msg to a RawEvent if it is a mapped control change.
func (s *MIDISurface) Decode(msg midi.Message) (RawEvent, bool) {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return RawEvent{}, false
	}
	for _, m := range s.mappings {
		if m.Controller != cc || (m.Channel != AnyChannel && m.Channel != int(ch)) {
			continue
		}
		p := s.set.MustLookup(m.ID)
		return RawEvent{ID: m.ID, Raw: ScaleCC(p, val)}, true
	}
	return RawEvent{}, false
}

// ScaleCC maps a 7-bit controller value onto p's range, rounding to the
// nearest raw unit.
func ScaleCC(p param.Parameter, val uint8) int {
	if val > maxDataByte {
		val = maxDataByte
	}
	return int(math.Round(p.Min + float64(val)*p.Span()/maxDataByte))
}

// Start opens the port and listens until ctx is done or Stop is called.
func (s *MIDISurface) Start(ctx context.Context, h Handler) error {
	if s.in == nil {
		return fmt.Errorf("%w: no input port", ErrInvalidMapping)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return nil
	}

	stop, err := midi.ListenTo(s.in, func(msg midi.Message, _ int32) {
		if ev, ok := s.Decode(msg); ok {
			h(ev)
		}
	}, midi.HandleError(func(err error) {
		s.logger.Warn("midi input error", "port", s.in.String(), "error", err)
	}))
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.in.String(), err)
	}
	s.logger.Info("listening for MIDI control changes", "port", s.in.String())
	s.begin(ctx, stop)
	return nil
}

// begin records a listening session and ties it to ctx. s.mu must be held.
func (s *MIDISurface) begin(ctx context.Context, stop func()) {
	s.session++
	sess := s.session
	s.stop = stop
	s.unwatch = context.AfterFunc(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session == sess {
			s.end()
		}
	})
}

// Stop stops listening. The port itself is closed by the driver.
func (s *MIDISurface) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()
}

// end stops the current session, if any. s.mu must be held.
func (s *MIDISurface) end() {
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}
