package param

import (
	"fmt"
	"strconv"
	"strings"
)

// Set is a validated, read-only table of parameter declarations indexed by ID.
type Set struct {
	params  []Parameter
	clamped []ID
}

// NewSet validates decls and returns them as a Set.
//
// IDs must be unique and dense (0..len-1). A default outside its range is
// clamped rather than rejected; ClampedDefaults reports which ones were.
// Any other malformation is a configuration error and fails with
// ErrInvalidDeclaration or ErrUnknownParameter.
func NewSet(decls ...Parameter) (*Set, error) {
	if len(decls) == 0 {
		return nil, fmt.Errorf("%w: no parameters declared", ErrInvalidDeclaration)
	}

	s := &Set{params: make([]Parameter, len(decls))}
	seen := make([]bool, len(decls))

	for _, p := range decls {
		if p.ID < 0 || int(p.ID) >= len(decls) {
			return nil, fmt.Errorf("%w: id %d outside 0-%d", ErrUnknownParameter, int(p.ID), len(decls)-1)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidDeclaration, int(p.ID))
		}
		if err := p.validate(); err != nil {
			return nil, err
		}

		if !p.Contains(p.Default) {
			p.Default = p.Clamp(p.Default)
			s.clamped = append(s.clamped, p.ID)
		}

		seen[p.ID] = true
		s.params[p.ID] = p
	}

	return s, nil
}

// Default returns the synthesizer's built-in parameter set.
func Default() *Set {
	s, err := NewSet(Declarations()...)
	if err != nil {
		panic("param: built-in declarations are invalid: " + err.Error())
	}
	return s
}

// Len returns the number of declared parameters.
func (s *Set) Len() int {
	return len(s.params)
}

// Lookup returns the declaration for id.
func (s *Set) Lookup(id ID) (Parameter, error) {
	if id < 0 || int(id) >= len(s.params) {
		return Parameter{}, fmt.Errorf("%w: %s", ErrUnknownParameter, id)
	}
	return s.params[id], nil
}

// MustLookup is like Lookup but panics on an unknown id. It is meant for
// IDs that were validated at startup.
func (s *Set) MustLookup(id ID) Parameter {
	p, err := s.Lookup(id)
	if err != nil {
		panic(err)
	}
	return p
}

// All returns a copy of every declaration in ID order.
func (s *Set) All() []Parameter {
	out := make([]Parameter, len(s.params))
	copy(out, s.params)
	return out
}

// ClampedDefaults lists parameters whose declared default had to be
// clamped into range.
func (s *Set) ClampedDefaults() []ID {
	out := make([]ID, len(s.clamped))
	copy(out, s.clamped)
	return out
}

// FormatDisplay renders v for the label next to p's control, for example
// "Volume: 42 %" or "Q-Factor: 350".
func FormatDisplay(p Parameter, v float64) string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(": ")
	b.WriteString(strconv.FormatFloat(p.Clamp(v), 'f', p.Precision, 64))
	if p.Unit != "" {
		b.WriteByte(' ')
		b.WriteString(p.Unit)
	}
	return b.String()
}
