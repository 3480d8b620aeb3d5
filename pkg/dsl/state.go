package dsl

import "github.com/aretw0/authflow/pkg/domain"

// StateBuilder provides a fluent API for configuring a state and its outgoing rules.
type StateBuilder struct {
	id        domain.StateID
	label     string
	accepting bool
	rules     []domain.Transition
	builder   *Builder
}

// Label sets the display name of the state (e.g. "showingForm").
func (s *StateBuilder) Label(label string) *StateBuilder {
	s.label = label
	return s
}

// Initial marks the state as the start state.
func (s *StateBuilder) Initial() *StateBuilder {
	s.builder.def.Initial = s.id
	return s
}

// Accepting marks the state as final.
func (s *StateBuilder) Accepting() *StateBuilder {
	s.accepting = true
	return s
}

// On adds a rule reading symbol from this state.
// Deterministic automata take exactly one target; non-deterministic ones may
// list several, or none to declare the symbol explicitly dead here.
func (s *StateBuilder) On(symbol domain.Symbol, targets ...domain.StateID) *StateBuilder {
	s.rules = append(s.rules, domain.Transition{
		From: s.id,
		On:   symbol,
		To:   append([]domain.StateID(nil), targets...),
	})
	return s
}

// ID returns the state identifier.
func (s *StateBuilder) ID() domain.StateID {
	return s.id
}
