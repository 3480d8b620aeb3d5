package dsl

import (
	"fmt"

	"github.com/aretw0/authflow/pkg/adapters/memory"
	"github.com/aretw0/authflow/pkg/domain"
)

// Builder manages the automaton construction.
type Builder struct {
	def    domain.Definition
	states map[domain.StateID]*StateBuilder
	order  []domain.StateID
}

// New creates a new automaton builder.
func New(name string, mode domain.Mode) *Builder {
	return &Builder{
		def: domain.Definition{
			Name: name,
			Mode: mode,
		},
		states: make(map[domain.StateID]*StateBuilder),
	}
}

// Describe sets a human readable description.
func (b *Builder) Describe(description string) *Builder {
	b.def.Description = description
	return b
}

// Alphabet declares the input alphabet explicitly.
// Without it, the alphabet is every symbol used by a rule.
func (b *Builder) Alphabet(symbols ...domain.Symbol) *Builder {
	b.def.Alphabet = append(b.def.Alphabet, symbols...)
	return b
}

// Scenario registers a named input sequence.
func (b *Builder) Scenario(name string, symbols ...domain.Symbol) *Builder {
	if b.def.Scenarios == nil {
		b.def.Scenarios = make(map[string]domain.InputSequence)
	}
	b.def.Scenarios[name] = append(domain.InputSequence(nil), symbols...)
	return b
}

// Add declares a state. States keep their declaration order.
// If the state already exists, it returns the existing builder.
func (b *Builder) Add(id domain.StateID) *StateBuilder {
	if sb, ok := b.states[id]; ok {
		return sb
	}
	sb := &StateBuilder{id: id, builder: b}
	b.states[id] = sb
	b.order = append(b.order, id)
	return sb
}

// Build assembles and validates the definition.
func (b *Builder) Build() (*domain.Definition, error) {
	def := b.def.Clone()
	def.States = nil
	def.Accepting = nil
	def.Transitions = nil

	for _, id := range b.order {
		sb := b.states[id]
		def.States = append(def.States, id)
		if sb.label != "" {
			if def.Labels == nil {
				def.Labels = make(map[domain.StateID]string)
			}
			def.Labels[id] = sb.label
		}
		if sb.accepting {
			def.Accepting = append(def.Accepting, id)
		}
		def.Transitions = append(def.Transitions, sb.rules...)
	}

	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build automaton %q: %w", def.Name, err)
	}
	// Rules are shared with the state builders until cloned.
	return def.Clone(), nil
}

// MustBuild is like Build but panics on error. Intended for static catalogs.
func (b *Builder) MustBuild() *domain.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// Compile builds the definition and compiles it into a lookup table.
func (b *Builder) Compile() (*domain.Table, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	return def.Compile()
}

// Loader builds the definition and wraps it in an in-memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	def, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewLoader(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
