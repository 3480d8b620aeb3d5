package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/authflow/pkg/domain"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
type Loader struct {
	defs map[string]*domain.Definition
}

// NewLoader creates a new memory loader from domain objects.
// Definitions are copied, so later changes by the caller are not observed.
func NewLoader(defs ...*domain.Definition) (*Loader, error) {
	l := &Loader{defs: make(map[string]*domain.Definition, len(defs))}
	for _, def := range defs {
		if def == nil || def.Name == "" {
			return nil, fmt.Errorf("definition missing name")
		}
		if _, dup := l.defs[def.Name]; dup {
			return nil, fmt.Errorf("duplicate automaton %q", def.Name)
		}
		l.defs[def.Name] = def.Clone()
	}
	return l, nil
}

// NewFromJSON creates a loader from raw JSON documents keyed by automaton name.
// A document without a "name" takes its key.
func NewFromJSON(data map[string]string) (*Loader, error) {
	defs := make([]*domain.Definition, 0, len(data))
	for name, raw := range data {
		var def domain.Definition
		if err := json.Unmarshal([]byte(raw), &def); err != nil {
			return nil, fmt.Errorf("failed to unmarshal automaton %s: %w", name, err)
		}
		if def.Name == "" {
			def.Name = name
		}
		defs = append(defs, &def)
	}
	return NewLoader(defs...)
}

// Load retrieves a copy of the named definition.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Definition, error) {
	def, ok := l.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return def.Clone(), nil
}

// List returns all available automaton names.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(l.defs))
	for name := range l.defs {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names, nil
}
