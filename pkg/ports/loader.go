package ports

import (
	"context"

	"github.com/aretw0/authflow/pkg/domain"
)

// DefinitionLoader defines how the engine retrieves automaton definitions.
// This allows the storage layer (Loam, YAML files, Memory) to be decoupled.
type DefinitionLoader interface {
	// Load retrieves a definition by automaton name.
	// Returns domain.ErrAutomatonNotFound if no such automaton exists.
	// The returned definition is not validated; callers compile it.
	Load(ctx context.Context, name string) (*domain.Definition, error)

	// List returns the names of every available automaton, sorted.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// The engine uses it to drop compiled tables when a definition is edited.
type Watchable interface {
	// Watch returns a channel that receives the ID of every changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
