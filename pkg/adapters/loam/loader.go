package loam

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/authflow/internal/dto"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/loam"
)

// Loader adapts a Loam repository to the DefinitionLoader interface.
// Each document is one automaton: the frontmatter carries the definition and
// the Markdown body, when present, becomes the description.
type Loader struct {
	Repo *loam.TypedRepository[dto.DefinitionMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[dto.DefinitionMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// Load retrieves an automaton by name. Documents are matched by their
// frontmatter `name`, falling back to the document ID without extension.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Definition, error) {
	// Fast path: the document ID matches the automaton name (auth-dfa.md).
	if doc, err := l.Repo.Get(ctx, name); err == nil {
		def, err := toDefinition(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if def.Name == name {
			return def, nil
		}
	}

	defs, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return def, nil
}

// List lists all automata in the repository.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	defs, err := l.all(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) all(ctx context.Context) (map[string]*domain.Definition, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	defs := make(map[string]*domain.Definition, len(docs))
	for _, doc := range docs {
		def, err := toDefinition(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("collision detected: automaton '%s' is defined in both '%s' and '%s'", def.Name, existing, doc.ID)
		}
		seen[def.Name] = doc.ID
		defs[def.Name] = def
	}
	return defs, nil
}

func toDefinition(docID string, meta dto.DefinitionMetadata, content string) (*domain.Definition, error) {
	def, err := meta.ToDefinition(docID)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", docID, err)
	}
	if def.Description == "" {
		def.Description = strings.TrimSpace(content)
	}
	return def, nil
}

// Watch implements ports.Watchable.
// It signals the ID of every changed automaton document.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
