package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/authflow/internal/dto"
	"github.com/aretw0/authflow/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.DefinitionLoader over a directory of YAML files,
// one automaton per file. The automaton name defaults to the file name.
type Loader struct {
	Dir string
}

// NewLoader creates a YAML loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// Load reads and decodes the named automaton.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Definition, error) {
	index, err := l.index()
	if err != nil {
		return nil, err
	}
	path, ok := index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAutomatonNotFound, name)
	}
	return l.parse(path)
}

// List returns the names of every automaton in the directory.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	index, err := l.index()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// index maps automaton names to file paths. Names come from the document's
// `name` key, falling back to the file name; two files claiming one name is an error.
func (l *Loader) index() (map[string]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read automata directory: %w", err)
	}

	index := make(map[string]string)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(l.Dir, entry.Name())
		def, err := l.parse(path)
		if err != nil {
			return nil, err
		}
		if other, dup := index[def.Name]; dup {
			return nil, fmt.Errorf("automaton %q defined twice: %s and %s", def.Name, other, path)
		}
		index[def.Name] = path
	}
	return index, nil
}

func (l *Loader) parse(path string) (*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	meta, err := dto.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	def, err := meta.ToDefinition(filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Write encodes def as YAML into the loader directory, named after the automaton.
// The export command uses it to seed a directory with the built-in automata.
func (l *Loader) Write(def *domain.Definition) (string, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure automata directory: %w", err)
	}
	data, err := yaml.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("failed to marshal automaton %s: %w", def.Name, err)
	}
	path := filepath.Join(l.Dir, def.Name+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
