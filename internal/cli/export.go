package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/authflow/internal/adapters/file"
)

// Export writes every automaton served by the engine as a YAML file in dir,
// so the built-in catalog can be copied and edited. It returns the written paths.
func (a *App) Export(ctx context.Context, dir string) ([]string, error) {
	names, err := a.Engine.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing automata: %w", err)
	}
	target := file.NewLoader(dir)
	var paths []string
	for _, name := range names {
		def, err := a.Engine.Definition(ctx, name)
		if err != nil {
			return paths, fmt.Errorf("error loading %s: %w", name, err)
		}
		path, err := target.Write(def)
		if err != nil {
			return paths, err
		}
		fmt.Fprintf(a.Out, "Wrote %s\n", path)
		paths = append(paths, path)
	}
	return paths, nil
}
