package validator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/ports"
)

// Result is the validation outcome of one automaton.
type Result struct {
	Name     string
	Err      error    // Load or structural error; nil when the definition is valid
	Warnings []string // Non-fatal findings such as unreachable states
}

// OK reports whether the automaton loaded and validated.
func (r Result) OK() bool { return r.Err == nil }

// Report gathers the results of every automaton served by a loader.
type Report struct {
	Results []Result
}

// Failed returns the number of automata that did not validate.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Err summarizes every failure in a single error, or returns nil.
func (r *Report) Err() error {
	var lines []string
	for _, res := range r.Results {
		if res.Err != nil {
			lines = append(lines, fmt.Sprintf("%s: %v", res.Name, strings.TrimSpace(res.Err.Error())))
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return fmt.Errorf("found %d invalid automata:\n- %s", len(lines), strings.Join(lines, "\n- "))
}

// ValidateAll loads and checks every automaton the loader lists.
// Only a failure to list is returned as an error; per-automaton problems are
// recorded in the report.
func ValidateAll(ctx context.Context, loader ports.DefinitionLoader) (*Report, error) {
	names, err := loader.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list automata: %w", err)
	}

	report := &Report{}
	for _, name := range names {
		res := Result{Name: name}
		def, err := loader.Load(ctx, name)
		if err != nil {
			res.Err = err
		} else {
			res.Err = def.Validate()
			res.Warnings = Warnings(def)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// Warnings returns non-fatal findings about a definition: states that can
// never be entered, automata that can never accept, and scenarios that use
// symbols outside the declared alphabet.
func Warnings(def *domain.Definition) []string {
	var out []string

	unreachable := def.Unreachable()
	for _, s := range unreachable {
		out = append(out, fmt.Sprintf("state %s is unreachable from %s", s, def.Initial))
	}

	canAccept := false
	for _, s := range def.Accepting {
		if !slices.Contains(unreachable, s) {
			canAccept = true
			break
		}
	}
	if !canAccept {
		out = append(out, "no accepting state is reachable; every run is rejected")
	}

	if len(def.Alphabet) > 0 {
		names := make([]string, 0, len(def.Scenarios))
		for name := range def.Scenarios {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			for _, sym := range def.Scenarios[name] {
				if !slices.Contains(def.Alphabet, sym) {
					out = append(out, fmt.Sprintf("scenario %s uses symbol %q outside the alphabet", name, sym))
				}
			}
		}
	}
	return out
}

// IsStructural reports whether err comes from definition validation rather
// than from loading.
func IsStructural(err error) bool {
	return errors.Is(err, domain.ErrInvalidDefinition)
}
