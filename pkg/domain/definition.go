package domain

import (
	"fmt"
	"slices"
)

// Definition is the static, declarative description of a finite automaton.
// It is plain data: loaders decode it from files, the dsl package builds it
// in code, and Compile turns it into a lookup Table.
type Definition struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Mode        Mode   `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Alphabet lists the symbols the automaton understands.
	// If empty, it is derived from the symbols used by Transitions.
	Alphabet []Symbol `json:"alphabet,omitempty" yaml:"alphabet,omitempty" mapstructure:"alphabet"`

	States    []StateID `json:"states" yaml:"states" mapstructure:"states"`
	Initial   StateID   `json:"initial" yaml:"initial" mapstructure:"initial"`
	Accepting []StateID `json:"accepting" yaml:"accepting" mapstructure:"accepting"`

	// Labels maps states to human-readable names (e.g. Q1 -> showingForm).
	Labels map[StateID]string `json:"labels,omitempty" yaml:"labels,omitempty" mapstructure:"labels"`

	Transitions []Transition `json:"transitions" yaml:"transitions" mapstructure:"transitions"`

	// Scenarios are named input sequences shipped with the automaton.
	Scenarios map[string]InputSequence `json:"scenarios,omitempty" yaml:"scenarios,omitempty" mapstructure:"scenarios"`
}

// Symbols returns the effective alphabet: the declared one, or the symbols
// used by the rules in order of first appearance.
func (d *Definition) Symbols() []Symbol {
	if len(d.Alphabet) > 0 {
		return slices.Clone(d.Alphabet)
	}
	seen := make(map[Symbol]bool)
	var out []Symbol
	for _, t := range d.Transitions {
		if !seen[t.On] {
			seen[t.On] = true
			out = append(out, t.On)
		}
	}
	return out
}

// Label returns the human-readable name of s, or s itself.
func (d *Definition) Label(s StateID) string {
	if l, ok := d.Labels[s]; ok && l != "" {
		return l
	}
	return string(s)
}

// IsAccepting reports whether s is a final state.
func (d *Definition) IsAccepting(s StateID) bool {
	return slices.Contains(d.Accepting, s)
}

// Clone returns a deep copy of the definition.
func (d *Definition) Clone() *Definition {
	out := *d
	out.Alphabet = slices.Clone(d.Alphabet)
	out.States = slices.Clone(d.States)
	out.Accepting = slices.Clone(d.Accepting)
	if d.Labels != nil {
		out.Labels = make(map[StateID]string, len(d.Labels))
		for k, v := range d.Labels {
			out.Labels[k] = v
		}
	}
	out.Transitions = make([]Transition, len(d.Transitions))
	for i, t := range d.Transitions {
		t.To = slices.Clone(t.To)
		out.Transitions[i] = t
	}
	if d.Scenarios != nil {
		out.Scenarios = make(map[string]InputSequence, len(d.Scenarios))
		for k, v := range d.Scenarios {
			out.Scenarios[k] = slices.Clone(v)
		}
	}
	return &out
}

// Validate checks the definition for structural consistency.
// It reports every problem at once as an *AggregateError.
func (d *Definition) Validate() error {
	var errs []error
	fail := func(key, reason string, value any) {
		errs = append(errs, &ValidationError{Key: key, Reason: reason, Value: value})
	}

	if d.Name == "" {
		fail("name", "required", nil)
	}
	if !d.Mode.Valid() {
		fail("mode", "must be dfa or nfa", d.Mode)
	}
	if len(d.States) == 0 {
		fail("states", "at least one state is required", nil)
	}

	states := make(map[StateID]bool, len(d.States))
	for i, s := range d.States {
		if s == "" {
			fail(fmt.Sprintf("states[%d]", i), "empty state id", nil)
			continue
		}
		if states[s] {
			fail(fmt.Sprintf("states[%d]", i), "duplicate state", s)
		}
		states[s] = true
	}

	if d.Initial == "" {
		fail("initial", "required", nil)
	} else if !states[d.Initial] {
		fail("initial", "not a declared state", d.Initial)
	}

	for i, s := range d.Accepting {
		if !states[s] {
			fail(fmt.Sprintf("accepting[%d]", i), "not a declared state", s)
		}
	}

	alphabet := make(map[Symbol]bool, len(d.Alphabet))
	for _, sym := range d.Alphabet {
		alphabet[sym] = true
	}

	type pair struct {
		from StateID
		on   Symbol
	}
	seen := make(map[pair]int)

	for i, t := range d.Transitions {
		key := fmt.Sprintf("transitions[%d]", i)
		if !states[t.From] {
			fail(key+".from", "not a declared state", t.From)
		}
		if t.On == "" {
			fail(key+".on", "empty symbol", nil)
		} else if len(alphabet) > 0 && !alphabet[t.On] {
			fail(key+".on", "symbol not in alphabet", t.On)
		}
		for j, to := range t.To {
			if !states[to] {
				fail(fmt.Sprintf("%s.to[%d]", key, j), "not a declared state", to)
			}
		}

		if d.Mode != Deterministic {
			continue
		}
		if len(t.To) != 1 {
			fail(key+".to", "deterministic rule must have exactly one target", len(t.To))
		}
		p := pair{t.From, t.On}
		if prev, dup := seen[p]; dup {
			fail(key, fmt.Sprintf("duplicate deterministic rule (first at transitions[%d])", prev), string(t.From)+"/"+string(t.On))
		} else {
			seen[p] = i
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// Unreachable returns the declared states that cannot be reached from the
// initial state through any rule, in declaration order.
func (d *Definition) Unreachable() []StateID {
	adj := make(map[StateID][]StateID)
	for _, t := range d.Transitions {
		adj[t.From] = append(adj[t.From], t.To...)
	}

	visited := map[StateID]bool{d.Initial: true}
	queue := []StateID{d.Initial}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adj[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []StateID
	for _, s := range d.States {
		if !visited[s] {
			out = append(out, s)
		}
	}
	return out
}

// Compile validates the definition and builds its lookup Table.
func (d *Definition) Compile() (*Table, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("automaton %q: %w", d.Name, err)
	}
	return newTable(d.Clone()), nil
}
