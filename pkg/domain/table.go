package domain

import "slices"

type ruleKey struct {
	state  StateID
	symbol Symbol
}

// Table is the compiled lookup form of a Definition.
// It is immutable and safe for concurrent use.
type Table struct {
	def       *Definition
	rules     map[ruleKey][]StateID
	states    map[StateID]bool
	accepting map[StateID]bool
	alphabet  map[Symbol]bool
}

func newTable(def *Definition) *Table {
	t := &Table{
		def:       def,
		rules:     make(map[ruleKey][]StateID, len(def.Transitions)),
		states:    make(map[StateID]bool, len(def.States)),
		accepting: make(map[StateID]bool, len(def.Accepting)),
		alphabet:  make(map[Symbol]bool),
	}
	for _, s := range def.States {
		t.states[s] = true
	}
	for _, s := range def.Accepting {
		t.accepting[s] = true
	}
	for _, sym := range def.Symbols() {
		t.alphabet[sym] = true
	}

	// Repeated non-deterministic rules for the same pair accumulate.
	for _, rule := range def.Transitions {
		k := ruleKey{rule.From, rule.On}
		for _, to := range rule.To {
			if !slices.Contains(t.rules[k], to) {
				t.rules[k] = append(t.rules[k], to)
			}
		}
	}
	return t
}

// Name returns the automaton name.
func (t *Table) Name() string { return t.def.Name }

// Mode returns the automaton mode.
func (t *Table) Mode() Mode { return t.def.Mode }

// Initial returns the initial state.
func (t *Table) Initial() StateID { return t.def.Initial }

// Definition returns a copy of the definition the table was compiled from.
func (t *Table) Definition() *Definition { return t.def.Clone() }

// Next is the deterministic lookup. It is total: when no rule matches
// (state, symbol), the automaton stays in state.
func (t *Table) Next(state StateID, symbol Symbol) StateID {
	if targets := t.rules[ruleKey{state, symbol}]; len(targets) > 0 {
		return targets[0]
	}
	return state
}

// Targets is the non-deterministic lookup. It is total: when no rule matches
// (state, symbol), the result is empty, meaning the symbol is not enabled there.
func (t *Table) Targets(state StateID, symbol Symbol) []StateID {
	return slices.Clone(t.rules[ruleKey{state, symbol}])
}

// HasState reports whether s is a declared state.
func (t *Table) HasState(s StateID) bool { return t.states[s] }

// IsAccepting reports whether s is a final state.
func (t *Table) IsAccepting(s StateID) bool { return t.accepting[s] }

// InAlphabet reports whether sym belongs to the effective alphabet.
func (t *Table) InAlphabet(sym Symbol) bool { return t.alphabet[sym] }
