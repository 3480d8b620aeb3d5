package domain

import (
	"fmt"
	"strings"
)

// Symbol is an input event consumed by an automaton.
// Symbols are opaque and compare by exact string match.
type Symbol string

// StateID identifies a state of an automaton.
type StateID string

// InputSequence is a finite, ordered list of symbols fed to an automaton in order.
type InputSequence []Symbol

// ParseSequence splits a comma or whitespace separated list of symbols.
// Empty items are dropped, so "" yields an empty sequence.
func ParseSequence(raw string) InputSequence {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	seq := make(InputSequence, 0, len(fields))
	for _, f := range fields {
		seq = append(seq, Symbol(f))
	}
	return seq
}

// Strings returns the sequence as plain strings.
func (s InputSequence) Strings() []string {
	out := make([]string, len(s))
	for i, sym := range s {
		out[i] = string(sym)
	}
	return out
}

// Mode selects how an automaton advances on a symbol.
type Mode string

const (
	// Deterministic automata occupy exactly one state at a time (DFA).
	Deterministic Mode = "dfa"
	// Nondeterministic automata occupy a set of states at a time (NFA).
	Nondeterministic Mode = "nfa"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == Deterministic || m == Nondeterministic
}

// ParseMode accepts "dfa", "nfa" and their long forms, case-insensitively.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dfa", "deterministic":
		return Deterministic, nil
	case "nfa", "nondeterministic", "non-deterministic":
		return Nondeterministic, nil
	}
	return "", fmt.Errorf("unknown automaton mode %q (expected dfa or nfa)", raw)
}
