package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrRunExists is returned when creating a run whose ID is already taken.
var ErrRunExists = errors.New("run already exists")

// ErrAutomatonNotFound is returned when a loader has no definition with the requested name.
var ErrAutomatonNotFound = errors.New("automaton not found")

// ErrScenarioNotFound is returned when an automaton has no scenario with the requested name.
var ErrScenarioNotFound = errors.New("scenario not found")

// ErrUnknownState is returned when an initial configuration names a state the automaton does not declare.
var ErrUnknownState = errors.New("unknown state")

// ErrInvalidConfiguration is returned when a configuration does not fit the automaton mode,
// such as a DFA configuration without exactly one state.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrSymbolNotInAlphabet is returned by strict drivers when an input symbol is not declared.
var ErrSymbolNotInAlphabet = errors.New("symbol not in alphabet")

// ErrAlreadyInitialized is returned when Initialize is called on a run that already started.
var ErrAlreadyInitialized = errors.New("run already initialized")

// ErrInvalidDefinition matches any definition validation failure via errors.Is.
var ErrInvalidDefinition = errors.New("invalid automaton definition")

// SymbolError reports an input symbol outside the declared alphabet.
type SymbolError struct {
	Index  int
	Symbol Symbol
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("input[%d] %q: %s", e.Index, e.Symbol, ErrSymbolNotInAlphabet)
}

func (e *SymbolError) Unwrap() error {
	return ErrSymbolNotInAlphabet
}

// ValidationError represents a single definition validation failure.
type ValidationError struct {
	Key    string // Field or rule locator, e.g. "transitions[3].to"
	Reason string // Human-readable reason for failure
	Value  any    // The offending value, if any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %v)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Is lets callers test any validation failure with errors.Is(err, ErrInvalidDefinition).
func (e *AggregateError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// ValidationErrors returns all validation errors if err wraps an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
