package runtime

import (
	"fmt"

	"github.com/aretw0/authflow/pkg/domain"
)

// Engine advances a Configuration by one Symbol.
// It holds no run state: the caller (usually a Driver) owns the configuration
// across calls. The mode is taken from the table and fixed for the engine's lifetime.
type Engine struct {
	table *domain.Table
}

// NewEngine creates an engine over a compiled table.
func NewEngine(table *domain.Table) *Engine {
	return &Engine{table: table}
}

// Table returns the transition table the engine reads.
func (e *Engine) Table() *domain.Table {
	return e.table
}

// Mode returns the automaton mode.
func (e *Engine) Mode() domain.Mode {
	return e.table.Mode()
}

// InitialConfiguration returns the configuration a fresh run starts from.
func (e *Engine) InitialConfiguration() domain.Configuration {
	return domain.NewConfiguration(e.table.Initial())
}

// CheckConfiguration rejects configurations the automaton can never be in:
// members must be declared states, and a DFA holds exactly one of them.
func (e *Engine) CheckConfiguration(cfg domain.Configuration) error {
	for _, s := range cfg.States() {
		if !e.table.HasState(s) {
			return fmt.Errorf("%w: %s in automaton %s", domain.ErrUnknownState, s, e.table.Name())
		}
	}
	if e.table.Mode() == domain.Deterministic && cfg.Len() != 1 {
		return fmt.Errorf("%w: dfa %s needs exactly one state, got %s", domain.ErrInvalidConfiguration, e.table.Name(), cfg)
	}
	return nil
}

// Step computes the configuration reached from cfg by reading symbol.
// It never fails: symbols without a matching rule self-loop (DFA) or
// contribute nothing (NFA).
func (e *Engine) Step(cfg domain.Configuration, symbol domain.Symbol) domain.Configuration {
	if e.table.Mode() == domain.Deterministic {
		return e.stepDeterministic(cfg, symbol)
	}
	return e.StepSet(cfg, symbol)
}

// StepState is the deterministic transition function on a single state.
func (e *Engine) StepState(state domain.StateID, symbol domain.Symbol) domain.StateID {
	return e.table.Next(state, symbol)
}

// StepSet is the non-deterministic step: the union over every state in cfg of
// its targets on symbol. The reachable set is recomputed from cfg on every
// call, so the table is never determinized ahead of time. An empty cfg stays empty.
func (e *Engine) StepSet(cfg domain.Configuration, symbol domain.Symbol) domain.Configuration {
	if cfg.IsEmpty() {
		return domain.Configuration{}
	}
	var next []domain.StateID
	for _, s := range cfg.States() {
		next = append(next, e.table.Targets(s, symbol)...)
	}
	return domain.NewConfiguration(next...)
}

// stepDeterministic maps the single member through the total DFA function.
// Drivers only hand it configurations accepted by CheckConfiguration.
func (e *Engine) stepDeterministic(cfg domain.Configuration, symbol domain.Symbol) domain.Configuration {
	states := cfg.States()
	for i, s := range states {
		states[i] = e.table.Next(s, symbol)
	}
	return domain.NewConfiguration(states...)
}

// Accepts reports whether cfg contains an accepting state.
func (e *Engine) Accepts(cfg domain.Configuration) bool {
	for _, s := range cfg.States() {
		if e.table.IsAccepting(s) {
			return true
		}
	}
	return false
}

// Replay feeds seq to a fresh configuration and returns every configuration
// visited, starting with the initial one.
func (e *Engine) Replay(seq domain.InputSequence) []domain.Configuration {
	cfg := e.InitialConfiguration()
	trajectory := make([]domain.Configuration, 0, len(seq)+1)
	trajectory = append(trajectory, cfg)
	for _, sym := range seq {
		cfg = e.Step(cfg, sym)
		trajectory = append(trajectory, cfg)
	}
	return trajectory
}
