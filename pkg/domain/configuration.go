package domain

import (
	"encoding/json"
	"slices"
	"strings"

	"facette.io/natsort"
)

// Configuration is the instantaneous position of an automaton: the set of
// states it currently occupies.
//
// Members are deduplicated and kept in natural order (Q2 before Q10), so two
// configurations holding the same states are always Equal and render the same.
// The zero value is the empty configuration.
type Configuration struct {
	states []StateID
}

// NewConfiguration builds a configuration from the given states, removing duplicates.
func NewConfiguration(states ...StateID) Configuration {
	if len(states) == 0 {
		return Configuration{}
	}

	seen := make(map[StateID]struct{}, len(states))
	keys := make([]string, 0, len(states))
	for _, s := range states {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		keys = append(keys, string(s))
	}
	natsort.Sort(keys)

	out := make([]StateID, len(keys))
	for i, k := range keys {
		out[i] = StateID(k)
	}
	return Configuration{states: out}
}

// States returns a copy of the member states in canonical order.
func (c Configuration) States() []StateID {
	return slices.Clone(c.states)
}

// Len returns the number of member states.
func (c Configuration) Len() int {
	return len(c.states)
}

// IsEmpty reports whether no state survives. For an NFA this means the
// automaton is dead: no further transition can ever revive it.
func (c Configuration) IsEmpty() bool {
	return len(c.states) == 0
}

// Contains reports whether s is a member.
func (c Configuration) Contains(s StateID) bool {
	return slices.Contains(c.states, s)
}

// Single returns the only member of a one-state configuration.
func (c Configuration) Single() (StateID, bool) {
	if len(c.states) != 1 {
		return "", false
	}
	return c.states[0], true
}

// Equal reports whether both configurations hold the same states.
func (c Configuration) Equal(other Configuration) bool {
	return slices.Equal(c.states, other.states)
}

// String renders the configuration in set notation, e.g. "{Q3,Q4,Q5}".
func (c Configuration) String() string {
	parts := make([]string, len(c.states))
	for i, s := range c.states {
		parts[i] = string(s)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// MarshalJSON encodes the configuration as a JSON array of state IDs.
func (c Configuration) MarshalJSON() ([]byte, error) {
	if c.states == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.states)
}

// UnmarshalJSON decodes a JSON array of state IDs, normalizing it.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	var states []StateID
	if err := json.Unmarshal(data, &states); err != nil {
		return err
	}
	*c = NewConfiguration(states...)
	return nil
}
