// Package dto holds the on-disk shape of automaton definitions shared by the
// YAML and Loam loaders.
package dto

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DefinitionMetadata represents an automaton document header (YAML file or Markdown frontmatter).
// It uses "mapstructure" tags to match the document keys. Fields typed `any`
// accept either a list or a comma separated string, e.g. `to: Q3, Q4, Q5`.
type DefinitionMetadata struct {
	Name        string               `json:"name" mapstructure:"name"`
	Description string               `json:"description" mapstructure:"description"`
	Mode        string               `json:"mode" mapstructure:"mode"`
	Alphabet    any                  `json:"alphabet" mapstructure:"alphabet"`
	States      any                  `json:"states" mapstructure:"states"`
	Initial     string               `json:"initial" mapstructure:"initial"`
	Accepting   any                  `json:"accepting" mapstructure:"accepting"`
	Labels      map[string]string    `json:"labels" mapstructure:"labels"`
	Transitions []TransitionMetadata `json:"transitions" mapstructure:"transitions"`
	Scenarios   map[string]any       `json:"scenarios" mapstructure:"scenarios"`
}

// TransitionMetadata is one rule as written in a document.
type TransitionMetadata struct {
	From string `json:"from" mapstructure:"from"`
	On   string `json:"on" mapstructure:"on"`
	To   any    `json:"to" mapstructure:"to"`
}

// Decode converts a raw document map into metadata.
// Scalars are weakly typed, so `initial: 0` or `labels: {Q0: 1}` still decode as strings.
func Decode(raw map[string]any) (*DefinitionMetadata, error) {
	var meta DefinitionMetadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &meta,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode automaton document: %w", err)
	}
	return &meta, nil
}

// ToDefinition normalizes metadata into a domain definition.
// fallbackName (usually the document ID or file name) is used when the
// document has no explicit name; its extension is stripped.
func (m *DefinitionMetadata) ToDefinition(fallbackName string) (*domain.Definition, error) {
	name := m.Name
	if name == "" {
		name = TrimExtension(fallbackName)
	}

	def := &domain.Definition{
		Name:        name,
		Description: m.Description,
		Mode:        domain.Mode(strings.ToLower(strings.TrimSpace(m.Mode))),
		Initial:     domain.StateID(m.Initial),
	}
	if mode, err := domain.ParseMode(m.Mode); err == nil {
		def.Mode = mode
	}

	alphabet, err := stringList(m.Alphabet)
	if err != nil {
		return nil, fmt.Errorf("alphabet: %w", err)
	}
	for _, s := range alphabet {
		def.Alphabet = append(def.Alphabet, domain.Symbol(s))
	}

	states, err := stringList(m.States)
	if err != nil {
		return nil, fmt.Errorf("states: %w", err)
	}
	for _, s := range states {
		def.States = append(def.States, domain.StateID(s))
	}

	accepting, err := stringList(m.Accepting)
	if err != nil {
		return nil, fmt.Errorf("accepting: %w", err)
	}
	for _, s := range accepting {
		def.Accepting = append(def.Accepting, domain.StateID(s))
	}

	if len(m.Labels) > 0 {
		def.Labels = make(map[domain.StateID]string, len(m.Labels))
		for k, v := range m.Labels {
			def.Labels[domain.StateID(k)] = v
		}
	}

	for i, t := range m.Transitions {
		targets, err := stringList(t.To)
		if err != nil {
			return nil, fmt.Errorf("transitions[%d].to: %w", i, err)
		}
		rule := domain.Transition{From: domain.StateID(t.From), On: domain.Symbol(t.On)}
		for _, to := range targets {
			rule.To = append(rule.To, domain.StateID(to))
		}
		def.Transitions = append(def.Transitions, rule)
	}

	if len(m.Scenarios) > 0 {
		def.Scenarios = make(map[string]domain.InputSequence, len(m.Scenarios))
		for k, v := range m.Scenarios {
			symbols, err := stringList(v)
			if err != nil {
				return nil, fmt.Errorf("scenarios.%s: %w", k, err)
			}
			def.Scenarios[k] = domain.ParseSequence(strings.Join(symbols, ","))
		}
	}

	return def, nil
}

// TrimExtension strips a known document extension from an ID ("auth-dfa.md" -> "auth-dfa").
func TrimExtension(id string) string {
	switch strings.ToLower(filepath.Ext(id)) {
	case ".md", ".json", ".yaml", ".yml":
		return strings.TrimSuffix(id, filepath.Ext(id))
	}
	return id
}

func stringList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		return domain.ParseSequence(val).Strings(), nil
	}
	var out []string
	if err := mapstructure.WeakDecode(v, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out, nil
}
