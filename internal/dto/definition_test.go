package dto

import (
	"testing"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_FlexibleLists(t *testing.T) {
	meta, err := Decode(map[string]any{
		"mode":      "NFA",
		"states":    "Q0, Q1, Q2",
		"initial":   "Q0",
		"accepting": []any{"Q2"},
		"labels":    map[string]any{"Q0": "start"},
		"transitions": []any{
			map[string]any{"from": "Q0", "on": "go", "to": "Q1, Q2"},
			map[string]any{"from": "Q1", "on": "go", "to": []any{"Q2"}},
		},
		"scenarios": map[string]any{
			"short": "go",
			"long":  []any{"go", "go"},
		},
	})
	require.NoError(t, err)

	def, err := meta.ToDefinition("fork.yaml")
	require.NoError(t, err)

	assert.Equal(t, "fork", def.Name)
	assert.Equal(t, domain.Nondeterministic, def.Mode)
	assert.Equal(t, []domain.StateID{"Q0", "Q1", "Q2"}, def.States)
	assert.Equal(t, []domain.StateID{"Q2"}, def.Accepting)
	assert.Equal(t, "start", def.Label("Q0"))
	assert.Equal(t, []domain.StateID{"Q1", "Q2"}, def.Transitions[0].To)
	assert.Equal(t, []domain.StateID{"Q2"}, def.Transitions[1].To)
	assert.Equal(t, domain.InputSequence{"go"}, def.Scenarios["short"])
	assert.Equal(t, domain.InputSequence{"go", "go"}, def.Scenarios["long"])
	assert.NoError(t, def.Validate())
}

func TestDecode_WeakScalars(t *testing.T) {
	meta, err := Decode(map[string]any{
		"name":    "numbers",
		"mode":    "dfa",
		"states":  []any{0, 1},
		"initial": 0,
		"transitions": []any{
			map[string]any{"from": 0, "on": "inc", "to": 1},
		},
	})
	require.NoError(t, err)

	def, err := meta.ToDefinition("ignored")
	require.NoError(t, err)
	assert.Equal(t, "numbers", def.Name)
	assert.Equal(t, []domain.StateID{"0", "1"}, def.States)
	assert.Equal(t, domain.StateID("0"), def.Initial)
	assert.Equal(t, []domain.StateID{"1"}, def.Transitions[0].To)
}

func TestToDefinition_KeepsUnknownModeForValidation(t *testing.T) {
	meta := &DefinitionMetadata{Mode: "PDA", States: "Q0", Initial: "Q0"}
	def, err := meta.ToDefinition("x.md")
	require.NoError(t, err)

	assert.Equal(t, domain.Mode("pda"), def.Mode)
	assert.ErrorIs(t, def.Validate(), domain.ErrInvalidDefinition)
}

func TestTrimExtension(t *testing.T) {
	assert.Equal(t, "auth-dfa", TrimExtension("auth-dfa.md"))
	assert.Equal(t, "auth-nfa", TrimExtension("auth-nfa.YAML"))
	assert.Equal(t, "v1.2", TrimExtension("v1.2"))
}
