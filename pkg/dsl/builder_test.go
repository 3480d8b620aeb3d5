package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleAutomaton(t *testing.T) {
	b := New("toggle", domain.Deterministic).Describe("a light switch")

	b.Add("Q0").Label("off").Initial().
		On("flip", "Q1")

	b.Add("Q1").Label("on").Accepting().
		On("flip", "Q0")

	b.Scenario("twice", "flip", "flip")

	def, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "toggle", def.Name)
	assert.Equal(t, "a light switch", def.Description)
	assert.Equal(t, []domain.StateID{"Q0", "Q1"}, def.States, "declaration order is kept")
	assert.Equal(t, domain.StateID("Q0"), def.Initial)
	assert.Equal(t, []domain.StateID{"Q1"}, def.Accepting)
	assert.Equal(t, "on", def.Label("Q1"))
	assert.Equal(t, domain.InputSequence{"flip", "flip"}, def.Scenarios["twice"])
	assert.Equal(t, []domain.Transition{
		{From: "Q0", On: "flip", To: []domain.StateID{"Q1"}},
		{From: "Q1", On: "flip", To: []domain.StateID{"Q0"}},
	}, def.Transitions)
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New("x", domain.Nondeterministic)
	first := b.Add("Q0").Initial()
	second := b.Add("Q0")

	assert.Same(t, first, second)
	assert.Equal(t, domain.StateID("Q0"), second.ID())
}

func TestBuilder_BuildValidates(t *testing.T) {
	b := New("broken", domain.Deterministic)
	b.Add("Q0").On("go", "Q1", "Q2")

	_, err := b.Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition)
	assert.Contains(t, err.Error(), `"broken"`)

	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuilder_NondeterministicFanOut(t *testing.T) {
	b := New("fork", domain.Nondeterministic)
	b.Add("Q0").Initial().On("split", "Q1", "Q2")
	b.Add("Q1").Accepting()
	b.Add("Q2")

	table, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, []domain.StateID{"Q1", "Q2"}, table.Targets("Q0", "split"))
}

func TestBuilder_Loader(t *testing.T) {
	b := New("toggle", domain.Deterministic)
	b.Add("Q0").Initial().On("flip", "Q1")
	b.Add("Q1").On("flip", "Q0")

	loader, err := b.Loader()
	require.NoError(t, err)

	def, err := loader.Load(context.Background(), "toggle")
	require.NoError(t, err)
	assert.Len(t, def.Transitions, 2)
}

func TestBuilder_BuildDoesNotAlias(t *testing.T) {
	b := New("toggle", domain.Deterministic)
	b.Add("Q0").Initial().On("flip", "Q1")
	b.Add("Q1").On("flip", "Q0")
	b.Scenario("once", "flip")

	def, err := b.Build()
	require.NoError(t, err)
	def.Scenarios["once"][0] = "other"
	def.Transitions[0].To[0] = "Q0"

	again, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, domain.Symbol("flip"), again.Scenarios["once"][0])
	assert.Equal(t, domain.StateID("Q1"), again.Transitions[0].To[0])
}
