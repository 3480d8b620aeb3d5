package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/authflow/pkg/adapters/memory"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoader_Contract(t *testing.T) {
	loader, err := memory.NewLoader(catalog.DFA(), catalog.NFA())
	require.NoError(t, err)
	ports.DefinitionLoaderContract(t, loader, catalog.DFA(), catalog.NFA())
}

func TestMemoryLoader_RejectsDuplicates(t *testing.T) {
	_, err := memory.NewLoader(catalog.DFA(), catalog.DFA())
	assert.ErrorContains(t, err, "duplicate")

	_, err = memory.NewLoader(&domain.Definition{})
	assert.ErrorContains(t, err, "missing name")
}

func TestMemoryLoader_ReturnsCopies(t *testing.T) {
	loader, err := memory.NewLoader(catalog.DFA())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := loader.Load(ctx, catalog.DFAName)
	require.NoError(t, err)
	first.Transitions[0].To[0] = "Q9"

	second, err := loader.Load(ctx, catalog.DFAName)
	require.NoError(t, err)
	assert.NotEqual(t, domain.StateID("Q9"), second.Transitions[0].To[0])
}

func TestNewFromJSON(t *testing.T) {
	loader, err := memory.NewFromJSON(map[string]string{
		"toggle": `{
			"mode": "dfa",
			"states": ["Q0", "Q1"],
			"initial": "Q0",
			"accepting": ["Q1"],
			"transitions": [
				{ "from": "Q0", "on": "flip", "to": ["Q1"] },
				{ "from": "Q1", "on": "flip", "to": ["Q0"] }
			]
		}`,
	})
	require.NoError(t, err)

	def, err := loader.Load(context.Background(), "toggle")
	require.NoError(t, err)
	assert.Equal(t, "toggle", def.Name)
	assert.NoError(t, def.Validate())

	_, err = memory.NewFromJSON(map[string]string{"broken": `{`})
	assert.Error(t, err)
}
