package validator

import (
	"context"
	"testing"

	"github.com/aretw0/authflow/pkg/adapters/memory"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAll_Catalog(t *testing.T) {
	report, err := ValidateAll(context.Background(), catalog.Loader())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.Zero(t, report.Failed())
	assert.NoError(t, report.Err())
	for _, res := range report.Results {
		assert.Empty(t, res.Warnings, res.Name)
	}
}

func TestValidateAll_Broken(t *testing.T) {
	// The JSON loader decodes without validating, so broken automata reach the validator.
	loader, err := memory.NewFromJSON(map[string]string{
		"ghost": `{
			"name": "ghost",
			"mode": "dfa",
			"states": ["A"],
			"initial": "A",
			"accepting": ["A"],
			"transitions": [{"from": "A", "on": "go", "to": ["B"]}]
		}`,
	})
	require.NoError(t, err)

	report, err := ValidateAll(context.Background(), loader)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	res := report.Results[0]
	assert.False(t, res.OK())
	assert.True(t, IsStructural(res.Err))
	assert.Equal(t, 1, report.Failed())
	assert.ErrorContains(t, report.Err(), "ghost")
}

func TestWarnings(t *testing.T) {
	def := &domain.Definition{
		Name:      "island",
		Mode:      domain.Nondeterministic,
		Alphabet:  []domain.Symbol{"go"},
		States:    []domain.StateID{"A", "B", "C"},
		Initial:   "A",
		Accepting: []domain.StateID{"C"},
		Transitions: []domain.Transition{
			{From: "A", On: "go", To: []domain.StateID{"B"}},
		},
		Scenarios: map[string]domain.InputSequence{"fly": {"go", "fly"}},
	}
	require.NoError(t, def.Validate())

	warnings := Warnings(def)
	assert.Contains(t, warnings, "state C is unreachable from A")
	assert.Contains(t, warnings, "no accepting state is reachable; every run is rejected")
	assert.Contains(t, warnings, `scenario fly uses symbol "fly" outside the alphabet`)
}
