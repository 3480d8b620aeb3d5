package cli

import (
	"context"
	"testing"

	"github.com/aretw0/authflow/internal/testutils"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenYAML = `
name: broken
mode: dfa
alphabet: [go]
states: [Q0, Q1]
initial: Q9
accepting: [Q1]
transitions:
  - { from: Q0, on: go, to: Q1 }
`

const toggleYAML = `
name: toggle
mode: dfa
description: a light switch
alphabet: [flip]
states: [Q0, Q1, Q2]
initial: Q0
accepting: [Q1]
transitions:
  - { from: Q0, on: flip, to: Q1 }
  - { from: Q1, on: flip, to: Q0 }
`

func TestApp_List(t *testing.T) {
	app, out := openTest(t, Options{})
	require.NoError(t, app.List(context.Background()))

	text := out.String()
	assert.Contains(t, text, "NAME")
	assert.Regexp(t, `auth-dfa\s+dfa\s+6\s+7`, text)
	assert.Regexp(t, `auth-nfa\s+nfa\s+7\s+8`, text)
}

func TestApp_List_ReportsInvalid(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{"broken.yaml": brokenYAML, "toggle.yaml": toggleYAML})

	app, out := openTest(t, Options{Dir: dir, Store: StoreMemory})
	require.NoError(t, app.List(context.Background()))
	assert.Regexp(t, `broken\s+\?\s+-\s+-\s+invalid:`, out.String())
	assert.Contains(t, out.String(), "a light switch")
}

func TestApp_Describe(t *testing.T) {
	app, out := openTest(t, Options{})
	require.NoError(t, app.Describe(context.Background(), catalog.NFAName, false))
	assert.Contains(t, out.String(), "# auth-nfa")
	assert.Contains(t, out.String(), "{Q3,Q4,Q5}")

	assert.ErrorIs(t, app.Describe(context.Background(), "missing", false), domain.ErrAutomatonNotFound)
}

func TestApp_Graph(t *testing.T) {
	ctx := context.Background()
	app, out := openTest(t, Options{})

	require.NoError(t, app.Graph(ctx, catalog.DFAName, ""))
	assert.Contains(t, out.String(), "graph LR")
	assert.NotContains(t, out.String(), "classDef")

	_, err := app.Run(ctx, RunOptions{Name: catalog.DFAName, SessionID: "g"})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, app.Graph(ctx, "", "g"))
	assert.Contains(t, out.String(), "class Q5 active;")
	assert.Contains(t, out.String(), "class Q0 visited;")

	assert.ErrorContains(t, app.Graph(ctx, catalog.NFAName, "g"), "belongs to automaton auth-dfa")
	assert.ErrorContains(t, app.Graph(ctx, "", ""), "required")
	assert.ErrorIs(t, app.Graph(ctx, "", "nope"), domain.ErrRunNotFound)
}

func TestApp_Validate(t *testing.T) {
	t.Run("Catalog", func(t *testing.T) {
		app, out := openTest(t, Options{})
		require.NoError(t, app.Validate(context.Background()))
		assert.Contains(t, out.String(), "✓ auth-dfa")
		assert.Contains(t, out.String(), "2 automata checked, 0 invalid")
	})

	t.Run("Broken directory", func(t *testing.T) {
		dir := t.TempDir()
		testutils.WriteFiles(t, dir, map[string]string{"broken.yaml": brokenYAML, "toggle.yaml": toggleYAML})

		app, out := openTest(t, Options{Dir: dir, Store: StoreMemory})
		err := app.Validate(context.Background())
		assert.ErrorContains(t, err, "found 1 invalid automata")
		assert.Contains(t, out.String(), "✗ broken")
		assert.Contains(t, out.String(), "✓ toggle")
		assert.Contains(t, out.String(), "  ! ")
		assert.Contains(t, out.String(), "2 automata checked, 1 invalid")
	})
}
