package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/authflow/internal/dto"
	"github.com/aretw0/authflow/internal/testutils"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dfaDoc = `---
name: auth-dfa
mode: dfa
states: [Q0, Q1, Q2, Q3, Q4, Q5]
initial: Q0
accepting: [Q5]
labels:
  Q0: start
  Q1: showingForm
  Q2: validating
  Q3: error
  Q4: authenticated
  Q5: accessGranted
transitions:
  - { from: Q0, on: accessForm, to: Q1 }
  - { from: Q1, on: submitCredentials, to: Q2 }
  - { from: Q2, on: validCredentials, to: Q4 }
  - { from: Q2, on: invalidCredentials, to: Q3 }
  - { from: Q3, on: retryLogin, to: Q1 }
  - { from: Q4, on: accessResource, to: Q5 }
  - { from: Q4, on: logout, to: Q0 }
  - { from: Q5, on: logout, to: Q0 }
scenarios:
  login: accessForm, submitCredentials, validCredentials, accessResource
---
Deterministic login flow.`

const nfaDoc = `---
name: auth-nfa
mode: nfa
states: [Q0, Q1, Q2, Q3, Q4, Q5, Q6]
initial: Q0
accepting: [Q6]
transitions:
  - { from: Q0, on: accessForm, to: Q1 }
  - { from: Q1, on: submitCredentials, to: Q2 }
  - { from: Q2, on: credentials, to: [Q3, Q4, Q5] }
  - { from: Q3, on: secondFactor, to: Q5 }
  - { from: Q3, on: timeout, to: Q4 }
  - { from: Q4, on: retryLogin, to: Q1 }
  - { from: Q5, on: accessResource, to: Q6 }
  - { from: Q5, on: logout, to: Q0 }
  - { from: Q6, on: logout, to: Q0 }
---
`

// seed writes docs as files so loam parses their frontmatter the same way it
// does for a real definitions directory.
func seed(t *testing.T, docs map[string]string) *Loader {
	t.Helper()
	tmpDir, repo := testutils.SetupTestRepo(t)
	testutils.WriteFiles(t, tmpDir, docs)
	return New(loam.NewTypedRepository[dto.DefinitionMetadata](repo))
}

func TestLoader_Contract(t *testing.T) {
	loader := seed(t, map[string]string{
		"auth-dfa.md": dfaDoc,
		"auth-nfa.md": nfaDoc,
	})
	ports.DefinitionLoaderContract(t, loader, catalog.DFA(), catalog.NFA())
}

func TestLoader_BodyBecomesDescription(t *testing.T) {
	loader := seed(t, map[string]string{"auth-dfa.md": dfaDoc})

	def, err := loader.Load(context.Background(), catalog.DFAName)
	require.NoError(t, err)
	assert.Equal(t, "Deterministic login flow.", def.Description)
	assert.Equal(t, "accessGranted", def.Label("Q5"))
	assert.Equal(t, catalog.DFA().Scenarios[catalog.DefaultScenario], def.Scenarios["login"])
}

func TestLoader_NameFromDocumentID(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)
	content := "---\nmode: dfa\nstates: [Q0]\ninitial: Q0\n---\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "tiny.md"), []byte(content), 0644))

	loader := New(loam.NewTypedRepository[dto.DefinitionMetadata](repo))
	names, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"tiny"}, names)

	def, err := loader.Load(context.Background(), "tiny")
	require.NoError(t, err)
	assert.Equal(t, domain.Deterministic, def.Mode)
}

func TestLoader_NameFromFrontmatter(t *testing.T) {
	loader := seed(t, map[string]string{"login.md": dfaDoc})

	names, err := loader.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{catalog.DFAName}, names)

	def, err := loader.Load(context.Background(), catalog.DFAName)
	require.NoError(t, err)
	assert.Equal(t, domain.Deterministic, def.Mode)
	assert.Len(t, def.Transitions, len(catalog.DFA().Transitions))

	_, err = loader.Load(context.Background(), "login")
	assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	loader := seed(t, map[string]string{
		"one.md": "---\nname: same\nmode: dfa\n---\n",
		"two.md": "---\nname: same\nmode: nfa\n---\n",
	})

	_, err := loader.List(context.Background())
	assert.ErrorContains(t, err, "collision detected")
}
