package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	tmpDir := t.TempDir()

	absPath, err := filepath.Abs(tmpDir)
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// WriteFiles writes each name/content pair under dir, creating parent
// directories as needed. It is used to lay out definition directories
// without going through a repository.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "write %s", name)
	}
}

// AuthDFADocument is a Markdown definition of the deterministic login flow,
// equivalent to the built-in catalog automaton.
const AuthDFADocument = `---
name: auth-dfa
mode: dfa
description: Deterministic login flow.
alphabet: [accessForm, submitCredentials, validCredentials, invalidCredentials, retryLogin, accessResource, logout]
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
`
