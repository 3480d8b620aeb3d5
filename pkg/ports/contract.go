package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractRun(id string) *domain.Run {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Run{
		ID:            id,
		Automaton:     "auth-nfa",
		Mode:          domain.Nondeterministic,
		Sequence:      domain.InputSequence{"accessForm", "submitCredentials", "credentials"},
		Cursor:        3,
		Configuration: domain.NewConfiguration("Q5", "Q3", "Q4"),
		Trajectory: []domain.Configuration{
			domain.NewConfiguration("Q0"),
			domain.NewConfiguration("Q1"),
			domain.NewConfiguration("Q2"),
			domain.NewConfiguration("Q3", "Q4", "Q5"),
		},
		Status:    domain.StatusCompleted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	t.Helper()
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		run := contractRun(runID)

		err := store.Save(ctx, run)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, run.Automaton, loaded.Automaton)
		assert.Equal(t, run.Mode, loaded.Mode)
		assert.Equal(t, run.Sequence, loaded.Sequence)
		assert.Equal(t, run.Cursor, loaded.Cursor)
		assert.Equal(t, run.Status, loaded.Status)
		assert.True(t, run.Configuration.Equal(loaded.Configuration), "configuration %s != %s", run.Configuration, loaded.Configuration)
		require.Len(t, loaded.Trajectory, len(run.Trajectory))
		for i := range run.Trajectory {
			assert.True(t, run.Trajectory[i].Equal(loaded.Trajectory[i]))
		}
		assert.True(t, run.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		run := contractRun(runID)
		run.Status = domain.StatusCancelled
		require.NoError(t, store.Save(ctx, run))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, loaded.Status)
	})

	t.Run("Loaded Run Is Detached", func(t *testing.T) {
		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		loaded.Sequence[0] = "mutated"

		again, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.Symbol("accessForm"), again.Sequence[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractRun(runID)))

		err := store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, contractRun(id1)))
		require.NoError(t, store.Save(ctx, contractRun(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

// DefinitionLoaderContract verifies that a DefinitionLoader serves exactly the
// given automata and reports unknown names with domain.ErrAutomatonNotFound.
func DefinitionLoaderContract(t *testing.T, loader DefinitionLoader, want ...*domain.Definition) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load", func(t *testing.T) {
		for _, def := range want {
			got, err := loader.Load(ctx, def.Name)
			require.NoError(t, err, def.Name)
			assert.Equal(t, def.Mode, got.Mode)
			assert.Equal(t, def.Initial, got.Initial)
			assert.ElementsMatch(t, def.States, got.States)
			assert.ElementsMatch(t, def.Accepting, got.Accepting)
			assert.Len(t, got.Transitions, len(def.Transitions))
			assert.NoError(t, got.Validate())
		}
	})

	t.Run("Load Not Found", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-automaton")
		assert.ErrorIs(t, err, domain.ErrAutomatonNotFound)
	})

	t.Run("List", func(t *testing.T) {
		names, err := loader.List(ctx)
		require.NoError(t, err)

		var expected []string
		for _, def := range want {
			expected = append(expected, def.Name)
		}
		assert.ElementsMatch(t, expected, names)
	})
}
