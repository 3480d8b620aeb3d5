package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	seq := InputSequence{"credentials", "secondFactor"}

	t.Run("Initial Load (Old is Nil)", func(t *testing.T) {
		newRun := &Run{
			ID:            "run-1",
			Sequence:      seq,
			Configuration: NewConfiguration("Q2"),
			Status:        StatusRunning,
		}

		diff := Diff(nil, newRun)
		require.NotNil(t, diff)
		assert.Equal(t, "run-1", diff.RunID)
		require.NotNil(t, diff.Cursor)
		assert.Equal(t, 0, *diff.Cursor)
		assert.Empty(t, diff.Consumed)
		assert.Equal(t, []StateID{"Q2"}, diff.Entered)
		require.NotNil(t, diff.Status)
		assert.Equal(t, StatusRunning, *diff.Status)
	})

	t.Run("No Changes", func(t *testing.T) {
		run := &Run{ID: "run-1", Sequence: seq, Configuration: NewConfiguration("Q2"), Status: StatusRunning}
		assert.Nil(t, Diff(run, run.Snapshot()))
	})

	t.Run("Fan Out", func(t *testing.T) {
		oldRun := &Run{ID: "run-1", Sequence: seq, Configuration: NewConfiguration("Q2"), Status: StatusRunning}
		newRun := oldRun.Snapshot()
		newRun.Cursor = 1
		newRun.Configuration = NewConfiguration("Q5", "Q3", "Q4")

		diff := Diff(oldRun, newRun)
		require.NotNil(t, diff)
		assert.Equal(t, InputSequence{"credentials"}, diff.Consumed)
		assert.Equal(t, []StateID{"Q3", "Q4", "Q5"}, diff.Entered)
		assert.Equal(t, []StateID{"Q2"}, diff.Left)
		assert.Nil(t, diff.Status, "status did not change")
	})

	t.Run("Completion", func(t *testing.T) {
		oldRun := &Run{ID: "run-1", Sequence: seq, Cursor: 1, Configuration: NewConfiguration("Q3", "Q4", "Q5"), Status: StatusRunning}
		newRun := oldRun.Snapshot()
		newRun.Cursor = 2
		newRun.Configuration = NewConfiguration("Q5")
		newRun.Status = StatusCompleted
		newRun.Accepted = true

		diff := Diff(oldRun, newRun)
		require.NotNil(t, diff)
		assert.Equal(t, InputSequence{"secondFactor"}, diff.Consumed)
		assert.Empty(t, diff.Entered)
		assert.Equal(t, []StateID{"Q3", "Q4"}, diff.Left)
		require.NotNil(t, diff.Status)
		assert.Equal(t, StatusCompleted, *diff.Status)
		require.NotNil(t, diff.Accepted)
		assert.True(t, *diff.Accepted)
	})
}

func TestDiff_JSONOmitsUnchanged(t *testing.T) {
	oldRun := &Run{ID: "run-1", Sequence: InputSequence{"a"}, Configuration: NewConfiguration("Q0"), Status: StatusRunning}
	newRun := oldRun.Snapshot()
	newRun.Status = StatusCancelled

	data, err := json.Marshal(Diff(oldRun, newRun))
	require.NoError(t, err)
	assert.JSONEq(t, `{"run_id":"run-1","status":"cancelled"}`, string(data))
}
