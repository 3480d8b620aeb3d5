package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/authflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandler_NDJSON(t *testing.T) {
	var buf bytes.Buffer
	h := NewJSONHandler(&buf)
	ctx := context.Background()

	run := &domain.Run{
		ID:            "r1",
		Automaton:     "auth-dfa",
		Mode:          domain.Deterministic,
		Sequence:      domain.InputSequence{"accessForm"},
		Configuration: domain.NewConfiguration("Q0"),
		Status:        domain.StatusRunning,
	}
	require.NoError(t, h.Start(ctx, run))
	require.NoError(t, h.Frame(ctx, Frame{
		Step: 1, Total: 1, Symbol: "accessForm",
		From: domain.NewConfiguration("Q0"), To: domain.NewConfiguration("Q1"),
	}))
	run.Status = domain.StatusCompleted
	run.Cursor = 1
	run.Configuration = domain.NewConfiguration("Q1")
	require.NoError(t, h.Finish(ctx, run))

	var events []Event
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e), scanner.Text())
		events = append(events, e)
	}
	require.Len(t, events, 3)

	assert.Equal(t, "start", events[0].Type)
	assert.Equal(t, "r1", events[0].Run.ID)

	assert.Equal(t, "tick", events[1].Type)
	assert.Equal(t, domain.Symbol("accessForm"), events[1].Frame.Symbol)
	assert.True(t, domain.NewConfiguration("Q1").Equal(events[1].Frame.To))

	assert.Equal(t, "finish", events[2].Type)
	assert.Equal(t, "rejected", events[2].Outcome)
}
