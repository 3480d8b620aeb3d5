package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/authflow/internal/runtime"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/dsl"
	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trajectoryOf(t *testing.T, d *runtime.Driver) []string {
	t.Helper()
	var out []string
	for _, c := range d.Trajectory() {
		out = append(out, c.String())
	}
	return out
}

func runToEnd(t *testing.T, d *runtime.Driver) int {
	t.Helper()
	ticks := 0
	for !d.Done() {
		_, _ = d.Tick()
		ticks++
		require.LessOrEqual(t, ticks, d.Len(), "driver must stop after consuming the sequence")
	}
	return ticks
}

func TestDriver_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		def      *domain.Definition
		sequence domain.InputSequence
		want     []string
		accepted bool
	}{
		{
			name:     "dfa login",
			def:      catalog.DFA(),
			sequence: domain.InputSequence{"accessForm", "submitCredentials", "validCredentials", "accessResource"},
			want:     []string{"{Q0}", "{Q1}", "{Q2}", "{Q4}", "{Q5}"},
			accepted: true,
		},
		{
			name:     "dfa login retry",
			def:      catalog.DFA(),
			sequence: domain.InputSequence{"accessForm", "submitCredentials", "invalidCredentials", "retryLogin"},
			want:     []string{"{Q0}", "{Q1}", "{Q2}", "{Q3}", "{Q1}"},
		},
		{
			name:     "nfa second factor",
			def:      catalog.NFA(),
			sequence: domain.InputSequence{"accessForm", "submitCredentials", "credentials", "secondFactor", "accessResource"},
			want:     []string{"{Q0}", "{Q1}", "{Q2}", "{Q3,Q4,Q5}", "{Q5}", "{Q6}"},
			accepted: true,
		},
		{
			name:     "nfa timeout then retry",
			def:      catalog.NFA(),
			sequence: domain.InputSequence{"accessForm", "submitCredentials", "credentials", "timeout", "retryLogin"},
			want:     []string{"{Q0}", "{Q1}", "{Q2}", "{Q3,Q4,Q5}", "{Q4}", "{Q1}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := runtime.NewDriver(compile(t, tt.def), runtime.WithLogger(slogt.New(t)))
			require.NoError(t, d.Start(tt.sequence))

			ticks := runToEnd(t, d)
			assert.Equal(t, len(tt.sequence), ticks, "completes after exactly len(sequence) ticks")
			assert.Equal(t, tt.want, trajectoryOf(t, d))
			assert.Equal(t, domain.StatusCompleted, d.Status())
			assert.Equal(t, tt.accepted, d.Accepted())
			assert.Equal(t, len(tt.sequence), d.Cursor())
			assert.Empty(t, d.Remaining())
		})
	}
}

func TestDriver_TickReportsCompletionOnLastSymbol(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm", "submitCredentials"}))

	c, done := d.Tick()
	assert.False(t, done)
	assert.Equal(t, "{Q1}", c.String())

	c, done = d.Tick()
	assert.True(t, done)
	assert.Equal(t, "{Q2}", c.String())
}

func TestDriver_IdempotentAfterCompletion(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm"}))
	_, _ = d.Tick()

	for i := 0; i < 3; i++ {
		c, done := d.Tick()
		assert.True(t, done)
		assert.Equal(t, "{Q1}", c.String())
		assert.Equal(t, 1, d.Cursor(), "cursor never passes the end")
	}
	assert.Len(t, d.Trajectory(), 2)
}

func TestDriver_EmptySequenceCompletesImmediately(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.NFA()))
	initial := domain.NewConfiguration("Q2")
	require.NoError(t, d.Initialize(nil, initial))

	assert.True(t, d.Done())
	assert.Equal(t, domain.StatusCompleted, d.Status())
	assert.True(t, d.Configuration().Equal(initial))

	c, done := d.Tick()
	assert.True(t, done)
	assert.True(t, c.Equal(initial))
}

func TestDriver_RejectsInvalidInitialConfiguration(t *testing.T) {
	seq := domain.InputSequence{"accessForm", "submitCredentials"}

	d := runtime.NewDriver(compile(t, catalog.DFA()))
	assert.ErrorIs(t, d.Initialize(seq, domain.Configuration{}), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, d.Initialize(seq, domain.NewConfiguration("Q0", "Q2")), domain.ErrInvalidConfiguration)
	assert.ErrorIs(t, d.Initialize(seq, domain.NewConfiguration("Q7")), domain.ErrUnknownState)
	assert.Equal(t, domain.StatusNotStarted, d.Status(), "a rejected initialize leaves the run untouched")

	require.NoError(t, d.Initialize(seq, domain.NewConfiguration("Q0")))
	runToEnd(t, d)
	assert.Equal(t, "{Q2}", d.Configuration().String())

	nfa := runtime.NewDriver(compile(t, catalog.NFA()))
	require.NoError(t, nfa.Initialize(seq, domain.Configuration{}))
	runToEnd(t, nfa)
	assert.True(t, nfa.Configuration().IsEmpty(), "a dead NFA stays dead")
}

func TestDriver_Determinism(t *testing.T) {
	engine := compile(t, catalog.NFA())
	seq := catalog.NFA().Scenarios[catalog.DefaultScenario]

	replay := func() []string {
		d := runtime.NewDriver(engine)
		require.NoError(t, d.Start(seq))
		runToEnd(t, d)
		return trajectoryOf(t, d)
	}

	first := replay()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, replay())
	}

	var fromEngine []string
	for _, c := range engine.Replay(seq) {
		fromEngine = append(fromEngine, c.String())
	}
	assert.Equal(t, first, fromEngine, "driver and Replay agree")
}

func TestDriver_BeforeInitialize(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))

	c, done := d.Tick()
	assert.False(t, done)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, domain.StatusNotStarted, d.Status())
	assert.False(t, d.Cancel(), "nothing to cancel yet")
}

func TestDriver_InitializeTwice(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm"}))

	err := d.Start(domain.InputSequence{"logout"})
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
	assert.Equal(t, domain.InputSequence{"accessForm"}, d.Sequence())
}

func TestDriver_Cancel(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm", "submitCredentials", "validCredentials"}))
	_, _ = d.Tick()

	assert.True(t, d.Cancel())
	assert.Equal(t, domain.StatusCancelled, d.Status())
	assert.True(t, d.Done())

	c, done := d.Tick()
	assert.False(t, done, "a cancelled run never completes")
	assert.Equal(t, "{Q1}", c.String(), "last configuration stays observable")
	assert.Equal(t, 1, d.Cursor())
	assert.Equal(t, domain.InputSequence{"accessForm"}, d.Consumed())

	assert.False(t, d.Cancel(), "cancel is not repeated")
}

func TestDriver_CancelAfterCompletionIsNoop(t *testing.T) {
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(nil))

	assert.False(t, d.Cancel())
	assert.Equal(t, domain.StatusCompleted, d.Status())
}

func TestDriver_NondeterministicDeath(t *testing.T) {
	b := dsl.New("dead-end", domain.Nondeterministic)
	b.Add("Q0").Initial().On("a", "Q1")
	b.Add("Q1").Accepting()
	table, err := b.Compile()
	require.NoError(t, err)

	d := runtime.NewDriver(runtime.NewEngine(table))
	require.NoError(t, d.Start(domain.InputSequence{"a", "b", "a"}))
	runToEnd(t, d)

	assert.Equal(t, []string{"{Q0}", "{Q1}", "{}", "{}"}, trajectoryOf(t, d))
	assert.Equal(t, domain.StatusCompleted, d.Status(), "an empty configuration is a valid outcome, not an error")
	assert.False(t, d.Accepted())
}

func TestDriver_OutOfAlphabetSymbols(t *testing.T) {
	seq := domain.InputSequence{"accessForm", "teleport", "submitCredentials"}

	t.Run("lenient by default", func(t *testing.T) {
		d := runtime.NewDriver(compile(t, catalog.DFA()))
		require.NoError(t, d.Start(seq))
		runToEnd(t, d)
		assert.Equal(t, []string{"{Q0}", "{Q1}", "{Q1}", "{Q2}"}, trajectoryOf(t, d))
	})

	t.Run("strict rejects", func(t *testing.T) {
		d := runtime.NewDriver(compile(t, catalog.DFA()), runtime.WithStrictAlphabet())
		err := d.Start(seq)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSymbolNotInAlphabet)

		var symErr *domain.SymbolError
		require.True(t, errors.As(err, &symErr))
		assert.Equal(t, 1, symErr.Index)
		assert.Equal(t, domain.Symbol("teleport"), symErr.Symbol)
		assert.Equal(t, domain.StatusNotStarted, d.Status(), "a rejected sequence leaves the driver untouched")
	})
}

func TestDriver_LifecycleHooks(t *testing.T) {
	var events []domain.EventType
	var symbols []domain.Symbol

	hooks := domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			events = append(events, e.Type)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			events = append(events, e.Type)
			symbols = append(symbols, e.Symbol)
		},
		OnRunComplete: func(ctx context.Context, e *domain.RunEvent) {
			events = append(events, e.Type)
			assert.Equal(t, 2, e.Cursor)
			assert.Equal(t, "run-42", e.RunID)
		},
		OnRunCancel: func(ctx context.Context, e *domain.RunEvent) {
			t.Error("completed runs are never cancelled")
		},
	}

	d := runtime.NewDriver(compile(t, catalog.NFA()), runtime.WithLifecycleHooks(hooks), runtime.WithRunID("run-42"))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm", "submitCredentials"}))
	runToEnd(t, d)
	_, _ = d.Tick()

	assert.Equal(t, []domain.EventType{
		domain.EventRunStart, domain.EventTick, domain.EventTick, domain.EventRunComplete,
	}, events)
	assert.Equal(t, []domain.Symbol{"accessForm", "submitCredentials"}, symbols)
}

func TestDriver_SnapshotAndRestore(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	engine := compile(t, catalog.NFA())
	seq := catalog.NFA().Scenarios[catalog.DefaultScenario]

	d := runtime.NewDriver(engine, runtime.WithClock(func() time.Time { return clock }))
	require.NoError(t, d.Start(seq))
	_, _ = d.Tick()
	_, _ = d.Tick()
	_, _ = d.Tick()

	snap := d.Snapshot()
	assert.Equal(t, d.ID(), snap.ID)
	assert.Equal(t, catalog.NFAName, snap.Automaton)
	assert.Equal(t, 3, snap.Cursor)
	assert.Equal(t, "{Q3,Q4,Q5}", snap.Configuration.String())
	assert.Equal(t, domain.StatusRunning, snap.Status)
	assert.Equal(t, clock, snap.UpdatedAt)

	restored, err := runtime.Restore(engine, snap)
	require.NoError(t, err)
	runToEnd(t, restored)

	assert.Equal(t, d.ID(), restored.ID())
	assert.Equal(t, "{Q6}", restored.Configuration().String())
	assert.Equal(t, []string{"{Q0}", "{Q1}", "{Q2}", "{Q3,Q4,Q5}", "{Q5}", "{Q6}"}, trajectoryOf(t, restored))
	assert.True(t, restored.Accepted())
	assert.Equal(t, 3, d.Cursor(), "restoring does not advance the original")
}

func TestRestore_Mismatch(t *testing.T) {
	nfa := compile(t, catalog.NFA())
	d := runtime.NewDriver(compile(t, catalog.DFA()))
	require.NoError(t, d.Start(domain.InputSequence{"accessForm"}))

	_, err := runtime.Restore(nfa, d.Snapshot())
	assert.ErrorContains(t, err, "belongs to automaton")

	snap := d.Snapshot()
	snap.Cursor = 7
	_, err = runtime.Restore(compile(t, catalog.DFA()), snap)
	assert.ErrorContains(t, err, "outside sequence")

	_, err = runtime.Restore(nfa, nil)
	assert.Error(t, err)

	snap = d.Snapshot()
	snap.Configuration = domain.NewConfiguration("Q1", "Q3")
	_, err = runtime.Restore(compile(t, catalog.DFA()), snap)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)

	snap.Configuration = domain.NewConfiguration("Q99")
	_, err = runtime.Restore(compile(t, catalog.DFA()), snap)
	assert.ErrorIs(t, err, domain.ErrUnknownState)
}
