package authflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/aretw0/authflow/internal/dto"
	"github.com/aretw0/authflow/internal/runtime"
	"github.com/aretw0/authflow/pkg/adapters/memory"
	loamAdapter "github.com/aretw0/authflow/pkg/adapters/loam"
	"github.com/aretw0/authflow/pkg/catalog"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/aretw0/authflow/pkg/ports"
	"github.com/aretw0/authflow/pkg/session"
	"github.com/aretw0/loam"
)

// Engine is the high-level entry point for the authflow library.
// It resolves automata through a DefinitionLoader, compiles and caches their
// transition tables, and manages persisted runs through a session Manager.
type Engine struct {
	loader   ports.DefinitionLoader
	store    ports.RunStore
	locker   ports.DistributedLocker
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	strict   bool
	Name     string

	mu     sync.RWMutex
	tables map[string]*domain.Table
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom DefinitionLoader, bypassing the default Loam initialization.
func WithLoader(l ports.DefinitionLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithStore sets where runs are persisted (default: in memory).
func WithStore(s ports.RunStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithLocker enables distributed locking of runs across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

// WithLifecycleHooks registers observability hooks for every run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStrictAlphabet rejects input sequences containing symbols the automaton does not declare.
func WithStrictAlphabet() Option {
	return func(e *Engine) {
		e.strict = true
	}
}

// New initializes a new Engine.
// By default, it reads automata from a Loam repository at repoPath. With an
// empty repoPath and no WithLoader option, the built-in catalog is served.
func New(repoPath string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		tables: make(map[string]*domain.Table),
	}
	for _, opt := range opts {
		opt(eng)
	}

	switch {
	case eng.loader != nil:
		if repoPath != "" {
			eng.Name = filepath.Base(repoPath)
		}
	case repoPath == "":
		eng.loader = catalog.Loader()
		eng.Name = "catalog"
	default:
		absPath, err := filepath.Abs(repoPath)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)

		// Strict mode keeps numeric frontmatter consistent across formats;
		// read-only because the engine never modifies definitions.
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize loam: %w", err)
		}
		eng.loader = loamAdapter.New(loam.NewTypedRepository[dto.DefinitionMetadata](repo))
	}

	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("source", eng.Name)
	}
	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	sessionOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(eng.locker))
	}
	eng.sessions = session.NewManager(eng.store, sessionOpts...)

	return eng, nil
}

// Loader returns the underlying DefinitionLoader.
func (e *Engine) Loader() ports.DefinitionLoader {
	return e.loader
}

// Sessions returns the run manager.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// List returns the names of every available automaton.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.loader.List(ctx)
}

// Definition returns a copy of the named automaton definition, validated.
func (e *Engine) Definition(ctx context.Context, name string) (*domain.Definition, error) {
	table, err := e.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return table.Definition(), nil
}

// Table returns the compiled transition table of the named automaton.
// Tables are compiled once and cached until Invalidate is called.
func (e *Engine) Table(ctx context.Context, name string) (*domain.Table, error) {
	e.mu.RLock()
	table, ok := e.tables[name]
	e.mu.RUnlock()
	if ok {
		return table, nil
	}

	def, err := e.loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	table, err = def.Compile()
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.tables[name] = table
	e.mu.Unlock()
	return table, nil
}

// Invalidate drops cached tables. With no names, the whole cache is cleared.
func (e *Engine) Invalidate(names ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(names) == 0 {
		e.tables = make(map[string]*domain.Table)
		return
	}
	for _, name := range names {
		delete(e.tables, name)
	}
}

// Watch invalidates cached tables whenever the loader reports a change,
// until ctx is cancelled. It fails if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) error {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("current loader does not support watching")
	}
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for id := range events {
			e.logger.Info("definition changed, dropping compiled tables", "document", id)
			// A document's name may differ from its ID, so clear everything.
			e.Invalidate()
		}
	}()
	return nil
}

// NewDriver returns a fresh, not yet started driver for the named automaton,
// wired with the engine's hooks, logger and alphabet policy.
func (e *Engine) NewDriver(ctx context.Context, name string, opts ...runtime.DriverOption) (*runtime.Driver, error) {
	table, err := e.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return runtime.NewDriver(runtime.NewEngine(table), e.driverOptions(opts...)...), nil
}

func (e *Engine) driverOptions(extra ...runtime.DriverOption) []runtime.DriverOption {
	opts := []runtime.DriverOption{
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
	}
	if e.strict {
		opts = append(opts, runtime.WithStrictAlphabet())
	}
	return append(opts, extra...)
}

// RunRequest describes a run to start.
type RunRequest struct {
	// Automaton is the name of the automaton to simulate.
	Automaton string `json:"automaton"`
	// Sequence is the input to replay. When empty, Scenario is used instead.
	Sequence domain.InputSequence `json:"sequence,omitempty"`
	// Scenario names one of the automaton's predefined sequences.
	Scenario string `json:"scenario,omitempty"`
	// Initial overrides the initial configuration (default: the automaton's initial state).
	Initial []domain.StateID `json:"initial,omitempty"`
	// ID fixes the run identifier (default: a random UUID).
	ID string `json:"id,omitempty"`
}

// Prepare resolves a request into a started driver without persisting it.
func (e *Engine) Prepare(ctx context.Context, req RunRequest) (*runtime.Driver, error) {
	table, err := e.Table(ctx, req.Automaton)
	if err != nil {
		return nil, err
	}

	seq := req.Sequence
	if len(seq) == 0 && req.Scenario != "" {
		s, ok := table.Definition().Scenarios[req.Scenario]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no scenario %q", domain.ErrScenarioNotFound, req.Automaton, req.Scenario)
		}
		seq = s
	}

	engine := runtime.NewEngine(table)
	initial := engine.InitialConfiguration()
	if len(req.Initial) > 0 {
		initial = domain.NewConfiguration(req.Initial...)
	}

	var extra []runtime.DriverOption
	if req.ID != "" {
		extra = append(extra, runtime.WithRunID(req.ID))
	}
	driver := runtime.NewDriver(engine, e.driverOptions(extra...)...)
	if err := driver.InitializeContext(ctx, seq, initial); err != nil {
		return nil, err
	}
	return driver, nil
}

// Simulate replays a request to completion in memory and returns the final run.
// Nothing is persisted.
func (e *Engine) Simulate(ctx context.Context, req RunRequest) (*domain.Run, error) {
	driver, err := e.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	for !driver.Done() {
		if err := ctx.Err(); err != nil {
			driver.CancelContext(context.WithoutCancel(ctx))
			break
		}
		driver.TickContext(ctx)
	}
	return driver.Snapshot(), nil
}

// StartRun initializes a run and persists it. The run advances through TickRun.
func (e *Engine) StartRun(ctx context.Context, req RunRequest) (*domain.Run, error) {
	driver, err := e.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	run := driver.Snapshot()
	if err := e.sessions.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun loads a persisted run.
func (e *Engine) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return e.sessions.Load(ctx, id)
}

// ListRuns returns the IDs of every persisted run.
func (e *Engine) ListRuns(ctx context.Context) ([]string, error) {
	return e.sessions.List(ctx)
}

// DeleteRun removes a persisted run.
func (e *Engine) DeleteRun(ctx context.Context, id string) error {
	return e.sessions.Delete(ctx, id)
}

// RunChange holds the snapshots of a persisted run taken right before and
// right after one update, both read under the run's lock.
type RunChange struct {
	Before *domain.Run
	After  *domain.Run
}

// TickRun consumes the next symbol of a persisted run.
// The load-tick-save cycle holds the run's lock, so concurrent callers never
// skip or repeat a symbol. Ticking a finished run returns it unchanged.
func (e *Engine) TickRun(ctx context.Context, id string) (*domain.Run, error) {
	change, err := e.TickRunChange(ctx, id)
	return change.After, err
}

// TickRunChange is TickRun reporting the snapshot the tick started from as well.
func (e *Engine) TickRunChange(ctx context.Context, id string) (RunChange, error) {
	return e.updateRun(ctx, id, func(ctx context.Context, d *runtime.Driver) {
		d.TickContext(ctx)
	})
}

// CancelRun stops a persisted run. Cancelling a finished run returns it unchanged.
func (e *Engine) CancelRun(ctx context.Context, id string) (*domain.Run, error) {
	change, err := e.CancelRunChange(ctx, id)
	return change.After, err
}

// CancelRunChange is CancelRun reporting the snapshot before cancellation as well.
func (e *Engine) CancelRunChange(ctx context.Context, id string) (RunChange, error) {
	return e.updateRun(ctx, id, func(ctx context.Context, d *runtime.Driver) {
		d.CancelContext(ctx)
	})
}

func (e *Engine) updateRun(ctx context.Context, id string, fn func(context.Context, *runtime.Driver)) (RunChange, error) {
	var change RunChange
	after, err := e.sessions.Update(ctx, id, func(ctx context.Context, run *domain.Run) (*domain.Run, error) {
		driver, err := e.Restore(ctx, run)
		if err != nil {
			return nil, err
		}
		change.Before = run.Snapshot()
		fn(ctx, driver)
		return driver.Snapshot(), nil
	})
	if err != nil {
		return RunChange{}, err
	}
	change.After = after
	return change, nil
}

// Restore rebuilds a driver for a persisted run.
func (e *Engine) Restore(ctx context.Context, run *domain.Run) (*runtime.Driver, error) {
	table, err := e.Table(ctx, run.Automaton)
	if err != nil {
		if errors.Is(err, domain.ErrAutomatonNotFound) {
			return nil, fmt.Errorf("run %s: %w", run.ID, err)
		}
		return nil, err
	}
	return runtime.Restore(runtime.NewEngine(table), run, e.driverOptions()...)
}
