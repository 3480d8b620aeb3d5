package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/authflow/internal/logging"
	"github.com/aretw0/authflow/pkg/domain"
	"github.com/google/uuid"
)

// Driver replays a fixed input sequence against an Engine, one symbol per Tick.
//
// Lifecycle: NotStarted -> Running -> Completed, or Running -> Cancelled.
// No transition leaves Completed or Cancelled.
//
// A Driver has a single owner. It takes no locks: exactly one ticker may call
// Tick on a given instance. Callers sharing runs across goroutines or replicas
// serialize access through session.Manager.
type Driver struct {
	engine *Engine
	id     string
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	strict bool
	now    func() time.Time

	sequence   domain.InputSequence
	cursor     int
	current    domain.Configuration
	trajectory []domain.Configuration
	status     domain.RunStatus
	createdAt  time.Time
	updatedAt  time.Time
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithRunID sets the run identifier (default: a random UUID).
func WithRunID(id string) DriverOption {
	return func(d *Driver) {
		d.id = id
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) DriverOption {
	return func(d *Driver) {
		d.hooks = hooks
	}
}

// WithLogger sets a structured logger for tick tracing.
func WithLogger(logger *slog.Logger) DriverOption {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithStrictAlphabet makes Initialize reject symbols outside the automaton's alphabet.
// By default such symbols are accepted and simply match no rule.
func WithStrictAlphabet() DriverOption {
	return func(d *Driver) {
		d.strict = true
	}
}

// WithClock overrides the time source used for run timestamps.
func WithClock(now func() time.Time) DriverOption {
	return func(d *Driver) {
		d.now = now
	}
}

// NewDriver creates a driver in the NotStarted state.
func NewDriver(engine *Engine, opts ...DriverOption) *Driver {
	d := &Driver{
		engine: engine,
		logger: logging.NewNop(),
		now:    time.Now,
		status: domain.StatusNotStarted,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.id == "" {
		d.id = uuid.NewString()
	}
	d.createdAt = d.now()
	d.updatedAt = d.createdAt
	return d
}

// Restore rebuilds a driver from a persisted snapshot so the run can continue.
func Restore(engine *Engine, run *domain.Run, opts ...DriverOption) (*Driver, error) {
	if run == nil {
		return nil, fmt.Errorf("cannot restore nil run")
	}
	if run.Automaton != engine.Table().Name() {
		return nil, fmt.Errorf("run %s belongs to automaton %q, engine runs %q", run.ID, run.Automaton, engine.Table().Name())
	}
	if run.Mode != engine.Mode() {
		return nil, fmt.Errorf("run %s was recorded in %s mode, engine runs %s", run.ID, run.Mode, engine.Mode())
	}
	if run.Cursor < 0 || run.Cursor > len(run.Sequence) {
		return nil, fmt.Errorf("run %s has cursor %d outside sequence of length %d", run.ID, run.Cursor, len(run.Sequence))
	}
	if err := engine.CheckConfiguration(run.Configuration); err != nil {
		return nil, fmt.Errorf("run %s: %w", run.ID, err)
	}

	d := NewDriver(engine, append(opts, WithRunID(run.ID))...)
	d.sequence = slices.Clone(run.Sequence)
	d.cursor = run.Cursor
	d.current = run.Configuration
	d.trajectory = slices.Clone(run.Trajectory)
	d.status = run.Status
	if !run.CreatedAt.IsZero() {
		d.createdAt = run.CreatedAt
	}
	if !run.UpdatedAt.IsZero() {
		d.updatedAt = run.UpdatedAt
	}
	return d, nil
}

// ID returns the run identifier.
func (d *Driver) ID() string { return d.id }

// Engine returns the engine the driver feeds.
func (d *Driver) Engine() *Engine { return d.engine }

// Status returns the lifecycle position.
func (d *Driver) Status() domain.RunStatus { return d.status }

// Done reports whether the run reached a terminal status.
func (d *Driver) Done() bool { return d.status.Terminal() }

// Configuration returns the current configuration.
func (d *Driver) Configuration() domain.Configuration { return d.current }

// Cursor returns the index of the next symbol to consume.
func (d *Driver) Cursor() int { return d.cursor }

// Len returns the length of the input sequence.
func (d *Driver) Len() int { return len(d.sequence) }

// Sequence returns a copy of the input sequence.
func (d *Driver) Sequence() domain.InputSequence { return slices.Clone(d.sequence) }

// Consumed returns the prefix of the sequence already read.
func (d *Driver) Consumed() domain.InputSequence { return slices.Clone(d.sequence[:d.cursor]) }

// Remaining returns the symbols not read yet.
func (d *Driver) Remaining() domain.InputSequence { return slices.Clone(d.sequence[d.cursor:]) }

// Trajectory returns every configuration visited so far, starting with the initial one.
func (d *Driver) Trajectory() []domain.Configuration { return slices.Clone(d.trajectory) }

// Accepted reports whether the current configuration contains an accepting state.
func (d *Driver) Accepted() bool { return d.engine.Accepts(d.current) }

// Initialize loads the input sequence and the initial configuration and moves
// the run to Running. An empty sequence completes the run immediately.
func (d *Driver) Initialize(seq domain.InputSequence, initial domain.Configuration) error {
	return d.InitializeContext(context.Background(), seq, initial)
}

// Start initializes the run from the automaton's own initial state.
func (d *Driver) Start(seq domain.InputSequence) error {
	return d.Initialize(seq, d.engine.InitialConfiguration())
}

// InitializeContext is Initialize with a context passed to lifecycle hooks.
func (d *Driver) InitializeContext(ctx context.Context, seq domain.InputSequence, initial domain.Configuration) error {
	if d.status != domain.StatusNotStarted {
		return fmt.Errorf("run %s is %s: %w", d.id, d.status, domain.ErrAlreadyInitialized)
	}
	if err := d.engine.CheckConfiguration(initial); err != nil {
		return err
	}

	if d.strict {
		table := d.engine.Table()
		for i, sym := range seq {
			if !table.InAlphabet(sym) {
				return &domain.SymbolError{Index: i, Symbol: sym}
			}
		}
	}

	d.sequence = slices.Clone(seq)
	d.cursor = 0
	d.current = initial
	d.trajectory = []domain.Configuration{initial}
	d.status = domain.StatusRunning
	d.touch()

	d.logger.Debug("run started",
		"run_id", d.id,
		"automaton", d.engine.Table().Name(),
		"mode", d.engine.Mode(),
		"length", len(seq),
		"configuration", initial.String(),
	)
	if d.hooks.OnRunStart != nil {
		d.hooks.OnRunStart(ctx, d.event(domain.EventRunStart))
	}

	if len(d.sequence) == 0 {
		d.complete(ctx)
	}
	return nil
}

// Tick consumes the next symbol. It returns the new configuration and whether
// the sequence is exhausted. Once the run is complete, Tick is a no-op that
// keeps returning the last configuration and true. Before Initialize and after
// Cancel it is a no-op returning false.
func (d *Driver) Tick() (domain.Configuration, bool) {
	return d.TickContext(context.Background())
}

// TickContext is Tick with a context passed to lifecycle hooks.
func (d *Driver) TickContext(ctx context.Context) (domain.Configuration, bool) {
	switch d.status {
	case domain.StatusCompleted:
		return d.current, true
	case domain.StatusNotStarted, domain.StatusCancelled:
		return d.current, false
	}

	symbol := d.sequence[d.cursor]
	from := d.current
	d.current = d.engine.Step(from, symbol)
	d.cursor++
	d.trajectory = append(d.trajectory, d.current)
	d.touch()

	d.logger.Debug("tick",
		"run_id", d.id,
		"cursor", d.cursor,
		"symbol", symbol,
		"from", from.String(),
		"to", d.current.String(),
	)
	if d.current.IsEmpty() && !from.IsEmpty() {
		d.logger.Debug("automaton died: no state survives", "run_id", d.id, "symbol", symbol)
	}
	if d.hooks.OnTick != nil {
		d.hooks.OnTick(ctx, &domain.TickEvent{
			RunEvent: *d.event(domain.EventTick),
			Symbol:   symbol,
			From:     from,
		})
	}

	if d.cursor == len(d.sequence) {
		d.complete(ctx)
	}
	return d.current, d.status == domain.StatusCompleted
}

// Cancel stops a running simulation. The last configuration stays available
// for inspection and later ticks change nothing. It reports whether the run
// was actually cancelled (only Running runs can be).
func (d *Driver) Cancel() bool {
	return d.CancelContext(context.Background())
}

// CancelContext is Cancel with a context passed to lifecycle hooks.
func (d *Driver) CancelContext(ctx context.Context) bool {
	if d.status != domain.StatusRunning {
		return false
	}
	d.status = domain.StatusCancelled
	d.touch()

	d.logger.Debug("run cancelled", "run_id", d.id, "cursor", d.cursor)
	if d.hooks.OnRunCancel != nil {
		d.hooks.OnRunCancel(ctx, d.event(domain.EventRunCancel))
	}
	return true
}

// Snapshot returns the serializable state of the run.
func (d *Driver) Snapshot() *domain.Run {
	return &domain.Run{
		ID:            d.id,
		Automaton:     d.engine.Table().Name(),
		Mode:          d.engine.Mode(),
		Sequence:      slices.Clone(d.sequence),
		Cursor:        d.cursor,
		Configuration: d.current,
		Trajectory:    slices.Clone(d.trajectory),
		Status:        d.status,
		Accepted:      d.Accepted(),
		CreatedAt:     d.createdAt,
		UpdatedAt:     d.updatedAt,
	}
}

func (d *Driver) complete(ctx context.Context) {
	d.status = domain.StatusCompleted
	d.logger.Debug("run completed",
		"run_id", d.id,
		"configuration", d.current.String(),
		"accepted", d.Accepted(),
	)
	if d.hooks.OnRunComplete != nil {
		d.hooks.OnRunComplete(ctx, d.event(domain.EventRunComplete))
	}
}

func (d *Driver) touch() {
	d.updatedAt = d.now()
}

func (d *Driver) event(t domain.EventType) *domain.RunEvent {
	return &domain.RunEvent{
		Timestamp:     d.updatedAt,
		Type:          t,
		RunID:         d.id,
		Automaton:     d.engine.Table().Name(),
		Mode:          d.engine.Mode(),
		Cursor:        d.cursor,
		Configuration: d.current,
		Accepted:      d.Accepted(),
	}
}
