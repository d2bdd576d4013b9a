package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/teammesh/artifact"
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/logging"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/supervisor"
)

// DefaultSupervisorName is the node name of the supervisor when none is set.
const DefaultSupervisorName = "supervisor"

// Config defines the budgets of an orchestrator.
type Config struct {
	// RunBudget is the maximum number of actor dispatches per run.
	RunBudget int
	// StepBudget bounds the internal iterations of one actor invocation. It
	// must be smaller than RunBudget so a single actor cannot consume a
	// whole run; a single-dispatch run (RunBudget 1) allows StepBudget 1.
	StepBudget int
}

// DefaultConfig mirrors the recursion limits of the editorial board: 35
// dispatches per run and 10 internal steps per actor.
var DefaultConfig = Config{
	RunBudget:  35,
	StepBudget: 10,
}

// Validate reports budget combinations an Engine refuses.
func (c Config) Validate() error {
	if c.RunBudget < 1 {
		return fmt.Errorf("run budget must be positive, got %d", c.RunBudget)
	}
	if c.StepBudget < 1 {
		return fmt.Errorf("step budget must be positive, got %d", c.StepBudget)
	}
	if c.StepBudget >= c.RunBudget && !(c.RunBudget == 1 && c.StepBudget == 1) {
		return fmt.Errorf("step budget %d must be smaller than run budget %d", c.StepBudget, c.RunBudget)
	}
	return nil
}

// Options configures an Engine.
type Options struct {
	// Config holds the run and step budgets. Defaults to DefaultConfig.
	Config Config

	// SupervisorName names the supervisor node in traces and graphs.
	SupervisorName string

	// Description is reported when the engine is used as an actor.
	Description string

	// Retry bounds retries of a failing decision engine.
	Retry supervisor.RetryPolicy

	// Observer receives run events. Defaults to observe.NoOp.
	Observer observe.Observer

	// ArtifactStore is used by Respond for top-level runs. Defaults to an
	// in-memory store.
	ArtifactStore core.ArtifactStore

	// Logger receives structured logs. Defaults to logging.NoOpLogger.
	Logger logging.Logger
}

// Engine is one orchestrator: a supervisor routing over a fixed registry.
// An Engine is immutable after construction and safe for concurrent runs.
type Engine struct {
	name          string
	description   string
	supervisor    *supervisor.Supervisor
	actors        map[string]core.Actor
	order         []string
	config        Config
	observer      observe.Observer
	artifactStore core.ArtifactStore
	logger        logging.Logger
}

// New creates an orchestrator named name whose supervisor consults decider
// and routes over actors.
//
// The registry is validated: it must be non-empty, names must be unique and
// non-empty, and no actor may be named like the terminal marker or the
// supervisor node. The supervisor's vocabulary is exactly the registry names
// plus core.Terminal.
func New(name string, decider supervisor.DecisionEngine, actors []core.Actor, optFns ...func(o *Options)) (*Engine, error) {
	opts := Options{
		Config:         DefaultConfig,
		SupervisorName: DefaultSupervisorName,
		Retry:          supervisor.DefaultRetryPolicy,
		Observer:       observe.NoOp{},
		Logger:         logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, fmt.Errorf("%w: orchestrator name is required", core.ErrInvalidRegistry)
	}
	if decider == nil {
		return nil, fmt.Errorf("%w: %s: decision engine is required", core.ErrInvalidRegistry, name)
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	registry, order, err := buildRegistry(actors, opts.SupervisorName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if opts.Observer == nil {
		opts.Observer = observe.NoOp{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.ArtifactStore == nil {
		opts.ArtifactStore = artifact.NewInMemoryStore()
	}
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("Team %s", name)
	}

	return &Engine{
		name:        name,
		description: opts.Description,
		supervisor: supervisor.New(opts.SupervisorName, decider, supervisor.NewVocabulary(order...), func(o *supervisor.Options) {
			o.Retry = opts.Retry
		}),
		actors:        registry,
		order:         order,
		config:        opts.Config,
		observer:      opts.Observer,
		artifactStore: opts.ArtifactStore,
		logger:        opts.Logger,
	}, nil
}

func buildRegistry(actors []core.Actor, supervisorName string) (map[string]core.Actor, []string, error) {
	if len(actors) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one actor is required", core.ErrInvalidRegistry)
	}

	registry := make(map[string]core.Actor, len(actors))
	order := make([]string, 0, len(actors))

	for _, a := range actors {
		if a == nil {
			return nil, nil, fmt.Errorf("%w: nil actor", core.ErrInvalidRegistry)
		}

		name := a.Name()
		switch {
		case name == "":
			return nil, nil, fmt.Errorf("%w: actor name is required", core.ErrInvalidRegistry)
		case name == core.Terminal:
			return nil, nil, fmt.Errorf("%w: %q is the terminal marker", core.ErrInvalidRegistry, name)
		case name == supervisorName:
			return nil, nil, fmt.Errorf("%w: %q is the supervisor name", core.ErrInvalidRegistry, name)
		}

		if _, dup := registry[name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate actor %q", core.ErrInvalidRegistry, name)
		}

		registry[name] = a
		order = append(order, name)
	}

	return registry, order, nil
}

// Name returns the orchestrator name.
func (e *Engine) Name() string { return e.name }

// Description returns the orchestrator description.
func (e *Engine) Description() string { return e.description }

// Config returns the orchestrator budgets.
func (e *Engine) Config() Config { return e.config }

// Actors returns the registered actor names in registration order.
func (e *Engine) Actors() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Actor looks up a registered actor by name.
func (e *Engine) Actor(name string) (core.Actor, bool) {
	a, ok := e.actors[name]
	return a, ok
}

// Respond runs the orchestrator on a fresh state seeded with query. A
// runBudget below 1 uses the configured run budget.
func (e *Engine) Respond(ctx context.Context, query string, runBudget int) (*Result, error) {
	runCtx := core.NewRunContext(ctx, "", e.name, e.artifactStore, e.logger)

	seed := core.NewUserMessage(query)
	seed.RunID = runCtx.RunID

	return e.run(runCtx, core.SeedState(seed), runBudget)
}

// Run drives state to termination within the configured run budget. The
// caller owns runCtx; nested orchestrators receive a RunContext derived with
// core.RunContext.Nested.
//
// Run only returns an error when the context is cancelled; the Result then
// holds everything that happened up to that point.
func (e *Engine) Run(runCtx *core.RunContext, state *core.State) (*Result, error) {
	return e.run(runCtx, state, e.config.RunBudget)
}

func (e *Engine) run(runCtx *core.RunContext, state *core.State, runBudget int) (*Result, error) {
	if runBudget < 1 {
		runBudget = e.config.RunBudget
	}

	start := time.Now()
	budget := core.NewBudget(runBudget)
	res := &Result{State: state}

	info := observe.RunInfo{
		RunID:        runCtx.RunID,
		Orchestrator: e.name,
		Path:         runCtx.Path,
		Depth:        runCtx.Depth,
	}

	runCtx = runCtx.WithContext(e.runStarted(runCtx.Context, info))

	runCtx.LogInfo("run.started",
		"orchestrator", e.name,
		"run", runCtx.RunID,
		"path", runCtx.Path,
		"run_budget", runBudget,
	)

	var runErr error

	for {
		if err := runCtx.Err(); err != nil {
			res.Reason, runErr = TerminatedCancelled, err
			break
		}

		// One unit per iteration; every iteration but the last ends in a
		// dispatch, so Steps never exceeds runBudget.
		if err := budget.Consume(); err != nil {
			state.Next = core.Terminal
			res.Reason = TerminatedByBudget
			res.Trace = append(res.Trace, core.Terminal)
			runCtx.LogWarn("run.budget.exhausted",
				"orchestrator", e.name,
				"run_budget", runBudget,
				"error", err.Error(),
			)
			break
		}

		res.Trace = append(res.Trace, e.supervisor.Name())

		d, err := e.supervisor.Decide(runCtx, state)
		if err != nil {
			res.Reason, runErr = TerminatedCancelled, err
			break
		}
		res.Decisions = append(res.Decisions, d)
		e.decided(runCtx.Context, info, d)

		if d.Next == core.Terminal {
			res.Reason = terminationOf(d)
			res.Trace = append(res.Trace, core.Terminal)
			break
		}

		actor, ok := e.actors[d.Next]
		if !ok {
			// Unreachable while the vocabulary equals the registry keys.
			state.Next = core.Terminal
			res.Reason = TerminatedUnparseable
			res.Trace = append(res.Trace, core.Terminal)
			runCtx.LogError("run.unknown.actor", "orchestrator", e.name, "actor", d.Next,
				"error", core.ErrUnknownActor.Error())
			break
		}

		res.Steps++
		res.Trace = append(res.Trace, actor.Name())

		e.dispatch(runCtx, info, actor, state, res.Steps)
	}

	res.Duration = time.Since(start)
	e.finish(runCtx, info, res, runErr)

	return res, runErr
}

// dispatch runs one actor through the safe execution wrapper.
func (e *Engine) dispatch(runCtx *core.RunContext, info observe.RunInfo, actor core.Actor, state *core.State, step int) {
	stepInfo := observe.StepInfo{
		Run:   info,
		Actor: actor.Name(),
		Kind:  actor.Kind(),
		Step:  step,
	}

	stepCtx := e.stepStarted(runCtx.Context, stepInfo)

	out := RunSafe(runCtx.WithContext(stepCtx), actor, state, e.config.StepBudget)

	var err error
	if out.Failure != nil {
		err = out.Failure
	}

	if sl, ok := runCtx.Logger().(*logging.StructuredLogger); ok {
		sl.LogStep(actor.Name(), step, out.Duration, err)
	} else if err != nil {
		runCtx.LogWarn("actor.step.failed", "actor", actor.Name(), "step", step, "error", err.Error())
	} else {
		runCtx.LogInfo("actor.step.completed", "actor", actor.Name(), "step", step)
	}

	e.stepFinished(stepCtx, stepInfo, observe.StepResult{
		Output:   out.Message,
		Err:      err,
		Duration: out.Duration,
	})
}

func (e *Engine) finish(runCtx *core.RunContext, info observe.RunInfo, res *Result, runErr error) {
	if sl, ok := runCtx.Logger().(*logging.StructuredLogger); ok {
		sl.LogRun(e.name, string(res.Reason), res.Steps, res.Duration, runErr)
	} else {
		args := []any{
			"orchestrator", e.name,
			"termination", string(res.Reason),
			"steps", res.Steps,
			"duration", res.Duration,
		}
		if runErr != nil {
			runCtx.LogError("run.failed", append(args, "error", runErr.Error())...)
		} else {
			runCtx.LogInfo("run.completed", args...)
		}
	}

	e.runFinished(runCtx.Context, info, observe.RunSummary{
		Termination: string(res.Reason),
		Steps:       res.Steps,
		Trace:       res.Trace,
		Err:         runErr,
		Duration:    res.Duration,
	})
}

// IsCancelled reports whether err ended a run through context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
