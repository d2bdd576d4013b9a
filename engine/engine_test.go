package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/testutil"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/supervisor"
)

var fastRetry = supervisor.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func newEngine(t *testing.T, decider supervisor.DecisionEngine, actors []core.Actor, optFns ...func(o *Options)) *Engine {
	t.Helper()
	optFns = append([]func(o *Options){func(o *Options) { o.Retry = fastRetry }}, optFns...)
	e, err := New("team", decider, actors, optFns...)
	require.NoError(t, err)
	return e
}

func origins(msgs []core.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Origin
	}
	return out
}

func TestEngine_RoutesUntilTerminal(t *testing.T) {
	decider := testutil.NewScriptedDecider("A", "B", "END")
	a, b := testutil.NewEchoActor("A"), testutil.NewEchoActor("B")

	e := newEngine(t, decider, []core.Actor{a, b})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "A", "supervisor", "B", "supervisor", "END"}, res.Trace)
	assert.Equal(t, TerminatedBySupervisor, res.Reason)
	assert.Equal(t, 2, res.Steps)
	assert.Equal(t, core.Terminal, res.State.Next)

	msgs := res.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{core.OriginUser, "A", "B"}, origins(msgs))
	assert.Equal(t, "query", msgs[0].Text())
	assert.Equal(t, "A done", msgs[1].Text())
	assert.Equal(t, "B done", msgs[2].Text())

	for _, m := range msgs {
		assert.Equal(t, msgs[0].RunID, m.RunID)
	}
	assert.NotEmpty(t, msgs[0].RunID)
}

func TestEngine_SupervisorSeesWholeLog(t *testing.T) {
	decider := testutil.NewScriptedDecider("A", "A", "END")
	e := newEngine(t, decider, []core.Actor{testutil.NewEchoActor("A")})

	_, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	histories := decider.Histories()
	require.Len(t, histories, 3)
	assert.Len(t, histories[0], 1)
	assert.Len(t, histories[1], 2)
	assert.Len(t, histories[2], 3)
}

func TestEngine_BudgetForcesTerminal(t *testing.T) {
	decider := testutil.Always("A")
	a := testutil.NewEchoActor("A")

	e := newEngine(t, decider, []core.Actor{a})

	res, err := e.Respond(context.Background(), "query", 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "A", "END"}, res.Trace)
	assert.Equal(t, TerminatedByBudget, res.Reason)
	assert.Equal(t, 1, res.Steps)
	assert.Equal(t, 1, decider.Calls())
	assert.Equal(t, core.Terminal, res.State.Next)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[1].Origin)
}

func TestEngine_BudgetCountsIterations(t *testing.T) {
	tests := []struct {
		name      string
		budget    int
		decisions []string
		trace     []string
		reason    Termination
	}{
		{
			name:      "terminal decision within budget",
			budget:    1,
			decisions: []string{"END"},
			trace:     []string{"supervisor", "END"},
			reason:    TerminatedBySupervisor,
		},
		{
			name:      "last unit spent on the terminal decision",
			budget:    2,
			decisions: []string{"A", "END"},
			trace:     []string{"supervisor", "A", "supervisor", "END"},
			reason:    TerminatedBySupervisor,
		},
		{
			name:      "budget runs out before the terminal decision",
			budget:    2,
			decisions: []string{"A", "B", "END"},
			trace:     []string{"supervisor", "A", "supervisor", "B", "END"},
			reason:    TerminatedByBudget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, testutil.NewScriptedDecider(tt.decisions...),
				[]core.Actor{testutil.NewEchoActor("A"), testutil.NewEchoActor("B")})

			res, err := e.Respond(context.Background(), "q", tt.budget)
			require.NoError(t, err)

			assert.Equal(t, tt.trace, res.Trace)
			assert.Equal(t, tt.reason, res.Reason)
			assert.LessOrEqual(t, res.Steps, tt.budget)
		})
	}
}

func TestEngine_SingleDispatchConfig(t *testing.T) {
	a := testutil.NewEchoActor("A")
	e := newEngine(t, testutil.Always("A"), []core.Actor{a}, func(o *Options) {
		o.Config = Config{RunBudget: 1, StepBudget: 1}
	})

	res, err := e.Respond(context.Background(), "q", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "A", "END"}, res.Trace)
	assert.Equal(t, TerminatedByBudget, res.Reason)
	assert.Equal(t, 1, a.Calls())
}

func TestEngine_StepsNeverExceedBudget(t *testing.T) {
	for _, budget := range []int{1, 2, 5, 13} {
		t.Run(fmt.Sprint(budget), func(t *testing.T) {
			a := testutil.NewEchoActor("A")
			e := newEngine(t, testutil.Always("A"), []core.Actor{a})

			res, err := e.Respond(context.Background(), "q", budget)
			require.NoError(t, err)

			assert.Equal(t, budget, res.Steps)
			assert.Equal(t, budget, a.Calls())
			assert.Equal(t, budget+1, res.State.Log.Len())
		})
	}
}

func TestEngine_ConfiguredRunBudget(t *testing.T) {
	e := newEngine(t, testutil.Always("A"), []core.Actor{testutil.NewEchoActor("A")}, func(o *Options) {
		o.Config = Config{RunBudget: 3, StepBudget: 2}
	})

	res, err := e.Run(core.NewRunContext(context.Background(), "run-1", "team", nil, nil), core.NewState("q"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Steps)
	assert.Equal(t, TerminatedByBudget, res.Reason)
}

func TestEngine_FailingActorBecomesMessage(t *testing.T) {
	decider := testutil.NewScriptedDecider("A", "END")
	e := newEngine(t, decider, []core.Actor{testutil.NewFailingActor("A", errors.New("rate limit"))})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "A", "supervisor", "END"}, res.Trace)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[1].Origin)
	assert.Equal(t, "Agent A failed with error: rate limit", msgs[1].Text())

	// The failure is visible to the next decision.
	histories := decider.Histories()
	require.Len(t, histories, 2)
	assert.Contains(t, histories[1][1].Text(), "failed with error")
}

func TestEngine_PanickingActorBecomesMessage(t *testing.T) {
	e := newEngine(t, testutil.NewScriptedDecider("A", "END"), []core.Actor{testutil.NewPanickingActor("A", "kaboom")})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Regexp(t, `^Agent A failed with error: .*kaboom`, msgs[1].Text())
	assert.Equal(t, TerminatedBySupervisor, res.Reason)
}

func TestEngine_StepBudgetStopsActor(t *testing.T) {
	looping := testutil.NewLoopingActor("A")
	e := newEngine(t, testutil.NewScriptedDecider("A", "END"), []core.Actor{looping}, func(o *Options) {
		o.Config = Config{RunBudget: 10, StepBudget: 3}
	})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Text(), core.ErrStepLimit.Error())
}

func TestEngine_ScratchMessagesStayPrivate(t *testing.T) {
	a := &testutil.StubActor{ActorName: "A", Scratch: []string{"thinking", "calling tools"}}
	e := newEngine(t, testutil.NewScriptedDecider("A", "END"), []core.Actor{a})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A done", msgs[1].Text())
}

func TestEngine_SilentActorAppendsEmptyMessage(t *testing.T) {
	a := &testutil.StubActor{ActorName: "A", Silent: true}
	e := newEngine(t, testutil.NewScriptedDecider("A", "END"), []core.Actor{a})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "A", msgs[1].Origin)
	assert.Empty(t, msgs[1].Text())
}

func TestEngine_UnparseableDecisionEndsRun(t *testing.T) {
	e := newEngine(t, testutil.NewScriptedDecider("I am not sure"), []core.Actor{testutil.NewEchoActor("A")})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "END"}, res.Trace)
	assert.Equal(t, TerminatedUnparseable, res.Reason)
	assert.Equal(t, 1, res.State.Log.Len())
	assert.Equal(t, core.Terminal, res.State.Next)
}

func TestEngine_UnavailableDecisionEngineEndsRun(t *testing.T) {
	decider := testutil.NewScriptedDecider("A")
	for i := 1; i <= 3; i++ {
		decider.FailOn(i, errors.New("503"))
	}

	e := newEngine(t, decider, []core.Actor{testutil.NewEchoActor("A")})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	assert.Equal(t, TerminatedUnavailable, res.Reason)
	assert.Equal(t, 3, decider.Calls())
	require.Len(t, res.Decisions, 1)
	assert.ErrorIs(t, res.Decisions[0].Err, core.ErrDecisionUnavailable)
}

func TestEngine_TransientDecisionFailureIsRetried(t *testing.T) {
	decider := testutil.NewScriptedDecider("A", "END").FailOn(1, errors.New("timeout"))

	e := newEngine(t, decider, []core.Actor{testutil.NewEchoActor("A")})

	res, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "A", "supervisor", "END"}, res.Trace)
	assert.Equal(t, 2, res.Decisions[0].Attempts)
}

func TestEngine_CancellationStopsAtLoopTop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &testutil.StubActor{ActorName: "A", Reply: func(*core.RunContext, *core.State) (string, error) {
		cancel()
		return "partial work", nil
	}}

	decider := testutil.Always("A")
	e := newEngine(t, decider, []core.Actor{a})

	res, err := e.Respond(ctx, "query", 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, IsCancelled(err))

	require.NotNil(t, res)
	assert.Equal(t, TerminatedCancelled, res.Reason)
	assert.Equal(t, []string{"supervisor", "A"}, res.Trace)
	assert.Equal(t, 1, decider.Calls())

	msgs := res.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "partial work", msgs[1].Text())
}

func TestEngine_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	decider := testutil.Always("A")
	e := newEngine(t, decider, []core.Actor{testutil.NewEchoActor("A")})

	res, err := e.Respond(ctx, "query", 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, TerminatedCancelled, res.Reason)
	assert.Empty(t, res.Trace)
	assert.Equal(t, 0, decider.Calls())
	assert.Equal(t, 1, res.State.Log.Len())
}

func TestNew_ValidatesRegistry(t *testing.T) {
	decider := testutil.NewScriptedDecider()
	a := testutil.NewEchoActor("A")

	tests := []struct {
		name    string
		actors  []core.Actor
		decider supervisor.DecisionEngine
		optFns  []func(o *Options)
	}{
		{name: "empty registry", actors: nil, decider: decider},
		{name: "duplicate names", actors: []core.Actor{a, testutil.NewEchoActor("A")}, decider: decider},
		{name: "terminal name", actors: []core.Actor{testutil.NewEchoActor(core.Terminal)}, decider: decider},
		{name: "supervisor name", actors: []core.Actor{testutil.NewEchoActor("supervisor")}, decider: decider},
		{name: "empty actor name", actors: []core.Actor{testutil.NewEchoActor("")}, decider: decider},
		{name: "nil actor", actors: []core.Actor{nil}, decider: decider},
		{name: "nil decider", actors: []core.Actor{a}, decider: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("team", tt.decider, tt.actors, tt.optFns...)
			assert.ErrorIs(t, err, core.ErrInvalidRegistry)
		})
	}

	_, err := New("", decider, []core.Actor{a})
	assert.ErrorIs(t, err, core.ErrInvalidRegistry)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig.Validate())
	assert.Error(t, Config{RunBudget: 0, StepBudget: 1}.Validate())
	assert.Error(t, Config{RunBudget: 5, StepBudget: 0}.Validate())
	assert.Error(t, Config{RunBudget: 5, StepBudget: 5}.Validate())
	assert.NoError(t, Config{RunBudget: 1, StepBudget: 1}.Validate())
	assert.Error(t, Config{RunBudget: 1, StepBudget: 2}.Validate())

	_, err := New("team", testutil.NewScriptedDecider(), []core.Actor{testutil.NewEchoActor("A")}, func(o *Options) {
		o.Config = Config{RunBudget: 2, StepBudget: 10}
	})
	assert.Error(t, err)
}

func TestEngine_Accessors(t *testing.T) {
	e := newEngine(t, testutil.NewScriptedDecider(), []core.Actor{testutil.NewEchoActor("B"), testutil.NewEchoActor("A")},
		func(o *Options) { o.Description = "Test team" })

	assert.Equal(t, "team", e.Name())
	assert.Equal(t, "Test team", e.Description())
	assert.Equal(t, []string{"B", "A"}, e.Actors())
	assert.Equal(t, DefaultConfig, e.Config())

	_, ok := e.Actor("A")
	assert.True(t, ok)
	_, ok = e.Actor("C")
	assert.False(t, ok)
}

func TestEngine_ObserverReceivesEvents(t *testing.T) {
	rec := observe.NewRecorder()
	e := newEngine(t, testutil.NewScriptedDecider("A", "END"), []core.Actor{testutil.NewFailingActor("A", nil)},
		func(o *Options) { o.Observer = rec })

	_, err := e.Respond(context.Background(), "query", 0)
	require.NoError(t, err)

	types := []observe.EventType{}
	for _, ev := range rec.Events() {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []observe.EventType{
		observe.EventRunStarted,
		observe.EventDecided,
		observe.EventStepStarted,
		observe.EventStepFinished,
		observe.EventDecided,
		observe.EventRunFinished,
	}, types)

	assert.Equal(t, []string{"A", core.Terminal}, rec.Decisions())

	finished := rec.Filter(observe.EventStepFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, "A", finished[0].Actor)
	assert.Contains(t, finished[0].Err, "boom")

	run := rec.Filter(observe.EventRunFinished)
	require.Len(t, run, 1)
	assert.Equal(t, string(TerminatedBySupervisor), run[0].Termination)
}

type panickingObserver struct{ observe.NoOp }

func (panickingObserver) Decided(context.Context, observe.RunInfo, supervisor.Decision) {
	panic("observer bug")
}

func (panickingObserver) StepStarted(context.Context, observe.StepInfo) context.Context {
	panic("observer bug")
}

func TestEngine_ObserverDoesNotChangeRouting(t *testing.T) {
	run := func(o observe.Observer) *Result {
		e := newEngine(t, testutil.NewScriptedDecider("A", "B", "END"),
			[]core.Actor{testutil.NewEchoActor("A"), testutil.NewEchoActor("B")},
			func(opts *Options) { opts.Observer = o })

		res, err := e.Respond(context.Background(), "query", 0)
		require.NoError(t, err)
		return res
	}

	plain := run(nil)
	recorded := run(observe.NewRecorder())
	broken := run(panickingObserver{})

	assert.Equal(t, plain.Trace, recorded.Trace)
	assert.Equal(t, plain.Trace, broken.Trace)
	assert.Equal(t, origins(plain.Messages()), origins(broken.Messages()))
}
