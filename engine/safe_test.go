package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/testutil"
)

func TestRunSafe(t *testing.T) {
	tests := []struct {
		name    string
		actor   core.Actor
		text    string
		failure bool
	}{
		{name: "success", actor: testutil.NewReplyActor("A", "result"), text: "result"},
		{name: "error", actor: testutil.NewFailingActor("A", errors.New("bad input")), text: "Agent A failed with error: bad input", failure: true},
		{name: "panic", actor: testutil.NewPanickingActor("A", "nil map"), text: "Agent A failed with error: panic: nil map", failure: true},
		{name: "silent", actor: &testutil.StubActor{ActorName: "A", Silent: true}, text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runCtx := core.NewRunContext(context.Background(), "run-1", "team", nil, nil)
			state := core.NewState("q")

			out := RunSafe(runCtx, tt.actor, state, 5)

			require.Equal(t, 2, state.Log.Len())
			latest, _ := state.Latest()
			assert.Equal(t, latest, out.Message)
			assert.Equal(t, "A", latest.Origin)
			assert.Equal(t, core.RoleUser, latest.Role)
			assert.Equal(t, "run-1", latest.RunID)
			assert.Equal(t, tt.text, latest.Text())

			if tt.failure {
				require.NotNil(t, out.Failure)
				assert.Equal(t, "A", out.Failure.Actor)
			} else {
				assert.Nil(t, out.Failure)
			}
			assert.Empty(t, state.Next)
		})
	}
}

func TestRunSafe_RelabelsForeignOrigin(t *testing.T) {
	// A sub-orchestrator hands back a message authored by an inner actor.
	relay := relayActor{StubActor: &testutil.StubActor{ActorName: "A"}}

	state := core.NewState("q")
	RunSafe(core.NewRunContext(context.Background(), "", "team", nil, nil), relay, state, 5)

	latest, _ := state.Latest()
	assert.Equal(t, "A", latest.Origin)
	assert.Equal(t, "inner says hi", latest.Text())
}

type relayActor struct{ *testutil.StubActor }

func (r relayActor) Run(_ *core.RunContext, state *core.State) (*core.State, error) {
	state.Log.Append(core.NewActorMessage("inner_agent", "inner says hi"))
	return state, nil
}

func TestRunSafe_ChildContextCarriesStepBudget(t *testing.T) {
	var seen *core.RunContext
	a := &testutil.StubActor{ActorName: "A", Reply: func(rc *core.RunContext, _ *core.State) (string, error) {
		seen = rc
		return "ok", nil
	}}

	RunSafe(core.NewRunContext(context.Background(), "run-1", "team", nil, nil), a, core.NewState("q"), 7)

	require.NotNil(t, seen)
	assert.Equal(t, 7, seen.Steps.Max())
	assert.Equal(t, "A", seen.Agent.Name)
	assert.Equal(t, "team", seen.Path)
}
