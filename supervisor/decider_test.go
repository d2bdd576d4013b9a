package supervisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/model"
)

var boardMembers = []Member{
	{Name: "research_team", Description: "Researches relevant information."},
	{Name: "production_team", Description: "Produces the final audio script."},
}

func TestModelDecider_Decide(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.EnqueueText("  production_team \n")

	d := NewModelDecider(llm, boardMembers, func(o *ModelDeciderOptions) {
		o.Name = "chief_editor"
	})

	history := []core.Message{
		core.NewUserMessage("review the new phone"),
		core.NewActorMessage("research_team", "found four reviews"),
	}

	raw, err := d.Decide(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, "production_team", raw)

	reqs := llm.Requests()
	require.Len(t, reqs, 1)

	assert.Contains(t, reqs[0].Instructions, "You are chief_editor")
	assert.Contains(t, reqs[0].Instructions, `- "research_team": Researches relevant information.`)
	assert.Contains(t, reqs[0].Instructions, `- "production_team": Produces the final audio script.`)

	require.Len(t, reqs[0].Messages, 3)
	assert.Equal(t, "found four reviews", reqs[0].Messages[1].Text())
	assert.Equal(t,
		`Based on the conversation above, who should act next? Respond with ONLY one of: "research_team", "production_team", "END".`,
		reqs[0].Messages[2].Text())
}

func TestModelDecider_HistoryWindow(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.EnqueueText("END")

	d := NewModelDecider(llm, boardMembers, func(o *ModelDeciderOptions) {
		o.MaxHistoryMessages = 1
		o.Prompt = "Route between {{.options}}"
	})

	_, err := d.Decide(context.Background(), []core.Message{
		core.NewUserMessage("one"),
		core.NewUserMessage("two"),
	})
	require.NoError(t, err)

	req := llm.Requests()[0]
	assert.Equal(t, `Route between "research_team", "production_team", "END"`, req.Instructions)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "two", req.Messages[0].Text())
}

func TestModelDecider_ModelFailure(t *testing.T) {
	llm := model.NewMockModel("mock", "test")
	llm.EnqueueError(errors.New("503"))

	_, err := NewModelDecider(llm, boardMembers).Decide(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrDecisionUnavailable)
}

func TestModelDecider_BadTemplate(t *testing.T) {
	llm := model.NewMockModel("mock", "test")

	_, err := NewModelDecider(llm, boardMembers, func(o *ModelDeciderOptions) {
		o.Prompt = "{{.name"
	}).Decide(context.Background(), nil)
	assert.Error(t, err)
	assert.Empty(t, llm.Requests())
}

func TestMembersOf(t *testing.T) {
	members := MembersOf(stubActor{name: "a", desc: "does a"})
	assert.Equal(t, []Member{{Name: "a", Description: "does a"}}, members)
}

type stubActor struct{ name, desc string }

func (s stubActor) Name() string        { return s.name }
func (s stubActor) Description() string { return s.desc }
func (s stubActor) Kind() core.Kind     { return core.KindWorker }
func (s stubActor) Run(_ *core.RunContext, st *core.State) (*core.State, error) {
	return st, nil
}
