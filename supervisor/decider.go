package supervisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/util"
	"github.com/hupe1980/teammesh/model"
)

// DecisionEngine produces the raw routing answer for a conversation. The
// answer is free text; the Supervisor extracts the routing token from it.
type DecisionEngine interface {
	Decide(ctx context.Context, history []core.Message) (string, error)
}

// DecideFunc adapts a plain function to the DecisionEngine interface.
type DecideFunc func(ctx context.Context, history []core.Message) (string, error)

// Decide implements DecisionEngine.
func (f DecideFunc) Decide(ctx context.Context, history []core.Message) (string, error) {
	return f(ctx, history)
}

// Member describes one routing target in the supervisor prompt.
type Member struct {
	Name        string
	Description string
}

// MembersOf lists the name and description of every actor.
func MembersOf(actors ...core.Actor) []Member {
	out := make([]Member, 0, len(actors))
	for _, a := range actors {
		out = append(out, Member{Name: a.Name(), Description: a.Description()})
	}
	return out
}

// DefaultPrompt is the system prompt template of a ModelDecider. It is
// rendered with the variables name, members ([]Member), options (quoted
// member names plus the terminal marker) and terminal.
const DefaultPrompt = `You are {{.name}}, a supervisor tasked with managing a conversation between the following team members:
{{range .members}}
- "{{.Name}}": {{.Description}}{{end}}

Given the conversation, respond with the name of the team member to act next. Each member performs a task and reports back with its result. When the task is complete, respond with "{{.terminal}}".

Your ONLY task is to respond with the name of the next team member to act or "{{.terminal}}". Do not add any extra text or reasoning.`

// DefaultQuestion is appended after the conversation as the final user turn.
const DefaultQuestion = `Based on the conversation above, who should act next? Respond with ONLY one of: {{.options}}.`

// ModelDeciderOptions configures a ModelDecider.
type ModelDeciderOptions struct {
	// Name is the supervisor's name used in the prompt.
	Name string
	// Prompt is the system prompt template (see DefaultPrompt).
	Prompt string
	// Question is the closing instruction template (see DefaultQuestion).
	Question string
	// MaxHistoryMessages bounds the conversation sent to the model; 0 sends
	// everything.
	MaxHistoryMessages int
}

// ModelDecider asks a language model for the next member.
type ModelDecider struct {
	llm     model.Model
	members []Member
	opts    ModelDeciderOptions
}

// NewModelDecider creates a DecisionEngine backed by llm for the given members.
func NewModelDecider(llm model.Model, members []Member, optFns ...func(o *ModelDeciderOptions)) *ModelDecider {
	opts := ModelDeciderOptions{
		Name:     "supervisor",
		Prompt:   DefaultPrompt,
		Question: DefaultQuestion,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelDecider{llm: llm, members: members, opts: opts}
}

// Decide implements DecisionEngine. Model failures are returned wrapped with
// core.ErrDecisionUnavailable.
func (d *ModelDecider) Decide(ctx context.Context, history []core.Message) (string, error) {
	vars := d.vars()

	system, err := util.RenderTemplate(d.opts.Prompt, vars)
	if err != nil {
		return "", fmt.Errorf("render supervisor prompt: %w", err)
	}

	question, err := util.RenderTemplate(d.opts.Question, vars)
	if err != nil {
		return "", fmt.Errorf("render supervisor question: %w", err)
	}

	if n := d.opts.MaxHistoryMessages; n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	msgs := make([]core.Message, 0, len(history)+1)
	msgs = append(msgs, history...)
	msgs = append(msgs, core.NewUserMessage(question))

	resp, err := model.Complete(ctx, d.llm, model.Request{
		Instructions: system,
		Messages:     msgs,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", core.ErrDecisionUnavailable, err)
	}

	return strings.TrimSpace(resp.Message.Text()), nil
}

func (d *ModelDecider) vars() map[string]any {
	options := make([]string, 0, len(d.members)+1)
	for _, m := range d.members {
		options = append(options, fmt.Sprintf("%q", m.Name))
	}
	options = append(options, fmt.Sprintf("%q", core.Terminal))

	return map[string]any{
		"name":     d.opts.Name,
		"members":  d.members,
		"options":  strings.Join(options, ", "),
		"terminal": core.Terminal,
	}
}
