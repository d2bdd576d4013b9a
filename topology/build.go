package topology

import (
	"fmt"
	"sort"

	"github.com/hupe1980/teammesh/agent"
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/engine"
	"github.com/hupe1980/teammesh/logging"
	"github.com/hupe1980/teammesh/model"
	"github.com/hupe1980/teammesh/observe"
	"github.com/hupe1980/teammesh/supervisor"
	"github.com/hupe1980/teammesh/tool"
)

// ModelResolver turns a "<provider>/<model>" id into a model.
type ModelResolver interface {
	Resolve(id string) (model.Model, error)
}

// ResolverFunc adapts a function to ModelResolver.
type ResolverFunc func(id string) (model.Model, error)

// Resolve implements ModelResolver.
func (f ResolverFunc) Resolve(id string) (model.Model, error) { return f(id) }

// Deps are the collaborators Build wires into every engine of the tree.
type Deps struct {
	// Models resolves model ids. Required.
	Models ModelResolver
	// Tools are available to workers by name in addition to the builtin
	// artifact tools.
	Tools []tool.Tool
	// Config holds the default budgets; teams may override them.
	Config engine.Config
	// Retry is the supervisor retry policy.
	Retry supervisor.RetryPolicy
	// Observer receives events of every engine in the tree.
	Observer observe.Observer
	// ArtifactStore backs top-level runs of the root engine.
	ArtifactStore core.ArtifactStore
	// Logger is shared by every engine.
	Logger logging.Logger
}

// BuiltinTools returns the tools every topology can reference by name.
func BuiltinTools() []tool.Tool {
	return tool.ArtifactTools()
}

// Build constructs the engine tree described by team.
func Build(team *Team, deps Deps) (*engine.Engine, error) {
	if deps.Models == nil {
		return nil, fmt.Errorf("topology: model resolver is required")
	}
	if deps.Config == (engine.Config{}) {
		deps.Config = engine.DefaultConfig
	}
	if deps.Retry == (supervisor.RetryPolicy{}) {
		deps.Retry = supervisor.DefaultRetryPolicy
	}

	tools, err := tool.Index(append(BuiltinTools(), deps.Tools...))
	if err != nil {
		return nil, fmt.Errorf("topology: %w", err)
	}

	b := &builder{deps: deps, tools: tools, models: map[string]model.Model{}}
	return b.team(team, team.Name)
}

type builder struct {
	deps   Deps
	tools  map[string]tool.Tool
	models map[string]model.Model
}

func (b *builder) model(id string) (model.Model, error) {
	if m, ok := b.models[id]; ok {
		return m, nil
	}
	m, err := b.deps.Models.Resolve(id)
	if err != nil {
		return nil, err
	}
	b.models[id] = m
	return m, nil
}

func (b *builder) team(t *Team, path string) (*engine.Engine, error) {
	cfg := b.deps.Config
	if t.RunBudget > 0 {
		cfg.RunBudget = t.RunBudget
	}
	if t.StepBudget > 0 {
		cfg.StepBudget = t.StepBudget
	} else if cfg.StepBudget >= cfg.RunBudget {
		cfg.StepBudget = max(1, cfg.RunBudget-1)
	}

	actors := make([]core.Actor, 0, len(t.Members))
	for _, m := range t.Members {
		a, err := b.member(m, path+"/"+m.Name)
		if err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}

	llm, err := b.model(t.Supervisor.Model)
	if err != nil {
		return nil, fmt.Errorf("%s: supervisor: %w", path, err)
	}

	decider := supervisor.NewModelDecider(llm, supervisor.MembersOf(actors...), func(o *supervisor.ModelDeciderOptions) {
		o.Name = t.Supervisor.Name
		o.MaxHistoryMessages = t.Supervisor.MaxHistory
		if t.Supervisor.Prompt != "" {
			o.Prompt = t.Supervisor.Prompt
		}
	})

	return engine.New(t.Name, decider, actors, func(o *engine.Options) {
		o.Config = cfg
		o.SupervisorName = t.Supervisor.Name
		o.Description = t.Description
		o.Retry = b.deps.Retry
		o.Observer = b.deps.Observer
		o.ArtifactStore = b.deps.ArtifactStore
		o.Logger = b.deps.Logger
	})
}

func (b *builder) member(m Member, path string) (core.Actor, error) {
	if m.IsTeam() {
		inner, err := b.team(m.Team, path)
		if err != nil {
			return nil, err
		}
		return inner.AsActor(func(o *engine.AdapterOptions) {
			o.Name = m.Name
			if m.Description != "" {
				o.Description = m.Description
			}
		}), nil
	}

	llm, err := b.model(m.Model)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	tools := make([]tool.Tool, 0, len(m.Tools))
	for _, name := range m.Tools {
		t, ok := b.tools[name]
		if !ok {
			return nil, fmt.Errorf("%s: unknown tool %q (available: %v)", path, name, b.toolNames())
		}
		tools = append(tools, t)
	}

	worker, err := agent.NewModelWorker(m.Name, llm, func(o *agent.ModelWorkerOptions) {
		o.Description = m.Description
		o.Tools = tools
		if m.Instruction != "" {
			o.Instruction = agent.NewInstructionFromText(m.Instruction)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return worker, nil
}

func (b *builder) toolNames() []string {
	names := make([]string, 0, len(b.tools))
	for n := range b.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
