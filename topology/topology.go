package topology

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/engine"
)

// Team is one orchestrator of the tree.
type Team struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Supervisor  Supervisor `yaml:"supervisor"`
	Members     []Member   `yaml:"members"`
	// RunBudget overrides the configured run budget of this team.
	RunBudget int `yaml:"run_budget,omitempty"`
	// StepBudget overrides the configured step budget of this team's members.
	StepBudget int `yaml:"step_budget,omitempty"`
}

// Supervisor configures a team's routing decision.
type Supervisor struct {
	// Name of the supervisor node. Defaults to "<team>_supervisor".
	Name  string `yaml:"name,omitempty"`
	Model string `yaml:"model"`
	// Prompt overrides the default routing prompt template.
	Prompt string `yaml:"prompt,omitempty"`
	// MaxHistory bounds the messages sent to the model; 0 sends all.
	MaxHistory int `yaml:"max_history,omitempty"`
}

// Member is either a worker (Model set) or a nested team (Team set).
type Member struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Instruction string   `yaml:"instruction,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
	Team        *Team    `yaml:"team,omitempty"`
}

// IsTeam reports whether the member is a nested team.
func (m Member) IsTeam() bool { return m.Team != nil }

// ErrInvalidTopology is wrapped by every validation error.
var ErrInvalidTopology = errors.New("invalid topology")

// Load reads and validates a topology file.
func Load(path string) (*Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology: %w", err)
	}
	team, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return team, nil
}

// Parse decodes and validates a topology document. Unknown fields are
// rejected.
func Parse(data []byte) (*Team, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var team Team
	if err := dec.Decode(&team); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidTopology)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}

	team.applyDefaults()

	if err := team.Validate(); err != nil {
		return nil, err
	}

	return &team, nil
}

// Marshal encodes the team back to YAML.
func (t *Team) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

func (t *Team) applyDefaults() {
	if t.Supervisor.Name == "" && t.Name != "" {
		t.Supervisor.Name = t.Name + "_supervisor"
	}
	for i := range t.Members {
		m := &t.Members[i]
		if m.Team == nil {
			continue
		}
		if m.Team.Name == "" {
			m.Team.Name = m.Name
		}
		if m.Description == "" {
			m.Description = m.Team.Description
		}
		m.Team.applyDefaults()
	}
}

// Validate checks the whole tree.
func (t *Team) Validate() error {
	return t.validate(t.Name)
}

func (t *Team) validate(path string) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidTopology, path, fmt.Sprintf(format, args...))
	}

	if t.Name == "" {
		return fail("team name is required")
	}
	if t.Supervisor.Model == "" {
		return fail("supervisor model is required")
	}
	if len(t.Members) == 0 {
		return fail("at least one member is required")
	}
	if t.RunBudget < 0 || t.StepBudget < 0 {
		return fail("budgets must not be negative")
	}
	if t.RunBudget > 0 && t.StepBudget > 0 {
		cfg := engine.Config{RunBudget: t.RunBudget, StepBudget: t.StepBudget}
		if err := cfg.Validate(); err != nil {
			return fail("%v", err)
		}
	}

	seen := make(map[string]struct{}, len(t.Members))
	for _, m := range t.Members {
		switch {
		case m.Name == "":
			return fail("member name is required")
		case m.Name == core.Terminal || m.Name == t.Supervisor.Name:
			return fail("member name %q is reserved", m.Name)
		case strings.ContainsAny(m.Name, " /"):
			return fail("member name %q must not contain spaces or slashes", m.Name)
		}

		if _, dup := seen[m.Name]; dup {
			return fail("duplicate member %q", m.Name)
		}
		seen[m.Name] = struct{}{}

		if m.IsTeam() == (m.Model != "") {
			return fail("member %q needs exactly one of model or team", m.Name)
		}

		if m.IsTeam() {
			if len(m.Tools) > 0 || m.Instruction != "" {
				return fail("team member %q cannot have tools or an instruction", m.Name)
			}
			if err := m.Team.validate(path + "/" + m.Name); err != nil {
				return err
			}
		}
	}

	return nil
}

// Walk visits t and every nested team depth first.
func (t *Team) Walk(fn func(path string, team *Team)) {
	t.walk(t.Name, fn)
}

func (t *Team) walk(path string, fn func(string, *Team)) {
	fn(path, t)
	for _, m := range t.Members {
		if m.Team != nil {
			m.Team.walk(path+"/"+m.Name, fn)
		}
	}
}

// ModelIDs returns every model id referenced by the tree, deduplicated in
// first-seen order.
func (t *Team) ModelIDs() []string {
	var (
		out  []string
		seen = map[string]struct{}{}
	)
	add := func(id string) {
		if _, ok := seen[id]; ok || id == "" {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	t.Walk(func(_ string, team *Team) {
		add(team.Supervisor.Model)
		for _, m := range team.Members {
			add(m.Model)
		}
	})

	return out
}
