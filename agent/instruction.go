package agent

import (
	"github.com/hupe1980/teammesh/core"
	"github.com/hupe1980/teammesh/internal/util"
)

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(rc *core.RunContext) (string, error) { return f(rc) }

// Instruction represents either a static instruction template or a dynamic provider.
//
// Static text may reference {{ .agent }}, {{ .run_id }}, {{ .path }} and
// {{ .artifacts }} which are filled from the run context on Resolve.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(rc)
	}

	artifacts, err := rc.ListArtifacts()
	if err != nil {
		artifacts = nil
	}

	return util.RenderTemplate(i.text, map[string]any{
		"agent":     rc.Agent.Name,
		"run_id":    rc.RunID,
		"path":      rc.Path,
		"artifacts": artifacts,
	})
}
