package agent

import (
	"fmt"

	"github.com/hupe1980/teammesh/core"
)

// BaseActor bundles the identity shared by every worker. Embed it in concrete
// implementations and supply a Run method to satisfy core.Actor.
type BaseActor struct {
	name        string
	description string
	kind        core.Kind
}

// NewBaseActor constructs a worker identity. An empty description is replaced
// by a generated one.
func NewBaseActor(name, description string) BaseActor {
	if description == "" {
		description = fmt.Sprintf("Agent %s", name)
	}
	return BaseActor{
		name:        name,
		description: description,
		kind:        core.KindWorker,
	}
}

// Name returns the unique name the supervisor routes by.
func (b *BaseActor) Name() string { return b.name }

// Description returns the capability summary shown to the supervisor.
func (b *BaseActor) Description() string { return b.description }

// SetDescription updates the actor's description.
func (b *BaseActor) SetDescription(desc string) { b.description = desc }

// Kind reports the actor variant.
func (b *BaseActor) Kind() core.Kind { return b.kind }
