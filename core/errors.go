package core

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetExhausted is returned by Budget.Consume once its limit is reached.
	ErrBudgetExhausted = errors.New("budget exhausted")
	// ErrStepLimit signals an actor used up its internal step budget.
	ErrStepLimit = errors.New("step limit reached")
	// ErrUnknownActor is returned when a name is not part of a registry.
	ErrUnknownActor = errors.New("unknown actor")
	// ErrDecisionUnavailable signals the decision engine could not produce output.
	ErrDecisionUnavailable = errors.New("decision engine unavailable")
	// ErrInvalidRegistry is returned when an actor registry cannot be built.
	ErrInvalidRegistry = errors.New("invalid actor registry")
)

// ActorFailure records an error raised by a named actor.
type ActorFailure struct {
	Actor string
	Err   error
}

// Error implements the error interface.
func (f *ActorFailure) Error() string {
	return fmt.Sprintf("actor %s failed: %v", f.Actor, f.Err)
}

// Unwrap exposes the underlying cause.
func (f *ActorFailure) Unwrap() error { return f.Err }

// NewActorFailure wraps err as a failure of the named actor.
func NewActorFailure(actor string, err error) *ActorFailure {
	return &ActorFailure{Actor: actor, Err: err}
}
