package artifact

import "errors"

var (
	// ErrNotFound is returned when an artifact for the given run / id pair
	// does not exist in the underlying store.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidID is returned for ids that would escape the run scope.
	ErrInvalidID = errors.New("invalid artifact id")
)
