package directory

import (
	"errors"

	"github.com/secunda/directory/internal/store"
)

// ErrInvalidState is returned when stored data violates an invariant the query
// relies on, such as an unparseable coordinate on the search center or an
// organization pointing at a missing building.
var ErrInvalidState = errors.New("invalid state")

// ErrorClass groups query errors by how callers should react to them.
type ErrorClass int

const (
	ClassNone ErrorClass = iota
	ClassNotFound
	ClassInvalidState
	ClassStoreFailure
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassNotFound:
		return "not_found"
	case ClassInvalidState:
		return "invalid_state"
	default:
		return "store_failure"
	}
}

// Classify maps an error returned by Service to its class. Anything not
// recognised is treated as a store failure.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, ErrInvalidState):
		return ClassInvalidState
	case errors.Is(err, store.ErrNotFound):
		return ClassNotFound
	default:
		return ClassStoreFailure
	}
}
