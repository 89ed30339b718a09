package library

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no row carries the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned when a record or id is rejected before it reaches the store.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidReference is returned when a record points at a row that does not exist.
	ErrInvalidReference = fmt.Errorf("%w: invalid reference", ErrValidation)
	// ErrReferenced is returned when a row cannot be deleted while other rows point at it.
	ErrReferenced = errors.New("record is still referenced")
	// ErrStoreUnavailable wraps connection, session and driver failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoSuchField is returned when there is no field or no relation with that name.
	ErrNoSuchField = fmt.Errorf("%w: field does not exist", ErrValidation)
	// ErrNoSuchRelation is returned only when trying to select a nested field on a relation that does not exist.
	ErrNoSuchRelation = fmt.Errorf("%w: relation does not exist", ErrValidation)
	// ErrTooManyResults is returned when CollectOne is called but returned many models
	ErrTooManyResults = errors.New("too many result for CollectOne")
)

// domainError reports whether err already carries one of the package's own
// sentinels and must reach the caller unchanged.
func domainError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrValidation, ErrReferenced, ErrStoreUnavailable, ErrTooManyResults} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
