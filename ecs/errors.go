package ecs

import "github.com/rotisserie/eris"

var (
	// ErrEntityNotFound is returned when attempting to operate on a non-existent entity
	// or when an entity cannot be found in the expected location.
	ErrEntityNotFound = eris.New("entity does not exist")

	// ErrComponentNotFound is returned when a component isn't registered or isn't on an entity.
	ErrComponentNotFound = eris.New("component not found")

	// ErrStorageMismatch is returned when a component name is registered again with a different
	// storage type.
	ErrStorageMismatch = eris.New("component storage type mismatch")

	// ErrAccessConflict is returned when compiling a query whose terms access the same component
	// both mutably and immutably, or mutably twice.
	ErrAccessConflict = eris.New("conflicting component access")

	// ErrQueryInUse is returned when registering a system with a query another system already uses.
	ErrQueryInUse = eris.New("query is already used by another system")

	// ErrTermInUse is returned when compiling a query with a Read or Write term that already belongs
	// to another query.
	ErrTermInUse = eris.New("query term is already used by another query")
)
