package ecs

import (
	"github.com/rotisserie/eris"
)

// Predicate decides whether a component value passes a Check. Test must be a pure function of the
// value: it's called once per visited entity, in no particular order, possibly from several queries
// at once. The predicate package builds common predicates with this method set.
type Predicate[T any] interface {
	Test(value *T) bool
}

// Check matches entities that have component T and whose value satisfies pred. The value is read
// to evaluate the predicate but isn't given to the caller; combine with Read or Write for that.
// Check holds shared access to T, so a query that writes T elsewhere fails to compile.
//
// Example:
//
//	q, err := ecs.NewQuery(w, ecs.Check[Health](predicate.GreaterThan[Health](50)))
func Check[T Component](pred Predicate[T]) QueryTerm {
	return checkTerm[T]{pred: pred}
}

type checkTerm[T Component] struct {
	pred Predicate[T]
}

func (t checkTerm[T]) resolve(w *World, register bool) (termState, bool, error) {
	state, ok, err := resolveCheckState[T](w, register)
	if err != nil || !ok {
		return nil, ok, err
	}
	return checkBinding[T]{state: state, pred: t.pred}, true, nil
}

// checkState is the identity of the checked component: its ID and where its values live. It's
// resolved once when the query compiles.
type checkState[T Component] struct {
	id      ComponentID
	storage StorageType
}

// resolveCheckState resolves component T. With register false, returns false if the world never
// registered T.
func resolveCheckState[T Component](w *World, register bool) (checkState[T], bool, error) {
	cid, ok, err := resolveComponent[T](w, register)
	if err != nil || !ok {
		return checkState[T]{}, ok, err
	}
	return checkState[T]{id: cid, storage: w.state.components.info(cid).storage}, true, nil
}

// matchesComponentSet returns true if the archetype with the given component set contains T.
func (s checkState[T]) matchesComponentSet(contains func(ComponentID) bool) bool {
	return contains(s.id)
}

// updateAccess adds a read of T to access. Fails if an earlier term of the query writes T.
func (s checkState[T]) updateAccess(access *Access) error {
	if access.HasWrite(s.id) {
		var zero T
		return eris.Wrapf(ErrAccessConflict,
			"Check[%s] conflicts with a previous write in this query: shared access cannot coincide with exclusive access",
			zero.Name())
	}
	return access.AddRead(s.id)
}

// checkBinding pairs a resolved checkState with the predicate of its term.
type checkBinding[T Component] struct {
	state checkState[T]
	pred  Predicate[T]
}

func (b checkBinding[T]) matchesComponentSet(contains func(ComponentID) bool) bool {
	return b.state.matchesComponentSet(contains)
}

func (b checkBinding[T]) updateAccess(access *Access) error {
	return b.state.updateAccess(access)
}

func (b checkBinding[T]) newFetch(ws *worldState) termFetch {
	f := initCheckFetch(ws, b.state, b.pred)
	return &f
}

// checkFetch evaluates the predicate on the rows of one query execution. For sparse components the
// store is bound at init and stays bound. For dense components the column is bound per archetype.
type checkFetch[T Component] struct {
	handle componentFetch[T]
	pred   Predicate[T]
}

func initCheckFetch[T Component](ws *worldState, state checkState[T], pred Predicate[T]) checkFetch[T] {
	return checkFetch[T]{
		handle: newComponentFetch[T](ws, state.id, state.storage),
		pred:   pred,
	}
}

// setArchetype binds the column of T in arch. No-op for sparse components.
func (f *checkFetch[T]) setArchetype(arch *archetype) {
	f.handle.setArchetype(arch)
}

// test returns the predicate's result for the entity at row in the bound archetype.
func (f *checkFetch[T]) test(eid EntityID, row int) bool {
	return f.pred.Test(f.handle.get(eid, row))
}

// narrow returns a copy of the fetch that shares its bound handles.
func (f *checkFetch[T]) narrow() checkFetch[T] {
	return *f
}
