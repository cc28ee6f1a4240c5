package ecs

import (
	"github.com/argus-labs/ecsfilter/assert"
	"github.com/rotisserie/eris"
)

// componentFetch resolves the value of one component for the rows of a query execution. Dense
// components are read from the bound archetype's column by row, sparse components from the world's
// sparse store by entity ID. Exactly one of the two handles is used, chosen by the storage type.
type componentFetch[T Component] struct {
	id      ComponentID
	storage StorageType
	ws      *worldState
	version uint64          // World version the fetch was created at
	dense   []T             // Column of the bound archetype, dense only
	sparse  *sparseStore[T] // Bound at creation, sparse only
}

func newComponentFetch[T Component](ws *worldState, cid ComponentID, storage StorageType) componentFetch[T] {
	f := componentFetch[T]{id: cid, storage: storage, ws: ws, version: ws.version}
	if storage == StorageSparse {
		f.sparse = sparseStoreFor[T](ws, cid)
		assert.That(f.sparse != nil, "sparse component %d has no store", cid)
	}
	return f
}

// setArchetype binds the fetch to an archetype about to be iterated. It validates the column length
// once here so get can index the slice directly.
func (f *componentFetch[T]) setArchetype(arch *archetype) {
	assert.That(f.ws.version == f.version, "query fetch used after the world's structure changed")
	if f.storage != StorageDense {
		return
	}
	f.dense = getColumn[T](arch, f.id).view(arch.len())
}

// get returns a pointer to the value of the entity at row in the bound archetype.
func (f *componentFetch[T]) get(eid EntityID, row int) *T {
	if f.storage == StorageDense {
		return &f.dense[row]
	}
	value, ok := f.sparse.get(eid)
	if !ok {
		panicMissingSparse(f.sparse.compName, eid)
	}
	return value
}

func panicMissingSparse(name string, eid EntityID) {
	assert.That(false, "entity %d is missing from sparse store %s", eid, name)
}

// -------------------------------------------------------------------------------------------------
// With, Without
// -------------------------------------------------------------------------------------------------

type presenceTerm[T Component] struct {
	present bool
}

// With matches entities that have component T, without accessing it.
func With[T Component]() QueryTerm {
	return presenceTerm[T]{present: true}
}

// Without matches entities that don't have component T.
func Without[T Component]() QueryTerm {
	return presenceTerm[T]{present: false}
}

func (t presenceTerm[T]) resolve(w *World, register bool) (termState, bool, error) {
	cid, ok, err := resolveComponent[T](w, register)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		if t.present {
			return nil, false, nil
		}
		// No entity can have an unregistered component.
		return presenceState{matchAll: true}, true, nil
	}
	return presenceState{id: cid, present: t.present}, true, nil
}

type presenceState struct {
	id       ComponentID
	present  bool
	matchAll bool
}

func (s presenceState) matchesComponentSet(contains func(ComponentID) bool) bool {
	return s.matchAll || contains(s.id) == s.present
}

func (s presenceState) updateAccess(*Access) error {
	return nil
}

func (s presenceState) newFetch(*worldState) termFetch {
	return nopFetch{}
}

type nopFetch struct{}

func (nopFetch) setArchetype(*archetype) {}

func (nopFetch) test(EntityID, int) bool {
	return true
}

// -------------------------------------------------------------------------------------------------
// Read, Write
// -------------------------------------------------------------------------------------------------

// cursorFetch is the fetch of a term that exposes component values to the query's caller. It
// remembers the row last tested so the term can resolve its value after the query yields.
type cursorFetch[T Component] struct {
	handle componentFetch[T]
	eid    EntityID
	row    int
}

func (f *cursorFetch[T]) setArchetype(arch *archetype) {
	f.handle.setArchetype(arch)
}

func (f *cursorFetch[T]) test(eid EntityID, row int) bool {
	f.eid, f.row = eid, row
	return true
}

func (f *cursorFetch[T]) current() *T {
	return f.handle.get(f.eid, f.row)
}

// ReadTerm matches entities that have component T and gives read-only access to it.
type ReadTerm[T Component] struct {
	fetch *cursorFetch[T]
	bound bool
}

// Read returns a term that requires component T. Use Get while iterating the query to read the
// value of the current entity.
func Read[T Component]() *ReadTerm[T] {
	return &ReadTerm[T]{}
}

// Get returns the current entity's value. Must only be called while iterating the term's query.
func (t *ReadTerm[T]) Get() T {
	assert.That(t.fetch != nil, "Get called outside of query iteration")
	return *t.fetch.current()
}

func (t *ReadTerm[T]) resolve(w *World, register bool) (termState, bool, error) {
	if t.bound {
		var zero T
		return nil, false, eris.Wrapf(ErrTermInUse, "Read[%s]", zero.Name())
	}
	cid, ok, err := resolveComponent[T](w, register)
	if err != nil || !ok {
		return nil, ok, err
	}
	t.bound = true
	storage := w.state.components.info(cid).storage
	return &accessState[T]{id: cid, storage: storage, publish: func(f *cursorFetch[T]) { t.fetch = f }}, true, nil
}

// WriteTerm matches entities that have component T and gives exclusive access to it.
type WriteTerm[T Component] struct {
	fetch *cursorFetch[T]
	bound bool
}

// Write returns a term that requires component T. Use Get and Set while iterating the query to
// access the value of the current entity.
func Write[T Component]() *WriteTerm[T] {
	return &WriteTerm[T]{}
}

// Get returns a pointer to the current entity's value. The pointer is valid until the iterator
// advances.
func (t *WriteTerm[T]) Get() *T {
	assert.That(t.fetch != nil, "Get called outside of query iteration")
	return t.fetch.current()
}

// Set replaces the current entity's value.
func (t *WriteTerm[T]) Set(component T) {
	*t.Get() = component
}

func (t *WriteTerm[T]) resolve(w *World, register bool) (termState, bool, error) {
	if t.bound {
		var zero T
		return nil, false, eris.Wrapf(ErrTermInUse, "Write[%s]", zero.Name())
	}
	cid, ok, err := resolveComponent[T](w, register)
	if err != nil || !ok {
		return nil, ok, err
	}
	t.bound = true
	storage := w.state.components.info(cid).storage
	return &accessState[T]{
		id:      cid,
		storage: storage,
		write:   true,
		publish: func(f *cursorFetch[T]) { t.fetch = f },
	}, true, nil
}

// accessState is the compiled form of Read and Write.
type accessState[T Component] struct {
	id      ComponentID
	storage StorageType
	write   bool
	publish func(*cursorFetch[T])
}

func (s *accessState[T]) matchesComponentSet(contains func(ComponentID) bool) bool {
	return contains(s.id)
}

func (s *accessState[T]) updateAccess(access *Access) error {
	var zero T
	if s.write {
		return eris.Wrapf(access.AddWrite(s.id), "Write[%s]", zero.Name())
	}
	return eris.Wrapf(access.AddRead(s.id), "Read[%s]", zero.Name())
}

func (s *accessState[T]) newFetch(ws *worldState) termFetch {
	f := &cursorFetch[T]{handle: newComponentFetch[T](ws, s.id, s.storage)}
	s.publish(f)
	return f
}
