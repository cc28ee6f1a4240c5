package ecs

import "github.com/argus-labs/ecsfilter/assert"

type sparseSet []int

const sparseCapacity = 128
const sparseTombstone = -1

// newSparseSet creates a new sparse set.
func newSparseSet() sparseSet {
	s := make(sparseSet, sparseCapacity)
	for i := range sparseCapacity {
		s[i] = sparseTombstone
	}
	return s
}

// get returns the value for a key and whether it exists.
func (s *sparseSet) get(key EntityID) (int, bool) {
	if int(key) >= len(*s) {
		return 0, false
	}

	value := (*s)[key]
	if value == sparseTombstone {
		return 0, false
	}

	return value, true
}

// set stores a value for a key, growing the backing slice if needed.
func (s *sparseSet) set(key EntityID, value int) {
	assert.That(value >= 0, "value must be a non-negative row index")

	if int(key) >= len(*s) { // Grow slice if needed
		oldLen := len(*s)
		newLen := max(oldLen*2, int(key)+1)

		newSlice := make(sparseSet, newLen)
		copy(newSlice, *s)
		for i := oldLen; i < newLen; i++ {
			newSlice[i] = sparseTombstone
		}
		*s = newSlice
	}

	(*s)[key] = value
}

// remove sets a key's value to tombstone. Returns true if the key existed.
func (s *sparseSet) remove(key EntityID) bool {
	if int(key) >= len(*s) {
		return false
	}

	if (*s)[key] == sparseTombstone {
		return false
	}

	(*s)[key] = sparseTombstone
	return true
}

// -------------------------------------------------------------------------------------------------
// Sparse component store
// -------------------------------------------------------------------------------------------------

// sparseStoreFactory is a function that creates a new abstractSparseStore instance.
type sparseStoreFactory func() abstractSparseStore

// abstractSparseStore is an internal interface for generic sparse store operations.
type abstractSparseStore interface {
	len() int
	name() string
	has(eid EntityID) bool

	setAbstract(eid EntityID, component Component)
	getAbstract(eid EntityID) (Component, bool)
	remove(eid EntityID) bool
}

var _ abstractSparseStore = &sparseStore[Component]{}

// sparseStore holds the values of a sparse component for every entity that has it, independent of
// the entity's archetype. Values are packed; index maps an entity to its slot in values and
// entities, which always have the same length.
type sparseStore[T Component] struct {
	compName string
	index    sparseSet
	entities []EntityID
	values   []T
}

// newSparseStore creates an empty sparse store for component type T.
func newSparseStore[T Component]() *sparseStore[T] {
	var zero T
	return &sparseStore[T]{
		compName: zero.Name(),
		index:    newSparseSet(),
		entities: make([]EntityID, 0),
		values:   make([]T, 0),
	}
}

// newSparseStoreFactory returns a function that constructs a new sparse store of type T.
func newSparseStoreFactory[T Component]() sparseStoreFactory {
	return func() abstractSparseStore {
		return newSparseStore[T]()
	}
}

func (s *sparseStore[T]) len() int {
	return len(s.values)
}

func (s *sparseStore[T]) name() string {
	return s.compName
}

func (s *sparseStore[T]) has(eid EntityID) bool {
	_, ok := s.index.get(eid)
	return ok
}

// get returns a pointer to the entity's value. The pointer is valid until the next set or remove.
func (s *sparseStore[T]) get(eid EntityID) (*T, bool) {
	slot, ok := s.index.get(eid)
	if !ok {
		return nil, false
	}
	return &s.values[slot], true
}

// set inserts or overwrites the entity's value.
func (s *sparseStore[T]) set(eid EntityID, component T) {
	if slot, ok := s.index.get(eid); ok {
		s.values[slot] = component
		return
	}
	s.entities = append(s.entities, eid)
	s.values = append(s.values, component)
	s.index.set(eid, len(s.values)-1)
}

func (s *sparseStore[T]) setAbstract(eid EntityID, component Component) {
	concrete, ok := component.(T)
	assert.That(ok, "tried to set the wrong component type")
	s.set(eid, concrete)
}

func (s *sparseStore[T]) getAbstract(eid EntityID) (Component, bool) {
	value, ok := s.get(eid)
	if !ok {
		return nil, false
	}
	return *value, true
}

// remove deletes the entity's value by swapping the last value into its slot. Returns true if the
// entity had a value.
func (s *sparseStore[T]) remove(eid EntityID) bool {
	slot, ok := s.index.get(eid)
	if !ok {
		return false
	}

	lastIndex := len(s.values) - 1
	s.values[slot] = s.values[lastIndex]
	s.entities[slot] = s.entities[lastIndex]

	var zero T
	s.values[lastIndex] = zero
	s.values = s.values[:lastIndex]
	s.entities = s.entities[:lastIndex]

	s.index.remove(eid)
	if slot != lastIndex {
		s.index.set(s.entities[slot], slot)
	}
	return true
}
