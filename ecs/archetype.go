package ecs

import (
	"github.com/argus-labs/ecsfilter/assert"
	"github.com/kelindar/bitmap"
)

// archetypeID is the unique identifier for an archetype.
type archetypeID = int

// archetype represents a collection of entities with the same component types.
// The components bitmap holds both dense and sparse component IDs, but only dense components get a
// column. Sparse values live in the world's sparse stores and only flip the bit here.
// NOTE: We store compCount instead of using Bitmap.Count() because counting bits is O(n).
type archetype struct {
	id         archetypeID   // Corresponds to the index in the archetypes array
	components bitmap.Bitmap // Bitmap of components contained in this archetype
	rows       sparseSet
	entities   []EntityID       // List of entities of this archetype
	columns    []abstractColumn // Dense columns, parallel to columnIDs
	columnIDs  []ComponentID
	compCount  int // Number of component types in the archetype, dense and sparse
}

// newArchetype creates an archetype for the given component types. cm provides the column
// factories of the dense components.
func newArchetype(aid archetypeID, components bitmap.Bitmap, cm *componentManager) *archetype {
	arch := &archetype{
		id:         aid,
		components: components,
		rows:       newSparseSet(),
		entities:   make([]EntityID, 0),
		columns:    make([]abstractColumn, 0),
		columnIDs:  make([]ComponentID, 0),
		compCount:  components.Count(),
	}
	components.Range(func(cid uint32) {
		info := cm.info(cid)
		if info.storage != StorageDense {
			return
		}
		arch.columns = append(arch.columns, info.newColumn())
		arch.columnIDs = append(arch.columnIDs, cid)
	})
	return arch
}

// exact returns true if the given components matches the archetype's exactly.
func (a *archetype) exact(components bitmap.Bitmap) bool {
	if a.compCount != components.Count() {
		return false
	}
	return a.contains(components)
}

// contains returns true if the archetype contains all of the components in the given components.
func (a *archetype) contains(components bitmap.Bitmap) bool {
	intersect := components.Clone(nil)
	intersect.And(a.components)
	return intersect.Count() == components.Count()
}

// has returns true if the archetype contains the component.
func (a *archetype) has(cid ComponentID) bool {
	return a.components.Contains(cid)
}

// column returns the dense column of a component, or nil if the archetype has none.
func (a *archetype) column(cid ComponentID) abstractColumn {
	for i, id := range a.columnIDs {
		if id == cid {
			return a.columns[i]
		}
	}
	return nil
}

// len returns the number of entities in the archetype.
func (a *archetype) len() int {
	return len(a.entities)
}

// getColumn returns the typed dense column of component T. Expects the caller to have checked that
// the archetype has the component and that it's dense.
func getColumn[T Component](a *archetype, cid ComponentID) *column[T] {
	col := a.column(cid)
	assert.That(col != nil, "archetype %d has no column for component %d", a.id, cid)
	typed, ok := col.(*column[T])
	assert.That(ok, "column type mismatch for component %s", col.name())
	return typed
}

// -------------------------------------------------------------------------------------------------
// Entity operations
// -------------------------------------------------------------------------------------------------

// newEntity adds the entity to the archetype and returns its row. It initializes the entity's
// components with their zero values so the length of each column matches the entities slice.
func (a *archetype) newEntity(eid EntityID) int {
	a.entities = append(a.entities, eid)

	for _, column := range a.columns {
		column.extend()
		assert.That(column.len() == len(a.entities), "column components length doesn't match entities")
	}

	row := len(a.entities) - 1
	a.rows.set(eid, row)
	return row
}

// removeEntity removes an entity from the archetype. A remove swaps the last entity in the slice
// with the entity to remove. Expects the caller to check that the entity belongs to this archetype.
func (a *archetype) removeEntity(eid EntityID) {
	row, exists := a.rows.get(eid)
	assert.That(exists, "entity is not in archetype")

	lastIndex := len(a.entities) - 1

	a.entities[row] = a.entities[lastIndex]
	a.entities = a.entities[:lastIndex]

	for _, column := range a.columns {
		column.remove(row)
		assert.That(column.len() == len(a.entities), "column components length doesn't match entities")
	}

	ok := a.rows.remove(eid)
	assert.That(ok, "entity isn't removed from sparse set")

	if row == lastIndex {
		return
	}

	// Point the swapped entity at its new row.
	movedID := a.entities[row]
	a.rows.set(movedID, row)
}

// moveEntity moves an entity to the destination archetype, copying the dense components both
// archetypes share, and returns the entity's row in the destination.
func (a *archetype) moveEntity(destination *archetype, eid EntityID) int {
	row, exists := a.rows.get(eid)
	assert.That(exists, "entity is not in archetype")

	newRow := destination.newEntity(eid)

	for i, src := range a.columns {
		dst := destination.column(a.columnIDs[i])
		if dst == nil {
			continue
		}
		dst.setAbstract(newRow, src.getAbstract(row))
	}

	a.removeEntity(eid)
	return newRow
}
