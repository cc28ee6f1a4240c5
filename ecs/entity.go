package ecs

import (
	"math"

	"github.com/argus-labs/ecsfilter/assert"
	"github.com/rotisserie/eris"
)

// EntityID is a unique identifier for an entity.
type EntityID uint32

// MaxEntityID is the maximum entity ID that can be created.
const MaxEntityID = math.MaxUint32 - 1

// entityManager manages entity IDs and references to their associated archetypes. This struct acts
// as an index from entity ID to its archetype to avoid iterating through all archetypes.
type entityManager struct {
	nextID     EntityID                // The next ID to allocate if no free IDs are available
	free       []EntityID              // A queue of free IDs
	entityArch map[EntityID]*archetype // Maps entity IDs to archetypes
}

// newEntityManager creates a new entity manager.
func newEntityManager() entityManager {
	return entityManager{
		nextID:     0,
		free:       make([]EntityID, 0),
		entityArch: make(map[EntityID]*archetype),
	}
}

// new allocates an entity ID and adds the entity to arch. Freed IDs are reused in FIFO order.
func (em *entityManager) new(arch *archetype) (EntityID, int, error) {
	assert.That(arch != nil, "archetype must not be nil")

	var id EntityID
	if len(em.free) > 0 {
		id = em.free[0]
		em.free = em.free[1:]
	} else {
		id = em.nextID
		if id > MaxEntityID {
			return 0, 0, eris.New("max number of entities exceeded")
		}
		em.nextID++
	}

	row := arch.newEntity(id)
	em.entityArch[id] = arch
	return id, row, nil
}

// remove removes the entity from its archetype and marks its ID as available for reuse.
func (em *entityManager) remove(id EntityID) error {
	arch, exists := em.entityArch[id]
	if !exists {
		return eris.Wrapf(ErrEntityNotFound, "entity %d", id)
	}

	arch.removeEntity(id)
	em.free = append(em.free, id)
	delete(em.entityArch, id)
	return nil
}

// move moves an entity to another archetype and returns its new row.
func (em *entityManager) move(id EntityID, newArch *archetype) (int, error) {
	current, err := em.getArchetype(id)
	if err != nil {
		return 0, err
	}
	assert.That(current.id != newArch.id, "entity moved into its existing archetype")

	row := current.moveEntity(newArch, id)
	em.entityArch[id] = newArch
	return row, nil
}

// isAlive checks if an entity ID is currently active.
func (em *entityManager) isAlive(id EntityID) bool {
	_, exists := em.entityArch[id]
	return exists
}

// getArchetype returns the archetype associated with the given entity.
func (em *entityManager) getArchetype(id EntityID) (*archetype, error) {
	arch, exists := em.entityArch[id]
	if !exists {
		return nil, eris.Wrapf(ErrEntityNotFound, "entity %d", id)
	}
	return arch, nil
}
