package ecs

import (
	"github.com/argus-labs/ecsfilter/assert"
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// worldState holds the component registry, the entities, and the storage of their components.
type worldState struct {
	components componentManager      // Component type registry
	entities   entityManager         // Manages entity IDs and archetype mappings
	archetypes []*archetype          // All archetypes, the index is the archetype ID
	sparse     []abstractSparseStore // Component ID -> sparse store, nil for dense components
	version    uint64                // Bumped on every structural change
}

// newWorldState creates a new world state.
func newWorldState() *worldState {
	return &worldState{
		components: newComponentManager(),
		entities:   newEntityManager(),
		archetypes: make([]*archetype, 0),
		sparse:     make([]abstractSparseStore, 0),
	}
}

// registerComponent registers a component type and allocates its sparse store if it's sparse.
func (ws *worldState) registerComponent(info componentInfo) (ComponentID, error) {
	cid, added, err := ws.components.register(info)
	if err != nil {
		return 0, err
	}
	if !added {
		return cid, nil
	}

	var store abstractSparseStore
	if info.storage == StorageSparse {
		store = info.newSparse()
	}
	ws.sparse = append(ws.sparse, store)
	assert.That(len(ws.sparse) == len(ws.components.infos), "sparse stores out of sync with components")
	return cid, nil
}

// sparseStore returns the sparse store of a component, or nil if the component is dense.
func (ws *worldState) sparseStore(cid ComponentID) abstractSparseStore {
	if int(cid) >= len(ws.sparse) {
		return nil
	}
	return ws.sparse[cid]
}

// sparseStoreFor returns the typed sparse store of component T, or nil if there is none.
func sparseStoreFor[T Component](ws *worldState, cid ComponentID) *sparseStore[T] {
	store := ws.sparseStore(cid)
	if store == nil {
		return nil
	}
	typed, ok := store.(*sparseStore[T])
	assert.That(ok, "sparse store type mismatch for component %s", store.name())
	return typed
}

// findOrCreateArchetype finds an existing archetype that matches the component types or creates a
// new archetype if none match.
func (ws *worldState) findOrCreateArchetype(components bitmap.Bitmap) *archetype {
	if arch := ws.archExact(components); arch != nil {
		return arch
	}

	arch := newArchetype(archetypeID(len(ws.archetypes)), components, &ws.components)
	ws.archetypes = append(ws.archetypes, arch)
	return arch
}

// archExact returns the archetype that exactly matches the given component types.
func (ws *worldState) archExact(components bitmap.Bitmap) *archetype {
	for _, arch := range ws.archetypes {
		if arch.exact(components) {
			return arch
		}
	}
	return nil
}

// toComponentBitmap resolves the IDs of registered components into a bitmap.
func (ws *worldState) toComponentBitmap(comps []Component) (bitmap.Bitmap, error) {
	var bm bitmap.Bitmap
	for _, c := range comps {
		cid, err := ws.components.getID(c.Name())
		if err != nil {
			return nil, err
		}
		if bm.Contains(cid) {
			return nil, eris.Errorf("duplicate component %s", c.Name())
		}
		bm.Set(cid)
	}
	return bm, nil
}

// -------------------------------------------------------------------------------------------------
// Entity operations
// -------------------------------------------------------------------------------------------------

// newEntity creates an entity with the given components, which must all be registered.
func (ws *worldState) newEntity(comps []Component) (EntityID, error) {
	compBitmap, err := ws.toComponentBitmap(comps)
	if err != nil {
		return 0, eris.Wrap(err, "failed to create component bitmap")
	}

	arch := ws.findOrCreateArchetype(compBitmap)
	eid, row, err := ws.entities.new(arch)
	if err != nil {
		return 0, err
	}

	for _, c := range comps {
		cid, _ := ws.components.getID(c.Name())
		if store := ws.sparseStore(cid); store != nil {
			store.setAbstract(eid, c)
			continue
		}
		arch.column(cid).setAbstract(row, c)
	}

	ws.version++
	return eid, nil
}

// removeEntity removes an entity and all of its components.
func (ws *worldState) removeEntity(eid EntityID) error {
	arch, err := ws.entities.getArchetype(eid)
	if err != nil {
		return err
	}

	arch.components.Range(func(cid uint32) {
		if store := ws.sparseStore(cid); store != nil {
			store.remove(eid)
		}
	})

	if err := ws.entities.remove(eid); err != nil {
		return err
	}
	ws.version++
	return nil
}

// setComponent sets the entity's value of component T. If the entity doesn't have T yet, it moves to
// the archetype that includes T.
func setComponent[T Component](ws *worldState, cid ComponentID, eid EntityID, component T) error {
	arch, err := ws.entities.getArchetype(eid)
	if err != nil {
		return err
	}

	if !arch.has(cid) {
		components := arch.components.Clone(nil)
		components.Set(cid)
		arch = ws.findOrCreateArchetype(components)
		if _, err := ws.entities.move(eid, arch); err != nil {
			return err
		}
		ws.version++
	}

	if store := sparseStoreFor[T](ws, cid); store != nil {
		store.set(eid, component)
		return nil
	}

	row, ok := arch.rows.get(eid)
	assert.That(ok, "entity is not in its archetype")
	getColumn[T](arch, cid).set(row, component)
	return nil
}

// getComponent returns the entity's value of component T.
func getComponent[T Component](ws *worldState, cid ComponentID, eid EntityID) (T, error) {
	var zero T

	arch, err := ws.entities.getArchetype(eid)
	if err != nil {
		return zero, err
	}
	if !arch.has(cid) {
		return zero, eris.Wrapf(ErrComponentNotFound, "entity %d has no component %s", eid, zero.Name())
	}

	if store := sparseStoreFor[T](ws, cid); store != nil {
		value, ok := store.get(eid)
		assert.That(ok, "entity %d is missing from sparse store %s", eid, store.name())
		return *value, nil
	}

	row, ok := arch.rows.get(eid)
	assert.That(ok, "entity is not in its archetype")
	return getColumn[T](arch, cid).get(row), nil
}

// removeComponent removes component cid from the entity, moving it to the archetype without it.
func (ws *worldState) removeComponent(cid ComponentID, eid EntityID) error {
	arch, err := ws.entities.getArchetype(eid)
	if err != nil {
		return err
	}
	if !arch.has(cid) {
		return eris.Wrapf(ErrComponentNotFound, "entity %d has no component %d", eid, cid)
	}

	components := arch.components.Clone(nil)
	components.Remove(cid)
	if _, err := ws.entities.move(eid, ws.findOrCreateArchetype(components)); err != nil {
		return err
	}
	if store := ws.sparseStore(cid); store != nil {
		store.remove(eid)
	}

	ws.version++
	return nil
}
