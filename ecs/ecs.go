package ecs

import "github.com/rotisserie/eris"

// RegisterComponent registers component type T with the world. Registering a component twice is a
// no-op. Returns ErrStorageMismatch if another type already registered the name with a different
// storage type.
func RegisterComponent[T Component](w *World) error {
	_, err := registerComponent[T](w)
	return err
}

// Create creates an entity with the given components. Every component type must be registered.
func Create(w *World, comps ...Component) (EntityID, error) {
	return w.state.newEntity(comps)
}

// Destroy deletes an entity and all its components from the world.
func Destroy(w *World, eid EntityID) error {
	return w.state.removeEntity(eid)
}

// Alive checks if an entity exists in the world.
func Alive(w *World, eid EntityID) bool {
	return w.state.entities.isAlive(eid)
}

// Set sets a component on an entity. If the entity contains the component type, it will update the
// value. If it doesn't, it will add the component, registering the type if needed.
func Set[T Component](w *World, eid EntityID, component T) error {
	cid, err := registerComponent[T](w)
	if err != nil {
		return err
	}
	return setComponent(w.state, cid, eid, component)
}

// Get gets a component from an entity.
// Returns an error if the entity doesn't exist or doesn't contain the component type.
func Get[T Component](w *World, eid EntityID) (T, error) {
	cid, ok := lookupComponent[T](w)
	if !ok {
		var zero T
		return zero, eris.Wrapf(ErrComponentNotFound, "component %s is not registered", zero.Name())
	}
	return getComponent[T](w.state, cid, eid)
}

// Remove removes a component from an entity.
// Returns an error if the entity or the component to remove doesn't exist.
func Remove[T Component](w *World, eid EntityID) error {
	cid, ok := lookupComponent[T](w)
	if !ok {
		var zero T
		return eris.Wrapf(ErrComponentNotFound, "component %s is not registered", zero.Name())
	}
	return w.state.removeComponent(cid, eid)
}

// Has checks if an entity has a specific component type.
// Returns false if either the entity doesn't exist or doesn't have the component.
func Has[T Component](w *World, eid EntityID) bool {
	cid, ok := lookupComponent[T](w)
	if !ok {
		return false
	}
	arch, err := w.state.entities.getArchetype(eid)
	if err != nil {
		return false
	}
	return arch.has(cid)
}
