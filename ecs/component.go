package ecs

import (
	"reflect"

	"github.com/argus-labs/ecsfilter/assert"
	"github.com/argus-labs/ecsfilter/schema"
	"github.com/rotisserie/eris"
)

// Component is the interface that all components must implement.
// Components are pure data containers that can be attached to entities.
type Component interface { //nolint:iface // We may add more methods in the future.
	// Name returns a unique string identifier for the component type.
	// This should be consistent across program executions.
	Name() string
}

// ComponentID is a unique identifier for a component type, assigned by the world on registration.
type ComponentID = uint32

// StorageType selects where the values of a component type live. It is fixed when the component is
// registered and never changes for the lifetime of the world.
type StorageType uint8

const (
	// StorageDense stores component values in per-archetype columns indexed by row.
	StorageDense StorageType = iota
	// StorageSparse stores component values in a single world-wide store keyed by entity ID. Use it
	// for components that are present on few entities or added and removed often.
	StorageSparse
)

func (s StorageType) String() string {
	switch s {
	case StorageDense:
		return "dense"
	case StorageSparse:
		return "sparse"
	default:
		return "unknown"
	}
}

// sparseComponent is implemented by components that opt into sparse storage.
type sparseComponent interface {
	SparseStorage()
}

// Sparse can be embedded in a component struct to store it in sparse storage.
//
// Example:
//
//	type Stunned struct {
//	    ecs.Sparse
//	    Ticks int
//	}
type Sparse struct{}

// SparseStorage marks the embedding component as sparse.
func (Sparse) SparseStorage() {}

// storageTypeOf returns the storage type declared by component type T.
func storageTypeOf[T Component]() StorageType {
	var zero T
	if _, ok := any(zero).(sparseComponent); ok {
		return StorageSparse
	}
	return StorageDense
}

// componentInfo is the registry metadata of a component type.
type componentInfo struct {
	name      string
	storage   StorageType
	typ       reflect.Type
	newColumn columnFactory      // Set for dense components
	newSparse sparseStoreFactory // Set for sparse components
}

// newComponentInfo builds the registry metadata for component type T.
func newComponentInfo[T Component]() componentInfo {
	var zero T
	info := componentInfo{
		name:    zero.Name(),
		storage: storageTypeOf[T](),
		typ:     reflect.TypeFor[T](),
	}
	switch info.storage {
	case StorageDense:
		info.newColumn = newColumnFactory[T]()
	case StorageSparse:
		info.newSparse = newSparseStoreFactory[T]()
	}
	return info
}

// record returns the schema record persisted for this component.
func (ci *componentInfo) record() (schema.Record, error) {
	return schema.Reflect(ci.name, ci.storage.String(), ci.typ)
}

// componentManager manages component type registration and lookup.
type componentManager struct {
	nextID  ComponentID            // The next available component ID
	catalog map[string]ComponentID // Component name -> component ID
	infos   []componentInfo        // Component ID -> component metadata
}

// newComponentManager creates a new component manager.
func newComponentManager() componentManager {
	return componentManager{
		nextID:  0,
		catalog: make(map[string]ComponentID),
		infos:   make([]componentInfo, 0),
	}
}

// register registers a new component type and returns its ID and whether it was newly added.
// If a component with the same name and storage type is already registered, no-op.
func (cm *componentManager) register(info componentInfo) (ComponentID, bool, error) {
	if info.name == "" {
		return 0, false, eris.New("component name cannot be empty")
	}

	if cid, exists := cm.catalog[info.name]; exists {
		if registered := cm.infos[cid].storage; registered != info.storage {
			return 0, false, eris.Wrapf(ErrStorageMismatch,
				"component %s is registered as %s, got %s", info.name, registered, info.storage)
		}
		return cid, false, nil
	}

	cm.catalog[info.name] = cm.nextID
	cm.infos = append(cm.infos, info)
	cm.nextID++
	assert.That(int(cm.nextID) == len(cm.infos), "component id doesn't match number of components")

	return cm.nextID - 1, true, nil
}

// getID returns a component's ID given a name.
func (cm *componentManager) getID(name string) (ComponentID, error) {
	id, exists := cm.catalog[name]
	if !exists {
		return 0, eris.Wrapf(ErrComponentNotFound, "component %s", name)
	}
	return id, nil
}

// info returns the metadata of a registered component.
func (cm *componentManager) info(id ComponentID) *componentInfo {
	assert.That(int(id) < len(cm.infos), "component %d is not registered", id)
	return &cm.infos[id]
}

// registerComponent registers component type T with the world, reconciling it against the world's
// schema storage if it has one. Registering an already registered component is a no-op.
func registerComponent[T Component](w *World) (ComponentID, error) {
	var zero T
	ws := w.state

	if cid, exists := ws.components.catalog[zero.Name()]; exists {
		if ws.components.infos[cid].storage == storageTypeOf[T]() {
			return cid, nil
		}
	}

	info := newComponentInfo[T]()
	if _, exists := ws.components.catalog[info.name]; !exists && w.schemas != nil && info.name != "" {
		rec, err := info.record()
		if err != nil {
			return 0, err
		}
		if err := schema.Reconcile(w.schemas, rec); err != nil {
			return 0, eris.Wrapf(err, "failed to reconcile schema of component %s", info.name)
		}
	}

	cid, err := ws.registerComponent(info)
	if err != nil {
		return 0, err
	}

	w.logger.Debug().
		Uint32("component_id", cid).
		Str("component_name", info.name).
		Stringer("storage", info.storage).
		Msg("component registered")
	return cid, nil
}

// lookupComponent returns the ID of component type T without registering it. Returns false if the
// world never registered T, or registered its name with a different storage type.
func lookupComponent[T Component](w *World) (ComponentID, bool) {
	var zero T
	cid, err := w.state.components.getID(zero.Name())
	if err != nil {
		return 0, false
	}
	if w.state.components.info(cid).storage != storageTypeOf[T]() {
		return 0, false
	}
	return cid, true
}

// resolveComponent registers or looks up component type T depending on register.
func resolveComponent[T Component](w *World, register bool) (ComponentID, bool, error) {
	if register {
		cid, err := registerComponent[T](w)
		if err != nil {
			return 0, false, err
		}
		return cid, true, nil
	}
	cid, ok := lookupComponent[T](w)
	return cid, ok, nil
}
