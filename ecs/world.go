package ecs

import (
	"reflect"

	"github.com/argus-labs/ecsfilter/schema"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// World represents the root ECS state.
type World struct {
	state *worldState

	logger  zerolog.Logger
	schemas schema.Storage // Optional, checks component definitions across runs

	// Systems.
	initialized bool               // Set by Init, systems can't be registered afterwards
	initDone    bool               // Tracks if init systems have been executed
	initSystems []initSystem       // Initialization systems, run once during the first tick
	scheduler   [3]systemScheduler // Systems schedulers (PreUpdate, Update, PostUpdate)
}

// NewWorld creates a new World instance.
func NewWorld(opts ...WorldOption) *World {
	world := &World{
		state:       newWorldState(),
		logger:      zerolog.Nop(),
		initSystems: make([]initSystem, 0),
		scheduler:   [3]systemScheduler{},
	}

	for i := range world.scheduler {
		world.scheduler[i] = newSystemScheduler()
	}

	for _, opt := range opts {
		opt(world)
	}

	return world
}

// Init initializes the system schedulers by creating their schedules.
func (w *World) Init() {
	for i := range w.scheduler {
		w.scheduler[i].createSchedule()
	}
	w.initialized = true
	w.logger.Debug().
		Int("pre_update", len(w.scheduler[PreUpdate].systems)).
		Int("update", len(w.scheduler[Update].systems)).
		Int("post_update", len(w.scheduler[PostUpdate].systems)).
		Msg("world initialized")
}

// Tick executes the registered systems in order. The first tick only runs the init systems. If any
// system returns an error, the tick stops at the end of the failing hook and the error is returned.
func (w *World) Tick() error {
	if !w.initialized {
		return eris.New("world must be initialized before ticking")
	}

	// Run init systems once on first tick.
	if !w.initDone {
		for _, system := range w.initSystems {
			if err := system.fn(); err != nil {
				w.logger.Error().Err(err).Str("system", system.name).Msg("init system failed")
				return eris.Wrapf(err, "init system %s failed", system.name)
			}
		}
		w.initDone = true
		return nil
	}

	for i := range w.scheduler {
		if err := w.scheduler[i].Run(); err != nil {
			w.logger.Error().Err(err).Stringer("hook", SystemHook(i)).Msg("tick failed")
			return err
		}
	}

	return nil
}

// Logger returns the world's logger.
func (w *World) Logger() *zerolog.Logger {
	return &w.logger
}

// ComponentTypes returns a map of component names to their reflect.Type.
func (w *World) ComponentTypes() map[string]reflect.Type {
	types := make(map[string]reflect.Type, len(w.state.components.infos))
	for _, info := range w.state.components.infos {
		types[info.name] = info.typ
	}
	return types
}

// ComponentStorage returns the storage type of a registered component.
func (w *World) ComponentStorage(name string) (StorageType, error) {
	cid, err := w.state.components.getID(name)
	if err != nil {
		return 0, err
	}
	return w.state.components.info(cid).storage, nil
}
