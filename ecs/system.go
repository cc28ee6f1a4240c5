package ecs

import "github.com/rotisserie/eris"

// System is a function that contains game logic. It reads and writes the world through the queries
// it was registered with.
type System func() error

// initSystem represents a system that should be run once during world initialization.
type initSystem struct {
	name string
	fn   System
}

// systemConfig holds all configurable options for system registration.
type systemConfig struct {
	hook      SystemHook // When the system runs
	queries   []*Query   // Queries whose accesses the system holds
	exclusive bool       // The system changes the world's structure
}

func newSystemConfig() systemConfig {
	return systemConfig{hook: Update}
}

// SystemOption is a function that configures a system.
type SystemOption func(*systemConfig)

// SystemHook defines when a system should be executed in the update cycle.
type SystemHook uint8

const (
	// PreUpdate runs before the main update.
	PreUpdate SystemHook = 0
	// Update runs during the main update phase.
	Update SystemHook = 1
	// PostUpdate runs after the main update.
	PostUpdate SystemHook = 2
	// Init runs once during world initialization.
	Init SystemHook = 3
)

func (h SystemHook) String() string {
	switch h {
	case PreUpdate:
		return "pre_update"
	case Update:
		return "update"
	case PostUpdate:
		return "post_update"
	case Init:
		return "init"
	default:
		return "unknown"
	}
}

// WithHook returns an option to set the system hook.
func WithHook(hook SystemHook) SystemOption {
	return func(cfg *systemConfig) { cfg.hook = hook }
}

// WithQueries declares the queries a system iterates. The scheduler runs the system in parallel
// only with systems whose queries don't conflict with these. A query can only be used by one system.
func WithQueries(queries ...*Query) SystemOption {
	return func(cfg *systemConfig) { cfg.queries = append(cfg.queries, queries...) }
}

// WithExclusive marks a system that adds or removes entities or components. It never runs in
// parallel with another system of the same hook.
func WithExclusive() SystemOption {
	return func(cfg *systemConfig) { cfg.exclusive = true }
}

// RegisterSystem registers a system with the world. Systems must be registered before Init.
func RegisterSystem(w *World, name string, fn System, opts ...SystemOption) error {
	if w.initialized {
		return eris.Errorf("cannot register system %s after the world is initialized", name)
	}

	cfg := newSystemConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	var access Access
	for _, q := range cfg.queries {
		if q.world != w {
			return eris.Errorf("system %s uses a query of another world", name)
		}
		if q.system != "" {
			return eris.Wrapf(ErrQueryInUse, "system %s uses the query of system %s", name, q.system)
		}
		access.Extend(&q.access)
	}
	if cfg.exclusive {
		access.SetExclusive()
	}

	switch cfg.hook {
	case Init:
		w.initSystems = append(w.initSystems, initSystem{name: name, fn: fn})
	case PreUpdate, Update, PostUpdate:
		w.scheduler[cfg.hook].register(name, access, fn)
	default:
		return eris.Errorf("invalid system hook %d", cfg.hook)
	}
	for _, q := range cfg.queries {
		q.system = name
	}

	w.logger.Debug().Str("system", name).Stringer("hook", cfg.hook).Bool("exclusive", cfg.exclusive).
		Msg("system registered")
	return nil
}
