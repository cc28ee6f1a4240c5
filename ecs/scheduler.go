package ecs

import (
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// systemMetadata contains the metadata for a system.
type systemMetadata struct {
	name   string       // The name of the system
	access Access       // Union of the accesses of the system's queries
	fn     func() error // The system function
}

// systemScheduler manages the execution of systems in a dependency-aware concurrent manner.
// Two systems are ordered by registration only if their accesses conflict, every other pair may run
// in parallel.
type systemScheduler struct {
	systems        []systemMetadata // The systems to run
	tier0          []int            // The first execution tier
	graph          map[int][]int    // Mapping of systems -> systems that depend on it
	activeIndegree uint8            // Determines which indegree is currently active (0 or 1)
	// indegree0 and indegree1 are double-buffered counters tracking remaining dependencies
	// for each system. They alternate between runs to avoid reinitialization.
	indegree0 []atomic.Int32
	indegree1 []atomic.Int32
}

// newSystemScheduler creates a new system scheduler.
func newSystemScheduler() systemScheduler {
	return systemScheduler{
		systems:        make([]systemMetadata, 0),
		tier0:          make([]int, 0),
		graph:          make(map[int][]int),
		activeIndegree: 0,
	}
}

// register registers a system with the scheduler.
func (s *systemScheduler) register(name string, access Access, fn func() error) {
	s.systems = append(s.systems, systemMetadata{name: name, access: access, fn: fn})
}

// Run executes the systems in the order of their dependencies. It returns an error if any system
// returns an error. Every system runs even if another one fails.
func (s *systemScheduler) Run() error {
	if len(s.systems) == 0 {
		return nil
	}

	executionQueue := make(chan int, len(s.systems))
	defer close(executionQueue)

	currentIndegree, nextIndegree := s.getCurrentAndNextIndegrees()
	g := new(errgroup.Group)

	for _, systemID := range s.tier0 {
		executionQueue <- systemID
	}

	for range s.systems {
		systemID := <-executionQueue
		g.Go(func() error {
			// Don't return early so that the dependent systems still get scheduled.
			var err error
			if err = s.systems[systemID].fn(); err != nil {
				err = eris.Wrapf(err, "system %s failed", s.systems[systemID].name)
			}

			for _, dependent := range s.graph[systemID] {
				remainingDeps := currentIndegree[dependent].Add(-1)
				nextIndegree[dependent].Add(1)

				if remainingDeps == 0 {
					executionQueue <- dependent
				}
			}

			return err
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "system returned an error")
	}
	return nil
}

// getCurrentAndNextIndegrees returns the current and next indegrees. It also switches the active
// indegree buffer with the next one.
func (s *systemScheduler) getCurrentAndNextIndegrees() ([]atomic.Int32, []atomic.Int32) {
	isFirstBuffer := s.activeIndegree == 0
	s.activeIndegree = 1 - s.activeIndegree

	if isFirstBuffer {
		return s.indegree0, s.indegree1
	}
	return s.indegree1, s.indegree0
}

// createSchedule initializes the dependency graph and execution schedule for the systems.
// Must be called after all systems are registered and before the first Run.
func (s *systemScheduler) createSchedule() {
	graph, indegree := buildDependencyGraph(s.systems)
	s.graph = graph

	s.indegree0 = make([]atomic.Int32, len(s.systems))
	s.indegree1 = make([]atomic.Int32, len(s.systems))

	for k, v := range indegree {
		s.indegree0[k].Store(int32(v)) //nolint:gosec // Won't overflow
	}

	s.tier0 = getFirstTier(s.systems, indegree)
}

// buildDependencyGraph creates a DAG of systems where a system depends on every earlier system
// whose access conflicts with its own. Systems that only read the same components stay unordered.
func buildDependencyGraph(systems []systemMetadata) (map[int][]int, map[int]int) {
	graph := make(map[int][]int, len(systems))
	indegree := make(map[int]int, len(systems))

	for systemA := range len(systems) - 1 {
		for systemB := systemA + 1; systemB < len(systems); systemB++ {
			if !systems[systemA].access.IsCompatible(&systems[systemB].access) {
				graph[systemA] = append(graph[systemA], systemB)
				indegree[systemB]++
			}
		}
	}

	return graph, indegree
}

// getFirstTier returns the list of systems without any dependencies.
func getFirstTier(systems []systemMetadata, indegree map[int]int) []int {
	var currentTier []int
	for systemID := range systems {
		if indegree[systemID] == 0 {
			currentTier = append(currentTier, systemID)
		}
	}
	return currentTier
}
