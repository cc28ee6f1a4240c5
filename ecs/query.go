package ecs

import (
	"iter"

	"github.com/argus-labs/ecsfilter/assert"
	"github.com/rotisserie/eris"
)

// QueryTerm is one clause of a query: a filter on the entities it visits, optionally with access to
// one of their components.
type QueryTerm interface {
	// resolve binds the term to the world's component registry. Returns false if the term's
	// component isn't registered and register is false; such a term matches nothing.
	resolve(w *World, register bool) (termState, bool, error)
}

// termState is the compiled form of a term. It's immutable once resolved.
type termState interface {
	matchesComponentSet(contains func(ComponentID) bool) bool
	updateAccess(access *Access) error
	newFetch(ws *worldState) termFetch
}

// termFetch holds the per-execution handles of a term. A fetch is bound to one archetype at a time
// and tests rows of that archetype.
type termFetch interface {
	setArchetype(arch *archetype)
	test(eid EntityID, row int) bool
}

// Query iterates the entities that satisfy all of its terms. A query isn't safe for concurrent
// iteration: it belongs to at most one system, and its Read and Write terms belong to it alone.
type Query struct {
	world   *World
	system  string // Name of the system that uses the query, empty if none
	states  []termState
	access  Access
	never   bool         // A term refers to an unregistered component
	matched []*archetype // Archetypes matching every term
	seen    int          // Number of the world's archetypes already matched
}

// NewQuery compiles a query over the world, registering every component its terms refer to.
// Returns an error wrapping ErrAccessConflict if two terms access a component incompatibly.
func NewQuery(w *World, terms ...QueryTerm) (*Query, error) {
	return compileQuery(w, true, terms)
}

// NewLookupQuery compiles a query without registering components. A query that requires a
// component the world never registered yields nothing.
func NewLookupQuery(w *World, terms ...QueryTerm) (*Query, error) {
	return compileQuery(w, false, terms)
}

func compileQuery(w *World, register bool, terms []QueryTerm) (*Query, error) {
	q := &Query{world: w, states: make([]termState, 0, len(terms))}

	for i, term := range terms {
		state, ok, err := term.resolve(w, register)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to resolve query term %d", i)
		}
		if !ok {
			q.never = true
			continue
		}
		if err := state.updateAccess(&q.access); err != nil {
			w.logger.Warn().Err(err).Int("term", i).Msg("query access conflict")
			return nil, err
		}
		q.states = append(q.states, state)
	}

	w.logger.Debug().Int("terms", len(terms)).Bool("never", q.never).Msg("query compiled")
	return q, nil
}

// Access returns a copy of the components the query reads and writes.
func (q *Query) Access() Access {
	return q.access.Clone()
}

// Iter returns an iterator over the matching entities. Every call starts a new execution with fresh
// handles. Component values may be changed while iterating, but adding or removing entities or
// components panics.
func (q *Query) Iter() iter.Seq[EntityID] {
	return func(yield func(EntityID) bool) {
		if q.never {
			return
		}
		q.refresh()

		ws := q.world.state
		version := ws.version
		fetches := make([]termFetch, len(q.states))
		for i, state := range q.states {
			fetches[i] = state.newFetch(ws)
		}

		for _, arch := range q.matched {
			if arch.len() == 0 {
				continue
			}
			for _, f := range fetches {
				f.setArchetype(arch)
			}
			for row, eid := range arch.entities {
				if !testAll(fetches, eid, row) {
					continue
				}
				if !yield(eid) {
					return
				}
				if ws.version != version {
					panicStructuralChange()
				}
			}
		}
	}
}

// Count returns the number of matching entities.
func (q *Query) Count() int {
	count := 0
	for range q.Iter() {
		count++
	}
	return count
}

// First returns the first matching entity, if any.
func (q *Query) First() (EntityID, bool) {
	for eid := range q.Iter() {
		return eid, true
	}
	return 0, false
}

// refresh matches the archetypes created since the last execution.
func (q *Query) refresh() {
	archetypes := q.world.state.archetypes
	for ; q.seen < len(archetypes); q.seen++ {
		arch := archetypes[q.seen]
		if q.matches(arch) {
			q.matched = append(q.matched, arch)
		}
	}
}

func (q *Query) matches(arch *archetype) bool {
	for _, state := range q.states {
		if !state.matchesComponentSet(arch.has) {
			return false
		}
	}
	return true
}

func testAll(fetches []termFetch, eid EntityID, row int) bool {
	for _, f := range fetches {
		if !f.test(eid, row) {
			return false
		}
	}
	return true
}

func panicStructuralChange() {
	assert.That(false, "entities or components were added or removed while iterating a query")
}
