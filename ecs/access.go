package ecs

import (
	"github.com/kelindar/bitmap"
	"github.com/rotisserie/eris"
)

// Access accumulates the components a query or system reads and writes. A query builds one while it
// compiles, asking each term in order to add its accesses. The scheduler uses it to decide which
// systems may run at the same time.
type Access struct {
	reads     bitmap.Bitmap
	writes    bitmap.Bitmap
	exclusive bool // Conflicts with every other access
}

// AddRead records shared access to a component. Fails with ErrAccessConflict if the accumulator
// already holds exclusive access to it.
func (a *Access) AddRead(cid ComponentID) error {
	if a.writes.Contains(cid) {
		return eris.Wrapf(ErrAccessConflict, "component %d is read and written", cid)
	}
	a.reads.Set(cid)
	return nil
}

// AddWrite records exclusive access to a component. Fails with ErrAccessConflict if the accumulator
// already holds any access to it.
func (a *Access) AddWrite(cid ComponentID) error {
	if a.writes.Contains(cid) {
		return eris.Wrapf(ErrAccessConflict, "component %d is written twice", cid)
	}
	if a.reads.Contains(cid) {
		return eris.Wrapf(ErrAccessConflict, "component %d is read and written", cid)
	}
	a.writes.Set(cid)
	return nil
}

// HasRead returns true if the component is read.
func (a *Access) HasRead(cid ComponentID) bool {
	return a.reads.Contains(cid)
}

// HasWrite returns true if the component is written.
func (a *Access) HasWrite(cid ComponentID) bool {
	return a.writes.Contains(cid)
}

// SetExclusive makes the access conflict with every other access, for systems that make structural
// changes.
func (a *Access) SetExclusive() {
	a.exclusive = true
}

// IsCompatible returns true if both accesses can be held at the same time: neither is exclusive and
// no component written by one is read or written by the other.
func (a *Access) IsCompatible(other *Access) bool {
	if a.exclusive || other.exclusive {
		return false
	}
	return !intersects(a.writes, other.writes) &&
		!intersects(a.writes, other.reads) &&
		!intersects(a.reads, other.writes)
}

// Extend merges other into a. Unlike AddRead and AddWrite it never fails, since the accesses of
// different queries of one system don't overlap in time.
func (a *Access) Extend(other *Access) {
	a.reads.Or(other.reads)
	a.writes.Or(other.writes)
	a.exclusive = a.exclusive || other.exclusive
}

// Clone returns a deep copy of the access.
func (a *Access) Clone() Access {
	return Access{
		reads:     a.reads.Clone(nil),
		writes:    a.writes.Clone(nil),
		exclusive: a.exclusive,
	}
}

func intersects(a, b bitmap.Bitmap) bool {
	found := false
	a.Range(func(x uint32) {
		if !found && b.Contains(x) {
			found = true
		}
	})
	return found
}
