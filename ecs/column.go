package ecs

import (
	"github.com/argus-labs/ecsfilter/assert"
)

// columnFactory is a function that creates a new abstractColumn instance.
type columnFactory func() abstractColumn

// abstractColumn is an internal interface for generic column operations.
type abstractColumn interface {
	len() int
	name() string
	extend()

	setAbstract(row int, component Component)
	getAbstract(row int) Component
	remove(row int)
}

var _ abstractColumn = &column[Component]{}

const columnCapacity = 16

// column stores the component data of entities in an archetype. The length of the components slice
// must match the length of the entities slice in the archetype.
type column[T Component] struct {
	compName   string // The name of the component stored in this column
	components []T    // Array containing the component data
}

// newColumn creates a new column with the specified type.
func newColumn[T Component]() column[T] {
	var zero T
	return column[T]{
		compName:   zero.Name(),
		components: make([]T, 0, columnCapacity),
	}
}

// newColumnFactory returns a function that constructs a new column of type T.
func newColumnFactory[T Component]() columnFactory {
	return func() abstractColumn {
		col := newColumn[T]()
		return &col
	}
}

// len returns the length of the components slice.
func (c *column[T]) len() int {
	return len(c.components)
}

// name returns the name of the component type.
func (c *column[T]) name() string {
	return c.compName
}

// extend adds a new row to the components slice and initializes it with the zero value.
func (c *column[T]) extend() {
	// Double the capacity when the capacity is reached.
	if len(c.components) == cap(c.components) {
		newCap := max(cap(c.components)*2, columnCapacity)
		newComponents := make([]T, len(c.components), newCap)
		copy(newComponents, c.components)
		c.components = newComponents
	}

	var zero T
	c.components = append(c.components, zero)
}

// set sets the component in a given row. A row corresponds to a single entity. Whenever possible
// prefer this method over setAbstract since it avoids the type assertion and avoids boxing the
// component data, which does allocations.
func (c *column[T]) set(row int, component T) {
	assert.That(row < len(c.components), "column isn't extended when entity is created")
	c.components[row] = component
}

// setAbstract sets the component in a given row. Use this method only when you don't know the
// concrete type of the component.
func (c *column[T]) setAbstract(row int, component Component) {
	concrete, ok := component.(T)
	assert.That(ok, "tried to set the wrong component type")
	c.set(row, concrete)
}

// get gets the value from a given row. Expects the caller to make sure the row is inside the column.
func (c *column[T]) get(row int) T {
	assert.That(row < len(c.components), "component doesn't exist")
	return c.components[row]
}

// getAbstract gets the value from a given row. Use this method only when you don't know the
// concrete type of the component.
func (c *column[T]) getAbstract(row int) Component {
	return c.get(row)
}

// remove removes a given row. A remove swaps the last value in the slice with the row to remove.
func (c *column[T]) remove(row int) {
	assert.That(row < len(c.components), "tried to remove component that doesn't exist")

	lastIndex := len(c.components) - 1

	// Removing a component is the same as moving the entity to another archetype.
	// Swap the component to remove with the last component in the array.
	c.components[row] = c.components[lastIndex]
	// Truncate the array to remove the last component.
	var zero T
	c.components[lastIndex] = zero
	c.components = c.components[:lastIndex]
}

// view returns the column's values as a slice of exactly rows elements, with its capacity capped so
// appends through the view can never alias the column. The length is validated here once, which
// lets callers index the view per row without re-checking it against the archetype.
func (c *column[T]) view(rows int) []T {
	assert.That(len(c.components) == rows,
		"column %s has %d rows, archetype has %d entities", c.compName, len(c.components), rows)
	return c.components[:rows:rows]
}
