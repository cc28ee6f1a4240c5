package assert

import "fmt"

// That panics with the formatted message if cond is false. It guards invariants between the ECS
// and its callers, e.g. a query binding an archetype that its own pre-filter should have rejected.
// A failed assertion is a bug, never a recoverable condition.
func That(cond bool, format string, args ...any) { //nolint:goprintffuncname // it's ok
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}
