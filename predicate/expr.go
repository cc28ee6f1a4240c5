package predicate

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rotisserie/eris"
)

// Expr is a predicate written in the expr language, evaluated with the fields of a struct value as
// variables. For example `Value > 50 && Value < 100` on a struct with an int field Value.
type Expr[T any] struct {
	source  string
	program *vm.Program
}

// NewExpr compiles source against the fields of T. Returns an error if source doesn't compile, or
// doesn't evaluate to a bool.
func NewExpr[T any](source string) (*Expr[T], error) {
	var zero T
	program, err := expr.Compile(source, expr.Env(zero), expr.AsBool())
	if err != nil {
		return nil, eris.Wrapf(err, "failed to compile predicate %q", source)
	}
	return &Expr[T]{source: source, program: program}, nil
}

// MustExpr is like NewExpr but panics if source doesn't compile.
func MustExpr[T any](source string) *Expr[T] {
	e, err := NewExpr[T](source)
	if err != nil {
		panic(err)
	}
	return e
}

// Test evaluates the expression on value. A runtime error, e.g. an integer division by zero, is
// treated as not matching.
func (e *Expr[T]) Test(value *T) bool {
	output, err := expr.Run(e.program, *value)
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

// String returns the source of the expression.
func (e *Expr[T]) String() string {
	return e.source
}
