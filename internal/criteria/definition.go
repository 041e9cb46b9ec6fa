package criteria

import "context"

// ValueKind describes what a criterion type stores as its comparison
// value.
type ValueKind int

const (
	// ValueScalar types store a single number.
	ValueScalar ValueKind = iota
	// ValueRefs types store a set of references.
	ValueRefs
	// ValueCompositions is the composition criterion's list of
	// (category, amount) pairs.
	ValueCompositions
	// ValueNone types (flags) store only an operator.
	ValueNone
)

// EvaluateFunc decides one criterion against gathered evidence.
// Unsatisfiable preconditions return (false, nil); only configuration
// or data-access problems return an error.
type EvaluateFunc func(ctx context.Context, c Criterion, ev *Evidence) (bool, error)

// Definition is one registered criterion type. Definitions are static:
// built once via Defaults (or tests) and never mutated afterwards.
type Definition struct {
	// ContentType discriminates persisted criteria; unique per
	// registry.
	ContentType string

	// Name is the operator-facing display name.
	Name string

	// Operators is the legal operator set for this type.
	Operators []Operator

	Kind ValueKind

	// ParseScalar overrides the default float parsing for scalar
	// types (the time criterion parses HH:MM). Nil means plain float.
	ParseScalar func(raw string) (float64, error)

	// ParseRef validates one reference for ValueRefs types.
	ParseRef func(raw string) error

	Evaluate EvaluateFunc
}

// MultipleValue reports whether the type stores a collection rather
// than a single scalar.
func (d Definition) MultipleValue() bool {
	return d.Kind == ValueRefs || d.Kind == ValueCompositions
}

// Allows reports whether op is legal for this type.
func (d Definition) Allows(op Operator) bool {
	return op.In(d.Operators)
}
