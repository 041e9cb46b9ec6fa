package criteria

import "errors"

// Configuration errors. These indicate broken wiring or stale
// persisted data and must surface loudly; they are never folded into
// a false evaluation result.
var (
	// ErrUnknownType is returned when a persisted criterion references
	// a content type that is not registered (for example after a
	// variant was retired).
	ErrUnknownType = errors.New("unknown criterion type")

	// ErrDuplicateType is returned when two definitions claim the same
	// content type. Registration never silently overwrites.
	ErrDuplicateType = errors.New("criterion type already registered")

	// ErrIllegalOperator is returned when a criterion carries an
	// operator outside its definition's legal set.
	ErrIllegalOperator = errors.New("operator not legal for criterion type")

	// ErrCriteriaCycle is returned when discount criteria reference
	// each other in a cycle. The whole evaluation fails rather than
	// recursing without bound.
	ErrCriteriaCycle = errors.New("cycle in discount criteria references")
)
