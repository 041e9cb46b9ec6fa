package criteria

import (
	dErrors "merx/pkg/domain-errors"
)

// Operator is the stored comparison applied by a criterion. Which
// operators are legal depends on the criterion type; evaluating with
// an operator outside the type's set is a configuration error, never
// silently ignored.
type Operator string

const (
	// Numeric ordering operators for aggregate-threshold criteria.
	OpEqual            Operator = "eq"
	OpLessThan         Operator = "lt"
	OpLessThanEqual    Operator = "lte"
	OpGreaterThan      Operator = "gt"
	OpGreaterThanEqual Operator = "gte"

	// Polarity operators for set-membership and flag criteria.
	OpIs    Operator = "is"
	OpIsNot Operator = "is_not"

	// Validity operators for the recursive discount criterion.
	OpIsValid    Operator = "is_valid"
	OpIsNotValid Operator = "is_not_valid"

	// Identity-state operators for the user criterion.
	OpAuthenticated Operator = "authenticated"
	OpAnonymous     Operator = "anonymous"
)

// Operator sets per criterion family.
var (
	NumberOperators   = []Operator{OpEqual, OpLessThan, OpLessThanEqual, OpGreaterThan, OpGreaterThanEqual}
	ChoiceOperators   = []Operator{OpIs, OpIsNot}
	ValidityOperators = []Operator{OpIsValid, OpIsNotValid}
	UserOperators     = []Operator{OpIs, OpIsNot, OpAuthenticated, OpAnonymous}
)

var knownOperators = map[Operator]bool{
	OpEqual: true, OpLessThan: true, OpLessThanEqual: true,
	OpGreaterThan: true, OpGreaterThanEqual: true,
	OpIs: true, OpIsNot: true,
	OpIsValid: true, OpIsNotValid: true,
	OpAuthenticated: true, OpAnonymous: true,
}

// ParseOperator constructs an Operator from external input.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !knownOperators[op] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown operator %q", s)
	}
	return op, nil
}

func (op Operator) String() string { return string(op) }

// In reports whether op is part of the given legal set.
func (op Operator) In(set []Operator) bool {
	for _, o := range set {
		if o == op {
			return true
		}
	}
	return false
}

// compareNumber applies a numeric ordering operator. Callers must
// have verified the operator against NumberOperators.
func compareNumber(op Operator, actual, bound float64) bool {
	switch op {
	case OpLessThan:
		return actual < bound
	case OpLessThanEqual:
		return actual <= bound
	case OpGreaterThan:
		return actual > bound
	case OpGreaterThanEqual:
		return actual >= bound
	case OpEqual:
		return actual == bound
	}
	return false
}

// applyPolarity flips a raw membership/flag result for is_not.
func applyPolarity(op Operator, raw bool) bool {
	if op == OpIsNot {
		return !raw
	}
	return raw
}
