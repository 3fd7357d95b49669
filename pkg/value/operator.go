package value

import (
	"fmt"

	"github.com/stratadb/strata/pkg/errors"
)

// Operator is a comparison operator usable in a predicate.
type Operator int

const (
	// Eq matches values equal to the literal.
	Eq Operator = iota
	// NotEq matches values not equal to the literal.
	NotEq
	// GT matches values strictly greater than the literal.
	GT
	// GTE matches values greater than or equal to the literal.
	GTE
	// LT matches values strictly less than the literal.
	LT
	// LTE matches values less than or equal to the literal.
	LTE
)

// String returns the operator in its predicate syntax form.
func (op Operator) String() string {
	switch op {
	case Eq:
		return "="
	case NotEq:
		return "!="
	case GT:
		return ">"
	case GTE:
		return ">="
	case LT:
		return "<"
	case LTE:
		return "<="
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

// ParseOperator converts the predicate syntax form back into an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "=", "==":
		return Eq, nil
	case "!=":
		return NotEq, nil
	case ">":
		return GT, nil
	case ">=":
		return GTE, nil
	case "<":
		return LT, nil
	case "<=":
		return LTE, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown operator %q", s)
	}
}

// Match interprets a three-way comparison result (column value vs. literal)
// under the operator.
func (op Operator) Match(cmp int) bool {
	switch op {
	case Eq:
		return cmp == 0
	case NotEq:
		return cmp != 0
	case GT:
		return cmp > 0
	case GTE:
		return cmp >= 0
	case LT:
		return cmp < 0
	case LTE:
		return cmp <= 0
	default:
		return false
	}
}
