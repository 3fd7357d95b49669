// Package column provides typed, immutable columnar vectors with summary
// statistics. Columns are the predicate evaluation primitive: each column can
// answer a single (operator, literal) comparison for all of its rows,
// consulting its min/max statistics first so that comparisons which cannot
// match (or cannot fail) skip the row-by-row scan entirely.
package column

import (
	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// Column is a sealed columnar vector. Implementations are immutable after
// construction and safe for concurrent readers.
type Column interface {
	// Type returns the column's value type.
	Type() value.Type

	// Len returns the number of rows.
	Len() int

	// Value returns the value at row i.
	Value(i int) value.Value

	// Min returns the smallest value in the column. Undefined when Len is 0.
	Min() value.Value

	// Max returns the largest value in the column. Undefined when Len is 0.
	Max() value.Value

	// Size returns the approximate resident size of the column in bytes.
	Size() int64

	// Evaluate applies the comparison to every row still selected in m,
	// clearing rows that do not match. It returns a SchemaMismatch error when
	// the literal's type does not match the column's type.
	Evaluate(op value.Operator, v value.Value, m *Mask) error
}

// prune classifies an (operator, literal) comparison against a column's
// [min, max] domain using three-way comparisons of the literal with each
// bound. It returns (matchNone, matchAll): matchNone means no value in the
// domain can satisfy the comparison, matchAll means every value must.
func prune(op value.Operator, cmpMin, cmpMax int) (matchNone, matchAll bool) {
	// cmpMin = sign(min - lit), cmpMax = sign(max - lit)
	switch op {
	case value.Eq:
		return cmpMin > 0 || cmpMax < 0, cmpMin == 0 && cmpMax == 0
	case value.NotEq:
		return cmpMin == 0 && cmpMax == 0, cmpMin > 0 || cmpMax < 0
	case value.GT:
		return cmpMax <= 0, cmpMin > 0
	case value.GTE:
		return cmpMax < 0, cmpMin >= 0
	case value.LT:
		return cmpMin >= 0, cmpMax < 0
	case value.LTE:
		return cmpMin > 0, cmpMax <= 0
	default:
		return false, false
	}
}

func typeMismatch(col value.Type, lit value.Value) error {
	return errors.Newf(errors.ErrorTypeSchemaMismatch,
		"predicate literal %s has type %s, column holds %s", lit, lit.Type(), col)
}
