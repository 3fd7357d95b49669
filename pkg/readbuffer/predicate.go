package readbuffer

import (
	"github.com/stratadb/strata/pkg/aggregate"
	"github.com/stratadb/strata/pkg/value"
)

// TimeColumn is the name of the distinguished time column every table must
// carry. Its values are nanoseconds since the epoch.
const TimeColumn = "time"

// Predicate is a single (column, operator, literal) filter condition. A
// predicate list is an implicit conjunction.
type Predicate struct {
	Column string
	Op     value.Operator
	Value  value.Value
}

// TimeRange is the half-open interval [From, To) in nanoseconds since the
// epoch. A range with To <= From matches nothing.
type TimeRange struct {
	From int64
	To   int64
}

// Empty reports whether the range cannot contain any timestamp.
func (tr TimeRange) Empty() bool { return tr.To <= tr.From }

// Overlaps reports whether the range intersects the closed interval
// [min, max] of observed timestamps.
func (tr TimeRange) Overlaps(min, max int64) bool {
	return min < tr.To && max >= tr.From
}

// TimeRangePredicates converts a time range into its two canonical
// predicates, time >= from and time < to, so time filtering goes through the
// same evaluation path as any other column predicate.
func TimeRangePredicates(tr TimeRange) []Predicate {
	return []Predicate{
		{Column: TimeColumn, Op: value.GTE, Value: value.Int(tr.From)},
		{Column: TimeColumn, Op: value.LT, Value: value.Int(tr.To)},
	}
}

// AggregateSpec names one requested aggregate: the input column and the
// aggregate function applied to it. The same column may appear in several
// specs with different functions.
type AggregateSpec struct {
	Column string
	Kind   aggregate.Kind
}

// ResultName returns the output column name for the aggregate, e.g.
// "value_sum".
func (a AggregateSpec) ResultName() string {
	return a.Column + "_" + a.Kind.String()
}
