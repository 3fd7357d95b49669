// Package aggregate implements partial aggregate states and their merge
// semantics. Each chunk computes its own partial states per group key; the
// database layer merges states from different chunks, so Count/Sum/Min/Max
// must combine associatively and First/Last must resolve by comparing the
// timestamps carried in the state rather than merge order.
package aggregate

import (
	"fmt"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// Kind enumerates the supported aggregate functions.
type Kind int

const (
	// Count counts the rows in the group.
	Count Kind = iota
	// Sum sums a numeric column over the group.
	Sum
	// Min keeps the smallest value in the group.
	Min
	// Max keeps the largest value in the group.
	Max
	// First keeps the value with the smallest timestamp in the group.
	First
	// Last keeps the value with the largest timestamp in the group.
	Last
)

// String returns the aggregate name used in result column names.
func (k Kind) String() string {
	switch k {
	case Count:
		return "count"
	case Sum:
		return "sum"
	case Min:
		return "min"
	case Max:
		return "max"
	case First:
		return "first"
	case Last:
		return "last"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts an aggregate name back into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "count":
		return Count, nil
	case "sum":
		return Sum, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "first":
		return First, nil
	case "last":
		return Last, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeInvalidArgument, "unknown aggregate %q", s)
	}
}

// Validate checks that the aggregate can be applied to a column of the given
// type: Sum requires a numeric column, Min/Max require an orderable column.
func (k Kind) Validate(t value.Type) error {
	switch k {
	case Count, First, Last:
		return nil
	case Sum:
		if t == value.TypeInt || t == value.TypeFloat {
			return nil
		}
		return errors.Newf(errors.ErrorTypeSchemaMismatch, "cannot sum %s column", t)
	case Min, Max:
		if t == value.TypeBool {
			return errors.Newf(errors.ErrorTypeSchemaMismatch, "cannot order %s column for %s", t, k)
		}
		return nil
	default:
		return errors.Newf(errors.ErrorTypeInvalidArgument, "unknown aggregate kind %d", int(k))
	}
}

// ResultType returns the value type the aggregate produces over a column of
// input type t.
func (k Kind) ResultType(t value.Type) value.Type {
	if k == Count {
		return value.TypeInt
	}
	return t
}

// State is one partial aggregate over the rows of a single group within a
// single chunk. It is not safe for concurrent use.
type State struct {
	kind Kind
	typ  value.Type

	count int64
	sumI  int64
	sumF  float64

	cur value.Value // current min/max/first/last candidate
	ts  int64       // timestamp carried for First/Last resolution
	any bool
}

// NewState creates an empty partial state for an aggregate over a column of
// the given input type.
func NewState(kind Kind, typ value.Type) (*State, error) {
	if err := kind.Validate(typ); err != nil {
		return nil, err
	}
	return &State{kind: kind, typ: typ}, nil
}

// Kind returns the aggregate function of the state.
func (s *State) Kind() Kind { return s.kind }

// Update folds one row into the state. ts is the row's timestamp; it is only
// consulted by First/Last.
func (s *State) Update(v value.Value, ts int64) {
	switch s.kind {
	case Count:
		s.count++
	case Sum:
		if s.typ == value.TypeInt {
			s.sumI += v.IntVal()
		} else {
			s.sumF += v.FloatVal()
		}
	case Min:
		if !s.any {
			s.cur = v
		} else if c, _ := v.Compare(s.cur); c < 0 {
			s.cur = v
		}
	case Max:
		if !s.any {
			s.cur = v
		} else if c, _ := v.Compare(s.cur); c > 0 {
			s.cur = v
		}
	case First:
		if !s.any || ts < s.ts {
			s.cur, s.ts = v, ts
		}
	case Last:
		if !s.any || ts > s.ts {
			s.cur, s.ts = v, ts
		}
	}
	s.any = true
}

// Merge folds another partial state into s. Both states must carry the same
// aggregate kind and input type. Merge order does not affect the outcome.
func (s *State) Merge(o *State) error {
	if s.kind != o.kind || s.typ != o.typ {
		return errors.Newf(errors.ErrorTypeInternal,
			"cannot merge %s(%s) state with %s(%s) state", s.kind, s.typ, o.kind, o.typ)
	}
	if !o.any {
		return nil
	}
	if !s.any {
		*s = *o
		return nil
	}
	switch s.kind {
	case Count:
		s.count += o.count
	case Sum:
		s.sumI += o.sumI
		s.sumF += o.sumF
	case Min:
		if c, _ := o.cur.Compare(s.cur); c < 0 {
			s.cur = o.cur
		}
	case Max:
		if c, _ := o.cur.Compare(s.cur); c > 0 {
			s.cur = o.cur
		}
	case First:
		if o.ts < s.ts {
			s.cur, s.ts = o.cur, o.ts
		}
	case Last:
		if o.ts > s.ts {
			s.cur, s.ts = o.cur, o.ts
		}
	}
	return nil
}

// Value returns the final aggregate value. The second return is false when no
// rows were folded in.
func (s *State) Value() (value.Value, bool) {
	if !s.any {
		return value.Value{}, false
	}
	switch s.kind {
	case Count:
		return value.Int(s.count), true
	case Sum:
		if s.typ == value.TypeInt {
			return value.Int(s.sumI), true
		}
		return value.Float(s.sumF), true
	default:
		return s.cur, true
	}
}
