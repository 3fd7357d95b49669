package column

import (
	"github.com/stratadb/strata/pkg/value"
)

// IntColumn stores signed 64-bit integers. Time columns are IntColumns whose
// values are nanoseconds since the epoch.
type IntColumn struct {
	values   []int64
	min, max int64
}

// NewIntColumn seals the given values into an immutable column. The slice is
// retained; the caller must not modify it afterwards.
func NewIntColumn(values []int64) *IntColumn {
	c := &IntColumn{values: values}
	for i, v := range values {
		if i == 0 || v < c.min {
			c.min = v
		}
		if i == 0 || v > c.max {
			c.max = v
		}
	}
	return c
}

// Type returns value.TypeInt.
func (c *IntColumn) Type() value.Type { return value.TypeInt }

// Len returns the number of rows.
func (c *IntColumn) Len() int { return len(c.values) }

// Value returns the value at row i.
func (c *IntColumn) Value(i int) value.Value { return value.Int(c.values[i]) }

// Min returns the smallest value in the column.
func (c *IntColumn) Min() value.Value { return value.Int(c.min) }

// Max returns the largest value in the column.
func (c *IntColumn) Max() value.Value { return value.Int(c.max) }

// Size returns the resident size in bytes.
func (c *IntColumn) Size() int64 { return int64(len(c.values) * 8) }

// Ints returns the underlying values. The slice is shared and must be treated
// as read-only; it exists so the aggregation path can read timestamps without
// boxing each row.
func (c *IntColumn) Ints() []int64 { return c.values }

// Evaluate applies the comparison to every selected row in m.
func (c *IntColumn) Evaluate(op value.Operator, v value.Value, m *Mask) error {
	if v.Type() != value.TypeInt {
		return typeMismatch(value.TypeInt, v)
	}
	if len(c.values) == 0 {
		return nil
	}
	lit := v.IntVal()
	matchNone, matchAll := prune(op, cmpI64(c.min, lit), cmpI64(c.max, lit))
	if matchNone {
		m.ClearAll()
		return nil
	}
	if matchAll {
		return nil
	}
	for i, val := range c.values {
		if !m.Get(i) {
			continue
		}
		if !op.Match(cmpI64(val, lit)) {
			m.Clear(i)
		}
	}
	return nil
}

// FloatColumn stores 64-bit floats.
type FloatColumn struct {
	values   []float64
	min, max float64
}

// NewFloatColumn seals the given values into an immutable column. The slice
// is retained; the caller must not modify it afterwards.
func NewFloatColumn(values []float64) *FloatColumn {
	c := &FloatColumn{values: values}
	for i, v := range values {
		if i == 0 || v < c.min {
			c.min = v
		}
		if i == 0 || v > c.max {
			c.max = v
		}
	}
	return c
}

// Type returns value.TypeFloat.
func (c *FloatColumn) Type() value.Type { return value.TypeFloat }

// Len returns the number of rows.
func (c *FloatColumn) Len() int { return len(c.values) }

// Value returns the value at row i.
func (c *FloatColumn) Value(i int) value.Value { return value.Float(c.values[i]) }

// Min returns the smallest value in the column.
func (c *FloatColumn) Min() value.Value { return value.Float(c.min) }

// Max returns the largest value in the column.
func (c *FloatColumn) Max() value.Value { return value.Float(c.max) }

// Size returns the resident size in bytes.
func (c *FloatColumn) Size() int64 { return int64(len(c.values) * 8) }

// Evaluate applies the comparison to every selected row in m.
func (c *FloatColumn) Evaluate(op value.Operator, v value.Value, m *Mask) error {
	if v.Type() != value.TypeFloat {
		return typeMismatch(value.TypeFloat, v)
	}
	if len(c.values) == 0 {
		return nil
	}
	lit := v.FloatVal()
	matchNone, matchAll := prune(op, cmpF64(c.min, lit), cmpF64(c.max, lit))
	if matchNone {
		m.ClearAll()
		return nil
	}
	if matchAll {
		return nil
	}
	for i, val := range c.values {
		if !m.Get(i) {
			continue
		}
		if !op.Match(cmpF64(val, lit)) {
			m.Clear(i)
		}
	}
	return nil
}

func cmpI64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpF64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
