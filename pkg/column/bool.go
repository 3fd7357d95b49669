package column

import (
	"github.com/stratadb/strata/pkg/value"
)

// BoolColumn stores booleans bit-packed, 64 values per word.
type BoolColumn struct {
	words []uint64
	n     int
	trues int
}

// NewBoolColumn seals the given values into an immutable column.
func NewBoolColumn(values []bool) *BoolColumn {
	c := &BoolColumn{
		words: make([]uint64, (len(values)+63)/64),
		n:     len(values),
	}
	for i, v := range values {
		if v {
			c.words[i/64] |= 1 << (i % 64)
			c.trues++
		}
	}
	return c
}

// Type returns value.TypeBool.
func (c *BoolColumn) Type() value.Type { return value.TypeBool }

// Len returns the number of rows.
func (c *BoolColumn) Len() int { return c.n }

func (c *BoolColumn) get(i int) bool {
	return c.words[i/64]&(1<<(i%64)) != 0
}

// Value returns the value at row i.
func (c *BoolColumn) Value(i int) value.Value { return value.Bool(c.get(i)) }

// Min returns false if any row is false, otherwise true.
func (c *BoolColumn) Min() value.Value { return value.Bool(c.trues == c.n && c.n > 0) }

// Max returns true if any row is true, otherwise false.
func (c *BoolColumn) Max() value.Value { return value.Bool(c.trues > 0) }

// Size returns the resident size in bytes.
func (c *BoolColumn) Size() int64 { return int64(len(c.words) * 8) }

// Evaluate applies the comparison to every selected row in m. Booleans order
// false before true.
func (c *BoolColumn) Evaluate(op value.Operator, v value.Value, m *Mask) error {
	if v.Type() != value.TypeBool {
		return typeMismatch(value.TypeBool, v)
	}
	if c.n == 0 {
		return nil
	}
	lit := v.BoolVal()
	matchNone, matchAll := prune(op, cmpB(c.Min().BoolVal(), lit), cmpB(c.Max().BoolVal(), lit))
	if matchNone {
		m.ClearAll()
		return nil
	}
	if matchAll {
		return nil
	}
	for i := 0; i < c.n; i++ {
		if !m.Get(i) {
			continue
		}
		if !op.Match(cmpB(c.get(i), lit)) {
			m.Clear(i)
		}
	}
	return nil
}

func cmpB(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
