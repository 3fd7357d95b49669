package column

import (
	"sort"

	"github.com/stratadb/strata/pkg/value"
)

// StringColumn stores tag values using dictionary encoding. The dictionary is
// kept sorted, so a code comparison is equivalent to a lexicographic
// comparison of the underlying strings and range predicates evaluate on
// 32-bit codes instead of strings. The dictionary doubles as the column's
// exact distinct-value set.
type StringColumn struct {
	dict  []string // sorted distinct values
	codes []uint32 // per-row index into dict
}

// NewStringColumn seals the given values into an immutable dictionary-encoded
// column.
func NewStringColumn(values []string) *StringColumn {
	distinct := make(map[string]struct{}, len(values))
	for _, v := range values {
		distinct[v] = struct{}{}
	}
	dict := make([]string, 0, len(distinct))
	for v := range distinct {
		dict = append(dict, v)
	}
	sort.Strings(dict)

	lookup := make(map[string]uint32, len(dict))
	for i, v := range dict {
		lookup[v] = uint32(i)
	}
	codes := make([]uint32, len(values))
	for i, v := range values {
		codes[i] = lookup[v]
	}
	return &StringColumn{dict: dict, codes: codes}
}

// Type returns value.TypeString.
func (c *StringColumn) Type() value.Type { return value.TypeString }

// Len returns the number of rows.
func (c *StringColumn) Len() int { return len(c.codes) }

// Value returns the value at row i.
func (c *StringColumn) Value(i int) value.Value {
	return value.String(c.dict[c.codes[i]])
}

// Min returns the lexicographically smallest value in the column.
func (c *StringColumn) Min() value.Value {
	if len(c.dict) == 0 {
		return value.String("")
	}
	return value.String(c.dict[0])
}

// Max returns the lexicographically largest value in the column.
func (c *StringColumn) Max() value.Value {
	if len(c.dict) == 0 {
		return value.String("")
	}
	return value.String(c.dict[len(c.dict)-1])
}

// Size returns the resident size in bytes.
func (c *StringColumn) Size() int64 {
	var total int64
	for _, v := range c.dict {
		total += int64(len(v)) + 16 // string header overhead
	}
	total += int64(len(c.codes) * 4)
	return total
}

// Cardinality returns the number of distinct values in the column.
func (c *StringColumn) Cardinality() int { return len(c.dict) }

// Distinct returns the sorted distinct values of the column. The slice is
// shared and must be treated as read-only.
func (c *StringColumn) Distinct() []string { return c.dict }

// DistinctMasked returns the sorted distinct values appearing in rows
// selected by m.
func (c *StringColumn) DistinctMasked(m *Mask) []string {
	seen := make([]bool, len(c.dict))
	for i, code := range c.codes {
		if m.Get(i) {
			seen[code] = true
		}
	}
	out := make([]string, 0, len(c.dict))
	for code, ok := range seen {
		if ok {
			out = append(out, c.dict[code])
		}
	}
	return out
}

// Evaluate applies the comparison to every selected row in m. The literal is
// located in the sorted dictionary once, then each row is tested by code
// comparison.
func (c *StringColumn) Evaluate(op value.Operator, v value.Value, m *Mask) error {
	if v.Type() != value.TypeString {
		return typeMismatch(value.TypeString, v)
	}
	if len(c.codes) == 0 {
		return nil
	}
	lit := v.StringVal()
	matchNone, matchAll := prune(op, cmpStr(c.dict[0], lit), cmpStr(c.dict[len(c.dict)-1], lit))
	if matchNone {
		m.ClearAll()
		return nil
	}
	if matchAll {
		return nil
	}

	// idx is the insertion point of lit in the sorted dictionary. A row code
	// compares to lit exactly as it compares to idx, shifted by whether lit
	// itself is present.
	idx := sort.SearchStrings(c.dict, lit)
	found := idx < len(c.dict) && c.dict[idx] == lit
	litCode := uint32(idx)

	for i, code := range c.codes {
		if !m.Get(i) {
			continue
		}
		var cmp int
		switch {
		case code < litCode:
			cmp = -1
		case code > litCode:
			cmp = 1
		case !found:
			// lit is absent: the row value at the insertion point is greater
			// than lit.
			cmp = 1
		}
		if !op.Match(cmp) {
			m.Clear(i)
		}
	}
	return nil
}

func cmpStr(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
