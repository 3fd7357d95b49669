package column

import "math/bits"

// Mask is a bit-packed row selection produced by predicate evaluation.
// A freshly created Mask has every row selected; each predicate clears the
// rows it rejects, so combining predicates is a logical AND.
type Mask struct {
	words []uint64
	n     int
}

// NewMask creates a mask of n rows with every row selected.
func NewMask(n int) *Mask {
	m := &Mask{
		words: make([]uint64, (n+63)/64),
		n:     n,
	}
	for i := range m.words {
		m.words[i] = ^uint64(0)
	}
	if rem := n % 64; rem != 0 && len(m.words) > 0 {
		m.words[len(m.words)-1] = (1 << rem) - 1
	}
	return m
}

// Len returns the number of rows covered by the mask.
func (m *Mask) Len() int { return m.n }

// Get reports whether row i is selected.
func (m *Mask) Get(i int) bool {
	return m.words[i/64]&(1<<(i%64)) != 0
}

// Clear deselects row i.
func (m *Mask) Clear(i int) {
	m.words[i/64] &^= 1 << (i % 64)
}

// ClearAll deselects every row.
func (m *Mask) ClearAll() {
	for i := range m.words {
		m.words[i] = 0
	}
}

// Count returns the number of selected rows.
func (m *Mask) Count() int {
	total := 0
	for _, w := range m.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// Any reports whether at least one row is selected.
func (m *Mask) Any() bool {
	for _, w := range m.words {
		if w != 0 {
			return true
		}
	}
	return false
}
