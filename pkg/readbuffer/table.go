package readbuffer

import (
	"github.com/stratadb/strata/pkg/errors"
)

// Table holds one measurement's data within a chunk: an ordered collection of
// row groups sharing the same column schema. A single ingestion produces one
// row group per table; additional row groups for a measurement arrive as new
// chunks, never by mutating an existing table.
type Table struct {
	name   string
	groups []*RowGroup

	size    int64
	rows    int
	minTime int64
	maxTime int64
}

func newTable(name string, b *Batch) (*Table, error) {
	g, err := newRowGroup(b)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConstruction, "table "+name)
	}
	t := &Table{
		name:    name,
		groups:  []*RowGroup{g},
		size:    g.Size(),
		rows:    g.Rows(),
		minTime: g.minTime,
		maxTime: g.maxTime,
	}
	return t, nil
}

// Name returns the measurement name.
func (t *Table) Name() string { return t.name }

// Size returns the resident size of the table in bytes.
func (t *Table) Size() int64 { return t.size }

// Rows returns the total number of rows across the table's row groups.
func (t *Table) Rows() int { return t.rows }

// TimeRange returns the union of the row groups' time ranges.
func (t *Table) TimeRange() (min, max int64) { return t.minTime, t.maxTime }

// Schema returns the table's column schema. All row groups share it.
func (t *Table) Schema() []ColumnSchema {
	return t.groups[0].Schema()
}

// schemaColumn looks up a column in the table's schema.
func (t *Table) schemaColumn(name string) (ColumnSchema, bool) {
	for _, cs := range t.Schema() {
		if cs.Name == name {
			return cs, true
		}
	}
	return ColumnSchema{}, false
}

// prunedGroups returns the row groups whose time range overlaps tr.
func (t *Table) prunedGroups(tr TimeRange) []*RowGroup {
	out := make([]*RowGroup, 0, len(t.groups))
	for _, g := range t.groups {
		if g.rows == 0 || !tr.Overlaps(g.minTime, g.maxTime) {
			continue
		}
		out = append(out, g)
	}
	return out
}
