package readbuffer

import (
	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// ResultColumn is one column of a query result.
type ResultColumn struct {
	Name   string
	Type   value.Type
	Values []value.Value
}

// Result is a single columnar batch returned by a query. Selection and
// aggregation results are merged across all contributing chunks before being
// returned, so one call yields at most one Result.
type Result struct {
	columns []ResultColumn
}

func newResult(columns []ResultColumn) *Result {
	return &Result{columns: columns}
}

// NumRows returns the number of rows in the result.
func (r *Result) NumRows() int {
	if len(r.columns) == 0 {
		return 0
	}
	return len(r.columns[0].Values)
}

// NumColumns returns the number of columns in the result.
func (r *Result) NumColumns() int { return len(r.columns) }

// Columns returns the result columns in output order.
func (r *Result) Columns() []ResultColumn { return r.columns }

// Column returns the named column.
func (r *Result) Column(name string) (ResultColumn, error) {
	for _, c := range r.columns {
		if c.Name == name {
			return c, nil
		}
	}
	return ResultColumn{}, errors.Newf(errors.ErrorTypeNotFound, "result has no column %q", name)
}

// resultBuilder accumulates rows column-wise in a fixed column order.
type resultBuilder struct {
	columns []ResultColumn
}

func newResultBuilder(names []string, types []value.Type) *resultBuilder {
	b := &resultBuilder{columns: make([]ResultColumn, len(names))}
	for i := range names {
		b.columns[i] = ResultColumn{Name: names[i], Type: types[i]}
	}
	return b
}

// appendRow appends one row; vals must be in column order.
func (b *resultBuilder) appendRow(vals ...value.Value) {
	for i, v := range vals {
		b.columns[i].Values = append(b.columns[i].Values, v)
	}
}

func (b *resultBuilder) build() *Result {
	return newResult(b.columns)
}
