package readbuffer

import (
	"strconv"
	"strings"

	"github.com/stratadb/strata/pkg/aggregate"
	"github.com/stratadb/strata/pkg/column"
	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// ColumnSchema describes one column of a row group's schema.
type ColumnSchema struct {
	Name string
	Type value.Type
}

// RowGroup is a fixed set of row-aligned columns; it is the unit at which
// predicates are evaluated and partial aggregates are computed. Row groups
// are immutable once sealed and safe for concurrent readers.
type RowGroup struct {
	names []string
	cols  map[string]column.Column
	rows  int
	size  int64

	// min/max of the time column, for pruning
	minTime int64
	maxTime int64
	times   []int64
}

func newRowGroup(b *Batch) (*RowGroup, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	g := &RowGroup{
		names: make([]string, 0, len(b.cols)),
		cols:  make(map[string]column.Column, len(b.cols)),
	}
	for _, bc := range b.cols {
		col := bc.seal()
		g.names = append(g.names, bc.name)
		g.cols[bc.name] = col
		g.size += col.Size()
	}
	timeCol := g.cols[TimeColumn].(*column.IntColumn)
	g.rows = timeCol.Len()
	g.times = timeCol.Ints()
	if g.rows > 0 {
		g.minTime = timeCol.Min().IntVal()
		g.maxTime = timeCol.Max().IntVal()
	}
	return g, nil
}

// Rows returns the number of rows in the group.
func (g *RowGroup) Rows() int { return g.rows }

// Size returns the resident size of the group's columns in bytes.
func (g *RowGroup) Size() int64 { return g.size }

// TimeRange returns the smallest and largest timestamp in the group.
func (g *RowGroup) TimeRange() (min, max int64) { return g.minTime, g.maxTime }

// Schema returns the group's columns in ingestion order.
func (g *RowGroup) Schema() []ColumnSchema {
	out := make([]ColumnSchema, len(g.names))
	for i, name := range g.names {
		out[i] = ColumnSchema{Name: name, Type: g.cols[name].Type()}
	}
	return out
}

// validatePredicates checks every predicate against the group's schema before
// any evaluation happens, so a malformed predicate is always reported even
// when an earlier predicate already proved the group empty.
func (g *RowGroup) validatePredicates(preds []Predicate) error {
	for _, p := range preds {
		col, ok := g.cols[p.Column]
		if !ok {
			return errors.Newf(errors.ErrorTypeSchemaMismatch, "unknown column %q in predicate", p.Column)
		}
		if p.Value.Type() != col.Type() {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"predicate on column %q compares %s literal against %s column",
				p.Column, p.Value.Type(), col.Type())
		}
	}
	return nil
}

// filter evaluates the conjunction of predicates and returns the surviving
// row mask. Each column consults its statistics before scanning; evaluation
// stops as soon as the mask is empty.
func (g *RowGroup) filter(preds []Predicate) (*column.Mask, error) {
	if err := g.validatePredicates(preds); err != nil {
		return nil, err
	}
	m := column.NewMask(g.rows)
	for _, p := range preds {
		if err := g.cols[p.Column].Evaluate(p.Op, p.Value, m); err != nil {
			return nil, err
		}
		if !m.Any() {
			break
		}
	}
	return m, nil
}

// appendSelect projects the named columns for every surviving row into the
// builder, preserving row order. The caller has validated the projection
// against the schema.
func (g *RowGroup) appendSelect(b *resultBuilder, m *column.Mask, columns []string) {
	cols := make([]column.Column, len(columns))
	for j, name := range columns {
		cols[j] = g.cols[name]
	}
	vals := make([]value.Value, len(columns))
	for i := 0; i < g.rows; i++ {
		if !m.Get(i) {
			continue
		}
		for j, c := range cols {
			vals[j] = c.Value(i)
		}
		b.appendRow(vals...)
	}
}

// groupState carries one group key's decoded tag values, window start and
// partial aggregate states.
type groupState struct {
	tags   []string
	window int64
	states []*aggregate.State
}

// encodeGroupKey builds the map key for a group. Tag values cannot contain
// NUL in practice, and the window component is delimited, so distinct keys
// encode distinctly.
func encodeGroupKey(tags []string, window int64, windowed bool) string {
	key := strings.Join(tags, "\x00")
	if windowed {
		key += "\x00w" + strconv.FormatInt(window, 10)
	}
	return key
}

// aggregate folds every surviving row into dst, keyed by the group columns'
// values (and the window bucket when window > 0). Group columns must be
// string-typed. dst accumulates across row groups of the same chunk.
func (g *RowGroup) aggregate(dst map[string]*groupState, m *column.Mask, groupCols []string, aggs []AggregateSpec, window int64) error {
	tagCols := make([]*column.StringColumn, len(groupCols))
	for j, name := range groupCols {
		c, ok := g.cols[name]
		if !ok {
			return errors.Newf(errors.ErrorTypeSchemaMismatch, "unknown group column %q", name)
		}
		sc, ok := c.(*column.StringColumn)
		if !ok {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"group column %q is %s, grouping requires string columns", name, c.Type())
		}
		tagCols[j] = sc
	}
	aggCols := make([]column.Column, len(aggs))
	for j, a := range aggs {
		c, ok := g.cols[a.Column]
		if !ok {
			return errors.Newf(errors.ErrorTypeSchemaMismatch, "unknown aggregate column %q", a.Column)
		}
		if err := a.Kind.Validate(c.Type()); err != nil {
			return errors.Wrap(err, errors.ErrorTypeSchemaMismatch,
				"aggregate "+a.ResultName()+" not applicable")
		}
		aggCols[j] = c
	}

	windowed := window > 0
	for i := 0; i < g.rows; i++ {
		if !m.Get(i) {
			continue
		}
		ts := g.times[i]
		tags := make([]string, len(tagCols))
		for j, tc := range tagCols {
			tags[j] = tc.Value(i).StringVal()
		}
		var ws int64
		if windowed {
			// Floor division so windows are aligned for negative timestamps
			// too.
			ws = ts - ((ts%window)+window)%window
		}
		key := encodeGroupKey(tags, ws, windowed)
		gs, ok := dst[key]
		if !ok {
			gs = &groupState{tags: tags, window: ws, states: make([]*aggregate.State, len(aggs))}
			for j, a := range aggs {
				st, err := aggregate.NewState(a.Kind, aggCols[j].Type())
				if err != nil {
					return err
				}
				gs.states[j] = st
			}
			dst[key] = gs
		}
		for j, c := range aggCols {
			gs.states[j].Update(c.Value(i), ts)
		}
	}
	return nil
}

// tagKeys adds the group's string-typed column names to keys, provided at
// least one row survives the mask. Columns are dense, so any surviving row
// carries a value for every tag column.
func (g *RowGroup) tagKeys(keys map[string]struct{}, m *column.Mask) {
	if !m.Any() {
		return
	}
	for _, name := range g.names {
		if g.cols[name].Type() == value.TypeString {
			keys[name] = struct{}{}
		}
	}
}

// tagValues adds, for each requested key, the distinct values appearing in
// surviving rows. A requested key absent from the schema contributes
// nothing; a requested key naming a non-string column is a schema mismatch.
func (g *RowGroup) tagValues(dst map[string]map[string]struct{}, m *column.Mask, keys []string) error {
	if !m.Any() {
		return nil
	}
	for _, key := range keys {
		c, ok := g.cols[key]
		if !ok {
			continue
		}
		sc, ok := c.(*column.StringColumn)
		if !ok {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"column %q is %s, tag values require string columns", key, c.Type())
		}
		vals, ok := dst[key]
		if !ok {
			vals = make(map[string]struct{})
			dst[key] = vals
		}
		for _, v := range sc.DistinctMasked(m) {
			vals[v] = struct{}{}
		}
	}
	return nil
}

// stringColumnNames returns the group's tag column names in schema order.
func (g *RowGroup) stringColumnNames() []string {
	var out []string
	for _, name := range g.names {
		if g.cols[name].Type() == value.TypeString {
			out = append(out, name)
		}
	}
	return out
}
