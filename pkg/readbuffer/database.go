package readbuffer

import (
	"sort"
	"sync"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/metrics"
	"github.com/stratadb/strata/pkg/value"
)

// Database is a tenant-scoped collection of chunks keyed by chunk key. Reads
// route every query to the subset of chunks whose time range overlaps the
// query's, then merge per-chunk results. The chunk mapping is the only
// mutable state; chunks themselves are immutable, so queries snapshot the
// candidate set under a read lock and evaluate lock-free.
type Database struct {
	mu     sync.RWMutex
	chunks map[string]*Chunk
	size   int64
}

// NewDatabase creates an empty database.
func NewDatabase() *Database {
	return &Database{chunks: make(map[string]*Chunk)}
}

// AddChunk registers a sealed chunk. Duplicate chunk keys are rejected:
// silently replacing a chunk would mask size-accounting bugs in the
// ingestion path.
func (d *Database) AddChunk(c *Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.chunks[c.Key()]; dup {
		return errors.Newf(errors.ErrorTypeConflict, "chunk %q already exists", c.Key())
	}
	d.chunks[c.Key()] = c
	d.size += c.Size()
	return nil
}

// RemoveChunk removes the chunk with the given key and debits its size.
func (d *Database) RemoveChunk(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.chunks[key]
	if !ok {
		return errors.Newf(errors.ErrorTypeNotFound, "chunk %q not found", key)
	}
	delete(d.chunks, key)
	d.size -= c.Size()
	return nil
}

// Size returns the total resident size of the database's chunks in bytes.
func (d *Database) Size() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// ChunkCount returns the number of resident chunks.
func (d *Database) ChunkCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.chunks)
}

// candidateChunks snapshots the chunks whose time range overlaps tr, in
// sorted key order so results have a deterministic encounter order. When
// table is non-empty, chunks without that table are excluded.
func (d *Database) candidateChunks(tr TimeRange, table string) []*Chunk {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var pruned int
	out := make([]*Chunk, 0, len(d.chunks))
	for _, c := range d.chunks {
		min, max := c.TimeRange()
		if tr.Empty() || !tr.Overlaps(min, max) {
			pruned++
			continue
		}
		if table != "" {
			if _, ok := c.Table(table); !ok {
				continue
			}
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	metrics.ChunksPruned.Add(float64(pruned))
	metrics.ChunksScanned.Add(float64(len(out)))
	return out
}

// Select evaluates the predicates over the named table and returns the
// projected columns of every matching row, concatenated across contributing
// chunks in (chunk, row group, row) encounter order. An unknown table yields
// an empty result; an unknown projected column is a schema mismatch.
func (d *Database) Select(table string, tr TimeRange, preds []Predicate, columns []string) (*Result, error) {
	if len(columns) == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "select requires at least one projected column")
	}
	all := append(TimeRangePredicates(tr), preds...)

	var b *resultBuilder
	for _, c := range d.candidateChunks(tr, table) {
		t, _ := c.Table(table)
		if b == nil {
			types, err := projectionTypes(t, columns)
			if err != nil {
				return nil, err
			}
			b = newResultBuilder(columns, types)
		} else if _, err := projectionTypes(t, columns); err != nil {
			return nil, err
		}
		for _, g := range t.prunedGroups(tr) {
			m, err := g.filter(all)
			if err != nil {
				return nil, err
			}
			if !m.Any() {
				continue
			}
			g.appendSelect(b, m, columns)
		}
	}
	if b == nil {
		return newResult(nil), nil
	}
	return b.build(), nil
}

func projectionTypes(t *Table, columns []string) ([]value.Type, error) {
	types := make([]value.Type, len(columns))
	for i, name := range columns {
		cs, ok := t.schemaColumn(name)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
				"table %q has no column %q", t.Name(), name)
		}
		types[i] = cs.Type
	}
	return types, nil
}

// Aggregate computes the requested aggregates over the named table, grouped
// by the given string-typed columns. Each chunk computes partial states
// locally; the partials are then merged so a group key appearing in several
// chunks (backfill, overlap) yields exactly one output row. Output rows are
// ordered lexicographically by group key.
func (d *Database) Aggregate(table string, tr TimeRange, preds []Predicate, groupCols []string, aggs []AggregateSpec) (*Result, error) {
	return d.aggregate(table, tr, preds, groupCols, aggs, 0)
}

// AggregateWindow is Aggregate with the group key extended by a window-start
// timestamp, computed as time - (time mod window). The window is in the same
// unit as the time column (nanoseconds) and must be positive.
func (d *Database) AggregateWindow(table string, tr TimeRange, preds []Predicate, groupCols []string, aggs []AggregateSpec, window int64) (*Result, error) {
	if window <= 0 {
		return nil, errors.Newf(errors.ErrorTypeInvalidArgument, "window must be positive, got %d", window)
	}
	return d.aggregate(table, tr, preds, groupCols, aggs, window)
}

func (d *Database) aggregate(table string, tr TimeRange, preds []Predicate, groupCols []string, aggs []AggregateSpec, window int64) (*Result, error) {
	if len(aggs) == 0 {
		return nil, errors.New(errors.ErrorTypeInvalidArgument, "aggregate requires at least one aggregate spec")
	}
	all := append(TimeRangePredicates(tr), preds...)
	candidates := d.candidateChunks(tr, table)

	// Phase one: per-chunk partial aggregation. The chunk is both the unit
	// of parallelism and the unit of backfill-induced duplication, so the
	// local-compute/merge split must not collapse into a single pass.
	merged := make(map[string]*groupState)
	var aggTypes []value.Type
	for _, c := range candidates {
		t, _ := c.Table(table)
		types, err := aggregateTypes(t, aggs)
		if err != nil {
			return nil, err
		}
		if aggTypes == nil {
			aggTypes = types
		}
		local := make(map[string]*groupState)
		for _, g := range t.prunedGroups(tr) {
			m, err := g.filter(all)
			if err != nil {
				return nil, err
			}
			if !m.Any() {
				continue
			}
			if err := g.aggregate(local, m, groupCols, aggs, window); err != nil {
				return nil, err
			}
		}
		// Phase two: merge the chunk's partials into the database result.
		if err := mergeGroups(merged, local); err != nil {
			return nil, err
		}
	}
	if aggTypes == nil {
		return newResult(nil), nil
	}
	return buildAggregateResult(merged, groupCols, aggs, aggTypes, window > 0), nil
}

func aggregateTypes(t *Table, aggs []AggregateSpec) ([]value.Type, error) {
	types := make([]value.Type, len(aggs))
	for i, a := range aggs {
		cs, ok := t.schemaColumn(a.Column)
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchemaMismatch,
				"table %q has no column %q", t.Name(), a.Column)
		}
		if err := a.Kind.Validate(cs.Type); err != nil {
			return nil, err
		}
		types[i] = a.Kind.ResultType(cs.Type)
	}
	return types, nil
}

func mergeGroups(dst, src map[string]*groupState) error {
	for key, gs := range src {
		existing, ok := dst[key]
		if !ok {
			dst[key] = gs
			continue
		}
		for i, st := range gs.states {
			if err := existing.states[i].Merge(st); err != nil {
				return err
			}
		}
	}
	return nil
}

// WindowColumn is the name of the window-start column in windowed aggregate
// results.
const WindowColumn = "window_start"

func buildAggregateResult(merged map[string]*groupState, groupCols []string, aggs []AggregateSpec, aggTypes []value.Type, windowed bool) *Result {
	groups := make([]*groupState, 0, len(merged))
	for _, gs := range merged {
		groups = append(groups, gs)
	}
	// Deterministic output order: lexicographic by group key tuple, then by
	// window start. Never arrival order.
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		for k := range a.tags {
			if a.tags[k] != b.tags[k] {
				return a.tags[k] < b.tags[k]
			}
		}
		return a.window < b.window
	})

	names := make([]string, 0, len(groupCols)+1+len(aggs))
	types := make([]value.Type, 0, cap(names))
	names = append(names, groupCols...)
	for range groupCols {
		types = append(types, value.TypeString)
	}
	if windowed {
		names = append(names, WindowColumn)
		types = append(types, value.TypeInt)
	}
	for i, a := range aggs {
		names = append(names, a.ResultName())
		types = append(types, aggTypes[i])
	}

	b := newResultBuilder(names, types)
	row := make([]value.Value, 0, len(names))
	for _, gs := range groups {
		row = row[:0]
		for _, tag := range gs.tags {
			row = append(row, value.String(tag))
		}
		if windowed {
			row = append(row, value.Int(gs.window))
		}
		for _, st := range gs.states {
			v, _ := st.Value()
			row = append(row, v)
		}
		b.appendRow(row...)
	}
	return b.build()
}

// TableNames returns the distinct table names whose rows satisfy the time
// range and predicates. A chunk's presence in the time range is not enough;
// at least one row must survive the predicates. Tables lacking a predicate
// column cannot match and are skipped rather than rejected, since schemas
// vary across measurements.
func (d *Database) TableNames(tr TimeRange, preds []Predicate) (*Result, error) {
	all := append(TimeRangePredicates(tr), preds...)
	found := make(map[string]struct{})
	for _, c := range d.candidateChunks(tr, "") {
		for _, name := range c.TableNames() {
			if _, done := found[name]; done {
				continue
			}
			t, _ := c.Table(name)
			if !tableHasColumns(t, all) {
				continue
			}
			for _, g := range t.prunedGroups(tr) {
				m, err := g.filter(all)
				if err != nil {
					return nil, err
				}
				if m.Any() {
					found[name] = struct{}{}
					break
				}
			}
		}
	}
	return stringSetResult("table", found), nil
}

// tableHasColumns reports whether every predicate column exists in the
// table's schema. Absence means the table cannot match; literal type
// mismatches on existing columns are still surfaced by filter.
func tableHasColumns(t *Table, preds []Predicate) bool {
	for _, p := range preds {
		if _, ok := t.schemaColumn(p.Column); !ok {
			return false
		}
	}
	return true
}

// TagKeys returns the distinct string-typed column names of the named table
// that appear in at least one surviving row. Chunks whose tag-key set is
// already a subset of the keys found so far are skipped without evaluating
// any predicate.
func (d *Database) TagKeys(table string, tr TimeRange, preds []Predicate) (*Result, error) {
	all := append(TimeRangePredicates(tr), preds...)
	known := make(map[string]struct{})
	for _, c := range d.candidateChunks(tr, table) {
		t, _ := c.Table(table)
		if !tableHasColumns(t, all) {
			continue
		}
		if subsetOfKnown(t, known) {
			continue
		}
		for _, g := range t.prunedGroups(tr) {
			m, err := g.filter(all)
			if err != nil {
				return nil, err
			}
			g.tagKeys(known, m)
		}
	}
	return stringSetResult("key", known), nil
}

func subsetOfKnown(t *Table, known map[string]struct{}) bool {
	for _, name := range t.groups[0].stringColumnNames() {
		if _, ok := known[name]; !ok {
			return false
		}
	}
	return true
}

// TagValues returns, for each requested tag key, the distinct values
// appearing in rows that survive the predicates. An empty key list requests
// every tag key present in the table. The result has one row per (key,
// value) pair, ordered by key then value.
func (d *Database) TagValues(table string, tr TimeRange, preds []Predicate, tagKeys []string) (*Result, error) {
	all := append(TimeRangePredicates(tr), preds...)
	values := make(map[string]map[string]struct{})
	for _, c := range d.candidateChunks(tr, table) {
		t, _ := c.Table(table)
		if !tableHasColumns(t, all) {
			continue
		}
		keys := tagKeys
		if len(keys) == 0 {
			keys = t.groups[0].stringColumnNames()
		}
		for _, g := range t.prunedGroups(tr) {
			m, err := g.filter(all)
			if err != nil {
				return nil, err
			}
			if err := g.tagValues(values, m, keys); err != nil {
				return nil, err
			}
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b := newResultBuilder([]string{"key", "value"}, []value.Type{value.TypeString, value.TypeString})
	for _, k := range keys {
		vals := make([]string, 0, len(values[k]))
		for v := range values[k] {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		for _, v := range vals {
			b.appendRow(value.String(k), value.String(v))
		}
	}
	return b.build(), nil
}

func stringSetResult(columnName string, set map[string]struct{}) *Result {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	b := newResultBuilder([]string{columnName}, []value.Type{value.TypeString})
	for _, s := range out {
		b.appendRow(value.String(s))
	}
	return b.build()
}
