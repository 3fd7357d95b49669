package readbuffer

import (
	"sort"

	"github.com/stratadb/strata/pkg/errors"
)

// Chunk is an immutable, uniquely keyed unit of ingested data: one table per
// measurement present in the ingestion batch. Construction is atomic; a chunk
// whose input fails validation is rejected whole. Sealed chunks are safe for
// concurrent readers without locking.
type Chunk struct {
	key    string
	tables map[string]*Table

	size    int64
	minTime int64
	maxTime int64
}

// NewChunk builds a chunk from a mapping of table name to columnar batch.
// Every batch must be row-aligned and carry a time column.
func NewChunk(key string, batches map[string]*Batch) (*Chunk, error) {
	if len(batches) == 0 {
		return nil, errors.New(errors.ErrorTypeConstruction, "chunk has no tables")
	}
	c := &Chunk{
		key:    key,
		tables: make(map[string]*Table, len(batches)),
	}
	first := true
	for name, b := range batches {
		t, err := newTable(name, b)
		if err != nil {
			return nil, err
		}
		c.tables[name] = t
		c.size += t.Size()
		min, max := t.TimeRange()
		if first || min < c.minTime {
			c.minTime = min
		}
		if first || max > c.maxTime {
			c.maxTime = max
		}
		first = false
	}
	return c, nil
}

// Key returns the chunk key, unique within its database.
func (c *Chunk) Key() string { return c.key }

// Size returns the resident size of the chunk in bytes.
func (c *Chunk) Size() int64 { return c.size }

// TimeRange returns the union of the chunk's tables' time ranges.
func (c *Chunk) TimeRange() (min, max int64) { return c.minTime, c.maxTime }

// Table returns the table for the named measurement, if present.
func (c *Chunk) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// TableNames returns the chunk's measurement names in sorted order.
func (c *Chunk) TableNames() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
