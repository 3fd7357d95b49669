package readbuffer

import (
	"github.com/stratadb/strata/pkg/column"
	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// Batch is the ingestion boundary shape: a set of row-aligned typed column
// vectors for one table. The write path produces batches; the read buffer
// only consumes them. A batch is valid once every column has the same length
// and a time column is present; validation happens at chunk construction.
type Batch struct {
	cols []batchColumn
}

type batchColumn struct {
	name string
	typ  value.Type

	ints    []int64
	floats  []float64
	strings []string
	bools   []bool
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// AddTimeColumn adds the distinguished time column, with values in
// nanoseconds since the epoch.
func (b *Batch) AddTimeColumn(values []int64) *Batch {
	return b.AddIntColumn(TimeColumn, values)
}

// AddIntColumn adds a signed 64-bit integer column.
func (b *Batch) AddIntColumn(name string, values []int64) *Batch {
	b.cols = append(b.cols, batchColumn{name: name, typ: value.TypeInt, ints: values})
	return b
}

// AddFloatColumn adds a 64-bit float column.
func (b *Batch) AddFloatColumn(name string, values []float64) *Batch {
	b.cols = append(b.cols, batchColumn{name: name, typ: value.TypeFloat, floats: values})
	return b
}

// AddStringColumn adds a string (tag) column.
func (b *Batch) AddStringColumn(name string, values []string) *Batch {
	b.cols = append(b.cols, batchColumn{name: name, typ: value.TypeString, strings: values})
	return b
}

// AddBoolColumn adds a boolean column.
func (b *Batch) AddBoolColumn(name string, values []bool) *Batch {
	b.cols = append(b.cols, batchColumn{name: name, typ: value.TypeBool, bools: values})
	return b
}

func (c batchColumn) len() int {
	switch c.typ {
	case value.TypeInt:
		return len(c.ints)
	case value.TypeFloat:
		return len(c.floats)
	case value.TypeString:
		return len(c.strings)
	case value.TypeBool:
		return len(c.bools)
	default:
		return 0
	}
}

func (c batchColumn) seal() column.Column {
	switch c.typ {
	case value.TypeInt:
		return column.NewIntColumn(c.ints)
	case value.TypeFloat:
		return column.NewFloatColumn(c.floats)
	case value.TypeString:
		return column.NewStringColumn(c.strings)
	case value.TypeBool:
		return column.NewBoolColumn(c.bools)
	default:
		return nil
	}
}

// validate checks the batch invariants: no duplicate column names, all
// columns the same length, a time column present and integer-typed.
func (b *Batch) validate() error {
	if len(b.cols) == 0 {
		return errors.New(errors.ErrorTypeConstruction, "batch has no columns")
	}
	seen := make(map[string]struct{}, len(b.cols))
	rows := -1
	var hasTime bool
	for _, c := range b.cols {
		if _, dup := seen[c.name]; dup {
			return errors.Newf(errors.ErrorTypeConstruction, "batch has duplicate column %q", c.name)
		}
		seen[c.name] = struct{}{}
		if rows == -1 {
			rows = c.len()
		} else if c.len() != rows {
			return errors.Newf(errors.ErrorTypeConstruction,
				"batch column %q has %d rows, want %d", c.name, c.len(), rows)
		}
		if c.name == TimeColumn {
			if c.typ != value.TypeInt {
				return errors.Newf(errors.ErrorTypeConstruction,
					"time column must be integer-typed, got %s", c.typ)
			}
			hasTime = true
		}
	}
	if !hasTime {
		return errors.New(errors.ErrorTypeConstruction, "batch is missing the time column")
	}
	return nil
}
