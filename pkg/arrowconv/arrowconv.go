// Package arrowconv converts Arrow record batches into read buffer batches.
// Write paths that produce Arrow hand one record per table to the converter
// and pass the resulting batches to Store.AddChunk. The read buffer's column
// model is dense, so records containing nulls are rejected.
package arrowconv

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/readbuffer"
)

// BatchFromRecord converts one Arrow record into a read buffer batch.
// Supported field types: Int64, Float64, String, Boolean and Timestamp
// (converted to nanoseconds). A field named "time" becomes the batch's time
// column.
func BatchFromRecord(rec arrow.Record) (*readbuffer.Batch, error) {
	b := readbuffer.NewBatch()
	for i, field := range rec.Schema().Fields() {
		col := rec.Column(i)
		if col.NullN() > 0 {
			return nil, errors.Newf(errors.ErrorTypeConstruction,
				"column %q contains %d null values", field.Name, col.NullN())
		}
		switch arr := col.(type) {
		case *array.Int64:
			vals := make([]int64, arr.Len())
			for j := range vals {
				vals[j] = arr.Value(j)
			}
			b.AddIntColumn(field.Name, vals)
		case *array.Timestamp:
			unit := field.Type.(*arrow.TimestampType).Unit
			vals := make([]int64, arr.Len())
			for j := range vals {
				vals[j] = toNanoseconds(int64(arr.Value(j)), unit)
			}
			b.AddIntColumn(field.Name, vals)
		case *array.Float64:
			vals := make([]float64, arr.Len())
			for j := range vals {
				vals[j] = arr.Value(j)
			}
			b.AddFloatColumn(field.Name, vals)
		case *array.String:
			vals := make([]string, arr.Len())
			for j := range vals {
				vals[j] = arr.Value(j)
			}
			b.AddStringColumn(field.Name, vals)
		case *array.Boolean:
			vals := make([]bool, arr.Len())
			for j := range vals {
				vals[j] = arr.Value(j)
			}
			b.AddBoolColumn(field.Name, vals)
		default:
			return nil, errors.Newf(errors.ErrorTypeConstruction,
				"column %q has unsupported Arrow type %s", field.Name, field.Type)
		}
	}
	return b, nil
}

// BatchesFromRecords converts a table-name-to-record mapping into the batch
// mapping Store.AddChunk consumes.
func BatchesFromRecords(records map[string]arrow.Record) (map[string]*readbuffer.Batch, error) {
	out := make(map[string]*readbuffer.Batch, len(records))
	for table, rec := range records {
		b, err := BatchFromRecord(rec)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConstruction, "table "+table)
		}
		out[table] = b
	}
	return out, nil
}

func toNanoseconds(v int64, unit arrow.TimeUnit) int64 {
	switch unit {
	case arrow.Second:
		return v * 1e9
	case arrow.Millisecond:
		return v * 1e6
	case arrow.Microsecond:
		return v * 1e3
	default:
		return v
	}
}
