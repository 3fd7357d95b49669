package arrowconv

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/readbuffer"
)

func buildRecord(t *testing.T, schema *arrow.Schema, fill func(*array.RecordBuilder)) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()
	fill(b)
	return b.NewRecord()
}

func TestBatchFromRecord(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Int64},
		{Name: "host", Type: arrow.BinaryTypes.String},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64},
		{Name: "up", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)
	rec := buildRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{100, 200}, nil)
		b.Field(1).(*array.StringBuilder).AppendValues([]string{"hostA", "hostB"}, nil)
		b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5}, nil)
		b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false}, nil)
	})
	defer rec.Release()

	batch, err := BatchFromRecord(rec)
	require.NoError(t, err)

	chunk, err := readbuffer.NewChunk("k", map[string]*readbuffer.Batch{"cpu": batch})
	require.NoError(t, err)
	cpu, ok := chunk.Table("cpu")
	require.True(t, ok)
	assert.Equal(t, 2, cpu.Rows())
	min, max := cpu.TimeRange()
	assert.Equal(t, int64(100), min)
	assert.Equal(t, int64(200), max)
	assert.Len(t, cpu.Schema(), 4)
}

func TestBatchFromRecordTimestampUnits(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: &arrow.TimestampType{Unit: arrow.Millisecond}},
	}, nil)
	rec := buildRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1, 2}, nil)
	})
	defer rec.Release()

	batch, err := BatchFromRecord(rec)
	require.NoError(t, err)

	chunk, err := readbuffer.NewChunk("k", map[string]*readbuffer.Batch{"cpu": batch})
	require.NoError(t, err)
	cpu, _ := chunk.Table("cpu")
	min, max := cpu.TimeRange()
	assert.Equal(t, int64(1_000_000), min)
	assert.Equal(t, int64(2_000_000), max)
}

func TestBatchFromRecordRejectsNulls(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}, nil)
	rec := buildRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{100, 0}, []bool{true, false})
	})
	defer rec.Release()

	_, err := BatchFromRecord(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestBatchFromRecordRejectsUnsupportedType(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Int32},
	}, nil)
	rec := buildRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int32Builder).AppendValues([]int32{1}, nil)
	})
	defer rec.Release()

	_, err := BatchFromRecord(rec)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestBatchesFromRecords(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "time", Type: arrow.PrimitiveTypes.Int64},
	}, nil)
	rec := buildRecord(t, schema, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).AppendValues([]int64{100}, nil)
	})
	defer rec.Release()

	batches, err := BatchesFromRecords(map[string]arrow.Record{"cpu": rec, "mem": rec})
	require.NoError(t, err)
	assert.Len(t, batches, 2)
}
