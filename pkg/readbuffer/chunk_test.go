package readbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/aggregate"
	"github.com/stratadb/strata/pkg/errors"
)

func cpuBatch() *Batch {
	return NewBatch().
		AddTimeColumn([]int64{100, 200, 300}).
		AddStringColumn("host", []string{"a", "b", "a"}).
		AddFloatColumn("value", []float64{1, 2, 3})
}

func TestNewChunk(t *testing.T) {
	c, err := NewChunk("2024-01-01", map[string]*Batch{
		"cpu": cpuBatch(),
		"mem": NewBatch().
			AddTimeColumn([]int64{50, 400}).
			AddIntColumn("used", []int64{10, 20}),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", c.Key())
	assert.Equal(t, []string{"cpu", "mem"}, c.TableNames())
	min, max := c.TimeRange()
	assert.Equal(t, int64(50), min)
	assert.Equal(t, int64(400), max)
	assert.Greater(t, c.Size(), int64(0))

	cpu, ok := c.Table("cpu")
	require.True(t, ok)
	assert.Equal(t, 3, cpu.Rows())
	min, max = cpu.TimeRange()
	assert.Equal(t, int64(100), min)
	assert.Equal(t, int64(300), max)

	_, ok = c.Table("disk")
	assert.False(t, ok)
}

func TestNewChunkNoTables(t *testing.T) {
	_, err := NewChunk("k", map[string]*Batch{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestNewChunkValidation(t *testing.T) {
	tests := []struct {
		name  string
		batch *Batch
	}{
		{"no columns", NewBatch()},
		{
			"missing time column",
			NewBatch().AddFloatColumn("value", []float64{1}),
		},
		{
			"ragged columns",
			NewBatch().
				AddTimeColumn([]int64{1, 2}).
				AddFloatColumn("value", []float64{1}),
		},
		{
			"duplicate column name",
			NewBatch().
				AddTimeColumn([]int64{1}).
				AddFloatColumn("value", []float64{1}).
				AddFloatColumn("value", []float64{2}),
		},
		{
			"non-integer time column",
			NewBatch().AddFloatColumn(TimeColumn, []float64{1}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunk("k", map[string]*Batch{"cpu": tt.batch})
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
		})
	}
}

func TestNewChunkRejectsWholeChunk(t *testing.T) {
	// One bad table rejects the chunk even when the other table is valid.
	_, err := NewChunk("k", map[string]*Batch{
		"cpu": cpuBatch(),
		"mem": NewBatch().AddFloatColumn("used", []float64{1}),
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
}

func TestTableSchema(t *testing.T) {
	c, err := NewChunk("k", map[string]*Batch{"cpu": cpuBatch()})
	require.NoError(t, err)
	cpu, _ := c.Table("cpu")

	schema := cpu.Schema()
	names := make([]string, len(schema))
	for i, cs := range schema {
		names[i] = cs.Name
	}
	assert.Equal(t, []string{"time", "host", "value"}, names)
}

func TestTimeRange(t *testing.T) {
	tr := TimeRange{From: 100, To: 200}
	assert.False(t, tr.Empty())
	assert.True(t, TimeRange{From: 5, To: 5}.Empty())
	assert.True(t, TimeRange{From: 5, To: 4}.Empty())

	// Half-open: a chunk whose max equals From still overlaps, one whose
	// min equals To does not.
	assert.True(t, tr.Overlaps(50, 100))
	assert.False(t, tr.Overlaps(200, 300))
	assert.True(t, tr.Overlaps(150, 150))
	assert.True(t, tr.Overlaps(199, 199))
	assert.False(t, tr.Overlaps(0, 99))
}

func TestTimeRangePredicates(t *testing.T) {
	preds := TimeRangePredicates(TimeRange{From: 10, To: 20})
	require.Len(t, preds, 2)
	assert.Equal(t, TimeColumn, preds[0].Column)
	assert.Equal(t, TimeColumn, preds[1].Column)
}

func TestAggregateSpecResultName(t *testing.T) {
	spec := AggregateSpec{Column: "value", Kind: aggregate.Sum}
	assert.Equal(t, "value_sum", spec.ResultName())
}
