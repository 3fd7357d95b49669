package readbuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/aggregate"
	"github.com/stratadb/strata/pkg/errors"
)

func TestStoreAddDatabase(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddDatabase("tenant1", NewDatabase()))
	require.NoError(t, s.AddDatabase("tenant2", NewDatabase()))
	assert.Equal(t, []string{"tenant1", "tenant2"}, s.DatabaseNames())

	err := s.AddDatabase("tenant1", NewDatabase())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}

func TestStoreRemoveDatabase(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddDatabase("tenant1", NewDatabase()))
	require.NoError(t, s.RemoveDatabase("tenant1"))
	assert.Empty(t, s.DatabaseNames())

	err := s.RemoveDatabase("tenant1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestStoreAddChunkCreatesDatabase(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()}))
	assert.Equal(t, []string{"tenant1"}, s.DatabaseNames())
	assert.Greater(t, s.Size(), int64(0))
}

func TestStoreAddChunkRejectsBadInput(t *testing.T) {
	s := NewStore()
	err := s.AddChunk("tenant1", "a", map[string]*Batch{
		"cpu": NewBatch().AddFloatColumn("value", []float64{1}),
	})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConstruction))
	// The failed ingest must not have created the database.
	assert.Empty(t, s.DatabaseNames())
}

func TestStoreMissingDatabaseIsAnError(t *testing.T) {
	// A query against an absent database fails; it is not an empty result.
	s := NewStore()
	tr := TimeRange{From: 0, To: 1000}

	_, err := s.Select("nope", "cpu", tr, nil, []string{"time"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = s.Aggregate("nope", "cpu", tr, nil, nil,
		[]AggregateSpec{{Column: "value", Kind: aggregate.Count}})
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = s.AggregateWindow("nope", "cpu", tr, nil, nil,
		[]AggregateSpec{{Column: "value", Kind: aggregate.Count}}, 10)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = s.TableNames("nope", tr, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = s.TagKeys("nope", "cpu", tr, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	_, err = s.TagValues("nope", "cpu", tr, nil, nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	err = s.RemoveChunk("nope", "a")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestStoreEmptyDatabaseIsNotAnError(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddDatabase("tenant1", NewDatabase()))

	res, err := s.Select("tenant1", "cpu", TimeRange{From: 0, To: 1000}, nil, []string{"time"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NumRows())
}

func TestStoreQueriesAreScopedToDatabase(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()}))
	require.NoError(t, s.AddDatabase("tenant2", NewDatabase()))

	res, err := s.Select("tenant1", "cpu", TimeRange{From: 0, To: 1000}, nil, []string{"time"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumRows())

	res, err = s.Select("tenant2", "cpu", TimeRange{From: 0, To: 1000}, nil, []string{"time"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.NumRows())
}

func TestStoreSizeTracksChunkLifecycle(t *testing.T) {
	s := NewStore()
	assert.Equal(t, int64(0), s.Size())

	require.NoError(t, s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()}))
	require.NoError(t, s.AddChunk("tenant2", "b", map[string]*Batch{"cpu": cpuBatch()}))
	sizeBoth := s.Size()

	require.NoError(t, s.RemoveChunk("tenant1", "a"))
	assert.Less(t, s.Size(), sizeBoth)

	require.NoError(t, s.RemoveChunk("tenant2", "b"))
	assert.Equal(t, int64(0), s.Size())
}

func TestStoreRemoveDatabaseDropsItsSize(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()}))
	require.NoError(t, s.RemoveDatabase("tenant1"))
	assert.Equal(t, int64(0), s.Size())
}

func TestStoreDuplicateChunkKeyAcrossDatabases(t *testing.T) {
	// The same chunk key may exist in different databases.
	s := NewStore()
	require.NoError(t, s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()}))
	require.NoError(t, s.AddChunk("tenant2", "a", map[string]*Batch{"cpu": cpuBatch()}))

	err := s.AddChunk("tenant1", "a", map[string]*Batch{"cpu": cpuBatch()})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConflict))
}
