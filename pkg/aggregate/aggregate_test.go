package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []Kind{Count, Sum, Min, Max, First, Last} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("mean")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidArgument))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Sum.Validate(value.TypeInt))
	require.NoError(t, Sum.Validate(value.TypeFloat))
	assert.True(t, errors.IsType(Sum.Validate(value.TypeString), errors.ErrorTypeSchemaMismatch))
	assert.True(t, errors.IsType(Sum.Validate(value.TypeBool), errors.ErrorTypeSchemaMismatch))

	require.NoError(t, Min.Validate(value.TypeString))
	assert.True(t, errors.IsType(Max.Validate(value.TypeBool), errors.ErrorTypeSchemaMismatch))

	require.NoError(t, Count.Validate(value.TypeBool))
	require.NoError(t, First.Validate(value.TypeBool))
}

func TestResultType(t *testing.T) {
	assert.Equal(t, value.TypeInt, Count.ResultType(value.TypeFloat))
	assert.Equal(t, value.TypeFloat, Sum.ResultType(value.TypeFloat))
	assert.Equal(t, value.TypeString, Min.ResultType(value.TypeString))
}

func TestCount(t *testing.T) {
	s, err := NewState(Count, value.TypeFloat)
	require.NoError(t, err)

	_, ok := s.Value()
	assert.False(t, ok, "empty state has no value")

	s.Update(value.Float(1), 10)
	s.Update(value.Float(2), 20)
	v, ok := s.Value()
	require.True(t, ok)
	assert.Equal(t, value.Int(2), v)
}

func TestSum(t *testing.T) {
	si, err := NewState(Sum, value.TypeInt)
	require.NoError(t, err)
	si.Update(value.Int(5), 1)
	si.Update(value.Int(-2), 2)
	v, ok := si.Value()
	require.True(t, ok)
	assert.Equal(t, value.Int(3), v)

	sf, err := NewState(Sum, value.TypeFloat)
	require.NoError(t, err)
	sf.Update(value.Float(1.5), 1)
	sf.Update(value.Float(2.5), 2)
	v, ok = sf.Value()
	require.True(t, ok)
	assert.Equal(t, value.Float(4.0), v)
}

func TestMinMax(t *testing.T) {
	mn, err := NewState(Min, value.TypeString)
	require.NoError(t, err)
	mx, err := NewState(Max, value.TypeString)
	require.NoError(t, err)
	for _, s := range []string{"west", "east", "north"} {
		mn.Update(value.String(s), 0)
		mx.Update(value.String(s), 0)
	}
	v, _ := mn.Value()
	assert.Equal(t, value.String("east"), v)
	v, _ = mx.Value()
	assert.Equal(t, value.String("west"), v)
}

func TestFirstLastResolveByTimestamp(t *testing.T) {
	// Rows arrive out of timestamp order; First/Last follow timestamps.
	first, err := NewState(First, value.TypeFloat)
	require.NoError(t, err)
	last, err := NewState(Last, value.TypeFloat)
	require.NoError(t, err)

	rows := []struct {
		v  float64
		ts int64
	}{{3.0, 300}, {1.0, 100}, {2.0, 200}}
	for _, r := range rows {
		first.Update(value.Float(r.v), r.ts)
		last.Update(value.Float(r.v), r.ts)
	}

	v, _ := first.Value()
	assert.Equal(t, value.Float(1.0), v)
	v, _ = last.Value()
	assert.Equal(t, value.Float(3.0), v)
}

func TestMergeOrderIndependence(t *testing.T) {
	build := func(kind Kind, rows []struct {
		v  int64
		ts int64
	}) *State {
		s, err := NewState(kind, value.TypeInt)
		require.NoError(t, err)
		for _, r := range rows {
			s.Update(value.Int(r.v), r.ts)
		}
		return s
	}

	older := []struct {
		v  int64
		ts int64
	}{{7, 50}, {9, 60}}
	newer := []struct {
		v  int64
		ts int64
	}{{5, 100}, {3, 200}}

	for _, kind := range []Kind{Count, Sum, Min, Max, First, Last} {
		ab := build(kind, older)
		require.NoError(t, ab.Merge(build(kind, newer)))
		ba := build(kind, newer)
		require.NoError(t, ba.Merge(build(kind, older)))

		va, oka := ab.Value()
		vb, okb := ba.Value()
		require.True(t, oka)
		require.True(t, okb)
		assert.True(t, va.Equal(vb), "%s: merge order changed %s vs %s", kind, va, vb)
	}

	// A chunk merged later but holding older timestamps wins First.
	s := build(First, newer)
	require.NoError(t, s.Merge(build(First, older)))
	v, _ := s.Value()
	assert.Equal(t, value.Int(7), v)

	s = build(Last, newer)
	require.NoError(t, s.Merge(build(Last, older)))
	v, _ = s.Value()
	assert.Equal(t, value.Int(3), v)
}

func TestMergeEmptyStates(t *testing.T) {
	s, err := NewState(Sum, value.TypeInt)
	require.NoError(t, err)
	o, err := NewState(Sum, value.TypeInt)
	require.NoError(t, err)
	o.Update(value.Int(4), 1)

	// empty <- filled adopts the filled state
	require.NoError(t, s.Merge(o))
	v, ok := s.Value()
	require.True(t, ok)
	assert.Equal(t, value.Int(4), v)

	// filled <- empty is a no-op
	empty, err := NewState(Sum, value.TypeInt)
	require.NoError(t, err)
	require.NoError(t, s.Merge(empty))
	v, _ = s.Value()
	assert.Equal(t, value.Int(4), v)
}

func TestMergeMismatchedStates(t *testing.T) {
	a, err := NewState(Sum, value.TypeInt)
	require.NoError(t, err)
	b, err := NewState(Count, value.TypeInt)
	require.NoError(t, err)
	b.Update(value.Int(1), 0)
	require.Error(t, a.Merge(b))
}
