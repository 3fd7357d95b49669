package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeNotFound, "chunk missing")
	assert.Equal(t, "not_found: chunk missing", err.Error())
	assert.True(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(err, ErrorTypeConflict))
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeConflict, "chunk %q already exists", "a")
	assert.Equal(t, `conflict: chunk "a" already exists`, err.Error())
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, ErrorTypeInternal, "flush failed")
	assert.Equal(t, "internal: flush failed: disk full", err.Error())
	assert.Equal(t, cause, err.Unwrap())

	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "noop"))
}

func TestWrapPreservesInnerType(t *testing.T) {
	inner := New(ErrorTypeSchemaMismatch, "bad column")
	outer := Wrap(inner, ErrorTypeConstruction, "table cpu")

	// The outer type wins for TypeOf, but errors.As still reaches the chain.
	assert.Equal(t, ErrorTypeConstruction, TypeOf(outer))
	assert.True(t, IsType(outer, ErrorTypeConstruction))
}

func TestTypeOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorTypeInternal, TypeOf(fmt.Errorf("plain")))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeNotFound))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeInvalidArgument, "bad window").
		WithDetail("window", -5)
	require.NotNil(t, err.Details)
	assert.Equal(t, -5, err.Details["window"])
}
