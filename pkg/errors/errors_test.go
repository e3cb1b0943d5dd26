package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(ErrorTypeConversion, "cannot convert value")

	assert.Equal(t, "conversion: cannot convert value", err.Error())
	assert.True(t, IsType(err, ErrorTypeConversion))
	assert.False(t, IsType(err, ErrorTypeConfig))
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeOutOfRange, "iteration %d is out of range", 7)
	assert.Contains(t, err.Error(), "iteration 7")
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("parse failure")
	err := Wrap(cause, ErrorTypeConversion, "bad value")

	assert.Equal(t, "conversion: bad value: parse failure", err.Error())
	assert.ErrorIs(t, err, cause)

	// Wrapping our own error preserves the original stack.
	inner := New(ErrorTypeFile, "write failed")
	outer := Wrap(inner, ErrorTypeInternal, "save failed")
	assert.Equal(t, inner.Stack, outer.Stack)

	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeUnknownVariable, "unknown variable").
		WithDetail("variable", "y").
		WithDetail("recorded", []string{"x"})

	require.NotNil(t, err.Details)
	assert.Equal(t, "y", err.Details["variable"])
}

func TestIsTypeNonStructured(t *testing.T) {
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeInternal))
	assert.False(t, IsType(nil, ErrorTypeInternal))
}
