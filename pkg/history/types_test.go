package history

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindInt, KindFloat, KindComplex, KindString, KindOther} {
		got, ok := KindFromString(kind.String())
		require.True(t, ok, "kind %s", kind)
		assert.Equal(t, kind, got)
	}

	_, ok := KindFromString("quaternion")
	assert.False(t, ok)
}

func TestDefaultFormatsRenderZeroValues(t *testing.T) {
	for _, kind := range []Kind{KindInt, KindFloat, KindComplex, KindString, KindOther} {
		rendered := fmt.Sprintf(kind.defaultFormat(), kind.zero())
		assert.NotContains(t, rendered, "%!", "default format for %s must render its zero value", kind)
	}
}

func TestConvertRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		kind Kind
		raw  interface{}
	}{
		{KindInt, "3.5"},
		{KindInt, struct{}{}},
		{KindInt, uint64(math.MaxInt64) + 1},
		{KindInt, uint64(math.MaxUint64)},
		{KindFloat, "abc"},
		{KindFloat, []int{1}},
		{KindComplex, "not complex"},
		{KindComplex, map[string]int{}},
	}

	for _, test := range tests {
		_, err := test.kind.Convert(test.raw)
		assert.Error(t, err, "%s should reject %T %v", test.kind, test.raw, test.raw)
	}

	// The largest representable unsigned value still converts.
	got, err := KindInt.Convert(uint64(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), got)
}

func TestConvertStringNeverFails(t *testing.T) {
	for _, raw := range []interface{}{1, 2.5, true, []int{1, 2}, struct{ A int }{3}} {
		got, err := KindString.Convert(raw)
		require.NoError(t, err)
		assert.IsType(t, "", got)
	}

	got, err := KindString.Convert([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", got)
}

func TestCenterWidths(t *testing.T) {
	for width := 1; width < 12; width++ {
		s := center("ab", width)
		if width <= 2 {
			assert.Equal(t, "ab", s)
			continue
		}
		assert.Len(t, s, width)
		assert.Equal(t, "ab", strings.TrimSpace(s))
	}
}

func TestCenterCountsRunes(t *testing.T) {
	// Multi-byte runes count as one display column each.
	s := center("αβ", 6)
	assert.Equal(t, "  αβ  ", s)
	assert.Equal(t, 6, utf8.RuneCountInString(s))
}
