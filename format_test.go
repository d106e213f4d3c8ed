package stepscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeReprTruncates(t *testing.T) {
	long := Str(strings.Repeat("x", 50))
	got := safeRepr(long, 10)
	assert.Equal(t, `"xxxxxx...`, got)
	assert.Len(t, got, 10)
}

func TestSafeReprShortValuesUntouched(t *testing.T) {
	assert.Equal(t, "[1, 2]", safeRepr(Arr([]Value{Int(1), Int(2)}), 120))
	assert.Equal(t, "null", safeRepr(Null, 120))
}

func TestSafeReprNoCap(t *testing.T) {
	long := Str(strings.Repeat("x", 50))
	assert.Len(t, safeRepr(long, 0), 52) // quotes included, no cap
}

func TestSafeReprTinyCap(t *testing.T) {
	// caps at or below the ellipsis width cut hard
	assert.Equal(t, `"x`, safeRepr(Str("xxxx"), 2))
}

func TestSafeReprCountsRunes(t *testing.T) {
	v := Str(strings.Repeat("é", 30))
	got := safeRepr(v, 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestSafeReprRecoversFromPanic(t *testing.T) {
	// a Value with a payload the printer cannot handle must not crash
	bogus := Value{Tag: VTArray, Data: "not an array"}
	got := safeRepr(bogus, 120)
	assert.NotEmpty(t, got)
}
