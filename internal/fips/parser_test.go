package fips

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireParseError(t *testing.T, err error, kind ErrorKind) *ParseError {
	t.Helper()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, kind, pe.Kind, "error: %v", err)
	return pe
}

func TestParseHomeID(t *testing.T) {
	cases := []struct {
		input string
		rest  string
		value IDCode
	}{
		{"1234rest", "rest", 1234},
		{"0001xyz", "xyz", 1},
		{"9999", "", 9999},
		{"16383abc", "3abc", 1638},
		{"0000test", "test", 0},
		{"0123", "", 123},
	}
	for _, tc := range cases {
		rest, v, err := ParseHomeID(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rest, rest, tc.input)
		assert.Equal(t, tc.value, v, tc.input)
	}

	for _, input := range []string{"", "abc", "12", "123", "12a4"} {
		_, _, err := ParseHomeID(input)
		requireParseError(t, err, InvalidLength)
		assert.ErrorIs(t, err, ErrInvalidLength)
	}
}

func TestParsePrivateSchoolID(t *testing.T) {
	cases := []struct {
		input string
		rest  string
		value IDCode
	}{
		{"1234rest", "rest", 1234},
		{"0001xyz", "xyz", 1},
		{"xprvx1234rest", "rest", 1234},
		{"xprvx0001xyz", "xyz", 1},
		{"2047", "", 2047},
		{"xprvx2047", "", 2047},
		{"0000test", "test", 0},
		{"xprvx0000test", "test", 0},
		{"xprvx0042", "", 42},
	}
	for _, tc := range cases {
		rest, v, err := ParsePrivateSchoolID(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rest, rest, tc.input)
		assert.Equal(t, tc.value, v, tc.input)
	}

	for _, input := range []string{"", "xprvx", "xprvxabc"} {
		_, _, err := ParsePrivateSchoolID(input)
		requireParseError(t, err, InvalidLength)
	}

	for _, input := range []string{"2048", "xprvx2048"} {
		_, _, err := ParsePrivateSchoolID(input)
		pe := requireParseError(t, err, ValueExceedsCapacity)
		assert.Equal(t, uint64(2048), pe.Value)
		assert.Equal(t, uint64(2047), pe.Capacity)
		assert.Equal(t, "private school id", pe.Field)
	}
}

func TestPrivateSchoolMarkerIsOptional(t *testing.T) {
	for _, digits := range []string{"0000", "0150", "1722", "2047"} {
		r1, v1, err1 := ParsePrivateSchoolID(digits + "tail")
		r2, v2, err2 := ParsePrivateSchoolID(PrivateSchoolMarker + digits + "tail")
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, v1, v2)
		assert.Equal(t, r1, r2)
	}
}

func TestParsePublicSchoolID(t *testing.T) {
	cases := []struct {
		input string
		rest  string
		value IDCode
	}{
		{"123rest", "rest", 123},
		{"001xyz", "xyz", 1},
		{"999", "", 999},
		{"1023abc", "3abc", 102},
		{"000test", "test", 0},
		{"12345", "45", 123},
	}
	for _, tc := range cases {
		rest, v, err := ParsePublicSchoolID(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rest, rest, tc.input)
		assert.Equal(t, tc.value, v, tc.input)
	}

	for _, input := range []string{"", "abc", "12"} {
		_, _, err := ParsePublicSchoolID(input)
		requireParseError(t, err, InvalidLength)
	}
}

func TestParseWorkplaceID(t *testing.T) {
	cases := []struct {
		input string
		rest  string
		value IDCode
	}{
		{"12345rest", "rest", 12345},
		{"00001xyz", "xyz", 1},
		{"10383", "", 10383},
		{"16383abc", "abc", 16383},
		{"00000test", "test", 0},
		{"16383@#$%", "@#$%", 16383},
		{"16380@#$%", "@#$%", 16380},
	}
	for _, tc := range cases {
		rest, v, err := ParseWorkplaceID(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rest, rest, tc.input)
		assert.Equal(t, tc.value, v, tc.input)
	}

	for _, input := range []string{"", "abc", "1234"} {
		_, _, err := ParseWorkplaceID(input)
		requireParseError(t, err, InvalidLength)
	}

	_, _, err := ParseWorkplaceID("16384")
	pe := requireParseError(t, err, ValueExceedsCapacity)
	assert.Equal(t, uint64(16384), pe.Value)
	assert.Equal(t, uint64(16383), pe.Capacity)
	assert.ErrorIs(t, err, ErrValueExceedsCapacity)

	_, _, err = ParseWorkplaceID("19876@#$%")
	pe = requireParseError(t, err, ValueExceedsCapacity)
	assert.Equal(t, uint64(19876), pe.Value)
	assert.Equal(t, "19876@#$%", pe.Input)
}

func TestParseDecimalDigitsToBitsBoundaries(t *testing.T) {
	params := []struct{ digits, bits int }{
		{3, 10}, {6, 20}, {4, 14}, {4, 11}, {5, 14}, {2, 6}, {3, 8},
	}
	for _, p := range params {
		capacity := uint64(1)<<p.bits - 1
		width := fmt.Sprintf("%%0%dd", p.digits)

		if maxDecimal := pow10(p.digits) - 1; capacity <= maxDecimal {
			rest, v, err := ParseDecimalDigitsToBits(p.digits, p.bits, fmt.Sprintf(width, capacity)+"!")
			require.NoError(t, err)
			assert.Equal(t, capacity, v)
			assert.Equal(t, "!", rest)
		}

		if over := capacity + 1; over < pow10(p.digits) {
			_, _, err := ParseDecimalDigitsToBits(p.digits, p.bits, fmt.Sprintf(width, over))
			pe := requireParseError(t, err, ValueExceedsCapacity)
			assert.Equal(t, over, pe.Value)
			assert.Equal(t, capacity, pe.Capacity)
		}

		short := strings.Repeat("1", p.digits-1)
		_, _, err := ParseDecimalDigitsToBits(p.digits, p.bits, short)
		pe := requireParseError(t, err, InvalidLength)
		assert.Equal(t, p.digits, pe.Expected)
		assert.Equal(t, p.digits-1, pe.Found)
	}
}

func TestParseDecimalDigitsToBitsRejectsWidths(t *testing.T) {
	for _, w := range []struct{ digits, bits int }{{0, 10}, {-1, 10}, {3, 0}, {3, -4}, {3, 65}} {
		_, _, err := ParseDecimalDigitsToBits(w.digits, w.bits, "123")
		assert.ErrorIs(t, err, ErrInvalidWidth, "%d digits, %d bits", w.digits, w.bits)
		var pe *ParseError
		assert.False(t, errors.As(err, &pe))
	}

	rest, v, err := ParseDecimalDigitsToBits(20, 64, "18446744073709551615x")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), v)
	assert.Equal(t, "x", rest)

	_, _, err = ParseDecimalDigitsToBits(20, 64, "18446744073709551616")
	pe := requireParseError(t, err, ValueExceedsCapacity)
	assert.Equal(t, uint64(math.MaxUint64), pe.Value)
}

func pow10(n int) uint64 {
	v := uint64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func TestParseStateCode(t *testing.T) {
	rest, s, err := ParseStateCode("48155")
	require.NoError(t, err)
	assert.Equal(t, TX, s)
	assert.Equal(t, "155", rest)

	_, _, err = ParseStateCode("07")
	requireParseError(t, err, UnknownState)
	assert.ErrorIs(t, err, ErrUnknownStateCode)

	_, _, err = ParseStateCode("72")
	requireParseError(t, err, ValueExceedsCapacity)

	_, _, err = ParseStateCode("4")
	requireParseError(t, err, InvalidLength)
}

func TestParseInteger(t *testing.T) {
	cases := []struct {
		input string
		rest  string
		value uint64
	}{
		{"123rest", "rest", 123},
		{"0xyz", "xyz", 0},
		{"9876543210", "", 9876543210},
		{"5abc", "abc", 5},
		{"18446744073709551615end", "end", math.MaxUint64},
	}
	for _, tc := range cases {
		rest, v, err := ParseInteger(tc.input)
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.rest, rest)
		assert.Equal(t, tc.value, v)
	}

	for _, input := range []string{"", "abc"} {
		_, _, err := ParseInteger(input)
		pe := requireParseError(t, err, InvalidLength)
		assert.Equal(t, 1, pe.Expected)
		assert.Equal(t, 0, pe.Found)
	}

	_, _, err := ParseInteger("18446744073709551616")
	pe := requireParseError(t, err, ValueExceedsCapacity)
	assert.Equal(t, uint64(math.MaxUint64), pe.Value)
	assert.Equal(t, uint64(math.MaxUint64), pe.Capacity)
}

func TestParseErrorMessage(t *testing.T) {
	_, _, err := ParseCountyCode("4x")
	require.Error(t, err)
	assert.Equal(t, `fips: county: expected 3 digits, found 1 (input "4x")`, err.Error())
}
