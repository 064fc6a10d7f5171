package fips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTable(t *testing.T) {
	states := AllStates()
	assert.Len(t, states, 56)
	assert.Equal(t, HawaiianCoast, states[len(states)-1])
	for _, s := range states {
		assert.LessOrEqual(t, uint8(s), uint8(MaxState))
		back, ok := StateByAbbr(s.String())
		require.True(t, ok, "abbr %s", s)
		assert.Equal(t, s, back)
		assert.NotEmpty(t, s.Name())
	}

	s, ok := StateByAbbr(" tx ")
	assert.True(t, ok)
	assert.Equal(t, TX, s)
	assert.Equal(t, "Texas", s.Name())

	_, ok = LookupState(7)
	assert.False(t, ok)
	_, ok = LookupState(64)
	assert.False(t, ok)
	assert.Equal(t, "State(7)", State(7).String())
}

func TestStateText(t *testing.T) {
	var s State
	require.NoError(t, s.UnmarshalText([]byte("md")))
	assert.Equal(t, MD, s)
	require.NoError(t, s.UnmarshalText([]byte("02")))
	assert.Equal(t, AK, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("ZZ")), ErrUnknownStateCode)

	_, err := State(0).MarshalText()
	assert.ErrorIs(t, err, ErrUnknownStateCode)
}

func TestDecodeCategory(t *testing.T) {
	for v := uint8(0); v <= 5; v++ {
		c, ok := DecodeCategory(v)
		require.True(t, ok)
		assert.Equal(t, v, c.Encode())
	}
	for _, v := range []uint8{6, 15, 255} {
		_, ok := DecodeCategory(v)
		assert.False(t, ok, "value %d", v)
	}
}

func TestParseCategory(t *testing.T) {
	cases := map[string]SettingCategory{
		"home":           Home,
		"Work":           Workplace,
		"workplace":      Workplace,
		"school":         PublicSchool,
		"public_school":  PublicSchool,
		"private_school": PrivateSchool,
		"tract":          CensusTract,
		"":               Unspecified,
	}
	for in, want := range cases {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCategory("zcta")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	assert.Equal(t, "private_school", PrivateSchool.Slug())
	assert.Equal(t, "Public School", PublicSchool.String())
}
