package units

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumberDisambiguation(t *testing.T) {
	cases := []struct {
		token string
		want  float64
	}{
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"12,5", 12.5},
		{"12,50", 12.5},
		{"12.345", 12.345},
		{"12,345", 12345},
		{"1,234,567", 1234567},
		{"-3,5", -3.5},
		{"+0.25", 0.25},
		{"1 234,5", 1234.5},
		{"100", 100},
		{"23,5", 23.5},
	}
	for _, tc := range cases {
		got, err := ParseNumber(tc.token)
		require.NoError(t, err, "token %q", tc.token)
		assert.InDelta(t, tc.want, got, 1e-12, "token %q", tc.token)
	}
}

func TestParseNumberMalformed(t *testing.T) {
	for _, token := range []string{"", "   ", "abc", "1.2.3,4,5", "--5", "1,2,3.4.5"} {
		_, err := ParseNumber(token)
		require.Error(t, err, "token %q", token)
		var malformed *MalformedNumberError
		assert.True(t, errors.As(err, &malformed), "token %q", token)
	}
}

func TestLookupCaseSensitive(t *testing.T) {
	lower, err := Lookup("mPa")
	require.NoError(t, err)
	upper, err := Lookup("MPa")
	require.NoError(t, err)
	assert.Equal(t, 1e-3, lower.Scale)
	assert.Equal(t, 1e6, upper.Scale)
}

func TestLookupOCRAliases(t *testing.T) {
	um, err := Lookup("um")
	require.NoError(t, err)
	assert.Equal(t, "m", um.SI)
	assert.Equal(t, 1e-6, um.Scale)

	ohm, err := Lookup("O")
	require.NoError(t, err)
	assert.Equal(t, "Ω", ohm.SI)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("furlong")
	require.Error(t, err)
	var unknown *UnknownUnitError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "furlong", unknown.Token)
}

func TestNormalizeExactness(t *testing.T) {
	v, u, err := Normalize("100", "°C")
	require.NoError(t, err)
	assert.InDelta(t, 373.15, v, 1e-9)
	assert.Equal(t, "K", u)

	v, u, err = Normalize("1", "kN")
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, v, 1e-9)
	assert.Equal(t, "N", u)

	v, u, err = Normalize("1013.25", "hPa")
	require.NoError(t, err)
	assert.InDelta(t, 101325.0, v, 1e-9)
	assert.Equal(t, "Pa", u)
}

func TestNormalizeNeverDefaultsUnit(t *testing.T) {
	_, _, err := Normalize("10", "bogus")
	var unknown *UnknownUnitError
	require.True(t, errors.As(err, &unknown))

	_, _, err = Normalize("ten", "kN")
	var malformed *MalformedNumberError
	require.True(t, errors.As(err, &malformed))
}

// Round-trip: ToSI then FromSI reproduces the input within floating point
// tolerance for every table entry.
func TestAffineRoundTrip(t *testing.T) {
	for _, sym := range Symbols() {
		u, err := Lookup(sym)
		require.NoError(t, err)
		for _, raw := range []float64{-273.15, -1, 0.001, 1, 23.5, 1013.25, 1e6} {
			si := u.ToSI(raw)
			back := u.FromSI(si)
			tol := 1e-9 * math.Max(1, math.Abs(raw))
			assert.InDelta(t, raw, back, tol, "unit %q raw %v", sym, raw)
		}
	}
}
