// Package units normalizes raw value/unit tokens from certificate text into
// canonical SI pairs via affine conversions (si = raw*scale + offset).
package units

import (
	"fmt"
	"strings"
)

// Unit describes one accepted unit spelling and its affine conversion to a
// canonical SI unit. Temperature is the only family with a non-zero offset.
type Unit struct {
	Symbol string // accepted spelling, e.g. "kN"
	Name   string // full name, e.g. "kilonewton"
	SI     string // canonical SI symbol, e.g. "N"
	Scale  float64
	Offset float64
}

// ToSI applies the affine conversion.
func (u Unit) ToSI(raw float64) float64 {
	return raw*u.Scale + u.Offset
}

// FromSI inverts the affine conversion.
func (u Unit) FromSI(si float64) float64 {
	return (si - u.Offset) / u.Scale
}

// UnknownUnitError reports a unit token that is not in the table. It carries
// the offending token for diagnostics.
type UnknownUnitError struct {
	Token string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit token %q", e.Token)
}

// table maps accepted spellings to their conversion. Lookup is
// case-sensitive: symbols that differ only by case carry different meaning
// (mPa vs MPa). OCR confusions get explicit alias rows instead.
var table = map[string]Unit{
	// Force -> N
	"N":  {Symbol: "N", Name: "newton", SI: "N", Scale: 1},
	"kN": {Symbol: "kN", Name: "kilonewton", SI: "N", Scale: 1e3},
	"MN": {Symbol: "MN", Name: "meganewton", SI: "N", Scale: 1e6},
	"mN": {Symbol: "mN", Name: "millinewton", SI: "N", Scale: 1e-3},

	// Temperature -> K (the only offset family)
	"K":  {Symbol: "K", Name: "kelvin", SI: "K", Scale: 1},
	"°C": {Symbol: "°C", Name: "degree Celsius", SI: "K", Scale: 1, Offset: 273.15},
	"℃":  {Symbol: "℃", Name: "degree Celsius", SI: "K", Scale: 1, Offset: 273.15},
	"°F": {Symbol: "°F", Name: "degree Fahrenheit", SI: "K", Scale: 5.0 / 9.0, Offset: 255.3722222222222},

	// Pressure -> Pa
	"Pa":   {Symbol: "Pa", Name: "pascal", SI: "Pa", Scale: 1},
	"kPa":  {Symbol: "kPa", Name: "kilopascal", SI: "Pa", Scale: 1e3},
	"MPa":  {Symbol: "MPa", Name: "megapascal", SI: "Pa", Scale: 1e6},
	"mPa":  {Symbol: "mPa", Name: "millipascal", SI: "Pa", Scale: 1e-3},
	"hPa":  {Symbol: "hPa", Name: "hectopascal", SI: "Pa", Scale: 100},
	"bar":  {Symbol: "bar", Name: "bar", SI: "Pa", Scale: 1e5},
	"mbar": {Symbol: "mbar", Name: "millibar", SI: "Pa", Scale: 100},

	// Length -> m
	"m":  {Symbol: "m", Name: "metre", SI: "m", Scale: 1},
	"cm": {Symbol: "cm", Name: "centimetre", SI: "m", Scale: 1e-2},
	"mm": {Symbol: "mm", Name: "millimetre", SI: "m", Scale: 1e-3},
	"µm": {Symbol: "µm", Name: "micrometre", SI: "m", Scale: 1e-6},
	"um": {Symbol: "um", Name: "micrometre", SI: "m", Scale: 1e-6}, // OCR drops the micro sign
	"μm": {Symbol: "μm", Name: "micrometre", SI: "m", Scale: 1e-6}, // greek mu variant
	"nm": {Symbol: "nm", Name: "nanometre", SI: "m", Scale: 1e-9},

	// Mass -> kg
	"kg": {Symbol: "kg", Name: "kilogram", SI: "kg", Scale: 1},
	"g":  {Symbol: "g", Name: "gram", SI: "kg", Scale: 1e-3},
	"mg": {Symbol: "mg", Name: "milligram", SI: "kg", Scale: 1e-6},
	"t":  {Symbol: "t", Name: "tonne", SI: "kg", Scale: 1e3},

	// Voltage -> V
	"V":  {Symbol: "V", Name: "volt", SI: "V", Scale: 1},
	"mV": {Symbol: "mV", Name: "millivolt", SI: "V", Scale: 1e-3},
	"kV": {Symbol: "kV", Name: "kilovolt", SI: "V", Scale: 1e3},
	"µV": {Symbol: "µV", Name: "microvolt", SI: "V", Scale: 1e-6},
	"uV": {Symbol: "uV", Name: "microvolt", SI: "V", Scale: 1e-6},

	// Current -> A
	"A":  {Symbol: "A", Name: "ampere", SI: "A", Scale: 1},
	"mA": {Symbol: "mA", Name: "milliampere", SI: "A", Scale: 1e-3},
	"µA": {Symbol: "µA", Name: "microampere", SI: "A", Scale: 1e-6},
	"uA": {Symbol: "uA", Name: "microampere", SI: "A", Scale: 1e-6},

	// Resistance -> Ω (OCR reads the ohm sign as O or 0)
	"Ω":    {Symbol: "Ω", Name: "ohm", SI: "Ω", Scale: 1},
	"Ohm":  {Symbol: "Ohm", Name: "ohm", SI: "Ω", Scale: 1},
	"ohm":  {Symbol: "ohm", Name: "ohm", SI: "Ω", Scale: 1},
	"O":    {Symbol: "O", Name: "ohm", SI: "Ω", Scale: 1},
	"kΩ":   {Symbol: "kΩ", Name: "kiloohm", SI: "Ω", Scale: 1e3},
	"kOhm": {Symbol: "kOhm", Name: "kiloohm", SI: "Ω", Scale: 1e3},
	"kO":   {Symbol: "kO", Name: "kiloohm", SI: "Ω", Scale: 1e3},
	"MΩ":   {Symbol: "MΩ", Name: "megaohm", SI: "Ω", Scale: 1e6},
	"MOhm": {Symbol: "MOhm", Name: "megaohm", SI: "Ω", Scale: 1e6},
	"MO":   {Symbol: "MO", Name: "megaohm", SI: "Ω", Scale: 1e6},
	"mΩ":   {Symbol: "mΩ", Name: "milliohm", SI: "Ω", Scale: 1e-3},

	// Time -> s
	"s":   {Symbol: "s", Name: "second", SI: "s", Scale: 1},
	"ms":  {Symbol: "ms", Name: "millisecond", SI: "s", Scale: 1e-3},
	"µs":  {Symbol: "µs", Name: "microsecond", SI: "s", Scale: 1e-6},
	"us":  {Symbol: "us", Name: "microsecond", SI: "s", Scale: 1e-6},
	"min": {Symbol: "min", Name: "minute", SI: "s", Scale: 60},
	"h":   {Symbol: "h", Name: "hour", SI: "s", Scale: 3600},

	// Frequency -> Hz
	"Hz":  {Symbol: "Hz", Name: "hertz", SI: "Hz", Scale: 1},
	"kHz": {Symbol: "kHz", Name: "kilohertz", SI: "Hz", Scale: 1e3},
	"MHz": {Symbol: "MHz", Name: "megahertz", SI: "Hz", Scale: 1e6},
	"GHz": {Symbol: "GHz", Name: "gigahertz", SI: "Hz", Scale: 1e9},

	// Dimensionless ratios stay as themselves
	"%":   {Symbol: "%", Name: "percent", SI: "%", Scale: 1},
	"%rh": {Symbol: "%rh", Name: "percent relative humidity", SI: "%rh", Scale: 1},
	"%RH": {Symbol: "%RH", Name: "percent relative humidity", SI: "%rh", Scale: 1},
	"ppm": {Symbol: "ppm", Name: "parts per million", SI: "ppm", Scale: 1},
}

// Lookup resolves a raw unit token to its table entry. Surrounding
// whitespace is tolerated; spelling is otherwise matched exactly.
func Lookup(token string) (Unit, error) {
	s := strings.TrimSpace(token)
	if u, ok := table[s]; ok {
		return u, nil
	}
	return Unit{}, &UnknownUnitError{Token: token}
}

// Known reports whether a token resolves without exposing the entry.
func Known(token string) bool {
	_, err := Lookup(token)
	return err == nil
}

// Symbols returns every accepted spelling, for diagnostics and tests.
func Symbols() []string {
	out := make([]string, 0, len(table))
	for k := range table {
		out = append(out, k)
	}
	return out
}
