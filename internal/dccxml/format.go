package dccxml

import (
	"strconv"
	"strings"
)

// precisionBySI fixes the number of decimal places per canonical SI unit so
// that serialization stays locale independent and byte stable. Trailing
// zeros are trimmed after rounding.
var precisionBySI = map[string]int{
	"K":   2,
	"Pa":  1,
	"N":   2,
	"kg":  3,
	"m":   6,
	"V":   4,
	"A":   4,
	"Ω":   3,
	"s":   3,
	"Hz":  3,
	"%":   2,
	"%rh": 2,
	"ppm": 2,
}

const defaultPrecision = 4

// siNotation maps canonical unit symbols to the D-SI unit notation used by
// the DCC schema. Unmapped symbols pass through unchanged.
var siNotation = map[string]string{
	"N":   `\newton`,
	"K":   `\kelvin`,
	"Pa":  `\pascal`,
	"m":   `\metre`,
	"kg":  `\kilogram`,
	"V":   `\volt`,
	"A":   `\ampere`,
	"Ω":   `\ohm`,
	"s":   `\second`,
	"Hz":  `\hertz`,
	"%":   `\percent`,
	"%rh": `\percent`,
}

func siUnit(symbol string) string {
	if n, ok := siNotation[symbol]; ok {
		return n
	}
	return symbol
}

// formatValue renders at the unit family's precision and trims trailing
// zeros: no exponent, point as decimal separator, no grouping.
func formatValue(v float64, unit string) string {
	p, ok := precisionBySI[unit]
	if !ok {
		p = defaultPrecision
	}
	s := strconv.FormatFloat(v, 'f', p, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
