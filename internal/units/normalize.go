package units

// Normalize composes number parsing and unit lookup: given a raw value
// token and a raw unit token it returns the SI value and canonical SI unit
// symbol, or a *MalformedNumberError / *UnknownUnitError. It never
// substitutes a default unit.
func Normalize(valueToken, unitToken string) (float64, string, error) {
	u, err := Lookup(unitToken)
	if err != nil {
		return 0, "", err
	}
	raw, err := ParseNumber(valueToken)
	if err != nil {
		return 0, "", err
	}
	return u.ToSI(raw), u.SI, nil
}
