package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/calibtools/dcc-convert/internal/entity"
	"github.com/calibtools/dcc-convert/internal/units"
)

type columnRole int

const (
	colName columnRole = iota
	colNominal
	colMeasured
	colUncertainty
	colDeviation
	colUnit
)

// headerTokens map header cell text to a column role. Order matters:
// "Messunsicherheit" must hit uncertainty before the "mess" measured token.
var headerTokens = []struct {
	re   *regexp.Regexp
	role columnRole
}{
	{regexp.MustCompile(`(?i)uncert|unsicherheit`), colUncertainty},
	{regexp.MustCompile(`(?i)deviation|abweichung`), colDeviation},
	{regexp.MustCompile(`(?i)nominal|reference|soll`), colNominal},
	{regexp.MustCompile(`(?i)measured|actual|ist(?:wert)?\b|mess`), colMeasured},
	{regexp.MustCompile(`(?i)^unit|einheit`), colUnit},
	{regexp.MustCompile(`(?i)quantity|name|gr[öo][ßs]+e`), colName},
}

var (
	rePipe      = regexp.MustCompile(`\s*\|\s*`)
	reSpaceRun  = regexp.MustCompile(`\s{2,}|\t+`)
	reHasDigit  = regexp.MustCompile(`\d`)
	reRuleLine  = regexp.MustCompile(`^[\s|+._=-]+$`)
	reCellValue = regexp.MustCompile(`^([+\-]?[\d.,](?:[\d.,\s]*[\d])?)\s*(.*)$`)
	reHdrUnit   = regexp.MustCompile(`[\[(]\s*([^\])\s]+)\s*[\])]`)
)

// splitCells segments one line into column cells: explicit pipe separators
// win, otherwise tab or 2+-space runs.
func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	var parts []string
	if strings.Contains(line, "|") {
		parts = rePipe.Split(strings.Trim(line, "| "), -1)
	} else {
		parts = reSpaceRun.Split(line, -1)
	}
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

// detectHeader maps cells to column roles when the line reads like a table
// header. The second return carries column-wide units from header cells
// such as "Nominal [kN]".
func detectHeader(cells []string) (map[int]columnRole, map[int]string, bool) {
	roles := make(map[int]columnRole)
	colUnits := make(map[int]string)
	for i, cell := range cells {
		if reHasDigit.MatchString(reHdrUnit.ReplaceAllString(cell, "")) {
			// numbers outside a bracketed unit mean this is a data row
			return nil, nil, false
		}
		for _, ht := range headerTokens {
			if ht.re.MatchString(cell) {
				roles[i] = ht.role
				if g := reHdrUnit.FindStringSubmatch(cell); g != nil {
					colUnits[i] = g[1]
				}
				break
			}
		}
	}
	if len(roles) < 2 {
		return nil, nil, false
	}
	return roles, colUnits, true
}

// cellValue splits a cell such as "10.02 kN" into value and unit tokens.
func cellValue(cell string) (valueToken, unitToken string, ok bool) {
	g := reCellValue.FindStringSubmatch(cell)
	if g == nil || !reHasDigit.MatchString(g[1]) {
		return "", "", false
	}
	return g[1], strings.TrimSpace(g[2]), true
}

const maxQuantityName = 100

// ExtractTable segments raw text into measurement rows. A line counts as a
// table row when it splits into at least two cells and contains a digit;
// rows that cannot yield a quantity name plus one numeric value are dropped
// with a recorded warning, never an error. Column-to-field mapping follows
// a detected header row, falling back to the fixed default order
// (name, nominal, measured, uncertainty, unit).
func (e *Extractor) ExtractTable(raw string) ([]entity.MeasurementResult, []string) {
	var (
		results  []entity.MeasurementResult
		warnings []string
		roles    map[int]columnRole
		colUnits map[int]string
	)

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" || reRuleLine.MatchString(line) {
			continue
		}
		cells := splitCells(line)
		if len(cells) < 2 {
			continue
		}
		if r, u, ok := detectHeader(cells); ok {
			roles, colUnits = r, u
			continue
		}
		if !reHasDigit.MatchString(line) {
			continue
		}

		row, warn := e.parseRow(cells, roles, colUnits)
		if warn != "" {
			warnings = append(warnings, warn)
			continue
		}
		results = append(results, *row)
	}
	return results, warnings
}

// measuredCell is one numeric cell before field assignment.
type measuredCell struct {
	role      columnRole
	value     string
	unit      string
	hasRole   bool
	cellIndex int
}

func (e *Extractor) parseRow(cells []string, roles map[int]columnRole, colUnits map[int]string) (*entity.MeasurementResult, string) {
	line := strings.Join(cells, " | ")

	var name string
	var numeric []measuredCell
	rowUnit := ""

	for i, cell := range cells {
		role, hasRole := roles[i]
		if hasRole && role == colName {
			name = cell
			continue
		}
		if hasRole && role == colUnit {
			rowUnit = cell
			continue
		}
		if v, u, ok := cellValue(cell); ok {
			numeric = append(numeric, measuredCell{role: role, value: v, unit: u, hasRole: hasRole, cellIndex: i})
			continue
		}
		// non-numeric cell without a role: first one is the quantity name
		if name == "" && !hasRole {
			name = cell
		}
	}

	if name == "" || len(name) > maxQuantityName {
		return nil, fmt.Sprintf("table row dropped, no usable quantity name: %q", line)
	}
	if len(numeric) == 0 {
		return nil, fmt.Sprintf("table row dropped, no numeric value: %q", line)
	}

	var nominal, measured, uncertainty, deviation *entity.MeasuredValue
	var unassigned []measuredCell
	for _, c := range numeric {
		if !c.hasRole {
			unassigned = append(unassigned, c)
			continue
		}
		mv, warn := e.normalizeCell(c, colUnits, rowUnit, line)
		if warn != "" {
			return nil, warn
		}
		switch c.role {
		case colNominal:
			nominal = mv
		case colMeasured:
			measured = mv
		case colUncertainty:
			uncertainty = mv
		case colDeviation:
			deviation = mv
		}
	}

	// No header: fixed default order nominal, measured, uncertainty.
	// A single value is the measured one.
	if len(unassigned) > 0 {
		slots := make([]**entity.MeasuredValue, 0, 3)
		switch len(unassigned) {
		case 1:
			slots = append(slots, &measured)
		case 2:
			slots = append(slots, &nominal, &measured)
		default:
			slots = append(slots, &nominal, &measured, &uncertainty)
		}
		for i, c := range unassigned {
			if i >= len(slots) {
				break
			}
			mv, warn := e.normalizeCell(c, colUnits, rowUnit, line)
			if warn != "" {
				return nil, warn
			}
			*slots[i] = mv
		}
	}

	if measured == nil && nominal != nil {
		measured, nominal = nominal, nil
	}
	if measured == nil {
		return nil, fmt.Sprintf("table row dropped, no measured value: %q", line)
	}

	return &entity.MeasurementResult{
		Name:        name,
		Nominal:     nominal,
		Measured:    *measured,
		Uncertainty: uncertainty,
		Deviation:   deviation,
	}, ""
}

// normalizeCell resolves the unit for one numeric cell (own cell, then the
// row's unit column, then the header's column-wide unit) and normalizes to
// SI. A cell with no unit anywhere keeps its parsed value with an empty
// unit; the validator reports those downstream.
func (e *Extractor) normalizeCell(c measuredCell, colUnits map[int]string, rowUnit, line string) (*entity.MeasuredValue, string) {
	unitToken := c.unit
	if unitToken == "" {
		unitToken = rowUnit
	}
	if unitToken == "" {
		unitToken = colUnits[c.cellIndex]
	}
	if unitToken == "" {
		v, err := units.ParseNumber(c.value)
		if err != nil {
			return nil, fmt.Sprintf("table row dropped, %v: %q", err, line)
		}
		return &entity.MeasuredValue{Value: v}, ""
	}
	si, siUnit, err := units.Normalize(c.value, unitToken)
	if err != nil {
		return nil, fmt.Sprintf("table row dropped, %v: %q", err, line)
	}
	return &entity.MeasuredValue{Value: si, Unit: siUnit}, ""
}
