package batch

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/calibtools/dcc-convert/internal/common"
)

// WriteReportXLSX renders one row per document outcome into an XLSX workbook.
func WriteReportXLSX(outcomes []Outcome) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Batch Report"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	// drop the default sheet so the report is the only one
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	headers := []string{
		"Source File",
		"Status",
		"Certificate Number",
		"Output File",
		"Warnings",
		"Findings",
		"Error",
		"Duration (ms)",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, o := range outcomes {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, o.SourcePath)
		write(2, string(o.Status))
		write(3, o.CertificateNumber)
		write(4, o.OutputPath)
		write(5, clip(strings.Join(o.Warnings, "; "), 280))
		write(6, clip(strings.Join(o.Findings, "; "), 280))
		write(7, clip(o.Error, 280))
		write(8, o.Duration.Milliseconds())
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 48) // source
	_ = f.SetColWidth(sheet, "B", "B", 12) // status
	_ = f.SetColWidth(sheet, "C", "C", 22) // certificate number
	_ = f.SetColWidth(sheet, "D", "D", 48) // output
	_ = f.SetColWidth(sheet, "E", "F", 48) // warnings/findings
	_ = f.SetColWidth(sheet, "G", "G", 40) // error
	_ = f.SetColWidth(sheet, "H", "H", 14) // duration

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveReportXLSX writes the report workbook to path.
func SaveReportXLSX(outcomes []Outcome, path string) error {
	b, err := WriteReportXLSX(outcomes)
	if err != nil {
		return err
	}
	return common.WrapError(os.WriteFile(path, b, 0o644), "write report")
}

// clip truncates on a rune boundary so multi-byte text stays valid UTF-8.
func clip(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}
