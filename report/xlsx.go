package report

import (
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/liamg/bannerscan/scan"
)

const (
	SheetName = "Scan Results"

	maxColumnWidth = 80
)

// XLSXWriter writes one sheet with a frozen header row and columns sized to
// their content.
type XLSXWriter struct{}

func (XLSXWriter) Write(w io.Writer, report *scan.Report) error {

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"#DDEBF7"},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(Columns))
	widths := make([]int, len(Columns))
	for i, col := range Columns {
		header[i] = col
		widths[i] = utf8.RuneCountInString(col)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, r := range report.Results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		// port stays numeric so the sheet sorts and filters properly
		row := []interface{}{r.IP, r.Port, r.Service, r.Banner}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	for _, row := range rows(report) {
		for col, val := range row {
			if n := utf8.RuneCountInString(val); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if err := f.SetColWidth(SheetName, name, name, float64(width)*1.2+2); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}
