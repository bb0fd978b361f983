// Package report turns a finished scan into tabular output: a spreadsheet by
// default, or CSV, JSON or a console table.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/liamg/bannerscan/scan"
)

type Format string

const (
	FormatXLSX  Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// Columns are the headings of every tabular format, one row per open port.
var Columns = []string{"IP Address", "Port", "Service", "Banner"}

type Writer interface {
	Write(w io.Writer, report *scan.Report) error
}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatXLSX:
		return XLSXWriter{}, nil
	case FormatCSV:
		return CSVWriter{}, nil
	case FormatJSON:
		return JSONWriter{}, nil
	case FormatTable:
		return TableWriter{}, nil
	}
	return nil, fmt.Errorf("unknown report format '%s'", format)
}

// WriteFile renders report and atomically replaces path with the result.
func WriteFile(path string, format Format, report *scan.Report) error {
	writer, err := NewWriter(format)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if err := writer.Write(buf, report); err != nil {
		return fmt.Errorf("failed to render %s report: %w", format, err)
	}

	return WriteAtomic(path, buf.Bytes())
}

func rows(report *scan.Report) [][]string {
	out := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		out = append(out, []string{
			r.IP,
			strconv.Itoa(r.Port),
			r.Service,
			r.Banner,
		})
	}
	return out
}
