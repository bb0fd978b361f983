package report

import (
	"encoding/csv"
	"io"

	"github.com/liamg/bannerscan/scan"
)

type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, report *scan.Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(rows(report)); err != nil {
		return err
	}
	return writer.Error()
}
