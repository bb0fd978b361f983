package report

import (
	"encoding/json"
	"io"

	"github.com/liamg/bannerscan/scan"
)

// JSONWriter writes the whole report, including scan metadata.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, report *scan.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
