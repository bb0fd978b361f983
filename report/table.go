package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/liamg/bannerscan/scan"
)

// TableWriter prints the results for a terminal.
type TableWriter struct{}

func (TableWriter) Write(w io.Writer, report *scan.Report) error {

	fmt.Fprintf(w, "Scan results for host %s (%s)\n", report.Host, report.Address)

	if info := report.HostInfo; info != nil {
		if info.MAC != "" {
			fmt.Fprintf(w, "\t%s %s\n", pad("MAC:", 16), info.MAC)
		}
		if info.Manufacturer != "" {
			fmt.Fprintf(w, "\t%s %s\n", pad("Manufacturer:", 16), info.Manufacturer)
		}
		if info.Name != "" {
			fmt.Fprintf(w, "\t%s %s\n", pad("Name:", 16), info.Name)
		}
	}

	if len(report.Results) == 0 {
		fmt.Fprintf(w, "\tNo open ports in range %s\n", report.Ports)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("IP Address", "Port", "Service", "Banner")
	for _, row := range rows(report) {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func pad(input string, length int) string {
	for len(input) < length {
		input += " "
	}
	return input
}
