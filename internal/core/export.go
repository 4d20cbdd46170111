package core

import (
	"bufio"
	"io"
	"strings"
	"time"
)

// ReportHeader is the first line of a service report export.
var ReportHeader = []string{
	"Report Date",
	"Service ID",
	"Technician",
	"Site Officer",
	"Client Email",
	"Comments",
	"Client",
	"Suburb",
}

// ReportDateLayout renders report dates, e.g. "Jan 2, 2006, 3:04:05 PM".
const ReportDateLayout = "Jan 2, 2006, 3:04:05 PM"

// WriteReportsCSV writes the header and one line per row. Every data cell is
// quoted and embedded quotes are doubled; the header is written bare.
func WriteReportsCSV(w io.Writer, rows []ReportRow) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(ReportHeader, ",") + "\n"); err != nil {
		return err
	}

	cells := make([]string, len(ReportHeader))
	for _, r := range rows {
		cells[0] = quoteCell(formatReportDate(r.ReportDate))
		cells[1] = quoteCell(r.ServiceID)
		cells[2] = quoteCell(r.Technician)
		cells[3] = quoteCell(r.SiteOfficer)
		cells[4] = quoteCell(r.ClientEmail)
		cells[5] = quoteCell(r.Comments)
		cells[6] = quoteCell(r.Client)
		cells[7] = quoteCell(r.Suburb)

		if _, err := bw.WriteString(strings.Join(cells, ",") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReportFileName is the download name for an export made at now.
func ReportFileName(now time.Time) string {
	return "service-reports-" + now.Format("2006-01-02") + ".csv"
}

func formatReportDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ReportDateLayout)
}

func quoteCell(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
