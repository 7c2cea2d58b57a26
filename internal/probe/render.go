package probe

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// Render writes r as an aligned text table.
func (r *Report) Render(w io.Writer) error {
	status := "ok"
	if !r.OK() {
		status = "MISSING " + strings.Join(r.Missing, ",")
	}
	fmt.Fprintf(w, "%s: rows=%s ragged=%d columns=%d status=%s\n",
		r.Source, humanize.Comma(int64(r.Rows)), r.Ragged, len(r.Header), status)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  column\ttype\tabsent\tsamples")
	for _, c := range r.Columns {
		pct := 0.0
		if r.Rows > 0 {
			pct = 100 * float64(c.Absent) / float64(r.Rows)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.1f%%\t%s\n", c.Name, c.Type, pct, strings.Join(c.Samples, " | "))
	}
	return tw.Flush()
}

// RenderJSON writes the reports as an indented JSON array.
func RenderJSON(w io.Writer, reports []*Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}
