package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/staffscan/internal/model"
)

// TableWriter prints rosters as a terminal table.
// It is what 'staffscan run' shows after each company and what
// 'staffscan report' prints when no format is given.
//
// Design decision: long job titles wrap at 40 characters instead of
// widening the table, so wide rosters stay readable in a terminal. The
// footer carries the total and the per-tier counts.
type TableWriter struct {
	baseWriter
	style table.Style
}

// TableWriterOption configures a TableWriter.
type TableWriterOption func(*TableWriter)

// WithTableStyle sets the go-pretty table style.
func WithTableStyle(style table.Style) TableWriterOption {
	return func(w *TableWriter) {
		w.style = style
	}
}

// NewTableWriter creates a TableWriter that outputs to the given writer.
func NewTableWriter(output io.Writer, opts ...TableWriterOption) *TableWriter {
	w := &TableWriter{
		baseWriter: newBaseWriter(output),
		style:      table.StyleRounded,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write prints one row per employee followed by a confidence footer.
func (w *TableWriter) Write(roster model.Roster) (int, error) {
	tw := table.NewWriter()
	tw.SetStyle(w.style)
	tw.SetTitle(companyOr(roster.Company) + " - Employee Directory")
	tw.AppendHeader(table.Row{"#", "Name", "Job Title", "Source", "Confidence", "Notes"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, WidthMax: 40},
	})
	for i, e := range roster.Employees {
		tw.AppendRow(table.Row{
			i + 1,
			e.FullName(),
			e.Title,
			e.Source,
			e.Confidence.Label(),
			strings.Join(Notes(e), "; "),
		})
	}

	stats := roster.Stats
	tw.AppendFooter(table.Row{"", "Total " + strconv.Itoa(stats.Total), "",
		"", "H " + strconv.Itoa(stats.High) + " / M " + strconv.Itoa(stats.Medium) + " / L " + strconv.Itoa(stats.Low), ""})

	return io.WriteString(w.output, tw.Render()+"\n")
}
