package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/staffscan/internal/model"
)

// MarkdownWriter outputs rosters as GitHub-flavored Markdown.
//
// The document opens with the company heading and a summary list, shows
// the confidence split as a mermaid pie chart, then lists employees in a
// table. An alert under the chart names the weakest tier present, so a
// reader sees at a glance how much manual checking the roster needs.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the roster.
func (w *MarkdownWriter) Write(roster model.Roster) (int, error) {
	cw := &countingWriter{w: w.output}
	md := markdown.NewMarkdown(cw)

	w.writeHeader(md, roster)
	w.writeConfidence(md, roster.Stats)
	w.writeSources(md, roster.Stats)
	w.writeEmployees(md, roster)
	w.writeFooter(md)

	err := md.Build()
	return cw.n, err
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, roster model.Roster) {
	md.H1(companyOr(roster.Company) + " - Employee Directory")
	md.PlainText("")

	validated := "No"
	if roster.Validated {
		validated = "Yes"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Company", cell(roster.Company)},
			{"Location", cell(roster.Location)},
			{"Generated", roster.GeneratedAt.Format(TimestampLayout)},
			{"Data Source", cell(roster.SourceLabel)},
			{"Total Employees", strconv.Itoa(roster.Stats.Total)},
			{"Name Validation Applied", validated},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeConfidence(md *markdown.Markdown, stats model.Stats) {
	md.H2("Confidence Levels")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Confidences)+1)
	for _, c := range model.Confidences {
		rows = append(rows, []string{c.Label(), strconv.Itoa(stats.Count(c))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(stats.Total) + "**"})
	md.Table(markdown.TableSet{Header: []string{"Confidence", "Count"}, Rows: rows})
	md.PlainText("")

	if stats.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Confidence Distribution"),
			piechart.WithShowData(true),
		)
		for _, c := range model.Confidences {
			if n := stats.Count(c); n > 0 {
				chart.LabelAndIntValue(c.Label(), uint64(n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case stats.Total == 0:
		md.Caution("No employees were found.")
	case stats.Low > 0:
		md.Warningf("%d record(s) have low confidence and need manual verification.", stats.Low)
	case stats.Medium > 0:
		md.Importantf("%d record(s) have medium confidence. Verify them before use.", stats.Medium)
	default:
		md.Tip("Every record has high confidence.")
	}
	md.PlainText("")

	if stats.LinkedIn > 0 {
		md.Note(strconv.Itoa(stats.LinkedIn) + " LinkedIn profile(s) are ready for manual review.")
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSources(md *markdown.Markdown, stats model.Stats) {
	if len(stats.Sources) == 0 {
		return
	}
	md.H2("Data Sources")
	md.PlainText("")
	rows := make([][]string, 0, len(stats.Sources))
	for _, sc := range stats.Sources {
		rows = append(rows, []string{cell(sc.Source), strconv.Itoa(sc.Count)})
	}
	md.Table(markdown.TableSet{Header: []string{"Source", "Count"}, Rows: rows})
	md.PlainText("")
}

func (w *MarkdownWriter) writeEmployees(md *markdown.Markdown, roster model.Roster) {
	md.H2("Employees")
	md.PlainText("")
	if len(roster.Employees) == 0 {
		md.PlainText("No employees found.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(roster.Employees))
	for _, e := range roster.Employees {
		link := "N/A"
		if l := strings.TrimSpace(e.Link); isWebLink(l) {
			link = markdown.Link("profile", l)
		}
		rows = append(rows, []string{
			cell(e.FullName()),
			cell(e.Title),
			cell(e.Source),
			e.Confidence.Label(),
			link,
			cell(strings.Join(Notes(e), "; ")),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "Job Title", "Source", "Confidence", "Link", "Notes"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by staffscan. Use this data responsibly and respect privacy laws.*")
}

// cell escapes pipes so a value stays inside its table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
