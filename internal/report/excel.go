package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/staffscan/internal/model"
)

// Sheet names of the workbook.
const (
	SheetEmployees  = "Employee Data"
	SheetSummary    = "Summary"
	SheetInstruct   = "Instructions"
	SheetValidation = "Validation Summary"
)

// TimestampLayout formats times shown in reports.
const TimestampLayout = "2006-01-02 15:04:05"

// Employee sheet layout.
const (
	employeeHeaderRow = 4
	minColumnWidth    = 12
	maxColumnWidth    = 60
)

var employeeHeaders = []string{
	"First Name", "Last Name", "Job Title", "Company",
	"Location", "Source", "Confidence", "Profile Link", "Notes",
}

var instructionRows = [][]any{
	{"How to Use This Employee Data", ""},
	{"", ""},
	{"Data Quality", ""},
	{"• High Confidence", "Most reliable data - use for important outreach"},
	{"• Medium Confidence", "Good data - verify before using"},
	{"• Low Confidence", "Needs manual verification"},
	{"", ""},
	{"LinkedIn Profiles", ""},
	{"• Click profile links", "Opens LinkedIn profiles in browser"},
	{"• Verify current employment", "Check if they still work at target company"},
	{"• Check links", "Run staffscan with --verify to check links in bulk"},
	{"", ""},
	{"Export Options", ""},
	{"• Copy to CRM", "Select data and copy to customer management system"},
	{"• Save as CSV", "File > Save As > CSV for database import"},
	{"", ""},
	{"Data Privacy", ""},
	{"• Use responsibly", "Respect privacy laws and LinkedIn terms"},
	{"• Business use only", "Don't use for spam or unsolicited marketing"},
	{"• Keep updated", "Re-run staffscan periodically for fresh data"},
}

// ExcelWriter writes rosters as xlsx workbooks.
//
// The workbook has an "Employee Data" sheet with a merged title block, one
// row per employee and a clickable profile link, followed by "Summary" and
// "Instructions" sheets. Validated rosters get a "Validation Summary" sheet
// as well. Column widths follow the longest value in each column, title
// rows included, clamped between 12 and 60 characters.
//
// Design decision: the workbook carries layout only (merged cells,
// hyperlinks, widths) and no fonts or fills. Spreadsheet users restyle
// exports anyway, and unstyled cells survive CSV round trips unchanged.
type ExcelWriter struct {
	baseWriter
}

// NewExcelWriter creates an ExcelWriter that outputs to the given writer.
func NewExcelWriter(output io.Writer) *ExcelWriter {
	return &ExcelWriter{baseWriter: newBaseWriter(output)}
}

// Write renders the workbook.
func (w *ExcelWriter) Write(roster model.Roster) (int, error) {
	f, err := BuildWorkbook(roster)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := f.WriteTo(w.output)
	if err != nil {
		return int(n), fmt.Errorf("failed to write workbook: %w", err)
	}
	return int(n), nil
}

// BuildWorkbook lays out the employee, summary and instruction sheets, plus
// a validation summary for validated rosters.
func BuildWorkbook(roster model.Roster) (*excelize.File, error) {
	f := excelize.NewFile()
	b := &workbook{f: f}

	b.err = f.SetSheetName("Sheet1", SheetEmployees)
	b.employeeSheet(roster)
	b.newSheet(SheetSummary)
	b.rows(SheetSummary, 1, summaryRows(roster))
	b.widths(SheetSummary, []float64{35, 25})
	b.newSheet(SheetInstruct)
	b.rows(SheetInstruct, 1, instructionRows)
	b.widths(SheetInstruct, []float64{25, 60})
	if roster.Validated {
		b.newSheet(SheetValidation)
		b.rows(SheetValidation, 1, validationRows(roster))
		b.widths(SheetValidation, []float64{35, 25})
	}

	if b.err != nil {
		_ = f.Close() //nolint:errcheck // the build error is reported
		return nil, fmt.Errorf("failed to build workbook: %w", b.err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

// workbook wraps excelize calls and keeps the first error.
type workbook struct {
	f   *excelize.File
	err error
}

func (b *workbook) newSheet(name string) {
	if b.err != nil {
		return
	}
	_, b.err = b.f.NewSheet(name)
}

func (b *workbook) set(sheet string, col, row int, value any) {
	if b.err != nil {
		return
	}
	var cell string
	if cell, b.err = excelize.CoordinatesToCellName(col, row); b.err != nil {
		return
	}
	b.err = b.f.SetCellValue(sheet, cell, value)
}

func (b *workbook) rows(sheet string, startRow int, rows [][]any) {
	for i, row := range rows {
		for j, v := range row {
			b.set(sheet, j+1, startRow+i, v)
		}
	}
}

func (b *workbook) widths(sheet string, widths []float64) {
	for i, width := range widths {
		if b.err != nil {
			return
		}
		var col string
		if col, b.err = excelize.ColumnNumberToName(i + 1); b.err != nil {
			return
		}
		b.err = b.f.SetColWidth(sheet, col, col, width)
	}
}

func (b *workbook) employeeSheet(roster model.Roster) {
	const sheet = SheetEmployees
	lastCol, _ := excelize.ColumnNumberToName(len(employeeHeaders)) //nolint:errcheck // constant column count

	maxLen := make([]int, len(employeeHeaders))
	track := func(col int, s string) {
		if n := utf8.RuneCountInString(s); n > maxLen[col] {
			maxLen[col] = n
		}
	}

	// The merged title rows hold their text in column A, which is sized over them too.
	title := companyOr(roster.Company) + " - Employee Directory"
	generated := fmt.Sprintf("Generated on %s from %s",
		roster.GeneratedAt.Format(TimestampLayout), roster.SourceLabel)
	b.set(sheet, 1, 1, title)
	b.set(sheet, 1, 2, generated)
	track(0, title)
	track(0, generated)
	if b.err == nil {
		b.err = b.f.MergeCell(sheet, "A1", lastCol+"1")
	}
	if b.err == nil {
		b.err = b.f.MergeCell(sheet, "A2", lastCol+"2")
	}

	for i, h := range employeeHeaders {
		b.set(sheet, i+1, employeeHeaderRow, h)
		track(i, h)
	}

	for i, e := range roster.Employees {
		row := employeeHeaderRow + 1 + i
		values := employeeRow(e, roster)
		for j, v := range values {
			b.set(sheet, j+1, row, v)
			track(j, v)
		}
		if link := strings.TrimSpace(e.Link); isWebLink(link) && b.err == nil {
			cell, _ := excelize.CoordinatesToCellName(8, row) //nolint:errcheck // fixed column
			b.err = b.f.SetCellHyperLink(sheet, cell, link, "External")
		}
	}

	widths := make([]float64, len(maxLen))
	for i, n := range maxLen {
		widths[i] = float64(ColumnWidth(n))
	}
	b.widths(sheet, widths)
}

// ColumnWidth returns min(max(longest+2, 12), 60).
func ColumnWidth(longest int) int {
	return min(max(longest+2, minColumnWidth), maxColumnWidth)
}

func employeeRow(e model.Employee, roster model.Roster) []string {
	company := e.Company
	if company == "" {
		company = roster.Company
	}
	location := e.Location
	if location == "" {
		location = roster.Location
	}
	link := strings.TrimSpace(e.Link)
	if link == "" {
		link = "N/A"
	}
	return []string{
		e.FirstName,
		e.LastName,
		e.Title,
		company,
		location,
		e.Source,
		e.Confidence.Label(),
		link,
		strings.Join(Notes(e), "; "),
	}
}

// Notes returns the notes shown next to a record.
func Notes(e model.Employee) []string {
	var notes []string
	if e.NeedsVerification {
		notes = append(notes, "Needs verification")
	}
	if linkedInNote(e) {
		notes = append(notes, "LinkedIn profile")
	}
	return notes
}

func summaryRows(roster model.Roster) [][]any {
	stats := roster.Stats
	rows := [][]any{
		{"Employee Data Summary Report", ""},
		{"", ""},
		{"Company", roster.Company},
		{"Location", roster.Location},
		{"Total Employees", stats.Total},
		{"Report Generated", roster.GeneratedAt.Format(TimestampLayout)},
		{"Data Source", roster.SourceLabel},
		{"", ""},
		{"Data Sources", ""},
	}
	for _, sc := range stats.Sources {
		rows = append(rows, []any{"  " + sc.Source, sc.Count})
	}
	rows = append(rows, []any{"", ""}, []any{"Confidence Levels", ""})
	rows = append(rows, confidenceRows(stats)...)
	if stats.LinkedIn > 0 {
		rows = append(rows,
			[]any{"", ""},
			[]any{"LinkedIn Profiles", stats.LinkedIn},
			[]any{"Verification Available", "Yes"},
			[]any{"", ""},
			[]any{"Next Steps", ""},
			[]any{"1. Review LinkedIn profiles manually", ""},
			[]any{"2. Run staffscan with --verify", ""},
			[]any{"3. Export data to CRM/database", ""},
		)
	}
	return rows
}

func validationRows(roster model.Roster) [][]any {
	stats := roster.Stats
	rows := [][]any{
		{"Validation Report", ""},
		{"", ""},
		{"Company", roster.Company},
		{"Location", roster.Location},
		{"Total Validated Employees", stats.Total},
		{"Validation Date", roster.GeneratedAt.Format(TimestampLayout)},
		{"Name Validation Applied", "Yes"},
		{"", ""},
		{"Sources:", ""},
	}
	for _, sc := range stats.Sources {
		rows = append(rows, []any{"  " + sc.Source, sc.Count})
	}
	rows = append(rows, []any{"", ""}, []any{"Confidence Levels:", ""})
	rows = append(rows, confidenceRows(stats)...)
	if stats.LinkedIn > 0 {
		rows = append(rows,
			[]any{"", ""},
			[]any{"LinkedIn Profiles Available:", ""},
			[]any{"  Ready for verification", stats.LinkedIn},
		)
	}
	return rows
}

// confidenceRows lists the non-empty tiers from high to low.
func confidenceRows(stats model.Stats) [][]any {
	var rows [][]any
	for _, c := range model.Confidences {
		if n := stats.Count(c); n > 0 {
			rows = append(rows, []any{"  " + c.Label(), n})
		}
	}
	return rows
}

func companyOr(company string) string {
	if company == "" {
		return "Company"
	}
	return company
}

func isWebLink(link string) bool {
	l := strings.ToLower(link)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
