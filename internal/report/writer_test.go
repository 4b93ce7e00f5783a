package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/staffscan/internal/model"
)

// createTestRoster returns a roster with one record per confidence tier.
func createTestRoster() model.Roster {
	employees := []model.Employee{
		{
			FirstName: "Jane", LastName: "Smith", Title: "Head of Lettings",
			Company: "Acme Lettings", Location: "Leeds",
			Source: model.SourceLinkedIn, Confidence: model.ConfidenceHigh,
			Link: "https://uk.linkedin.com/in/jane-smith", NeedsVerification: true,
		},
		{
			FirstName: "John", LastName: "Doe", Title: "Property Manager",
			Source: model.SourceWebsiteTeam, Confidence: model.ConfidenceMedium,
			Link: "https://acme.example/team",
		},
		{
			FirstName: "Amy", LastName: "Lee", Title: model.UnknownValue,
			Source: model.SourceWebsite, Confidence: model.ConfidenceLow,
		},
	}
	return model.Roster{
		Company:     "Acme Lettings",
		Location:    "Leeds",
		GeneratedAt: time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		SourceLabel: "acme_lettings_employees.json",
		Employees:   employees,
		Stats: model.Stats{
			Total: 3, High: 1, Medium: 1, Low: 1, LinkedIn: 1,
			Sources: []model.SourceCount{
				{Source: model.SourceLinkedIn, Count: 1},
				{Source: model.SourceWebsiteTeam, Count: 1},
				{Source: model.SourceWebsite, Count: 1},
			},
		},
	}
}

func TestExcelWriter(t *testing.T) {
	t.Parallel()

	openWorkbook := func(t *testing.T, roster model.Roster) *excelize.File {
		t.Helper()
		var buf bytes.Buffer
		n, err := NewExcelWriter(&buf).Write(roster)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}
		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("failed to open workbook: %v", err)
		}
		t.Cleanup(func() { _ = f.Close() }) //nolint:errcheck // test cleanup
		return f
	}

	cellValue := func(t *testing.T, f *excelize.File, sheet, cell string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s, %s): %v", sheet, cell, err)
		}
		return v
	}

	t.Run("sheets", func(t *testing.T) {
		t.Parallel()

		f := openWorkbook(t, createTestRoster())
		want := []string{SheetEmployees, SheetSummary, SheetInstruct}
		if diff := cmp.Diff(want, f.GetSheetList()); diff != "" {
			t.Errorf("sheets mismatch (-want +got):\n%s", diff)
		}

		roster := createTestRoster()
		roster.Validated = true
		f = openWorkbook(t, roster)
		want = append(want, SheetValidation)
		if diff := cmp.Diff(want, f.GetSheetList()); diff != "" {
			t.Errorf("validated sheets mismatch (-want +got):\n%s", diff)
		}
		if got := cellValue(t, f, SheetValidation, "A5"); got != "Total Validated Employees" {
			t.Errorf("A5 = %q", got)
		}
		if got := cellValue(t, f, SheetValidation, "B7"); got != "Yes" {
			t.Errorf("B7 = %q", got)
		}
	})

	t.Run("employee sheet", func(t *testing.T) {
		t.Parallel()

		f := openWorkbook(t, createTestRoster())
		if got := cellValue(t, f, SheetEmployees, "A1"); got != "Acme Lettings - Employee Directory" {
			t.Errorf("A1 = %q", got)
		}
		if got := cellValue(t, f, SheetEmployees, "A2"); got != "Generated on 2026-03-04 10:30:00 from acme_lettings_employees.json" {
			t.Errorf("A2 = %q", got)
		}
		merged, err := f.GetMergeCells(SheetEmployees)
		if err != nil {
			t.Fatal(err)
		}
		if len(merged) != 2 || merged[0].GetEndAxis() != "I1" {
			t.Errorf("expected A1:I1 and A2:I2 merged, got %v", merged)
		}

		rows, err := f.GetRows(SheetEmployees)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(employeeHeaders, rows[3]); diff != "" {
			t.Errorf("header mismatch (-want +got):\n%s", diff)
		}
		wantJane := []string{
			"Jane", "Smith", "Head of Lettings", "Acme Lettings", "Leeds",
			model.SourceLinkedIn, "High", "https://uk.linkedin.com/in/jane-smith",
			"Needs verification; LinkedIn profile",
		}
		if diff := cmp.Diff(wantJane, rows[4]); diff != "" {
			t.Errorf("first row mismatch (-want +got):\n%s", diff)
		}
		// Empty company and location fall back to the roster's.
		if got := rows[5][3] + "/" + rows[5][4]; got != "Acme Lettings/Leeds" {
			t.Errorf("fallback company/location = %q", got)
		}
		if got := cellValue(t, f, SheetEmployees, "H7"); got != "N/A" {
			t.Errorf("missing link = %q, want N/A", got)
		}

		ok, link, err := f.GetCellHyperLink(SheetEmployees, "H5")
		if err != nil || !ok || link != "https://uk.linkedin.com/in/jane-smith" {
			t.Errorf("H5 hyperlink = %v %q %v", ok, link, err)
		}
		// Column A is sized over the generated-on line, capped at the maximum.
		width, err := f.GetColWidth(SheetEmployees, "A")
		if err != nil || width != maxColumnWidth {
			t.Errorf("column A width = %v (%v), want %d", width, err, maxColumnWidth)
		}
		width, err = f.GetColWidth(SheetEmployees, "B")
		if err != nil || width != minColumnWidth {
			t.Errorf("column B width = %v (%v), want %d", width, err, minColumnWidth)
		}
	})

	t.Run("short title sizes column A", func(t *testing.T) {
		t.Parallel()

		roster := createTestRoster()
		roster.SourceLabel = "x"
		f := openWorkbook(t, roster)
		// "Generated on 2026-03-04 10:30:00 from x" is 39 characters.
		width, err := f.GetColWidth(SheetEmployees, "A")
		if err != nil || width != float64(ColumnWidth(39)) {
			t.Errorf("column A width = %v (%v), want %d", width, err, ColumnWidth(39))
		}
	})

	t.Run("summary sheet", func(t *testing.T) {
		t.Parallel()

		f := openWorkbook(t, createTestRoster())
		rows, err := f.GetRows(SheetSummary)
		if err != nil {
			t.Fatal(err)
		}
		var labels []string
		for _, row := range rows {
			if len(row) > 0 {
				labels = append(labels, row[0])
			}
		}
		for _, want := range []string{
			"Employee Data Summary Report", "Total Employees", "  " + model.SourceLinkedIn,
			"Confidence Levels", "  High", "  Medium", "  Low", "LinkedIn Profiles", "Next Steps",
		} {
			if !containsString(labels, want) {
				t.Errorf("summary is missing %q", want)
			}
		}
		if got := cellValue(t, f, SheetSummary, "B5"); got != "3" {
			t.Errorf("total = %q", got)
		}
	})

	t.Run("summary without LinkedIn", func(t *testing.T) {
		t.Parallel()

		roster := createTestRoster()
		roster.Stats.LinkedIn = 0
		f := openWorkbook(t, roster)
		rows, err := f.GetRows(SheetSummary)
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			if len(row) > 0 && row[0] == "Next Steps" {
				t.Error("next steps must only be listed when LinkedIn profiles exist")
			}
		}
	})
}

func TestColumnWidth(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		longest int
		want    int
	}{
		{0, 12},
		{10, 12},
		{20, 22},
		{58, 60},
		{200, 60},
	}
	for _, tc := range testCases {
		if got := ColumnWidth(tc.longest); got != tc.want {
			t.Errorf("ColumnWidth(%d) = %d, want %d", tc.longest, got, tc.want)
		}
	}
}

func TestNotes(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		e    model.Employee
		want []string
	}{
		{"none", model.Employee{Source: model.SourceWebsite}, nil},
		{"verification", model.Employee{NeedsVerification: true}, []string{"Needs verification"}},
		{"linkedin source", model.Employee{Source: model.SourceLinkedIn}, []string{"LinkedIn profile"}},
		{"linkedin link", model.Employee{Link: "https://www.linkedin.com/in/x"}, []string{"LinkedIn profile"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, Notes(tc.e)); diff != "" {
				t.Errorf("notes mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("full roster", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).Write(createTestRoster())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}
		out := buf.String()
		for _, want := range []string{
			"# Acme Lettings - Employee Directory",
			"## Confidence Levels",
			"```mermaid",
			"Confidence Distribution",
			"## Data Sources",
			"## Employees",
			"[profile](https://uk.linkedin.com/in/jane-smith)",
			"Needs verification; LinkedIn profile",
			"[!WARNING]",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("empty roster", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.Roster{Company: "Acme"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if strings.Contains(out, "mermaid") {
			t.Error("pie chart must be omitted for an empty roster")
		}
		if !strings.Contains(out, "No employees found.") {
			t.Error("expected empty roster message")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestRoster()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out := buf.String()
		if !strings.HasSuffix(out, "}\n") || strings.Count(out, "\n") != 1 {
			t.Errorf("expected one compact line, got %q", out)
		}

		var decoded model.Roster
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if diff := cmp.Diff(createTestRoster(), decoded); diff != "" {
			t.Errorf("roster mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("indented and empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(model.Roster{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"employees\": []") {
			t.Errorf("expected indented empty employees array, got %s", buf.String())
		}
	})
}

func TestTableWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTableWriter(&buf).Write(createTestRoster()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// go-pretty upper-cases headers and footers.
	out := strings.ToUpper(buf.String())
	for _, want := range []string{"JANE SMITH", "HEAD OF LETTINGS", "MEDIUM", "TOTAL 3", "H 1 / M 1 / L 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q", want)
		}
	}
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	n, err := NewMultiWriter(NewJSONWriter(&a), NewTableWriter(&b)).Write(createTestRoster())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != a.Len()+b.Len() {
		t.Errorf("n = %d, want %d", n, a.Len()+b.Len())
	}
}

func TestFormats(t *testing.T) {
	t.Parallel()

	pathCases := []struct {
		path string
		want Format
	}{
		{"out/acme.xlsx", FormatExcel},
		{"acme.MD", FormatMarkdown},
		{"acme.json", FormatJSON},
		{"acme.txt", FormatTable},
	}
	for _, tc := range pathCases {
		got, err := FormatFromPath(tc.path)
		if err != nil || got != tc.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tc.path, got, err)
		}
	}
	if _, err := FormatFromPath("acme.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	nameCases := []struct {
		name string
		want Format
	}{
		{"excel", FormatExcel},
		{"md", FormatMarkdown},
		{"JSON", FormatJSON},
		{"", FormatTable},
	}
	for _, tc := range nameCases {
		got, err := ParseFormat(tc.name)
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tc.name, got, err)
		}
	}
	if _, err := ParseFormat("pdf"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	roster := createTestRoster()
	for _, name := range []string{"nested/acme.xlsx", "acme.md", "acme.json"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, roster); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Errorf("%s was not written: %v", name, err)
		}
	}
	if err := WriteFile(filepath.Join(dir, "acme.csv"), roster); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
