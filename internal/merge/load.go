package merge

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nao1215/staffscan/internal/model"
	"github.com/titanous/json5"
)

var (
	// ErrEmptyFile is returned when a record or hit file holds no data.
	ErrEmptyFile = errors.New("file is empty")

	// ErrUnknownLayout is returned when JSON is neither a list nor a known wrapper object.
	ErrUnknownLayout = errors.New("unrecognized file layout")

	// ErrMissingURLColumn is returned for CSV hit files without a url column.
	ErrMissingURLColumn = errors.New("csv hit file has no url column")
)

// verificationDateLayouts are the timestamp formats found in record files.
var verificationDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// fileRecord is the on-disk shape of an employee record. Older files name
// the link field differently, so every variant is accepted.
type fileRecord struct {
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Title              string  `json:"title"`
	Company            string  `json:"company_name"`
	Location           string  `json:"location"`
	Source             string  `json:"source"`
	Confidence         string  `json:"confidence"`
	Link               string  `json:"link"`
	SourceLink         string  `json:"source_link"`
	URL                string  `json:"url"`
	LinkedInURL        string  `json:"linkedin_url"`
	NeedsVerification  bool    `json:"needs_verification"`
	VerificationStatus string  `json:"verification_status"`
	VerificationDate   string  `json:"verification_date"`
	ValidationScore    float64 `json:"validation_score"`
	ValidationReason   string  `json:"validation_reason"`
}

func (r fileRecord) employee() model.Employee {
	e := model.Employee{
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Title:              r.Title,
		Company:            r.Company,
		Location:           r.Location,
		Source:             r.Source,
		Confidence:         model.ParseConfidence(r.Confidence),
		Link:               firstNonEmpty(r.Link, r.SourceLink, r.URL, r.LinkedInURL),
		NeedsVerification:  r.NeedsVerification,
		VerificationStatus: r.VerificationStatus,
		ValidationScore:    r.ValidationScore,
		ValidationReason:   r.ValidationReason,
	}
	if r.VerificationDate != "" {
		for _, layout := range verificationDateLayouts {
			if t, err := time.Parse(layout, r.VerificationDate); err == nil {
				e.VerificationDate = &t
				break
			}
		}
	}
	return e
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// LoadRecordFile reads employee records from a JSON file. The file may hold
// a list of records or an object with an "employees" list. Comments and
// trailing commas are tolerated.
func LoadRecordFile(path string) ([]model.Employee, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}
	return ParseRecords(data)
}

// ParseRecords decodes employee records from JSON or JSON5 data.
func ParseRecords(data []byte) ([]model.Employee, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var raw []fileRecord
	switch data[0] {
	case '[':
		if err := json5.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
	case '{':
		var wrapper struct {
			Employees []fileRecord `json:"employees"`
		}
		if err := json5.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		if wrapper.Employees == nil {
			return nil, ErrUnknownLayout
		}
		raw = wrapper.Employees
	default:
		return nil, ErrUnknownLayout
	}

	out := make([]model.Employee, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.employee())
	}
	return out, nil
}

// WriteRecordFile writes records as an indented JSON list.
func WriteRecordFile(path string, records []model.Employee) error {
	if records == nil {
		records = []model.Employee{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}

// LoadHitFile reads X-ray search hits exported by a search tool. Files
// ending in .csv are read as CSV with title, url and description columns;
// anything else as JSON (a list, or an object with a "results" or "hits" list).
func LoadHitFile(path string) ([]model.SearchHit, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open hit file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ParseHitsCSV(f)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read hit file: %w", err)
	}
	return ParseHitsJSON(data)
}

// ParseHitsJSON decodes search hits from JSON or JSON5 data.
func ParseHitsJSON(data []byte) ([]model.SearchHit, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	var hits []model.SearchHit
	switch data[0] {
	case '[':
		if err := json5.Unmarshal(data, &hits); err != nil {
			return nil, fmt.Errorf("failed to decode hits: %w", err)
		}
	case '{':
		var wrapper struct {
			Results []model.SearchHit `json:"results"`
			Hits    []model.SearchHit `json:"hits"`
		}
		if err := json5.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to decode hits: %w", err)
		}
		switch {
		case wrapper.Results != nil:
			hits = wrapper.Results
		case wrapper.Hits != nil:
			hits = wrapper.Hits
		default:
			return nil, ErrUnknownLayout
		}
	default:
		return nil, ErrUnknownLayout
	}
	return hits, nil
}

// ParseHitsCSV decodes search hits from CSV. A header row naming the
// columns is used when present; otherwise columns are title, url, description.
func ParseHitsCSV(r io.Reader) ([]model.SearchHit, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv hits: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	titleCol, urlCol, descCol := 0, 1, 2
	if header := headerIndex(rows[0]); header != nil {
		col, ok := header["url"]
		if !ok {
			if col, ok = header["link"]; !ok {
				return nil, ErrMissingURLColumn
			}
		}
		urlCol = col
		titleCol = lookup(header, "title")
		descCol = lookup(header, "description", "snippet")
		rows = rows[1:]
	}

	hits := make([]model.SearchHit, 0, len(rows))
	for _, row := range rows {
		hit := model.SearchHit{
			Title:       cell(row, titleCol),
			URL:         cell(row, urlCol),
			Description: cell(row, descCol),
		}
		if hit.URL == "" && hit.Title == "" {
			continue
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// headerIndex maps lower-cased column names to positions when row looks
// like a header, and returns nil otherwise.
func headerIndex(row []string) map[string]int {
	index := make(map[string]int, len(row))
	known := false
	for i, name := range row {
		name = strings.ToLower(strings.TrimSpace(name))
		index[name] = i
		switch name {
		case "title", "url", "link", "description", "snippet":
			known = true
		}
	}
	if !known {
		return nil
	}
	return index
}

func lookup(index map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := index[n]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
