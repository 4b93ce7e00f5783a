package merge

import (
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/nao1215/staffscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// minNameLength is the shortest first or last name a record may carry.
const minNameLength = 2

// Defaults fill the company and location of records that lack them.
type Defaults struct {
	Company  string
	Location string
}

// IsValidRecord reports whether both trimmed names have at least two characters.
func IsValidRecord(e model.Employee) bool {
	return len([]rune(strings.TrimSpace(e.FirstName))) >= minNameLength &&
		len([]rune(strings.TrimSpace(e.LastName))) >= minNameLength
}

// Clean standardizes a record: title-cased names, "Unknown" for an empty
// title or source, and company and location taken from d when missing.
func Clean(e model.Employee, d Defaults) model.Employee {
	e.FirstName = titleName(e.FirstName)
	e.LastName = titleName(e.LastName)

	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		e.Title = model.UnknownValue
	}
	e.Source = strings.TrimSpace(e.Source)
	if e.Source == "" {
		e.Source = model.UnknownValue
	}
	if strings.TrimSpace(e.Location) == "" {
		e.Location = d.Location
	}
	if strings.TrimSpace(e.Company) == "" {
		e.Company = d.Company
	}
	e.Link = strings.TrimSpace(e.Link)
	return e
}

// titleName title-cases a name. The letter after an apostrophe is upper
// case too ("O'Brien"), which cases.Title leaves lower.
func titleName(name string) string {
	runes := []rune(cases.Title(language.Und).String(strings.TrimSpace(name)))
	for i := 1; i < len(runes); i++ {
		if runes[i-1] == '\'' || runes[i-1] == '’' {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}

// Merger deduplicates records by name key. The first record seen for a key
// wins, so sources must be added in priority order.
type Merger struct {
	defaults Defaults
	seen     map[string]bool
	records  []model.Employee
	logger   *slog.Logger
}

// Option configures a Merger.
type Option func(*Merger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger returns an empty Merger.
func NewMerger(d Defaults, opts ...Option) *Merger {
	m := &Merger{
		defaults: d,
		seen:     make(map[string]bool),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add cleans and appends every valid record whose key was not seen yet.
// It returns how many records were added.
func (m *Merger) Add(records ...model.Employee) int {
	added := 0
	for _, r := range records {
		if !IsValidRecord(r) {
			m.logger.Debug("dropping record with short name", "first", r.FirstName, "last", r.LastName)
			continue
		}
		key := r.Key()
		if m.seen[key] {
			continue
		}
		m.seen[key] = true
		m.records = append(m.records, Clean(r, m.defaults))
		added++
	}
	return added
}

// Len returns the number of unique records.
func (m *Merger) Len() int {
	return len(m.records)
}

// Records returns the unique records in insertion order.
func (m *Merger) Records() []model.Employee {
	out := make([]model.Employee, len(m.records))
	copy(out, m.records)
	return out
}

// Sorted returns the unique records ordered for review and reporting.
func (m *Merger) Sorted() []model.Employee {
	out := m.Records()
	Sort(out)
	return out
}

// Sort orders records by confidence rank, then last name, then first name.
func Sort(records []model.Employee) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if ra, rb := a.Confidence.Rank(), b.Confidence.Rank(); ra != rb {
			return ra < rb
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
}

// MergeInto keeps existing records in their order and appends incoming
// records whose key is new.
func MergeInto(existing, incoming []model.Employee) []model.Employee {
	out := make([]model.Employee, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, e := range existing {
		seen[e.Key()] = true
		out = append(out, e)
	}
	for _, e := range incoming {
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}

// ComputeStats counts records per confidence tier and per source.
func ComputeStats(records []model.Employee) model.Stats {
	var s model.Stats
	bySource := make(map[string]int)
	for _, r := range records {
		s.Total++
		switch r.Confidence {
		case model.ConfidenceHigh:
			s.High++
		case model.ConfidenceMedium:
			s.Medium++
		default:
			s.Low++
		}
		if r.IsLinkedInProfile() {
			s.LinkedIn++
		}
		source := r.Source
		if source == "" {
			source = model.UnknownValue
		}
		bySource[source]++
	}

	for source, count := range bySource {
		s.Sources = append(s.Sources, model.SourceCount{Source: source, Count: count})
	}
	sort.Slice(s.Sources, func(i, j int) bool {
		if s.Sources[i].Count != s.Sources[j].Count {
			return s.Sources[i].Count > s.Sources[j].Count
		}
		return s.Sources[i].Source < s.Sources[j].Source
	})
	return s
}
