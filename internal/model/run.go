package model

import (
	"time"
)

// SourceCount is the number of records a source contributed.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// Stats summarizes a set of employee records.
type Stats struct {
	Total    int `json:"total"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	LinkedIn int `json:"linkedin_profiles"`

	// Sources is ordered by count, largest first.
	Sources []SourceCount `json:"sources,omitempty"`
}

// Count returns the number of records in the given tier.
func (s Stats) Count(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return s.High
	case ConfidenceMedium:
		return s.Medium
	default:
		return s.Low
	}
}

// Run is the report of one pipeline execution for one company.
// Steps read and extend it in order.
type Run struct {
	// ID is a UUID assigned when the run starts.
	ID string `json:"id"`

	// Company is the target company name.
	Company string `json:"company"`

	// Location is the target company location.
	Location string `json:"location"`

	// Website is the normalized company website, empty when not crawled.
	Website string `json:"website,omitempty"`

	// SearchTitles are the job titles website and snippet extraction look
	// for. They fall back to the default title list.
	SearchTitles []string `json:"search_titles,omitempty"`

	// ScoringTitles are the job titles the operator configured, with no
	// fallback. Only these earn a LinkedIn hit its title bonus.
	ScoringTitles []string `json:"scoring_titles,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Pages are the crawled website pages.
	Pages []*Page `json:"-"`

	// Crawls maps crawled URLs to their HTTP status.
	Crawls map[string]int `json:"crawls,omitempty"`

	// Hits are imported X-ray search results.
	Hits []SearchHit `json:"-"`

	// Imported are records loaded from existing record files.
	Imported []Employee `json:"-"`

	// Candidates are raw records produced by extraction, in discovery order.
	Candidates []Employee `json:"-"`

	// Employees is the merged, sorted roster.
	Employees []Employee `json:"employees"`

	// Rejected holds records dropped by name validation.
	Rejected []Employee `json:"rejected,omitempty"`

	// Validated is true once name validation ran over Employees.
	Validated bool `json:"validated"`

	Stats Stats `json:"stats"`

	// PerformedSteps lists the names of steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Errors holds messages of steps that failed without stopping the run.
	Errors []string `json:"errors,omitempty"`

	TimedOut bool `json:"timed_out"`
}

// NewRun creates a run for a company.
func NewRun(id, company, location string) *Run {
	return &Run{
		ID:        id,
		Company:   company,
		Location:  location,
		StartedAt: time.Now(),
		Crawls:    make(map[string]int),
	}
}

// AddError records a non-fatal step failure.
func (r *Run) AddError(err error) {
	if err == nil {
		return
	}
	r.Errors = append(r.Errors, err.Error())
}

// HasErrors reports whether any step failed.
func (r *Run) HasErrors() bool {
	return len(r.Errors) > 0
}

// Roster returns the report input for this run.
func (r *Run) Roster(sourceLabel string) Roster {
	generated := r.FinishedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return Roster{
		Company:     r.Company,
		Location:    r.Location,
		GeneratedAt: generated,
		SourceLabel: sourceLabel,
		Employees:   r.Employees,
		Stats:       r.Stats,
		Validated:   r.Validated,
	}
}

// Roster is what report writers render.
type Roster struct {
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	GeneratedAt time.Time  `json:"generated_at"`
	SourceLabel string     `json:"source_label"`
	Employees   []Employee `json:"employees"`
	Stats       Stats      `json:"stats"`
	Validated   bool       `json:"validated"`
}
