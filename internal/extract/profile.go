package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/staffscan/internal/model"
)

// Profile hit scoring thresholds.
const (
	ProfileHighScore   = 8
	ProfileMediumScore = 5
)

var (
	linkedInSuffixDash = regexp.MustCompile(`(?i)\s*-\s*LinkedIn.*`)
	linkedInSuffixBar  = regexp.MustCompile(`(?i)\s*\|\s*LinkedIn.*`)
	leadingNameRun     = regexp.MustCompile(`^([^-|–]+)`)

	// resultTitlePatterns find the job title inside a result title such as
	// "Jane Doe - Property Manager at Acme".
	resultTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[-–]\s*([^|]+?)(?:\s+at\s+|\s+@\s+|\s*\|)`),
		regexp.MustCompile(`(?i)\|\s*([^|]+?)(?:\s+at\s+|\s+@\s+)`),
		regexp.MustCompile(`(?i)(?:,\s*)([^,]+?)(?:\s+at\s+|\s+@\s+)`),
	}

	// descriptionTitlePatterns look for a title keyword in the result snippet.
	descriptionTitlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([^,\n.]*(?:Director|Manager|Officer|Executive|President|CEO|CFO|CTO|COO|VP|Vice President)[^,\n.]*)`),
		regexp.MustCompile(`(?i)([^,\n.]*(?:Analyst|Specialist|Consultant|Engineer|Developer|Lead)[^,\n.]*)`),
	}

	salesTerms = []string{"sales", "account", "business development", "revenue", "client"}
)

// ParseProfileName extracts the first and last name from a LinkedIn result
// title like "Jane Doe - Property Manager - Acme | LinkedIn".
// Everything after the first token is the last name, so "Anna van Berg"
// is rejected by the token check.
func ParseProfileName(title string) (first, last string, ok bool) {
	clean := linkedInSuffixDash.ReplaceAllString(title, "")
	clean = linkedInSuffixBar.ReplaceAllString(clean, "")
	clean = strings.TrimSpace(clean)

	m := leadingNameRun.FindStringSubmatch(clean)
	if m == nil {
		return "", "", false
	}
	parts := strings.Fields(m[1])
	if len(parts) < 2 {
		return "", "", false
	}

	first = parts[0]
	last = strings.Join(parts[1:], " ")
	if !IsValidProfileNamePart(first) || !IsValidProfileNamePart(last) {
		return "", "", false
	}
	return first, last, true
}

// ExtractJobTitle finds a job title in a result title, then in its description.
// It returns model.DefaultTitle when nothing plausible is found.
func ExtractJobTitle(title, description string) string {
	for _, p := range resultTitlePatterns {
		m := p.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		jobTitle := strings.TrimSpace(m[1])
		lower := strings.ToLower(jobTitle)
		if plausibleTitleLength(jobTitle) && !strings.Contains(lower, "linkedin") && !strings.Contains(lower, "profile") {
			return jobTitle
		}
	}

	if description != "" {
		for _, p := range descriptionTitlePatterns {
			m := p.FindStringSubmatch(description)
			if m == nil {
				continue
			}
			jobTitle := strings.TrimSpace(m[1])
			if plausibleTitleLength(jobTitle) {
				return jobTitle
			}
		}
	}

	return model.DefaultTitle
}

// plausibleTitleLength keeps titles longer than 3 and shorter than 100 bytes.
func plausibleTitleLength(s string) bool {
	return len(s) > 3 && len(s) < 100
}

// ScoreProfileHit returns the heuristic score of a LinkedIn result for company.
// searchTitles are the job titles the operator asked for.
func ScoreProfileHit(title, description, company string, searchTitles []string) int {
	score := 0
	lowerTitle := strings.ToLower(title)
	lowerCompany := strings.ToLower(company)

	if strings.Contains(lowerTitle, lowerCompany) {
		score += 3
	}
	if description != "" && strings.Contains(strings.ToLower(description), lowerCompany) {
		score += 2
	}
	if strings.Contains(lowerTitle, "linkedin.com/in/") {
		score += 2
	}

	if !strings.Contains(lowerTitle, "to be determined") {
		score += 2
		for _, st := range searchTitles {
			lst := strings.ToLower(st)
			if strings.Contains(lowerTitle, lst) {
				score += 4
				break
			}
			if lst == "sales" && containsAny(lowerTitle, salesTerms) {
				score += 3
				break
			}
		}
	}

	if len(description) > 50 {
		score++
	}
	return score
}

// ProfileExtractor turns LinkedIn X-ray hits into employee records.
// A single extractor never emits two records for the same URL.
type ProfileExtractor struct {
	company      string
	location     string
	searchTitles []string
	processed    map[string]bool
	logger       *slog.Logger
}

// ProfileOption configures a ProfileExtractor.
type ProfileOption func(*ProfileExtractor)

// WithProfileLogger sets the logger.
func WithProfileLogger(logger *slog.Logger) ProfileOption {
	return func(p *ProfileExtractor) {
		p.logger = logger
	}
}

// NewProfileExtractor creates an extractor for one company search.
func NewProfileExtractor(company, location string, searchTitles []string, opts ...ProfileOption) *ProfileExtractor {
	p := &ProfileExtractor{
		company:      company,
		location:     location,
		searchTitles: searchTitles,
		processed:    make(map[string]bool),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Extract converts hits to records. Hits that do not point at a LinkedIn
// profile, repeat a URL, or carry no parsable name are skipped.
func (p *ProfileExtractor) Extract(hits []model.SearchHit) []model.Employee {
	var out []model.Employee
	for _, hit := range hits {
		if hit.URL == "" || !model.IsLinkedInProfileURL(hit.URL) {
			continue
		}
		if p.processed[hit.URL] {
			continue
		}

		first, last, ok := ParseProfileName(hit.Title)
		if !ok {
			p.logger.Debug("no name in profile hit", "title", hit.Title)
			continue
		}

		score := ScoreProfileHit(hit.Title, hit.Description, p.company, p.searchTitles)
		e := model.Employee{
			FirstName:         first,
			LastName:          last,
			Title:             ExtractJobTitle(hit.Title, hit.Description),
			Company:           p.company,
			Location:          p.location,
			Source:            model.SourceLinkedIn,
			Confidence:        model.ConfidenceFromScore(score, ProfileHighScore, ProfileMediumScore),
			Link:              hit.URL,
			NeedsVerification: true,
		}
		p.processed[hit.URL] = true
		out = append(out, e)

		p.logger.Debug("profile candidate", "name", e.FullName(), "title", e.Title, "confidence", e.Confidence.String())
	}
	return out
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
