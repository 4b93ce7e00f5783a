package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/staffscan/internal/model"
)

// Website scoring thresholds.
const (
	WebsiteHighScore   = 5
	WebsiteMediumScore = 3
)

// MaxTitlePatterns is how many search titles get their own text patterns.
const MaxTitlePatterns = 10

// nameTokens captures "First" and "Last" or "Last-Name". Keywords around it
// are matched case-insensitively while names must be capitalized.
const nameTokens = `([A-Z][a-z]+)\s+([A-Z][a-z]+(?:-[A-Z][a-z]+)?)`

// basePatterns find people in press releases, news and about pages.
// Group 1 and 2 are the name, group 3 (when present) the job title.
var basePatterns = []*regexp.Regexp{
	// "appoints Jane Smith as Chief Financial Officer"
	regexp.MustCompile(`(?i:appoints?|names?|promotes?|welcomes?|announces?)\s+` + nameTokens +
		`\s+(?i:as|to|as\s+the|to\s+the\s+position\s+of)\s+([^.]{5,50})`),
	// "Jane Smith, Regional Operations Director"
	regexp.MustCompile(nameTokens + `,?\s+(?i:as\s+)?([^.,]{10,60}(?i:Chief|Director|Manager|Officer|President|VP|Vice\s+President)[^.,]{0,20})`),
	// "Director Jane Smith"
	regexp.MustCompile(`(?i:Chief|Director|Manager|Officer|President|VP|Vice\s+President)\s+` + nameTokens),
	// "Jane Smith has been appointed"
	regexp.MustCompile(nameTokens + `\s+(?i:has\s+been|was|is)\s+(?i:appointed|named|promoted|hired)`),
	// "Jane Smith joins Acme as Head of Lettings"
	regexp.MustCompile(nameTokens + `\s+(?i:joins|joined)\s+.*?(?i:as|as\s+a|as\s+the)\s+([^.,]{5,50})`),
	// "Jane Smith is our new Property Manager"
	regexp.MustCompile(nameTokens + `\s+(?i:is)\s+(?i:our\s+)?(?i:new\s+)?([^.,]{5,50}(?i:Manager|Director|Officer|Executive|Analyst|Specialist)[^.,]{0,20})`),
}

var leadingTitleWord = regexp.MustCompile(`(?i)^(as\s+|to\s+|the\s+)`)

// titleKeywords are checked in order when a pattern carries no title group.
var titleKeywords = []struct {
	keyword string
	title   string
}{
	{"manager", "Manager"},
	{"director", "Director"},
	{"executive", "Executive"},
	{"officer", "Officer"},
	{"president", "President"},
	{"head", "Head"},
	{"lead", "Lead"},
	{"chief", "Chief"},
	{"senior", "Senior"},
	{"principal", "Principal"},
}

var (
	appointmentWords = []string{"appointed", "promoted", "joins", "joined", "announces", "welcomes"}
	qualityTitleWords = []string{"director", "manager", "executive", "officer", "president", "chief", "head"}
)

// textPattern is a compiled pattern plus the job title it implies, if any.
type textPattern struct {
	re       *regexp.Regexp
	jobTitle string
}

// TextExtractor finds people in free text from the company website or from
// non-LinkedIn search hits. It remembers every name it emitted, so feeding
// it many pages yields each person once.
type TextExtractor struct {
	company      string
	location     string
	searchTitles []string
	patterns     []textPattern
	processed    map[string]bool
	detector     LanguageDetector
	logger       *slog.Logger
}

// TextOption configures a TextExtractor.
type TextOption func(*TextExtractor)

// WithLanguageDetector enables the language gate for ExtractPage.
func WithLanguageDetector(d LanguageDetector) TextOption {
	return func(t *TextExtractor) {
		t.detector = d
	}
}

// WithTextLogger sets the logger.
func WithTextLogger(logger *slog.Logger) TextOption {
	return func(t *TextExtractor) {
		t.logger = logger
	}
}

// NewTextExtractor builds an extractor. searchTitles should not be empty;
// callers pass the default title list when the operator chose none.
func NewTextExtractor(company, location string, searchTitles []string, opts ...TextOption) *TextExtractor {
	t := &TextExtractor{
		company:      company,
		location:     location,
		searchTitles: searchTitles,
		processed:    make(map[string]bool),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.patterns = make([]textPattern, 0, len(basePatterns)+2*MaxTitlePatterns)
	for _, re := range basePatterns {
		t.patterns = append(t.patterns, textPattern{re: re})
	}
	for i, title := range searchTitles {
		if i >= MaxTitlePatterns {
			break
		}
		quoted := regexp.QuoteMeta(title)
		t.patterns = append(t.patterns,
			textPattern{re: regexp.MustCompile(nameTokens + `,?\s+(?i:` + quoted + `)`), jobTitle: title},
			textPattern{re: regexp.MustCompile(`(?i:` + quoted + `)\s+` + nameTokens), jobTitle: title},
		)
	}
	return t
}

// ExtractText runs every pattern over text. link is recorded on each record.
func (t *TextExtractor) ExtractText(text, link string) []model.Employee {
	var out []model.Employee
	for _, p := range t.patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			first := strings.TrimSpace(m[1])
			last := strings.TrimSpace(m[2])

			var title string
			switch {
			case len(m) >= 4 && m[3] != "":
				title = cleanCapturedTitle(m[3])
			case p.jobTitle != "":
				title = p.jobTitle
			default:
				title = t.inferTitle(m[0])
			}

			if e, ok := t.candidate(first, last, title, m[0], link, model.SourceWebsite); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// ExtractTeam turns team card entries into records.
func (t *TextExtractor) ExtractTeam(entries []model.TeamEntry, link string) []model.Employee {
	var out []model.Employee
	for _, entry := range entries {
		first, last, ok := SplitPersonName(entry.Name)
		if !ok {
			continue
		}
		title := cleanCapturedTitle(entry.Title)
		if title == model.UnknownValue {
			title = t.inferTitle(entry.Name)
		}
		if e, ok := t.candidate(first, last, title, entry.Name+" "+entry.Title, link, model.SourceWebsiteTeam); ok {
			out = append(out, e)
		}
	}
	return out
}

// ExtractByline turns an article byline ("By Jane Doe and John Smith") into records.
func (t *TextExtractor) ExtractByline(byline, link string) []model.Employee {
	var out []model.Employee
	for _, name := range splitByline(byline) {
		first, last, ok := SplitPersonName(name)
		if !ok {
			continue
		}
		if e, ok := t.candidate(first, last, model.UnknownValue, byline, link, model.SourceWebsiteByline); ok {
			out = append(out, e)
		}
	}
	return out
}

// ExtractPage runs the byline, team and text extractors over a crawled page.
// Text patterns are skipped on pages detected as non-English.
func (t *TextExtractor) ExtractPage(page *model.Page) []model.Employee {
	var out []model.Employee
	out = append(out, t.ExtractTeam(page.Team, page.URL)...)
	if page.Byline != "" {
		out = append(out, t.ExtractByline(page.Byline, page.URL)...)
	}

	text := page.Text
	if page.Title != "" {
		text = page.Title + "\n" + text
	}
	if t.detector != nil {
		lang, english := t.detector.Detect(text)
		page.Language = lang
		if !english {
			t.logger.Debug("skipping text patterns on non-English page", "url", page.URL, "language", lang)
			return out
		}
	}
	return append(out, t.ExtractText(text, page.URL)...)
}

// ExtractHits runs the text patterns over non-LinkedIn search hits.
func (t *TextExtractor) ExtractHits(hits []model.SearchHit) []model.Employee {
	var out []model.Employee
	for _, hit := range hits {
		if hit.URL == "" || model.IsLinkedInProfileURL(hit.URL) {
			continue
		}
		out = append(out, t.ExtractText(hit.Title+"\n"+hit.Description, hit.URL)...)
	}
	return out
}

// ExtractNames turns bare names (for example image Artist tags) into
// low confidence records.
func (t *TextExtractor) ExtractNames(names []string, link, source string) []model.Employee {
	var out []model.Employee
	for _, name := range names {
		first, last, ok := SplitPersonName(name)
		if !ok || !IsValidEmployeeName(first, last) {
			continue
		}
		key := model.NameKey(first, last)
		if t.processed[key] {
			continue
		}
		t.processed[key] = true
		out = append(out, model.Employee{
			FirstName:         first,
			LastName:          last,
			Title:             model.UnknownValue,
			Company:           t.company,
			Location:          t.location,
			Source:            source,
			Confidence:        model.ConfidenceLow,
			Link:              link,
			NeedsVerification: true,
		})
	}
	return out
}

// Score returns the website confidence score for a title found in context.
func (t *TextExtractor) Score(title, context string) int {
	score := 0
	lowerTitle := strings.ToLower(title)
	known := title != "" && title != model.UnknownValue

	if known {
		score += 2
		for _, st := range t.searchTitles {
			lst := strings.ToLower(st)
			if strings.Contains(lowerTitle, lst) || strings.Contains(lst, lowerTitle) {
				score += 3
				break
			}
		}
	}
	if containsAny(strings.ToLower(context), appointmentWords) {
		score += 2
	}
	if containsAny(lowerTitle, qualityTitleWords) {
		score++
	}
	return score
}

func (t *TextExtractor) candidate(first, last, title, context, link, source string) (model.Employee, bool) {
	if !IsValidEmployeeName(first, last) {
		return model.Employee{}, false
	}
	key := model.NameKey(first, last)
	if t.processed[key] {
		return model.Employee{}, false
	}
	t.processed[key] = true

	score := t.Score(title, context)
	e := model.Employee{
		FirstName:  first,
		LastName:   last,
		Title:      title,
		Company:    t.company,
		Location:   t.location,
		Source:     source,
		Confidence: model.ConfidenceFromScore(score, WebsiteHighScore, WebsiteMediumScore),
		Link:       link,
	}
	t.logger.Debug("website candidate", "name", e.FullName(), "title", title, "confidence", e.Confidence.String())
	return e, true
}

func (t *TextExtractor) inferTitle(context string) string {
	lower := strings.ToLower(context)
	for _, k := range titleKeywords {
		if strings.Contains(lower, k.keyword) {
			return k.title
		}
	}
	for _, jt := range t.searchTitles {
		if strings.Contains(lower, strings.ToLower(jt)) {
			return jt
		}
	}
	return model.UnknownValue
}

// cleanCapturedTitle strips a leading "as", "to" or "the" and surrounding
// punctuation. An empty result becomes "Unknown".
func cleanCapturedTitle(title string) string {
	title = strings.TrimSpace(title)
	title = leadingTitleWord.ReplaceAllString(title, "")
	title = strings.TrimSpace(strings.Trim(title, ".,"))
	if title == "" {
		return model.UnknownValue
	}
	return title
}

var bylineSplit = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b)\s*`)

func splitByline(byline string) []string {
	b := strings.TrimSpace(byline)
	if len(b) > 3 && strings.EqualFold(b[:3], "by ") {
		b = b[3:]
	}
	var names []string
	for _, part := range bylineSplit.Split(b, -1) {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}
