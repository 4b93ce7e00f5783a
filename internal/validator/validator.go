package validator

import (
	"bufio"
	_ "embed"
	"regexp"
	"strings"
	"unicode"

	"github.com/nao1215/staffscan/internal/model"
)

// Signal weights of the combined score.
const (
	structureWeight     = 0.2
	falsePositiveWeight = 0.3
	databaseWeight      = 0.3
	signalWeight        = 0.2
)

// Score thresholds.
const (
	// ValidThreshold is the combined score a name needs to count as valid.
	ValidThreshold = 0.5

	// AcceptThreshold is the score from which a valid name is accepted without review.
	AcceptThreshold = 0.7

	// UncertainThreshold is the lowest score a valid name may have before it is rejected.
	UncertainThreshold = 0.4
)

// Reasons reported in Result.Reason.
const (
	ReasonCustomInclude      = "custom_include"
	ReasonCustomExclude      = "custom_exclude"
	ReasonTooShort           = "too_short"
	ReasonTooLong            = "too_long"
	ReasonInvalidCharacters  = "invalid_characters"
	ReasonContainsNumbers    = "contains_numbers"
	ReasonKnownFalsePositive = "known_false_positive"
	ReasonLocationPattern    = "location_pattern"
	ReasonDatabaseMatch      = "database_match"
	ReasonPartialMatch       = "partial_match"
	ReasonHeuristic          = "heuristic_analysis"
)

//go:embed names/first_names.txt
var firstNamesFile string

//go:embed names/last_names.txt
var lastNamesFile string

var namePattern = regexp.MustCompile(`^[a-zA-Z\-']+$`)

// locationPatterns catch street and estate names ("Leith Walk", "Granton Quay").
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b[A-Z][a-z]+ (?:Street|Road|Avenue|Lane|Drive|Place|Square|Terrace|Gardens|Park|Close|Way|Court|Crescent)\b`),
	regexp.MustCompile(`(?i)\b[A-Z][a-z]+ (?:Row|Mews|Circle|Heights|Hill|Estate|Acres|Bridge|Village|Gate|Cross|Plaza|Yard|Wharf|Quay)\b`),
}

var baseFalsePositives = []string{
	// business and property
	"property", "building", "office", "street", "avenue", "road", "lane",
	"terrace", "close", "court", "house", "apartment", "suite", "unit",
	"business", "company", "asset", "service", "management", "development",
	"consulting", "enterprise", "investment", "capital", "finance", "center",
	"centre", "limited", "incorporated", "corporation", "holdings", "hotel",
	// directions and descriptions
	"north", "south", "east", "west", "upper", "lower", "old", "new",
	"great", "little", "saint", "bridge", "park", "place", "square",
	"room", "floor", "level", "block", "estate", "complex", "apartments", "flats",
	// web pages
	"copyright", "privacy", "policy", "terms", "conditions", "cookies",
	"website", "page", "site", "link", "click", "view", "read", "more",
}

// locationFalsePositives are district and landmark names for known target
// cities, keyed by a lower-case substring of the location.
var locationFalsePositives = map[string][]string{
	"edinburgh": {
		"edinburgh", "princes", "royal", "mile", "meadows", "holyrood",
		"grassmarket", "morningside", "stockbridge", "newington",
		"pilrig", "granton", "newhaven", "portobello", "cramond",
		"balerno", "corstorphine", "duddingston", "restalrig",
		"leith", "haymarket", "bruntsfield", "murrayfield",
	},
}

// Result is the outcome of validating one name.
type Result struct {
	Valid  bool
	Reason string
	Score  float64
}

// Status is the bucket a validated record falls into.
type Status int

const (
	// StatusRejected records are dropped.
	StatusRejected Status = iota
	// StatusUncertain records are kept or reviewed depending on the mode.
	StatusUncertain
	// StatusAccepted records are kept.
	StatusAccepted
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "accepted"
	case StatusUncertain:
		return "uncertain"
	default:
		return "rejected"
	}
}

// Classify buckets a result by its validity and score.
func Classify(r Result) Status {
	switch {
	case r.Valid && r.Score >= AcceptThreshold:
		return StatusAccepted
	case r.Valid && r.Score >= UncertainThreshold:
		return StatusUncertain
	default:
		return StatusRejected
	}
}

// Validator scores names against structure rules, false positive terms and
// embedded first and last name lists.
type Validator struct {
	firstNames     map[string]bool
	lastNames      map[string]bool
	falsePositives map[string]bool
	exceptions     *Exceptions
}

// Option configures a Validator.
type Option func(*Validator)

// WithLocation adds the false positive terms known for the location.
func WithLocation(location string) Option {
	return func(v *Validator) {
		l := strings.ToLower(location)
		for city, terms := range locationFalsePositives {
			if strings.Contains(l, city) {
				addAll(v.falsePositives, terms)
			}
		}
	}
}

// WithExtraFirstNames extends the first name list.
func WithExtraFirstNames(names ...string) Option {
	return func(v *Validator) { addAll(v.firstNames, names) }
}

// WithExtraLastNames extends the last name list.
func WithExtraLastNames(names ...string) Option {
	return func(v *Validator) { addAll(v.lastNames, names) }
}

// WithFalsePositives extends the false positive term set.
func WithFalsePositives(terms ...string) Option {
	return func(v *Validator) { addAll(v.falsePositives, terms) }
}

// WithExceptions sets the operator overrides consulted before any rule.
func WithExceptions(e *Exceptions) Option {
	return func(v *Validator) {
		if e != nil {
			v.exceptions = e
		}
	}
}

// New returns a Validator loaded with the embedded name lists.
func New(opts ...Option) *Validator {
	v := &Validator{
		firstNames:     parseNameList(firstNamesFile),
		lastNames:      parseNameList(lastNamesFile),
		falsePositives: make(map[string]bool, len(baseFalsePositives)),
		exceptions:     NewExceptions(),
	}
	addAll(v.falsePositives, baseFalsePositives)
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Exceptions returns the overrides the validator consults.
func (v *Validator) Exceptions() *Exceptions {
	return v.exceptions
}

// Validate scores a first and last name.
func (v *Validator) Validate(first, last string) Result {
	if include, ok := v.exceptions.Lookup(model.NameKey(first, last)); ok {
		if include {
			return Result{Valid: true, Reason: ReasonCustomInclude, Score: 1.0}
		}
		return Result{Valid: false, Reason: ReasonCustomExclude, Score: 0}
	}

	structure, ok := checkStructure(first, last)
	if !ok {
		return structure
	}
	fp, ok := v.checkFalsePositives(first, last)
	if !ok {
		return fp
	}
	db, dbReason := v.checkDatabases(first, last)
	signal := capitalizationSignal(first, last)

	score := structure.Score*structureWeight +
		fp.Score*falsePositiveWeight +
		db*databaseWeight +
		signal*signalWeight

	return Result{
		Valid:  score >= ValidThreshold,
		Reason: dbReason,
		Score:  score,
	}
}

func checkStructure(first, last string) (Result, bool) {
	switch {
	case len(first) < 2 || len(last) < 2:
		return Result{Reason: ReasonTooShort}, false
	case len(first) > 25 || len(last) > 30:
		return Result{Reason: ReasonTooLong}, false
	case !namePattern.MatchString(first) || !namePattern.MatchString(last):
		return Result{Reason: ReasonInvalidCharacters}, false
	case strings.ContainsFunc(first+last, unicode.IsDigit):
		return Result{Reason: ReasonContainsNumbers}, false
	}
	return Result{Valid: true, Score: 0.7}, true
}

func (v *Validator) checkFalsePositives(first, last string) (Result, bool) {
	if v.falsePositives[strings.ToLower(first)] || v.falsePositives[strings.ToLower(last)] {
		return Result{Reason: ReasonKnownFalsePositive}, false
	}
	full := first + " " + last
	for _, re := range locationPatterns {
		if re.MatchString(full) {
			return Result{Reason: ReasonLocationPattern}, false
		}
	}
	return Result{Valid: true, Score: 0.8}, true
}

func (v *Validator) checkDatabases(first, last string) (float64, string) {
	inFirst := v.firstNames[strings.ToLower(first)]
	inLast := v.lastNames[strings.ToLower(last)]
	switch {
	case inFirst && inLast:
		return 0.9, ReasonDatabaseMatch
	case inFirst || inLast:
		return 0.7, ReasonPartialMatch
	default:
		return 0.3, ReasonHeuristic
	}
}

// capitalizationSignal stands in for an entity recognizer: proper nouns
// score slightly higher than anything else.
func capitalizationSignal(first, last string) float64 {
	if startsUpper(first) && startsUpper(last) {
		return 0.6
	}
	return 0.5
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func parseNameList(data string) map[string]bool {
	names := make(map[string]bool)
	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		if name := strings.ToLower(strings.TrimSpace(sc.Text())); name != "" {
			names[name] = true
		}
	}
	return names
}

func addAll(set map[string]bool, values []string) {
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			set[v] = true
		}
	}
}
