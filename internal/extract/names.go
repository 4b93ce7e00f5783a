package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// namePartPattern is the alphabet allowed in a single name token.
var namePartPattern = regexp.MustCompile(`^[a-zA-Z\-']+$`)

// profileFalsePositives are tokens that show up in LinkedIn result titles
// but are never part of a person's name.
var profileFalsePositives = map[string]bool{
	"linkedin": true, "profile": true, "company": true, "limited": true, "group": true,
	"management": true, "services": true, "solutions": true, "consulting": true, "holdings": true,
	"property": true, "building": true, "office": true, "director": true, "manager": true,
}

// businessTerms are words that the website patterns tend to capture as names
// in press releases and news listings.
var businessTerms = map[string]bool{
	"appoints": true, "announces": true, "welcomes": true, "promotes": true, "elevates": true, "names": true,
	"chief": true, "officer": true, "executive": true, "financial": true, "revenue": true, "operating": true,
	"strategy": true, "technology": true, "interim": true, "board": true, "chair": true, "director": true,
	"positions": true, "hedge": true, "fund": true, "managers": true, "portfolio": true, "operations": true,
	"leadership": true, "general": true, "terms": true, "acquisition": true, "clearwater": true,
	"analytics": true, "finalizes": true, "investor": true, "quarter": true, "press": true, "release": true,
	"client": true, "success": true, "traders": true, "demo": true, "back": true, "build": true, "nothing": true,
	"move": true, "learning": true, "read": true, "more": true, "open": true, "second": true, "first": true,
	"company": true, "corporation": true, "enterprise": true, "group": true, "holdings": true,
	"management": true, "development": true, "consulting": true, "services": true, "solutions": true,
	"keeps": true, "your": true, "office": true, "enfusion": true, "sustains": true, "global": true,
}

// titleCombinations reject "names" that are really two words of a title or a headline.
var titleCombinations = []string{
	"chief executive", "chief financial", "chief technology", "chief operating",
	"executive officer", "financial officer", "technology officer", "operating officer",
	"vice president", "board chair", "board member", "managing director",
	"keeps your", "back office", "enfusion names", "enfusion announces",
	"enfusion sustains", "global growth",
}

// honorifics are dropped from the front of team card names.
var honorifics = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "mx": true, "dr": true, "prof": true, "sir": true, "dame": true,
}

// IsValidProfileNamePart checks one token of a name parsed from a LinkedIn
// result title: 2-25 characters of letters, hyphen and apostrophe, and not
// a known false positive.
func IsValidProfileNamePart(part string) bool {
	if len(part) < 2 || len(part) > 25 {
		return false
	}
	if !namePartPattern.MatchString(part) {
		return false
	}
	return !profileFalsePositives[strings.ToLower(part)]
}

// IsValidEmployeeName checks a first and last name captured from website text.
func IsValidEmployeeName(first, last string) bool {
	if len(first) < 2 || len(last) < 2 || len(first) > 25 || len(last) > 30 {
		return false
	}
	if !namePartPattern.MatchString(first) || !namePartPattern.MatchString(last) {
		return false
	}

	fl, ll := strings.ToLower(first), strings.ToLower(last)
	if businessTerms[fl] || businessTerms[ll] {
		return false
	}

	full := fl + " " + ll
	for _, combo := range titleCombinations {
		if strings.Contains(full, combo) {
			return false
		}
	}
	return true
}

// SplitPersonName splits a free-form person name ("Dr. Jane A. Doe") into a
// first and last name. Honorifics and middle tokens are dropped. It returns
// false when fewer than two usable tokens remain.
func SplitPersonName(name string) (first, last string, ok bool) {
	fields := strings.FieldsFunc(name, unicode.IsSpace)

	tokens := make([]string, 0, len(fields))
	for i, f := range fields {
		f = strings.Trim(f, ".,;:()\"")
		if f == "" {
			continue
		}
		if i == 0 && honorifics[strings.ToLower(f)] {
			continue
		}
		tokens = append(tokens, f)
	}
	if len(tokens) < 2 {
		return "", "", false
	}
	return tokens[0], tokens[len(tokens)-1], true
}
