package config

import "strings"

// TitleCategory is a named group of job titles offered for selection.
type TitleCategory struct {
	Name   string
	Titles []string
}

// titleCatalog is ordered; category numbers shown to users are 1-based indexes.
var titleCatalog = []TitleCategory{
	{
		Name: "Executive/Leadership",
		Titles: []string{
			"CEO", "Chief Executive Officer", "Managing Director", "President",
			"Chief Financial Officer", "CFO", "Chief Technology Officer", "CTO",
			"Chief Operating Officer", "COO", "Chief Marketing Officer", "CMO",
			"Executive Director", "Executive Vice President", "Chairman",
		},
	},
	{
		Name: "Management",
		Titles: []string{
			"Director", "Manager", "Head of", "Vice President", "VP",
			"Senior Manager", "Regional Manager", "General Manager",
			"Department Head", "Team Lead", "Operations Manager",
		},
	},
	{
		Name: "Property/Real Estate",
		Titles: []string{
			"Property Manager", "Estate Agent", "Letting Agent", "Property Factor",
			"Property Director", "Asset Manager", "Development Manager",
			"Property Investment Manager", "Facilities Manager", "Portfolio Manager",
			"Property Consultant", "Real Estate Manager",
		},
	},
	{
		Name: "Professional/Technical",
		Titles: []string{
			"Engineer", "Developer", "Analyst", "Consultant", "Specialist",
			"Senior Engineer", "Lead Developer", "Principal Consultant",
			"Technical Lead", "Project Manager", "Account Manager",
			"Business Analyst", "Systems Analyst",
		},
	},
	{
		Name: "Finance/Accounting",
		Titles: []string{
			"Accountant", "Financial Analyst", "Investment Manager", "Fund Manager",
			"Financial Controller", "Finance Manager", "Treasury Manager",
			"Risk Manager", "Compliance Manager", "Audit Manager",
		},
	},
	{
		Name: "Sales/Marketing",
		Titles: []string{
			"Sales Manager", "Marketing Manager", "Business Development",
			"Account Executive", "Sales Director", "Marketing Director",
			"Client Manager", "Relationship Manager", "Commercial Manager",
		},
	},
}

// defaultSearchTitles is used by website extraction when no titles are configured.
var defaultSearchTitles = []string{
	"CEO", "Chief Executive Officer", "Managing Director", "President",
	"Chief Financial Officer", "CFO", "Chief Technology Officer", "CTO",
	"Chief Operating Officer", "COO", "Chief Marketing Officer", "CMO",

	"Director", "Manager", "Head of", "Vice President", "VP",
	"Senior Manager", "Regional Manager", "General Manager",

	"Property Manager", "Estate Agent", "Letting Agent", "Property Factor",
	"Property Director", "Asset Manager", "Development Manager",
	"Property Investment Manager", "Facilities Manager",

	"Engineer", "Developer", "Analyst", "Consultant", "Specialist",
	"Senior Engineer", "Lead Developer", "Principal Consultant",
	"Technical Lead", "Project Manager", "Account Manager",

	"Accountant", "Financial Analyst", "Investment Manager", "Fund Manager",
	"Financial Controller", "Finance Manager", "Treasury Manager",

	"Sales Manager", "Marketing Manager", "Business Development",
	"Account Executive", "Sales Director", "Marketing Director",

	"Operations Manager", "Operations Director", "Process Manager",
	"Quality Manager", "Compliance Manager", "Risk Manager",
}

// TitleCatalog returns a copy of the job title categories.
func TitleCatalog() []TitleCategory {
	out := make([]TitleCategory, len(titleCatalog))
	for i, c := range titleCatalog {
		out[i] = TitleCategory{Name: c.Name, Titles: append([]string(nil), c.Titles...)}
	}
	return out
}

// DefaultSearchTitles returns a copy of the website default job titles.
func DefaultSearchTitles() []string {
	return append([]string(nil), defaultSearchTitles...)
}

// TitlesForCategories expands 1-based category numbers to their titles.
// Out of range numbers are returned in invalid. Duplicates are dropped and
// the result keeps catalog order.
func TitlesForCategories(numbers []int) (titles []string, invalid []int) {
	seen := make(map[string]bool)
	for _, n := range numbers {
		if n < 1 || n > len(titleCatalog) {
			invalid = append(invalid, n)
			continue
		}
		for _, t := range titleCatalog[n-1].Titles {
			if !seen[t] {
				seen[t] = true
				titles = append(titles, t)
			}
		}
	}
	return titles, invalid
}

// AllCatalogTitles returns every catalog title once.
func AllCatalogTitles() []string {
	numbers := make([]int, len(titleCatalog))
	for i := range titleCatalog {
		numbers[i] = i + 1
	}
	titles, _ := TitlesForCategories(numbers)
	return titles
}

// DedupTitles trims titles, drops blanks and case-insensitive repeats, and keeps first-seen order.
func DedupTitles(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}
