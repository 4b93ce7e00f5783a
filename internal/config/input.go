package config

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	companyNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\s&\-.,()]+$`)
	locationPattern    = regexp.MustCompile(`^[a-zA-Z\s\-,']+$`)
	websiteHostPattern = regexp.MustCompile(`^[a-zA-Z0-9\-\.]+\.[a-zA-Z]{2,}$`)
	unsafeFileChars    = regexp.MustCompile(`[^\w\-_]`)
)

// ValidateCompanyName checks a company name: 2-100 characters of letters,
// digits, spaces and &-.,() punctuation.
func ValidateCompanyName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 || len(name) > 100 || !companyNamePattern.MatchString(name) {
		return ErrInvalidCompanyName
	}
	return nil
}

// ValidateLocation checks a location: 2-50 characters of letters, spaces and -,' punctuation.
func ValidateLocation(location string) error {
	location = strings.TrimSpace(location)
	if len(location) < 2 || len(location) > 50 || !locationPattern.MatchString(location) {
		return ErrInvalidLocation
	}
	return nil
}

// ValidateWebsite checks that website, once given a scheme, has a domain name host.
// Hosts with ports or IP literals are rejected.
func ValidateWebsite(website string) error {
	website = strings.TrimSpace(website)
	if website == "" {
		return ErrInvalidWebsite
	}
	u, err := url.Parse(withScheme(website))
	if err != nil || u.Host == "" {
		return ErrInvalidWebsite
	}
	if !websiteHostPattern.MatchString(u.Host) {
		return ErrInvalidWebsite
	}
	return nil
}

// ValidatePages checks the page budget is within 1-20.
func ValidatePages(n int) error {
	if n < MinPagesToScrape || n > MaxPagesToScrape {
		return ErrInvalidPages
	}
	return nil
}

// NormalizeWebsite adds https:// when no scheme is present and drops trailing slashes.
func NormalizeWebsite(website string) string {
	return strings.TrimRight(withScheme(strings.TrimSpace(website)), "/")
}

func withScheme(website string) string {
	if strings.HasPrefix(website, "http://") || strings.HasPrefix(website, "https://") {
		return website
	}
	return "https://" + website
}

// OutputFileName returns the default workbook name for a company and location,
// e.g. "Acme_Ltd_Leeds_employees.xlsx" for "Acme Ltd" in "Leeds".
func OutputFileName(company, location string) string {
	if location == "" {
		location = "Location"
	}
	return SafeFileName(company) + "_" + SafeFileName(location) + "_employees.xlsx"
}

// SafeFileName replaces every character outside [A-Za-z0-9_-] with "_".
func SafeFileName(s string) string {
	return unsafeFileChars.ReplaceAllString(s, "_")
}
