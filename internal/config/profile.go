package config

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
)

// Profile is the per-company part of the configuration file.
// Keys follow the legacy company_config.json so old files load unchanged.
type Profile struct {
	// Location is the default company location.
	Location string `yaml:"location,omitempty" toml:"location,omitempty"`

	// Website is the company website, with or without scheme.
	Website string `yaml:"company_website,omitempty" toml:"company_website,omitempty"`

	// JobTitles are the titles to search for.
	JobTitles []string `yaml:"job_titles,omitempty" toml:"job_titles,omitempty"`

	// PagesToScrape overrides the crawl page budget.
	PagesToScrape int `yaml:"pages_to_scrape,omitempty" toml:"pages_to_scrape,omitempty"`

	// Depth overrides the crawl depth.
	Depth int `yaml:"depth,omitempty" toml:"depth,omitempty"`

	// Cookie is sent with every website request ("name=value; name2=value2").
	Cookie string `yaml:"cookie,omitempty" toml:"cookie,omitempty"`

	// Headers are extra HTTP headers for website requests.
	Headers map[string]string `yaml:"headers,omitempty" toml:"headers,omitempty"`

	// IgnorePatterns are URL path globs the crawler skips.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty" toml:"ignore_patterns,omitempty"`

	// FollowPatterns restrict the crawler to matching URL paths.
	FollowPatterns []string `yaml:"followPatterns,omitempty" toml:"follow_patterns,omitempty"`

	// HitFiles are default search hit exports for this company.
	HitFiles []string `yaml:"hit_files,omitempty" toml:"hit_files,omitempty"`

	// ExtraFirstNames and ExtraLastNames extend the built-in name lists.
	ExtraFirstNames []string `yaml:"extra_first_names,omitempty" toml:"extra_first_names,omitempty"`
	ExtraLastNames  []string `yaml:"extra_last_names,omitempty" toml:"extra_last_names,omitempty"`

	// ExtraFalsePositives are terms that never form part of a person's name.
	ExtraFalsePositives []string `yaml:"extra_false_positives,omitempty" toml:"extra_false_positives,omitempty"`
}

// File is the structure of the .staffscan configuration file.
//
// A legacy single-company file has company_name and the profile keys at the
// top level. Those are picked up through the inline Profile.
type File struct {
	// CompanyName names the company of a legacy single-company file.
	CompanyName string `yaml:"company_name,omitempty" toml:"company_name,omitempty"`

	// Profile holds top-level profile keys of a legacy file.
	Profile `yaml:",inline"`

	// Defaults apply to every company unless overridden.
	Defaults Profile `yaml:"defaults,omitempty" toml:"defaults,omitempty"`

	// Companies maps company names to their profiles.
	Companies map[string]Profile `yaml:"companies,omitempty" toml:"companies,omitempty"`
}

// CompanyNames returns the configured companies, legacy entry included.
func (f *File) CompanyNames() []string {
	names := make([]string, 0, len(f.Companies)+1)
	if f.CompanyName != "" {
		names = append(names, f.CompanyName)
	}
	for name := range f.Companies {
		if !strings.EqualFold(name, f.CompanyName) {
			names = append(names, name)
		}
	}
	return names
}

// GetProfile returns the profile for company merged over the defaults.
// Company names match case-insensitively. An unknown company gets the defaults.
func (f *File) GetProfile(company string) (Profile, error) {
	var result Profile

	if site, ok := f.lookup(company); ok {
		result = cloneProfile(site)
	}

	if err := mergo.Merge(&result, cloneProfile(f.Defaults)); err != nil {
		return Profile{}, fmt.Errorf("merge profile for %q: %w", company, err)
	}
	return result, nil
}

func (f *File) lookup(company string) (Profile, bool) {
	if p, ok := f.Companies[company]; ok {
		return p, true
	}
	for name, p := range f.Companies {
		if strings.EqualFold(name, company) {
			return p, true
		}
	}
	if f.CompanyName != "" && strings.EqualFold(f.CompanyName, company) {
		return f.Profile, true
	}
	return Profile{}, false
}

// cloneProfile copies the map so merging never writes into the loaded file.
func cloneProfile(p Profile) Profile {
	if p.Headers != nil {
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			headers[k] = v
		}
		p.Headers = headers
	}
	return p
}
