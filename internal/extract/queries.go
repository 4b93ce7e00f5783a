package extract

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildXrayQueries returns LinkedIn X-ray query strings for a company.
// With titles, each title gets five targeted queries and a "sales" title
// adds seven sales variations. Without titles, eight general company
// queries are returned.
func BuildXrayQueries(company, location string, titles []string) []string {
	if len(titles) == 0 {
		return []string{
			fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s"`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ works at "%s" %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" employee %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" team %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" (Director OR Manager OR Executive) %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" (CEO OR President OR "Vice President") %s`, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" (Chief OR Officer OR Head) %s`, company, location),
		}
	}

	queries := make([]string, 0, len(titles)*5)
	for _, title := range titles {
		queries = append(queries,
			fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s" %s`, title, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" at "%s" %s`, title, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s" %s`, company, title, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s" employee %s`, title, company, location),
			fmt.Sprintf(`site:linkedin.com/in/ "%s" works at "%s" %s`, title, company, location),
		)
		if strings.EqualFold(title, "sales") {
			for _, v := range []string{
				"Sales Manager", "Sales Director", "Sales Executive", "Sales Representative",
				"Account Manager", "Business Development", "Sales Specialist",
			} {
				queries = append(queries, fmt.Sprintf(`site:linkedin.com/in/ "%s" "%s" %s`, v, company, location))
			}
		}
	}
	return queries
}

// BuildSiteQueries returns X-ray queries that enumerate people pages on the
// company's own website. Only the first MaxTitlePatterns titles are used.
func BuildSiteQueries(website string, titles []string) []string {
	site := "site:" + siteDomain(website)

	queries := []string{
		site + ` (team OR staff OR people OR "our team")`,
		site + ` ("about us" OR "leadership" OR "management team")`,
		site + ` (joined OR appointed OR promoted)`,
		site + ` (director OR manager OR executive)`,
	}
	for i, title := range titles {
		if i >= MaxTitlePatterns {
			break
		}
		queries = append(queries,
			fmt.Sprintf(`%s "%s"`, site, title),
			fmt.Sprintf(`%s "%s" (appointed OR joined OR promoted)`, site, title),
			fmt.Sprintf(`%s "new %s" OR "%s joins"`, site, title, title),
		)
	}
	return append(queries,
		site+` "Property Manager" OR "Asset Manager" OR "Development Manager"`,
		site+` "Sales Director" OR "Marketing Director" OR "Operations Director"`,
		site+` "Chief Executive" OR "Managing Director" OR "President"`,
		site+` "announces" (Manager OR Director OR Executive)`,
		site+` "welcomes" (Manager OR Director OR Executive)`,
	)
}

// siteDomain reduces a website to its host without a leading "www.".
func siteDomain(website string) string {
	raw := website
	if !strings.HasPrefix(raw, "http") {
		raw = "https://" + raw
	}
	host := raw
	if u, err := url.Parse(raw); err == nil {
		host = u.Host
		if host == "" {
			host = u.Path
		}
	}
	return strings.TrimPrefix(host, "www.")
}
