package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/extract"
)

// NewQueriesCmd creates the queries command.
func NewQueriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queries <company>",
		Short: "Print X-ray search queries for a company",
		Long: `Queries prints search strings that find a company's people on LinkedIn
and, with --website, on the company's own site.

Run them in any search engine, export the results as JSON or CSV
(title,url,description) and pass the export to 'staffscan run --hits'.

Examples:
  # General LinkedIn queries
  staffscan queries "Acme Lettings" -l Leeds

  # Queries for two title categories plus the company website
  staffscan queries "Acme Lettings" -l Leeds --categories 2,6 -w acme-lettings.example`,
		Args: cobra.ExactArgs(1),
		RunE: runQueriesCmd,
	}

	cmd.Flags().StringP("location", "l", "", "Company location")
	cmd.Flags().StringP("website", "w", "", "Also print queries for the company website")
	cmd.Flags().StringSlice("titles", nil, "Job titles to search for (comma separated)")
	cmd.Flags().IntSlice("categories", nil, "Job title catalog categories (see 'staffscan titles')")
	cmd.Flags().Bool("all-titles", false, "Search for every title in the catalog")
	cmd.Flags().StringP("config", "c", "", "Configuration file path")

	return cmd
}

func runQueriesCmd(cmd *cobra.Command, args []string) error {
	fr := &flagReader{flags: cmd.Flags()}
	location := fr.string("location")
	website := fr.string("website")
	titles := fr.stringSlice("titles")
	categories := fr.intSlice("categories")
	allTitles := fr.bool("all-titles")
	configPath := fr.string("config")
	if fr.err != nil {
		return fr.err
	}

	company := strings.TrimSpace(args[0])
	if err := config.ValidateCompanyName(company); err != nil {
		return err
	}

	file, err := loadConfigFile(configPath)
	if err != nil {
		return err
	}
	profile, err := file.GetProfile(company)
	if err != nil {
		return err
	}
	if location == "" {
		location = profile.Location
	}
	if website == "" {
		website = profile.Website
	}
	if location != "" {
		if err := config.ValidateLocation(location); err != nil {
			return err
		}
	}

	switch {
	case allTitles:
		titles = append(titles, config.AllCatalogTitles()...)
	case len(categories) > 0:
		fromCatalog, invalid := config.TitlesForCategories(categories)
		if len(invalid) > 0 {
			return fmt.Errorf("unknown job title categories %v (see 'staffscan titles')", invalid)
		}
		titles = append(titles, fromCatalog...)
	case len(titles) == 0:
		titles = profile.JobTitles
	}
	titles = config.DedupTitles(titles)

	out := cmd.OutOrStdout()
	for _, q := range extract.BuildXrayQueries(company, location, titles) {
		fmt.Fprintln(out, q)
	}
	if website != "" {
		if err := config.ValidateWebsite(website); err != nil {
			return err
		}
		siteTitles := titles
		if len(siteTitles) == 0 {
			siteTitles = config.DefaultSearchTitles()
		}
		for _, q := range extract.BuildSiteQueries(config.NormalizeWebsite(website), siteTitles) {
			fmt.Fprintln(out, q)
		}
	}
	return nil
}
