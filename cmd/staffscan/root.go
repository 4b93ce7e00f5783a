package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for staffscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staffscan",
		Short: "Employee discovery from X-ray search results and company websites",
		Long: `staffscan builds an employee directory for a company.

It reads LinkedIn X-ray search exports (JSON or CSV), crawls the company
website, extracts names and job titles with confidence tiers, merges and
validates the records, and writes Excel, Markdown or JSON reports.
Every run is kept in a local SQLite history.

Use 'staffscan queries' to print the search strings to run, export the
results, then pass them to 'staffscan run --hits'.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("data-dir", "", "Directory of the history database (default: XDG data directory)")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewQueriesCmd())
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewReviewCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewExceptionsCmd())
	cmd.AddCommand(NewTitlesCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
