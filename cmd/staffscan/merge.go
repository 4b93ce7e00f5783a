package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/merge"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/report"
)

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <records.json>...",
		Short: "Merge and deduplicate employee record files",
		Long: `Merge combines employee record files into one deduplicated list.

Records are matched by lower-cased first and last name. Files are read in
the order given and the first record seen for a name wins, so list the
most trusted file first. Records are cleaned (title-cased names, missing
title, source, company and location filled in) and sorted by confidence
and last name.

With --into the target file keeps its records in their order and only
new names are appended.

Names that differ only slightly ("Jon Smith", "John Smith") are listed
as possible duplicates but never merged.

Examples:
  # Merge two files
  staffscan merge linkedin.json website.json -o acme_all.json

  # Add new names to an existing list
  staffscan merge new_run.json --into acme_all.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runMergeCmd,
	}

	cmd.Flags().StringP("output", "o", "merged_employees.json", "Output record file")
	cmd.Flags().String("into", "", "Existing record file to append new names to (written in place)")
	cmd.Flags().String("company", "", "Company for records without one")
	cmd.Flags().StringP("location", "l", "", "Location for records without one")
	cmd.Flags().String("report", "", "Also write a report (.xlsx, .md or .json)")
	cmd.Flags().Float64("similarity", config.DefaultSimilarityThreshold, "Threshold for listing near-duplicate names")

	return cmd
}

func runMergeCmd(cmd *cobra.Command, args []string) error {
	fr := &flagReader{flags: cmd.Flags()}
	output := fr.string("output")
	into := fr.string("into")
	company := fr.string("company")
	location := fr.string("location")
	reportPath := fr.string("report")
	threshold := fr.float64("similarity")
	if fr.err != nil {
		return fr.err
	}
	if threshold <= 0 || threshold > 1 {
		return config.ErrInvalidSimilarity
	}

	logger := setupLogger(cmd)
	merger := merge.NewMerger(merge.Defaults{Company: company, Location: location}, merge.WithLogger(logger))

	var errs []error
	total := 0
	for _, path := range args {
		records, err := merge.LoadRecordFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total += len(records)
		added := merger.Add(records...)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d records, %d new\n", path, len(records), added)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	merged := merger.Sorted()
	if into != "" {
		existing, err := merge.LoadRecordFile(into)
		if err != nil {
			return err
		}
		merged = merge.MergeInto(existing, merged)
		output = into
	}

	if err := merge.WriteRecordFile(output, merged); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stats := merge.ComputeStats(merged)
	fmt.Fprintf(out, "\nMerged %d records into %d unique employees: %s\n", total, len(merged), output)
	fmt.Fprintf(out, "  high: %d, medium: %d, low: %d\n", stats.High, stats.Medium, stats.Low)

	for _, pair := range merge.FindSimilar(merged, threshold) {
		fmt.Fprintf(out, "  possible duplicate: %q and %q (%.2f)\n", pair.A.FullName(), pair.B.FullName(), pair.Score)
	}

	if reportPath != "" {
		roster := model.Roster{
			Company:     company,
			Location:    location,
			GeneratedAt: time.Now(),
			SourceLabel: filepath.Base(output),
			Employees:   merged,
			Stats:       stats,
		}
		if err := report.WriteFile(reportPath, roster); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written: %s\n", reportPath)
	}
	return nil
}
