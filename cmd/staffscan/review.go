package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/merge"
	"github.com/nao1215/staffscan/internal/review"
)

// errNotInteractive is returned when review runs without a terminal.
var errNotInteractive = errors.New("review needs an interactive terminal")

// NewReviewCmd creates the review command.
func NewReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <records.json>",
		Short: "Review a record file by confidence tier",
		Long: `Review walks through the records of a file on the terminal.

High and medium confidence records are accepted without asking unless
--review-high or --review-medium is set. Low confidence records are
always offered. For each record answer:
  y or Enter  keep the record
  n           skip the record
  q           keep all remaining records of this tier
  s           skip all remaining records of this tier

Examples:
  # Review low confidence records, write reviewed_acme.json
  staffscan review acme.json

  # Review medium and low records
  staffscan review acme.json --review-medium -o final.json`,
		Args: cobra.ExactArgs(1),
		RunE: runReviewCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output record file (default: reviewed_<input>)")
	cmd.Flags().Bool("review-medium", false, "Also review medium confidence records")
	cmd.Flags().Bool("review-high", false, "Also review high confidence records")

	return cmd
}

func runReviewCmd(cmd *cobra.Command, args []string) error {
	fr := &flagReader{flags: cmd.Flags()}
	output := fr.string("output")
	opts := review.Options{
		ReviewMedium: fr.bool("review-medium"),
		ReviewHigh:   fr.bool("review-high"),
	}
	if fr.err != nil {
		return fr.err
	}
	if !review.IsInteractive(cmd.InOrStdin()) {
		return errNotInteractive
	}

	input := args[0]
	if output == "" {
		output = filepath.Join(filepath.Dir(input), "reviewed_"+filepath.Base(input))
	}
	return reviewFile(cmd, input, output, opts)
}

// reviewFile runs the review over a record file and writes the kept records.
func reviewFile(cmd *cobra.Command, input, output string, opts review.Options) error {
	records, err := merge.LoadRecordFile(input)
	if err != nil {
		return err
	}

	kept, err := review.NewReviewer(cmd.InOrStdin(), cmd.OutOrStdout()).Review(records, opts)
	if err != nil {
		return err
	}
	merge.Sort(kept)
	if err := merge.WriteRecordFile(output, kept); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %d of %d records: %s\n", len(kept), len(records), output)
	return nil
}
