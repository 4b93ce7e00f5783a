package main

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/merge"
	"github.com/nao1215/staffscan/internal/review"
	"github.com/nao1215/staffscan/internal/validator"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <records.json>",
		Short: "Filter a record file through name validation",
		Long: `Validate scores every name in a record file against name structure
rules, false-positive terms (street names, company words), embedded first
and last name lists and learned exceptions.

Names scoring 0.7 or more are kept. Names scoring below 0.4 are dropped.
Names in between are uncertain: on a terminal you decide each one and the
decision is remembered; otherwise they are kept.

Examples:
  # Write validated_acme.json next to the input
  staffscan validate acme.json

  # Use Edinburgh street names as extra false positives
  staffscan validate acme.json -l Edinburgh -o clean.json --rejected rejected.json`,
		Args: cobra.ExactArgs(1),
		RunE: runValidateCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output record file (default: validated_<input>)")
	cmd.Flags().String("rejected", "", "Also write the dropped records to this file")
	cmd.Flags().StringP("location", "l", "", "Location whose local terms are false positives")
	cmd.Flags().StringSlice("first-names", nil, "Extra first names to accept")
	cmd.Flags().StringSlice("last-names", nil, "Extra last names to accept")
	cmd.Flags().StringSlice("false-positives", nil, "Extra terms that are never names")
	cmd.Flags().Bool("no-db", false, "Do not load or save learned exceptions")
	cmd.Flags().Bool("no-prompt", false, "Keep uncertain names without asking")

	return cmd
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	fr := &flagReader{flags: cmd.Flags()}
	output := fr.string("output")
	rejectedPath := fr.string("rejected")
	location := fr.string("location")
	firstNames := fr.stringSlice("first-names")
	lastNames := fr.stringSlice("last-names")
	falsePositives := fr.stringSlice("false-positives")
	noDB := fr.bool("no-db")
	noPrompt := fr.bool("no-prompt")
	if fr.err != nil {
		return fr.err
	}

	input := args[0]
	if output == "" {
		output = filepath.Join(filepath.Dir(input), "validated_"+filepath.Base(input))
	}

	logger := setupLogger(cmd)
	ctx, cancel := signalContext(logger)
	defer cancel()

	records, err := merge.LoadRecordFile(input)
	if err != nil {
		return err
	}

	opts := []validator.Option{
		validator.WithLocation(location),
		validator.WithExtraFirstNames(firstNames...),
		validator.WithExtraLastNames(lastNames...),
		validator.WithFalsePositives(falsePositives...),
	}
	if !noDB {
		store, err := openStore(cmd, true)
		if err != nil {
			return err
		}
		defer store.Close()

		exceptions, err := store.LoadExceptions(ctx)
		if err != nil {
			return err
		}
		opts = append(opts, validator.WithExceptions(exceptions))
		defer func() {
			if changed := exceptions.Changed(); len(changed) > 0 {
				if err := store.SaveExceptions(ctx, changed); err != nil {
					logger.Error("failed to save exceptions", "error", err)
				}
			}
		}()
	}
	v := validator.New(opts...)

	outcome := v.ValidateAll(records)
	var decider validator.Decider
	if !noPrompt && review.IsInteractive(cmd.InOrStdin()) {
		decider = review.NewReviewer(cmd.InOrStdin(), cmd.OutOrStdout())
	}
	kept, dropped, resolveErr := v.Resolve(outcome.Uncertain, decider)

	valid := slices.Concat(outcome.Accepted, kept)
	merge.Sort(valid)
	if err := merge.WriteRecordFile(output, valid); err != nil {
		return err
	}
	rejected := slices.Concat(outcome.Rejected, dropped)
	if rejectedPath != "" {
		if err := merge.WriteRecordFile(rejectedPath, rejected); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validated %d records: %d accepted, %d uncertain, %d rejected\n",
		len(records), len(outcome.Accepted), len(outcome.Uncertain), len(outcome.Rejected))
	fmt.Fprintf(out, "Kept %d records: %s\n", len(valid), output)
	for _, e := range rejected {
		logger.Debug("rejected name", "name", e.FullName(), "reason", e.ValidationReason, "score", e.ValidationScore)
	}
	return resolveErr
}
