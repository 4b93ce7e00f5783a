package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/merge"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/report"
)

var (
	// errNoReportSource is returned when neither a company nor --from is given.
	errNoReportSource = errors.New("specify a company from the history, or a record file with --from")

	// errExcelNeedsOutput is returned when an Excel report would go to the terminal.
	errExcelNeedsOutput = errors.New("xlsx reports need --output")

	// errNoEmployees is returned when the history holds nothing for a company.
	errNoEmployees = errors.New("no stored employees for this company")
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [company]",
		Short: "Render a report from the history or a record file",
		Long: `Report renders an employee directory as an Excel workbook, Markdown,
JSON, or a terminal table.

The roster comes from one of:
- the history: every employee stored for the company across runs
- a single stored run (--run)
- a record file (--from)

The format follows --format, or the extension of --output.

Examples:
  # Print everything known about a company
  staffscan report "Acme Lettings"

  # Workbook from a record file
  staffscan report --from acme.json -o acme.xlsx --company "Acme Lettings"

  # Markdown of a single run
  staffscan report --run 5f0c... -f markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().StringP("format", "f", "", "Output format: xlsx, markdown, json or table")
	cmd.Flags().StringP("output", "o", "", "Output file (default: standard output)")
	cmd.Flags().String("from", "", "Record file to render instead of the history")
	cmd.Flags().String("run", "", "ID of a stored run to render (see 'staffscan history')")
	cmd.Flags().String("company", "", "Company name shown in a report rendered from a file")
	cmd.Flags().StringP("location", "l", "", "Location shown in the report")

	return cmd
}

func runReportCmd(cmd *cobra.Command, args []string) (err error) {
	fr := &flagReader{flags: cmd.Flags()}
	formatName := fr.string("format")
	output := fr.string("output")
	from := fr.string("from")
	runID := fr.string("run")
	company := fr.string("company")
	location := fr.string("location")
	if fr.err != nil {
		return fr.err
	}
	if len(args) == 1 {
		company = args[0]
	}

	format, err := reportFormat(formatName, output)
	if err != nil {
		return err
	}
	if format == report.FormatExcel && output == "" {
		return errExcelNeedsOutput
	}

	logger := setupLogger(cmd)
	ctx, cancel := signalContext(logger)
	defer cancel()

	var roster model.Roster
	switch {
	case from != "":
		records, err := merge.LoadRecordFile(from)
		if err != nil {
			return err
		}
		merge.Sort(records)
		roster = model.Roster{
			Company:     company,
			Location:    location,
			GeneratedAt: time.Now(),
			SourceLabel: filepath.Base(from),
			Employees:   records,
			Stats:       merge.ComputeStats(records),
		}

	case runID != "":
		store, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := store.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		roster = run.Roster("staffscan run " + run.ID)

	case company != "":
		store, err := openStore(cmd, false)
		if err != nil {
			return err
		}
		defer store.Close()
		stored, err := store.ListEmployees(ctx, company)
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			return fmt.Errorf("%w: %s", errNoEmployees, company)
		}
		records := make([]model.Employee, 0, len(stored))
		for _, se := range stored {
			records = append(records, se.Employee)
		}
		merge.Sort(records)
		roster = model.Roster{
			Company:     company,
			Location:    location,
			GeneratedAt: time.Now(),
			SourceLabel: "staffscan history",
			Employees:   records,
			Stats:       merge.ComputeStats(records),
		}

	default:
		return errNoReportSource
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(filepath.Clean(output))
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	writer, err := report.NewWriter(format, w)
	if err != nil {
		return err
	}
	if _, err := writer.Write(roster); err != nil {
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	if output != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Report written: %s (%d employees)\n", output, len(roster.Employees))
	}
	return nil
}

// reportFormat resolves --format, falling back to the output extension and then a table.
func reportFormat(name, output string) (report.Format, error) {
	if name != "" {
		return report.ParseFormat(name)
	}
	if output != "" {
		return report.FormatFromPath(output)
	}
	return report.FormatTable, nil
}
