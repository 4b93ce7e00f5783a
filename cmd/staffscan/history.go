package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/nao1215/staffscan/internal/database"
	"github.com/nao1215/staffscan/internal/model"
)

// shortIDLength is how much of a run ID the history table shows.
const shortIDLength = 8

var (
	// errAmbiguousRunID is returned when a run ID prefix matches several runs.
	errAmbiguousRunID = errors.New("run ID prefix matches several runs")

	// errCompareArgs is returned when --compare does not name two runs.
	errCompareArgs = errors.New("--compare needs two run IDs")
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [company]",
		Short: "List and compare stored runs",
		Long: `History shows the runs saved by 'staffscan run'.

Without a company every run is listed, newest first. Run IDs may be
shortened to any unique prefix.

Examples:
  # List recent runs
  staffscan history

  # Runs of one company
  staffscan history "Acme Lettings"

  # Everyone stored for a company, with first and last sighting
  staffscan history "Acme Lettings" --employees

  # What changed between two runs
  staffscan history --compare 1a2b3c4d,5e6f7a8b`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolP("employees", "e", false, "List the stored employees of the company")
	cmd.Flags().StringSlice("compare", nil, "Compare two runs: OLD,NEW")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	fr := &flagReader{flags: cmd.Flags()}
	limit := fr.int("limit")
	employees := fr.bool("employees")
	compare := fr.stringSlice("compare")
	if fr.err != nil {
		return fr.err
	}
	var company string
	if len(args) == 1 {
		company = args[0]
	}
	if employees && company == "" {
		return errors.New("--employees needs a company")
	}
	if len(compare) != 0 && len(compare) != 2 {
		return errCompareArgs
	}

	logger := setupLogger(cmd)
	ctx, cancel := signalContext(logger)
	defer cancel()

	store, err := openStore(cmd, false)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	switch {
	case len(compare) == 2:
		return compareRuns(ctx, out, store, compare[0], compare[1])
	case employees:
		return listStoredEmployees(ctx, out, store, company)
	default:
		return listRuns(ctx, out, store, company, limit)
	}
}

func listRuns(ctx context.Context, out io.Writer, store *database.Store, company string, limit int) error {
	runs, err := store.ListRuns(ctx, company, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		if company != "" {
			fmt.Fprintf(out, "No runs found for %s\n", company)
		} else {
			fmt.Fprintln(out, "No runs found.")
		}
		fmt.Fprintln(out, "\nUse 'staffscan run <company>' to start one.")
		return nil
	}

	tw := newHistoryTable(out)
	tw.SetTitle(fmt.Sprintf("Runs (%d)", len(runs)))
	tw.AppendHeader(table.Row{"Run", "Company", "Location", "Started", "Took", "Employees", "H / M / L", "LinkedIn", "Errors"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	for _, r := range runs {
		tw.AppendRow(table.Row{
			shortID(r.ID),
			r.Company,
			r.Location,
			humanize.Time(r.StartedAt),
			runDuration(r.StartedAt, r.FinishedAt),
			r.Stats.Total,
			fmt.Sprintf("%d / %d / %d", r.Stats.High, r.Stats.Medium, r.Stats.Low),
			r.Stats.LinkedIn,
			r.ErrorCount,
		})
	}
	tw.Render()
	return nil
}

func listStoredEmployees(ctx context.Context, out io.Writer, store *database.Store, company string) error {
	stored, err := store.ListEmployees(ctx, company)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		fmt.Fprintf(out, "No employees stored for %s\n", company)
		return nil
	}

	tw := newHistoryTable(out)
	tw.SetTitle(fmt.Sprintf("%s: %s employees", company, humanize.Comma(int64(len(stored)))))
	tw.AppendHeader(table.Row{"Name", "Job Title", "Confidence", "Source", "First Seen", "Last Seen"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 4, WidthMax: 30},
	})
	for _, se := range stored {
		tw.AppendRow(table.Row{
			se.FullName(),
			se.Title,
			se.Confidence.Label(),
			se.Source,
			humanize.Time(se.FirstSeen),
			humanize.Time(se.LastSeen),
		})
	}
	tw.Render()
	return nil
}

// RunDiff is what changed between two rosters.
type RunDiff struct {
	Added   []model.Employee
	Removed []model.Employee

	// Changed pairs records present in both rosters whose title or
	// confidence differs: old first, new second.
	Changed [][2]model.Employee
}

// DiffRosters compares two rosters by name key. Results keep the order of
// the roster they come from.
func DiffRosters(old, current []model.Employee) RunDiff {
	var d RunDiff
	before := make(map[string]model.Employee, len(old))
	for _, e := range old {
		before[e.Key()] = e
	}
	seen := make(map[string]bool, len(current))
	for _, e := range current {
		key := e.Key()
		seen[key] = true
		prev, ok := before[key]
		switch {
		case !ok:
			d.Added = append(d.Added, e)
		case prev.Title != e.Title || prev.Confidence != e.Confidence:
			d.Changed = append(d.Changed, [2]model.Employee{prev, e})
		}
	}
	for _, e := range old {
		if !seen[e.Key()] {
			d.Removed = append(d.Removed, e)
		}
	}
	return d
}

func compareRuns(ctx context.Context, out io.Writer, store *database.Store, oldID, newID string) error {
	oldRun, err := findRun(ctx, store, oldID)
	if err != nil {
		return err
	}
	newRun, err := findRun(ctx, store, newID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Comparing %s (%s, %d employees)\n     with %s (%s, %d employees)\n\n",
		shortID(oldRun.ID), oldRun.StartedAt.Format(time.DateTime), len(oldRun.Employees),
		shortID(newRun.ID), newRun.StartedAt.Format(time.DateTime), len(newRun.Employees))

	d := DiffRosters(oldRun.Employees, newRun.Employees)
	if len(d.Added)+len(d.Removed)+len(d.Changed) == 0 {
		fmt.Fprintln(out, "No changes.")
		return nil
	}

	tw := newHistoryTable(out)
	tw.AppendHeader(table.Row{"Change", "Name", "Job Title", "Confidence"})
	for _, e := range d.Added {
		tw.AppendRow(table.Row{"+ new", e.FullName(), e.Title, e.Confidence.Label()})
	}
	for _, e := range d.Removed {
		tw.AppendRow(table.Row{"- gone", e.FullName(), e.Title, e.Confidence.Label()})
	}
	for _, pair := range d.Changed {
		tw.AppendRow(table.Row{
			"~ changed",
			pair[1].FullName(),
			changeText(pair[0].Title, pair[1].Title),
			changeText(pair[0].Confidence.Label(), pair[1].Confidence.Label()),
		})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d new, %d gone, %d changed", len(d.Added), len(d.Removed), len(d.Changed)), "", ""})
	tw.Render()
	return nil
}

// findRun loads a run by full ID or unique prefix.
func findRun(ctx context.Context, store *database.Store, id string) (*model.Run, error) {
	id = strings.TrimSpace(id)
	run, err := store.GetRun(ctx, id)
	if err == nil || !errors.Is(err, database.ErrRunNotFound) {
		return run, err
	}

	runs, listErr := store.ListRuns(ctx, "", 0)
	if listErr != nil {
		return nil, listErr
	}
	var match string
	for _, r := range runs {
		if strings.HasPrefix(r.ID, id) {
			if match != "" {
				return nil, fmt.Errorf("%w: %s", errAmbiguousRunID, id)
			}
			match = r.ID
		}
	}
	if match == "" {
		return nil, err
	}
	return store.GetRun(ctx, match)
}

func newHistoryTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleRounded)
	return tw
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}

func runDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return "-"
	}
	return end.Sub(start).Round(time.Second).String()
}

func changeText(before, after string) string {
	if before == after {
		return after
	}
	return before + " -> " + after
}
