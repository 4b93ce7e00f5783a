// Package review walks an operator through employee records on a terminal.
package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/validator"
)

// IsInteractive reports whether r is a terminal an operator can answer from.
func IsInteractive(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// answer is one parsed reply to a prompt.
type answer int

const (
	answerKeep answer = iota
	answerSkip
	answerKeepRest
	answerSkipRest
)

// Options select which confidence tiers are offered for review.
type Options struct {
	// ReviewHigh offers high confidence records instead of accepting them.
	ReviewHigh bool

	// ReviewMedium offers medium confidence records instead of accepting them.
	ReviewMedium bool
}

// Reviewer prompts on out and reads answers from in.
type Reviewer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewReviewer returns a Reviewer.
func NewReviewer(in io.Reader, out io.Writer) *Reviewer {
	return &Reviewer{in: bufio.NewReader(in), out: out}
}

// Review returns the records the operator keeps, in input order per tier
// (high, then medium, then low). Low confidence records are always offered.
func (r *Reviewer) Review(records []model.Employee, opts Options) ([]model.Employee, error) {
	var high, medium, low []model.Employee
	for _, e := range records {
		switch e.Confidence {
		case model.ConfidenceHigh:
			high = append(high, e)
		case model.ConfidenceMedium:
			medium = append(medium, e)
		default:
			low = append(low, e)
		}
	}

	kept := make([]model.Employee, 0, len(records))
	groups := []struct {
		records []model.Employee
		review  bool
	}{
		{high, opts.ReviewHigh},
		{medium, opts.ReviewMedium},
		{low, true},
	}
	for i, g := range groups {
		if len(g.records) == 0 {
			continue
		}
		if !g.review {
			fmt.Fprintf(r.out, "Auto-accepted %d %s confidence records\n", len(g.records), model.Confidences[i])
			kept = append(kept, g.records...)
			continue
		}
		reviewed, err := r.reviewGroup(g.records, model.Confidences[i])
		if err != nil {
			return nil, err
		}
		kept = append(kept, reviewed...)
	}
	fmt.Fprintf(r.out, "Review complete. Kept %d of %d records\n", len(kept), len(records))
	return kept, nil
}

func (r *Reviewer) reviewGroup(records []model.Employee, tier model.Confidence) ([]model.Employee, error) {
	fmt.Fprintf(r.out, "\nReviewing %d %s confidence records.\n", len(records), tier)
	fmt.Fprintln(r.out, "  y or Enter: keep record")
	fmt.Fprintln(r.out, "  n: skip record")
	fmt.Fprintln(r.out, "  q: keep all remaining records")
	fmt.Fprintln(r.out, "  s: skip all remaining records")

	var kept []model.Employee
	for i, e := range records {
		r.printRecord(e, i+1, len(records))
		a, err := r.ask("Keep this record? (y/n/q/s): ", map[string]answer{
			"y": answerKeep, "": answerKeep, "n": answerSkip, "q": answerKeepRest, "s": answerSkipRest,
		}, "Please enter 'y', 'n', 'q', or 's'.")
		if err != nil {
			return nil, err
		}
		switch a {
		case answerKeep:
			kept = append(kept, e)
		case answerKeepRest:
			fmt.Fprintln(r.out, "Keeping all remaining records.")
			return append(kept, records[i:]...), nil
		case answerSkipRest:
			fmt.Fprintln(r.out, "Skipping all remaining records.")
			return kept, nil
		}
	}
	return kept, nil
}

func (r *Reviewer) printRecord(e model.Employee, index, total int) {
	rule := strings.Repeat("=", 60)
	link := e.Link
	if link == "" {
		link = "N/A"
	}
	fmt.Fprintf(r.out, "\n%s\nEmployee %d/%d | Confidence: %s\n%s\n", rule, index, total, strings.ToUpper(e.Confidence.String()), rule)
	fmt.Fprintf(r.out, "Name:      %s\n", e.FullName())
	fmt.Fprintf(r.out, "Title:     %s\n", e.Title)
	fmt.Fprintf(r.out, "Source:    %s\n", e.Source)
	fmt.Fprintf(r.out, "Location:  %s\n", e.Location)
	fmt.Fprintf(r.out, "Link:      %s\n%s\n", link, rule)
}

// DecideUncertain implements validator.Decider.
func (r *Reviewer) DecideUncertain(e model.Employee, res validator.Result, index, total int) (validator.Decision, error) {
	if index == 1 {
		fmt.Fprintf(r.out, "\nReviewing %d uncertain names...\n", total)
		fmt.Fprintln(r.out, "Options: 'y' (keep), 'n' (reject), 's' (skip remaining)")
	}
	fmt.Fprintf(r.out, "\nUncertain Name %d/%d:\n", index, total)
	fmt.Fprintf(r.out, "Name: %s\n", e.FullName())
	fmt.Fprintf(r.out, "Title: %s\n", e.Title)
	fmt.Fprintf(r.out, "Source: %s\n", e.Source)
	fmt.Fprintf(r.out, "Confidence: %.2f (%s)\n", res.Score, res.Reason)

	a, err := r.ask("Keep this name? (y/n/s): ", map[string]answer{
		"y": answerKeep, "n": answerSkip, "s": answerSkipRest,
	}, "Please enter 'y', 'n', or 's'")
	if err != nil {
		return validator.DecisionSkipRest, err
	}
	switch a {
	case answerKeep:
		return validator.DecisionKeep, nil
	case answerSkip:
		return validator.DecisionReject, nil
	default:
		return validator.DecisionSkipRest, nil
	}
}

// ask prompts until a valid answer arrives. End of input answers "skip the rest".
func (r *Reviewer) ask(prompt string, valid map[string]answer, hint string) (answer, error) {
	for {
		fmt.Fprint(r.out, prompt)
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return answerSkipRest, fmt.Errorf("failed to read answer: %w", err)
		}
		choice := strings.ToLower(strings.TrimSpace(line))
		if errors.Is(err, io.EOF) && choice == "" {
			fmt.Fprintln(r.out)
			return answerSkipRest, nil
		}
		if a, ok := valid[choice]; ok {
			return a, nil
		}
		fmt.Fprintln(r.out, hint)
		if errors.Is(err, io.EOF) {
			return answerSkipRest, nil
		}
	}
}
