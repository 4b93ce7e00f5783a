package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/staffscan/internal/model"
)

// Decision is the operator's answer for an uncertain name.
type Decision int

const (
	// DecisionKeep keeps the record and remembers the name as valid.
	DecisionKeep Decision = iota
	// DecisionReject drops the record and remembers the name as invalid.
	DecisionReject
	// DecisionSkipRest drops this and every remaining uncertain record.
	DecisionSkipRest
)

// Decider asks the operator about an uncertain record.
type Decider interface {
	DecideUncertain(e model.Employee, r Result, index, total int) (Decision, error)
}

// Outcome splits records by validation status. Every record carries its
// score and reason.
type Outcome struct {
	Accepted  []model.Employee
	Uncertain []model.Employee
	Rejected  []model.Employee
}

// ValidateAll validates every record with a first and last name. Records
// with an empty name part are ignored.
func (v *Validator) ValidateAll(records []model.Employee) Outcome {
	var out Outcome
	for _, e := range records {
		first := strings.TrimSpace(e.FirstName)
		last := strings.TrimSpace(e.LastName)
		if first == "" || last == "" {
			continue
		}
		r := v.Validate(first, last)
		e.ValidationScore = r.Score
		e.ValidationReason = r.Reason

		switch Classify(r) {
		case StatusAccepted:
			out.Accepted = append(out.Accepted, e)
		case StatusUncertain:
			out.Uncertain = append(out.Uncertain, e)
		default:
			out.Rejected = append(out.Rejected, e)
		}
	}
	return out
}

// Resolve decides uncertain records. Without a Decider every record is kept.
// With one, kept and rejected names become exceptions, and skipping drops
// the remaining records without recording anything. It returns the kept
// and the dropped records.
func (v *Validator) Resolve(uncertain []model.Employee, d Decider) (kept, dropped []model.Employee, err error) {
	if d == nil {
		return uncertain, nil, nil
	}

	for i, e := range uncertain {
		r := Result{Valid: true, Reason: e.ValidationReason, Score: e.ValidationScore}
		decision, err := d.DecideUncertain(e, r, i+1, len(uncertain))
		if err != nil {
			return kept, append(dropped, uncertain[i:]...), fmt.Errorf("failed to review uncertain name %q: %w", e.FullName(), err)
		}
		switch decision {
		case DecisionKeep:
			v.exceptions.Include(e.FirstName, e.LastName)
			kept = append(kept, e)
		case DecisionReject:
			v.exceptions.Exclude(e.FirstName, e.LastName)
			dropped = append(dropped, e)
		case DecisionSkipRest:
			return kept, append(dropped, uncertain[i:]...), nil
		default:
			return kept, dropped, errors.New("unknown review decision")
		}
	}
	return kept, dropped, nil
}
