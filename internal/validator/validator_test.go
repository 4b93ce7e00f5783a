package validator

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/staffscan/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	v := New()
	testCases := []struct {
		name       string
		first      string
		last       string
		wantValid  bool
		wantReason string
		wantScore  float64
		wantStatus Status
	}{
		{"both names listed", "James", "Smith", true, ReasonDatabaseMatch, 0.77, StatusAccepted},
		{"first name listed", "James", "Zyxx", true, ReasonPartialMatch, 0.71, StatusAccepted},
		{"unlisted name", "Zelda", "Quorn", true, ReasonHeuristic, 0.59, StatusUncertain},
		{"unlisted lower case", "zelda", "quorn", true, ReasonHeuristic, 0.57, StatusUncertain},
		{"too short", "J", "Smith", false, ReasonTooShort, 0, StatusRejected},
		{"too long", "James", "Abcdefghijklmnopqrstuvwxyzabcde", false, ReasonTooLong, 0, StatusRejected},
		{"bad characters", "Jane", "Sm1th", false, ReasonInvalidCharacters, 0, StatusRejected},
		{"false positive term", "Jane", "Street", false, ReasonKnownFalsePositive, 0, StatusRejected},
		{"street suffix", "Jane", "Crescent", false, ReasonLocationPattern, 0, StatusRejected},
		{"district outside its city", "Leith", "Smith", true, ReasonPartialMatch, 0.71, StatusAccepted},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := v.Validate(tc.first, tc.last)
			if got.Valid != tc.wantValid || got.Reason != tc.wantReason || !approx(got.Score, tc.wantScore) {
				t.Errorf("Validate(%q, %q) = %+v, want valid=%v reason=%s score=%.2f",
					tc.first, tc.last, got, tc.wantValid, tc.wantReason, tc.wantScore)
			}
			if status := Classify(got); status != tc.wantStatus {
				t.Errorf("Classify() = %s, want %s", status, tc.wantStatus)
			}
		})
	}
}

func TestValidator_Options(t *testing.T) {
	t.Parallel()

	v := New(
		WithLocation("Edinburgh, Scotland"),
		WithExtraFirstNames("Zelda"),
		WithExtraLastNames("Quorn"),
		WithFalsePositives("Acme"),
	)

	if got := v.Validate("Leith", "Smith"); got.Reason != ReasonKnownFalsePositive {
		t.Errorf("location term: got %+v", got)
	}
	if got := v.Validate("Zelda", "Quorn"); got.Reason != ReasonDatabaseMatch {
		t.Errorf("extra names: got %+v", got)
	}
	if got := v.Validate("Acme", "Jones"); got.Valid {
		t.Errorf("extra false positive: got %+v", got)
	}
}

func TestValidator_Exceptions(t *testing.T) {
	t.Parallel()

	ex := NewExceptions(
		model.NameException{Name: "Jane Street", Include: true},
		model.NameException{Key: "james_smith", Include: false},
	)
	v := New(WithExceptions(ex))

	got := v.Validate("Jane", "Street")
	if !got.Valid || got.Reason != ReasonCustomInclude || got.Score != 1 {
		t.Errorf("include override: got %+v", got)
	}
	got = v.Validate("James", "Smith")
	if got.Valid || got.Reason != ReasonCustomExclude {
		t.Errorf("exclude override: got %+v", got)
	}
	if v.Exceptions().Len() != 2 {
		t.Errorf("Len() = %d, want 2", v.Exceptions().Len())
	}
	if len(ex.Changed()) != 0 {
		t.Errorf("seeded entries must not count as changes")
	}
}

func TestValidator_ValidateAll(t *testing.T) {
	t.Parallel()

	records := []model.Employee{
		{FirstName: "James", LastName: "Smith"},
		{FirstName: "Zelda", LastName: "Quorn"},
		{FirstName: "Jane", LastName: "Street"},
		{FirstName: "Madonna", LastName: " "},
	}
	out := New().ValidateAll(records)

	if len(out.Accepted) != 1 || len(out.Uncertain) != 1 || len(out.Rejected) != 1 {
		t.Fatalf("unexpected buckets: %d accepted, %d uncertain, %d rejected",
			len(out.Accepted), len(out.Uncertain), len(out.Rejected))
	}
	if out.Accepted[0].ValidationReason != ReasonDatabaseMatch || !approx(out.Accepted[0].ValidationScore, 0.77) {
		t.Errorf("accepted record missing validation fields: %+v", out.Accepted[0])
	}
	if out.Rejected[0].ValidationReason != ReasonKnownFalsePositive {
		t.Errorf("rejected reason = %q", out.Rejected[0].ValidationReason)
	}
}

type scriptedDecider struct {
	decisions []Decision
	err       error
	calls     int
}

func (s *scriptedDecider) DecideUncertain(model.Employee, Result, int, int) (Decision, error) {
	if s.err != nil {
		return 0, s.err
	}
	d := s.decisions[s.calls]
	s.calls++
	return d, nil
}

func TestValidator_Resolve(t *testing.T) {
	t.Parallel()

	uncertain := []model.Employee{
		{FirstName: "Zelda", LastName: "Quorn"},
		{FirstName: "Yuri", LastName: "Plonk"},
		{FirstName: "Xena", LastName: "Ward"},
		{FirstName: "Wilf", LastName: "Vane"},
	}

	t.Run("unattended keeps everything", func(t *testing.T) {
		t.Parallel()
		kept, dropped, err := New().Resolve(uncertain, nil)
		if err != nil || len(kept) != 4 || len(dropped) != 0 {
			t.Errorf("Resolve(nil) = %d kept, %d dropped, %v", len(kept), len(dropped), err)
		}
	})

	t.Run("answers become exceptions", func(t *testing.T) {
		t.Parallel()
		v := New()
		d := &scriptedDecider{decisions: []Decision{DecisionKeep, DecisionReject, DecisionSkipRest}}
		kept, dropped, err := v.Resolve(uncertain, d)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(kept) != 1 || kept[0].FirstName != "Zelda" {
			t.Errorf("kept = %+v", kept)
		}
		if len(dropped) != 3 {
			t.Errorf("dropped %d records, want 3", len(dropped))
		}

		var changed []string
		for _, e := range v.Exceptions().Changed() {
			changed = append(changed, e.Key)
			if e.Key == "zelda_quorn" && !e.Include {
				t.Errorf("kept name must be included")
			}
		}
		if diff := cmp.Diff([]string{"yuri_plonk", "zelda_quorn"}, changed); diff != "" {
			t.Errorf("Changed() mismatch (-want +got):\n%s", diff)
		}
		if got := v.Validate("Yuri", "Plonk"); got.Reason != ReasonCustomExclude {
			t.Errorf("rejected name should now be excluded, got %+v", got)
		}
	})

	t.Run("decider error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("closed")
		_, dropped, err := New().Resolve(uncertain, &scriptedDecider{err: boom})
		if !errors.Is(err, boom) {
			t.Errorf("expected wrapped error, got %v", err)
		}
		if len(dropped) != 4 {
			t.Errorf("dropped %d records, want 4", len(dropped))
		}
	})
}

func TestParseExceptionsFile(t *testing.T) {
	t.Parallel()

	got, err := ParseExceptionsFile([]byte(`{
		"always_include": ["Jane Doe", "  "],
		"always_exclude": ["Acme Court", "Jane Doe"],
	}`))
	if err != nil {
		t.Fatalf("ParseExceptionsFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Key != "acme_court" || got[0].Include {
		t.Errorf("unexpected first entry %+v", got[0])
	}
	if got[1].Key != "jane_doe" || got[1].Include {
		t.Errorf("a name in both lists must be excluded, got %+v", got[1])
	}

	if _, err := ParseExceptionsFile([]byte(`not json`)); err == nil {
		t.Error("expected decode error")
	}
}
