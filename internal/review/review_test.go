package review

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/validator"
)

func names(records []model.Employee) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.FirstName)
	}
	return out
}

func sampleRecords() []model.Employee {
	return []model.Employee{
		{FirstName: "Hana", LastName: "One", Confidence: model.ConfidenceHigh},
		{FirstName: "Mia", LastName: "Two", Confidence: model.ConfidenceMedium},
		{FirstName: "Leo", LastName: "Three", Confidence: model.ConfidenceLow},
		{FirstName: "Lou", LastName: "Four", Confidence: model.ConfidenceLow},
		{FirstName: "Lia", LastName: "Five", Confidence: model.ConfidenceLow},
	}
}

func TestReviewer_Review(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		opts  Options
		want  []string
	}{
		{
			name:  "keep, skip, keep with enter",
			input: "y\nn\n\n",
			want:  []string{"Hana", "Mia", "Leo", "Lia"},
		},
		{
			name:  "invalid answer re-prompts",
			input: "maybe\nn\ny\nn\n",
			want:  []string{"Hana", "Mia", "Lou"},
		},
		{
			name:  "keep the rest",
			input: "n\nq\n",
			want:  []string{"Hana", "Mia", "Lou", "Lia"},
		},
		{
			name:  "skip the rest",
			input: "y\ns\n",
			want:  []string{"Hana", "Mia", "Leo"},
		},
		{
			name:  "end of input skips the rest",
			input: "y\n",
			want:  []string{"Hana", "Mia", "Leo"},
		},
		{
			name:  "medium tier reviewed on request",
			input: "n\ns\n",
			opts:  Options{ReviewMedium: true},
			want:  []string{"Hana"},
		},
		{
			name:  "high tier reviewed on request",
			input: "n\ny\ns\n",
			opts:  Options{ReviewHigh: true},
			want:  []string{"Mia", "Leo"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			got, err := NewReviewer(strings.NewReader(tc.input), &out).Review(sampleRecords(), tc.opts)
			if err != nil {
				t.Fatalf("Review() error = %v", err)
			}
			if diff := cmp.Diff(tc.want, names(got)); diff != "" {
				t.Errorf("Review() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReviewer_PrintsRecord(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	records := []model.Employee{{FirstName: "Leo", LastName: "Three", Title: "Analyst", Source: model.SourceWebsite}}
	if _, err := NewReviewer(strings.NewReader("y\n"), &out).Review(records, Options{}); err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	for _, want := range []string{"Employee 1/1 | Confidence: LOW", "Name:      Leo Three", "Link:      N/A", "Kept 1 of 1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestReviewer_DecideUncertain(t *testing.T) {
	t.Parallel()

	r := NewReviewer(strings.NewReader("y\nx\nn\ns\n"), &bytes.Buffer{})
	e := model.Employee{FirstName: "Zelda", LastName: "Quorn"}
	res := validator.Result{Valid: true, Reason: validator.ReasonHeuristic, Score: 0.59}

	want := []validator.Decision{validator.DecisionKeep, validator.DecisionReject, validator.DecisionSkipRest, validator.DecisionSkipRest}
	for i, w := range want {
		got, err := r.DecideUncertain(e, res, i+1, len(want))
		if err != nil {
			t.Fatalf("DecideUncertain() error = %v", err)
		}
		if got != w {
			t.Errorf("answer %d: got %v, want %v", i+1, got, w)
		}
	}
}

func TestIsInteractive(t *testing.T) {
	t.Parallel()

	if IsInteractive(strings.NewReader("")) {
		t.Error("a string reader is not a terminal")
	}
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if IsInteractive(f) {
		t.Error("a regular file is not a terminal")
	}
}
