package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/staffscan/internal/model"
)

func TestDiffRosters(t *testing.T) {
	t.Parallel()

	jane := model.Employee{FirstName: "Jane", LastName: "Doe", Title: "Property Manager", Confidence: model.ConfidenceHigh}
	amy := model.Employee{FirstName: "Amy", LastName: "Lee", Title: "Director", Confidence: model.ConfidenceMedium}
	bob := model.Employee{FirstName: "Bob", LastName: "Ray", Confidence: model.ConfidenceLow}

	promoted := jane
	promoted.Title = "Head of Lettings"
	renamed := amy
	renamed.FirstName = "AMY"

	testCases := []struct {
		name    string
		old     []model.Employee
		current []model.Employee
		want    RunDiff
	}{
		{
			name:    "identical rosters",
			old:     []model.Employee{jane, amy},
			current: []model.Employee{amy, jane},
			want:    RunDiff{},
		},
		{
			name:    "added and removed",
			old:     []model.Employee{jane, amy},
			current: []model.Employee{jane, bob},
			want:    RunDiff{Added: []model.Employee{bob}, Removed: []model.Employee{amy}},
		},
		{
			name:    "title change",
			old:     []model.Employee{jane},
			current: []model.Employee{promoted},
			want:    RunDiff{Changed: [][2]model.Employee{{jane, promoted}}},
		},
		{
			name:    "name case is not a change",
			old:     []model.Employee{amy},
			current: []model.Employee{renamed},
			want:    RunDiff{},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, DiffRosters(tc.old, tc.current)); diff != "" {
				t.Errorf("DiffRosters() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHistoryHelpers(t *testing.T) {
	t.Parallel()

	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q", got)
	}

	start := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	if got := runDuration(start, start.Add(90*time.Second)); got != "1m30s" {
		t.Errorf("runDuration() = %q", got)
	}
	if got := runDuration(start, time.Time{}); got != "-" {
		t.Errorf("unfinished runs must show '-', got %q", got)
	}

	if got := changeText("Manager", "Director"); got != "Manager -> Director" {
		t.Errorf("changeText() = %q", got)
	}
	if got := changeText("high", "high"); got != "high" {
		t.Errorf("changeText() = %q", got)
	}
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("missing history", func(t *testing.T) {
		t.Parallel()
		if _, err := executeCommand(t, "", "history", "--data-dir", t.TempDir()); err == nil {
			t.Error("expected an error when no history exists")
		}
	})

	t.Run("argument checks", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		if _, err := executeCommand(t, "", "history", "-e", "--data-dir", dataDir); err == nil {
			t.Error("expected an error for --employees without a company")
		}
		if _, err := executeCommand(t, "", "history", "--compare", "abc", "--data-dir", dataDir); err == nil {
			t.Error("expected an error for a single --compare value")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()
		dataDir := t.TempDir()
		if _, err := executeCommand(t, "", "exceptions", "list", "--data-dir", dataDir); err != nil {
			t.Fatalf("failed to create the store: %v", err)
		}
		out, err := executeCommand(t, "", "history", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out, "No runs found.") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})
}
