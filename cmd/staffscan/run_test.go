package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/database"
)

const (
	testHits = `[
  {
    "title": "Jane Doe - Property Manager - Acme Ltd | LinkedIn",
    "url": "https://uk.linkedin.com/in/jane-doe",
    "description": "Property Manager at Acme Ltd. Experienced in residential lettings across Edinburgh."
  }
]`
	testRecords = `{"employees": [{"first_name": "Amy", "last_name": "Lee", "source": "Old Export"}]}`
)

// writeTestFile writes content under dir and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// emptyConfig writes a configuration file without companies so the
// operator's own file is never picked up.
func emptyConfig(t *testing.T) string {
	t.Helper()
	return writeTestFile(t, t.TempDir(), "staffscan.yaml", "companies: {}\n")
}

func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "run [company...]" {
			t.Errorf("unexpected use %q", cmd.Use)
		}
	})

	t.Run("has flags with defaults", func(t *testing.T) {
		t.Parallel()
		testCases := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{"location", "l", ""},
			{"website", "w", ""},
			{"records", "r", "[]"},
			{"pages", "p", "5"},
			{"depth", "d", "3"},
			{"timeout", "t", config.DefaultTimeout.String()},
			{"tor-timeout", "T", config.DefaultTorStartupTimeout.String()},
			{"batch", "b", "4"},
			{"validate", "", "true"},
			{"verify", "", "false"},
			{"review", "", "false"},
			{"output", "o", ""},
			{"markdown", "m", "false"},
			{"json", "j", "false"},
			{"no-db", "", "false"},
			{"config", "c", ""},
		}
		for _, tc := range testCases {
			flag := cmd.Flags().Lookup(tc.name)
			if flag == nil {
				t.Errorf("expected %s flag", tc.name)
				continue
			}
			if flag.Shorthand != tc.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tc.name, tc.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tc.defValue {
				t.Errorf("%s: expected default %q, got %q", tc.name, tc.defValue, flag.DefValue)
			}
		}
	})
}

func TestDedupCompanies(t *testing.T) {
	t.Parallel()

	got := dedupCompanies([]string{"Acme Ltd", " acme ltd ", "", "Brick & Co", "ACME LTD"})
	if diff := cmp.Diff([]string{"Acme Ltd", "Brick & Co"}, got); diff != "" {
		t.Errorf("dedupCompanies() mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSourceLabel(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Website = "https://acme.example"
	cfg.HitFiles = []string{"/tmp/exports/acme.json"}
	cfg.RecordFiles = []string{"old/records.json"}
	if got, want := runSourceLabel(cfg), "https://acme.example, acme.json, records.json"; got != want {
		t.Errorf("runSourceLabel() = %q, want %q", got, want)
	}
	if got := runSourceLabel(config.NewConfig()); got != "" {
		t.Errorf("expected empty label, got %q", got)
	}
}

func TestTargetFor(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Company = "Acme Ltd"
	target := targetFor(cfg)
	if len(target.ScoringTitles) != 0 {
		t.Errorf("default titles must not be used for scoring, got %v", target.ScoringTitles)
	}
	if diff := cmp.Diff(config.DefaultSearchTitles(), target.SearchTitles); diff != "" {
		t.Errorf("search titles mismatch (-want +got):\n%s", diff)
	}

	cfg.JobTitles = []string{"Surveyor"}
	target = targetFor(cfg)
	if diff := cmp.Diff([]string{"Surveyor"}, target.ScoringTitles); diff != "" {
		t.Errorf("scoring titles mismatch (-want +got):\n%s", diff)
	}
}

func TestCompanyConfigs(t *testing.T) {
	t.Parallel()

	newBase := func() *config.Config {
		base := config.NewConfig()
		base.HitFiles = []string{"hits.json"}
		base.JobTitles = []string{"Property Manager"}
		return base
	}
	file := &config.File{Companies: map[string]config.Profile{
		"Acme Ltd": {Location: "Leeds", JobTitles: []string{"Director"}},
	}}

	t.Run("derives report paths", func(t *testing.T) {
		t.Parallel()
		opts := runOptions{outputDir: "out", markdown: true, json: true}
		cfgs, err := companyConfigs(newBase(), opts, file, []string{"Acme Ltd", "Brick Co"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfgs) != 2 {
			t.Fatalf("expected 2 configs, got %d", len(cfgs))
		}

		acme := cfgs[0]
		if acme.Location != "Leeds" {
			t.Errorf("expected profile location, got %q", acme.Location)
		}
		want := []string{
			filepath.Join("out", "Acme_Ltd_Leeds_employees.xlsx"),
			filepath.Join("out", "Acme_Ltd_Leeds_employees.md"),
			filepath.Join("out", "Acme_Ltd_Leeds_employees.json"),
		}
		if diff := cmp.Diff(want, reportPaths(acme)); diff != "" {
			t.Errorf("report paths mismatch (-want +got):\n%s", diff)
		}

		brick := cfgs[1]
		if got, want := brick.OutputFile, filepath.Join("out", "Brick_Co_Location_employees.xlsx"); got != want {
			t.Errorf("OutputFile = %q, want %q", got, want)
		}
		if brick.Location != "" {
			t.Errorf("profile must not leak into another company, got location %q", brick.Location)
		}
	})

	t.Run("rejects one output for many companies", func(t *testing.T) {
		t.Parallel()
		base := newBase()
		base.OutputFile = "roster.xlsx"
		_, err := companyConfigs(base, runOptions{}, file, []string{"Acme Ltd", "Brick Co"})
		if !errors.Is(err, errOutputWithManyCompanies) {
			t.Errorf("expected errOutputWithManyCompanies, got %v", err)
		}
	})

	t.Run("reports invalid company settings", func(t *testing.T) {
		t.Parallel()
		base := config.NewConfig()
		_, err := companyConfigs(base, runOptions{}, file, []string{"Brick Co"})
		if !errors.Is(err, config.ErrNoInput) {
			t.Errorf("expected ErrNoInput, got %v", err)
		}
	})
}

func TestBuildBaseConfig_FlagsBeatProfile(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()
	if err := cmd.ParseFlags([]string{"--depth", "3", "--no-db"}); err != nil {
		t.Fatal(err)
	}
	base, opts, err := buildBaseConfig(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base.HitFiles = []string{"hits.json"}

	file := &config.File{Companies: map[string]config.Profile{
		"Acme Ltd": {Depth: 7, PagesToScrape: 9},
	}}
	cfgs, err := companyConfigs(base, opts, file, []string{"Acme Ltd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfgs[0].CrawlDepth; got != config.DefaultCrawlDepth {
		t.Errorf("--depth at its default must win over the profile, got %d", got)
	}
	if got := cfgs[0].PagesToScrape; got != 9 {
		t.Errorf("unset --pages must come from the profile, got %d", got)
	}
}

func TestRunCmd_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{"no company", []string{"run", "--no-db", "-c", emptyConfig(t)}},
		{"unknown category", []string{"run", "Acme Ltd", "--no-db", "--hits", "x.json", "--categories", "99", "-c", emptyConfig(t)}},
		{"missing config file", []string{"run", "Acme Ltd", "--no-db", "--hits", "x.json", "-c", filepath.Join(t.TempDir(), "missing.yaml")}},
		{"tor with proxy", []string{"run", "Acme Ltd", "--no-db", "--hits", "x.json", "--tor", "--proxy", "127.0.0.1:9050", "-c", emptyConfig(t)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := executeCommand(t, "", tc.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestRunCmd_EndToEnd(t *testing.T) {
	t.Parallel()

	inputs := t.TempDir()
	hits := writeTestFile(t, inputs, "acme_hits.json", testHits)
	records := writeTestFile(t, inputs, "records.json", testRecords)
	dataDir := t.TempDir()
	outDir := t.TempDir()
	cfgPath := emptyConfig(t)

	runArgs := []string{
		"run", "Acme Ltd",
		"--hits", hits,
		"-r", records,
		"--titles", "Property Manager",
		"--output-dir", outDir,
		"-m", "-j",
		"-c", cfgPath,
		"--data-dir", dataDir,
	}
	out, err := executeCommand(t, "", runArgs...)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Running Acme Ltd...") {
		t.Errorf("expected progress output, got:\n%s", out)
	}

	stem := filepath.Join(outDir, "Acme_Ltd_Location_employees")
	for _, ext := range []string{".xlsx", ".md", ".json"} {
		if _, err := os.Stat(stem + ext); err != nil {
			t.Errorf("expected report %s: %v", stem+ext, err)
		}
	}
	jsonReport, err := os.ReadFile(stem + ".json")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Jane", "Doe", "Amy", "Lee"} {
		if !strings.Contains(string(jsonReport), name) {
			t.Errorf("expected %q in the JSON report", name)
		}
	}

	t.Run("history lists the run", func(t *testing.T) {
		out, err := executeCommand(t, "", "history", "Acme Ltd", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(out, "Acme Ltd") {
			t.Errorf("expected the company in history output:\n%s", out)
		}
	})

	t.Run("history lists stored employees", func(t *testing.T) {
		out, err := executeCommand(t, "", "history", "Acme Ltd", "-e", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		for _, name := range []string{"Jane Doe", "Amy Lee"} {
			if !strings.Contains(out, name) {
				t.Errorf("expected %q in output:\n%s", name, out)
			}
		}
	})

	t.Run("report renders the stored roster", func(t *testing.T) {
		out, err := executeCommand(t, "", "report", "Acme Ltd", "-f", "json", "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if !strings.Contains(out, "Jane") || !strings.Contains(out, "Amy") {
			t.Errorf("expected both names in the report:\n%s", out)
		}
	})

	t.Run("a repeated run has no changes", func(t *testing.T) {
		if out, err := executeCommand(t, "", runArgs...); err != nil {
			t.Fatalf("second run failed: %v\n%s", err, out)
		}

		store, err := database.Open(dataDir, database.Options{})
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		runs, err := store.ListRuns(context.Background(), "Acme Ltd", 0)
		_ = store.Close()
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 2 {
			t.Fatalf("expected 2 stored runs, got %d", len(runs))
		}

		out, err := executeCommand(t, "", "history", "--compare", runs[1].ID+","+shortID(runs[0].ID), "--data-dir", dataDir)
		if err != nil {
			t.Fatalf("compare failed: %v", err)
		}
		if !strings.Contains(out, "No changes.") {
			t.Errorf("expected no changes:\n%s", out)
		}
	})
}
