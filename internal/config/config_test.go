package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestNewConfig documents the defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default PagesToScrape is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.PagesToScrape != 5 {
			t.Errorf("expected PagesToScrape to be 5, got %d", cfg.PagesToScrape)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default similarity threshold is 0.93", func(t *testing.T) {
		t.Parallel()
		if cfg.SimilarityThreshold != 0.93 {
			t.Errorf("expected 0.93, got %v", cfg.SimilarityThreshold)
		}
	})

	t.Run("tor is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor {
			t.Error("expected UseTor to be false")
		}
	})
}

// TestConfigValidate checks one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Company = "Acme Property Ltd"
		cfg.Location = "Edinburgh"
		cfg.Website = "https://acme.example.com"
		return cfg
	}

	testCases := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"valid config", func(*Config) {}, nil},
		{"missing company", func(c *Config) { c.Company = "" }, ErrNoCompany},
		{"bad company", func(c *Config) { c.Company = "Acme <script>" }, ErrInvalidCompanyName},
		{"bad location", func(c *Config) { c.Location = "Leeds 2" }, ErrInvalidLocation},
		{"bad website", func(c *Config) { c.Website = "localhost" }, ErrInvalidWebsite},
		{"too many pages", func(c *Config) { c.PagesToScrape = 21 }, ErrInvalidPages},
		{"no input", func(c *Config) { c.Website = "" }, ErrNoInput},
		{"hit files are input", func(c *Config) { c.Website = ""; c.HitFiles = []string{"hits.json"} }, nil},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"negative delay", func(c *Config) { c.CrawlDelay = -time.Second }, ErrInvalidCrawlDelay},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"similarity above one", func(c *Config) { c.SimilarityThreshold = 1.5 }, ErrInvalidSimilarity},
		{"tor and proxy", func(c *Config) { c.UseTor = true; c.ProxyAddress = "127.0.0.1:9050" }, ErrConflictingTransport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.want == nil {
				if err != nil {
					t.Errorf("expected nil, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyProfile(t *testing.T) {
	t.Parallel()

	t.Run("fills unset options", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Company = "Acme"
		cfg.ApplyProfile(Profile{
			Location:      "Leeds",
			Website:       "acme.example.com/",
			JobTitles:     []string{"CEO"},
			PagesToScrape: 10,
			Depth:         2,
		})
		if cfg.Location != "Leeds" {
			t.Errorf("Location = %q", cfg.Location)
		}
		if cfg.Website != "https://acme.example.com" {
			t.Errorf("Website = %q", cfg.Website)
		}
		if cfg.PagesToScrape != 10 || cfg.CrawlDepth != 2 {
			t.Errorf("pages=%d depth=%d", cfg.PagesToScrape, cfg.CrawlDepth)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.Location = "York"
		cfg.JobTitles = []string{"CTO"}
		cfg.ApplyProfile(Profile{Location: "Leeds", JobTitles: []string{"CEO"}})
		if cfg.Location != "York" {
			t.Errorf("Location = %q, want York", cfg.Location)
		}
		if diff := cmp.Diff([]string{"CTO"}, cfg.JobTitles); diff != "" {
			t.Errorf("JobTitles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit crawl limits win even at their defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.CrawlDepth = 1
		cfg.MarkExplicit(OptionPages, OptionDepth)
		cfg.ApplyProfile(Profile{PagesToScrape: 12, Depth: 5})
		if cfg.PagesToScrape != DefaultPagesToScrape {
			t.Errorf("PagesToScrape = %d, want %d", cfg.PagesToScrape, DefaultPagesToScrape)
		}
		if cfg.CrawlDepth != 1 {
			t.Errorf("CrawlDepth = %d, want 1", cfg.CrawlDepth)
		}
	})

	t.Run("unset crawl limits come from the profile", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.MarkExplicit(OptionDepth)
		cfg.ApplyProfile(Profile{PagesToScrape: 12, Depth: 5})
		if cfg.PagesToScrape != 12 {
			t.Errorf("PagesToScrape = %d, want 12", cfg.PagesToScrape)
		}
		if cfg.CrawlDepth != DefaultCrawlDepth {
			t.Errorf("CrawlDepth = %d, want %d", cfg.CrawlDepth, DefaultCrawlDepth)
		}
	})
}

func TestSearchTitles(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if got := cfg.SearchTitles(); len(got) != len(defaultSearchTitles) {
		t.Errorf("expected default titles, got %d", len(got))
	}
	cfg.JobTitles = []string{"Estate Agent"}
	if diff := cmp.Diff([]string{"Estate Agent"}, cfg.SearchTitles()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestFileGetProfile(t *testing.T) {
	t.Parallel()

	file := &File{
		Defaults: Profile{
			Location:       "Edinburgh",
			PagesToScrape:  3,
			Headers:        map[string]string{"Accept-Language": "en-GB"},
			IgnorePatterns: []string{"/blog/*"},
		},
		Companies: map[string]Profile{
			"Acme Ltd": {
				Website: "acme.example.com",
				Depth:   2,
				Headers: map[string]string{"X-Test": "1"},
			},
			"Other": {
				Location: "Glasgow",
			},
		},
	}

	t.Run("company inherits defaults", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("acme ltd")
		if err != nil {
			t.Fatal(err)
		}
		if p.Location != "Edinburgh" || p.PagesToScrape != 3 || p.Depth != 2 {
			t.Errorf("unexpected profile %+v", p)
		}
		if p.Headers["X-Test"] != "1" || p.Headers["Accept-Language"] != "en-GB" {
			t.Errorf("headers not merged: %v", p.Headers)
		}
		if diff := cmp.Diff([]string{"/blog/*"}, p.IgnorePatterns); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("company overrides defaults", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("Other")
		if err != nil {
			t.Fatal(err)
		}
		if p.Location != "Glasgow" {
			t.Errorf("Location = %q, want Glasgow", p.Location)
		}
	})

	t.Run("unknown company gets defaults", func(t *testing.T) {
		t.Parallel()
		p, err := file.GetProfile("Nobody")
		if err != nil {
			t.Fatal(err)
		}
		if p.Location != "Edinburgh" {
			t.Errorf("Location = %q", p.Location)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.staffscan")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads YAML profiles", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".staffscan")
		content := `defaults:
  location: Edinburgh
  pages_to_scrape: 4
companies:
  Acme Ltd:
    company_website: acme.example.com
    job_titles:
      - Property Manager
      - CEO
    ignorePatterns:
      - "/news/archive/*"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Defaults.PagesToScrape != 4 {
			t.Errorf("expected default pages 4, got %d", cfg.Defaults.PagesToScrape)
		}
		acme, ok := cfg.Companies["Acme Ltd"]
		if !ok {
			t.Fatal("expected Acme Ltd in companies")
		}
		if diff := cmp.Diff([]string{"Property Manager", "CEO"}, acme.JobTitles); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("loads legacy company_config.json", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "company_config.json")
		content := `{
    "company_name": "Acme Ltd",
    "location": "Leeds",
    "company_website": "https://acme.example.com",
    "job_titles": ["CFO"],
    "pages_to_scrape": 7,
    "output_file": "Acme_Ltd_Leeds_employees.xlsx"
}`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]string{"Acme Ltd"}, cfg.CompanyNames()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		p, err := cfg.GetProfile("ACME LTD")
		if err != nil {
			t.Fatal(err)
		}
		if p.Location != "Leeds" || p.PagesToScrape != 7 {
			t.Errorf("unexpected profile %+v", p)
		}
	})

	t.Run("loads TOML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "staffscan.toml")
		content := `[defaults]
location = "York"

[companies."Acme Ltd"]
company_website = "acme.example.com"
extra_last_names = ["Macleod"]
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, err := cfg.GetProfile("Acme Ltd")
		if err != nil {
			t.Fatal(err)
		}
		if p.Location != "York" || p.Website != "acme.example.com" {
			t.Errorf("unexpected profile %+v", p)
		}
		if diff := cmp.Diff([]string{"Macleod"}, p.ExtraLastNames); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".staffscan")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Companies map", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), ".staffscan")
		if err := os.WriteFile(configPath, []byte("defaults:\n  depth: 2\n"), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Companies == nil {
			t.Error("expected Companies map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(configPath); got != configPath {
			t.Errorf("expected %q, got %q", configPath, got)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile("/nonexistent/path/config.yaml"); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q does not end in %s", name, dir, AppName)
		}
	}
}
