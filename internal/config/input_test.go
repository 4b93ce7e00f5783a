package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidateCompanyName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "Acme", true},
		{"punctuation", "Smith & Sons (Holdings) Ltd.", true},
		{"hyphen and comma", "Lamb-Jones, Partners", true},
		{"one char", "A", false},
		{"padded one char", "  A  ", false},
		{"too long", strings.Repeat("a", 101), false},
		{"max length", strings.Repeat("a", 100), true},
		{"invalid symbol", "Acme!", false},
		{"non ascii", "Café Ltd", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCompanyName(tc.input)
			if tc.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tc.valid && !errors.Is(err, ErrInvalidCompanyName) {
				t.Errorf("expected ErrInvalidCompanyName, got %v", err)
			}
		})
	}
}

func TestValidateLocation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		valid bool
	}{
		{"Edinburgh", true},
		{"Newcastle-upon-Tyne, UK", true},
		{"St John's", true},
		{"E", false},
		{"London 2", false},
		{strings.Repeat("a", 51), false},
	}

	for _, tc := range testCases {
		err := ValidateLocation(tc.input)
		if (err == nil) != tc.valid {
			t.Errorf("ValidateLocation(%q) = %v, want valid=%v", tc.input, err, tc.valid)
		}
	}
}

func TestValidateWebsite(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		valid bool
	}{
		{"example.com", true},
		{"www.example.co.uk", true},
		{"https://acme-group.com/about", true},
		{"http://example.org", true},
		{"localhost", false},
		{"example.com:8080", false},
		{"127.0.0.1", false},
		{"", false},
		{"exa mple.com", false},
	}

	for _, tc := range testCases {
		err := ValidateWebsite(tc.input)
		if (err == nil) != tc.valid {
			t.Errorf("ValidateWebsite(%q) = %v, want valid=%v", tc.input, err, tc.valid)
		}
	}
}

func TestValidatePages(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 5, 20} {
		if err := ValidatePages(n); err != nil {
			t.Errorf("ValidatePages(%d) = %v", n, err)
		}
	}
	for _, n := range []int{0, -1, 21} {
		if !errors.Is(ValidatePages(n), ErrInvalidPages) {
			t.Errorf("ValidatePages(%d) expected ErrInvalidPages", n)
		}
	}
}

func TestNormalizeWebsite(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"example.com":           "https://example.com",
		"www.example.com/":      "https://www.example.com",
		"http://example.com//":  "http://example.com",
		" https://example.com ": "https://example.com",
	}
	for in, want := range testCases {
		if got := NormalizeWebsite(in); got != want {
			t.Errorf("NormalizeWebsite(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOutputFileName(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		company  string
		location string
		want     string
	}{
		{"Acme Ltd", "Leeds", "Acme_Ltd_Leeds_employees.xlsx"},
		{"Smith & Sons (UK)", "St John's", "Smith___Sons__UK__St_John_s_employees.xlsx"},
		{"Acme", "", "Acme_Location_employees.xlsx"},
	}
	for _, tc := range testCases {
		if got := OutputFileName(tc.company, tc.location); got != tc.want {
			t.Errorf("OutputFileName(%q, %q) = %q, want %q", tc.company, tc.location, got, tc.want)
		}
	}
}

func TestTitleCatalog(t *testing.T) {
	t.Parallel()

	catalog := TitleCatalog()
	if len(catalog) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(catalog))
	}
	if catalog[0].Name != "Executive/Leadership" {
		t.Errorf("first category = %q", catalog[0].Name)
	}

	catalog[0].Titles[0] = "changed"
	if TitleCatalog()[0].Titles[0] != "CEO" {
		t.Error("TitleCatalog must return a copy")
	}
}

func TestTitlesForCategories(t *testing.T) {
	t.Parallel()

	titles, invalid := TitlesForCategories([]int{6, 0, 9})
	if diff := cmp.Diff([]int{0, 9}, invalid); diff != "" {
		t.Errorf("invalid (-want +got):\n%s", diff)
	}
	if len(titles) != 9 || titles[0] != "Sales Manager" {
		t.Errorf("unexpected titles %v", titles)
	}

	all := AllCatalogTitles()
	seen := make(map[string]bool)
	for _, title := range all {
		if seen[title] {
			t.Errorf("duplicate title %q", title)
		}
		seen[title] = true
	}
}

func TestDedupTitles(t *testing.T) {
	t.Parallel()

	got := DedupTitles([]string{" CEO ", "ceo", "", "Director", "CFO", "Director"})
	if diff := cmp.Diff([]string{"CEO", "Director", "CFO"}, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}
