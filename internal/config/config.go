package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "staffscan"

	// DefaultPagesToScrape is the default crawl page budget for the company website.
	DefaultPagesToScrape = 5

	// MinPagesToScrape and MaxPagesToScrape bound the page budget.
	MinPagesToScrape = 1
	MaxPagesToScrape = 20

	// DefaultTimeout is the per-request timeout for website and link checks.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth limits how many links away from the home page the crawler goes.
	DefaultCrawlDepth = 3

	// DefaultBatchSize is the number of companies processed concurrently.
	DefaultBatchSize = 4

	// DefaultCrawlDelay is the pause between website requests.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies staffscan in HTTP requests.
	DefaultUserAgent = "staffscan/1.0 (+https://github.com/nao1215/staffscan)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultSimilarityThreshold is the Jaro-Winkler score above which two
	// differently keyed names are reported as possible duplicates.
	DefaultSimilarityThreshold = 0.93

	// DefaultVerifyRetries is the retry count for link verification.
	DefaultVerifyRetries = 2
)

// Config holds the options of one staffscan run.
// It is populated from CLI flags and the config file, then passed down explicitly.
type Config struct {
	// Company is the target company name.
	Company string

	// Location is the company location used in queries and records.
	Location string

	// Website is the normalized company website. Empty disables crawling.
	Website string

	// JobTitles are the titles to search for. Empty means a general search.
	JobTitles []string

	// PagesToScrape is the crawl page budget for the website.
	PagesToScrape int

	// HitFiles are JSON or CSV exports of X-ray search results.
	HitFiles []string

	// RecordFiles are existing employee record files merged into the run.
	RecordFiles []string

	Timeout     time.Duration
	CrawlDepth  int
	CrawlDelay  time.Duration
	UserAgent   string
	MaxBodySize int64

	// ProxyAddress routes website traffic through a SOCKS5 proxy when set.
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and routes website traffic through it.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// BatchSize is the number of companies processed concurrently.
	BatchSize int

	// ValidateNames enables weighted name validation of the merged roster.
	ValidateNames bool

	// VerifyLinks enables the link verification step.
	VerifyLinks bool

	// VerifyRetries is the retry count for each link check.
	VerifyRetries int

	// ReviewMedium sends medium confidence records to interactive review.
	ReviewMedium bool

	// ReviewHigh sends high confidence records to interactive review.
	ReviewHigh bool

	// Interactive enables prompts. It is false when stdin is not a terminal.
	Interactive bool

	// SimilarityThreshold is the near-duplicate Jaro-Winkler threshold.
	SimilarityThreshold float64

	// OutputFile is the Excel workbook path.
	OutputFile string

	// MarkdownFile and JSONFile are optional additional report paths.
	MarkdownFile string
	JSONFile     string

	// DBDir is where the SQLite store lives. Empty disables persistence.
	DBDir string

	// SaveToDB is set when DBDir is configured.
	SaveToDB bool

	// ConfigFilePath is an explicit config file path.
	ConfigFilePath string

	// Profile is the merged company profile from the config file.
	Profile Profile

	// Explicit holds the options the operator set on the command line,
	// keyed by option name (OptionPages, OptionDepth). Profile values never
	// replace them, even when they equal the defaults.
	Explicit map[string]bool

	Verbose bool
}

// Option names recorded in Config.Explicit.
const (
	OptionPages = "pages"
	OptionDepth = "depth"
)

// MarkExplicit records options set on the command line.
func (c *Config) MarkExplicit(names ...string) {
	if c.Explicit == nil {
		c.Explicit = make(map[string]bool, len(names))
	}
	for _, n := range names {
		c.Explicit[n] = true
	}
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		PagesToScrape:       DefaultPagesToScrape,
		Timeout:             DefaultTimeout,
		CrawlDepth:          DefaultCrawlDepth,
		CrawlDelay:          DefaultCrawlDelay,
		UserAgent:           DefaultUserAgent,
		MaxBodySize:         DefaultMaxBodySize,
		TorStartupTimeout:   DefaultTorStartupTimeout,
		BatchSize:           DefaultBatchSize,
		VerifyRetries:       DefaultVerifyRetries,
		SimilarityThreshold: DefaultSimilarityThreshold,
	}
}

// XDGDataDir returns the XDG data directory for staffscan.
// On Linux: ~/.local/share/staffscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for staffscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for staffscan.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the run options and returns the first problem found.
func (c *Config) Validate() error {
	if c.Company == "" {
		return ErrNoCompany
	}
	if err := ValidateCompanyName(c.Company); err != nil {
		return err
	}
	if c.Location != "" {
		if err := ValidateLocation(c.Location); err != nil {
			return err
		}
	}
	if c.Website != "" {
		if err := ValidateWebsite(c.Website); err != nil {
			return err
		}
	}
	if err := ValidatePages(c.PagesToScrape); err != nil {
		return err
	}
	if c.Website == "" && len(c.HitFiles) == 0 && len(c.RecordFiles) == 0 {
		return ErrNoInput
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return ErrInvalidSimilarity
	}
	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingTransport
	}
	return nil
}

// ApplyProfile fills options the user left unset from a company profile.
// Flags always win over the profile.
func (c *Config) ApplyProfile(p Profile) {
	c.Profile = p
	if c.Location == "" {
		c.Location = p.Location
	}
	if c.Website == "" && p.Website != "" {
		c.Website = NormalizeWebsite(p.Website)
	}
	if len(c.JobTitles) == 0 {
		c.JobTitles = p.JobTitles
	}
	if !c.Explicit[OptionPages] && p.PagesToScrape != 0 {
		c.PagesToScrape = p.PagesToScrape
	}
	if !c.Explicit[OptionDepth] && p.Depth != 0 {
		c.CrawlDepth = p.Depth
	}
	if len(c.HitFiles) == 0 {
		c.HitFiles = p.HitFiles
	}
}

// SearchTitles returns the configured job titles, or the website default list when none are set.
func (c *Config) SearchTitles() []string {
	if len(c.JobTitles) > 0 {
		return c.JobTitles
	}
	return DefaultSearchTitles()
}
