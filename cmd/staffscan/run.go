package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/database"
	"github.com/nao1215/staffscan/internal/extract"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/pipeline"
	"github.com/nao1215/staffscan/internal/report"
	"github.com/nao1215/staffscan/internal/review"
	"github.com/nao1215/staffscan/internal/transport"
)

// errOutputWithManyCompanies is returned when --output names one file for several companies.
var errOutputWithManyCompanies = errors.New("--output names a single workbook; use --output-dir when running several companies")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [company...]",
		Short: "Discover employees of one or more companies",
		Long: `Run builds an employee directory for each company.

Inputs are combined in this order:
- existing record files (--records), which win over new findings
- LinkedIn X-ray search exports (--hits), JSON or CSV
- the company website (--website), crawled breadth-first

Names are extracted with confidence tiers, deduplicated, optionally
validated against name lists and reviewed, then written to an Excel
workbook and saved to the local history.

Company settings can come from the configuration file (see 'staffscan init').
Flags always win over the file.

Examples:
  # Crawl a website and import a LinkedIn export
  staffscan run "Acme Lettings" -l Leeds -w acme-lettings.example --hits acme.json

  # Search a few title categories and also write Markdown and JSON
  staffscan run "Acme Lettings" --categories 1,6 -m -j

  # Run every company in the configuration file, three at a time
  staffscan run --all --batch 3

  # Route website traffic through Tor
  staffscan run "Acme Lettings" --tor`,
		Args: cobra.ArbitraryArgs,
		RunE: runRunCmd,
	}

	// Company
	cmd.Flags().StringP("location", "l", "", "Company location used in queries and records")
	cmd.Flags().StringP("website", "w", "", "Company website to crawl (e.g. www.example.com)")
	cmd.Flags().StringSlice("titles", nil, "Job titles to search for (comma separated)")
	cmd.Flags().IntSlice("categories", nil, "Job title catalog categories to search for (see 'staffscan titles')")
	cmd.Flags().Bool("all", false, "Run every company in the configuration file")

	// Inputs
	cmd.Flags().StringSlice("hits", nil, "X-ray search export files (JSON or CSV)")
	cmd.Flags().StringSliceP("records", "r", nil, "Existing employee record files to merge")

	// Crawl
	cmd.Flags().IntP("pages", "p", config.DefaultPagesToScrape, "Number of website pages to crawl (1-20)")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth, "Maximum crawl depth")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay, "Delay between website requests")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout, "Timeout for each request")
	cmd.Flags().String("user-agent", config.DefaultUserAgent, "User-Agent for website requests")

	// Transport
	cmd.Flags().String("proxy", "", "Route website traffic through a SOCKS5 proxy (e.g. 127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false, "Start an embedded Tor daemon and route website traffic through it")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout, "Timeout for embedded Tor startup")

	// Processing
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of companies processed concurrently")
	cmd.Flags().Bool("validate", true, "Validate names against name lists and learned exceptions")
	cmd.Flags().Bool("verify", false, "Check that profile links are reachable")
	cmd.Flags().Int("verify-retries", config.DefaultVerifyRetries, "Retries for each link check")
	cmd.Flags().Float64("similarity", config.DefaultSimilarityThreshold, "Threshold for reporting near-duplicate names (0-1]")
	cmd.Flags().Bool("review", false, "Review the roster by confidence tier before saving (terminal only)")
	cmd.Flags().Bool("review-medium", false, "Also review medium confidence records")
	cmd.Flags().Bool("review-high", false, "Also review high confidence records")

	// Output
	cmd.Flags().StringP("output", "o", "", "Excel workbook path (default: <Company>_<Location>_employees.xlsx)")
	cmd.Flags().String("output-dir", "", "Directory for report files")
	cmd.Flags().BoolP("markdown", "m", false, "Also write a Markdown report next to the workbook")
	cmd.Flags().BoolP("json", "j", false, "Also write a JSON report next to the workbook")
	cmd.Flags().Bool("no-db", false, "Do not save the run to the history database")
	cmd.Flags().StringP("config", "c", "", "Configuration file path (default: .staffscan in current or home directory)")

	return cmd
}

// runOptions are the flags that are not part of a company's Config.
type runOptions struct {
	all          bool
	categories   []int
	outputDir    string
	markdown     bool
	json         bool
	reviewRoster bool
}

func runRunCmd(cmd *cobra.Command, args []string) error {
	base, opts, err := buildBaseConfig(cmd)
	if err != nil {
		return err
	}

	file, err := loadConfigFile(base.ConfigFilePath)
	if err != nil {
		return err
	}

	companies := args
	if opts.all {
		companies = append(companies, file.CompanyNames()...)
	}
	if len(companies) == 0 && file.CompanyName != "" {
		companies = []string{file.CompanyName}
	}
	if len(companies) == 0 {
		return fmt.Errorf("configuration error: %w", config.ErrNoCompany)
	}

	cfgs, err := companyConfigs(base, opts, file, dedupCompanies(companies))
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	ctx, cancel := signalContext(logger)
	defer cancel()

	return executeRuns(ctx, cmd, cfgs, opts, logger)
}

// buildBaseConfig reads the flags shared by every company.
func buildBaseConfig(cmd *cobra.Command) (*config.Config, runOptions, error) {
	cfg := config.NewConfig()
	var opts runOptions
	fr := &flagReader{flags: cmd.Flags()}
	cfg.Location = fr.string("location")
	cfg.Website = fr.string("website")
	cfg.JobTitles = fr.stringSlice("titles")
	opts.categories = fr.intSlice("categories")
	opts.all = fr.bool("all")
	cfg.HitFiles = fr.stringSlice("hits")
	cfg.RecordFiles = fr.stringSlice("records")
	cfg.PagesToScrape = fr.int("pages")
	cfg.CrawlDepth = fr.int("depth")
	cfg.CrawlDelay = fr.duration("delay")
	cfg.Timeout = fr.duration("timeout")
	cfg.UserAgent = fr.string("user-agent")
	cfg.ProxyAddress = fr.string("proxy")
	cfg.UseTor = fr.bool("tor")
	cfg.TorStartupTimeout = fr.duration("tor-timeout")
	cfg.BatchSize = fr.int("batch")
	cfg.ValidateNames = fr.bool("validate")
	cfg.VerifyLinks = fr.bool("verify")
	cfg.VerifyRetries = fr.int("verify-retries")
	cfg.SimilarityThreshold = fr.float64("similarity")
	opts.reviewRoster = fr.bool("review")
	cfg.ReviewMedium = fr.bool("review-medium")
	cfg.ReviewHigh = fr.bool("review-high")
	cfg.OutputFile = fr.string("output")
	opts.outputDir = fr.string("output-dir")
	opts.markdown = fr.bool("markdown")
	opts.json = fr.bool("json")
	cfg.ConfigFilePath = fr.string("config")
	noDB := fr.bool("no-db")
	if fr.err != nil {
		return nil, opts, fr.err
	}
	for _, name := range []string{config.OptionPages, config.OptionDepth} {
		if cmd.Flags().Changed(name) {
			cfg.MarkExplicit(name)
		}
	}

	if !noDB {
		cfg.SaveToDB = true
		cfg.DBDir = dataDir(cmd)
	}
	cfg.Verbose = getVerboseFlag(cmd)

	if cfg.Website != "" {
		cfg.Website = config.NormalizeWebsite(cfg.Website)
	}
	if len(opts.categories) > 0 {
		titles, invalid := config.TitlesForCategories(opts.categories)
		if len(invalid) > 0 {
			return nil, opts, fmt.Errorf("unknown job title categories %v (see 'staffscan titles')", invalid)
		}
		cfg.JobTitles = append(cfg.JobTitles, titles...)
	}
	cfg.JobTitles = config.DedupTitles(cfg.JobTitles)

	if cfg.ReviewMedium || cfg.ReviewHigh {
		opts.reviewRoster = true
	}
	return cfg, opts, nil
}

// companyConfigs derives one validated Config per company from the shared
// flags and the company's profile.
func companyConfigs(base *config.Config, opts runOptions, file *config.File, companies []string) ([]*config.Config, error) {
	if base.OutputFile != "" && len(companies) > 1 {
		return nil, errOutputWithManyCompanies
	}

	cfgs := make([]*config.Config, 0, len(companies))
	for _, company := range companies {
		cfg := *base
		cfg.Company = strings.TrimSpace(company)
		cfg.JobTitles = append([]string(nil), base.JobTitles...)
		cfg.HitFiles = append([]string(nil), base.HitFiles...)
		cfg.RecordFiles = append([]string(nil), base.RecordFiles...)

		profile, err := file.GetProfile(cfg.Company)
		if err != nil {
			return nil, err
		}
		cfg.ApplyProfile(profile)

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration error for %q: %w", cfg.Company, err)
		}

		if cfg.OutputFile == "" {
			cfg.OutputFile = config.OutputFileName(cfg.Company, cfg.Location)
		}
		if opts.outputDir != "" && !filepath.IsAbs(cfg.OutputFile) {
			cfg.OutputFile = filepath.Join(opts.outputDir, cfg.OutputFile)
		}
		stem := strings.TrimSuffix(cfg.OutputFile, filepath.Ext(cfg.OutputFile))
		if opts.markdown {
			cfg.MarkdownFile = stem + ".md"
		}
		if opts.json {
			cfg.JSONFile = stem + ".json"
		}
		cfgs = append(cfgs, &cfg)
	}
	return cfgs, nil
}

// dedupCompanies drops repeated company names, ignoring case.
func dedupCompanies(companies []string) []string {
	seen := make(map[string]bool, len(companies))
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		key := strings.ToLower(strings.TrimSpace(c))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}

// executeRuns sets up transport and storage, then runs every company.
func executeRuns(ctx context.Context, cmd *cobra.Command, cfgs []*config.Config, opts runOptions, logger *slog.Logger) error {
	first := cfgs[0]
	out := cmd.OutOrStdout()

	logger.Info("starting run",
		"companies", len(cfgs),
		"batch_size", first.BatchSize,
		"use_tor", first.UseTor,
		"proxy", first.ProxyAddress,
		"save_to_db", first.SaveToDB,
	)

	var store *database.Store
	if first.SaveToDB {
		var err error
		store, err = database.Open(first.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()
		logger.Info("database opened", "path", store.Path())
	}

	factory, stop, err := newClientFactory(ctx, first, out, logger)
	if err != nil {
		return err
	}
	defer stop()

	r := &runner{
		cfgs:        cfgs,
		clients:     factory,
		store:       store,
		detector:    extract.NewLinguaDetector(),
		out:         out,
		logger:      logger,
		interactive: review.IsInteractive(cmd.InOrStdin()),
		in:          cmd.InOrStdin(),
		reviewOpts:  review.Options{ReviewHigh: first.ReviewHigh, ReviewMedium: first.ReviewMedium},
		reviewTiers: opts.reviewRoster,
	}

	if len(cfgs) > 1 && first.BatchSize > 1 {
		return r.runBatch(ctx)
	}
	return r.runSequential(ctx)
}

// clientFactory builds the HTTP client for a company's website traffic.
type clientFactory func(cfg *config.Config) (*transport.Client, error)

// newClientFactory prepares the transport: direct, a SOCKS5 proxy, or an
// embedded Tor daemon. The returned stop func releases the daemon.
func newClientFactory(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) (clientFactory, func(), error) {
	noop := func() {}

	switch {
	case cfg.UseTor:
		fmt.Fprintln(out, "Starting embedded Tor daemon...")
		fmt.Fprintf(out, "This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

		tor := transport.NewEmbeddedTor(transport.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := tor.Start(ctx); err != nil {
			return nil, noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		logger.Info("embedded Tor daemon started", "socks_addr", tor.SocksAddr())
		stop := func() {
			logger.Info("stopping embedded Tor daemon...")
			if err := tor.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}

		probe, err := tor.NewClient(transport.WithTimeout(cfg.Timeout))
		if err != nil {
			stop()
			return nil, noop, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := probe.CheckConnection(ctx); status != transport.ProxyStatusOK {
			stop()
			return nil, noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Err())
		}
		return func(c *config.Config) (*transport.Client, error) {
			return tor.NewClient(clientOptions(c)...)
		}, stop, nil

	case cfg.ProxyAddress != "":
		probe, err := transport.NewSOCKS5(cfg.ProxyAddress, transport.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create proxy client: %w", err)
		}
		if status := probe.CheckConnection(ctx); status != transport.ProxyStatusOK {
			return nil, noop, fmt.Errorf("proxy check failed at %s: %w", cfg.ProxyAddress, status.Err())
		}
		logger.Info("proxy connection verified", "address", probe.ProxyAddress())
		return func(c *config.Config) (*transport.Client, error) {
			return transport.NewSOCKS5(c.ProxyAddress, clientOptions(c)...)
		}, noop, nil

	default:
		return func(c *config.Config) (*transport.Client, error) {
			return transport.NewDirect(clientOptions(c)...), nil
		}, noop, nil
	}
}

func clientOptions(cfg *config.Config) []transport.Option {
	opts := []transport.Option{
		transport.WithTimeout(cfg.Timeout),
		transport.WithUserAgent(cfg.UserAgent),
	}
	if cfg.Profile.Cookie != "" {
		opts = append(opts, transport.WithCookie(cfg.Profile.Cookie))
	}
	if len(cfg.Profile.Headers) > 0 {
		opts = append(opts, transport.WithHeaders(cfg.Profile.Headers))
	}
	return opts
}

// runner executes the pipeline for each configured company.
type runner struct {
	cfgs     []*config.Config
	clients  clientFactory
	store    *database.Store
	detector extract.LanguageDetector
	out      io.Writer
	logger   *slog.Logger

	// interactive is true when stdin is a terminal.
	interactive bool
	in          io.Reader
	reviewOpts  review.Options
	reviewTiers bool
}

// pipelineFor builds the pipeline of one company. Prompts are only wired
// when prompt is true.
func (r *runner) pipelineFor(cfg *config.Config, prompt bool) (*pipeline.Pipeline, error) {
	client, err := r.clients(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	opts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineLogger(r.logger),
		pipeline.WithPipelineLanguageDetector(r.detector),
		pipeline.WithPipelineReports(runSourceLabel(cfg), reportPaths(cfg)...),
	}
	if r.store != nil {
		opts = append(opts, pipeline.WithPipelineStore(r.store))
	}
	if prompt && r.interactive {
		reviewer := review.NewReviewer(r.in, r.out)
		opts = append(opts, pipeline.WithPipelineDecider(reviewer))
		if r.reviewTiers {
			opts = append(opts, pipeline.WithPipelineReviewer(reviewer, r.reviewOpts))
		}
	}

	pipelineOpts := []pipeline.Option{pipeline.WithContinueOnError(true)}
	return pipeline.DefaultPipeline(cfg, client.HTTPClient(), pipelineOpts, opts...), nil
}

func (r *runner) runSequential(ctx context.Context) error {
	var errs []error
	for _, cfg := range r.cfgs {
		if err := ctx.Err(); err != nil {
			return err
		}

		p, err := r.pipelineFor(cfg, true)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		run := pipeline.NewRun(targetFor(cfg))
		fmt.Fprintf(r.out, "Running %s...\n", cfg.Company)
		start := time.Now()
		if err := p.Execute(ctx, run); err != nil {
			r.logger.Error("run failed", "company", cfg.Company, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", cfg.Company, err))
		}
		fmt.Fprintf(r.out, "Completed in %s\n\n", time.Since(start).Round(time.Millisecond))
		r.printRun(cfg, run)
	}
	return errors.Join(errs...)
}

// runBatch runs companies concurrently. Prompts would interleave, so
// uncertain names are kept and tier review is skipped.
func (r *runner) runBatch(ctx context.Context) error {
	byCompany := make(map[string]*config.Config, len(r.cfgs))
	targets := make([]pipeline.Target, 0, len(r.cfgs))
	for _, cfg := range r.cfgs {
		byCompany[cfg.Company] = cfg
		targets = append(targets, targetFor(cfg))
	}

	batchSize := r.cfgs[0].BatchSize
	fmt.Fprintf(r.out, "Starting batch run of %d companies (concurrency: %d)...\n\n", len(targets), batchSize)
	if r.interactive && r.reviewTiers {
		fmt.Fprintln(r.out, "Warning: review is disabled in batch mode. Use --batch 1 to review each company.")
	}

	var mu sync.Mutex
	var clientErrs []error
	bp := pipeline.NewBatchProcessor(
		func(t pipeline.Target) *pipeline.Pipeline {
			cfg := byCompany[t.Company]
			p, err := r.pipelineFor(cfg, false)
			if err != nil {
				mu.Lock()
				clientErrs = append(clientErrs, fmt.Errorf("%s: %w", t.Company, err))
				mu.Unlock()
				return pipeline.New(pipeline.WithLogger(r.logger))
			}
			return p
		},
		pipeline.WithConcurrency(batchSize),
		pipeline.WithBatchLogger(r.logger),
	)

	start := time.Now()
	err := bp.ProcessBatchWithCallback(ctx, targets, func(run *model.Run, index int) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(r.out, "[%d/%d] Completed: %s\n", index+1, len(targets), run.Company)
		r.printRun(byCompany[run.Company], run)
	})
	fmt.Fprintf(r.out, "\nBatch run completed in %s\n", time.Since(start).Round(time.Millisecond))

	return errors.Join(append(clientErrs, err)...)
}

// printRun shows the roster table and where the reports went.
func (r *runner) printRun(cfg *config.Config, run *model.Run) {
	if _, err := report.NewTableWriter(r.out).Write(run.Roster(runSourceLabel(cfg))); err != nil {
		r.logger.Error("failed to print roster", "company", run.Company, "error", err)
	}
	fmt.Fprintln(r.out)
	for _, msg := range run.Errors {
		fmt.Fprintf(r.out, "  error: %s\n", msg)
	}
	if len(run.Rejected) > 0 {
		fmt.Fprintf(r.out, "  %d records were rejected by validation or review\n", len(run.Rejected))
	}
	for _, path := range reportPaths(cfg) {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(r.out, "  report: %s\n", path)
		}
	}
	if run.TimedOut {
		fmt.Fprintln(r.out, "  the run was interrupted; results are partial")
	}
	fmt.Fprintln(r.out)
}

func targetFor(cfg *config.Config) pipeline.Target {
	return pipeline.Target{
		Company:      cfg.Company,
		Location:     cfg.Location,
		Website:      cfg.Website,
		SearchTitles:  cfg.SearchTitles(),
		ScoringTitles: cfg.JobTitles,
	}
}

func reportPaths(cfg *config.Config) []string {
	var paths []string
	for _, p := range []string{cfg.OutputFile, cfg.MarkdownFile, cfg.JSONFile} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// runSourceLabel describes the inputs of a run for the report header.
func runSourceLabel(cfg *config.Config) string {
	var parts []string
	if cfg.Website != "" {
		parts = append(parts, cfg.Website)
	}
	for _, f := range cfg.HitFiles {
		parts = append(parts, filepath.Base(f))
	}
	for _, f := range cfg.RecordFiles {
		parts = append(parts, filepath.Base(f))
	}
	return strings.Join(parts, ", ")
}

// flagReader reads flags and keeps the first lookup error.
type flagReader struct {
	flags *pflag.FlagSet
	err   error
}

func (r *flagReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *flagReader) string(name string) string {
	v, err := r.flags.GetString(name)
	r.keep(err)
	return v
}

func (r *flagReader) stringSlice(name string) []string {
	v, err := r.flags.GetStringSlice(name)
	r.keep(err)
	return v
}

func (r *flagReader) intSlice(name string) []int {
	v, err := r.flags.GetIntSlice(name)
	r.keep(err)
	return v
}

func (r *flagReader) bool(name string) bool {
	v, err := r.flags.GetBool(name)
	r.keep(err)
	return v
}

func (r *flagReader) int(name string) int {
	v, err := r.flags.GetInt(name)
	r.keep(err)
	return v
}

func (r *flagReader) duration(name string) time.Duration {
	v, err := r.flags.GetDuration(name)
	r.keep(err)
	return v
}

func (r *flagReader) float64(name string) float64 {
	v, err := r.flags.GetFloat64(name)
	r.keep(err)
	return v
}
