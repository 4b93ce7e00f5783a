package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/crawler"
	"github.com/nao1215/staffscan/internal/database"
	"github.com/nao1215/staffscan/internal/extract"
	"github.com/nao1215/staffscan/internal/merge"
	"github.com/nao1215/staffscan/internal/model"
	"github.com/nao1215/staffscan/internal/report"
	"github.com/nao1215/staffscan/internal/review"
	"github.com/nao1215/staffscan/internal/validator"
	"github.com/nao1215/staffscan/internal/verify"
)

// ExceptionStore loads and saves name validation overrides.
type ExceptionStore interface {
	LoadExceptions(ctx context.Context) (*validator.Exceptions, error)
	SaveExceptions(ctx context.Context, exceptions []model.NameException) error
}

// RunStore persists finished runs and their rosters.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.Run) error
	UpsertEmployees(ctx context.Context, company, runID string, employees []model.Employee) (database.UpsertResult, error)
}

// ImportStep loads X-ray hit files into Run.Hits and record files into
// Run.Imported. Files that fail to load are reported together after the
// others are read.
//
// Design decision: importing is the first step and never fetches anything.
// Search results are exported by the operator from their own search tool,
// so a run without a website works entirely offline.
type ImportStep struct {
	hitFiles    []string
	recordFiles []string
	logger      *slog.Logger
}

// NewImportStep creates an import step.
func NewImportStep(hitFiles, recordFiles []string, logger *slog.Logger) *ImportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportStep{hitFiles: hitFiles, recordFiles: recordFiles, logger: logger}
}

// Name returns the step name.
func (s *ImportStep) Name() string {
	return "import"
}

// Do executes the import step.
func (s *ImportStep) Do(_ context.Context, run *model.Run) error {
	var errs []error
	for _, path := range s.hitFiles {
		hits, err := merge.LoadHitFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		run.Hits = append(run.Hits, hits...)
		s.logger.Info("loaded search hits", "file", path, "count", len(hits))
	}
	for _, path := range s.recordFiles {
		records, err := merge.LoadRecordFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		run.Imported = append(run.Imported, records...)
		s.logger.Info("loaded records", "file", path, "count", len(records))
	}
	return errors.Join(errs...)
}

// CrawlStep crawls the run's website into Run.Pages.
//
// The crawl stays on the website's host and stops at the page budget. The
// HTTP client is injected so the same step runs direct, through a SOCKS5
// proxy or through the embedded Tor daemon. A crawl that yields no page at
// all is an error; a partial crawl is not.
type CrawlStep struct {
	client *http.Client
	opts   []crawler.SpiderOption
	logger *slog.Logger
}

// NewCrawlStep creates a crawl step. The spider options set depth, page
// budget and politeness.
func NewCrawlStep(client *http.Client, logger *slog.Logger, opts ...crawler.SpiderOption) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{client: client, opts: opts, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step. Runs without a website are skipped.
func (s *CrawlStep) Do(ctx context.Context, run *model.Run) error {
	if run.Website == "" {
		s.logger.Debug("skipping crawl, no website configured", "company", run.Company)
		return nil
	}

	opts := append([]crawler.SpiderOption{crawler.WithSpiderLogger(s.logger)}, s.opts...)
	spider := crawler.NewSpider(s.client, opts...)
	pages, err := spider.Crawl(ctx, run.Website)
	run.Pages = append(run.Pages, pages...)
	for _, page := range pages {
		run.Crawls[page.URL] = page.StatusCode
	}

	stats := spider.Stats()
	s.logger.Info("crawl completed",
		"company", run.Company,
		"pages_visited", stats.PagesVisited,
		"urls_seen", stats.URLsSeen,
	)
	if err != nil {
		return fmt.Errorf("failed to crawl %s: %w", run.Website, err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages could be fetched from %s", run.Website)
	}
	return nil
}

// ExtractStep turns search hits and crawled pages into Run.Candidates.
// LinkedIn profile hits come first, then other hits, then pages.
//
// Design decision: extraction is separate from merging. Every extractor
// emits raw candidates with their own confidence, and deciding which record
// wins for a name is left to MergeStep, which also sees imported records.
type ExtractStep struct {
	detector extract.LanguageDetector
	logger   *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractLanguageDetector gates page text patterns on English pages.
func WithExtractLanguageDetector(d extract.LanguageDetector) ExtractStepOption {
	return func(s *ExtractStep) {
		s.detector = d
	}
}

// WithExtractLogger sets the logger.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates an extract step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extract step. LinkedIn hits are scored against the
// operator's own titles only; the default title list would otherwise hand
// every "Manager" or "Director" hit the title bonus.
func (s *ExtractStep) Do(ctx context.Context, run *model.Run) error {
	titles := run.SearchTitles
	if len(titles) == 0 {
		titles = config.DefaultSearchTitles()
	}

	profiles := extract.NewProfileExtractor(run.Company, run.Location, run.ScoringTitles,
		extract.WithProfileLogger(s.logger))
	textOpts := []extract.TextOption{extract.WithTextLogger(s.logger)}
	if s.detector != nil {
		textOpts = append(textOpts, extract.WithLanguageDetector(s.detector))
	}
	text := extract.NewTextExtractor(run.Company, run.Location, titles, textOpts...)

	linkedIn := profiles.Extract(run.Hits)
	fromHits := text.ExtractHits(run.Hits)
	run.Candidates = append(run.Candidates, linkedIn...)
	run.Candidates = append(run.Candidates, fromHits...)

	fromPages := 0
	for _, page := range run.Pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		found := text.ExtractPage(page)
		fromPages += len(found)
		run.Candidates = append(run.Candidates, found...)
	}

	s.logger.Info("extraction completed",
		"company", run.Company,
		"linkedin", len(linkedIn),
		"hits", len(fromHits),
		"pages", fromPages,
	)
	return nil
}

// ImageMetadataStep adds people named in the EXIF tags of crawled images
// as low confidence candidates.
type ImageMetadataStep struct {
	scanner *crawler.ImageScanner
	logger  *slog.Logger
}

// NewImageMetadataStep creates an image metadata step.
func NewImageMetadataStep(scanner *crawler.ImageScanner, logger *slog.Logger) *ImageMetadataStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageMetadataStep{scanner: scanner, logger: logger}
}

// Name returns the step name.
func (s *ImageMetadataStep) Name() string {
	return "image_metadata"
}

// Do executes the image metadata step.
func (s *ImageMetadataStep) Do(ctx context.Context, run *model.Run) error {
	if len(run.Pages) == 0 {
		return nil
	}
	names, err := s.scanner.Scan(ctx, run.Pages)
	if err != nil {
		return fmt.Errorf("failed to scan images: %w", err)
	}

	text := extract.NewTextExtractor(run.Company, run.Location, run.SearchTitles,
		extract.WithTextLogger(s.logger))
	added := 0
	for _, n := range names {
		found := text.ExtractNames([]string{n.Name}, n.PageURL, model.SourceImageMetadata)
		added += len(found)
		run.Candidates = append(run.Candidates, found...)
	}
	s.logger.Info("image metadata scanned",
		"company", run.Company,
		"names", len(names),
		"candidates", added,
	)
	return nil
}

// MergeStep deduplicates imported records and candidates into
// Run.Employees. Imported records win over new candidates with the same
// key. Near duplicate names are logged for review.
type MergeStep struct {
	threshold float64
	logger    *slog.Logger
}

// NewMergeStep creates a merge step. threshold is the Jaro-Winkler score
// from which differently keyed names are logged as possible duplicates.
func NewMergeStep(threshold float64, logger *slog.Logger) *MergeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &MergeStep{threshold: threshold, logger: logger}
}

// Name returns the step name.
func (s *MergeStep) Name() string {
	return "merge"
}

// Do executes the merge step.
func (s *MergeStep) Do(_ context.Context, run *model.Run) error {
	m := merge.NewMerger(merge.Defaults{Company: run.Company, Location: run.Location},
		merge.WithLogger(s.logger))
	imported := m.Add(run.Imported...)
	added := m.Add(run.Candidates...)

	run.Employees = m.Sorted()
	run.Stats = merge.ComputeStats(run.Employees)

	for _, pair := range merge.FindSimilar(run.Employees, s.threshold) {
		s.logger.Warn("possible duplicate names",
			"a", pair.A.FullName(),
			"b", pair.B.FullName(),
			"score", fmt.Sprintf("%.3f", pair.Score),
		)
	}
	s.logger.Info("merge completed",
		"company", run.Company,
		"imported", imported,
		"new", added,
		"total", len(run.Employees),
	)
	return nil
}

// ValidateStep scores every name in Run.Employees, drops rejected names into
// Run.Rejected and resolves uncertain ones. Without a Decider uncertain
// names are kept. Operator decisions are saved to the exception store.
//
// Design decision: exceptions are consulted before scoring. A name the
// operator accepted once is accepted on every later run, and a rejected
// one never comes back, whatever the validator would say today.
type ValidateStep struct {
	store   ExceptionStore
	decider validator.Decider
	opts    []validator.Option
	logger  *slog.Logger
}

// ValidateStepOption configures a ValidateStep.
type ValidateStepOption func(*ValidateStep)

// WithExceptionStore loads overrides before validation and saves new ones after.
func WithExceptionStore(store ExceptionStore) ValidateStepOption {
	return func(s *ValidateStep) {
		s.store = store
	}
}

// WithDecider asks the operator about uncertain names.
func WithDecider(d validator.Decider) ValidateStepOption {
	return func(s *ValidateStep) {
		s.decider = d
	}
}

// WithValidatorOptions passes options such as extra name lists to the validator.
func WithValidatorOptions(opts ...validator.Option) ValidateStepOption {
	return func(s *ValidateStep) {
		s.opts = append(s.opts, opts...)
	}
}

// WithValidateLogger sets the logger.
func WithValidateLogger(logger *slog.Logger) ValidateStepOption {
	return func(s *ValidateStep) {
		s.logger = logger
	}
}

// NewValidateStep creates a validate step.
func NewValidateStep(opts ...ValidateStepOption) *ValidateStep {
	s := &ValidateStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do executes the validate step.
func (s *ValidateStep) Do(ctx context.Context, run *model.Run) error {
	opts := []validator.Option{validator.WithLocation(run.Location)}
	if s.store != nil {
		exceptions, err := s.store.LoadExceptions(ctx)
		if err != nil {
			return fmt.Errorf("failed to load name exceptions: %w", err)
		}
		opts = append(opts, validator.WithExceptions(exceptions))
	}
	v := validator.New(append(opts, s.opts...)...)

	outcome := v.ValidateAll(run.Employees)
	kept, dropped, resolveErr := v.Resolve(outcome.Uncertain, s.decider)

	employees := make([]model.Employee, 0, len(outcome.Accepted)+len(kept))
	employees = append(employees, outcome.Accepted...)
	employees = append(employees, kept...)
	merge.Sort(employees)

	run.Employees = employees
	run.Rejected = append(run.Rejected, outcome.Rejected...)
	run.Rejected = append(run.Rejected, dropped...)
	run.Stats = merge.ComputeStats(employees)
	run.Validated = true

	s.logger.Info("validation completed",
		"company", run.Company,
		"accepted", len(outcome.Accepted),
		"uncertain_kept", len(kept),
		"rejected", len(run.Rejected),
	)

	var saveErr error
	if changed := v.Exceptions().Changed(); s.store != nil && len(changed) > 0 {
		if err := s.store.SaveExceptions(ctx, changed); err != nil {
			saveErr = fmt.Errorf("failed to save name exceptions: %w", err)
		}
	}
	return errors.Join(resolveErr, saveErr)
}

// VerifyStep checks the profile links of Run.Employees.
//
// LinkedIn member profiles are marked for manual review and never fetched.
// Other links get a HEAD request with retries. The step is opt-in
// ('run --verify') because it sends one request per employee.
type VerifyStep struct {
	verifier *verify.Verifier
	logger   *slog.Logger
}

// NewVerifyStep creates a verify step.
func NewVerifyStep(verifier *verify.Verifier, logger *slog.Logger) *VerifyStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &VerifyStep{verifier: verifier, logger: logger}
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do executes the verify step. On cancellation the records keep their
// previous verification state.
func (s *VerifyStep) Do(ctx context.Context, run *model.Run) error {
	records, summary, err := s.verifier.Verify(ctx, run.Employees)
	if err != nil {
		return err
	}
	run.Employees = records
	s.logger.Info("verification completed",
		"company", run.Company,
		"reachable", summary.Reachable,
		"unreachable", summary.Unreachable,
		"manual_review", summary.ManualReview,
		"no_link", summary.NoLink,
	)
	return nil
}

// TierReviewer lets an operator keep or drop records by confidence tier.
type TierReviewer interface {
	Review(records []model.Employee, opts review.Options) ([]model.Employee, error)
}

// ReviewStep offers Run.Employees to an operator and keeps what they accept.
// Dropped records move to Run.Rejected.
type ReviewStep struct {
	reviewer TierReviewer
	opts     review.Options
	logger   *slog.Logger
}

// NewReviewStep creates a review step.
func NewReviewStep(reviewer TierReviewer, opts review.Options, logger *slog.Logger) *ReviewStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewStep{reviewer: reviewer, opts: opts, logger: logger}
}

// Name returns the step name.
func (s *ReviewStep) Name() string {
	return "review"
}

// Do executes the review step. On a review error the roster is left as it was.
func (s *ReviewStep) Do(_ context.Context, run *model.Run) error {
	kept, err := s.reviewer.Review(run.Employees, s.opts)
	if err != nil {
		return err
	}

	keptKeys := make(map[string]bool, len(kept))
	for _, e := range kept {
		keptKeys[e.Key()] = true
	}
	for _, e := range run.Employees {
		if !keptKeys[e.Key()] {
			run.Rejected = append(run.Rejected, e)
		}
	}

	merge.Sort(kept)
	run.Employees = kept
	run.Stats = merge.ComputeStats(kept)
	s.logger.Info("review completed", "company", run.Company, "kept", len(kept))
	return nil
}

// PersistStep saves the run and upserts its roster into the store.
//
// Design decision: persistence runs after validation and review, so the
// history only ever holds names an operator would have kept. Employees are
// upserted by company and name key, which keeps first-seen dates stable
// across runs.
type PersistStep struct {
	store  RunStore
	now    func() time.Time
	logger *slog.Logger
}

// NewPersistStep creates a persist step.
func NewPersistStep(store RunStore, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{store: store, now: time.Now, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, run *model.Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = s.now()
	}
	result, err := s.store.UpsertEmployees(ctx, run.Company, run.ID, run.Employees)
	if err != nil {
		return err
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		return err
	}
	s.logger.Info("run saved",
		"company", run.Company,
		"run_id", run.ID,
		"added", result.Added,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
	)
	return nil
}

// ReportStep writes the roster to report files. The format of each file
// follows its extension.
//
// A file that fails to write does not stop the others; the errors are
// joined and returned once every path was tried. The source label shown in
// the reports defaults to the run ID, which ties a file on disk back to its
// entry in 'staffscan history'.
type ReportStep struct {
	paths       []string
	sourceLabel string
	logger      *slog.Logger
}

// NewReportStep creates a report step. An empty sourceLabel is replaced by
// the run ID.
func NewReportStep(paths []string, sourceLabel string, logger *slog.Logger) *ReportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportStep{paths: paths, sourceLabel: sourceLabel, logger: logger}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, run *model.Run) error {
	label := s.sourceLabel
	if label == "" {
		label = "staffscan run " + run.ID
	}
	roster := run.Roster(label)

	var errs []error
	for _, path := range s.paths {
		if err := report.WriteFile(path, roster); err != nil {
			errs = append(errs, err)
			continue
		}
		s.logger.Info("report written", "company", run.Company, "file", path)
	}
	return errors.Join(errs...)
}
