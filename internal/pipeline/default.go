package pipeline

import (
	"log/slog"
	"net/http"

	"github.com/nao1215/staffscan/internal/config"
	"github.com/nao1215/staffscan/internal/crawler"
	"github.com/nao1215/staffscan/internal/extract"
	"github.com/nao1215/staffscan/internal/review"
	"github.com/nao1215/staffscan/internal/validator"
	"github.com/nao1215/staffscan/internal/verify"
)

// Store is what the default pipeline needs from persistence.
type Store interface {
	ExceptionStore
	RunStore
}

// DefaultPipelineConfig holds the collaborators of the default pipeline.
type DefaultPipelineConfig struct {
	// VerifyClient checks profile links. It defaults to the crawl client.
	VerifyClient *http.Client

	// Store enables exception loading and run persistence when set.
	Store Store

	// Decider reviews uncertain names. Nil keeps them.
	Decider validator.Decider

	// ReportPaths are the report files written at the end of the run.
	ReportPaths []string

	// SourceLabel is shown in reports as the data source.
	SourceLabel string

	// Detector gates page text patterns by language. Nil disables the gate.
	Detector extract.LanguageDetector

	// Reviewer offers the final roster to an operator by confidence tier.
	Reviewer      TierReviewer
	ReviewOptions review.Options

	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineVerifyClient sets the client used for link verification.
func WithPipelineVerifyClient(client *http.Client) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.VerifyClient = client
	}
}

// WithPipelineStore enables persistence.
func WithPipelineStore(store Store) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// WithPipelineDecider sets the reviewer for uncertain names.
func WithPipelineDecider(d validator.Decider) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Decider = d
	}
}

// WithPipelineReports sets the report files and the source label shown in them.
func WithPipelineReports(sourceLabel string, paths ...string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SourceLabel = sourceLabel
		c.ReportPaths = append(c.ReportPaths, paths...)
	}
}

// WithPipelineLanguageDetector sets the language gate for page text.
func WithPipelineLanguageDetector(d extract.LanguageDetector) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Detector = d
	}
}

// WithPipelineReviewer adds an interactive tier review before persistence.
func WithPipelineReviewer(r TierReviewer, opts review.Options) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Reviewer = r
		c.ReviewOptions = opts
	}
}

// WithPipelineLogger sets the logger handed to every step.
func WithPipelineLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline builds the standard run for cfg:
// import, crawl, extract, image metadata, merge, then validate, verify,
// review, persist and report when enabled. client carries website traffic and may
// be proxied.
func DefaultPipeline(cfg *config.Config, client *http.Client, pipelineOpts []Option, opts ...DefaultPipelineOption) *Pipeline {
	dc := &DefaultPipelineConfig{}
	for _, opt := range opts {
		opt(dc)
	}
	logger := dc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	verifyClient := dc.VerifyClient
	if verifyClient == nil {
		verifyClient = client
	}

	p := New(append([]Option{WithLogger(logger)}, pipelineOpts...)...)

	p.AddStep(NewImportStep(cfg.HitFiles, cfg.RecordFiles, logger))
	if cfg.Website != "" {
		p.AddStep(NewCrawlStep(client, logger,
			crawler.WithMaxDepth(cfg.CrawlDepth),
			crawler.WithMaxPages(cfg.PagesToScrape),
			crawler.WithDelay(cfg.CrawlDelay),
			crawler.WithSpiderUserAgent(cfg.UserAgent),
			crawler.WithSpiderMaxBodySize(cfg.MaxBodySize),
			crawler.WithIgnorePatterns(cfg.Profile.IgnorePatterns),
			crawler.WithFollowPatterns(cfg.Profile.FollowPatterns),
		))
	}

	extractOpts := []ExtractStepOption{WithExtractLogger(logger)}
	if dc.Detector != nil {
		extractOpts = append(extractOpts, WithExtractLanguageDetector(dc.Detector))
	}
	p.AddStep(NewExtractStep(extractOpts...))

	if cfg.Website != "" {
		p.AddStep(NewImageMetadataStep(crawler.NewImageScanner(client, crawler.WithImageLogger(logger)), logger))
	}
	p.AddStep(NewMergeStep(cfg.SimilarityThreshold, logger))

	if cfg.ValidateNames {
		validateOpts := []ValidateStepOption{
			WithValidateLogger(logger),
			WithValidatorOptions(
				validator.WithExtraFirstNames(cfg.Profile.ExtraFirstNames...),
				validator.WithExtraLastNames(cfg.Profile.ExtraLastNames...),
				validator.WithFalsePositives(cfg.Profile.ExtraFalsePositives...),
			),
		}
		if dc.Store != nil {
			validateOpts = append(validateOpts, WithExceptionStore(dc.Store))
		}
		if dc.Decider != nil {
			validateOpts = append(validateOpts, WithDecider(dc.Decider))
		}
		p.AddStep(NewValidateStep(validateOpts...))
	}

	if cfg.VerifyLinks {
		p.AddStep(NewVerifyStep(verify.New(verifyClient,
			verify.WithRetries(cfg.VerifyRetries),
			verify.WithTimeout(cfg.Timeout),
			verify.WithUserAgent(cfg.UserAgent),
			verify.WithLogger(logger),
		), logger))
	}

	if dc.Reviewer != nil {
		p.AddStep(NewReviewStep(dc.Reviewer, dc.ReviewOptions, logger))
	}
	if dc.Store != nil {
		p.AddStep(NewPersistStep(dc.Store, logger))
	}
	if len(dc.ReportPaths) > 0 {
		p.AddStep(NewReportStep(dc.ReportPaths, dc.SourceLabel, logger))
	}
	return p
}
