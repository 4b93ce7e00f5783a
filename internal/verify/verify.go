// Package verify checks the profile and source links of employee records.
//
// LinkedIn member profiles (linkedin.com/in/) are never fetched. They are
// marked for manual review. Every other http(s) link, LinkedIn company
// pages included, gets a HEAD request, retried on transport errors and on
// 429 and 5xx answers.
package verify

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/staffscan/internal/model"
)

// Defaults for a Verifier.
const (
	DefaultRetries     = 2
	DefaultConcurrency = 4
)

// Summary counts records per verification status.
type Summary struct {
	Reachable    int
	Unreachable  int
	ManualReview int
	NoLink       int
}

// Total returns the number of records verified.
func (s Summary) Total() int {
	return s.Reachable + s.Unreachable + s.ManualReview + s.NoLink
}

func (s *Summary) add(status string) {
	switch status {
	case model.VerificationReachable:
		s.Reachable++
	case model.VerificationUnreachable:
		s.Unreachable++
	case model.VerificationManualReview:
		s.ManualReview++
	case model.VerificationNoLink:
		s.NoLink++
	}
}

// Verifier checks links with a resty client.
type Verifier struct {
	client      *resty.Client
	concurrency int
	now         func() time.Time
	logger      *slog.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRetries sets how many times a failed check is retried.
func WithRetries(n int) Option {
	return func(v *Verifier) {
		if n >= 0 {
			v.client.SetRetryCount(n)
		}
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(v *Verifier) {
		v.client.SetRetryWaitTime(minWait).SetRetryMaxWaitTime(maxWait)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		v.client.SetTimeout(d)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(v *Verifier) {
		if ua != "" {
			v.client.SetHeader("User-Agent", ua)
		}
	}
}

// WithConcurrency sets how many links are checked at once.
func WithConcurrency(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithClock sets the clock used for verification dates.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

// New returns a Verifier sending requests through hc. A nil hc uses a
// default client.
func New(hc *http.Client, opts ...Option) *Verifier {
	var client *resty.Client
	if hc != nil {
		client = resty.NewWithClient(hc)
	} else {
		client = resty.New()
	}
	client.
		SetRetryCount(DefaultRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			code := resp.StatusCode()
			return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
		})

	v := &Verifier{
		client:      client,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Check returns the verification status of one link.
func (v *Verifier) Check(ctx context.Context, link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return model.VerificationNoLink
	}
	if model.IsLinkedInProfileURL(link) {
		return model.VerificationManualReview
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.VerificationUnreachable
	}

	resp, err := v.client.R().SetContext(ctx).Head(link)
	if err != nil {
		v.logger.Debug("link check failed", "link", link, "error", err)
		return model.VerificationUnreachable
	}
	if resp.StatusCode() < http.StatusBadRequest {
		return model.VerificationReachable
	}
	v.logger.Debug("link check answered with error status", "link", link, "status", resp.StatusCode())
	return model.VerificationUnreachable
}

// Verify checks every record's link and returns updated copies. Records
// that need a human look get NeedsVerification. Every record is stamped
// with the same verification date. Cancellation marks the unchecked
// records unreachable and returns ctx's error.
func (v *Verifier) Verify(ctx context.Context, records []model.Employee) ([]model.Employee, Summary, error) {
	out := make([]model.Employee, len(records))
	copy(out, records)
	now := v.now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for i := range out {
		g.Go(func() error {
			status := v.Check(gctx, out[i].Link)
			out[i].VerificationStatus = status
			stamp := now
			out[i].VerificationDate = &stamp
			if status == model.VerificationManualReview || status == model.VerificationUnreachable {
				out[i].NeedsVerification = true
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // checks never return errors

	var summary Summary
	for _, e := range out {
		summary.add(e.VerificationStatus)
	}
	v.logger.Info("links verified",
		"reachable", summary.Reachable,
		"unreachable", summary.Unreachable,
		"manual_review", summary.ManualReview,
		"no_link", summary.NoLink)
	return out, summary, ctx.Err()
}
