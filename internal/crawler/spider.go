package crawler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/staffscan/internal/model"
)

// Spider crawls a company website breadth-first, staying on the start host.
type Spider struct {
	client *http.Client

	// maxDepth is how many links away from the start page the crawl goes.
	// 0 means only the start page.
	maxDepth int

	// maxPages is the page budget.
	maxPages int

	// delay is the pause between requests.
	delay time.Duration

	// userAgent is sent unless the client's transport sets one.
	userAgent string

	// maxBodySize caps each response body.
	maxBodySize int64

	// ignorePatterns are URL path globs to skip ("/careers/*", "*.pdf").
	ignorePatterns []string

	// followPatterns, when set, restrict the crawl to matching paths.
	// The start page is always fetched.
	followPatterns []string

	logger *slog.Logger

	visited   map[string]bool
	mutex     sync.Mutex
	pageCount int
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the page budget.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between requests.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithSpiderUserAgent sets the User-Agent header.
func WithSpiderUserAgent(ua string) SpiderOption {
	return func(s *Spider) {
		s.userAgent = ua
	}
}

// WithSpiderMaxBodySize sets the maximum response body size.
func WithSpiderMaxBodySize(size int64) SpiderOption {
	return func(s *Spider) {
		if size > 0 {
			s.maxBodySize = size
		}
	}
}

// WithIgnorePatterns sets URL path globs to skip.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithFollowPatterns restricts the crawl to URL paths matching at least one glob.
func WithFollowPatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.followPatterns = patterns
	}
}

// WithSpiderLogger sets the logger.
func WithSpiderLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider that fetches through client.
func NewSpider(client *http.Client, opts ...SpiderOption) *Spider {
	s := &Spider{
		client:      client,
		maxDepth:    3,
		maxPages:    5,
		delay:       1 * time.Second,
		maxBodySize: 10 * 1024 * 1024,
		logger:      slog.Default(),
		visited:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Crawl fetches pages starting at startURL until the queue empties, the
// page budget is spent or ctx is done. Pages that fail to load are logged
// and skipped. On cancellation the pages fetched so far are returned.
func (s *Spider) Crawl(ctx context.Context, startURL string) ([]*model.Page, error) {
	if !strings.Contains(startURL, "://") {
		startURL = "https://" + startURL
	}
	start, err := url.Parse(startURL)
	if err != nil || start.Host == "" {
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, ErrInvalidStartURL)
	}
	if start.Scheme != "http" && start.Scheme != "https" {
		start.Scheme = "https"
	}

	pages := make([]*model.Page, 0)
	queue := []queueItem{{url: start.String(), depth: 0}}

	for len(queue) > 0 && s.budgetLeft() {
		select {
		case <-ctx.Done():
			return pages, ctx.Err()
		default:
		}

		item := queue[0]
		queue = queue[1:]
		if s.isVisited(item.url) {
			continue
		}
		s.markVisited(item.url)

		page, links, err := s.fetchPage(ctx, item.url)
		if err != nil {
			s.logger.Warn("failed to fetch page", "url", item.url, "error", err)
			continue
		}
		pages = append(pages, page)
		// Error answers are kept for the record but do not spend the page budget.
		if page.StatusCode < http.StatusBadRequest {
			s.countPage()
		}
		s.logger.Debug("fetched page", "url", page.URL, "status", page.StatusCode, "links", len(links))

		if item.depth < s.maxDepth {
			for _, link := range links {
				if !s.isVisited(link) && isSameHost(start.Host, link) && s.shouldCrawl(link) {
					queue = append(queue, queueItem{url: link, depth: item.depth + 1})
				}
			}
		}

		if s.delay > 0 && len(queue) > 0 && s.budgetLeft() {
			select {
			case <-ctx.Done():
				return pages, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return pages, nil
}

type queueItem struct {
	url   string
	depth int
}

// fetchPage downloads a page and, for HTML, parses it. Links are only
// returned for successful HTML responses.
func (s *Spider) fetchPage(ctx context.Context, pageURL string) (*model.Page, []string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, nil, err
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
		Raw:         body,
	}
	page.ComputeHash()

	if resp.StatusCode >= http.StatusBadRequest || !page.IsHTML() {
		return page, nil, nil
	}

	parser, err := NewParser(pageURL)
	if err != nil {
		return page, nil, nil //nolint:nilerr // the page is kept without parsed content
	}
	result, err := parser.Parse(bytes.NewReader(body))
	if err != nil {
		s.logger.Debug("failed to parse page", "url", pageURL, "error", err)
		return page, nil, nil
	}
	page.Title = result.Title
	page.Text = result.Text
	page.Byline = result.Byline
	page.Links = result.Links
	page.Images = result.Images
	page.Team = result.Team
	page.TruncateText()
	return page, result.Links, nil
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}
	return mt
}

func (s *Spider) budgetLeft() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.pageCount < s.maxPages
}

func (s *Spider) countPage() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.pageCount++
}

func (s *Spider) isVisited(pageURL string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.visited[normalizeURL(pageURL)]
}

func (s *Spider) markVisited(pageURL string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited[normalizeURL(pageURL)] = true
}

// normalizeURL drops the fragment, lowercases scheme and host and maps
// an empty path to "/".
func normalizeURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	return u.String()
}

// isSameHost treats "www." and the bare domain as the same host.
func isSameHost(baseHost, targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	trim := func(h string) string {
		return strings.TrimPrefix(strings.ToLower(h), "www.")
	}
	return trim(u.Host) == trim(baseHost)
}

// Reset clears the visited set and page count so the spider can be reused.
func (s *Spider) Reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.visited = make(map[string]bool)
	s.pageCount = 0
}

// Stats returns current crawl statistics.
func (s *Spider) Stats() SpiderStats {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return SpiderStats{
		PagesVisited: s.pageCount,
		URLsSeen:     len(s.visited),
	}
}

// SpiderStats contains crawl statistics.
type SpiderStats struct {
	// PagesVisited is the number of pages fetched.
	PagesVisited int

	// URLsSeen is the number of unique URLs attempted.
	URLsSeen int
}

// shouldCrawl applies ignore patterns first, then follow patterns.
func (s *Spider) shouldCrawl(targetURL string) bool {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}
	if len(s.followPatterns) == 0 {
		return true
	}
	for _, pattern := range s.followPatterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

// matchPattern matches a URL path against a glob. "/team/*" also matches
// "/team" and anything below it, "*.pdf" matches by extension, and a
// pattern without "/" is tried against the last path segment.
func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	if ext, ok := strings.CutPrefix(pattern, "*."); ok && strings.HasSuffix(path, "."+ext) {
		return true
	}
	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}
	return false
}
