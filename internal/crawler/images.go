package crawler

import (
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	"golang.org/x/text/encoding/unicode"

	"github.com/nao1215/staffscan/internal/model"
)

// exifImagePattern matches image URLs in formats that carry EXIF.
var exifImagePattern = regexp.MustCompile(`(?i)\.(jpe?g|tiff?)(?:\?[^"'\s]*)?$`)

// artistNoise is stripped from Artist values ("Photo: Jane Smith", "© Jane Smith").
var artistNoise = regexp.MustCompile(`(?i)^(?:©|\(c\)|copyright\b|photo(?:graph)?\b(?:\s+by\b)?|image\b(?:\s+by\b)?|by\b)[\s:]*`)

// ImageName is a person named in an image's metadata.
type ImageName struct {
	Name     string
	ImageURL string
	PageURL  string
}

// ImageScanner reads author tags from images referenced by crawled pages.
// Only images on the page's own host and inline data URLs are read.
type ImageScanner struct {
	client       *http.Client
	maxImageSize int64
	logger       *slog.Logger
}

// ImageScannerOption configures an ImageScanner.
type ImageScannerOption func(*ImageScanner)

// WithMaxImageSize caps each image download.
func WithMaxImageSize(n int64) ImageScannerOption {
	return func(s *ImageScanner) {
		if n > 0 {
			s.maxImageSize = n
		}
	}
}

// WithImageLogger sets the logger.
func WithImageLogger(logger *slog.Logger) ImageScannerOption {
	return func(s *ImageScanner) {
		s.logger = logger
	}
}

// NewImageScanner returns a scanner that fetches images through client.
func NewImageScanner(client *http.Client, opts ...ImageScannerOption) *ImageScanner {
	s := &ImageScanner{
		client:       client,
		maxImageSize: 5 * 1024 * 1024,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns names found in the Artist and XPAuthor tags of the pages'
// images. Each image is read once even when several pages reference it.
func (s *ImageScanner) Scan(ctx context.Context, pages []*model.Page) ([]ImageName, error) {
	if s.client == nil {
		return nil, ErrNoHTTPClient
	}

	var names []ImageName
	processed := make(map[string]bool)
	for _, page := range pages {
		for _, img := range page.Images {
			if err := ctx.Err(); err != nil {
				return names, err
			}
			if processed[img] {
				continue
			}
			processed[img] = true

			var data []byte
			switch {
			case isEXIFDataURL(img):
				data = decodeDataURL(img)
			case exifImagePattern.MatchString(img) && sameHostURL(page.URL, img):
				data = s.fetch(ctx, img)
			default:
				continue
			}

			imageURL := img
			if strings.HasPrefix(img, "data:") {
				imageURL = "data:URL"
			}
			for _, name := range NamesFromEXIF(data) {
				names = append(names, ImageName{Name: name, ImageURL: imageURL, PageURL: page.URL})
			}
		}
	}
	return names, nil
}

func (s *ImageScanner) fetch(ctx context.Context, imageURL string) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("failed to fetch image", "url", imageURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest || resp.ContentLength > s.maxImageSize {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxImageSize))
	if err != nil {
		return nil
	}
	return data
}

// NamesFromEXIF returns the person names in the Artist and XPAuthor tags
// of an image. Images without EXIF yield nil.
func NamesFromEXIF(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return nil
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		var value string
		switch entry.TagName {
		case "Artist":
			if s, ok := entry.Value.(string); ok {
				value = s
			} else {
				value = entry.Formatted
			}
		case "XPAuthor":
			value = decodeXPString(entry.Value)
		default:
			continue
		}
		for _, name := range splitArtist(value) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// decodeXPString decodes the UTF-16LE byte strings Windows writes to XP* tags.
func decodeXPString(v any) string {
	b, ok := v.([]byte)
	if !ok {
		return ""
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(out), "\x00")
}

// splitArtist splits "Jane Smith; John Doe" into names and strips credit prefixes.
func splitArtist(value string) []string {
	var names []string
	for _, part := range strings.FieldsFunc(value, func(r rune) bool { return r == ';' || r == ',' || r == '/' }) {
		part = strings.Trim(part, "\x00 \t")
		part = strings.TrimSpace(artistNoise.ReplaceAllString(part, ""))
		if part != "" {
			names = append(names, squashSpaces(part))
		}
	}
	return names
}

func isEXIFDataURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "data:image/jpeg") ||
		strings.HasPrefix(lower, "data:image/jpg") ||
		strings.HasPrefix(lower, "data:image/tiff")
}

func decodeDataURL(dataURL string) []byte {
	_, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.URLEncoding.DecodeString(payload)
		if err != nil {
			return nil
		}
	}
	return data
}

func sameHostURL(pageURL, imageURL string) bool {
	p, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	return isSameHost(p.Host, imageURL)
}
