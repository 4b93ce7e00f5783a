package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page is a crawled company web page after parsing.
// The raw body is kept for image metadata analysis but never serialized.
type Page struct {
	// URL is the absolute URL of the page.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the text of the <title> element.
	Title string `json:"title,omitempty"`

	// Text is the readable main content of the page.
	// Falls back to the whole body text when no article is detected.
	Text string `json:"-"`

	// Byline is the article author line, if any ("By Jane Doe").
	Byline string `json:"byline,omitempty"`

	// Language is the detected language name, empty when undetected.
	Language string `json:"language,omitempty"`

	// Images are absolute URLs of referenced images.
	Images []string `json:"images,omitempty"`

	// Links are absolute URLs of same-host anchors.
	Links []string `json:"links,omitempty"`

	// Team holds people listed in team or staff cards.
	Team []TeamEntry `json:"team,omitempty"`

	// Raw is the response body, capped by the crawler's body limit.
	Raw []byte `json:"-"`

	// Hash is the SHA-256 of Raw.
	Hash string `json:"hash,omitempty"`
}

// TeamEntry is a person found in a team, staff or leadership card.
type TeamEntry struct {
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// MaxTextSize caps Page.Text.
const MaxTextSize = 512 * 1024

// ComputeHash sets Hash from Raw. An empty body yields an empty hash.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// IsHTML reports whether the content type is HTML.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// IsImage reports whether the content type is an image.
func (p *Page) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(p.ContentType), "image/")
}

// TruncateText enforces MaxTextSize on Text.
func (p *Page) TruncateText() {
	if len(p.Text) > MaxTextSize {
		p.Text = p.Text[:MaxTextSize]
	}
}
