package crawler

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/nao1215/staffscan/internal/model"
)

// teamCardSelector matches elements that usually hold one person on team,
// staff and leadership pages.
const teamCardSelector = `[itemtype$="schema.org/Person"], .team-member, .staff-member, ` +
	`.person, .profile-card, .bio-card, .leader, .member-card`

// cardNameSelector and cardTitleSelector are tried in order inside a card.
const (
	cardNameSelector  = `[itemprop="name"], .name, .member-name, h2, h3, h4, h5, strong`
	cardTitleSelector = `[itemprop="jobTitle"], .title, .job-title, .role, .position, .designation`
)

// maxCardNameWords rejects card headings that are clearly not a person's name.
const maxCardNameWords = 5

// Parser extracts the parts of a company web page that name people.
type Parser struct {
	baseURL *url.URL
}

// ParseResult is everything pulled out of one HTML page.
type ParseResult struct {
	// Title is the <title> text.
	Title string

	// Text is the readable main content, or the whole body text when
	// readability finds no article.
	Text string

	// Byline is the article author line.
	Byline string

	// Links are absolute, fragment-free URLs on the same host.
	Links []string

	// Images are absolute image URLs, plus inline data:image URLs.
	Images []string

	// Team holds people found in team cards.
	Team []model.TeamEntry
}

// NewParser returns a parser that resolves relative URLs against pageURL.
func NewParser(pageURL string) (*Parser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}
	return &Parser{baseURL: u}, nil
}

// Parse reads an HTML document.
func (p *Parser) Parse(r io.Reader) (*ParseResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	result := &ParseResult{
		Title:  squashSpaces(doc.Find("title").First().Text()),
		Links:  p.links(doc),
		Images: p.images(doc),
		Team:   teamEntries(doc),
	}

	rp := readability.NewParser()
	article, err := rp.Parse(bytes.NewReader(body), p.baseURL)
	if err == nil {
		result.Text = squashLines(article.TextContent)
		result.Byline = squashSpaces(article.Byline)
	}
	if result.Text == "" {
		doc.Find("script, style, noscript, template").Remove()
		result.Text = squashLines(doc.Find("body").Text())
	}
	return result, nil
}

func (p *Parser) links(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		u, ok := p.resolve(href)
		if !ok || !strings.EqualFold(u.Host, p.baseURL.Host) {
			return
		}
		u.Fragment = ""
		abs := u.String()
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	return links
}

func (p *Parser) images(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var images []string
	add := func(src string) {
		if src == "" || seen[src] {
			return
		}
		seen[src] = true
		images = append(images, src)
	}
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if strings.HasPrefix(strings.ToLower(src), "data:image/") {
			add(src)
			return
		}
		if u, ok := p.resolve(src); ok {
			add(u.String())
		}
	})
	return images
}

// resolve turns href into an absolute http(s) URL.
func (p *Parser) resolve(href string) (*url.URL, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return nil, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, false
	}
	u := p.baseURL.ResolveReference(ref)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	return u, true
}

// teamEntries reads innermost team cards. Cards without a plausible name
// are skipped and each name is reported once.
func teamEntries(doc *goquery.Document) []model.TeamEntry {
	seen := make(map[string]bool)
	var entries []model.TeamEntry
	doc.Find(teamCardSelector).Each(func(_ int, card *goquery.Selection) {
		if card.Find(teamCardSelector).Length() > 0 {
			return
		}
		name := squashSpaces(card.Find(cardNameSelector).First().Text())
		words := len(strings.Fields(name))
		if words < 2 || words > maxCardNameWords {
			return
		}
		title := squashSpaces(card.Find(cardTitleSelector).First().Text())
		if title == "" {
			card.Find("p, span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				text := squashSpaces(s.Text())
				if text != "" && text != name {
					title = text
					return false
				}
				return true
			})
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		entries = append(entries, model.TeamEntry{Name: name, Title: title})
	})
	return entries
}

func squashSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// squashLines collapses spaces within lines and drops blank lines.
func squashLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = squashSpaces(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
