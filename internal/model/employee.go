package model

import (
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// Source labels written by the built-in extractors.
const (
	SourceLinkedIn      = "LinkedIn X-ray Search"
	SourceWebsite       = "Website Search Results"
	SourceWebsiteTeam   = "Website Team Page"
	SourceWebsiteByline = "Website Article Byline"
	SourceImageMetadata = "Image Metadata"
)

// UnknownValue fills empty titles and sources during cleaning.
const UnknownValue = "Unknown"

// DefaultTitle is used when no job title could be extracted from a search hit.
const DefaultTitle = "Position to be determined"

// Verification statuses set by the verify step.
const (
	VerificationManualReview = "manual_review"
	VerificationReachable    = "reachable"
	VerificationUnreachable  = "unreachable"
	VerificationNoLink       = "no_link"
)

// Employee is one discovered person at a company.
// Records from every source share this shape and are merged by Key.
type Employee struct {
	// FirstName is the given name, title-cased after cleaning.
	FirstName string `json:"first_name"`

	// LastName is the family name, title-cased after cleaning.
	LastName string `json:"last_name"`

	// Title is the job title, or "Unknown".
	Title string `json:"title"`

	// Company is the company the person was found for.
	Company string `json:"company_name"`

	// Location is the company location the search targeted.
	Location string `json:"location"`

	// Source names the extractor that produced the record.
	Source string `json:"source"`

	// Confidence is the heuristic trust tier.
	Confidence Confidence `json:"confidence"`

	// Link is the profile or page URL the record came from.
	Link string `json:"link,omitempty"`

	// NeedsVerification is set for records a human should check.
	NeedsVerification bool `json:"needs_verification,omitempty"`

	// VerificationStatus is one of the Verification* constants.
	VerificationStatus string `json:"verification_status,omitempty"`

	// VerificationDate is when the verify step last looked at the record.
	VerificationDate *time.Time `json:"verification_date,omitempty"`

	// ValidationScore is the weighted name validation score in [0, 1].
	ValidationScore float64 `json:"validation_score,omitempty"`

	// ValidationReason describes which validation signal decided the score.
	ValidationReason string `json:"validation_reason,omitempty"`
}

// Key returns the merge key: lower-cased, trimmed first and last name joined by "_".
func (e Employee) Key() string {
	return NameKey(e.FirstName, e.LastName)
}

// NameKey builds the merge key for a first and last name.
func NameKey(first, last string) string {
	return strings.ToLower(strings.TrimSpace(first)) + "_" + strings.ToLower(strings.TrimSpace(last))
}

// FullName returns "First Last".
func (e Employee) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
}

// IsLinkedInProfile reports whether the record links to a LinkedIn member profile.
func (e Employee) IsLinkedInProfile() bool {
	return IsLinkedInProfileURL(e.Link)
}

// IsLinkedInProfileURL reports whether u points at a LinkedIn member profile.
func IsLinkedInProfileURL(u string) bool {
	return strings.Contains(strings.ToLower(u), "linkedin.com/in/")
}

// Fingerprint returns a SHA3-256 digest of the fields shown in reports.
// Two records with the same fingerprint render identically.
func (e Employee) Fingerprint() string {
	fields := []string{
		strings.ToLower(strings.TrimSpace(e.FirstName)),
		strings.ToLower(strings.TrimSpace(e.LastName)),
		strings.TrimSpace(e.Title),
		strings.TrimSpace(e.Company),
		strings.TrimSpace(e.Location),
		strings.TrimSpace(e.Source),
		e.Confidence.String(),
		strings.TrimSpace(e.Link),
	}
	sum := sha3.Sum256([]byte(strings.Join(fields, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// SearchHit is a single X-ray search result as exported by a search tool.
type SearchHit struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
