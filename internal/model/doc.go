// Package model defines the records shared across staffscan.
//
// The main types are:
//   - Employee: one discovered person, keyed by lower-cased first and last name
//   - Confidence: the high/medium/low tier attached to every record
//   - SearchHit: one X-ray search result imported from a file
//   - Page: a crawled company web page after parsing
//   - Run: the report produced by one pipeline execution
//   - Roster: the input handed to report writers
//
// All types serialize to JSON with snake_case keys so that files written by
// older tooling (first_name, company_name, source_link, ...) stay readable.
package model
