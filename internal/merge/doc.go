// Package merge combines employee records from several sources.
//
// Records are keyed by lower-cased first and last name. The first record
// added for a key wins, so callers add sources in priority order: stored
// records, imported files, LinkedIn hits, then website candidates.
//
// The package also reads and writes the JSON record files exchanged with
// other tools, reads search hit exports (JSON or CSV), and reports near
// duplicate names such as "Jon Smith" and "John Smith" without merging them.
package merge
