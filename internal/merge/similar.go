package merge

import (
	"sort"
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"github.com/nao1215/staffscan/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSimilarityThreshold is the Jaro-Winkler score from which two
// differently keyed names are reported as possible duplicates.
const DefaultSimilarityThreshold = 0.93

// SimilarPair is two records whose names are close but not identical.
type SimilarPair struct {
	A     model.Employee
	B     model.Employee
	Score float64
}

// FoldName lower-cases a name and removes diacritics ("José" -> "jose").
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(strings.TrimSpace(result))
}

// FindSimilar returns pairs of records with different keys whose folded
// full names score at least threshold. Pairs are ordered by score, highest
// first. Records are never merged here.
func FindSimilar(records []model.Employee, threshold float64) []SimilarPair {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = FoldName(r.FirstName + " " + r.LastName)
	}

	var pairs []SimilarPair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			if records[i].Key() == records[j].Key() {
				continue
			}
			score := matchr.JaroWinkler(names[i], names[j], false)
			if score >= threshold {
				pairs = append(pairs, SimilarPair{A: records[i], B: records[j], Score: score})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs
}
