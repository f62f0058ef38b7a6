package migrate

import (
	"sort"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
)

// Company duplicate detection falls back to fuzzy name matching only for
// names long enough to be distinctive, and only accepts candidates above a
// token-overlap similarity threshold. Both values are heuristics without a
// documented derivation, so they stay configurable.
const (
	defaultSimilarityThreshold = 0.7
	defaultMinFuzzyNameLen     = 10
)

// NormalizeDomain strips protocol, www, path, and port from a domain value.
func NormalizeDomain(domainName string) string {
	normalized := strings.ToLower(strings.TrimSpace(domainName))
	normalized = strings.TrimPrefix(normalized, "http://")
	normalized = strings.TrimPrefix(normalized, "https://")
	normalized = strings.TrimPrefix(normalized, "www.")
	if idx := strings.IndexByte(normalized, '/'); idx >= 0 {
		normalized = normalized[:idx]
	}
	if idx := strings.IndexByte(normalized, ':'); idx >= 0 {
		normalized = normalized[:idx]
	}
	return normalized
}

// NormalizePhone reduces a phone number to digits, dropping the leading 1
// from 11-digit North American numbers.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) == 11 && s[0] == '1' {
		s = s[1:]
	}
	return s
}

// companyStopWords are generic words ignored when extracting distinctive
// terms from a company name.
var companyStopWords = map[string]struct{}{
	"inc": {}, "llc": {}, "ltd": {}, "corp": {}, "corporation": {},
	"company": {}, "co": {}, "group": {}, "the": {}, "and": {}, "of": {},
	"for": {}, "in": {}, "on": {}, "at": {}, "to": {}, "a": {}, "an": {},
	"is": {}, "are": {}, "services": {}, "service": {}, "solutions": {},
	"enterprises": {}, "international": {}, "global": {},
}

// KeyTerms extracts up to three distinctive terms from a company name,
// longest first.
func KeyTerms(name string) []string {
	cleaned := strings.NewReplacer(",", "", ".", "").Replace(strings.ToLower(name))
	var terms []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := companyStopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
	}
	sort.SliceStable(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	if len(terms) > 3 {
		terms = terms[:3]
	}
	return terms
}

// Similarity scores two company names in [0,1]: exact match is 1, a
// containment match scores by length ratio, otherwise token overlap
// (Jaccard) decides.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		shorter, longer := len(a), len(b)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer) * 0.9
	}

	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	var intersection int
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	tokens := map[string]struct{}{}
	for _, t := range strings.Fields(s) {
		tokens[t] = struct{}{}
	}
	return tokens
}

// BestMatch picks the candidate whose name is most similar to target,
// requiring at least threshold. Returns nil when none qualifies.
func BestMatch(target string, candidates []*domain.Object, threshold float64) *domain.Object {
	var best *domain.Object
	bestScore := threshold
	for _, candidate := range candidates {
		name := candidate.Property("name")
		if name == "" {
			continue
		}
		if score := Similarity(target, name); score > bestScore {
			bestScore = score
			best = candidate
		}
	}
	return best
}
