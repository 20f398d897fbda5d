// Package fingerprint implements the pure text primitives every signal
// extractor and pipeline builds on: tokenization, date/number/comparator
// extraction, and ticker-boundary matching (§4.1).
package fingerprint

import (
	"regexp"
	"strings"
)

var reWord = regexp.MustCompile(`[a-z0-9]+`)

// Tokenize lowercases, strips punctuation, and collapses whitespace into a
// sequence of word tokens. It does not dedupe or remove stopwords — callers
// that need a set build one from the returned slice.
func Tokenize(title string) []string {
	lower := strings.ToLower(title)
	return reWord.FindAllString(lower, -1)
}

// TokenSet builds a deduplicated set from a title, used for Jaccard scoring.
func TokenSet(title string) map[string]struct{} {
	toks := Tokenize(title)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes |A∩B| / |A∪B| over two titles' token sets.
func JaccardSimilarity(a, b string) float64 {
	aSet := TokenSet(a)
	bSet := TokenSet(b)
	if len(aSet) == 0 && len(bSet) == 0 {
		return 0
	}
	inter := 0
	for t := range aSet {
		if _, ok := bSet[t]; ok {
			inter++
		}
	}
	union := len(aSet) + len(bSet) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TickerRegex builds the canonical word-boundary regex for a short ticker
// per §4.1: `(^|[^a-z0-9])\$?<ticker>([^a-z0-9]|$)`. It is non-negotiable —
// "eth" must not match inside "hegseth", "sol" must not match inside
// "solution". The repository port also consumes this regex source directly
// (§6 CryptoListParams.TickerPatterns).
func TickerRegex(ticker string) *regexp.Regexp {
	pattern := `(^|[^a-z0-9])\$?` + regexp.QuoteMeta(strings.ToLower(ticker)) + `([^a-z0-9]|$)`
	return regexp.MustCompile(pattern)
}

// MatchesTicker reports whether title contains ticker on a word boundary.
func MatchesTicker(title, ticker string) bool {
	return TickerRegex(ticker).MatchString(strings.ToLower(title))
}

// ContainsPhrase is a plain substring check against the lowercased title,
// used for full-name entity matching ("bitcoin", "ethereum") which is not
// subject to the ticker boundary rule.
func ContainsPhrase(title, phrase string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(phrase))
}
