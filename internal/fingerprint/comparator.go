package fingerprint

import (
	"regexp"
	"strings"
)

// Comparator is the normalized relational operator a title's threshold
// phrasing implies (§4.1). Phrasings that do not resolve to one of the
// known operators collapse to ComparatorUnknown rather than guessing.
type Comparator string

const (
	ComparatorGE      Comparator = "GE"
	ComparatorLE      Comparator = "LE"
	ComparatorEQ      Comparator = "EQ"
	ComparatorBetween Comparator = "BETWEEN"
	ComparatorUnknown Comparator = "UNKNOWN"
)

var (
	reGE      = regexp.MustCompile(`(?i)\b(above|over|exceed[s]?|more than|at least|greater than|higher than|reach(?:es)?|hit[s]?|>=?)\b`)
	reLE      = regexp.MustCompile(`(?i)\b(below|under|less than|at most|lower than|fall[s]? below|<=?)\b`)
	reEQ      = regexp.MustCompile(`(?i)\b(exactly|equal to|=)\b`)
	reBetween = regexp.MustCompile(`(?i)\b(between|range of|to)\b`)
)

// ExtractComparator resolves the comparator implied by a title's wording.
// Aliases collapse to one of four operators: a title mentioning both a low
// and high bound ("between X and Y") resolves to BETWEEN regardless of
// which directional words also appear.
func ExtractComparator(title string) Comparator {
	lower := strings.ToLower(title)

	if reBetween.MatchString(lower) && strings.Contains(lower, "and") {
		return ComparatorBetween
	}
	if reEQ.MatchString(lower) {
		return ComparatorEQ
	}
	if reGE.MatchString(lower) {
		return ComparatorGE
	}
	if reLE.MatchString(lower) {
		return ComparatorLE
	}
	return ComparatorUnknown
}
