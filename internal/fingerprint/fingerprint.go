package fingerprint

import "time"

// Fingerprint is the composite text signature every pipeline's candidate
// indexer and scorer reads from instead of re-parsing the title (§4.1). It
// is built once per market and reused across every topic-specific pass.
type Fingerprint struct {
	Title         string
	Tokens        []string
	TokenSet      map[string]struct{}
	Dates         []ExtractedDate
	Numbers       []ExtractedNumber
	Comparator    Comparator
	CloseTime     *time.Time
	MacroEntities []string
}

// macroEntityPhrases is the small fixed vocabulary of full-name entities
// that match on plain substring rather than the ticker word-boundary rule
// (§4.1) — central banks, indices, and commonly-referenced institutions
// that never collide with an unrelated word the way "sol"/"eth" do.
var macroEntityPhrases = []string{
	"federal reserve", "fed", "fomc", "ecb", "european central bank",
	"bank of england", "boe", "bank of japan", "boj", "treasury",
	"s&p 500", "nasdaq", "dow jones", "cpi", "ppi", "nonfarm payrolls",
	"gdp", "unemployment rate", "opec",
}

// BuildFingerprint extracts every text primitive a pipeline needs from one
// market's title and close time.
func BuildFingerprint(title string, closeTime *time.Time) Fingerprint {
	tokens := Tokenize(title)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}

	var entities []string
	for _, phrase := range macroEntityPhrases {
		if ContainsPhrase(title, phrase) {
			entities = append(entities, phrase)
		}
	}

	return Fingerprint{
		Title:         title,
		Tokens:        tokens,
		TokenSet:      set,
		Dates:         ExtractDates(title),
		Numbers:       ExtractNumbers(title),
		Comparator:    ExtractComparator(title),
		CloseTime:     closeTime,
		MacroEntities: entities,
	}
}

// Jaccard computes token-set similarity against another fingerprint without
// re-tokenizing either title.
func (f Fingerprint) Jaccard(other Fingerprint) float64 {
	if len(f.TokenSet) == 0 && len(other.TokenSet) == 0 {
		return 0
	}
	inter := 0
	for t := range f.TokenSet {
		if _, ok := other.TokenSet[t]; ok {
			inter++
		}
	}
	union := len(f.TokenSet) + len(other.TokenSet) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// SameSettleDate reports whether both fingerprints carry a day-precision
// date and those dates match exactly — the hard gate most topic pipelines
// apply before scoring (§4.5).
func (f Fingerprint) SameSettleDate(other Fingerprint) bool {
	a := dayPrecisionDates(f.Dates)
	b := dayPrecisionDates(other.Dates)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, da := range a {
		for _, db := range b {
			if da.SettleDate() == db.SettleDate() {
				return true
			}
		}
	}
	return false
}

func dayPrecisionDates(dates []ExtractedDate) []ExtractedDate {
	var out []ExtractedDate
	for _, d := range dates {
		if d.Precision == PrecisionDay {
			out = append(out, d)
		}
	}
	return out
}
