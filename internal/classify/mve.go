package classify

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/domain"
)

// MveResult is the MVE detection predicate's output (§4.2).
type MveResult struct {
	IsMve  bool
	Source domain.MveSource
}

var sgpTitlePattern = regexp.MustCompile(`(?i)\b(same game parlay|sgp|parlay)\b`)

// yesYesYesPattern matches the "yes X, yes Y, yes Z" multi-leg phrasing.
var yesYesYesPattern = regexp.MustCompile(`(?i)\byes\b.*,.*\byes\b.*,.*\byes\b`)

// DetectMve combines the exchange event-ticker prefix, an explicit
// is_multivariate metadata flag, and title patterns to flag multi-variable
// / same-game-parlay markets (§4.2). Only the exchange venue carries event
// tickers; the on-chain venue is checked by metadata flag and title alone.
func DetectMve(m domain.Market) MveResult {
	if strings.HasPrefix(strings.ToUpper(m.EventTicker), mveSeriesPrefix) {
		return MveResult{IsMve: true, Source: domain.MveSourceEventTicker}
	}
	if seriesTicker, ok := m.MetaString("series_ticker", "seriesTicker"); ok {
		if strings.HasPrefix(strings.ToUpper(seriesTicker), mveSeriesPrefix) {
			return MveResult{IsMve: true, Source: domain.MveSourceSeriesTicker}
		}
	}
	if flag, ok := m.MetaBool("is_multivariate", "isMultivariate"); ok && flag {
		return MveResult{IsMve: true, Source: domain.MveSourceAPIField}
	}
	if sgpTitlePattern.MatchString(m.Title) || yesYesYesPattern.MatchString(m.Title) {
		return MveResult{IsMve: true, Source: domain.MveSourceTitlePattern}
	}
	return MveResult{IsMve: false, Source: domain.MveSourceUnknown}
}
