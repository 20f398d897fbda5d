// Package classify assigns a canonical topic to a market and flags
// multi-variable events (§4.2).
package classify

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/domain"
)

// Result is the classifier's output for one market.
type Result struct {
	Topic      domain.CanonicalTopic
	Confidence float64
	Source     domain.TaxonomySource
	Reason     string
}

// seriesPrefixRule maps an exchange series-ticker prefix to a topic. KXMV
// is checked separately since it marks MVE without pinning a topic (the
// market can still resolve to SPORTS via the title/category rules below).
type seriesPrefixRule struct {
	prefix string
	topic  domain.CanonicalTopic
}

var seriesPrefixRules = []seriesPrefixRule{
	{"KXBTCD", domain.TopicCryptoDaily},
	{"KXETHD", domain.TopicCryptoDaily},
	{"KXSOLD", domain.TopicCryptoDaily},
	{"KXXRPD", domain.TopicCryptoDaily},
	{"KXDOGED", domain.TopicCryptoDaily},
	{"KXBTC", domain.TopicCryptoIntraday},
	{"KXETH", domain.TopicCryptoIntraday},
	{"KXSOL", domain.TopicCryptoIntraday},
	{"KXFED", domain.TopicRates},
	{"KXCPI", domain.TopicMacro},
	{"KXGDP", domain.TopicMacro},
	{"KXPAYROLLS", domain.TopicMacro},
	{"KXPRES", domain.TopicElections},
	{"KXSENATE", domain.TopicElections},
	{"KXHOUSE", domain.TopicElections},
	{"KXHURRICANE", domain.TopicClimate},
	{"KXTEMP", domain.TopicClimate},
	{"KXOSCARS", domain.TopicEntertainment},
	{"KXGRAMMYS", domain.TopicEntertainment},
	{"KXNBA", domain.TopicSports},
	{"KXNFL", domain.TopicSports},
	{"KXMLB", domain.TopicSports},
	{"KXNHL", domain.TopicSports},
	{"KXNCAA", domain.TopicSports},
}

const mveSeriesPrefix = "KXMV"

// categoryMap resolves an exchange/on-chain category string, normalized to
// lowercase with hyphens folded to spaces, directly to a topic. "us-current
// -affairs" and "us current affairs" resolve equivalently per §4.2.
var categoryMap = map[string]domain.CanonicalTopic{
	"crypto":              domain.TopicCryptoDaily,
	"cryptocurrency":      domain.TopicCryptoDaily,
	"economics":           domain.TopicMacro,
	"inflation":           domain.TopicMacro,
	"employment":          domain.TopicMacro,
	"fed":                 domain.TopicRates,
	"interest rates":      domain.TopicRates,
	"monetary policy":     domain.TopicRates,
	"politics":            domain.TopicElections,
	"elections":           domain.TopicElections,
	"us current affairs":  domain.TopicElections,
	"world":               domain.TopicGeopolitics,
	"geopolitics":         domain.TopicGeopolitics,
	"world affairs":       domain.TopicGeopolitics,
	"sports":              domain.TopicSports,
	"entertainment":       domain.TopicEntertainment,
	"awards":              domain.TopicEntertainment,
	"pop culture":         domain.TopicEntertainment,
	"climate":             domain.TopicClimate,
	"weather":             domain.TopicClimate,
	"climate and weather": domain.TopicClimate,
	"commodities":         domain.TopicCommodities,
	"oil":                 domain.TopicCommodities,
	"energy":              domain.TopicCommodities,
	"financials":          domain.TopicFinance,
	"finance":             domain.TopicFinance,
	"stocks":              domain.TopicFinance,
}

func normalizeCategory(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " ")
}

// oilTagPattern matches oil-related words (oil, OPEC, crude, WTI, Brent). A
// Financials category whose title matches it, or a tag/event_tag metadata
// value that matches it, resolves to COMMODITIES (§4.2 step 3).
var oilTagPattern = regexp.MustCompile(`(?i)\b(oil|opec|crude|wti|brent)\b`)

// titleRule is one regex-based keyword classification rule (§4.2 step 4).
// Rules are evaluated in order; the first match wins.
type titleRule struct {
	pattern    *regexp.Regexp
	topic      domain.CanonicalTopic
	confidence float64
}

var titleRules = []titleRule{
	{regexp.MustCompile(`(?i)\b(bitcoin|btc|ethereum|eth|solana|sol|xrp|dogecoin|doge)\b`), domain.TopicCryptoDaily, 0.80},
	{regexp.MustCompile(`(?i)\b(fed(eral reserve)?|fomc|rate hike|rate cut|interest rate)\b`), domain.TopicRates, 0.85},
	{regexp.MustCompile(`(?i)\b(cpi|gdp|nonfarm payrolls|unemployment rate|pce|pmi|jobless claims|inflation)\b`), domain.TopicMacro, 0.85},
	{regexp.MustCompile(`(?i)\b(president|senate|governor|prime minister|election|nominee|electoral)\b`), domain.TopicElections, 0.85},
	{regexp.MustCompile(`(?i)\b(war|ceasefire|invasion|sanctions|territory|military strike)\b`), domain.TopicGeopolitics, 0.75},
	{regexp.MustCompile(`(?i)\b(oscars?|grammys?|emmys?|golden globes?|tonys?|baftas?|box office)\b`), domain.TopicEntertainment, 0.85},
	{regexp.MustCompile(`(?i)\b(hurricane|wildfire|drought|snowfall|rainfall|earthquake|volcano)\b`), domain.TopicClimate, 0.85},
	{regexp.MustCompile(`(?i)\b(crude oil|natural gas|gold price|opec|wti|brent)\b`), domain.TopicCommodities, 0.80},
	{regexp.MustCompile(`(?i)\b(s&p 500|nasdaq|dow jones|stock price|earnings)\b`), domain.TopicFinance, 0.75},
	{regexp.MustCompile(`(?i)\b(vs\.?|at|moneyline|spread|over/under)\b.*\b(win|beat|cover)\b`), domain.TopicSports, 0.70},
}

// Classify assigns a canonical topic to m using the ordered resolution in
// §4.2: series-ticker prefix, category map, tag override, title keywords,
// fallback.
func Classify(m domain.Market) Result {
	if seriesTicker, ok := m.MetaString("series_ticker", "seriesTicker"); ok {
		upper := strings.ToUpper(seriesTicker)
		for _, rule := range seriesPrefixRules {
			if strings.HasPrefix(upper, rule.prefix) {
				return Result{Topic: rule.topic, Confidence: 0.95, Source: domain.SourceTickerPattern, Reason: "series_ticker_prefix:" + rule.prefix}
			}
		}
	}

	if norm := normalizeCategory(m.Category); norm != "" {
		if topic, ok := categoryMap[norm]; ok {
			if topic == domain.TopicFinance && oilTagPattern.MatchString(m.Title) {
				return Result{Topic: domain.TopicCommodities, Confidence: 0.90, Source: domain.SourceCategory, Reason: "category+oil_tag"}
			}
			return Result{Topic: topic, Confidence: 0.90, Source: domain.SourceCategory, Reason: "category:" + norm}
		}
	}

	if tag, ok := m.MetaString("tag", "event_tag"); ok && oilTagPattern.MatchString(tag) {
		return Result{Topic: domain.TopicCommodities, Confidence: 0.80, Source: domain.SourceMetadata, Reason: "tag:" + tag}
	}

	for _, rule := range titleRules {
		if rule.pattern.MatchString(m.Title) {
			return Result{Topic: rule.topic, Confidence: rule.confidence, Source: domain.SourceTitleKeywords, Reason: "title_keyword"}
		}
	}

	return Result{Topic: domain.TopicUnknown, Confidence: 0, Source: domain.SourceFallback, Reason: "no_signal"}
}
