package domain

// CanonicalTopic is the closed set of topics the classifier can assign to a market.
type CanonicalTopic string

const (
	TopicCryptoDaily    CanonicalTopic = "CRYPTO_DAILY"
	TopicCryptoIntraday CanonicalTopic = "CRYPTO_INTRADAY"
	TopicMacro          CanonicalTopic = "MACRO"
	TopicRates          CanonicalTopic = "RATES"
	TopicElections      CanonicalTopic = "ELECTIONS"
	TopicGeopolitics    CanonicalTopic = "GEOPOLITICS"
	TopicSports         CanonicalTopic = "SPORTS"
	TopicEntertainment  CanonicalTopic = "ENTERTAINMENT"
	TopicClimate        CanonicalTopic = "CLIMATE"
	TopicCommodities    CanonicalTopic = "COMMODITIES"
	TopicFinance        CanonicalTopic = "FINANCE"
	TopicUniversal      CanonicalTopic = "UNIVERSAL"
	TopicUnknown        CanonicalTopic = "UNKNOWN"
)

// AllTopics enumerates the canonical topic set, used by the preflight overlap
// check and by CLI validation.
var AllTopics = []CanonicalTopic{
	TopicCryptoDaily, TopicCryptoIntraday, TopicMacro, TopicRates,
	TopicElections, TopicGeopolitics, TopicSports, TopicEntertainment,
	TopicClimate, TopicCommodities, TopicFinance, TopicUniversal, TopicUnknown,
}

func (t CanonicalTopic) Valid() bool {
	for _, known := range AllTopics {
		if known == t {
			return true
		}
	}
	return false
}

// TaxonomySource records how derivedTopic was assigned.
type TaxonomySource string

const (
	SourceDatabase       TaxonomySource = "database"
	SourceRule           TaxonomySource = "rule"
	SourceTickerPattern  TaxonomySource = "ticker_pattern"
	SourceTitleKeywords  TaxonomySource = "title_keywords"
	SourceCategory       TaxonomySource = "category"
	SourceMetadata       TaxonomySource = "metadata"
	SourceSeriesMetadata TaxonomySource = "series_metadata"
	SourceEventMetadata  TaxonomySource = "event_metadata"
	SourceFallback       TaxonomySource = "fallback"
)

// MveSource records how the multi-variable-event flag was derived.
type MveSource string

const (
	MveSourceEventTicker  MveSource = "event_ticker"
	MveSourceSeriesTicker MveSource = "series_ticker"
	MveSourceAPIField     MveSource = "api_field"
	MveSourceTitlePattern MveSource = "title_pattern"
	MveSourceUnknown      MveSource = "unknown"
)
