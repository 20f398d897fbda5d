// Package signals implements the per-topic typed signal extractors (§4.3).
// Each extractor is a pure function of a market's title/fingerprint; none
// consult the network or the repository.
package signals

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
)

// CryptoEntity is the closed set of entities the crypto pipelines index on.
type CryptoEntity string

const (
	EntityBitcoin  CryptoEntity = "BITCOIN"
	EntityEthereum CryptoEntity = "ETHEREUM"
	EntitySolana   CryptoEntity = "SOLANA"
	EntityXRP      CryptoEntity = "XRP"
	EntityDogecoin CryptoEntity = "DOGECOIN"
	EntityUnknown  CryptoEntity = ""
)

// DateType is the precision/origin of a crypto settle-date.
type DateType string

const (
	DateTypeDayExact  DateType = "DAY_EXACT"
	DateTypeMonthEnd  DateType = "MONTH_END"
	DateTypeQuarter   DateType = "QUARTER"
	DateTypeCloseTime DateType = "CLOSE_TIME"
	DateTypeUnknown   DateType = "UNKNOWN"
)

// MarketType is the structural shape of a crypto price market.
type MarketType string

const (
	MarketDailyThreshold  MarketType = "DAILY_THRESHOLD"
	MarketDailyRange      MarketType = "DAILY_RANGE"
	MarketYearlyThreshold MarketType = "YEARLY_THRESHOLD"
	MarketIntradayUpDown  MarketType = "INTRADAY_UPDOWN"
)

// NumberContext tags an extracted number by the role it plays in the title.
type NumberContext string

const (
	ContextPrice     NumberContext = "price"
	ContextThreshold NumberContext = "threshold"
	ContextUnknown   NumberContext = "unknown"
)

type entityPattern struct {
	entity CryptoEntity
	ticker string
	name   string
}

var cryptoEntities = []entityPattern{
	{EntityBitcoin, "btc", "bitcoin"},
	{EntityEthereum, "eth", "ethereum"},
	{EntitySolana, "sol", "solana"},
	{EntityXRP, "xrp", "xrp"},
	{EntityDogecoin, "doge", "dogecoin"},
}

var rangePattern = regexp.MustCompile(`(?i)\bbetween\b.*\band\b`)
var directionUpPattern = regexp.MustCompile(`(?i)\b(up|higher|increase|rise)\b`)
var directionDownPattern = regexp.MustCompile(`(?i)\b(down|lower|decrease|fall)\b`)

// CryptoSignals is the typed bundle extracted for CRYPTO_DAILY and
// CRYPTO_INTRADAY markets (§4.3).
type CryptoSignals struct {
	Entity       CryptoEntity
	SettleDate   string
	DateType     DateType
	SettlePeriod string
	MarketType   MarketType
	Numbers      []fingerprint.ExtractedNumber
	NumberCtx    []NumberContext
	Comparator   fingerprint.Comparator
	TimeBucket   string // ISO instant, intraday only
	Direction    string // "up" | "down", intraday only

	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractCrypto builds the crypto signal bundle for m, dispatching on
// whether topic is intraday.
func ExtractCrypto(m domain.Market, fp fingerprint.Fingerprint, topic domain.CanonicalTopic) CryptoSignals {
	entity := resolveEntity(fp.Title)

	sig := CryptoSignals{
		Entity:      entity,
		Numbers:     fp.Numbers,
		Comparator:  fp.Comparator,
		TitleTokens: fp.Tokens,
	}
	sig.NumberCtx = classifyNumberContexts(fp.Numbers, fp.Comparator)

	if topic == domain.TopicCryptoIntraday {
		sig.MarketType = MarketIntradayUpDown
		if m.CloseTime != nil {
			sig.TimeBucket = m.CloseTime.UTC().Truncate(0).Format("2006-01-02T15:00:00Z")
		}
		switch {
		case directionUpPattern.MatchString(fp.Title):
			sig.Direction = "up"
		case directionDownPattern.MatchString(fp.Title):
			sig.Direction = "down"
		}
	} else {
		resolveDailyDate(&sig, fp, m)
		switch {
		case rangePattern.MatchString(fp.Title):
			sig.MarketType = MarketDailyRange
		case strings.Contains(strings.ToLower(fp.Title), "by end of year") || strings.Contains(strings.ToLower(fp.Title), "this year"):
			sig.MarketType = MarketYearlyThreshold
		default:
			sig.MarketType = MarketDailyThreshold
		}
	}

	if entity != EntityUnknown {
		sig.Confidence = 0.85
	}
	sig.RaceKey = string(sig.Entity) + "|" + sig.SettleDate
	return sig
}

func resolveEntity(title string) CryptoEntity {
	for _, p := range cryptoEntities {
		if fingerprint.MatchesTicker(title, p.ticker) || fingerprint.ContainsPhrase(title, p.name) {
			return p.entity
		}
	}
	return EntityUnknown
}

func resolveDailyDate(sig *CryptoSignals, fp fingerprint.Fingerprint, m domain.Market) {
	for _, d := range fp.Dates {
		switch d.Precision {
		case fingerprint.PrecisionDay:
			sig.SettleDate = d.SettleDate()
			sig.DateType = DateTypeDayExact
			return
		case fingerprint.PrecisionMonth:
			sig.SettlePeriod = d.SettlePeriod()
			sig.DateType = DateTypeMonthEnd
			return
		case fingerprint.PrecisionQuarter:
			sig.SettlePeriod = d.SettlePeriod()
			sig.DateType = DateTypeQuarter
			return
		}
	}
	if m.CloseTime != nil {
		sig.SettleDate = m.CloseTime.UTC().Format("2006-01-02")
		sig.DateType = DateTypeCloseTime
		return
	}
	sig.DateType = DateTypeUnknown
}

func classifyNumberContexts(nums []fingerprint.ExtractedNumber, cmp fingerprint.Comparator) []NumberContext {
	ctx := make([]NumberContext, len(nums))
	for i, n := range nums {
		switch {
		case n.Kind == fingerprint.KindMonetary && cmp != fingerprint.ComparatorUnknown:
			ctx[i] = ContextThreshold
		case n.Kind == fingerprint.KindMonetary:
			ctx[i] = ContextPrice
		default:
			ctx[i] = ContextUnknown
		}
	}
	return ctx
}

// SameEntity reports whether both signal bundles resolved to the same
// known crypto entity.
func SameEntity(a, b CryptoSignals) bool {
	return a.Entity != EntityUnknown && a.Entity == b.Entity
}
