package signals

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// AssetClass is the closed set the COMMODITIES/FINANCE pipeline indexes on.
type AssetClass string

const (
	AssetOil      AssetClass = "OIL"
	AssetGas      AssetClass = "NATURAL_GAS"
	AssetGold     AssetClass = "GOLD"
	AssetEquity   AssetClass = "EQUITY"
	AssetIndex    AssetClass = "INDEX"
	AssetUnknown  AssetClass = ""
)

// Direction is the directional stance a finance market implies.
type Direction string

const (
	DirectionUp   Direction = "UP"
	DirectionDown Direction = "DOWN"
	DirectionFlat Direction = ""
)

var assetPatterns = []struct {
	pattern *regexp.Regexp
	asset   AssetClass
}{
	{regexp.MustCompile(`(?i)\b(crude oil|wti|brent|opec)\b`), AssetOil},
	{regexp.MustCompile(`(?i)\bnatural gas\b`), AssetGas},
	{regexp.MustCompile(`(?i)\bgold\b`), AssetGold},
	{regexp.MustCompile(`(?i)\b(s&p 500|nasdaq|dow jones)\b`), AssetIndex},
	{regexp.MustCompile(`(?i)\b(stock|shares|earnings)\b`), AssetEquity},
}

// FinanceSignals is the typed bundle extracted for COMMODITIES/FINANCE
// markets.
type FinanceSignals struct {
	AssetClass  AssetClass
	Instrument  string
	Direction   Direction
	TargetValue float64
	RangeLow    float64
	RangeHigh   float64
	DateType    DateType
	SettleKey   string
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractFinance builds the commodities/finance signal bundle for a
// fingerprint.
func ExtractFinance(fp fingerprint.Fingerprint) FinanceSignals {
	sig := FinanceSignals{TitleTokens: fp.Tokens}

	for _, ap := range assetPatterns {
		if ap.pattern.MatchString(fp.Title) {
			sig.AssetClass = ap.asset
			sig.Instrument = strings.ToUpper(string(ap.asset))
			break
		}
	}

	switch fp.Comparator {
	case fingerprint.ComparatorGE:
		sig.Direction = DirectionUp
	case fingerprint.ComparatorLE:
		sig.Direction = DirectionDown
	}

	if len(fp.Numbers) == 1 {
		sig.TargetValue = fp.Numbers[0].Value
	} else if len(fp.Numbers) >= 2 {
		sig.RangeLow, sig.RangeHigh = fp.Numbers[0].Value, fp.Numbers[1].Value
		if sig.RangeLow > sig.RangeHigh {
			sig.RangeLow, sig.RangeHigh = sig.RangeHigh, sig.RangeLow
		}
	}

	for _, d := range fp.Dates {
		switch d.Precision {
		case fingerprint.PrecisionDay:
			sig.SettleKey = d.SettleDate()
			sig.DateType = DateTypeDayExact
		case fingerprint.PrecisionMonth, fingerprint.PrecisionQuarter:
			sig.SettleKey = d.SettlePeriod()
			sig.DateType = DateTypeMonthEnd
		}
		if sig.SettleKey != "" {
			break
		}
	}
	if sig.DateType == "" {
		sig.DateType = DateTypeUnknown
	}

	if sig.AssetClass != AssetUnknown {
		sig.Confidence = 0.75
	}
	sig.RaceKey = string(sig.AssetClass) + "|" + sig.SettleKey
	return sig
}
