package signals

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// ClimateKind is the closed set of climate event kinds.
type ClimateKind string

const (
	ClimateHurricane  ClimateKind = "HURRICANE"
	ClimateTemperature ClimateKind = "TEMPERATURE"
	ClimateSnow       ClimateKind = "SNOW"
	ClimateRainfall   ClimateKind = "RAINFALL"
	ClimateDrought    ClimateKind = "DROUGHT"
	ClimateWildfire   ClimateKind = "WILDFIRE"
	ClimateFlood      ClimateKind = "FLOOD"
	ClimateEarthquake ClimateKind = "EARTHQUAKE"
	ClimateVolcano    ClimateKind = "VOLCANO"
	ClimateOther      ClimateKind = "OTHER"
)

var climateKindPatterns = []struct {
	pattern *regexp.Regexp
	kind    ClimateKind
}{
	{regexp.MustCompile(`(?i)\bhurricane\b`), ClimateHurricane},
	{regexp.MustCompile(`(?i)\b(temperature|heat wave|record high|record low)\b`), ClimateTemperature},
	{regexp.MustCompile(`(?i)\bsnow(fall)?\b`), ClimateSnow},
	{regexp.MustCompile(`(?i)\brain(fall)?\b`), ClimateRainfall},
	{regexp.MustCompile(`(?i)\bdrought\b`), ClimateDrought},
	{regexp.MustCompile(`(?i)\bwildfire\b`), ClimateWildfire},
	{regexp.MustCompile(`(?i)\bflood(ing)?\b`), ClimateFlood},
	{regexp.MustCompile(`(?i)\bearthquake\b`), ClimateEarthquake},
	{regexp.MustCompile(`(?i)\bvolcan(o|ic)\b`), ClimateVolcano},
}

var climateRegionPattern = regexp.MustCompile(`(?i)\b(florida|texas|california|gulf coast|atlantic|pacific|northeast|midwest|gulf of mexico)\b`)

// ClimateSignals is the typed bundle extracted for CLIMATE markets.
type ClimateSignals struct {
	Kind        ClimateKind
	DateType    DateType
	SettleKey   string
	RegionKey   string
	Thresholds  []fingerprint.ExtractedNumber
	Comparator  fingerprint.Comparator
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractClimate builds the climate signal bundle for a fingerprint.
func ExtractClimate(fp fingerprint.Fingerprint) ClimateSignals {
	sig := ClimateSignals{
		Kind:        ClimateOther,
		Thresholds:  fp.Numbers,
		Comparator:  fp.Comparator,
		TitleTokens: fp.Tokens,
	}

	for _, kp := range climateKindPatterns {
		if kp.pattern.MatchString(fp.Title) {
			sig.Kind = kp.kind
			break
		}
	}

	if region := climateRegionPattern.FindString(fp.Title); region != "" {
		sig.RegionKey = strings.ToLower(region)
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

	if sig.Kind != ClimateOther {
		sig.Confidence = 0.80
	}
	sig.RaceKey = string(sig.Kind) + "|" + sig.SettleKey
	return sig
}

// ComparatorsContradict reports whether two comparators directly oppose
// each other (GE vs LE), the climate hard-gate check (§4.5).
func ComparatorsContradict(a, b fingerprint.Comparator) bool {
	opposite := map[fingerprint.Comparator]fingerprint.Comparator{
		fingerprint.ComparatorGE: fingerprint.ComparatorLE,
		fingerprint.ComparatorLE: fingerprint.ComparatorGE,
	}
	return opposite[a] == b
}
