package signals

import (
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// EventType is the closed set of geopolitical event categories.
type EventType string

const (
	EventWar       EventType = "WAR"
	EventPeace     EventType = "PEACE"
	EventTerritory EventType = "TERRITORY"
	EventMilitary  EventType = "MILITARY"
	EventDiplomacy EventType = "DIPLOMACY"
	EventSanctions EventType = "SANCTIONS"
	EventUnknown   EventType = ""
)

var eventTypePatterns = []struct {
	pattern   *regexp.Regexp
	eventType EventType
}{
	{regexp.MustCompile(`(?i)\b(ceasefire|peace deal|peace agreement)\b`), EventPeace},
	{regexp.MustCompile(`(?i)\b(war|invasion|conflict)\b`), EventWar},
	{regexp.MustCompile(`(?i)\b(territory|annex|border)\b`), EventTerritory},
	{regexp.MustCompile(`(?i)\b(strike|military action|troops)\b`), EventMilitary},
	{regexp.MustCompile(`(?i)\b(summit|talks|negotiation|diplomacy)\b`), EventDiplomacy},
	{regexp.MustCompile(`(?i)\b(sanctions?|embargo)\b`), EventSanctions},
}

var regionNames = []string{
	"middle east", "europe", "asia", "africa", "latin america",
	"eastern europe", "south china sea", "balkans",
}

// GeopoliticsSignals is the typed bundle extracted for GEOPOLITICS markets.
type GeopoliticsSignals struct {
	Regions     []string
	Countries   []string
	EventType   EventType
	Actors      []string
	Year        int
	Deadline    string
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractGeopolitics builds the geopolitics signal bundle for a fingerprint.
func ExtractGeopolitics(fp fingerprint.Fingerprint) GeopoliticsSignals {
	sig := GeopoliticsSignals{TitleTokens: fp.Tokens}
	lower := strings.ToLower(fp.Title)

	for _, r := range regionNames {
		if strings.Contains(lower, r) {
			sig.Regions = append(sig.Regions, r)
		}
	}
	for _, c := range countryNames {
		if strings.Contains(lower, c) {
			sig.Countries = append(sig.Countries, normalizeCountry(c))
		}
	}
	for _, ep := range eventTypePatterns {
		if ep.pattern.MatchString(fp.Title) {
			sig.EventType = ep.eventType
			break
		}
	}
	for _, d := range fp.Dates {
		if d.Year != 0 {
			sig.Year = d.Year
			if d.Precision == fingerprint.PrecisionDay {
				sig.Deadline = d.SettleDate()
			}
			break
		}
	}

	if sig.EventType != EventUnknown {
		sig.Confidence = 0.75
	}
	key := strings.Join(sig.Regions, ",") + "|" + string(sig.EventType)
	sig.RaceKey = key
	return sig
}
