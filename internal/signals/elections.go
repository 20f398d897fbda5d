package signals

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// Office is the closed set of races the ELECTIONS pipeline indexes.
type Office string

const (
	OfficePresident    Office = "PRESIDENT"
	OfficeSenate       Office = "SENATE"
	OfficeHouse        Office = "HOUSE"
	OfficeGovernor     Office = "GOVERNOR"
	OfficePM           Office = "PRIME_MINISTER"
	OfficeMayor        Office = "MAYOR"
	OfficePartyControl Office = "PARTY_CONTROL"
	OfficeVP           Office = "VICE_PRESIDENT"
	OfficeUnknown      Office = "UNKNOWN"
)

// Intent is what the market asks about within a race.
type Intent string

const (
	IntentWinner       Intent = "WINNER"
	IntentMargin       Intent = "MARGIN"
	IntentTurnout      Intent = "TURNOUT"
	IntentPartyControl Intent = "PARTY_CONTROL"
	IntentNominee      Intent = "NOMINEE"
)

var officePatterns = []struct {
	pattern *regexp.Regexp
	office  Office
}{
	{regexp.MustCompile(`(?i)\bpresident(ial)?\b`), OfficePresident},
	{regexp.MustCompile(`(?i)\bvice president\b`), OfficeVP},
	{regexp.MustCompile(`(?i)\bsenate\b`), OfficeSenate},
	{regexp.MustCompile(`(?i)\bhouse\b`), OfficeHouse},
	{regexp.MustCompile(`(?i)\bgovernor\b`), OfficeGovernor},
	{regexp.MustCompile(`(?i)\bprime minister\b`), OfficePM},
	{regexp.MustCompile(`(?i)\bmayor\b`), OfficeMayor},
	{regexp.MustCompile(`(?i)\bcontrol of (the )?(senate|house|congress)\b`), OfficePartyControl},
}

// countryNames is the enumerated set referenced by §4.3; not exhaustive,
// extended as new markets surface unrecognized countries.
var countryNames = []string{
	"united states", "us", "uk", "united kingdom", "france", "germany",
	"italy", "canada", "mexico", "brazil", "japan", "india", "malaysia",
	"latvia", "poland", "argentina", "australia",
}

var usStatePattern = regexp.MustCompile(`\b([A-Z]{2})\b`)

var intentPatterns = []struct {
	pattern *regexp.Regexp
	intent  Intent
}{
	{regexp.MustCompile(`(?i)\bmargin\b`), IntentMargin},
	{regexp.MustCompile(`(?i)\bturnout\b`), IntentTurnout},
	{regexp.MustCompile(`(?i)\bcontrol of\b`), IntentPartyControl},
	{regexp.MustCompile(`(?i)\bnominee\b`), IntentNominee},
}

// ElectionsSignals is the typed bundle extracted for ELECTIONS markets.
type ElectionsSignals struct {
	Country     string
	Office      Office
	Year        int
	State       string
	Candidates  []string
	Intent      Intent
	Party       string
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractElections builds the elections signal bundle for a fingerprint.
// Candidates are passed in from venue metadata since free-text name
// extraction from a title is unreliable; callers with no metadata pass nil.
func ExtractElections(fp fingerprint.Fingerprint, metaCandidates []string) ElectionsSignals {
	sig := ElectionsSignals{TitleTokens: fp.Tokens, Office: OfficeUnknown, Intent: IntentWinner}
	lower := strings.ToLower(fp.Title)

	for _, c := range countryNames {
		if strings.Contains(lower, c) {
			sig.Country = normalizeCountry(c)
			break
		}
	}

	for _, op := range officePatterns {
		if op.pattern.MatchString(fp.Title) {
			sig.Office = op.office
			break
		}
	}

	for _, d := range fp.Dates {
		if d.Year != 0 {
			sig.Year = d.Year
			break
		}
	}

	if sig.Country == "united states" {
		if m := usStatePattern.FindString(fp.Title); m != "" {
			sig.State = m
		}
	}

	for _, ip := range intentPatterns {
		if ip.pattern.MatchString(fp.Title) {
			sig.Intent = ip.intent
			break
		}
	}

	sig.Candidates = normalizeCandidates(metaCandidates)

	if sig.Country != "" && sig.Office != OfficeUnknown {
		sig.Confidence = 0.85
	}
	sig.RaceKey = fmt.Sprintf("%s|%s|%d|%s", sig.Country, sig.Office, sig.Year, sig.State)
	return sig
}

func normalizeCountry(raw string) string {
	switch raw {
	case "us", "united states":
		return "united states"
	case "uk", "united kingdom":
		return "united kingdom"
	default:
		return raw
	}
}

func normalizeCandidates(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, strings.ToLower(strings.TrimSpace(n)))
	}
	return out
}

// OfficeCompatible implements the office hard-gate compatibility exceptions
// (§4.5): HOUSE and SENATE may each pair with PARTY_CONTROL.
func OfficeCompatible(a, b Office) bool {
	if a == b {
		return true
	}
	pc := func(o Office) bool { return o == OfficeHouse || o == OfficeSenate || o == OfficePartyControl }
	return pc(a) && pc(b) && (a == OfficePartyControl || b == OfficePartyControl)
}
