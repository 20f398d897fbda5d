package signals

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
)

// League is the closed set of leagues the SPORTS pipeline indexes on.
type League string

const (
	LeagueNBA     League = "NBA"
	LeagueNFL     League = "NFL"
	LeagueMLB     League = "MLB"
	LeagueNHL     League = "NHL"
	LeagueNCAA    League = "NCAA"
	LeagueUnknown League = ""
)

// SportsMarketType is the wager shape a sports market expresses.
type SportsMarketType string

const (
	SportsMoneyline SportsMarketType = "MONEYLINE"
	SportsSpread    SportsMarketType = "SPREAD"
	SportsTotal     SportsMarketType = "TOTAL"
	SportsProp      SportsMarketType = "PROP"
)

// TeamSource/StartSource record provenance for diagnostics, matching the
// event/title duality exchange markets carry (§4.3).
const (
	SourceTitle = "title"
	SourceEvent = "event"
	SourceClose = "closeTime"
)

var leaguePattern = regexp.MustCompile(`(?i)\b(nba|nfl|mlb|nhl|ncaa)\b`)

var vsPattern = regexp.MustCompile(`(?i)^(?:will\s+)?([a-z][a-z .]*?)\s+(?:vs\.?|at|@)\s+([a-z][a-z .]*?)(?:[:,]|$|\s+(?:win|wins|winner|moneyline|spread|over/under|total)\b)`)

var spreadPattern = regexp.MustCompile(`(?i)\b([+-]?\d+(?:\.\d+)?)\s*(?:point|pt)?\s*spread\b`)
var totalPattern = regexp.MustCompile(`(?i)\b(over|under)\s+(\d+(?:\.\d+)?)\b`)

// SportsSignals is the typed bundle extracted for SPORTS markets.
type SportsSignals struct {
	League       League
	TeamANorm    string
	TeamBNorm    string
	TeamsSource  string
	StartBucket  string // ISO instant, 1h bucket
	StartSource  string
	MarketType   SportsMarketType
	LineValue    float64
	TitleTokens  []string
	Confidence   float64
	RaceKey      string
}

// ExtractSports builds the sports signal bundle. event is the exchange
// venue's parent Event, nil for the on-chain venue or when unavailable.
func ExtractSports(m domain.Market, fp fingerprint.Fingerprint, event *domain.Event) SportsSignals {
	sig := SportsSignals{TitleTokens: fp.Tokens, League: LeagueUnknown}

	if l := leaguePattern.FindString(fp.Title); l != "" {
		sig.League = League(strings.ToUpper(l))
	} else if event != nil {
		if l := leaguePattern.FindString(event.Category); l != "" {
			sig.League = League(strings.ToUpper(l))
		}
	}

	if event != nil && event.Title != "" {
		if a, b, ok := parseTeamPair(event.Title); ok {
			sig.TeamANorm, sig.TeamBNorm = a, b
			sig.TeamsSource = SourceEvent
		}
	}
	if sig.TeamANorm == "" {
		if a, b, ok := parseTeamPair(fp.Title); ok {
			sig.TeamANorm, sig.TeamBNorm = a, b
			sig.TeamsSource = SourceTitle
		}
	}

	switch {
	case event != nil && event.StrikeDate != nil:
		sig.StartBucket = bucketHour(*event.StrikeDate)
		sig.StartSource = SourceEvent
	case m.CloseTime != nil:
		sig.StartBucket = bucketHour(*m.CloseTime)
		sig.StartSource = SourceClose
	}

	sig.MarketType, sig.LineValue = classifyMarketType(fp.Title)

	if sig.League != LeagueUnknown && sig.TeamANorm != "" {
		sig.Confidence = 0.85
	}
	sig.RaceKey = string(sig.League) + "|" + sig.TeamANorm + "|" + sig.TeamBNorm + "|" + sig.StartBucket
	return sig
}

func bucketHour(t time.Time) string {
	return t.UTC().Truncate(time.Hour).Format("2006-01-02T15:00:00Z")
}

func parseTeamPair(title string) (a, b string, ok bool) {
	m := vsPattern.FindStringSubmatch(title)
	if len(m) < 3 {
		return "", "", false
	}
	return normalizeTeam(m[1]), normalizeTeam(m[2]), true
}

func normalizeTeam(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "will ")
	return strings.Join(strings.Fields(s), " ")
}

func classifyMarketType(title string) (SportsMarketType, float64) {
	if m := spreadPattern.FindStringSubmatch(title); len(m) == 2 {
		v, _ := strconv.ParseFloat(m[1], 64)
		return SportsSpread, v
	}
	if m := totalPattern.FindStringSubmatch(title); len(m) == 3 {
		v, _ := strconv.ParseFloat(m[2], 64)
		return SportsTotal, v
	}
	if strings.Contains(strings.ToLower(title), "win") {
		return SportsMoneyline, 0
	}
	return SportsProp, 0
}

// SameTeamPair reports whether two sports signal bundles refer to the same
// unordered team pair (§4.5 hard gate).
func SameTeamPair(a, b SportsSignals) bool {
	if a.TeamANorm == "" || b.TeamANorm == "" {
		return false
	}
	return (a.TeamANorm == b.TeamANorm && a.TeamBNorm == b.TeamBNorm) ||
		(a.TeamANorm == b.TeamBNorm && a.TeamBNorm == b.TeamANorm)
}
