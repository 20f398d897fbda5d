package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// AwardShow is the closed set of award shows the ENTERTAINMENT pipeline
// indexes on.
type AwardShow string

const (
	AwardOscars       AwardShow = "OSCARS"
	AwardGrammys      AwardShow = "GRAMMYS"
	AwardEmmys        AwardShow = "EMMYS"
	AwardGoldenGlobes AwardShow = "GOLDEN_GLOBES"
	AwardTonys        AwardShow = "TONYS"
	AwardBaftas       AwardShow = "BAFTAS"
	AwardMTVA         AwardShow = "MTVA"
	AwardUnknown      AwardShow = "UNKNOWN"
)

var awardPatterns = []struct {
	pattern *regexp.Regexp
	show    AwardShow
}{
	{regexp.MustCompile(`(?i)\boscars?\b`), AwardOscars},
	{regexp.MustCompile(`(?i)\bgrammys?\b`), AwardGrammys},
	{regexp.MustCompile(`(?i)\bemmys?\b`), AwardEmmys},
	{regexp.MustCompile(`(?i)\bgolden globes?\b`), AwardGoldenGlobes},
	{regexp.MustCompile(`(?i)\btonys?\b`), AwardTonys},
	{regexp.MustCompile(`(?i)\bbaftas?\b`), AwardBaftas},
	{regexp.MustCompile(`(?i)\bmtv(a| awards)?\b`), AwardMTVA},
}

var categoryNormalize = map[string]string{
	"best picture":        "BEST_PICTURE",
	"picture of the year": "BEST_PICTURE",
	"best actor":          "BEST_ACTOR",
	"best actress":        "BEST_ACTRESS",
	"best director":       "BEST_DIRECTOR",
	"album of the year":   "ALBUM_OF_THE_YEAR",
	"song of the year":    "SONG_OF_THE_YEAR",
}

// EntertainmentSignals is the typed bundle extracted for ENTERTAINMENT
// markets.
type EntertainmentSignals struct {
	AwardShow   AwardShow
	MediaType   string
	Year        int
	Category    string
	Nominees    []string
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractEntertainment builds the entertainment signal bundle for a
// fingerprint. Nominees come from venue metadata; title free-text nominee
// extraction is unreliable enough to skip.
func ExtractEntertainment(fp fingerprint.Fingerprint, metaNominees []string) EntertainmentSignals {
	sig := EntertainmentSignals{TitleTokens: fp.Tokens, AwardShow: AwardUnknown}
	lower := strings.ToLower(fp.Title)

	for _, ap := range awardPatterns {
		if ap.pattern.MatchString(fp.Title) {
			sig.AwardShow = ap.show
			break
		}
	}

	for phrase, norm := range categoryNormalize {
		if strings.Contains(lower, phrase) {
			sig.Category = norm
			break
		}
	}

	for _, d := range fp.Dates {
		if d.Year != 0 {
			sig.Year = d.Year
			break
		}
	}

	sig.Nominees = normalizeCandidates(metaNominees)

	if sig.AwardShow != AwardUnknown {
		sig.Confidence = 0.85
	}
	sig.RaceKey = string(sig.AwardShow) + "|" + sig.Category + "|" + strconv.Itoa(sig.Year)
	return sig
}
