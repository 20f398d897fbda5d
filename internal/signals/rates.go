package signals

import (
	"regexp"

	"github.com/linkforge/venuematch/internal/fingerprint"
)

// CentralBank is the closed set of central banks the RATES pipeline indexes.
type CentralBank string

const (
	BankFed     CentralBank = "FED"
	BankECB     CentralBank = "ECB"
	BankBOE     CentralBank = "BOE"
	BankBOJ     CentralBank = "BOJ"
	BankUnknown CentralBank = ""
)

// RateAction is the direction a meeting decision takes.
type RateAction string

const (
	ActionHike RateAction = "HIKE"
	ActionCut  RateAction = "CUT"
	ActionHold RateAction = "HOLD"
)

var bankPatterns = map[CentralBank]*regexp.Regexp{
	BankFed: regexp.MustCompile(`(?i)\b(fed|federal reserve|fomc)\b`),
	BankECB: regexp.MustCompile(`(?i)\b(ecb|european central bank)\b`),
	BankBOE: regexp.MustCompile(`(?i)\b(boe|bank of england)\b`),
	BankBOJ: regexp.MustCompile(`(?i)\b(boj|bank of japan)\b`),
}

var (
	hikePattern = regexp.MustCompile(`(?i)\b(hike|raise|increase)\b`)
	cutPattern  = regexp.MustCompile(`(?i)\b(cut|lower|decrease)\b`)
	holdPattern = regexp.MustCompile(`(?i)\b(hold|pause|unchanged|no change)\b`)
	bpsPattern  = regexp.MustCompile(`(?i)(\d+)\s?(bps|basis points?)`)
)

// RatesSignals is the typed bundle extracted for RATES markets (§4.3).
type RatesSignals struct {
	Bank        CentralBank
	Action      RateAction
	BasisPoints int
	MeetingDate string
	TargetBand  string
	TitleTokens []string
	Confidence  float64
	RaceKey     string
}

// ExtractRates builds the rates signal bundle for a fingerprint.
func ExtractRates(fp fingerprint.Fingerprint) RatesSignals {
	sig := RatesSignals{TitleTokens: fp.Tokens}

	for bank, pattern := range bankPatterns {
		if pattern.MatchString(fp.Title) {
			sig.Bank = bank
			break
		}
	}

	switch {
	case hikePattern.MatchString(fp.Title):
		sig.Action = ActionHike
	case cutPattern.MatchString(fp.Title):
		sig.Action = ActionCut
	case holdPattern.MatchString(fp.Title):
		sig.Action = ActionHold
	}

	if m := bpsPattern.FindStringSubmatch(fp.Title); len(m) == 3 {
		for _, r := range m[1] {
			sig.BasisPoints = sig.BasisPoints*10 + int(r-'0')
		}
	}

	for _, d := range fp.Dates {
		if d.Precision == fingerprint.PrecisionDay {
			sig.MeetingDate = d.SettleDate()
		} else if sig.MeetingDate == "" {
			sig.MeetingDate = d.SettlePeriod()
		}
	}

	if sig.Bank != BankUnknown {
		sig.Confidence = 0.85
	}
	sig.RaceKey = string(sig.Bank) + "|" + sig.MeetingDate
	return sig
}
