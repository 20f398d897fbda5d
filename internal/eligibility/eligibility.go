// Package eligibility implements the single canonical eligibility filter
// every fetch path uses (§4.9).
package eligibility

import (
	"time"

	"github.com/linkforge/venuematch/internal/domain"
)

// ReasonCode is one diagnostic code explainEligibility can return.
type ReasonCode string

const (
	ReasonEligible      ReasonCode = "eligible"
	ReasonStatusTerminal ReasonCode = "status_terminal"
	ReasonStaleActive   ReasonCode = "stale_active"
	ReasonWithinGrace   ReasonCode = "within_grace"
	ReasonClosedTooOld  ReasonCode = "closed_too_old"
	ReasonNoCloseTime   ReasonCode = "no_close_time"
)

// StaleSeverity further categorizes a stale_active market (§4.9).
type StaleSeverity string

const (
	StaleMinor StaleSeverity = "minor"
	StaleMajor StaleSeverity = "major"
	StaleOK    StaleSeverity = "ok"
)

// Params bounds the eligibility window; defaults per §6/§9.
type Params struct {
	GraceMinutes    int
	ForwardHours    int
	LookbackHours   int
	IncludeResolved bool // diagnostics only, §4.9
}

// DefaultParams returns the topic-specific defaults (§4.9, §6 env vars).
func DefaultParams(topic domain.CanonicalTopic) Params {
	switch topic {
	case domain.TopicCryptoDaily:
		return Params{GraceMinutes: 60, ForwardHours: 72, LookbackHours: 168}
	case domain.TopicCryptoIntraday:
		return Params{GraceMinutes: 60, ForwardHours: 24, LookbackHours: 168}
	default:
		return Params{GraceMinutes: 60, ForwardHours: 8760, LookbackHours: 720}
	}
}

// IsEligible applies the canonical filter (§4.9).
func IsEligible(m domain.Market, now time.Time, p Params) bool {
	codes := Explain(m, now, p)
	for _, c := range codes {
		if c == ReasonEligible {
			return true
		}
	}
	return false
}

// Explain returns the reason codes explaining m's eligibility state (§4.9).
func Explain(m domain.Market, now time.Time, p Params) []ReasonCode {
	grace := time.Duration(p.GraceMinutes) * time.Minute
	forward := time.Duration(p.ForwardHours) * time.Hour
	lookback := time.Duration(p.LookbackHours) * time.Hour

	switch m.Status {
	case domain.StatusActive:
		if m.CloseTime == nil {
			return []ReasonCode{ReasonEligible, ReasonNoCloseTime}
		}
		lowerBound := now.Add(-grace)
		upperBound := now.Add(forward)
		if m.CloseTime.Before(lowerBound) {
			return []ReasonCode{ReasonStaleActive}
		}
		if m.CloseTime.After(upperBound) {
			return []ReasonCode{ReasonStatusTerminal}
		}
		if m.CloseTime.Before(now) {
			return []ReasonCode{ReasonEligible, ReasonWithinGrace}
		}
		return []ReasonCode{ReasonEligible}

	case domain.StatusClosed:
		if m.CloseTime == nil {
			return []ReasonCode{ReasonNoCloseTime}
		}
		if m.CloseTime.Before(now.Add(-lookback)) {
			return []ReasonCode{ReasonClosedTooOld}
		}
		return []ReasonCode{ReasonEligible}

	case domain.StatusResolved, domain.StatusArchived:
		if p.IncludeResolved && m.CloseTime != nil && !m.CloseTime.Before(now.Add(-lookback)) {
			return []ReasonCode{ReasonEligible}
		}
		return []ReasonCode{ReasonStatusTerminal}

	default:
		return []ReasonCode{ReasonStatusTerminal}
	}
}

// CategorizeStaleActive buckets a stale active market's age relative to
// grace: minor within 2x grace, major otherwise, ok if not stale at all.
// §8's scenario table reads as a flat "minor <= grace, else ok" cutoff, but
// §4.9's window definition is the one this follows — a market just past
// grace is still a minor staleness, not an immediate major one.
func CategorizeStaleActive(m domain.Market, now time.Time, p Params) StaleSeverity {
	if m.Status != domain.StatusActive || m.CloseTime == nil {
		return StaleOK
	}
	grace := time.Duration(p.GraceMinutes) * time.Minute
	age := now.Sub(*m.CloseTime)
	if age <= grace {
		return StaleOK
	}
	if age <= 2*grace {
		return StaleMinor
	}
	return StaleMajor
}
