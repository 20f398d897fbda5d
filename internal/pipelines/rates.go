package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const ratesAlgoVersion = "rates@1.0.0"

// NewRates builds the RATES pipeline. The spec gives RATES a signal bundle
// but, unlike MACRO/ELECTIONS, leaves its weight vector unspecified; weights
// here follow the MACRO shape (entity-like signal dominant, then the
// meeting-date period, then text) since a rate decision is structurally a
// macro release keyed on an extra (bank, action) pair.
func NewRates(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicRates,
		algoVersion:         ratesAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoConfirm: false,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractRates(signalsOf(m))
		if sig.Bank == signals.BankUnknown {
			return nil
		}
		return []string{string(sig.Bank)}
	}
	p.candKeys = p.indexKey
	p.hardGate = ratesHardGate
	p.scoreFn = ratesScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "bank", "bank_mismatch")
	return p
}

func ratesHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractRates(signalsOf(left))
	r := signals.ExtractRates(signalsOf(right))
	if l.Bank == signals.BankUnknown || l.Bank != r.Bank {
		return pipeline.HardGateResult{FailReason: "bank_mismatch"}
	}
	if l.Action != "" && r.Action != "" && l.Action != r.Action {
		return pipeline.HardGateResult{FailReason: "action_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func ratesScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractRates(signalsOf(left))
	r := signals.ExtractRates(signalsOf(right))

	bankScore := 0.0
	if l.Bank != signals.BankUnknown && l.Bank == r.Bank {
		bankScore = 1.0
	}
	actionScore := 0.0
	switch {
	case l.Action == "" || r.Action == "":
		actionScore = 0.5
	case l.Action == r.Action:
		actionScore = 1.0
	}
	meetingScore := 0.0
	if l.MeetingDate != "" && l.MeetingDate == r.MeetingDate {
		meetingScore = 1.0
	}
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.40*bankScore + 0.25*actionScore + 0.25*meetingScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if meetingScore == 1.0 && actionScore == 1.0 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("RATES: bank=%s action=%.2f meeting=%.2f text=%.2f", l.Bank, actionScore, meetingScore, textScore)
	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"bank": bankScore, "action": actionScore, "meeting": meetingScore, "text": textScore,
		},
	}
}
