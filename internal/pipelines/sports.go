package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const sportsAlgoVersion = "sports@1.3.0"

// NewSports builds the SPORTS pipeline. Unlike every other topic, SPORTS
// fetches with excludeSports=false (the eligibility predicate's carve-out,
// §4.6) and drops MVE markets entirely before indexing.
func NewSports(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicSports,
		algoVersion:         sportsAlgoVersion,
		excludeSports:       false,
		lookbackHours:       168,
		minScore:            0.50,
		repo:                repo,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		if m.IsMve {
			return nil
		}
		sig := signals.ExtractSports(m, signalsOf(m), nil)
		if sig.League == signals.LeagueUnknown || sig.TeamANorm == "" {
			return nil
		}
		return []string{string(sig.League) + "|" + sig.TeamANorm + "|" + sig.TeamBNorm + "|" + sig.StartBucket}
	}
	p.candKeys = p.indexKey
	p.hardGate = sportsHardGate
	p.scoreFn = sportsScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "eventKey", "event_key_mismatch")
	return p
}

func sportsHardGate(left, right domain.Market) pipeline.HardGateResult {
	if left.IsMve || right.IsMve {
		return pipeline.HardGateResult{FailReason: "mve_excluded"}
	}
	l := signals.ExtractSports(left, signalsOf(left), nil)
	r := signals.ExtractSports(right, signalsOf(right), nil)

	if l.League == signals.LeagueUnknown || l.League != r.League {
		return pipeline.HardGateResult{FailReason: "league_mismatch"}
	}
	if !signals.SameTeamPair(l, r) {
		return pipeline.HardGateResult{FailReason: "team_pair_mismatch"}
	}
	if l.StartBucket != r.StartBucket {
		return pipeline.HardGateResult{FailReason: "start_bucket_mismatch"}
	}
	if !marketTypeCompatible(l.MarketType, r.MarketType) {
		return pipeline.HardGateResult{FailReason: "market_type_incompatible"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func marketTypeCompatible(a, b signals.SportsMarketType) bool {
	return a == b
}

func sportsScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractSports(left, signalsOf(left), nil)
	r := signals.ExtractSports(right, signalsOf(right), nil)

	eventKeyScore := boolScore(l.League == r.League && signals.SameTeamPair(l, r) && l.StartBucket == r.StartBucket)
	marketTypeScore := boolScore(marketTypeCompatible(l.MarketType, r.MarketType))
	lineNums := []fingerprint.ExtractedNumber{{Value: l.LineValue}}
	rNums := []fingerprint.ExtractedNumber{{Value: r.LineValue}}
	lineScore, _, _ := numberSubScore(lineNums, rNums)
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.60*eventKeyScore + 0.20*marketTypeScore + 0.10*lineScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if eventKeyScore == 1 && marketTypeScore == 1 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("SPORTS: event=%.2f type=%.2f line=%.2f txt=%.2f", eventKeyScore, marketTypeScore, lineScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"eventKey": eventKeyScore, "marketType": marketTypeScore, "line": lineScore, "text": textScore,
		},
	}
}
