package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const climateAlgoVersion = "climate@1.0.0"

// NewClimate builds the CLIMATE pipeline (§4.5).
func NewClimate(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicClimate,
		algoVersion:         climateAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractClimate(signalsOf(m))
		if sig.SettleKey == "" {
			return []string{string(sig.Kind)} // month fallback key (§4.5)
		}
		return []string{string(sig.Kind) + "|" + sig.SettleKey, string(sig.Kind)}
	}
	p.candKeys = p.indexKey
	p.hardGate = climateHardGate
	p.scoreFn = climateScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "kind", "kind_mismatch")
	return p
}

func climateHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractClimate(signalsOf(left))
	r := signals.ExtractClimate(signalsOf(right))

	if l.Kind == signals.ClimateOther || l.Kind != r.Kind {
		return pipeline.HardGateResult{FailReason: "kind_mismatch"}
	}
	if l.DateType != signals.DateTypeUnknown && r.DateType != signals.DateTypeUnknown && l.SettleKey != r.SettleKey {
		return pipeline.HardGateResult{FailReason: "date_mismatch"}
	}
	if l.RegionKey != "" && r.RegionKey != "" && l.RegionKey != r.RegionKey {
		return pipeline.HardGateResult{FailReason: "region_mismatch"}
	}
	if signals.ComparatorsContradict(l.Comparator, r.Comparator) {
		return pipeline.HardGateResult{FailReason: "comparator_contradiction"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func climateScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractClimate(signalsOf(left))
	r := signals.ExtractClimate(signalsOf(right))

	kindScore := boolScore(l.Kind == r.Kind && l.Kind != signals.ClimateOther)
	dateScore := boolScore(l.SettleKey != "" && l.SettleKey == r.SettleKey)
	regionScore := boolScore(l.RegionKey != "" && l.RegionKey == r.RegionKey)
	thresholdScore, _, _ := numberSubScore(l.Thresholds, r.Thresholds)
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.35*kindScore + 0.30*dateScore + 0.20*regionScore + 0.10*thresholdScore + 0.05*textScore)

	tier := pipeline.TierWeak
	if dateScore == 1 && thresholdScore >= 0.6 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("CLIMATE: kind=%.2f date=%.2f region=%.2f thresh=%.2f txt=%.2f",
		kindScore, dateScore, regionScore, thresholdScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"kind": kindScore, "date": dateScore, "region": regionScore,
			"thresholds": thresholdScore, "text": textScore,
		},
	}
}
