package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const (
	commoditiesAlgoVersion = "commodities@1.0.0"
	financeAlgoVersion     = "finance@1.0.0"
)

// NewCommodities builds the COMMODITIES pipeline. COMMODITIES and FINANCE
// share the COMMODITIES/FINANCE signal bundle (§4.3) and scoring shape;
// they are registered as two distinct topic pipelines since the registry
// dispatches on canonical topic, not on signal type.
func NewCommodities(repo ports.Repository) pipeline.Pipeline {
	return newFinanceLike(repo, domain.TopicCommodities, commoditiesAlgoVersion)
}

// NewFinance builds the FINANCE pipeline.
func NewFinance(repo ports.Repository) pipeline.Pipeline {
	return newFinanceLike(repo, domain.TopicFinance, financeAlgoVersion)
}

func newFinanceLike(repo ports.Repository, topic domain.CanonicalTopic, algoVersion string) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               topic,
		algoVersion:         algoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractFinance(signalsOf(m))
		if sig.AssetClass == signals.AssetUnknown {
			return nil
		}
		if sig.SettleKey == "" {
			return []string{string(sig.AssetClass)}
		}
		return []string{string(sig.AssetClass) + "|" + sig.SettleKey}
	}
	p.candKeys = p.indexKey
	p.hardGate = financeHardGate
	p.scoreFn = financeScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "asset", "asset_mismatch")
	return p
}

func financeHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractFinance(signalsOf(left))
	r := signals.ExtractFinance(signalsOf(right))
	if l.AssetClass == signals.AssetUnknown || l.AssetClass != r.AssetClass {
		return pipeline.HardGateResult{FailReason: "asset_class_mismatch"}
	}
	if l.Direction != signals.DirectionFlat && r.Direction != signals.DirectionFlat && l.Direction != r.Direction {
		return pipeline.HardGateResult{FailReason: "direction_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func financeScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractFinance(signalsOf(left))
	r := signals.ExtractFinance(signalsOf(right))

	assetScore := boolScore(l.AssetClass == r.AssetClass && l.AssetClass != signals.AssetUnknown)
	directionScore := boolScore(l.Direction == r.Direction)
	dateScore := boolScore(l.SettleKey != "" && l.SettleKey == r.SettleKey)

	lNums := []fingerprint.ExtractedNumber{{Value: targetOrMid(l)}}
	rNums := []fingerprint.ExtractedNumber{{Value: targetOrMid(r)}}
	valueScore, _, _ := numberSubScore(lNums, rNums)

	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.35*assetScore + 0.20*directionScore + 0.20*dateScore + 0.15*valueScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if dateScore == 1 && valueScore >= 0.6 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("FINANCE: asset=%.2f dir=%.2f date=%.2f val=%.2f txt=%.2f",
		assetScore, directionScore, dateScore, valueScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"asset": assetScore, "direction": directionScore, "date": dateScore,
			"value": valueScore, "text": textScore,
		},
	}
}

func targetOrMid(sig signals.FinanceSignals) float64 {
	if sig.TargetValue != 0 {
		return sig.TargetValue
	}
	return (sig.RangeLow + sig.RangeHigh) / 2
}
