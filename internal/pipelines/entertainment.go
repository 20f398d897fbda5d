package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const entertainmentAlgoVersion = "entertainment@1.1.0"

// NewEntertainment builds the ENTERTAINMENT pipeline (§4.5).
func NewEntertainment(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicEntertainment,
		algoVersion:         entertainmentAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractEntertainment(signalsOf(m), entertainmentMetaNominees(m))
		if sig.AwardShow == signals.AwardUnknown {
			return nil
		}
		return []string{string(sig.AwardShow) + "|" + sig.Category}
	}
	p.candKeys = p.indexKey
	p.hardGate = entertainmentHardGate
	p.scoreFn = entertainmentScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "award", "award_mismatch")
	return p
}

func entertainmentMetaNominees(m domain.Market) []string {
	raw, ok := m.Metadata["nominees"]
	if !ok {
		return nil
	}
	if list, ok := raw.([]string); ok {
		return list
	}
	if anyList, ok := raw.([]any); ok {
		out := make([]string, 0, len(anyList))
		for _, v := range anyList {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func entertainmentHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractEntertainment(signalsOf(left), entertainmentMetaNominees(left))
	r := signals.ExtractEntertainment(signalsOf(right), entertainmentMetaNominees(right))
	if l.AwardShow == signals.AwardUnknown || l.AwardShow != r.AwardShow {
		return pipeline.HardGateResult{FailReason: "award_show_mismatch"}
	}
	if l.Year != 0 && r.Year != 0 && l.Year != r.Year {
		return pipeline.HardGateResult{FailReason: "year_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func entertainmentScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractEntertainment(signalsOf(left), entertainmentMetaNominees(left))
	r := signals.ExtractEntertainment(signalsOf(right), entertainmentMetaNominees(right))

	awardScore := boolScore(l.AwardShow != signals.AwardUnknown && l.AwardShow == r.AwardShow)
	categoryScore := boolScore(l.Category != "" && l.Category == r.Category)
	yearScore := boolScore(l.Year != 0 && l.Year == r.Year)
	nomineeScore := candidateOverlapScore(l.Nominees, r.Nominees)
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.30*awardScore + 0.25*categoryScore + 0.15*yearScore + 0.20*nomineeScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if awardScore == 1 && categoryScore == 1 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("ENTERTAINMENT: award=%.2f category=%.2f year=%.2f nominees=%.2f txt=%.2f",
		awardScore, categoryScore, yearScore, nomineeScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"award": awardScore, "category": categoryScore, "year": yearScore,
			"nominees": nomineeScore, "text": textScore,
		},
	}
}
