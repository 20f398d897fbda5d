package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const macroAlgoVersion = "macro@1.4.0"

// NewMacro builds the MACRO pipeline (§4.5).
func NewMacro(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicMacro,
		algoVersion:         macroAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoConfirm: true,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractMacro(signalsOf(m))
		if sig.MacroEntity == "" {
			return nil
		}
		return []string{sig.MacroEntity}
	}
	p.candKeys = p.indexKey
	p.hardGate = macroHardGate
	p.scoreFn = macroScore
	p.confirmFn = macroSafeConfirm
	p.rejectFn = rejectOnFieldZero(p.minScore, "macroEntity", "entity_mismatch")
	return p
}

func macroHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractMacro(signalsOf(left))
	r := signals.ExtractMacro(signalsOf(right))
	if l.MacroEntity == "" || l.MacroEntity != r.MacroEntity {
		return pipeline.HardGateResult{FailReason: "macro_entity_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func macroScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractMacro(signalsOf(left))
	r := signals.ExtractMacro(signalsOf(right))

	entityScore := 0.0
	if l.MacroEntity != "" && l.MacroEntity == r.MacroEntity {
		entityScore = 1.0
	}

	periodScore, periodKind := macroPeriodSubScore(l, r)

	lNums := fingerprint.BuildFingerprint(left.Title, left.CloseTime).Numbers
	rNums := fingerprint.BuildFingerprint(right.Title, right.CloseTime).Numbers
	numberScore, _, _ := numberSubScore(lNums, rNums)

	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.50*entityScore + 0.35*periodScore + 0.10*numberScore + 0.05*textScore)

	tier := pipeline.TierWeak
	if l.Tier == signals.PeriodStrong && r.Tier == signals.PeriodStrong {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("MACRO: tier=%s me=%.2f per=%.2f[%s](%d/%d) num=%.2f txt=%.2f",
		tier, entityScore, periodScore, periodKind, l.Year, r.Year, numberScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"macroEntity": entityScore, "period": periodScore, "numbers": numberScore, "text": textScore,
		},
	}
}

// macroPeriodSubScore implements the tier-aware period comparison: exact
// year match at STRONG tier scores highest; a month_in_year pairing scores
// below the safe-confirm floor by design (§8 scenario 2).
func macroPeriodSubScore(l, r signals.MacroSignals) (float64, string) {
	if l.Year == 0 || r.Year == 0 {
		return 0, "unknown"
	}
	if l.Year != r.Year {
		return 0, "year_mismatch"
	}
	if l.Tier == signals.PeriodStrong && r.Tier == signals.PeriodStrong {
		return 0.90, "exact"
	}
	if l.Tier == signals.PeriodWeak || r.Tier == signals.PeriodWeak {
		return 0.18, "month_in_year"
	}
	return 0.22, "quarter_in_year"
}

func macroSafeConfirm(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict {
	const rule = "macro_safe_confirm@1.4.0"
	if score.Tier != pipeline.TierStrong {
		return pipeline.ConfirmVerdict{}
	}
	if score.Components["macroEntity"] < 0.50 {
		return pipeline.ConfirmVerdict{}
	}
	if score.Components["period"] < 0.22 {
		return pipeline.ConfirmVerdict{}
	}
	if score.Components["text"] < 0.10 {
		return pipeline.ConfirmVerdict{}
	}
	return pipeline.ConfirmVerdict{ShouldConfirm: true, Rule: rule, Confidence: score.Score}
}
