package pipelines

import (
	"fmt"
	"math"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const cryptoDailyAlgoVersion = "crypto_daily@2.6.8"

// NewCryptoDaily builds the CRYPTO_DAILY pipeline (§4.5).
func NewCryptoDaily(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicCryptoDaily,
		algoVersion:         cryptoDailyAlgoVersion,
		excludeSports:       true,
		lookbackHours:       168,
		minScore:            0.55,
		repo:                repo,
		supportsAutoConfirm: true,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractCrypto(m, signalsOf(m), domain.TopicCryptoDaily)
		if sig.Entity == signals.EntityUnknown || sig.SettleDate == "" {
			return nil
		}
		return []string{string(sig.Entity) + "|" + sig.SettleDate}
	}
	p.candKeys = p.indexKey
	p.dedupKeyFn = func(m domain.Market) string {
		sig := signals.ExtractCrypto(m, signalsOf(m), domain.TopicCryptoDaily)
		return fmt.Sprintf("%s|%s|%s", sig.Entity, sig.SettleDate, sig.Comparator)
	}
	p.hardGate = cryptoDailyHardGate
	p.scoreFn = cryptoDailyScore
	p.confirmFn = cryptoDailySafeConfirm
	p.rejectFn = cryptoRejectFor(p.minScore)
	return p
}

func cryptoDailyHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractCrypto(left, signalsOf(left), domain.TopicCryptoDaily)
	r := signals.ExtractCrypto(right, signalsOf(right), domain.TopicCryptoDaily)

	if !signals.SameEntity(l, r) {
		return pipeline.HardGateResult{FailReason: "entity_mismatch"}
	}
	if l.MarketType == signals.MarketIntradayUpDown || r.MarketType == signals.MarketIntradayUpDown {
		return pipeline.HardGateResult{FailReason: "intraday_never_pairs_daily"}
	}
	if l.DateType == signals.DateTypeDayExact && r.DateType == signals.DateTypeDayExact {
		diff, ok := dayDiff(l.SettleDate, r.SettleDate)
		if !ok || diff > 1 {
			return pipeline.HardGateResult{FailReason: "date_mismatch"}
		}
	} else if l.DateType == signals.DateTypeMonthEnd || l.DateType == signals.DateTypeQuarter {
		if l.SettlePeriod != r.SettlePeriod {
			return pipeline.HardGateResult{FailReason: "period_mismatch"}
		}
	}
	return pipeline.HardGateResult{Passed: true}
}

func dayDiff(a, b string) (int, bool) {
	ta, errA := parseDate(a)
	tb, errB := parseDate(b)
	if errA != nil || errB != nil {
		return 0, false
	}
	diff := int(ta.Sub(tb).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff, true
}

func cryptoDailyScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractCrypto(left, signalsOf(left), domain.TopicCryptoDaily)
	r := signals.ExtractCrypto(right, signalsOf(right), domain.TopicCryptoDaily)

	entityScore := 0.0
	if signals.SameEntity(l, r) {
		entityScore = 1.0
	}

	dateScore, dayDiffVal := dateSubScore(l, r)
	numberScore, numDiffPct, numAbsDiff := numberSubScore(l.Numbers, r.Numbers)
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.45*entityScore + 0.35*dateScore + 0.15*numberScore + 0.05*textScore)

	tier := pipeline.TierWeak
	if (l.DateType == signals.DateTypeDayExact && dayDiffVal == 0 || l.SettlePeriod == r.SettlePeriod && l.SettlePeriod != "") && numberScore >= 0.6 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("entity=%s dateType=%s date=%.2f(%dd) num=%.2f[%s] text=%.2f",
		l.Entity, l.DateType, dateScore, dayDiffVal, numberScore, contextLabel(l), textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"entity": entityScore, "date": dateScore, "numbers": numberScore, "text": textScore,
			"numDiffPct": numDiffPct, "numAbsDiff": numAbsDiff,
		},
	}
}

func contextLabel(l signals.CryptoSignals) string {
	for _, c := range l.NumberCtx {
		if c != signals.ContextUnknown {
			return string(c)
		}
	}
	return string(signals.ContextUnknown)
}

func dateSubScore(l, r signals.CryptoSignals) (float64, int) {
	if l.DateType == signals.DateTypeDayExact && r.DateType == signals.DateTypeDayExact {
		diff, ok := dayDiff(l.SettleDate, r.SettleDate)
		if !ok {
			return 0, 0
		}
		switch diff {
		case 0:
			return 1.0, 0
		case 1:
			return 0.6, 1
		default:
			return 0, diff
		}
	}
	if l.SettlePeriod != "" && l.SettlePeriod == r.SettlePeriod {
		return 1.0, 0
	}
	return 0, 0
}

func numberSubScore(a, b []fingerprint.ExtractedNumber) (score, diffPct, absDiff float64) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 100, math.Inf(1)
	}
	minA, maxA := rangeOf(a)
	minB, maxB := rangeOf(b)
	mid1 := (minA + maxA) / 2
	mid2 := (minB + maxB) / 2
	absDiff = math.Abs(mid1 - mid2)

	if minA <= maxB && minB <= maxA {
		return 1.0, 0, absDiff
	}
	if mid1 == 0 && mid2 == 0 {
		return 0.9, 0, absDiff
	}
	gap := absDiff / math.Max(math.Abs(mid1), math.Abs(mid2))
	switch {
	case gap < 0.01:
		return 0.9, gap * 100, absDiff
	case gap < 0.05:
		return 0.7, gap * 100, absDiff
	case gap < 0.10:
		return 0.4, gap * 100, absDiff
	default:
		return 0, gap * 100, absDiff
	}
}

func rangeOf(nums []fingerprint.ExtractedNumber) (float64, float64) {
	min, max := nums[0].Value, nums[0].Value
	for _, n := range nums[1:] {
		if n.Value < min {
			min = n.Value
		}
		if n.Value > max {
			max = n.Value
		}
	}
	return min, max
}

func cryptoDailySafeConfirm(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict {
	const rule = "crypto_daily_safe_confirm@2.6.8"
	if score.Score < 0.88 {
		return pipeline.ConfirmVerdict{}
	}
	if score.Components["date"] < 0.90 {
		return pipeline.ConfirmVerdict{}
	}
	textScore := score.Components["text"]
	if textScore < 0.12 {
		return pipeline.ConfirmVerdict{}
	}
	numDiffPct := score.Components["numDiffPct"]
	numAbsDiff := score.Components["numAbsDiff"]
	if !(numAbsDiff <= 1 || numDiffPct <= 0.1) {
		return pipeline.ConfirmVerdict{}
	}
	return pipeline.ConfirmVerdict{ShouldConfirm: true, Rule: rule, Confidence: score.Score}
}

// cryptoRejectFor builds a reject function bound to the pipeline's hard
// floor, shared by both crypto pipelines (§4.7 reject pack) — both key their
// ScoreResult.Components on "entity".
func cryptoRejectFor(floor float64) rejectFunc {
	return rejectOnFieldZero(floor, "entity", "entity_mismatch")
}
