package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const cryptoIntradayAlgoVersion = "crypto_intraday@2.6.8"

// NewCryptoIntraday builds the CRYPTO_INTRADAY pipeline (§4.5).
func NewCryptoIntraday(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicCryptoIntraday,
		algoVersion:         cryptoIntradayAlgoVersion,
		excludeSports:       true,
		lookbackHours:       24,
		minScore:            0.55,
		repo:                repo,
		supportsAutoConfirm: false,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractCrypto(m, signalsOf(m), domain.TopicCryptoIntraday)
		if sig.Entity == signals.EntityUnknown || sig.TimeBucket == "" {
			return nil
		}
		return []string{string(sig.Entity) + "|" + sig.TimeBucket}
	}
	p.candKeys = p.indexKey
	p.hardGate = cryptoIntradayHardGate
	p.scoreFn = cryptoIntradayScore
	p.rejectFn = cryptoRejectFor(p.minScore)
	return p
}

func cryptoIntradayHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractCrypto(left, signalsOf(left), domain.TopicCryptoIntraday)
	r := signals.ExtractCrypto(right, signalsOf(right), domain.TopicCryptoIntraday)

	if !signals.SameEntity(l, r) {
		return pipeline.HardGateResult{FailReason: "entity_mismatch"}
	}
	if l.MarketType != signals.MarketIntradayUpDown || r.MarketType != signals.MarketIntradayUpDown {
		return pipeline.HardGateResult{FailReason: "intraday_never_pairs_daily"}
	}
	if l.TimeBucket != r.TimeBucket {
		return pipeline.HardGateResult{FailReason: "time_bucket_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func cryptoIntradayScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractCrypto(left, signalsOf(left), domain.TopicCryptoIntraday)
	r := signals.ExtractCrypto(right, signalsOf(right), domain.TopicCryptoIntraday)

	entityScore := 0.0
	if signals.SameEntity(l, r) {
		entityScore = 1.0
	}
	bucketScore := 0.0
	if l.TimeBucket == r.TimeBucket && l.TimeBucket != "" {
		bucketScore = 1.0
	}
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.60*entityScore + 0.30*bucketScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if bucketScore == 1.0 && l.Direction != "" && l.Direction == r.Direction {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("entity=%s bucket=%s dir=%s/%s text=%.2f", l.Entity, l.TimeBucket, l.Direction, r.Direction, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"entity": entityScore, "bucket": bucketScore, "text": textScore,
		},
	}
}
