package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkforge/venuematch/internal/domain"
)

func TestEvaluate_CryptoDailyConfirms(t *testing.T) {
	reason := FormatReason(map[string]float64{
		"entity": 1.0, "date": 0.95, "text": 0.20, "numbers": 1.0,
		"numDiffPct": 0, "numAbsDiff": 0,
	})
	confirm, reject := Evaluate(domain.TopicCryptoDaily, 0.95, reason)
	assert.True(t, confirm.ShouldConfirm)
	assert.False(t, reject.ShouldReject)
}

func TestEvaluate_CryptoDailyWithholdsOnWeakText(t *testing.T) {
	reason := FormatReason(map[string]float64{
		"entity": 1.0, "date": 0.95, "text": 0.02, "numbers": 1.0,
		"numDiffPct": 0, "numAbsDiff": 0,
	})
	confirm, _ := Evaluate(domain.TopicCryptoDaily, 0.95, reason)
	assert.False(t, confirm.ShouldConfirm)
}

func TestEvaluate_RejectsBelowFloor(t *testing.T) {
	reason := FormatReason(map[string]float64{"entity": 1.0, "date": 0.5, "text": 0.1})
	_, reject := Evaluate(domain.TopicCryptoDaily, 0.10, reason)
	assert.True(t, reject.ShouldReject)
	assert.Equal(t, "below_hard_floor", reject.Rule)
}

func TestEvaluate_UnknownTopicIsNoop(t *testing.T) {
	confirm, reject := Evaluate(domain.TopicUniversal, 0.99, "x=1")
	assert.False(t, confirm.ShouldConfirm)
	assert.False(t, reject.ShouldReject)
}

func TestPackFor_SportsRejectOnly(t *testing.T) {
	pack, ok := PackFor(domain.TopicSports)
	assert.True(t, ok)
	assert.Empty(t, pack.ConfirmRules)
	assert.NotEmpty(t, pack.RejectRules)
}
