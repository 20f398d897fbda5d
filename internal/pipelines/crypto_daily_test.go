package pipelines

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/pipeline"
)

func mkMarket(id int64, title string, closeTime *time.Time) domain.Market {
	return domain.Market{ID: id, Venue: domain.VenueKalshi, Title: title, CloseTime: closeTime}
}

func TestCryptoDailyHardGate_EntityMismatch(t *testing.T) {
	left := mkMarket(1, "Will BTC close above $100k on January 21, 2026?", nil)
	right := mkMarket(2, "Will ETH close above $100k on January 21, 2026?", nil)
	res := cryptoDailyHardGate(left, right)
	assert.False(t, res.Passed)
	assert.Equal(t, "entity_mismatch", res.FailReason)
}

func TestCryptoDailyHardGate_DayDiffOneAllowed(t *testing.T) {
	left := mkMarket(1, "Will BTC close above $100k on January 21, 2026?", nil)
	right := mkMarket(2, "Will BTC close above $100k on January 22, 2026?", nil)
	res := cryptoDailyHardGate(left, right)
	assert.True(t, res.Passed)
}

func TestCryptoDailyHardGate_DayDiffTwoRejected(t *testing.T) {
	left := mkMarket(1, "Will BTC close above $100k on January 21, 2026?", nil)
	right := mkMarket(2, "Will BTC close above $100k on January 23, 2026?", nil)
	res := cryptoDailyHardGate(left, right)
	assert.False(t, res.Passed)
	assert.Equal(t, "date_mismatch", res.FailReason)
}

func TestCryptoDailyScore_SameDayOverlappingRange(t *testing.T) {
	left := mkMarket(1, "Will BTC close above $100,000 on January 21, 2026?", nil)
	right := mkMarket(2, "Will BTC close above $100,000 on January 21, 2026?", nil)
	result := cryptoDailyScore(left, right)
	require.NotNil(t, result)
	assert.InDelta(t, 1.0, result.Score, 0.05)
	assert.Equal(t, pipeline.TierStrong, result.Tier)
}

func TestCryptoDaily_ApplyDedup_BracketCollapse(t *testing.T) {
	left := mkMarket(1, "Will BTC close above $100,000 on January 21, 2026?", nil)
	ladder := []domain.Market{
		mkMarket(2, "Will BTC close above $98,000 on January 21, 2026?", nil),
		mkMarket(3, "Will BTC close above $100,000 on January 21, 2026?", nil),
		mkMarket(4, "Will BTC close above $102,000 on January 21, 2026?", nil),
	}

	p := NewCryptoDaily(nil).(*genericPipeline)
	var candidates []pipeline.Candidate
	for _, r := range ladder {
		score := cryptoDailyScore(left, r)
		candidates = append(candidates, pipeline.Candidate{Left: left, Right: r, Score: *score})
	}
	deduped := p.ApplyDedup(candidates, pipeline.DedupLimits{MaxPerLeft: 3})
	assert.Len(t, deduped, 1)
	assert.Equal(t, int64(3), deduped[0].Right.ID)
}
