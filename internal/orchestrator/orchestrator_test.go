package orchestrator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
)

const testTopic domain.CanonicalTopic = "TEST_TOPIC"

type stubPipeline struct {
	left, right []domain.Market
}

func (s *stubPipeline) Topic() domain.CanonicalTopic { return testTopic }
func (s *stubPipeline) AlgoVersion() string          { return "test@1.0.0" }
func (s *stubPipeline) SupportsAutoConfirm() bool    { return true }
func (s *stubPipeline) SupportsAutoReject() bool     { return true }
func (s *stubPipeline) MinScore() float64            { return 0.5 }

func (s *stubPipeline) FetchMarkets(ctx context.Context, venue domain.Venue, opts pipeline.FetchOptions) ([]domain.Market, error) {
	if venue == domain.VenueKalshi {
		return s.left, nil
	}
	return s.right, nil
}

func (s *stubPipeline) BuildIndex(markets []domain.Market) pipeline.Index {
	idx := make(pipeline.MapIndex)
	for _, m := range markets {
		idx["k"] = append(idx["k"], m)
	}
	return idx
}

func (s *stubPipeline) FindCandidates(left domain.Market, idx pipeline.Index) []domain.Market {
	return idx.Lookup("k")
}

func (s *stubPipeline) CheckHardGates(left, right domain.Market) pipeline.HardGateResult {
	return pipeline.HardGateResult{Passed: true}
}

func (s *stubPipeline) Score(left, right domain.Market) *pipeline.ScoreResult {
	return &pipeline.ScoreResult{Score: 0.95, Reason: "test", Tier: pipeline.TierStrong}
}

func (s *stubPipeline) ApplyDedup(candidates []pipeline.Candidate, limits pipeline.DedupLimits) []pipeline.Candidate {
	return candidates
}

func (s *stubPipeline) ShouldAutoConfirm(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict {
	return pipeline.ConfirmVerdict{ShouldConfirm: true, Rule: "always"}
}

func (s *stubPipeline) ShouldAutoReject(left, right domain.Market, score pipeline.ScoreResult) pipeline.RejectVerdict {
	return pipeline.RejectVerdict{}
}

type stubRepo struct {
	ports.Repository
	upserts []ports.UpsertSuggestionParams
}

func (r *stubRepo) GetLink(ctx context.Context, leftVenue domain.Venue, leftMarketID int64, rightVenue domain.Venue, rightMarketID int64) (*domain.MarketLink, error) {
	return nil, nil
}

func (r *stubRepo) UpsertSuggestionV3(ctx context.Context, params ports.UpsertSuggestionParams) (domain.MarketLink, error) {
	r.upserts = append(r.upserts, params)
	return domain.MarketLink{}, nil
}

func TestRun_WritesAutoConfirmedLink(t *testing.T) {
	pipeline.Register(&stubPipeline{
		left:  []domain.Market{{ID: 1, Venue: domain.VenueKalshi, Title: "left"}},
		right: []domain.Market{{ID: 2, Venue: domain.VenuePolymarket, Title: "right"}},
	})

	repo := &stubRepo{}
	result := Run(context.Background(), repo, zerolog.Nop(), Request{
		FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket,
		Topic: testTopic, MinScore: 0.5, Mode: ModeSuggest,
		AutoConfirm: true, MaxPerLeft: 10, MaxPerRight: 10,
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 1, result.Confirmed)
	assert.Equal(t, 1, result.LinksWritten)
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, domain.LinkConfirmed, repo.upserts[0].Status)
}

func TestAllowTransition(t *testing.T) {
	assert.False(t, allowTransition(domain.LinkConfirmed, domain.LinkSuggested))
	assert.True(t, allowTransition(domain.LinkConfirmed, domain.LinkRejected))
	assert.True(t, allowTransition(domain.LinkSuggested, domain.LinkRejected))
	assert.True(t, allowTransition(domain.LinkRejected, domain.LinkSuggested))
}

func TestScoreHistogram(t *testing.T) {
	var h ScoreHistogram
	h.Add(0.95)
	h.Add(0.85)
	h.Add(0.75)
	h.Add(0.65)
	h.Add(0.3)
	assert.Equal(t, 1, h.GE90)
	assert.Equal(t, 1, h.B80_90)
	assert.Equal(t, 1, h.B70_80)
	assert.Equal(t, 1, h.B60_70)
	assert.Equal(t, 1, h.LT60)
}
