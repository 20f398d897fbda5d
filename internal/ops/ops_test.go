package ops

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/watchlist"
)

const topicA domain.CanonicalTopic = "OPS_TEST_A"
const topicB domain.CanonicalTopic = "OPS_TEST_B"

type stubRepo struct {
	ports.Repository
	active      map[domain.Venue]map[domain.CanonicalTopic]int
	recentQuotes map[domain.Venue]int64
	links       map[domain.CanonicalTopic]map[domain.LinkStatus][]domain.MarketLink
	replaced    map[domain.Venue][]domain.WatchlistEntry
}

func (r *stubRepo) CountActiveByTopic(ctx context.Context, venue domain.Venue, lookbackHours int) (map[domain.CanonicalTopic]int, error) {
	return r.active[venue], nil
}

func (r *stubRepo) CountRecentQuotes(ctx context.Context, venue domain.Venue, within time.Duration) (int64, error) {
	return r.recentQuotes[venue], nil
}

func (r *stubRepo) ListLinksByStatus(ctx context.Context, topic domain.CanonicalTopic, status domain.LinkStatus) ([]domain.MarketLink, error) {
	return r.links[topic][status], nil
}

func (r *stubRepo) ListWatchlist(ctx context.Context, venue domain.Venue) ([]domain.WatchlistEntry, error) {
	return r.replaced[venue], nil
}

func (r *stubRepo) ReplaceWatchlist(ctx context.Context, venue domain.Venue, entries []domain.WatchlistEntry) error {
	if r.replaced == nil {
		r.replaced = map[domain.Venue][]domain.WatchlistEntry{}
	}
	r.replaced[venue] = entries
	return nil
}

func baseRepo() *stubRepo {
	return &stubRepo{
		active: map[domain.Venue]map[domain.CanonicalTopic]int{
			domain.VenueKalshi:     {topicA: 5, topicB: 0},
			domain.VenuePolymarket: {topicA: 5, topicB: 5},
		},
		recentQuotes: map[domain.Venue]int64{domain.VenueKalshi: 10, domain.VenuePolymarket: 10},
		links:        map[domain.CanonicalTopic]map[domain.LinkStatus][]domain.MarketLink{},
	}
}

func TestRun_DropsZeroOverlapTopic(t *testing.T) {
	repo := baseRepo()
	result := Run(context.Background(), repo, nil, zerolog.Nop(), Request{
		Topics: []domain.CanonicalTopic{topicA, topicB}, FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket,
	})

	assert.Equal(t, "zero_overlap", result.TopicsSkipped[topicB])
	assert.Contains(t, result.TopicsRun, topicA)
	assert.NotContains(t, result.TopicsRun, topicB)
}

func TestRun_AllTopicsDroppedReturnsStepError(t *testing.T) {
	repo := baseRepo()
	result := Run(context.Background(), repo, nil, zerolog.Nop(), Request{
		Topics: []domain.CanonicalTopic{topicB}, FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket,
	})

	require.Contains(t, result.StepErrors, "preflight")
	assert.Empty(t, result.TopicsRun)
}

func TestRun_FlagsStaleQuoteVenue(t *testing.T) {
	repo := baseRepo()
	repo.recentQuotes[domain.VenuePolymarket] = 0
	result := Run(context.Background(), repo, nil, zerolog.Nop(), Request{
		Topics: []domain.CanonicalTopic{topicA}, FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket,
	})

	assert.Contains(t, result.StaleQuoteVenues, domain.VenuePolymarket)
	assert.False(t, result.KPI.Healthy)
}

func TestRun_EveryRunIDIsUnique(t *testing.T) {
	repo := baseRepo()
	r1 := Run(context.Background(), repo, nil, zerolog.Nop(), Request{Topics: []domain.CanonicalTopic{topicA}, FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket})
	r2 := Run(context.Background(), repo, nil, zerolog.Nop(), Request{Topics: []domain.CanonicalTopic{topicA}, FromVenue: domain.VenueKalshi, ToVenue: domain.VenuePolymarket})
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestSyncWatchlists_ConfirmedAlwaysIncluded(t *testing.T) {
	repo := baseRepo()
	repo.links[topicA] = map[domain.LinkStatus][]domain.MarketLink{
		domain.LinkConfirmed: {{LeftVenue: domain.VenueKalshi, LeftMarketID: 1, RightVenue: domain.VenuePolymarket, RightMarketID: 2, Score: 0.9}},
	}

	rdb, mock := redismock.NewClientMock()
	mock.ExpectDel("venuematch:watchlist:kalshi").SetVal(1)
	mock.ExpectDel("venuematch:watchlist:polymarket").SetVal(1)
	cache := watchlist.New(rdb, repo, time.Minute)
	err := syncWatchlists(context.Background(), repo, cache, []domain.CanonicalTopic{topicA}, Request{})
	require.NoError(t, err)

	assert.Len(t, repo.replaced[domain.VenueKalshi], 1)
	assert.Equal(t, domain.PriorityConfirmed, repo.replaced[domain.VenueKalshi][0].Priority)
}

func TestCapWatchlist_RespectsLimits(t *testing.T) {
	entries := make([]domain.WatchlistEntry, 10)
	capped := capWatchlist(entries, 3, 100)
	assert.Len(t, capped, 3)

	capped = capWatchlist(entries, 0, 4)
	assert.Len(t, capped, 4)
}
