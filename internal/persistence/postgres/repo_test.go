package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/ports"
)

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres"), time.Second), mock
}

func TestListEligibleMarkets_BasicQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "venue", "external_id", "title", "status", "close_time", "category", "metadata",
		"derived_topic", "taxonomy_source", "is_mve", "event_ticker"}).
		AddRow(1, "kalshi", "KX-BTC", "Will BTC close above 100k?", "active", nil, "crypto", []byte(`{}`), "CRYPTO_DAILY", "rule", false, nil)

	mock.ExpectQuery("SELECT .* FROM markets").WillReturnRows(rows)

	markets, err := repo.ListEligibleMarkets(context.Background(), domain.VenueKalshi, ports.ListEligibleParams{LookbackHours: 24})
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "KX-BTC", markets[0].ExternalID)
	assert.Equal(t, domain.TopicCryptoDaily, markets[0].DerivedTopic)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertSuggestionV3_ReturnsLink(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "left_venue", "left_market_id", "right_venue", "right_market_id",
		"score", "reason", "status", "topic", "algo_version", "created_at", "updated_at"}).
		AddRow(7, "kalshi", 1, "polymarket", 2, 0.93, "a=1.000000", "suggested", "CRYPTO_DAILY", "v3.0.0", time.Now(), time.Now())

	mock.ExpectQuery("INSERT INTO market_links").WillReturnRows(rows)

	link, err := repo.UpsertSuggestionV3(context.Background(), ports.UpsertSuggestionParams{
		LeftVenue: domain.VenueKalshi, LeftMarketID: 1, RightVenue: domain.VenuePolymarket, RightMarketID: 2,
		Score: 0.93, Reason: "a=1.000000", AlgoVersion: "v3.0.0", Topic: domain.TopicCryptoDaily, Status: domain.LinkSuggested,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.ID)
	assert.Equal(t, domain.LinkSuggested, link.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLink_NoRowsReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM market_links").WillReturnError(sql.ErrNoRows)

	link, err := repo.GetLink(context.Background(), domain.VenueKalshi, 1, domain.VenuePolymarket, 2)
	require.NoError(t, err)
	assert.Nil(t, link)
}

func TestGetLink_PropagatesOtherErrors(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery("FROM market_links").WillReturnError(errors.New("connection reset"))

	link, err := repo.GetLink(context.Background(), domain.VenueKalshi, 1, domain.VenuePolymarket, 2)
	assert.Error(t, err)
	assert.Nil(t, link)
}

func TestCountActiveByTopic_GroupsByTopic(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"derived_topic", "count"}).
		AddRow("CRYPTO_DAILY", 5).
		AddRow("SPORTS", 3)
	mock.ExpectQuery("SELECT derived_topic, COUNT").WillReturnRows(rows)

	counts, err := repo.CountActiveByTopic(context.Background(), domain.VenueKalshi, 24)
	require.NoError(t, err)
	assert.Equal(t, 5, counts[domain.TopicCryptoDaily])
	assert.Equal(t, 3, counts[domain.TopicSports])
}

func TestReplaceWatchlist_DeletesThenInserts(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM quote_watchlist").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectPrepare("INSERT INTO quote_watchlist")
	mock.ExpectExec("INSERT INTO quote_watchlist").WithArgs("kalshi", int64(1), 100, "confirmed").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceWatchlist(context.Background(), domain.VenueKalshi, []domain.WatchlistEntry{
		{Venue: domain.VenueKalshi, MarketID: 1, Priority: 100, Reason: "confirmed"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
