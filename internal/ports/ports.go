// Package ports declares the interfaces the matching core consumes but does
// not own: venue adapters and the relational store (§6). Concrete
// implementations (HTTP venue clients, the postgres repository) live outside
// this package; the core is written entirely against these contracts so it
// never imports a concrete adapter.
package ports

import (
	"context"
	"time"

	"github.com/linkforge/venuematch/internal/domain"
)

// RawMarket is the venue-agnostic DTO an AdapterPort yields.
type RawMarket struct {
	Venue      domain.Venue
	ExternalID string
	Title      string
	Status     domain.MarketStatus
	CloseTime  *time.Time
	Category   string
	Metadata   map[string]any
}

// RawQuote is a single top-of-book observation for one market outcome.
type RawQuote struct {
	Venue      domain.Venue
	ExternalID string
	Side       string
	Price      float64
	ObservedAt time.Time
}

// FetchMarketsParams bounds one page of an adapter fetch.
type FetchMarketsParams struct {
	Cursor string
	Limit  int
}

// AdapterPort is implemented by venue-specific HTTP clients (out of scope
// for this repository, §1) and consumed by the ingestion path that feeds
// the Repository.
type AdapterPort interface {
	FetchMarkets(ctx context.Context, params FetchMarketsParams) (markets []RawMarket, nextCursor string, err error)
	FetchQuotes(ctx context.Context, markets []RawMarket) ([]RawQuote, error)
}

// ListEligibleParams drives Repository.ListEligibleMarkets (§6).
type ListEligibleParams struct {
	LookbackHours   int
	Limit           int
	TitleKeywords   []string
	OrderBy         string
	ExcludeSports   bool
}

// CryptoListParams is the crypto-specialized variant accepted by the
// repository so ticker-boundary regexes (§4.1) are pushed into the query.
type CryptoListParams struct {
	ListEligibleParams
	FullNameKeywords []string
	TickerPatterns   []string // regex source, one per ticker, per §4.1
}

// UpsertSuggestionParams is the single write path for MarketLink rows (§6).
type UpsertSuggestionParams struct {
	LeftVenue     domain.Venue
	LeftMarketID  int64
	RightVenue    domain.Venue
	RightMarketID int64
	Score         float64
	Reason        string
	AlgoVersion   string
	Topic         domain.CanonicalTopic
	Status        domain.LinkStatus
}

// MarketUpdate carries the only fields the classifier/MVE detector may
// mutate on a Market (§3 invariants).
type MarketUpdate struct {
	MarketID       int64
	DerivedTopic   domain.CanonicalTopic
	TaxonomySource domain.TaxonomySource
	IsMve          bool
	Force          bool
}

// LinkUpdate carries the only fields the rule engines may mutate on a
// MarketLink: status and reason, never score or the market pair (§5).
type LinkUpdate struct {
	LinkID int64
	Status domain.LinkStatus
	Reason string
}

// DerivedTopicFilter narrows Repository.ListMarketsByDerivedTopic.
type DerivedTopicFilter struct {
	Venue         domain.Venue
	LookbackHours int
	Limit         int
}

// Repository is the relational-store port (§6). The core only reads/writes
// the columns described in §3; schema and migration ownership sit outside
// this repository.
type Repository interface {
	ListEligibleMarkets(ctx context.Context, venue domain.Venue, params ListEligibleParams) ([]domain.Market, error)
	ListEligibleCryptoMarkets(ctx context.Context, venue domain.Venue, params CryptoListParams) ([]domain.Market, error)
	ListMarketsByDerivedTopic(ctx context.Context, topic domain.CanonicalTopic, filter DerivedTopicFilter) ([]domain.Market, error)

	UpsertSuggestionV3(ctx context.Context, params UpsertSuggestionParams) (domain.MarketLink, error)
	GetLink(ctx context.Context, leftVenue domain.Venue, leftMarketID int64, rightVenue domain.Venue, rightMarketID int64) (*domain.MarketLink, error)
	ListLinksByStatus(ctx context.Context, topic domain.CanonicalTopic, status domain.LinkStatus) ([]domain.MarketLink, error)

	UpdateMarket(ctx context.Context, update MarketUpdate) error
	UpdateLink(ctx context.Context, update LinkUpdate) error

	CountActiveByTopic(ctx context.Context, venue domain.Venue, lookbackHours int) (map[domain.CanonicalTopic]int, error)
	CountRecentQuotes(ctx context.Context, venue domain.Venue, within time.Duration) (int64, error)

	ListWatchlist(ctx context.Context, venue domain.Venue) ([]domain.WatchlistEntry, error)
	ReplaceWatchlist(ctx context.Context, venue domain.Venue, entries []domain.WatchlistEntry) error

	GetIngestionState(ctx context.Context, venue domain.Venue, jobName string) (*domain.IngestionState, error)
}
