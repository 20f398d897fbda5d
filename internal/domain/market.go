package domain

import "time"

// Venue identifies one of the two trading venues the core reconciles.
type Venue string

const (
	VenueKalshi     Venue = "kalshi"
	VenuePolymarket Venue = "polymarket"
)

// MarketStatus is the lifecycle state of a Market as reported by its venue.
type MarketStatus string

const (
	StatusActive   MarketStatus = "active"
	StatusClosed   MarketStatus = "closed"
	StatusResolved MarketStatus = "resolved"
	StatusArchived MarketStatus = "archived"
)

// LinkStatus is the lifecycle state of a MarketLink.
type LinkStatus string

const (
	LinkSuggested LinkStatus = "suggested"
	LinkConfirmed LinkStatus = "confirmed"
	LinkRejected  LinkStatus = "rejected"
)

// Market is a question being traded at one venue. Metadata is an opaque
// key-value bag at this boundary; extractors parse the fields they need
// out of it defensively (§4.1/§9 "runtime-shaped metadata").
type Market struct {
	ID             int64
	Venue          Venue
	ExternalID     string
	Title          string
	Status         MarketStatus
	CloseTime      *time.Time
	Category       string
	Metadata       map[string]any
	DerivedTopic   CanonicalTopic
	TaxonomySource TaxonomySource
	IsMve          bool

	// EventTicker is populated only for the exchange venue (kalshi); it
	// links the market back to its parent Event.
	EventTicker string
}

// MetaString reads a string field from Metadata, checking the snake_case and
// camelCase spellings venues commonly use interchangeably.
func (m Market) MetaString(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m.Metadata[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// MetaBool reads a boolean field from Metadata defensively; numeric and
// string encodings ("1", "true") are accepted since venue payloads are
// untyped JSON at the boundary.
func (m Market) MetaBool(keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := m.Metadata[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			return t == "1" || t == "true" || t == "yes", true
		case float64:
			return t != 0, true
		}
	}
	return false, false
}

// Outcome is one binary side of a Market.
type Outcome struct {
	ID       int64
	MarketID int64
	Side     string // "yes" | "no"
}

// Event is the exchange-venue-only parent grouping for related markets
// (e.g. all strike-price ladders for one underlying question).
type Event struct {
	EventTicker         string
	SeriesTicker        string
	Title               string
	Subtitle            string
	Category            string
	StrikeDate          *time.Time
	MutuallyExclusive   bool
	MarketCount         int
}

// MarketLink is a directed, scored pairing of two markets across venues.
type MarketLink struct {
	ID            int64
	LeftVenue     Venue
	LeftMarketID  int64
	RightVenue    Venue
	RightMarketID int64
	Score         float64
	Reason        string
	Status        LinkStatus
	Topic         CanonicalTopic
	AlgoVersion   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IngestionState tracks per-(venue,job) ingestion health. Read-only from the
// core (§6); owned by the adapter/ingestion collaborator.
type IngestionState struct {
	Venue               Venue
	JobName             string
	LastSuccess         *time.Time
	LastError           string
	ConsecutiveFailures int
}

// WatchlistPriority buckets, highest first (§3).
const (
	PriorityConfirmed     = 100
	PrioritySafeConfirm   = 80
	PriorityTopSuggested  = 50
)

// WatchlistEntry is a reconstructed, non-authoritative quote-polling hint.
type WatchlistEntry struct {
	Venue    Venue
	MarketID int64
	Priority int
	Reason   string
}
