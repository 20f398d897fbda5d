// Package postgres implements the relational-store port (internal/ports)
// against PostgreSQL, in the sqlx + lib/pq idiom the teacher's
// internal/persistence/postgres package uses for its own repositories.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/ports"
)

// Repo implements ports.Repository against a sqlx-wrapped *sql.DB.
type Repo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// New builds a Repo. timeout bounds every individual query (§5's "every
// external call has a timeout" applies equally to the store).
func New(db *sqlx.DB, timeout time.Duration) *Repo {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Repo{db: db, timeout: timeout}
}

var _ ports.Repository = (*Repo)(nil)

type marketRow struct {
	ID             int64          `db:"id"`
	Venue          string         `db:"venue"`
	ExternalID     string         `db:"external_id"`
	Title          string         `db:"title"`
	Status         string         `db:"status"`
	CloseTime      sql.NullTime   `db:"close_time"`
	Category       sql.NullString `db:"category"`
	Metadata       []byte         `db:"metadata"`
	DerivedTopic   sql.NullString `db:"derived_topic"`
	TaxonomySource sql.NullString `db:"taxonomy_source"`
	IsMve          bool           `db:"is_mve"`
	EventTicker    sql.NullString `db:"event_ticker"`
}

func (r marketRow) toDomain() (domain.Market, error) {
	m := domain.Market{
		ID:         r.ID,
		Venue:      domain.Venue(r.Venue),
		ExternalID: r.ExternalID,
		Title:      r.Title,
		Status:     domain.MarketStatus(r.Status),
		Category:   r.Category.String,
		IsMve:      r.IsMve,
	}
	if r.CloseTime.Valid {
		t := r.CloseTime.Time
		m.CloseTime = &t
	}
	if r.DerivedTopic.Valid {
		m.DerivedTopic = domain.CanonicalTopic(r.DerivedTopic.String)
	}
	if r.TaxonomySource.Valid {
		m.TaxonomySource = domain.TaxonomySource(r.TaxonomySource.String)
	}
	m.EventTicker = r.EventTicker.String
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &m.Metadata); err != nil {
			return domain.Market{}, fmt.Errorf("unmarshal market metadata: %w", err)
		}
	}
	return m, nil
}

const marketColumns = `id, venue, external_id, title, status, close_time, category, metadata, derived_topic, taxonomy_source, is_mve, event_ticker`

func (r *Repo) scanMarkets(rows *sqlx.Rows) ([]domain.Market, error) {
	var out []domain.Market
	for rows.Next() {
		var row marketRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan market row: %w", err)
		}
		m, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListEligibleMarkets returns active markets for venue within the lookback
// window, optionally filtered by title keyword and sports-exclusion (§6).
func (r *Repo) ListEligibleMarkets(ctx context.Context, venue domain.Venue, params ports.ListEligibleParams) ([]domain.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM markets
		WHERE venue = $1 AND status = 'active'
		AND (close_time IS NULL OR close_time >= now() - ($2 * interval '1 hour'))`, marketColumns)
	args := []interface{}{venue, params.LookbackHours}

	if len(params.TitleKeywords) > 0 {
		query += fmt.Sprintf(" AND title ILIKE ANY($%d)", len(args)+1)
		args = append(args, pq.Array(likePatterns(params.TitleKeywords)))
	}
	if params.ExcludeSports {
		query += " AND derived_topic IS DISTINCT FROM 'SPORTS'"
	}

	orderBy := "close_time ASC NULLS LAST"
	if params.OrderBy != "" {
		orderBy = params.OrderBy
	}
	query += " ORDER BY " + orderBy

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, params.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eligible markets: %w", err)
	}
	defer rows.Close()
	return r.scanMarkets(rows)
}

// ListEligibleCryptoMarkets layers full-name keyword and ticker-pattern
// filters on top of ListEligibleMarkets (§4.1's ticker-boundary regexes
// pushed into the query rather than evaluated in Go).
func (r *Repo) ListEligibleCryptoMarkets(ctx context.Context, venue domain.Venue, params ports.CryptoListParams) ([]domain.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM markets
		WHERE venue = $1 AND status = 'active'
		AND (close_time IS NULL OR close_time >= now() - ($2 * interval '1 hour'))`, marketColumns)
	args := []interface{}{venue, params.LookbackHours}

	if len(params.FullNameKeywords) > 0 {
		query += fmt.Sprintf(" AND title ILIKE ANY($%d)", len(args)+1)
		args = append(args, pq.Array(likePatterns(params.FullNameKeywords)))
	}
	if len(params.TickerPatterns) > 0 {
		query += fmt.Sprintf(" AND title ~* ANY($%d)", len(args)+1)
		args = append(args, pq.Array(params.TickerPatterns))
	}

	query += " ORDER BY close_time ASC NULLS LAST"
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, params.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list eligible crypto markets: %w", err)
	}
	defer rows.Close()
	return r.scanMarkets(rows)
}

// ListMarketsByDerivedTopic powers the per-topic orchestrator fetch (§4.6
// step 1) once classification has already been persisted.
func (r *Repo) ListMarketsByDerivedTopic(ctx context.Context, topic domain.CanonicalTopic, filter ports.DerivedTopicFilter) ([]domain.Market, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT %s FROM markets
		WHERE venue = $1 AND derived_topic = $2 AND status = 'active'
		AND (close_time IS NULL OR close_time >= now() - ($3 * interval '1 hour'))
		ORDER BY close_time ASC NULLS LAST`, marketColumns)
	args := []interface{}{filter.Venue, topic, filter.LookbackHours}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list markets by derived topic: %w", err)
	}
	defer rows.Close()
	return r.scanMarkets(rows)
}

// UpsertSuggestionV3 is the single write path for market_links rows (§6).
// A conflict on the (left, right) unique pair re-scores in place rather
// than inserting a duplicate; the status transition itself is validated
// by the caller (orchestrator.allowTransition), not by this layer.
func (r *Repo) UpsertSuggestionV3(ctx context.Context, params ports.UpsertSuggestionParams) (domain.MarketLink, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO market_links (left_venue, left_market_id, right_venue, right_market_id, score, reason, algo_version, topic, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (left_venue, left_market_id, right_venue, right_market_id)
		DO UPDATE SET score = EXCLUDED.score, reason = EXCLUDED.reason, algo_version = EXCLUDED.algo_version,
			status = EXCLUDED.status, updated_at = now()
		RETURNING id, left_venue, left_market_id, right_venue, right_market_id, score, reason, status, topic, algo_version, created_at, updated_at`

	var row linkRow
	err := r.db.QueryRowxContext(ctx, query,
		params.LeftVenue, params.LeftMarketID, params.RightVenue, params.RightMarketID,
		params.Score, params.Reason, params.AlgoVersion, params.Topic, params.Status,
	).StructScan(&row)
	if err != nil {
		return domain.MarketLink{}, fmt.Errorf("upsert market link: %w", err)
	}
	return row.toDomain(), nil
}

type linkRow struct {
	ID            int64     `db:"id"`
	LeftVenue     string    `db:"left_venue"`
	LeftMarketID  int64     `db:"left_market_id"`
	RightVenue    string    `db:"right_venue"`
	RightMarketID int64     `db:"right_market_id"`
	Score         float64   `db:"score"`
	Reason        string    `db:"reason"`
	Status        string    `db:"status"`
	Topic         string    `db:"topic"`
	AlgoVersion   string    `db:"algo_version"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (row linkRow) toDomain() domain.MarketLink {
	return domain.MarketLink{
		ID: row.ID, LeftVenue: domain.Venue(row.LeftVenue), LeftMarketID: row.LeftMarketID,
		RightVenue: domain.Venue(row.RightVenue), RightMarketID: row.RightMarketID,
		Score: row.Score, Reason: row.Reason, Status: domain.LinkStatus(row.Status),
		Topic: domain.CanonicalTopic(row.Topic), AlgoVersion: row.AlgoVersion,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

// GetLink looks up an existing link by its (left, right) pair, for the
// idempotency check ahead of a status transition (§4.6 step 6).
func (r *Repo) GetLink(ctx context.Context, leftVenue domain.Venue, leftMarketID int64, rightVenue domain.Venue, rightMarketID int64) (*domain.MarketLink, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, left_venue, left_market_id, right_venue, right_market_id, score, reason, status, topic, algo_version, created_at, updated_at
		FROM market_links WHERE left_venue = $1 AND left_market_id = $2 AND right_venue = $3 AND right_market_id = $4`

	var row linkRow
	err := r.db.QueryRowxContext(ctx, query, leftVenue, leftMarketID, rightVenue, rightMarketID).StructScan(&row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get market link: %w", err)
	}
	link := row.toDomain()
	return &link, nil
}

// ListLinksByStatus powers both the rule-engine sweeps (§4.7) and the
// watchlist/KPI steps of the operational loop (§4.8).
func (r *Repo) ListLinksByStatus(ctx context.Context, topic domain.CanonicalTopic, status domain.LinkStatus) ([]domain.MarketLink, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT id, left_venue, left_market_id, right_venue, right_market_id, score, reason, status, topic, algo_version, created_at, updated_at
		FROM market_links WHERE topic = $1 AND status = $2 ORDER BY score DESC`

	rows, err := r.db.QueryxContext(ctx, query, topic, status)
	if err != nil {
		return nil, fmt.Errorf("list links by status: %w", err)
	}
	defer rows.Close()

	var out []domain.MarketLink
	for rows.Next() {
		var row linkRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan link row: %w", err)
		}
		out = append(out, row.toDomain())
	}
	return out, rows.Err()
}

// UpdateMarket mutates only the classifier/MVE-owned columns (§3).
func (r *Repo) UpdateMarket(ctx context.Context, update ports.MarketUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `UPDATE markets SET derived_topic = $1, taxonomy_source = $2, is_mve = $3 WHERE id = $4`
	if !update.Force {
		query += ` AND (derived_topic IS NULL OR derived_topic = 'UNKNOWN')`
	}

	_, err := r.db.ExecContext(ctx, query, update.DerivedTopic, update.TaxonomySource, update.IsMve, update.MarketID)
	if err != nil {
		return fmt.Errorf("update market: %w", err)
	}
	return nil
}

// UpdateLink mutates only status and reason, never score or the market
// pair (§5); callers (orchestrator, rule engines) own transition legality.
func (r *Repo) UpdateLink(ctx context.Context, update ports.LinkUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `UPDATE market_links SET status = $1, reason = $2, updated_at = now() WHERE id = $3`,
		update.Status, update.Reason, update.LinkID)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	return nil
}

// CountActiveByTopic backs the operational loop's preflight overlap check
// (§4.8 step 1).
func (r *Repo) CountActiveByTopic(ctx context.Context, venue domain.Venue, lookbackHours int) (map[domain.CanonicalTopic]int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT derived_topic, COUNT(*) FROM markets
		WHERE venue = $1 AND status = 'active'
		AND (close_time IS NULL OR close_time >= now() - ($2 * interval '1 hour'))
		GROUP BY derived_topic`

	rows, err := r.db.QueryxContext(ctx, query, venue, lookbackHours)
	if err != nil {
		return nil, fmt.Errorf("count active by topic: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.CanonicalTopic]int)
	for rows.Next() {
		var topic sql.NullString
		var count int
		if err := rows.Scan(&topic, &count); err != nil {
			return nil, fmt.Errorf("scan topic count: %w", err)
		}
		counts[domain.CanonicalTopic(topic.String)] = count
	}
	return counts, rows.Err()
}

// CountRecentQuotes backs the operational loop's quote-freshness probe
// (§4.8 step 5).
func (r *Repo) CountRecentQuotes(ctx context.Context, venue domain.Venue, within time.Duration) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	err := r.db.QueryRowxContext(ctx,
		`SELECT COUNT(*) FROM quotes WHERE venue = $1 AND observed_at >= now() - $2::interval`,
		venue, within.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count recent quotes: %w", err)
	}
	return count, nil
}

type watchlistRow struct {
	Venue    string `db:"venue"`
	MarketID int64  `db:"market_id"`
	Priority int    `db:"priority"`
	Reason   string `db:"reason"`
}

// ListWatchlist reads the reconstructed watchlist table (§3), backing the
// redis cache's miss path.
func (r *Repo) ListWatchlist(ctx context.Context, venue domain.Venue) ([]domain.WatchlistEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.QueryxContext(ctx,
		`SELECT venue, market_id, priority, reason FROM quote_watchlist WHERE venue = $1 ORDER BY priority DESC`, venue)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var out []domain.WatchlistEntry
	for rows.Next() {
		var row watchlistRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan watchlist row: %w", err)
		}
		out = append(out, domain.WatchlistEntry{Venue: domain.Venue(row.Venue), MarketID: row.MarketID, Priority: row.Priority, Reason: row.Reason})
	}
	return out, rows.Err()
}

// ReplaceWatchlist atomically swaps venue's watchlist rows for entries
// (§4.8 step 4): the operational loop always writes a complete, freshly
// bucketed set rather than patching individual rows.
func (r *Repo) ReplaceWatchlist(ctx context.Context, venue domain.Venue, entries []domain.WatchlistEntry) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin watchlist replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_watchlist WHERE venue = $1`, venue); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO quote_watchlist (venue, market_id, priority, reason) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("prepare watchlist insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Venue, e.MarketID, e.Priority, e.Reason); err != nil {
			return fmt.Errorf("insert watchlist entry: %w", err)
		}
	}

	return tx.Commit()
}

// GetIngestionState reads the adapter-owned per-(venue,job) health row
// (§6); read-only from the core.
func (r *Repo) GetIngestionState(ctx context.Context, venue domain.Venue, jobName string) (*domain.IngestionState, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var state domain.IngestionState
	var lastSuccess sql.NullTime
	var lastError sql.NullString

	err := r.db.QueryRowxContext(ctx,
		`SELECT venue, job_name, last_success, last_error, consecutive_failures FROM ingestion_state WHERE venue = $1 AND job_name = $2`,
		venue, jobName,
	).Scan(&state.Venue, &state.JobName, &lastSuccess, &lastError, &state.ConsecutiveFailures)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get ingestion state: %w", err)
	}
	if lastSuccess.Valid {
		state.LastSuccess = &lastSuccess.Time
	}
	state.LastError = lastError.String
	return &state, nil
}

func likePatterns(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = "%" + strings.ToLower(k) + "%"
	}
	return out
}
