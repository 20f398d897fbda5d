// Package ops implements the operational loop (C8, §4.8): one invocation
// that runs preflight checks, the per-topic orchestrator, watchlist sync,
// a quote-freshness probe, and a KPI summary. The steps after preflight are
// isolated so one failure doesn't abort the rest; a preflight that fails or
// leaves no topic ends the run early.
package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/orchestrator"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/rules"
	"github.com/linkforge/venuematch/internal/watchlist"
)

// Request bounds one ops:run invocation (§6 `ops:run`).
type Request struct {
	Topics                  []domain.CanonicalTopic
	FromVenue               domain.Venue
	ToVenue                 domain.Venue
	LookbackHours           int
	Apply                   bool
	AutoConfirm             bool
	AutoReject              bool
	WithTaxonomyMaintenance bool
	MaintenanceFn           func(ctx context.Context) error // optional external collaborator call, retry-wrapped by the caller

	WatchlistMaxTotal     int
	WatchlistMaxPerVenue  int
	WatchlistMaxSuggested int
}

// TopicKPI is one topic's contribution to the KPI summary.
type TopicKPI struct {
	Suggested int
	Confirmed int
	Rejected  int
}

// KPISummary is step 6 of the operational loop (§4.8).
type KPISummary struct {
	TotalSuggested     int
	TotalConfirmed     int
	ConfirmedLast24h   int
	WatchlistTotal     int
	PerTopic           map[domain.CanonicalTopic]TopicKPI
	ComponentDurations map[string]time.Duration
	Healthy            bool
}

// Result is one ops:run invocation's outcome.
type Result struct {
	RunID               string
	TopicsRun           []domain.CanonicalTopic
	TopicsSkipped       map[domain.CanonicalTopic]string
	OrchestratorResults map[domain.CanonicalTopic]orchestrator.Result
	StaleQuoteVenues    []domain.Venue
	KPI                 KPISummary
	StepErrors          map[string]error
}

// Run executes the operational loop (§4.8).
func Run(ctx context.Context, repo ports.Repository, cache *watchlist.Cache, log zerolog.Logger, req Request) Result {
	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	result := Result{
		RunID:               runID,
		TopicsSkipped:       make(map[domain.CanonicalTopic]string),
		OrchestratorResults: make(map[domain.CanonicalTopic]orchestrator.Result),
		StepErrors:          make(map[string]error),
		KPI:                 KPISummary{PerTopic: make(map[domain.CanonicalTopic]TopicKPI), ComponentDurations: make(map[string]time.Duration)},
	}

	// Step 1: preflight overlap check.
	start := time.Now()
	survivors := preflight(ctx, repo, req, &result, log)
	result.KPI.ComponentDurations["preflight"] = time.Since(start)
	if len(survivors) == 0 {
		result.StepErrors["preflight"] = fmt.Errorf("all requested topics removed by preflight overlap check")
		return result
	}

	// Step 2: optional taxonomy maintenance.
	if req.WithTaxonomyMaintenance && req.MaintenanceFn != nil {
		start = time.Now()
		if err := req.MaintenanceFn(ctx); err != nil {
			log.Warn().Err(err).Msg("taxonomy maintenance failed, continuing without it")
			result.StepErrors["taxonomy_maintenance"] = err
		}
		result.KPI.ComponentDurations["taxonomy_maintenance"] = time.Since(start)
	}

	// Step 3: per-topic orchestrator runs.
	start = time.Now()
	mode := orchestrator.ModeDryRun
	if req.Apply {
		mode = orchestrator.ModeSuggest
	}
	for _, topic := range survivors {
		topicStart := time.Now()
		r := orchestrator.Run(ctx, repo, log, orchestrator.Request{
			FromVenue: req.FromVenue, ToVenue: req.ToVenue, Topic: topic,
			LookbackHours: req.LookbackHours, MinScore: 0, // 0 means "use the topic's own floor" (orchestrator.Run)
			Mode: mode, AutoConfirm: req.AutoConfirm, AutoReject: req.AutoReject,
			MaxPerLeft: 10, MaxPerRight: 10,
		})
		log.Info().
			Str("topic", string(topic)).
			Dur("duration", time.Since(topicStart)).
			Int("confirmed", r.Confirmed).Int("suggested", r.Suggested).Int("rejected", r.Rejected).
			Msg("orchestrator topic run finished")
		if r.Err != nil {
			result.StepErrors["orchestrate:"+string(topic)] = r.Err
		}
		result.OrchestratorResults[topic] = r
		result.TopicsRun = append(result.TopicsRun, topic)
		result.KPI.PerTopic[topic] = TopicKPI{Suggested: r.Suggested, Confirmed: r.Confirmed, Rejected: r.Rejected}
		result.KPI.TotalSuggested += r.Suggested
		result.KPI.TotalConfirmed += r.Confirmed
	}
	result.KPI.ComponentDurations["orchestrate"] = time.Since(start)

	// Step 4: watchlist sync.
	start = time.Now()
	if cache != nil {
		if err := syncWatchlists(ctx, repo, cache, survivors, req); err != nil {
			log.Warn().Err(err).Msg("watchlist sync failed")
			result.StepErrors["watchlist_sync"] = err
		}
	}
	result.KPI.ComponentDurations["watchlist_sync"] = time.Since(start)

	// Step 5: quote freshness probe.
	start = time.Now()
	for _, venue := range []domain.Venue{domain.VenueKalshi, domain.VenuePolymarket} {
		count, err := repo.CountRecentQuotes(ctx, venue, 5*time.Minute)
		if err != nil {
			result.StepErrors["quote_freshness:"+string(venue)] = err
			continue
		}
		if count == 0 {
			result.StaleQuoteVenues = append(result.StaleQuoteVenues, venue)
		}
	}
	result.KPI.ComponentDurations["quote_freshness"] = time.Since(start)

	// Step 6: KPI summary.
	start = time.Now()
	result.KPI.ConfirmedLast24h = countConfirmedLast24h(ctx, repo, survivors)
	if cache != nil {
		for _, venue := range []domain.Venue{domain.VenueKalshi, domain.VenuePolymarket} {
			if entries, err := cache.Get(ctx, venue); err == nil {
				result.KPI.WatchlistTotal += len(entries)
			}
		}
	}
	result.KPI.Healthy = len(result.StepErrors) == 0 && len(result.StaleQuoteVenues) == 0
	result.KPI.ComponentDurations["kpi"] = time.Since(start)

	return result
}

// preflight implements §4.8 step 1: drop any topic with zero active
// markets on either venue in the lookback window.
func preflight(ctx context.Context, repo ports.Repository, req Request, result *Result, log zerolog.Logger) []domain.CanonicalTopic {
	leftCounts, err := repo.CountActiveByTopic(ctx, req.FromVenue, req.LookbackHours)
	if err != nil {
		result.StepErrors["preflight_left"] = err
		return nil
	}
	rightCounts, err := repo.CountActiveByTopic(ctx, req.ToVenue, req.LookbackHours)
	if err != nil {
		result.StepErrors["preflight_right"] = err
		return nil
	}

	var survivors []domain.CanonicalTopic
	for _, topic := range req.Topics {
		if leftCounts[topic] == 0 || rightCounts[topic] == 0 {
			log.Warn().Str("topic", string(topic)).Msg("topic has zero overlap, removed from batch")
			result.TopicsSkipped[topic] = "zero_overlap"
			continue
		}
		survivors = append(survivors, topic)
	}
	return survivors
}

func countConfirmedLast24h(ctx context.Context, repo ports.Repository, topics []domain.CanonicalTopic) int {
	cutoff := time.Now().Add(-24 * time.Hour)
	total := 0
	for _, topic := range topics {
		links, err := repo.ListLinksByStatus(ctx, topic, domain.LinkConfirmed)
		if err != nil {
			continue
		}
		for _, l := range links {
			if l.UpdatedAt.After(cutoff) {
				total++
			}
		}
	}
	return total
}

// syncWatchlists rebuilds each venue's watchlist from confirmed and
// suggested links across survivors, priority-bucketed per §3/§4.8.
func syncWatchlists(ctx context.Context, repo ports.Repository, cache *watchlist.Cache, topics []domain.CanonicalTopic, req Request) error {
	byVenue := map[domain.Venue][]domain.WatchlistEntry{}

	for _, topic := range topics {
		confirmed, err := repo.ListLinksByStatus(ctx, topic, domain.LinkConfirmed)
		if err != nil {
			return fmt.Errorf("list confirmed links for %s: %w", topic, err)
		}
		suggested, err := repo.ListLinksByStatus(ctx, topic, domain.LinkSuggested)
		if err != nil {
			return fmt.Errorf("list suggested links for %s: %w", topic, err)
		}

		for _, l := range confirmed {
			appendEntry(byVenue, l, domain.PriorityConfirmed, "confirmed")
		}

		suggestedCount := 0
		for _, l := range suggested {
			if req.WatchlistMaxSuggested > 0 && suggestedCount >= req.WatchlistMaxSuggested {
				break
			}
			priority := domain.PriorityTopSuggested
			if confirm, _ := rules.Evaluate(topic, l.Score, l.Reason); confirm.ShouldConfirm {
				priority = domain.PrioritySafeConfirm
			}
			appendEntry(byVenue, l, priority, "suggested")
			suggestedCount++
		}
	}

	for venue, entries := range byVenue {
		entries = capWatchlist(entries, req.WatchlistMaxPerVenue, req.WatchlistMaxTotal)
		if err := cache.Sync(ctx, venue, entries); err != nil {
			return fmt.Errorf("sync watchlist for %s: %w", venue, err)
		}
	}
	return nil
}

func appendEntry(byVenue map[domain.Venue][]domain.WatchlistEntry, l domain.MarketLink, priority int, reason string) {
	byVenue[l.LeftVenue] = append(byVenue[l.LeftVenue], domain.WatchlistEntry{
		Venue: l.LeftVenue, MarketID: l.LeftMarketID, Priority: priority, Reason: reason,
	})
	byVenue[l.RightVenue] = append(byVenue[l.RightVenue], domain.WatchlistEntry{
		Venue: l.RightVenue, MarketID: l.RightMarketID, Priority: priority, Reason: reason,
	})
}

func capWatchlist(entries []domain.WatchlistEntry, maxPerVenue, maxTotal int) []domain.WatchlistEntry {
	if maxPerVenue > 0 && len(entries) > maxPerVenue {
		entries = entries[:maxPerVenue]
	}
	if maxTotal > 0 && len(entries) > maxTotal {
		entries = entries[:maxTotal]
	}
	return entries
}
