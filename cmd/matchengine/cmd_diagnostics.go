package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

// taxonomyOverlapCmd implements `taxonomy:overlap`: prints, per topic, the
// active-market count on each venue and whether the topic currently has
// cross-venue overlap (the same check ops:run's preflight step applies).
func (a *app) taxonomyOverlapCmd() *cobra.Command {
	var lookbackHours int
	cmd := &cobra.Command{
		Use:   "taxonomy:overlap",
		Short: "show per-topic active-market overlap between venues",
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.repo.CountActiveByTopic(cmd.Context(), domain.VenueKalshi, lookbackHours)
			if err != nil {
				return err
			}
			right, err := a.repo.CountActiveByTopic(cmd.Context(), domain.VenuePolymarket, lookbackHours)
			if err != nil {
				return err
			}
			for _, topic := range domain.AllTopics {
				l, r := left[topic], right[topic]
				overlap := "no"
				if l > 0 && r > 0 {
					overlap = "yes"
				}
				fmt.Printf("%-16s kalshi=%-5d polymarket=%-5d overlap=%s\n", topic, l, r, overlap)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&lookbackHours, "lookback-hours", 168, "lookback window in hours")
	return cmd
}

// sportsCmd groups the sports diagnostic subcommands (§6).
func (a *app) sportsCmd() *cobra.Command {
	root := &cobra.Command{Use: "sports", Short: "sports topic diagnostics"}
	root.AddCommand(a.sportsAuditCmd(), a.sportsSampleCmd(), a.sportsEligibleCmd(), a.sportsEventCoverageCmd())
	return root
}

func (a *app) sportsEligibleCmd() *cobra.Command {
	var venue string
	var limit int
	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "list markets currently derived to SPORTS on one venue",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicSports, ports.DerivedTopicFilter{
				Venue: domain.Venue(venue), LookbackHours: 168, Limit: limit,
			})
			if err != nil {
				return err
			}
			for _, m := range markets {
				fmt.Printf("%d\t%s\t%s\n", m.ID, m.Status, m.Title)
			}
			fmt.Printf("%d market(s)\n", len(markets))
			return nil
		},
	}
	cmd.Flags().StringVar(&venue, "venue", string(domain.VenueKalshi), "venue")
	cmd.Flags().IntVar(&limit, "limit", 100, "max rows")
	return cmd
}

func (a *app) sportsSampleCmd() *cobra.Command {
	var venue string
	var n int
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "print a sample of SPORTS markets with their extracted signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicSports, ports.DerivedTopicFilter{
				Venue: domain.Venue(venue), LookbackHours: 168, Limit: n,
			})
			if err != nil {
				return err
			}
			for _, m := range markets {
				fp := fingerprint.BuildFingerprint(m.Title, m.CloseTime)
				sig := signals.ExtractSports(m, fp, nil)
				fmt.Printf("%d\t%s\tteams=%v league=%s type=%s\n", m.ID, m.Title, []string{sig.TeamANorm, sig.TeamBNorm}, sig.League, sig.MarketType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&venue, "venue", string(domain.VenueKalshi), "venue")
	cmd.Flags().IntVar(&n, "n", 10, "sample size")
	return cmd
}

func (a *app) sportsAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "count SPORTS markets per venue and flag teamless titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, venue := range []domain.Venue{domain.VenueKalshi, domain.VenuePolymarket} {
				markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicSports, ports.DerivedTopicFilter{
					Venue: venue, LookbackHours: 168, Limit: 0,
				})
				if err != nil {
					return err
				}
				teamless := 0
				for _, m := range markets {
					fp := fingerprint.BuildFingerprint(m.Title, m.CloseTime)
					sig := signals.ExtractSports(m, fp, nil)
					if sig.TeamANorm == "" || sig.TeamBNorm == "" {
						teamless++
					}
				}
				fmt.Printf("%s: total=%d teamless=%d\n", venue, len(markets), teamless)
			}
			return nil
		},
	}
	return cmd
}

func (a *app) sportsEventCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event-coverage",
		Short: "group kalshi SPORTS markets by parent event ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicSports, ports.DerivedTopicFilter{
				Venue: domain.VenueKalshi, LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			byEvent := map[string]int{}
			for _, m := range markets {
				key := m.EventTicker
				if key == "" {
					key = "(none)"
				}
				byEvent[key]++
			}
			for event, count := range byEvent {
				fmt.Printf("%s: %d market(s)\n", event, count)
			}
			return nil
		},
	}
	return cmd
}

// cryptoCmd groups the crypto diagnostic subcommands (§6).
func (a *app) cryptoCmd() *cobra.Command {
	root := &cobra.Command{Use: "crypto", Short: "crypto topic diagnostics"}
	root.AddCommand(a.cryptoCountsCmd(), a.cryptoOverlapCmd(), a.cryptoBestCmd(),
		a.cryptoTypeAuditCmd(), a.cryptoBracketsCmd(), a.cryptoTruthAuditCmd(), a.cryptoSeriesAuditCmd())
	return root
}

func (a *app) cryptoCountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "count CRYPTO_DAILY/CRYPTO_INTRADAY markets per venue",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, topic := range []domain.CanonicalTopic{domain.TopicCryptoDaily, domain.TopicCryptoIntraday} {
				for _, venue := range []domain.Venue{domain.VenueKalshi, domain.VenuePolymarket} {
					markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), topic, ports.DerivedTopicFilter{
						Venue: venue, LookbackHours: 168, Limit: 0,
					})
					if err != nil {
						return err
					}
					fmt.Printf("%s %s: %d\n", topic, venue, len(markets))
				}
			}
			return nil
		},
	}
	return cmd
}

func (a *app) cryptoOverlapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "show cross-venue overlap for the crypto topics",
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := a.repo.CountActiveByTopic(cmd.Context(), domain.VenueKalshi, 168)
			if err != nil {
				return err
			}
			right, err := a.repo.CountActiveByTopic(cmd.Context(), domain.VenuePolymarket, 168)
			if err != nil {
				return err
			}
			for _, topic := range []domain.CanonicalTopic{domain.TopicCryptoDaily, domain.TopicCryptoIntraday} {
				fmt.Printf("%s: kalshi=%d polymarket=%d\n", topic, left[topic], right[topic])
			}
			return nil
		},
	}
	return cmd
}

func (a *app) cryptoBestCmd() *cobra.Command {
	var topic string
	var limit int
	cmd := &cobra.Command{
		Use:   "best",
		Short: "print the highest-scored suggested/confirmed crypto links",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.CanonicalTopic(topic)
			if !t.Valid() {
				return fmt.Errorf("unknown topic %q", topic)
			}
			shown := 0
			for _, status := range []domain.LinkStatus{domain.LinkConfirmed, domain.LinkSuggested} {
				links, err := a.repo.ListLinksByStatus(cmd.Context(), t, status)
				if err != nil {
					return err
				}
				for _, l := range links {
					if shown >= limit {
						return nil
					}
					fmt.Printf("[%s] %s:%d <-> %s:%d score=%.3f\n", l.Status, l.LeftVenue, l.LeftMarketID, l.RightVenue, l.RightMarketID, l.Score)
					shown++
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", string(domain.TopicCryptoDaily), "canonical topic")
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows")
	return cmd
}

func (a *app) cryptoTypeAuditCmd() *cobra.Command {
	var venue string
	cmd := &cobra.Command{
		Use:   "type-audit",
		Short: "tally CRYPTO_DAILY markets by structural market type (§4.3)",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicCryptoDaily, ports.DerivedTopicFilter{
				Venue: domain.Venue(venue), LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			tally := map[signals.MarketType]int{}
			for _, m := range markets {
				fp := fingerprint.BuildFingerprint(m.Title, m.CloseTime)
				sig := signals.ExtractCrypto(m, fp, domain.TopicCryptoDaily)
				tally[sig.MarketType]++
			}
			for t, n := range tally {
				fmt.Printf("%s: %d\n", t, n)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&venue, "venue", string(domain.VenueKalshi), "venue")
	return cmd
}

func (a *app) cryptoBracketsCmd() *cobra.Command {
	var venue, entity string
	cmd := &cobra.Command{
		Use:   "brackets",
		Short: "list CRYPTO_DAILY markets for one entity, grouped by settle date (bracket ladder)",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicCryptoDaily, ports.DerivedTopicFilter{
				Venue: domain.Venue(venue), LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			byDate := map[string][]string{}
			for _, m := range markets {
				fp := fingerprint.BuildFingerprint(m.Title, m.CloseTime)
				sig := signals.ExtractCrypto(m, fp, domain.TopicCryptoDaily)
				if entity != "" && string(sig.Entity) != entity {
					continue
				}
				byDate[sig.SettleDate] = append(byDate[sig.SettleDate], m.Title)
			}
			for date, titles := range byDate {
				fmt.Printf("%s: %d bracket(s)\n", date, len(titles))
				for _, t := range titles {
					fmt.Printf("  - %s\n", t)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&venue, "venue", string(domain.VenueKalshi), "venue")
	cmd.Flags().StringVar(&entity, "entity", "", "filter by entity (BITCOIN, ETHEREUM, ...)")
	return cmd
}

func (a *app) cryptoTruthAuditCmd() *cobra.Command {
	var venue string
	cmd := &cobra.Command{
		Use:   "truth-audit",
		Short: "flag CRYPTO_DAILY markets with no extractable settle date or entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicCryptoDaily, ports.DerivedTopicFilter{
				Venue: domain.Venue(venue), LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			flagged := 0
			for _, m := range markets {
				fp := fingerprint.BuildFingerprint(m.Title, m.CloseTime)
				sig := signals.ExtractCrypto(m, fp, domain.TopicCryptoDaily)
				if sig.Entity == signals.EntityUnknown || sig.DateType == signals.DateTypeUnknown {
					fmt.Printf("%d\t%s\tentity=%s date_type=%s\n", m.ID, m.Title, sig.Entity, sig.DateType)
					flagged++
				}
			}
			fmt.Printf("%d/%d market(s) flagged\n", flagged, len(markets))
			return nil
		},
	}
	cmd.Flags().StringVar(&venue, "venue", string(domain.VenueKalshi), "venue")
	return cmd
}

func (a *app) cryptoSeriesAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series-audit",
		Short: "group kalshi CRYPTO_DAILY markets by series/event ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), domain.TopicCryptoDaily, ports.DerivedTopicFilter{
				Venue: domain.VenueKalshi, LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			byEvent := map[string]int{}
			for _, m := range markets {
				key := m.EventTicker
				if key == "" {
					key = "(none)"
				}
				byEvent[key]++
			}
			for event, count := range byEvent {
				fmt.Printf("%s: %d market(s)\n", event, count)
			}
			return nil
		},
	}
	return cmd
}

// kalshiCmd groups the kalshi-only diagnostic subcommands (§6).
func (a *app) kalshiCmd() *cobra.Command {
	root := &cobra.Command{Use: "kalshi", Short: "kalshi-only diagnostics"}
	root.AddCommand(a.kalshiSeriesAuditCmd(), a.kalshiEventsSmartSyncCmd())
	return root
}

func (a *app) kalshiSeriesAuditCmd() *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "series:audit",
		Short: "group kalshi markets for one topic by event ticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.CanonicalTopic(topic)
			if !t.Valid() {
				return fmt.Errorf("unknown topic %q", topic)
			}
			markets, err := a.repo.ListMarketsByDerivedTopic(cmd.Context(), t, ports.DerivedTopicFilter{
				Venue: domain.VenueKalshi, LookbackHours: 168, Limit: 0,
			})
			if err != nil {
				return err
			}
			byEvent := map[string]int{}
			for _, m := range markets {
				key := m.EventTicker
				if key == "" {
					key = "(none)"
				}
				byEvent[key]++
			}
			for event, count := range byEvent {
				fmt.Printf("%s: %d market(s)\n", event, count)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "canonical topic (required)")
	cmd.MarkFlagRequired("topic")
	return cmd
}

func (a *app) kalshiEventsSmartSyncCmd() *cobra.Command {
	var nonMveOnly, apply bool
	cmd := &cobra.Command{
		Use:   "events:smart-sync",
		Short: "sync kalshi events from the exchange API (requires an AdapterPort implementation)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = nonMveOnly
			_ = apply
			return fmt.Errorf("kalshi:events:smart-sync requires a concrete AdapterPort (venue HTTP client), which is out of scope for this repository (§1) and not wired into matchengine")
		},
	}
	cmd.Flags().BoolVar(&nonMveOnly, "non-mve-only", false, "only sync non-multi-variable events")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist synced events instead of a dry run")
	return cmd
}

// overlapReportCmd implements `overlap-report [keywords...]`.
func (a *app) overlapReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overlap-report [keywords...]",
		Short: "free-text overlap report: count active markets per venue matching the given title keywords",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("at least one keyword is required")
			}
			for _, venue := range []domain.Venue{domain.VenueKalshi, domain.VenuePolymarket} {
				markets, err := a.repo.ListEligibleMarkets(cmd.Context(), venue, ports.ListEligibleParams{
					LookbackHours: 168, Limit: 0, TitleKeywords: args,
				})
				if err != nil {
					return err
				}
				fmt.Printf("%s: %d matching market(s)\n", venue, len(markets))
				for _, m := range markets {
					fmt.Printf("  %d\t%s\n", m.ID, m.Title)
				}
			}
			return nil
		},
	}
}
