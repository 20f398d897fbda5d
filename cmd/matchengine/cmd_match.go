package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/orchestrator"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/rules"
)

// suggestMatchesCmd implements `v3:suggest-matches --topic T [--apply] [--from V --to V]`.
func (a *app) suggestMatchesCmd() *cobra.Command {
	var topic, from, to string
	var apply bool
	var lookbackHours int
	var minScore float64

	cmd := &cobra.Command{
		Use:   "v3:suggest-matches",
		Short: "run the V3 orchestrator for one topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := orchestrator.ModeDryRun
			if apply {
				mode = orchestrator.ModeSuggest
			}
			r := orchestrator.Run(cmd.Context(), a.repo, a.log, orchestrator.Request{
				FromVenue:     domain.Venue(from),
				ToVenue:       domain.Venue(to),
				Topic:         domain.CanonicalTopic(topic),
				LookbackHours: lookbackHours,
				MinScore:      minScore,
				MaxPerLeft:    10, MaxPerRight: 10,
				Mode: mode,
			})
			printOrchestratorResult(r)
			if r.Err != nil {
				return r.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "canonical topic (required)")
	cmd.Flags().StringVar(&from, "from", string(domain.VenueKalshi), "left venue")
	cmd.Flags().StringVar(&to, "to", string(domain.VenuePolymarket), "right venue")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist suggestions instead of a dry run")
	cmd.Flags().IntVar(&lookbackHours, "lookback-hours", 168, "lookback window in hours")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "override the topic's own score floor (0 = use the topic's floor)")
	cmd.MarkFlagRequired("topic")
	return cmd
}

// linksAutoConfirmCmd implements `links:auto-confirm --topic T|all [--apply] [--explain]`.
func (a *app) linksAutoConfirmCmd() *cobra.Command {
	var topic string
	var apply, explain bool

	cmd := &cobra.Command{
		Use:   "links:auto-confirm",
		Short: "re-evaluate suggested links against the safe-confirm rule packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := resolveTopics(topic)
			if err != nil {
				return err
			}
			return a.runRuleSweep(cmd.Context(), topics, domain.LinkConfirmed, apply, explain)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "all", "canonical topic, or 'all'")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist status flips instead of a dry run")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the reason components behind each verdict")
	return cmd
}

// linksAutoRejectCmd implements `links:auto-reject --topic T [--apply] [--min-age-hours N]`.
func (a *app) linksAutoRejectCmd() *cobra.Command {
	var topic string
	var apply bool
	var minAgeHours int

	cmd := &cobra.Command{
		Use:   "links:auto-reject",
		Short: "re-evaluate suggested links against the reject rule packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := resolveTopics(topic)
			if err != nil {
				return err
			}
			return a.runRuleSweep(cmd.Context(), topics, domain.LinkRejected, apply, false, minAgeHours)
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "", "canonical topic (required)")
	cmd.Flags().BoolVar(&apply, "apply", false, "persist status flips instead of a dry run")
	cmd.Flags().IntVar(&minAgeHours, "min-age-hours", 0, "only reject links suggested at least this long ago")
	cmd.MarkFlagRequired("topic")
	return cmd
}

// runRuleSweep re-derives confirm/reject verdicts from the persisted reason
// string (§4.7) for every suggested link in topics, optionally persisting.
func (a *app) runRuleSweep(ctx context.Context, topics []domain.CanonicalTopic, target domain.LinkStatus, apply, explain bool, minAgeHours ...int) error {
	minAge := 0
	if len(minAgeHours) > 0 {
		minAge = minAgeHours[0]
	}
	cutoff := time.Now().Add(-time.Duration(minAge) * time.Hour)

	flipped := 0
	for _, topic := range topics {
		links, err := a.repo.ListLinksByStatus(ctx, topic, domain.LinkSuggested)
		if err != nil {
			return fmt.Errorf("list suggested links for %s: %w", topic, err)
		}
		for _, l := range links {
			if minAge > 0 && l.CreatedAt.After(cutoff) {
				continue
			}
			confirm, reject := rules.Evaluate(topic, l.Score, l.Reason)
			var shouldFlip bool
			var newReason string
			switch target {
			case domain.LinkConfirmed:
				shouldFlip = confirm.ShouldConfirm
				newReason = fmt.Sprintf("auto_confirm@%s:%s", topic, confirm.Rule)
			case domain.LinkRejected:
				shouldFlip = reject.ShouldReject
				newReason = fmt.Sprintf("auto_reject@%s:%s", topic, reject.Rule)
			}
			if !shouldFlip {
				continue
			}
			if explain {
				fmt.Printf("link %d %s->%s score=%.3f reason=%q\n", l.ID, l.LeftVenue, l.RightVenue, l.Score, l.Reason)
			}
			if !apply {
				flipped++
				continue
			}
			if err := a.repo.UpdateLink(ctx, ports.LinkUpdate{LinkID: l.ID, Status: target, Reason: newReason}); err != nil {
				a.log.Warn().Err(err).Int64("link_id", l.ID).Msg("update_link failed")
				continue
			}
			flipped++
		}
	}
	fmt.Printf("%d link(s) %s%s\n", flipped, statusVerb(target), dryRunSuffix(apply))
	return nil
}

func statusVerb(s domain.LinkStatus) string {
	if s == domain.LinkConfirmed {
		return "confirmed"
	}
	return "rejected"
}

func dryRunSuffix(apply bool) string {
	if apply {
		return ""
	}
	return " (dry run)"
}

// linksQueueCmd implements `links:queue [--topic T --min-score S --limit N]`.
func (a *app) linksQueueCmd() *cobra.Command {
	var topic string
	var minScore float64
	var limit int

	cmd := &cobra.Command{
		Use:   "links:queue",
		Short: "list suggested links awaiting a manual decision",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := resolveTopics(topic)
			if err != nil {
				return err
			}
			shown := 0
			for _, t := range topics {
				links, err := a.repo.ListLinksByStatus(cmd.Context(), t, domain.LinkSuggested)
				if err != nil {
					return fmt.Errorf("list suggested links for %s: %w", t, err)
				}
				for _, l := range links {
					if l.Score < minScore {
						continue
					}
					if limit > 0 && shown >= limit {
						return nil
					}
					fmt.Printf("id=%d topic=%s %s:%d <-> %s:%d score=%.3f\n", l.ID, l.Topic, l.LeftVenue, l.LeftMarketID, l.RightVenue, l.RightMarketID, l.Score)
					shown++
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&topic, "topic", "all", "canonical topic, or 'all'")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "minimum score to include")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to print (0 = unlimited)")
	return cmd
}

// confirmMatchCmd implements `confirm-match --id N`.
func (a *app) confirmMatchCmd() *cobra.Command {
	return manualTransitionCmd("confirm-match", domain.LinkConfirmed, "manual_confirm", a)
}

// rejectMatchCmd implements `reject-match --id N`.
func (a *app) rejectMatchCmd() *cobra.Command {
	return manualTransitionCmd("reject-match", domain.LinkRejected, "manual_reject", a)
}

func manualTransitionCmd(use string, status domain.LinkStatus, reasonTag string, a *app) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("manually set a link's status to %s", status),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.repo.UpdateLink(cmd.Context(), ports.LinkUpdate{LinkID: id, Status: status, Reason: reasonTag}); err != nil {
				return fmt.Errorf("update_link: %w", err)
			}
			fmt.Printf("link %d -> %s\n", id, status)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "link ID (required)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func resolveTopics(spec string) ([]domain.CanonicalTopic, error) {
	if spec == "" || spec == "all" {
		return domain.AllTopics, nil
	}
	t := domain.CanonicalTopic(spec)
	if !t.Valid() {
		return nil, fmt.Errorf("unknown topic %q", spec)
	}
	return []domain.CanonicalTopic{t}, nil
}

func printOrchestratorResult(r orchestrator.Result) {
	fmt.Printf("topic=%s left=%d right=%d candidates=%d passed=%d suggested=%d confirmed=%d rejected=%d written=%d histogram=[%s]\n",
		r.Topic, r.LeftFetched, r.RightFetched, r.CandidatesFound, r.CandidatesPassed,
		r.Suggested, r.Confirmed, r.Rejected, r.LinksWritten, r.Histogram.String())
	if r.Err != nil {
		fmt.Printf("error: %v\n", r.Err)
	}
}
