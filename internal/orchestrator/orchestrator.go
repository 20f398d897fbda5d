// Package orchestrator implements the V3 matching orchestrator (§4.6): one
// run of fetch → index → score → dedup → upsert for a single topic and
// venue pair.
package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/rules"
)

// Mode is dry-run vs apply (§4.6).
type Mode string

const (
	ModeDryRun  Mode = "dry-run"
	ModeSuggest Mode = "suggest"
)

// Request bounds one orchestrator run.
type Request struct {
	FromVenue     domain.Venue
	ToVenue       domain.Venue
	Topic         domain.CanonicalTopic
	LookbackHours int
	MaxPerLeft    int
	MaxPerRight   int
	MinScore      float64
	Mode          Mode
	AutoConfirm   bool
	AutoReject    bool
}

// ScoreHistogram buckets the score distribution of every surviving
// candidate for observability (§4.6 step 8).
type ScoreHistogram struct {
	GE90   int
	B80_90 int
	B70_80 int
	B60_70 int
	LT60   int
}

func (h ScoreHistogram) String() string {
	return fmt.Sprintf(">=90:%d 80-90:%d 70-80:%d 60-70:%d <60:%d",
		h.GE90, h.B80_90, h.B70_80, h.B60_70, h.LT60)
}

func (h *ScoreHistogram) Add(score float64) {
	switch {
	case score >= 0.9:
		h.GE90++
	case score >= 0.8:
		h.B80_90++
	case score >= 0.7:
		h.B70_80++
	case score >= 0.6:
		h.B60_70++
	default:
		h.LT60++
	}
}

// Result is one orchestrator run's summary.
type Result struct {
	Topic             domain.CanonicalTopic
	LeftFetched       int
	RightFetched      int
	CandidatesFound   int
	CandidatesPassed  int
	LinksWritten       int
	Suggested         int
	Confirmed         int
	Rejected          int
	Histogram         ScoreHistogram
	Err               error
}

// Run executes one orchestrator pass for a single topic (§4.6).
func Run(ctx context.Context, repo ports.Repository, log zerolog.Logger, req Request) Result {
	result := Result{Topic: req.Topic}

	p := pipeline.Lookup(req.Topic)
	if p == nil {
		result.Err = fmt.Errorf("no pipeline registered for topic %s", req.Topic)
		return result
	}

	lookback := req.LookbackHours
	opts := pipeline.FetchOptions{LookbackHours: lookback}

	var left, right []domain.Market
	var leftErr, rightErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		left, leftErr = p.FetchMarkets(ctx, req.FromVenue, opts)
	}()
	go func() {
		defer wg.Done()
		right, rightErr = p.FetchMarkets(ctx, req.ToVenue, opts)
	}()
	wg.Wait()

	if leftErr != nil {
		result.Err = fmt.Errorf("fetch left markets: %w", leftErr)
		return result
	}
	if rightErr != nil {
		result.Err = fmt.Errorf("fetch right markets: %w", rightErr)
		return result
	}
	result.LeftFetched = len(left)
	result.RightFetched = len(right)

	idx := p.BuildIndex(right)

	// §4.6 step 4: keep only candidates at or above the topic's floor. A
	// caller-supplied MinScore overrides it; leaving it at the zero value
	// falls back to the pipeline's own floor rather than admitting every
	// sub-floor candidate.
	minScore := req.MinScore
	if minScore == 0 {
		minScore = p.MinScore()
	}
	var candidates []pipeline.Candidate
	for _, l := range left {
		for _, r := range p.FindCandidates(l, idx) {
			if l.Venue == r.Venue && l.ID == r.ID {
				continue
			}
			gate := p.CheckHardGates(l, r)
			if !gate.Passed {
				continue
			}
			result.CandidatesFound++
			score := p.Score(l, r)
			if score == nil || score.Score < minScore {
				continue
			}
			result.CandidatesPassed++
			candidates = append(candidates, pipeline.Candidate{Left: l, Right: r, Score: *score})
		}
	}

	deduped := p.ApplyDedup(candidates, pipeline.DedupLimits{MaxPerLeft: req.MaxPerLeft, MaxPerRight: req.MaxPerRight})
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Score.Score != deduped[j].Score.Score {
			return deduped[i].Score.Score > deduped[j].Score.Score
		}
		if deduped[i].Left.ID != deduped[j].Left.ID {
			return deduped[i].Left.ID < deduped[j].Left.ID
		}
		return deduped[i].Right.ID < deduped[j].Right.ID
	})

	for _, c := range deduped {
		result.Histogram.Add(c.Score.Score)

		status := domain.LinkSuggested
		// The persisted reason is the canonical structured encoding (§4.5),
		// not the human trace in c.Score.Reason: administrative rule-engine
		// sweeps (internal/rules) re-derive verdicts from this column alone.
		reason := rules.FormatReason(c.Score.Components)
		if req.AutoConfirm {
			if verdict := p.ShouldAutoConfirm(c.Left, c.Right, c.Score); verdict.ShouldConfirm {
				status = domain.LinkConfirmed
				reason = fmt.Sprintf("auto_confirm@%s:%s:%s", p.AlgoVersion(), req.Topic, verdict.Rule)
			}
		}
		if status == domain.LinkSuggested && req.AutoReject {
			if verdict := p.ShouldAutoReject(c.Left, c.Right, c.Score); verdict.ShouldReject {
				status = domain.LinkRejected
				reason = fmt.Sprintf("auto_reject@%s:%s", p.AlgoVersion(), verdict.Rule)
			}
		}

		if req.Mode == ModeDryRun {
			tallyStatus(&result, status)
			continue
		}

		existing, err := repo.GetLink(ctx, c.Left.Venue, c.Left.ID, c.Right.Venue, c.Right.ID)
		if err != nil {
			log.Warn().Err(err).Msg("get_link failed, skipping upsert")
			continue
		}
		if existing != nil && !allowTransition(existing.Status, status) {
			log.Info().
				Str("from", string(existing.Status)).
				Str("to", string(status)).
				Int64("left", c.Left.ID).Int64("right", c.Right.ID).
				Msg("link status regression blocked by idempotency rule")
			continue
		}
		if existing != nil && existing.Status == domain.LinkConfirmed && status == domain.LinkRejected {
			log.Warn().Int64("left", c.Left.ID).Int64("right", c.Right.ID).Msg("confirmed link overridden to rejected")
		}

		_, err = repo.UpsertSuggestionV3(ctx, ports.UpsertSuggestionParams{
			LeftVenue: c.Left.Venue, LeftMarketID: c.Left.ID,
			RightVenue: c.Right.Venue, RightMarketID: c.Right.ID,
			Score: c.Score.Score, Reason: reason, AlgoVersion: p.AlgoVersion(),
			Topic: req.Topic, Status: status,
		})
		if err != nil {
			log.Warn().Err(err).Msg("upsert_suggestion failed")
			continue
		}
		result.LinksWritten++
		tallyStatus(&result, status)
	}

	return result
}

func tallyStatus(r *Result, status domain.LinkStatus) {
	switch status {
	case domain.LinkSuggested:
		r.Suggested++
	case domain.LinkConfirmed:
		r.Confirmed++
	case domain.LinkRejected:
		r.Rejected++
	}
}

// allowTransition implements the idempotency rule (§4.6 step 7): never
// regress confirmed → suggested; everything else is allowed (including
// confirmed → rejected, which is logged by the caller).
func allowTransition(from, to domain.LinkStatus) bool {
	if from == domain.LinkConfirmed && to == domain.LinkSuggested {
		return false
	}
	return true
}
