// Package pipelines holds the concrete per-topic pipelines (§4.5) built on
// top of the generic pipeline.Pipeline contract. Each topic wires a small
// set of functions — index-key, candidate-key, hard-gate, score,
// confirm/reject — into the shared genericPipeline, mirroring the
// capability-registry pattern the rest of the matching core already uses
// for the pipeline registry itself.
package pipelines

import (
	"context"
	"sort"
	"time"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
)

// signalsOf builds the fingerprint for a market's title and close time.
// Nothing is cached: every index and scoring pass rebuilds it.
func signalsOf(m domain.Market) fingerprint.Fingerprint {
	return fingerprint.BuildFingerprint(m.Title, m.CloseTime)
}

// parseDate parses a YYYY-MM-DD settle date as produced by
// fingerprint.ExtractedDate.SettleDate.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// rejectOnFieldZero builds a reject function that fires below the
// pipeline's hard floor, or when the named score component is the zero
// value — the inline-scoring-pass mirror of rulepacks.yaml's per-topic
// field_zero reject rule (§4.7). field must name a key the topic's scoreFn
// actually populates in ScoreResult.Components; a missing key is treated
// the same as a zero score, since both mean "no match signal at all".
func rejectOnFieldZero(floor float64, field, rule string) rejectFunc {
	return func(left, right domain.Market, score pipeline.ScoreResult) pipeline.RejectVerdict {
		if score.Score < floor {
			return pipeline.RejectVerdict{ShouldReject: true, Rule: "below_hard_floor", Reason: "score_below_floor"}
		}
		if score.Components[field] == 0 {
			return pipeline.RejectVerdict{ShouldReject: true, Rule: rule, Reason: rule}
		}
		return pipeline.RejectVerdict{}
	}
}

type indexKeyFunc func(m domain.Market) []string
type candidateKeyFunc = indexKeyFunc
type dedupGroupFunc func(m domain.Market) string
type hardGateFunc func(left, right domain.Market) pipeline.HardGateResult
type scoreFunc func(left, right domain.Market) *pipeline.ScoreResult
type confirmFunc func(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict
type rejectFunc func(left, right domain.Market, score pipeline.ScoreResult) pipeline.RejectVerdict

// genericPipeline implements pipeline.Pipeline by delegating the
// topic-specific decisions to plain functions supplied at construction.
type genericPipeline struct {
	topic         domain.CanonicalTopic
	algoVersion   string
	excludeSports bool
	lookbackHours int
	minScore      float64
	dedupKeyFn    dedupGroupFunc // groups candidates for bracket-style dedup; nil disables grouping

	indexKey  indexKeyFunc
	candKeys  candidateKeyFunc
	hardGate  hardGateFunc
	scoreFn   scoreFunc
	confirmFn confirmFunc
	rejectFn  rejectFunc

	supportsAutoConfirm bool
	supportsAutoReject  bool

	repo ports.Repository
}

func (p *genericPipeline) Topic() domain.CanonicalTopic { return p.topic }
func (p *genericPipeline) AlgoVersion() string          { return p.algoVersion }
func (p *genericPipeline) SupportsAutoConfirm() bool    { return p.supportsAutoConfirm }
func (p *genericPipeline) SupportsAutoReject() bool     { return p.supportsAutoReject }
func (p *genericPipeline) MinScore() float64            { return p.minScore }

func (p *genericPipeline) FetchMarkets(ctx context.Context, venue domain.Venue, opts pipeline.FetchOptions) ([]domain.Market, error) {
	lookback := opts.LookbackHours
	if lookback == 0 {
		lookback = p.lookbackHours
	}
	params := ports.ListEligibleParams{
		LookbackHours: lookback,
		Limit:         opts.Limit,
		ExcludeSports: p.excludeSports,
	}
	return p.repo.ListEligibleMarkets(ctx, venue, params)
}

func (p *genericPipeline) BuildIndex(markets []domain.Market) pipeline.Index {
	idx := make(pipeline.MapIndex)
	for _, m := range markets {
		for _, key := range p.indexKey(m) {
			idx[key] = append(idx[key], m)
		}
	}
	return idx
}

func (p *genericPipeline) FindCandidates(left domain.Market, idx pipeline.Index) []domain.Market {
	seen := make(map[int64]bool)
	var out []domain.Market
	for _, key := range p.candKeys(left) {
		for _, m := range idx.Lookup(key) {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

func (p *genericPipeline) CheckHardGates(left, right domain.Market) pipeline.HardGateResult {
	return p.hardGate(left, right)
}

func (p *genericPipeline) Score(left, right domain.Market) *pipeline.ScoreResult {
	return p.scoreFn(left, right)
}

// ApplyDedup groups candidates by dedupKeyFn (when set) and keeps the
// best-scoring representative per group, then caps the total per left
// market (§4.5 bracket dedup). Without a dedupKeyFn every candidate is its
// own group, so the cap alone applies.
func (p *genericPipeline) ApplyDedup(candidates []pipeline.Candidate, limits pipeline.DedupLimits) []pipeline.Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score.Score != candidates[j].Score.Score {
			return candidates[i].Score.Score > candidates[j].Score.Score
		}
		if candidates[i].Left.ID != candidates[j].Left.ID {
			return candidates[i].Left.ID < candidates[j].Left.ID
		}
		return candidates[i].Right.ID < candidates[j].Right.ID
	})

	if p.dedupKeyFn == nil {
		return capPerLeft(candidates, limits)
	}

	bestByGroup := make(map[string]pipeline.Candidate)
	groupOrder := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := p.dedupKeyFn(c.Right)
		if existing, ok := bestByGroup[key]; !ok {
			bestByGroup[key] = c
			groupOrder = append(groupOrder, key)
		} else if c.Score.Score > existing.Score.Score {
			bestByGroup[key] = c
		}
	}
	deduped := make([]pipeline.Candidate, 0, len(groupOrder))
	for _, key := range groupOrder {
		deduped = append(deduped, bestByGroup[key])
	}
	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Score.Score > deduped[j].Score.Score
	})
	return capPerLeft(deduped, limits)
}

func capPerLeft(candidates []pipeline.Candidate, limits pipeline.DedupLimits) []pipeline.Candidate {
	if limits.MaxPerLeft <= 0 {
		return candidates
	}
	countByLeft := make(map[int64]int)
	out := make([]pipeline.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if countByLeft[c.Left.ID] >= limits.MaxPerLeft {
			continue
		}
		countByLeft[c.Left.ID]++
		out = append(out, c)
	}
	return out
}

func (p *genericPipeline) ShouldAutoConfirm(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict {
	if p.confirmFn == nil {
		return pipeline.ConfirmVerdict{}
	}
	return p.confirmFn(left, right, score)
}

func (p *genericPipeline) ShouldAutoReject(left, right domain.Market, score pipeline.ScoreResult) pipeline.RejectVerdict {
	if p.rejectFn == nil {
		return pipeline.RejectVerdict{}
	}
	return p.rejectFn(left, right, score)
}
