package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const electionsAlgoVersion = "elections@3.0.15"

// NewElections builds the ELECTIONS pipeline (§4.5).
func NewElections(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicElections,
		algoVersion:         electionsAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.50,
		repo:                repo,
		supportsAutoConfirm: true,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractElections(signalsOf(m), electionsMetaCandidates(m))
		if sig.Country == "" || sig.Office == signals.OfficeUnknown {
			return nil
		}
		primary := fmt.Sprintf("%s|%s|%d", sig.Country, sig.Office, sig.Year)
		secondary := fmt.Sprintf("%s|%d", sig.Country, sig.Year)
		keys := []string{primary, secondary}
		for _, c := range sig.Candidates {
			keys = append(keys, "candidate:"+c)
		}
		return keys
	}
	p.candKeys = p.indexKey
	p.hardGate = electionsHardGate
	p.scoreFn = electionsScore
	p.confirmFn = electionsSafeConfirm
	p.rejectFn = rejectOnFieldZero(p.minScore, "country", "country_mismatch")
	return p
}

// electionsMetaCandidates reads a venue-supplied candidate list out of
// Market.Metadata; free-text extraction from titles is unreliable enough
// to skip per §4.3.
func electionsMetaCandidates(m domain.Market) []string {
	raw, ok := m.Metadata["candidates"]
	if !ok {
		return nil
	}
	list, ok := raw.([]string)
	if !ok {
		if anyList, ok2 := raw.([]any); ok2 {
			out := make([]string, 0, len(anyList))
			for _, v := range anyList {
				if s, ok3 := v.(string); ok3 {
					out = append(out, s)
				}
			}
			return out
		}
		return nil
	}
	return list
}

func electionsHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractElections(signalsOf(left), electionsMetaCandidates(left))
	r := signals.ExtractElections(signalsOf(right), electionsMetaCandidates(right))

	if l.Country == "" || r.Country == "" || l.Country != r.Country {
		// The reason names both extracted countries so the failing pair is
		// visible in the gate result itself.
		return pipeline.HardGateResult{FailReason: fmt.Sprintf("country_mismatch: %s vs %s", l.Country, r.Country)}
	}
	if !signals.OfficeCompatible(l.Office, r.Office) {
		return pipeline.HardGateResult{FailReason: "office_mismatch"}
	}
	if (l.Year == 0) != (r.Year == 0) || (l.Year != 0 && l.Year != r.Year) {
		return pipeline.HardGateResult{FailReason: "year_mismatch"}
	}
	if l.State != "" && r.State != "" && l.State != r.State {
		return pipeline.HardGateResult{FailReason: "state_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func electionsScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractElections(signalsOf(left), electionsMetaCandidates(left))
	r := signals.ExtractElections(signalsOf(right), electionsMetaCandidates(right))

	countryScore := boolScore(l.Country != "" && l.Country == r.Country)
	officeScore := boolScore(l.Office == r.Office)
	yearScore := boolScore(l.Year != 0 && l.Year == r.Year)
	candidateScore := candidateOverlapScore(l.Candidates, r.Candidates)
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.20*countryScore + 0.20*officeScore + 0.15*yearScore + 0.25*candidateScore + 0.20*textScore)

	tier := pipeline.TierWeak
	if countryScore == 1 && officeScore == 1 && yearScore == 1 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("ELECTIONS: country=%.2f office=%.2f year=%.2f cand=%.2f txt=%.2f",
		countryScore, officeScore, yearScore, candidateScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"country": countryScore, "office": officeScore, "year": yearScore,
			"candidates": candidateScore, "text": textScore,
		},
	}
}

func boolScore(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func candidateOverlapScore(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	overlap := 0
	for _, c := range b {
		if set[c] {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	return pipeline.ClampScore(float64(overlap) / float64(maxInt(len(a), len(b))))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func electionsSafeConfirm(left, right domain.Market, score pipeline.ScoreResult) pipeline.ConfirmVerdict {
	const rule = "elections_safe_confirm@3.0.15"
	if score.Score < 0.95 {
		return pipeline.ConfirmVerdict{}
	}
	if score.Components["country"] != 1.0 || score.Components["office"] != 1.0 || score.Components["year"] != 1.0 {
		return pipeline.ConfirmVerdict{}
	}
	l := signals.ExtractElections(signalsOf(left), electionsMetaCandidates(left))
	r := signals.ExtractElections(signalsOf(right), electionsMetaCandidates(right))
	if len(l.Candidates) > 0 && len(r.Candidates) > 0 && score.Components["candidates"] <= 0 {
		return pipeline.ConfirmVerdict{}
	}
	return pipeline.ConfirmVerdict{ShouldConfirm: true, Rule: rule, Confidence: score.Score}
}
