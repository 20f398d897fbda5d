package pipelines

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
	"github.com/linkforge/venuematch/internal/pipeline"
	"github.com/linkforge/venuematch/internal/ports"
	"github.com/linkforge/venuematch/internal/signals"
)

const geopoliticsAlgoVersion = "geopolitics@1.2.0"

// NewGeopolitics builds the GEOPOLITICS pipeline (§4.5).
func NewGeopolitics(repo ports.Repository) pipeline.Pipeline {
	p := &genericPipeline{
		topic:               domain.TopicGeopolitics,
		algoVersion:         geopoliticsAlgoVersion,
		excludeSports:       true,
		lookbackHours:       720,
		minScore:            0.45,
		repo:                repo,
		supportsAutoReject:  true,
	}
	p.indexKey = func(m domain.Market) []string {
		sig := signals.ExtractGeopolitics(signalsOf(m))
		if len(sig.Countries) == 0 {
			return nil
		}
		keys := make([]string, 0, len(sig.Countries))
		for _, c := range sig.Countries {
			keys = append(keys, string(sig.EventType)+"|"+c)
		}
		return keys
	}
	p.candKeys = p.indexKey
	p.hardGate = geopoliticsHardGate
	p.scoreFn = geopoliticsScore
	p.rejectFn = rejectOnFieldZero(p.minScore, "eventType", "event_type_mismatch")
	return p
}

func geopoliticsHardGate(left, right domain.Market) pipeline.HardGateResult {
	l := signals.ExtractGeopolitics(signalsOf(left))
	r := signals.ExtractGeopolitics(signalsOf(right))
	if l.EventType == signals.EventUnknown || l.EventType != r.EventType {
		return pipeline.HardGateResult{FailReason: "event_type_mismatch"}
	}
	if !stringsOverlap(l.Countries, r.Countries) {
		return pipeline.HardGateResult{FailReason: "country_mismatch"}
	}
	return pipeline.HardGateResult{Passed: true}
}

func stringsOverlap(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}

func geopoliticsScore(left, right domain.Market) *pipeline.ScoreResult {
	l := signals.ExtractGeopolitics(signalsOf(left))
	r := signals.ExtractGeopolitics(signalsOf(right))

	regionScore := boolScore(stringsOverlap(l.Regions, r.Regions))
	countryScore := jaccardStrings(l.Countries, r.Countries)
	eventScore := boolScore(l.EventType != signals.EventUnknown && l.EventType == r.EventType)
	actorScore := boolScore(len(l.Countries) > 0 && stringsOverlap(l.Countries, r.Countries))
	textScore := fingerprint.JaccardSimilarity(left.Title, right.Title)

	total := pipeline.ClampScore(0.30*regionScore + 0.25*countryScore + 0.20*eventScore + 0.15*actorScore + 0.10*textScore)

	tier := pipeline.TierWeak
	if eventScore == 1 && countryScore >= 0.5 {
		tier = pipeline.TierStrong
	}

	reason := fmt.Sprintf("GEOPOLITICS: region=%.2f country=%.2f event=%.2f actors=%.2f txt=%.2f",
		regionScore, countryScore, eventScore, actorScore, textScore)

	return &pipeline.ScoreResult{
		Score:  total,
		Reason: reason,
		Tier:   tier,
		Components: map[string]float64{
			"region": regionScore, "country": countryScore, "eventType": eventScore,
			"actors": actorScore, "text": textScore,
		},
	}
}

func jaccardStrings(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	inter := 0
	for s := range setA {
		if setB[s] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

