package rules

import (
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/pipeline"
)

// Rule is one named predicate over a score and its parsed structured
// reason fields.
type Rule struct {
	Name  string
	Check func(score float64, fields map[string]float64) bool
}

// Pack bundles the named confirm and reject rules for one topic (§4.7).
// Confirm requires every ConfirmRules predicate to hold; reject fires on
// the first RejectRules predicate that holds.
type Pack struct {
	Topic         domain.CanonicalTopic
	ConfirmRules  []Rule
	RejectRules   []Rule
}

var packs = map[domain.CanonicalTopic]Pack{}

func register(p Pack) {
	packs[p.Topic] = p
}

// PackFor returns the rule pack registered for topic, and whether one
// exists. Topics without a pack (no safe-confirm/reject story, e.g.
// CRYPTO_INTRADAY's reject-only pipeline still gets one; UNIVERSAL/UNKNOWN
// never do) fail ok.
func PackFor(topic domain.CanonicalTopic) (Pack, bool) {
	p, ok := packs[topic]
	return p, ok
}

// Evaluate re-derives a confirm/reject verdict purely from a persisted
// score and structured reason string, without touching the original
// market titles or the pipeline that produced them (§4.7).
func Evaluate(topic domain.CanonicalTopic, score float64, reason string) (pipeline.ConfirmVerdict, pipeline.RejectVerdict) {
	pack, ok := PackFor(topic)
	if !ok {
		return pipeline.ConfirmVerdict{}, pipeline.RejectVerdict{}
	}
	fields := ParseReason(reason)

	confirm := pipeline.ConfirmVerdict{}
	allPass := len(pack.ConfirmRules) > 0
	for _, r := range pack.ConfirmRules {
		if !r.Check(score, fields) {
			allPass = false
			break
		}
	}
	if allPass {
		confirm = pipeline.ConfirmVerdict{ShouldConfirm: true, Rule: fmt.Sprintf("rules_reeval:%s", topic), Confidence: score}
	}

	reject := pipeline.RejectVerdict{}
	for _, r := range pack.RejectRules {
		if r.Check(score, fields) {
			reject = pipeline.RejectVerdict{ShouldReject: true, Rule: r.Name, Reason: r.Name}
			break
		}
	}
	return confirm, reject
}

func field(fields map[string]float64, key string) float64 {
	return fields[key]
}

func fieldOrInf(fields map[string]float64, key string) float64 {
	v, ok := fields[key]
	if !ok {
		return 1e18
	}
	return v
}
