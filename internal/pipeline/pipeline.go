// Package pipeline declares the common topic-pipeline contract (§4.4) and
// the process-global registry every concrete pipeline in internal/pipelines
// registers itself into.
package pipeline

import (
	"context"
	"fmt"

	"github.com/linkforge/venuematch/internal/domain"
)

// Tier is the qualitative label a ScoreResult carries (§4.5).
type Tier string

const (
	TierStrong Tier = "STRONG"
	TierWeak   Tier = "WEAK"
)

// ScoreResult is the output of scoring one candidate pair (§4.4).
type ScoreResult struct {
	Score      float64
	Reason     string
	Tier       Tier
	Components map[string]float64
}

// ConfirmVerdict is shouldAutoConfirm's output.
type ConfirmVerdict struct {
	ShouldConfirm bool
	Rule          string
	Confidence    float64
}

// RejectVerdict is shouldAutoReject's output.
type RejectVerdict struct {
	ShouldReject bool
	Rule         string
	Reason       string
}

// HardGateResult is checkHardGates' output.
type HardGateResult struct {
	Passed     bool
	FailReason string
}

// Candidate pairs a left market with a scored right market.
type Candidate struct {
	Left   domain.Market
	Right  domain.Market
	Score  ScoreResult
}

// FetchOptions bounds one pipeline fetch, threaded down from the
// orchestrator (§4.6).
type FetchOptions struct {
	LookbackHours int
	Limit         int
}

// DedupLimits bounds applyDedup's output (§4.5 bracket dedup).
type DedupLimits struct {
	MaxPerLeft  int
	MaxPerRight int
}

// Pipeline is the capability bundle every topic implements (§4.4).
type Pipeline interface {
	Topic() domain.CanonicalTopic
	AlgoVersion() string
	SupportsAutoConfirm() bool
	SupportsAutoReject() bool
	// MinScore is the topic's hard floor (§4.5): the step-4 keep-gate drops
	// any candidate scoring below it before auto-confirm/reject ever runs.
	MinScore() float64

	FetchMarkets(ctx context.Context, venue domain.Venue, opts FetchOptions) ([]domain.Market, error)
	BuildIndex(markets []domain.Market) Index
	FindCandidates(left domain.Market, idx Index) []domain.Market
	CheckHardGates(left, right domain.Market) HardGateResult
	Score(left, right domain.Market) *ScoreResult
	ApplyDedup(candidates []Candidate, limits DedupLimits) []Candidate

	ShouldAutoConfirm(left, right domain.Market, score ScoreResult) ConfirmVerdict
	ShouldAutoReject(left, right domain.Market, score ScoreResult) RejectVerdict
}

// Index is a multi-key candidate index; each pipeline defines its own key
// shape internally and only exposes lookups through FindCandidates.
type Index interface {
	Lookup(key string) []domain.Market
}

// MapIndex is the straightforward map-backed Index implementation every
// pipeline in internal/pipelines builds its BuildIndex result with.
type MapIndex map[string][]domain.Market

func (idx MapIndex) Lookup(key string) []domain.Market {
	return idx[key]
}

var registry = map[domain.CanonicalTopic]Pipeline{}

// Register adds p to the process-global registry, keyed by its topic. It is
// called once per pipeline by pipelines.RegisterAll at startup; calling it
// twice for the same topic is a programming error.
func Register(p Pipeline) {
	if _, exists := registry[p.Topic()]; exists {
		panic(fmt.Sprintf("pipeline already registered for topic %s", p.Topic()))
	}
	registry[p.Topic()] = p
}

// Lookup returns the pipeline registered for topic, or nil if none is.
func Lookup(topic domain.CanonicalTopic) Pipeline {
	return registry[topic]
}

// RegisteredTopics returns every topic with a registered pipeline, in no
// particular order.
func RegisteredTopics() []domain.CanonicalTopic {
	topics := make([]domain.CanonicalTopic, 0, len(registry))
	for t := range registry {
		topics = append(topics, t)
	}
	return topics
}

// ClampScore clamps a weighted-sum score into [0,1] (§4.5).
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
