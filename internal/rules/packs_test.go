package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkforge/venuematch/internal/domain"
)

func TestEmbeddedRulePacks_CoverAllScoredTopics(t *testing.T) {
	for _, topic := range []domain.CanonicalTopic{
		domain.TopicCryptoDaily, domain.TopicCryptoIntraday, domain.TopicMacro,
		domain.TopicRates, domain.TopicElections, domain.TopicGeopolitics,
		domain.TopicEntertainment, domain.TopicClimate, domain.TopicCommodities,
		domain.TopicFinance, domain.TopicSports,
	} {
		pack, ok := PackFor(topic)
		assert.True(t, ok, "expected a rule pack for %s", topic)
		assert.NotEmpty(t, pack.RejectRules, "expected reject rules for %s", topic)
	}
}

func TestEmbeddedRulePacks_NoPackForUnknownOrUniversal(t *testing.T) {
	_, ok := PackFor(domain.TopicUnknown)
	assert.False(t, ok)
	_, ok = PackFor(domain.TopicUniversal)
	assert.False(t, ok)
}
