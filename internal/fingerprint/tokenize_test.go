package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	toks := Tokenize("Will BTC reach $100,000 by Dec 31?")
	assert.Equal(t, []string{"will", "btc", "reach", "100", "000", "by", "dec", "31"}, toks)
}

func TestJaccardSimilarity(t *testing.T) {
	a := "Will the Fed raise rates in March 2026?"
	b := "Will the Fed raise interest rates in March 2026?"
	sim := JaccardSimilarity(a, b)
	assert.Greater(t, sim, 0.6)

	assert.Equal(t, 1.0, JaccardSimilarity("bitcoin price", "bitcoin price"))
	assert.Equal(t, 0.0, JaccardSimilarity("", ""))
}

func TestTickerRegex_WordBoundary(t *testing.T) {
	assert.True(t, MatchesTicker("Will ETH reach $5k?", "eth"))
	assert.True(t, MatchesTicker("Will $ETH reach $5k?", "eth"))
	assert.False(t, MatchesTicker("Pete Hegseth resigns", "eth"))
	assert.False(t, MatchesTicker("What is the solution", "sol"))
	assert.True(t, MatchesTicker("SOL above $200", "sol"))
}

func TestContainsPhrase(t *testing.T) {
	assert.True(t, ContainsPhrase("Will the Federal Reserve cut rates?", "federal reserve"))
	assert.False(t, ContainsPhrase("Will the treasury issue new bonds?", "federal reserve"))
}
