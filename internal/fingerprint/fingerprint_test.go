package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFingerprint(t *testing.T) {
	fp := BuildFingerprint("Will the Fed raise rates above 5% by March 2026?", nil)
	assert.NotEmpty(t, fp.Tokens)
	assert.Contains(t, fp.MacroEntities, "fed")
	assert.Equal(t, ComparatorGE, fp.Comparator)
	assert.Len(t, fp.Numbers, 1)
	assert.Equal(t, KindPercent, fp.Numbers[0].Kind)
}

func TestFingerprint_SameSettleDate(t *testing.T) {
	a := BuildFingerprint("Will BTC close above $100k on January 21, 2026?", nil)
	b := BuildFingerprint("Bitcoin price above 100000 on 2026-01-21", nil)
	assert.True(t, a.SameSettleDate(b))

	c := BuildFingerprint("Will BTC close above $100k on January 22, 2026?", nil)
	assert.False(t, a.SameSettleDate(c))
}

func TestFingerprint_Jaccard(t *testing.T) {
	a := BuildFingerprint("Will the Fed raise rates in March 2026?", nil)
	b := BuildFingerprint("Will the Fed raise interest rates in March 2026?", nil)
	assert.Greater(t, a.Jaccard(b), 0.6)
}
