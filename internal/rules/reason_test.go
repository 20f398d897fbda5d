package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatParseRoundTrip(t *testing.T) {
	components := map[string]float64{
		"entity": 1.0,
		"date":   0.9,
		"text":   0.0512,
	}
	reason := FormatReason(components)
	parsed := ParseReason(reason)
	assert.InDelta(t, components["entity"], parsed["entity"], 1e-6)
	assert.InDelta(t, components["date"], parsed["date"], 1e-6)
	assert.InDelta(t, components["text"], parsed["text"], 1e-6)
}

func TestFormatReason_Deterministic(t *testing.T) {
	components := map[string]float64{"z": 1, "a": 2, "m": 3}
	assert.Equal(t, FormatReason(components), FormatReason(components))
	assert.Equal(t, "a=2.000000 m=3.000000 z=1.000000", FormatReason(components))
}

func TestParseReason_ToleratesLegacyTrace(t *testing.T) {
	legacy := "entity=BTC dateType=day_exact date=0.90(0d) num=0.85[STRONG] text=0.05"
	fields := ParseReason(legacy)
	assert.InDelta(t, 0.90, fields["date"], 1e-6)
	assert.InDelta(t, 0.85, fields["num"], 1e-6)
	assert.InDelta(t, 0.05, fields["text"], 1e-6)
	_, hasEntity := fields["entity"]
	assert.False(t, hasEntity)
}
