package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractNumbers_Monetary(t *testing.T) {
	nums := ExtractNumbers("Will BTC close above $100k today?")
	require.Len(t, nums, 1)
	assert.Equal(t, KindMonetary, nums[0].Kind)
	assert.Equal(t, 100000.0, nums[0].Value)
}

func TestExtractNumbers_Percent(t *testing.T) {
	nums := ExtractNumbers("Will unemployment exceed 5.5%?")
	require.Len(t, nums, 1)
	assert.Equal(t, KindPercent, nums[0].Kind)
	assert.Equal(t, 5.5, nums[0].Value)
}

func TestExtractNumbers_PlainWithCommas(t *testing.T) {
	nums := ExtractNumbers("Will the index reach 45,000 points?")
	require.Len(t, nums, 1)
	assert.Equal(t, KindPlain, nums[0].Kind)
	assert.Equal(t, 45000.0, nums[0].Value)
}

func TestExtractNumbers_BillionSuffix(t *testing.T) {
	nums := ExtractNumbers("Will the deal exceed $2.5b in value?")
	require.Len(t, nums, 1)
	assert.Equal(t, 2.5e9, nums[0].Value)
}
