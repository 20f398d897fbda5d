package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDates_MonthDayYear(t *testing.T) {
	dates := ExtractDates("Will BTC close above $100k on January 21, 2026?")
	require.Len(t, dates, 1)
	assert.Equal(t, PrecisionDay, dates[0].Precision)
	assert.Equal(t, "2026-01-21", dates[0].SettleDate())
}

func TestExtractDates_ISO(t *testing.T) {
	dates := ExtractDates("Settlement 2026-03-15 for this market")
	require.Len(t, dates, 1)
	assert.Equal(t, "2026-03-15", dates[0].SettleDate())
}

func TestExtractDates_Quarter(t *testing.T) {
	dates := ExtractDates("Will GDP growth exceed 3% in Q2 2026?")
	require.Len(t, dates, 1)
	assert.Equal(t, PrecisionQuarter, dates[0].Precision)
	assert.Equal(t, "2026-Q2", dates[0].SettlePeriod())
}

func TestExtractDates_MonthYear(t *testing.T) {
	dates := ExtractDates("Fed rate decision in March 2026")
	require.Len(t, dates, 1)
	assert.Equal(t, PrecisionMonth, dates[0].Precision)
	assert.Equal(t, "2026-03", dates[0].SettlePeriod())
}

func TestExtractDates_YearOnly(t *testing.T) {
	dates := ExtractDates("Will this resolve by 2027?")
	require.Len(t, dates, 1)
	assert.Equal(t, PrecisionYear, dates[0].Precision)
	assert.Equal(t, 2027, dates[0].Year)
}

func TestExtractDates_NoDoubleCount(t *testing.T) {
	dates := ExtractDates("Event on January 21, 2026 resolves in 2026")
	// the full month-day-year span consumes its own year; a second,
	// independent year-only match is still found elsewhere in the title.
	require.Len(t, dates, 2)
	assert.Equal(t, PrecisionDay, dates[0].Precision)
	assert.Equal(t, PrecisionYear, dates[1].Precision)
}
