package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkforge/venuematch/internal/domain"
)

func TestClassify_SeriesTickerPrefix(t *testing.T) {
	m := domain.Market{
		Title:    "Will BTC close above $100k on January 21?",
		Metadata: map[string]any{"series_ticker": "KXBTCD-26JAN21"},
	}
	res := Classify(m)
	assert.Equal(t, domain.TopicCryptoDaily, res.Topic)
	assert.Equal(t, domain.SourceTickerPattern, res.Source)
}

func TestClassify_CategoryMap(t *testing.T) {
	m := domain.Market{Title: "Will the Fed cut rates in March?", Category: "US-Current-Affairs"}
	res := Classify(m)
	assert.Equal(t, domain.TopicElections, res.Topic)
}

func TestClassify_CategoryOilOverride(t *testing.T) {
	m := domain.Market{Title: "Will OPEC cut production this quarter?", Category: "Financials"}
	res := Classify(m)
	assert.Equal(t, domain.TopicCommodities, res.Topic)
}

func TestClassify_TitleKeywordFallback(t *testing.T) {
	m := domain.Market{Title: "Will there be a major earthquake in California?"}
	res := Classify(m)
	assert.Equal(t, domain.TopicClimate, res.Topic)
	assert.Equal(t, domain.SourceTitleKeywords, res.Source)
}

func TestClassify_Unknown(t *testing.T) {
	m := domain.Market{Title: "Will the quarterly report be published on time?"}
	res := Classify(m)
	assert.Equal(t, domain.TopicUnknown, res.Topic)
	assert.Equal(t, domain.SourceFallback, res.Source)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestDetectMve_EventTicker(t *testing.T) {
	m := domain.Market{EventTicker: "KXMV-25JAN23-LAL-BOS-SGP1", Title: "Lakers vs Celtics parlay"}
	res := DetectMve(m)
	assert.True(t, res.IsMve)
	assert.Equal(t, domain.MveSourceEventTicker, res.Source)
}

func TestDetectMve_NotMve(t *testing.T) {
	m := domain.Market{EventTicker: "KXNBA-25JAN23-LAL-BOS", Title: "Lakers at Celtics Winner"}
	res := DetectMve(m)
	assert.False(t, res.IsMve)
	assert.Equal(t, domain.MveSourceUnknown, res.Source)
}

func TestDetectMve_TitlePattern(t *testing.T) {
	m := domain.Market{Title: "Lakers same game parlay: win and cover"}
	res := DetectMve(m)
	assert.True(t, res.IsMve)
	assert.Equal(t, domain.MveSourceTitlePattern, res.Source)
}
