package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linkforge/venuematch/internal/domain"
	"github.com/linkforge/venuematch/internal/fingerprint"
)

func TestExtractCrypto_Daily(t *testing.T) {
	title := "Will BTC close above $100,000 on January 21, 2026?"
	fp := fingerprint.BuildFingerprint(title, nil)
	m := domain.Market{Title: title}
	sig := ExtractCrypto(m, fp, domain.TopicCryptoDaily)
	assert.Equal(t, EntityBitcoin, sig.Entity)
	assert.Equal(t, "2026-01-21", sig.SettleDate)
	assert.Equal(t, DateTypeDayExact, sig.DateType)
	assert.Equal(t, MarketDailyThreshold, sig.MarketType)
}

func TestExtractCrypto_Intraday(t *testing.T) {
	ct := time.Date(2026, 1, 21, 15, 30, 0, 0, time.UTC)
	title := "Will ETH be up in the next hour?"
	fp := fingerprint.BuildFingerprint(title, &ct)
	m := domain.Market{Title: title, CloseTime: &ct}
	sig := ExtractCrypto(m, fp, domain.TopicCryptoIntraday)
	assert.Equal(t, EntityEthereum, sig.Entity)
	assert.Equal(t, "up", sig.Direction)
	assert.Equal(t, "2026-01-21T15:00:00Z", sig.TimeBucket)
}

func TestExtractMacro(t *testing.T) {
	fp := fingerprint.BuildFingerprint("Will CPI exceed 3.5% in March 2026?", nil)
	sig := ExtractMacro(fp)
	assert.Equal(t, "CPI", sig.MacroEntity)
	assert.Equal(t, PeriodStrong, sig.Tier)
	assert.Equal(t, 2026, sig.Year)
}

func TestExtractRates(t *testing.T) {
	fp := fingerprint.BuildFingerprint("Will the Fed hike rates by 25 bps in March 2026?", nil)
	sig := ExtractRates(fp)
	assert.Equal(t, BankFed, sig.Bank)
	assert.Equal(t, ActionHike, sig.Action)
	assert.Equal(t, 25, sig.BasisPoints)
}

func TestExtractElections(t *testing.T) {
	fp := fingerprint.BuildFingerprint("Will the US President be reelected in 2028?", nil)
	sig := ExtractElections(fp, nil)
	assert.Equal(t, "united states", sig.Country)
	assert.Equal(t, OfficePresident, sig.Office)
	assert.Equal(t, 2028, sig.Year)
}

func TestOfficeCompatible(t *testing.T) {
	assert.True(t, OfficeCompatible(OfficeHouse, OfficePartyControl))
	assert.True(t, OfficeCompatible(OfficeSenate, OfficePartyControl))
	assert.False(t, OfficeCompatible(OfficeHouse, OfficeSenate))
}

func TestExtractClimate(t *testing.T) {
	fp := fingerprint.BuildFingerprint("Will a hurricane make landfall in Florida by September 2026?", nil)
	sig := ExtractClimate(fp)
	assert.Equal(t, ClimateHurricane, sig.Kind)
	assert.Equal(t, "florida", sig.RegionKey)
}

func TestComparatorsContradict(t *testing.T) {
	assert.True(t, ComparatorsContradict(fingerprint.ComparatorGE, fingerprint.ComparatorLE))
	assert.False(t, ComparatorsContradict(fingerprint.ComparatorGE, fingerprint.ComparatorGE))
}

func TestExtractFinance(t *testing.T) {
	fp := fingerprint.BuildFingerprint("Will crude oil close above $90 this month?", nil)
	sig := ExtractFinance(fp)
	assert.Equal(t, AssetOil, sig.AssetClass)
	assert.Equal(t, DirectionUp, sig.Direction)
}

func TestExtractSports(t *testing.T) {
	ct := time.Date(2026, 2, 1, 19, 30, 0, 0, time.UTC)
	title := "Lakers vs Celtics: Lakers Win"
	fp := fingerprint.BuildFingerprint(title, &ct)
	m := domain.Market{Title: title, CloseTime: &ct}
	sig := ExtractSports(m, fp, nil)
	assert.Equal(t, "lakers", sig.TeamANorm)
	assert.Equal(t, "celtics", sig.TeamBNorm)
	assert.Equal(t, SportsMoneyline, sig.MarketType)
}

func TestSameTeamPair_Unordered(t *testing.T) {
	a := SportsSignals{TeamANorm: "lakers", TeamBNorm: "celtics"}
	b := SportsSignals{TeamANorm: "celtics", TeamBNorm: "lakers"}
	assert.True(t, SameTeamPair(a, b))
}
