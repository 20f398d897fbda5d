package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linkforge/venuematch/internal/domain"
)

func ts(d string) *time.Time {
	t, err := time.Parse("2006-01-02", d)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestExplain_ActiveWithinWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	close := now.Add(24 * time.Hour)
	m := domain.Market{Status: domain.StatusActive, CloseTime: &close}
	codes := Explain(m, now, Params{GraceMinutes: 60, ForwardHours: 72})
	assert.Contains(t, codes, ReasonEligible)
}

func TestExplain_StaleActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := now.Add(-2 * time.Hour)
	m := domain.Market{Status: domain.StatusActive, CloseTime: &closed}
	codes := Explain(m, now, Params{GraceMinutes: 60, ForwardHours: 72})
	assert.Contains(t, codes, ReasonStaleActive)
}

func TestExplain_WithinGrace(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := now.Add(-30 * time.Minute)
	m := domain.Market{Status: domain.StatusActive, CloseTime: &closed}
	codes := Explain(m, now, Params{GraceMinutes: 60, ForwardHours: 72})
	assert.Contains(t, codes, ReasonEligible)
	assert.Contains(t, codes, ReasonWithinGrace)
}

func TestExplain_TooFarForward(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := now.Add(1000 * time.Hour)
	m := domain.Market{Status: domain.StatusActive, CloseTime: &closed}
	codes := Explain(m, now, Params{GraceMinutes: 60, ForwardHours: 72})
	assert.Contains(t, codes, ReasonStatusTerminal)
}

func TestExplain_ClosedTooOld(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := now.Add(-1000 * time.Hour)
	m := domain.Market{Status: domain.StatusClosed, CloseTime: &closed}
	codes := Explain(m, now, Params{LookbackHours: 168})
	assert.Contains(t, codes, ReasonClosedTooOld)
}

func TestExplain_ClosedWithinLookback(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := now.Add(-10 * time.Hour)
	m := domain.Market{Status: domain.StatusClosed, CloseTime: &closed}
	assert.True(t, IsEligible(m, now, Params{LookbackHours: 168}))
}

func TestExplain_ResolvedIsTerminal(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Market{Status: domain.StatusResolved, CloseTime: ts("2025-12-01")}
	codes := Explain(m, now, Params{})
	assert.Contains(t, codes, ReasonStatusTerminal)
	assert.False(t, IsEligible(m, now, Params{}))
}

func TestExplain_NoCloseTimeActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Market{Status: domain.StatusActive}
	codes := Explain(m, now, Params{})
	assert.Contains(t, codes, ReasonEligible)
	assert.Contains(t, codes, ReasonNoCloseTime)
}

func TestCategorizeStaleActive(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := Params{GraceMinutes: 60}

	minor := domain.Market{Status: domain.StatusActive, CloseTime: tsAt(now.Add(-90 * time.Minute))}
	assert.Equal(t, StaleMinor, CategorizeStaleActive(minor, now, p))

	major := domain.Market{Status: domain.StatusActive, CloseTime: tsAt(now.Add(-200 * time.Minute))}
	assert.Equal(t, StaleMajor, CategorizeStaleActive(major, now, p))

	ok := domain.Market{Status: domain.StatusActive, CloseTime: tsAt(now.Add(10 * time.Minute))}
	assert.Equal(t, StaleOK, CategorizeStaleActive(ok, now, p))
}

func tsAt(t time.Time) *time.Time { return &t }

func TestDefaultParams_CryptoDaily(t *testing.T) {
	p := DefaultParams(domain.TopicCryptoDaily)
	assert.Equal(t, 72, p.ForwardHours)
}
