package utils

import (
	"testing"
	"time"

	"ticker-desk/src/logger"

	"github.com/stretchr/testify/assert"
)

func TestMICForTicker(t *testing.T) {
	cases := map[string]string{
		"AAPL":    "xnys",
		"brk.b":   "xnys",
		"VOD.L":   "xlon",
		"7203.T":  "xtks",
		"SHOP.TO": "xtse",
		"0700.HK": "xhkg",
		".L":      "xnys",
	}
	for ticker, want := range cases {
		assert.Equal(t, want, MICForTicker(ticker), ticker)
	}
}

func TestFallbackCalendarSession(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	tc := &TradingCalendar{MIC: "xnys", Fallback: true, Timezone: ny}

	// Wednesday
	assert.True(t, tc.IsOpenOnMinute(time.Date(2025, 3, 12, 10, 0, 0, 0, ny)))
	assert.False(t, tc.IsOpenOnMinute(time.Date(2025, 3, 12, 9, 29, 0, 0, ny)))
	assert.False(t, tc.IsOpenOnMinute(time.Date(2025, 3, 12, 16, 0, 0, 0, ny)))
	// Saturday
	assert.False(t, tc.IsOpenOnMinute(time.Date(2025, 3, 15, 11, 0, 0, 0, ny)))
}

func TestMarketSchedulerWeekend(t *testing.T) {
	ms := NewMarketScheduler([]string{"AAPL", "VOD.L"}, logger.NewNop("sched"))

	sunday := time.Date(2025, 3, 16, 15, 0, 0, 0, time.UTC)
	assert.False(t, ms.IsOpen("AAPL", sunday))
	assert.False(t, ms.IsOpen("VOD.L", sunday))
	assert.False(t, ms.AnyMarketOpen(sunday))
}
