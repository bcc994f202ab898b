package utils

import (
	"sync"
	"time"

	"ticker-desk/src/logger"
)

// MarketScheduler tracks which calendar applies to each ticker so the
// refresher only touches stocks whose market is trading.
type MarketScheduler struct {
	Logger *logger.Logger

	mu        sync.RWMutex
	calendars map[string]*TradingCalendar
	byMIC     map[string]*TradingCalendar
}

// -----------------------------------------------------------------------------

func NewMarketScheduler(tickers []string, l *logger.Logger) *MarketScheduler {
	ms := &MarketScheduler{
		Logger:    l,
		calendars: make(map[string]*TradingCalendar),
		byMIC:     make(map[string]*TradingCalendar),
	}
	ms.UpdateSymbols(tickers)
	return ms
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the tracked tickers. Calendars are shared per MIC.
func (ms *MarketScheduler) UpdateSymbols(tickers []string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.calendars = make(map[string]*TradingCalendar, len(tickers))
	for _, ticker := range tickers {
		mic := MICForTicker(ticker)
		cal, ok := ms.byMIC[mic]
		if !ok {
			cal = GetCalendar(ticker)
			ms.byMIC[mic] = cal
		}
		ms.calendars[ticker] = cal
	}

	ms.Logger.Debug("MarketScheduler: mapped %d tickers to %d calendars", len(tickers), len(ms.byMIC))
}

// -----------------------------------------------------------------------------

// IsOpen reports whether ticker's market is open at t. Unknown tickers are
// resolved on the fly.
func (ms *MarketScheduler) IsOpen(ticker string, t time.Time) bool {
	ms.mu.RLock()
	cal, ok := ms.calendars[ticker]
	ms.mu.RUnlock()

	if !ok {
		cal = GetCalendar(ticker)
	}
	return cal.IsOpenOnMinute(t)
}

// AnyMarketOpen checks if any tracked market is open at t.
func (ms *MarketScheduler) AnyMarketOpen(t time.Time) bool {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	seen := make(map[*TradingCalendar]bool)
	for _, cal := range ms.calendars {
		if seen[cal] {
			continue
		}
		seen[cal] = true
		if cal.IsOpenOnMinute(t) {
			return true
		}
	}
	return false
}
