package jobs

import (
	"context"
	"time"

	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
	"ticker-desk/src/utils"
)

// Refresher periodically enqueues a metadata refresh for every stock whose
// exchange is currently trading.
type Refresher struct {
	Store     interfaces.IStockStore
	Queue     interfaces.IJobQueue
	Scheduler *utils.MarketScheduler
	Interval  time.Duration
	Logger    *logger.Logger

	now func() time.Time
}

func NewRefresher(store interfaces.IStockStore, queue interfaces.IJobQueue, interval time.Duration, log *logger.Logger) *Refresher {
	return &Refresher{
		Store:     store,
		Queue:     queue,
		Scheduler: utils.NewMarketScheduler(nil, log),
		Interval:  interval,
		Logger:    log,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// Run blocks until ctx is cancelled. A non-positive interval disables it.
func (r *Refresher) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		r.Logger.Info("Periodic refresh disabled")
		<-ctx.Done()
		return nil
	}

	r.Logger.Info("Periodic refresh every %v", r.Interval)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil {
				r.Logger.Error("Periodic refresh failed: %v", err)
			}
		}
	}
}

// Tick enqueues one refresh round and returns how many tasks were queued.
func (r *Refresher) Tick(ctx context.Context) (int, error) {
	stocks, err := r.Store.ListStocks(ctx)
	if err != nil {
		return 0, err
	}

	tickers := make([]string, len(stocks))
	for i, s := range stocks {
		tickers[i] = s.Ticker
	}
	r.Scheduler.UpdateSymbols(tickers)

	now := r.now()
	queued := 0
	for _, s := range stocks {
		if !r.Scheduler.IsOpen(s.Ticker, now) {
			continue
		}
		if _, err := r.Queue.Enqueue(models.JobStockFetch, s.ID); err != nil {
			r.Logger.Warning("Could not enqueue refresh for %s: %v", s.Ticker, err)
			continue
		}
		queued++
	}

	if queued > 0 {
		r.Logger.Info("Queued %d periodic refreshes", queued)
	}
	return queued, nil
}
