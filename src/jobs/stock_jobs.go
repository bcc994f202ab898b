package jobs

import (
	"context"
	"errors"

	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
	"ticker-desk/src/storage"
)

// NewStockFetchHandler refreshes a stock's name and exchange from source.
// Values the source does not know keep their stored value.
func NewStockFetchHandler(store interfaces.IStockStore, source interfaces.IMetadataSource, log *logger.Logger) Handler {
	return func(ctx context.Context, task models.MTask) (map[string]any, error) {
		stock, err := store.GetStock(ctx, task.StockID)
		if errors.Is(err, storage.ErrStockNotFound) {
			log.Warning("Stock %d not found for refresh", task.StockID)
			return map[string]any{"status": "not_found", "stock_id": task.StockID}, nil
		}
		if err != nil {
			return nil, err
		}

		log.Info("Refreshing ticker %s (#%d) via %s", stock.Ticker, stock.ID, source.Name())

		md, err := source.FetchMetadata(ctx, stock.Ticker)
		if err != nil {
			return nil, err
		}

		name := stock.Name
		if md.Name != "" {
			name = models.StringPtr(truncate(md.Name, models.MaxNameLength))
		}
		exchange := stock.Exchange
		if md.Exchange != "" {
			exchange = models.StringPtr(truncate(md.Exchange, models.MaxExchangeLength))
		}

		updated, err := store.UpdateMetadata(ctx, stock.ID, name, exchange)
		if err != nil {
			return nil, err
		}

		snapshot := map[string]any{
			"status":   "ok",
			"stock_id": updated.ID,
			"ticker":   updated.Ticker,
			"name":     updated.DisplayName(),
			"exchange": updated.DisplayExchange(),
		}
		log.Info("Updated ticker %s -> %v", updated.Ticker, snapshot)
		return snapshot, nil
	}
}

// PingHandler is a worker heartbeat used for smoke testing.
func PingHandler(_ context.Context, _ models.MTask) (map[string]any, error) {
	return map[string]any{"result": "pong"}, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
