package interfaces

import (
	"context"

	"ticker-desk/src/models"
)

// -----------------------------------------------------------------------------
// IBackendAPI is the front end's view of the ticker backend (HTTP contract).
// -----------------------------------------------------------------------------

type IBackendAPI interface {

	// ListStocks performs GET /api/stocks.
	ListStocks(ctx context.Context) ([]models.MStock, error)

	// -----------------------------------------------------------------------------

	// AddStock performs POST /api/stocks?ticker=... and returns the task id.
	AddStock(ctx context.Context, ticker string) (string, error)

	// -----------------------------------------------------------------------------

	// StartJob performs POST /api/stocks/{id}/start.
	StartJob(ctx context.Context, id int64) error
}
