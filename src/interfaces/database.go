package interfaces

import (
	"context"

	"ticker-desk/src/models"
)

// -----------------------------------------------------------------------------
// IStockStore defines the contract for stock persistence.
// -----------------------------------------------------------------------------

type IStockStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// ListStocks returns every tracked stock ordered by id.
	ListStocks(ctx context.Context) ([]models.MStock, error)

	// -----------------------------------------------------------------------------

	// GetStock returns storage.ErrStockNotFound when id is unknown.
	GetStock(ctx context.Context, id int64) (models.MStock, error)

	// -----------------------------------------------------------------------------

	// CreateStock inserts a stock; the ticker is stored uppercase.
	// Returns storage.ErrTickerExists on a duplicate ticker.
	CreateStock(ctx context.Context, in models.MStockCreate) (models.MStock, error)

	// -----------------------------------------------------------------------------

	// UpdateMetadata overwrites name and exchange of an existing stock.
	UpdateMetadata(ctx context.Context, id int64, name, exchange *string) (models.MStock, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
