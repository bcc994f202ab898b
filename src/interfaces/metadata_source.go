package interfaces

import (
	"context"

	"ticker-desk/src/models"
)

// -----------------------------------------------------------------------------
// IMetadataSource looks up descriptive data (name, exchange) for a ticker.
// -----------------------------------------------------------------------------

type IMetadataSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// FetchMetadata returns what the source knows about ticker.
	FetchMetadata(ctx context.Context, ticker string) (models.MStockMetadata, error)
}
