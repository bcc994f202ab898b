package models

import "time"

// Column limits enforced by the backend and the dashboard input.
const (
	MaxTickerLength   = 12
	MaxNameLength     = 255
	MaxExchangeLength = 32
)

// MStock is a tracked ticker as returned by GET /api/stocks.
type MStock struct {
	ID       int64   `json:"id"`
	Ticker   string  `json:"ticker"`
	Name     *string `json:"name"`
	Exchange *string `json:"exchange"`
}

// DisplayName returns the name or "" when unknown.
func (s MStock) DisplayName() string {
	if s.Name == nil {
		return ""
	}
	return *s.Name
}

// DisplayExchange returns the exchange or "" when unknown.
func (s MStock) DisplayExchange() string {
	if s.Exchange == nil {
		return ""
	}
	return *s.Exchange
}

// -----------------------------------------------------------------------------

// MStockCreate is the payload accepted by POST /api/stocks.
type MStockCreate struct {
	Ticker   string  `json:"ticker"`
	Name     *string `json:"name,omitempty"`
	Exchange *string `json:"exchange,omitempty"`
}

// -----------------------------------------------------------------------------

// MStockMetadata is what a metadata source knows about a ticker.
type MStockMetadata struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Exchange  string    `json:"exchange"`
	FetchedAt time.Time `json:"fetched_at"`
}

// -----------------------------------------------------------------------------

// MAddStockResponse is the 201 body of POST /api/stocks.
type MAddStockResponse struct {
	MStock
	TaskID string `json:"task_id"`
}

// MStartJobResponse is the 202 body of POST /api/stocks/{id}/start.
type MStartJobResponse struct {
	TaskID  string `json:"task_id"`
	StockID int64  `json:"stock_id"`
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
