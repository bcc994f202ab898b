package models

// -----------------------------------------------------------------------------
// Dashboard state pushed to the browser
// -----------------------------------------------------------------------------

type MDashboardState struct {
	Type       string   `json:"type"` // always "STATE"
	Stocks     []MStock `json:"stocks"`
	Loading    bool     `json:"loading"`
	Pending    bool     `json:"pending"`
	Triggering []int64  `json:"triggering"`
	Error      string   `json:"error,omitempty"`
	Info       string   `json:"info,omitempty"`
	Input      string   `json:"input"`
	Version    uint64   `json:"version"`
}

// -----------------------------------------------------------------------------
// Commands sent by the browser
// -----------------------------------------------------------------------------

const (
	CommandRefresh = "refresh"
	CommandInput   = "input"
	CommandSubmit  = "submit"
	CommandStart   = "start"
)

type MDashboardCommand struct {
	Command string `json:"command"`
	Ticker  string `json:"ticker,omitempty"`
	ID      int64  `json:"id,omitempty"`
}
