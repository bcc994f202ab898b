package models

import "time"

// Task states, in the order a task moves through them
const (
	TaskPending = "PENDING"
	TaskStarted = "STARTED"
	TaskRetry   = "RETRY"
	TaskSuccess = "SUCCESS"
	TaskFailure = "FAILURE"
)

// Registered job names
const (
	JobStockFetch = "stock.fetch"
	JobDebugPing  = "debug.ping"
)

// MTask tracks one enqueued job.
type MTask struct {
	TaskID    string         `json:"task_id"`
	Name      string         `json:"name"`
	StockID   int64          `json:"stock_id,omitempty"`
	State     string         `json:"state"`
	Attempts  int            `json:"attempts"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Done reports whether the task reached a terminal state.
func (t MTask) Done() bool {
	return t.State == TaskSuccess || t.State == TaskFailure
}
