package models

// MAPIError is the error body shared by the backend contract.
// Message is the documented field; Detail mirrors it for older clients and
// Error is only ever read, never written.
type MAPIError struct {
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewAPIError builds the body the backend writes.
func NewAPIError(msg string) MAPIError {
	return MAPIError{Message: msg, Detail: msg}
}
