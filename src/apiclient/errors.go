package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errMissingTaskID = errors.New("response has no task_id")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string // empty when the body carried no usable message
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// TransportError covers everything that kept a usable answer from arriving:
// dial failures, timeouts, cancelled contexts and undecodable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UserMessage picks the text shown to the user for err: the backend's own
// message when it sent one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// parseErrorMessage looks for message, detail then error. Only non-empty
// string values count.
func parseErrorMessage(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
