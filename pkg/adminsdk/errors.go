package adminsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError represents a non-2xx response from the backoffice service.
// It implements the error interface so callers can match on StatusCode
// or surface the server's message directly.
type APIError struct {
	// StatusCode is the HTTP status code of the failed request
	StatusCode int

	// Message is the human-readable message returned by the server
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// parseErrorResponse turns an HTTP error response into an *APIError.
// Returns nil if the response indicates success (2xx status code).
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errResp.Message,
		}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}
}
