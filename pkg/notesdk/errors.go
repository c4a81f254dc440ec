package notesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired is returned when the refresh token is rejected by the
// server or the session holds no refresh token. The session's credentials
// are cleared; the caller must log in again.
var ErrSessionExpired = errors.New("notesdk: session expired, login required")

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notesdk: server returned %d: %s", e.StatusCode, e.Message)
}

// parseAPIError turns an error response body into an *APIError, falling back
// to the raw status when the body isn't the usual {"error": ...} envelope.
func parseAPIError(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: er.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
}
