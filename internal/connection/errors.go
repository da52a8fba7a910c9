package connection

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/desertthunder/bcx/internal/shared"
)

// Media API error codes that mean the service itself is unhealthy.
const (
	codeUnknownServer      = 100
	codeServiceUnavailable = 103
)

// APIError is an error reported by the Media API, either in the response body
// or as a non-2xx status.
type APIError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Code    int    `json:"code"`

	Command    string `json:"-"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	switch {
	case e.Name != "" && e.Message != "":
		return fmt.Sprintf("%s: %s (%s, code %d)", e.Command, e.Message, e.Name, e.Code)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Command, e.Message)
	default:
		return fmt.Sprintf("%s: unexpected status %d", e.Command, e.StatusCode)
	}
}

// Unwrap matches [shared.ErrAPIRequest] and, for outages, [shared.ErrServiceUnavailable].
func (e *APIError) Unwrap() []error {
	errs := []error{shared.ErrAPIRequest}
	if e.StatusCode == http.StatusServiceUnavailable || e.Code == codeServiceUnavailable || e.Code == codeUnknownServer {
		errs = append(errs, shared.ErrServiceUnavailable)
	}
	return errs
}

// parseAPIError decodes the error member of a response. It returns nil when raw
// is absent or null. The member is usually an object but older endpoints send a
// bare string.
func parseAPIError(command string, status int, raw json.RawMessage) *APIError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	e := &APIError{Command: command, StatusCode: status}
	if err := json.Unmarshal(raw, e); err != nil {
		var msg string
		if json.Unmarshal(raw, &msg) == nil {
			e.Message = msg
		} else {
			e.Message = string(raw)
		}
	}
	e.Command, e.StatusCode = command, status
	return e
}
