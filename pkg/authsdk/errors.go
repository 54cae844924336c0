package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Details returned by the session endpoints.
const (
	DetailLoginSuccessful   = "Login successful"
	DetailInvalidCredential = "Неверные учетные данные"
	DetailRefreshSuccessful = "Token refreshed successfully"
	DetailRefreshNotFound   = "Refresh token not found"
	DetailRefreshInvalid    = "Invalid or expired refresh token"
	DetailLogoutSuccessful  = "Logout successful"
	DetailTokenExpired      = "Token expired"
	DetailNotProvided       = "Authentication credentials were not provided."
)

// ErrNotLoggedIn is returned by Session methods after Logout.
var ErrNotLoggedIn = errors.New("authsdk: session is logged out")

// APIError is a non-2xx response from the service. Either Detail is set
// ({"detail": "..."} bodies) or Fields holds per-field validation messages
// ({"field": ["...", ...]} bodies).
type APIError struct {
	StatusCode int
	Detail     string
	Fields     map[string][]string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" || len(e.Fields) == 0 {
		return fmt.Sprintf("authsdk: %d: %s", e.StatusCode, e.Detail)
	}

	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return fmt.Sprintf("authsdk: %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// Field returns the messages for one field, if any.
func (e *APIError) Field(name string) []string {
	return e.Fields[name]
}

// IsUnauthorized reports whether err is a 401 from the service.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// parseErrorResponse turns an error body into an *APIError. Bodies that are
// neither shape keep the raw text as Detail.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var detail struct {
		Detail *string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != nil {
		apiErr.Detail = *detail.Detail
		return apiErr
	}

	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err == nil && len(fields) > 0 {
		apiErr.Fields = fields
		return apiErr
	}

	apiErr.Detail = strings.TrimSpace(string(body))
	if apiErr.Detail == "" {
		apiErr.Detail = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
