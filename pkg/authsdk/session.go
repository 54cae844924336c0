package authsdk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Session is a logged-in cookie session. It keeps the access, refresh and
// csrftoken cookies in its own jar, echoes the CSRF token on unsafe
// requests and refreshes the access token once when the service reports it
// expired.
type Session struct {
	client *SDKClient
	base   *url.URL
	http   *http.Client

	mu        sync.RWMutex
	user      UserResponse
	loggedOut bool
}

// LoggedInUser returns the user returned by Login or the latest profile
// update.
func (s *Session) LoggedInUser() UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// CSRFToken returns the current csrftoken cookie value.
func (s *Session) CSRFToken() string {
	return s.cookie(s.client.CSRFCookie)
}

// Cookie returns the value of a session cookie by name, or "" when unset.
func (s *Session) Cookie(name string) string {
	return s.cookie(name)
}

func (s *Session) cookie(name string) string {
	for _, c := range s.http.Jar.Cookies(s.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// Refresh exchanges the refresh cookie for a new access cookie.
func (s *Session) Refresh(ctx context.Context) error {
	if s.isLoggedOut() {
		return ErrNotLoggedIn
	}

	resp, err := doRequest(ctx, s.http, s.client.url("/token/refresh/"), http.MethodPost, nil, s.csrfHeaders(nil))
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil, http.StatusOK)
}

// Logout revokes the refresh token and clears the cookies. The session
// cannot be used afterwards.
func (s *Session) Logout(ctx context.Context) error {
	if s.isLoggedOut() {
		return ErrNotLoggedIn
	}

	resp, err := doRequest(ctx, s.http, s.client.url("/logout/"), http.MethodPost, nil, s.csrfHeaders(nil))
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, http.StatusOK); err != nil {
		return err
	}

	s.mu.Lock()
	s.loggedOut = true
	s.mu.Unlock()
	return nil
}

func (s *Session) isLoggedOut() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedOut
}

func (s *Session) csrfHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	if tok := s.CSRFToken(); tok != "" {
		out[s.client.CSRFHeader] = tok
	}
	return out
}

// doAuthRequest performs a request with the session cookies. Unsafe methods
// carry the CSRF header. A 401 "Token expired" triggers one refresh and one
// retry.
func (s *Session) doAuthRequest(
	ctx context.Context,
	method, path string,
	body []byte,
	headers map[string]string,
) (*http.Response, error) {
	if s.isLoggedOut() {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.send(ctx, method, path, body, headers)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	var apiErr *APIError
	if !errors.As(parseErrorResponse(resp, bodyBytes), &apiErr) || apiErr.Detail != DetailTokenExpired {
		resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		return resp, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.send(ctx, method, path, body, headers)
}

func (s *Session) send(ctx context.Context, method, path string, body []byte, headers map[string]string) (*http.Response, error) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
	default:
		headers = s.csrfHeaders(headers)
	}
	return doRequest(ctx, s.http, s.client.url(path), method, body, headers)
}
