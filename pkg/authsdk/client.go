package authsdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// SDKClient is a client for the backrose authentication service.
// It provides access to unauthenticated operations and creates cookie-backed
// Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CSRFHeader is the header that echoes the csrftoken cookie on unsafe
	// requests. Default: X-CSRFToken
	CSRFHeader string

	// CSRFCookie is the name of the CSRF cookie. Default: csrftoken
	CSRFCookie string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CSRFHeader: "X-CSRFToken",
		CSRFCookie: "csrftoken",
	}
}

// Login posts the credentials to /token/ and returns a Session holding the
// access, refresh and csrftoken cookies. Bad credentials are an *APIError
// with status 401.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	s := &Session{
		client: c,
		base:   base,
		http: &http.Client{
			Transport: c.HTTPClient.Transport,
			Timeout:   c.HTTPClient.Timeout,
			Jar:       jar,
		},
	}

	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, s.http, c.url("/token/"), http.MethodPost, body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var login LoginResponse
	if err := decodeJSON(resp, &login, http.StatusOK); err != nil {
		return nil, err
	}
	s.user = login.User
	return s, nil
}

// Register creates an account. It does not log in; call Login afterwards.
// Validation failures are an *APIError with Fields set.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, c.HTTPClient, c.url("/register/"), http.MethodPost, body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out RegisterResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}
