package authsdk

// ============================================================================
// Session Requests
// ============================================================================

// LoginRequest is the body of POST /token/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register/.
type RegisterRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// UpdateProfileRequest is the JSON body of PATCH /user/ and
// PATCH /profile/update/. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	Username  *string `json:"username,omitempty"`
	AppHeader *string `json:"app_header,omitempty"`
}

// ============================================================================
// Session Responses
// ============================================================================

// DetailResponse is the {"detail": "..."} body returned by logout, refresh
// and every non-field error.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// LoginResponse is returned by a successful POST /token/. The tokens
// themselves travel only in cookies.
type LoginResponse struct {
	Detail string       `json:"detail"`
	User   UserResponse `json:"user"`
}

// UserResponse describes the authenticated user. The password hash is never
// part of it.
type UserResponse struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Profile  ProfileResponse `json:"profile"`
}

// ProfileResponse holds the per-user application settings.
type ProfileResponse struct {
	AppHeader string `json:"app_header"`

	// Image is the public URL of the profile photo, or nil when none is set.
	Image *string `json:"image"`
}

// RegisterResponse is returned with 201 by POST /register/. Registration
// does not log the user in.
type RegisterResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ============================================================================
// Health Check Responses
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks is only populated by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database is the user store status.
	Database string `json:"database"`

	// Revocations is the revocation backend status.
	Revocations string `json:"revocations"`
}
