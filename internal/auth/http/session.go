package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/backrose/backrose/internal/auth/metrics"
	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/pkg/authsdk"
	"github.com/backrose/backrose/pkg/httpx"
	"github.com/backrose/backrose/pkg/slogx"
)

// LoginHandler serves POST /token/.
type LoginHandler struct {
	UserService  *service.UserService
	TokenService *service.TokenService
	Cookies      *session.CookieBinder
	Media        *service.MediaStore
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Verifies email and password and sets the access, refresh and csrftoken cookies.
//	@Description	Every credential failure answers the same 401 body.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse	"detail, user"
//	@Failure		401		{object}	authsdk.DetailResponse	"Неверные учетные данные"
//	@Failure		429		{object}	authsdk.DetailResponse	"Request was throttled"
//	@Failure		500		{object}	authsdk.DetailResponse	"Internal server error"
//	@Header			200		{string}	Set-Cookie				"access, refresh, csrftoken"
//	@Router			/token/ [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var email, password string
	if isForm(r) {
		if err := parseForm(w, r); err != nil {
			writeBodyError(w, r, err)
			return
		}
		email, password = r.PostForm.Get("email"), r.PostForm.Get("password")
	} else {
		var req authsdk.LoginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			writeBodyError(w, r, err)
			return
		}
		email, password = req.Email, req.Password
	}

	user, err := h.UserService.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.ObserveLogin(metrics.ResultFailure)
			httpx.WriteDetail(w, http.StatusUnauthorized, authsdk.DetailInvalidCredential)
			return
		}
		metrics.ObserveLogin(metrics.ResultError)
		writeError(w, r, err)
		return
	}

	pair, err := h.TokenService.IssuePair(user)
	if err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		writeError(w, r, err)
		return
	}

	account, err := h.UserService.GetAccount(ctx, user)
	if err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		writeError(w, r, err)
		return
	}

	if _, err := h.Cookies.RotateCSRF(w); err != nil {
		metrics.ObserveLogin(metrics.ResultError)
		writeError(w, r, err)
		return
	}
	h.Cookies.Write(w, pair)

	metrics.ObserveLogin(metrics.ResultSuccess)
	log.Info("user logged in", slog.String("user_id", user.ID))

	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		Detail: authsdk.DetailLoginSuccessful,
		User:   accountResponse(r, h.Media, account),
	})
}

// RefreshHandler serves POST /token/refresh/.
type RefreshHandler struct {
	TokenService *service.TokenService
	Cookies      *session.CookieBinder
}

// ServeHTTP godoc
//
//	@Summary		Refresh the access token
//	@Description	Exchanges the refresh cookie for a new access cookie. With rotation enabled a new
//	@Description	refresh cookie is set as well and the old refresh token is revoked.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.DetailResponse	"Token refreshed successfully"
//	@Failure		401	{object}	authsdk.DetailResponse	"Refresh token not found, or invalid or expired"
//	@Failure		500	{object}	authsdk.DetailResponse	"Internal server error"
//	@Router			/token/refresh/ [post]
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := h.Cookies.RefreshToken(r)
	if raw == "" {
		metrics.ObserveRefresh(metrics.ResultFailure)
		httpx.WriteDetail(w, http.StatusUnauthorized, authsdk.DetailRefreshNotFound)
		return
	}

	pair, err := h.TokenService.Refresh(r.Context(), raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) ||
			errors.Is(err, service.ErrTokenRevoked) ||
			errors.Is(err, service.ErrUserNotFound) {
			metrics.ObserveRefresh(metrics.ResultFailure)
			slogx.FromContext(r.Context()).Info("refresh rejected", slog.Any("error", err))
			httpx.WriteDetail(w, http.StatusUnauthorized, authsdk.DetailRefreshInvalid)
			return
		}
		metrics.ObserveRefresh(metrics.ResultError)
		writeError(w, r, err)
		return
	}

	h.Cookies.Write(w, pair)
	metrics.ObserveRefresh(metrics.ResultSuccess)
	httpx.WriteDetail(w, http.StatusOK, authsdk.DetailRefreshSuccessful)
}

// LogoutHandler serves POST /logout/.
type LogoutHandler struct {
	TokenService *service.TokenService
	Cookies      *session.CookieBinder
}

// ServeHTTP godoc
//
//	@Summary		Log out
//	@Description	Revokes the refresh token when one is present and clears all session cookies.
//	@Description	Always succeeds.
//	@Tags			Session
//	@Produce		json
//	@Success		200	{object}	authsdk.DetailResponse	"Logout successful"
//	@Router			/logout/ [post]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if raw := h.Cookies.RefreshToken(r); raw != "" {
		if err := h.TokenService.Revoke(r.Context(), raw); err != nil {
			slogx.FromContext(r.Context()).Warn("failed to revoke refresh token on logout", slog.Any("error", err))
		}
	}

	h.Cookies.Clear(w)
	httpx.WriteDetail(w, http.StatusOK, authsdk.DetailLogoutSuccessful)
}
