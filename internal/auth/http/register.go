package http

import (
	"net/http"

	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/pkg/authsdk"
	"github.com/backrose/backrose/pkg/httpx"
)

// RegisterHandler serves POST /register/.
type RegisterHandler struct {
	UserService *service.UserService
}

type registerBody struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	Password2 *string `json:"password2"`
}

// ServeHTTP godoc
//
//	@Summary		Register
//	@Description	Creates a user and their profile. Does not log the user in.
//	@Tags			User
//	@Accept			json
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest		true	"New account"
//	@Success		201		{object}	authsdk.RegisterResponse	"id, email, username"
//	@Failure		400		{object}	map[string][]string			"Field errors"
//	@Failure		429		{object}	authsdk.DetailResponse		"Request was throttled"
//	@Failure		500		{object}	authsdk.DetailResponse		"Internal server error"
//	@Router			/register/ [post]
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if isForm(r) {
		if err := parseForm(w, r); err != nil {
			writeBodyError(w, r, err)
			return
		}
		in = service.RegisterInput{
			Email:     formValue(r, "email"),
			Username:  formValue(r, "username"),
			Password:  formValue(r, "password"),
			Password2: formValue(r, "password2"),
		}
	} else {
		var body registerBody
		if err := httpx.DecodeJSON(r, &body); err != nil {
			writeBodyError(w, r, err)
			return
		}
		in = service.RegisterInput(body)
	}

	user, err := h.UserService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.RegisterResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}
