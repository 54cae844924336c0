package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/pkg/httpx"
)

// UserHandler serves GET /user/.
type UserHandler struct {
	UserService *service.UserService
	Media       *service.MediaStore
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the authenticated user with their profile.
//	@Tags			User
//	@Security		CookieAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse	"id, username, email, profile"
//	@Failure		401	{object}	authsdk.DetailResponse	"Not authenticated, or token expired or invalid"
//	@Failure		500	{object}	authsdk.DetailResponse	"Internal server error"
//	@Router			/user/ [get]
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, session.DetailNotProvided)
		return
	}

	account, err := h.UserService.GetAccount(r.Context(), auth.User)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountResponse(r, h.Media, account))
}

// ProfileUpdateHandler serves PATCH /user/ and PATCH /profile/update/.
type ProfileUpdateHandler struct {
	UserService *service.UserService
	Media       *service.MediaStore
}

// ServeHTTP godoc
//
//	@Summary		Update profile
//	@Description	Partially updates username, app_header and the profile image. The image is
//	@Description	only accepted as a multipart file upload.
//	@Tags			User
//	@Security		CookieAuth
//	@Security		CSRFToken
//	@Accept			json
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			body		body		authsdk.UpdateProfileRequest	false	"JSON update"
//	@Param			username	formData	string							false	"Display name"
//	@Param			app_header	formData	string							false	"Application header"
//	@Param			image		formData	file							false	"Profile image"
//	@Success		200			{object}	authsdk.UserResponse			"Updated user"
//	@Failure		400			{object}	map[string][]string				"Field errors"
//	@Failure		401			{object}	authsdk.DetailResponse			"Not authenticated"
//	@Failure		403			{object}	authsdk.DetailResponse			"CSRF Failed"
//	@Failure		500			{object}	authsdk.DetailResponse			"Internal server error"
//	@Router			/profile/update/ [patch]
//	@Router			/user/ [patch]
func (h *ProfileUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth, ok := session.FromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, session.DetailNotProvided)
		return
	}

	var (
		upd service.ProfileUpdate
		err error
	)
	if isForm(r) {
		upd, err = profileUpdateFromForm(r)
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
		if upd.Image != nil {
			if c, ok := upd.Image.Content.(io.Closer); ok {
				defer c.Close()
			}
		}
	} else {
		upd, err = profileUpdateFromJSON(r)
	}
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, r, err)
			return
		}
		writeBodyError(w, r, err)
		return
	}

	account, err := h.UserService.UpdateProfile(r.Context(), auth.User, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, accountResponse(r, h.Media, account))
}

// profileUpdateFromJSON reads {username?, app_header?, image?}. Explicit
// nulls for text fields are rejected; any non-null image is not a file.
func profileUpdateFromJSON(r *http.Request) (service.ProfileUpdate, error) {
	var raw map[string]json.RawMessage
	if err := httpx.DecodeJSON(r, &raw); err != nil {
		return service.ProfileUpdate{}, err
	}

	var upd service.ProfileUpdate
	verr := &service.ValidationError{}

	for field, dst := range map[string]**string{
		"username":   &upd.Username,
		"app_header": &upd.AppHeader,
	} {
		msg, ok := raw[field]
		if !ok {
			continue
		}
		if string(msg) == "null" {
			verr.Add(field, service.MsgFieldNull)
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			verr.Add(field, "Not a valid string.")
			continue
		}
		*dst = &s
	}

	if msg, ok := raw["image"]; ok && string(msg) != "null" {
		upd.ImageNotFile = true
	}

	return upd, verr.OrNil()
}

// profileUpdateFromForm reads a urlencoded or multipart body. A text part
// named image is not a file.
func profileUpdateFromForm(r *http.Request) (service.ProfileUpdate, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, service.MaxImageBytes+httpx.MaxJSONBodyBytes)
	if err := r.ParseMultipartForm(httpx.MaxJSONBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.ProfileUpdate{}, err
	}

	upd := service.ProfileUpdate{
		Username:  formValue(r, "username"),
		AppHeader: formValue(r, "app_header"),
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				return service.ProfileUpdate{}, err
			}
			upd.Image = &service.Upload{Filename: files[0].Filename, Content: f}
		}
	}
	if upd.Image == nil && formValue(r, "image") != nil {
		upd.ImageNotFile = true
	}
	return upd, nil
}
