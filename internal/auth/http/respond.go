package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"

	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/pkg/authsdk"
	"github.com/backrose/backrose/pkg/httpx"
	"github.com/backrose/backrose/pkg/slogx"
)

const detailInternalError = "Internal server error"

// writeError maps service errors to responses. Validation errors become
// field maps with 400; anything unexpected is logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		httpx.WriteJSON(w, http.StatusBadRequest, verr.Fields)
		return
	}

	slogx.FromContext(r.Context()).Error("request failed",
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	httpx.WriteDetail(w, http.StatusInternalServerError, detailInternalError)
}

// writeBodyError answers a body that could not be parsed.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, httpx.ErrUnsupportedMediaType) {
		mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		httpx.WriteDetail(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported media type %q in request.", mt))
		return
	}
	if isForm(r) {
		httpx.WriteDetail(w, http.StatusBadRequest, "Form parse error - "+err.Error())
		return
	}
	httpx.WriteDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
}

// isForm reports whether the body is urlencoded or multipart.
func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// parseForm fills r.PostForm from a urlencoded or multipart body. Files in
// a multipart body are discarded.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, httpx.MaxJSONBodyBytes)
	err := r.ParseMultipartForm(httpx.MaxJSONBodyBytes)
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formValue returns a pointer to the first value of key, or nil when the
// form did not carry it.
func formValue(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// accountResponse renders an account the way /user/ and the login response
// show it. Images are absolute URLs.
func accountResponse(r *http.Request, media *service.MediaStore, acc service.Account) authsdk.UserResponse {
	var image *string
	if media != nil {
		if u := media.URL(acc.Profile.Image); u != nil {
			abs := absoluteURL(r, *u)
			image = &abs
		}
	}

	return authsdk.UserResponse{
		ID:       acc.User.ID,
		Username: acc.User.Username,
		Email:    acc.User.Email,
		Profile: authsdk.ProfileResponse{
			AppHeader: acc.Profile.AppHeader,
			Image:     image,
		},
	}
}

func absoluteURL(r *http.Request, path string) string {
	return httpx.RequestOrigin(r) + path
}
