package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// GetUser retrieves the authenticated user and profile from /user/.
func (s *Session) GetUser(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/user/", nil, nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	s.setUser(user)
	return &user, nil
}

// UpdateProfile sends a partial JSON update to /profile/update/.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return s.patchProfile(ctx, body, jsonHeaders)
}

// UploadProfileImage replaces the profile photo with a multipart upload.
func (s *Session) UploadProfileImage(ctx context.Context, filename string, image io.Reader) (*UserResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return s.patchProfile(ctx, buf.Bytes(), map[string]string{"Content-Type": mw.FormDataContentType()})
}

func (s *Session) patchProfile(ctx context.Context, body []byte, headers map[string]string) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch, "/profile/update/", body, headers)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	s.setUser(user)
	return &user, nil
}

func (s *Session) setUser(u UserResponse) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}
