package service

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/backrose/backrose/pkg/idx"
)

const (
	// UserPhotoDir is where profile images land, relative to the media root.
	UserPhotoDir = "images/userphoto"

	// MaxImageBytes caps a single uploaded image.
	MaxImageBytes = 10 << 20
)

var ErrInvalidImage = errors.New("invalid_image")

// MediaStore saves uploaded files below Root and renders their public URLs.
type MediaStore struct {
	Root      string // filesystem directory
	URLPrefix string // e.g. "/media/"
}

// SaveUserPhoto validates that r holds a decodable image and stores it
// under UserPhotoDir with a fresh name. It returns the media-relative path.
func (m *MediaStore) SaveUserPhoto(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 || len(data) > MaxImageBytes {
		return "", ErrInvalidImage
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrInvalidImage
	}

	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	rel := path.Join(UserPhotoDir, idx.New().String()+strings.ToLower(ext))

	dst := filepath.Join(m.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, data, 0640); err != nil {
		return "", err
	}
	return rel, nil
}

// Remove deletes a previously saved file. Missing files are ignored.
func (m *MediaStore) Remove(rel string) error {
	if rel == "" {
		return nil
	}
	err := os.Remove(filepath.Join(m.Root, filepath.FromSlash(rel)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// URL returns the public URL for rel, or nil when no file is set.
func (m *MediaStore) URL(rel string) *string {
	if rel == "" {
		return nil
	}
	u := strings.TrimSuffix(m.URLPrefix, "/") + "/" + rel
	return &u
}
