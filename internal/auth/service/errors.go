package service

import (
	"errors"
	"maps"
	"slices"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrTokenRevoked       = errors.New("token_revoked")
	ErrUserNotFound       = errors.New("user_not_found")
)

// Field validation messages shared by registration and profile updates.
const (
	MsgFieldRequired    = "This field is required."
	MsgFieldBlank       = "This field may not be blank."
	MsgFieldNull        = "This field may not be null."
	MsgInvalidEmail     = "Enter a valid email address."
	MsgEmailTaken       = "user with this email already exists."
	MsgPasswordMismatch = "Пароли не совпадают"
	MsgNotAFile         = "The submitted data was not a file."
	MsgInvalidImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// ValidationError carries per-field messages. It is rendered as
// {"field": ["message", ...]} with status 400.
type ValidationError struct {
	Fields map[string][]string
}

// Add appends msg to field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Has reports whether field already failed.
func (e *ValidationError) Has(field string) bool {
	return len(e.Fields[field]) > 0
}

// OrNil returns e when any field failed and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("validation failed:")
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.Join(e.Fields[k], "; "))
	}
	return b.String()
}

// FieldError builds a single-field ValidationError.
func FieldError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
