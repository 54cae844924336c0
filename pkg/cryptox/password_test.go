package cryptox

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()

	h, err := NewPasswordHasher("test-pepper")
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_Hash(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"cyrillic password", "пароль-для-розария"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	h := newTestHasher(t)

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch, wrong)
	}
}

func TestPasswordHasher_PepperMatters(t *testing.T) {
	a := newTestHasher(t)
	b, err := NewPasswordHasher("another-pepper")
	require.NoError(t, err)

	hash, err := a.Hash("password123")
	require.NoError(t, err)

	require.ErrorIs(t, b.Verify("password123", hash), ErrPasswordMismatch)
}

func TestPasswordHasher_InvalidHashFormat(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, h.Verify("test-password", tt.invalidHash), ErrInvalidHashFormat)
		})
	}
}

func TestPasswordHasher_VerifyDummy(t *testing.T) {
	h := newTestHasher(t)

	require.ErrorIs(t, h.VerifyDummy("anything"), ErrPasswordMismatch)
	require.ErrorIs(t, h.VerifyDummy(""), ErrPasswordMismatch)
}

func TestLoadOrGenerateSecret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadOrGenerateSecret(path, TokenSize256)
	require.NoError(t, err)
	require.Len(t, first, 43)

	// Second load returns the persisted value.
	second, err := LoadOrGenerateSecret(path, TokenSize256)
	require.NoError(t, err)
	require.Equal(t, first, second)

	_, err = LoadOrGenerateSecret("", TokenSize256)
	require.Error(t, err)
}
