package app

import (
	"fmt"
	"log/slog"

	"github.com/backrose/backrose/pkg/cryptox"
	"github.com/backrose/backrose/pkg/jwtx"
)

// InitCodec builds the token codec from AUTH_SIGNING_KEY, or from the key
// file, generating and persisting a fresh key on first start. Tokens survive
// restarts as long as the key does.
func InitCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	secret := cfg.SigningKey
	if secret != "" {
		if len(secret) < jwtx.MinSecretSize {
			return nil, fmt.Errorf("AUTH_SIGNING_KEY must be at least %d bytes", jwtx.MinSecretSize)
		}
		logger.Info("using signing key from environment")
	} else {
		var err error
		secret, err = cryptox.LoadOrGenerateSecret(cfg.SigningKeyFile, cryptox.TokenSize256)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key: %w", err)
		}
		logger.Info("using signing key file", "path", cfg.SigningKeyFile)
	}

	return jwtx.NewCodec([]byte(secret))
}

// InitHasher builds the password hasher with the pepper from PepperFile,
// generating one on first start.
func InitHasher(cfg Config) (*cryptox.PasswordHasher, error) {
	pepper, err := cryptox.LoadOrGenerateSecret(cfg.PepperFile, cryptox.TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	return cryptox.NewPasswordHasher(pepper)
}
