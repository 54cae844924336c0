package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/backrose/backrose/internal/auth/domain"
	"github.com/backrose/backrose/internal/auth/store"
	"github.com/backrose/backrose/pkg/cryptox"
	"github.com/backrose/backrose/pkg/idx"
	"github.com/backrose/backrose/pkg/slogx"
)

const maxEmailLength = 254

type UserService struct {
	Store  store.Store
	Hasher *cryptox.PasswordHasher
	Media  *MediaStore
}

// Account is a user together with their profile, as returned by /user/.
type Account struct {
	User    domain.User
	Profile domain.Profile
}

// RegisterInput holds the raw registration fields. A nil field was absent
// from the request.
type RegisterInput struct {
	Email     *string
	Username  *string
	Password  *string
	Password2 *string
}

// Upload is a file received in a multipart request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// ProfileUpdate is a partial update; nil fields are left unchanged.
// ImageNotFile is set when the client sent an image field that was not a file.
type ProfileUpdate struct {
	Username     *string
	AppHeader    *string
	Image        *Upload
	ImageNotFile bool
}

// Authenticate verifies email/password. Unknown emails still pay for one
// hash verification so response timing does not reveal which accounts exist.
// Every failure is ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		_ = s.Hasher.VerifyDummy(password)
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.VerifyDummy(password)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHashFormat) {
			l.Error("stored password hash is unreadable", slog.String("user_id", user.ID))
		}
		return domain.User{}, ErrInvalidCredentials
	}

	if !user.Active {
		l.Info("login attempt for inactive user", slog.String("user_id", user.ID))
		return domain.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetActiveUser resolves a token subject. Missing and inactive users are
// both ErrUserNotFound.
func (s *UserService) GetActiveUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	if !user.Active {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// GetAccount returns the user and profile. Users created without a profile
// get the default one.
func (s *UserService) GetAccount(ctx context.Context, user domain.User) (Account, error) {
	profile, err := s.Store.Profiles().GetProfile(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Account{}, err
		}
		profile = domain.Profile{UserID: user.ID, AppHeader: domain.DefaultAppHeader}
	}
	return Account{User: user, Profile: profile}, nil
}

// Register validates in and creates the user and profile atomically. It
// does not log the new user in.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	verr := &ValidationError{}

	email := requireField(verr, "email", in.Email)
	username := requireField(verr, "username", in.Username)
	password := requireField(verr, "password", in.Password)
	requireField(verr, "password2", in.Password2)

	if !verr.Has("email") {
		email = domain.NormalizeEmail(email)
		if !validEmail(email) {
			verr.Add("email", MsgInvalidEmail)
		} else {
			_, err := s.Store.Users().GetUserByEmail(ctx, email)
			switch {
			case err == nil:
				verr.Add("email", MsgEmailTaken)
			case !errors.Is(err, store.ErrNotFound):
				return domain.User{}, err
			}
		}
	}
	if !verr.Has("username") {
		checkMaxLength(verr, "username", username, domain.MaxUsernameLength)
	}
	if !verr.Has("password") {
		for _, msg := range ValidatePassword(password, email, username) {
			verr.Add("password", msg)
		}
	}
	if err := verr.OrNil(); err != nil {
		return domain.User{}, err
	}

	if password != *in.Password2 {
		return domain.User{}, FieldError("password", MsgPasswordMismatch)
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Active:       true,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Profiles().CreateProfile(ctx, domain.Profile{
			UserID:    user.ID,
			AppHeader: domain.DefaultAppHeader,
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, FieldError("email", MsgEmailTaken)
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", user.ID))
	return s.Store.Users().GetUserByID(ctx, user.ID)
}

// UpdateProfile applies a partial update to the user's username and profile.
func (s *UserService) UpdateProfile(ctx context.Context, user domain.User, upd ProfileUpdate) (Account, error) {
	verr := &ValidationError{}

	if upd.Username != nil {
		name := strings.TrimSpace(*upd.Username)
		if name == "" {
			verr.Add("username", MsgFieldBlank)
		} else {
			checkMaxLength(verr, "username", name, domain.MaxUsernameLength)
		}
		upd.Username = &name
	}
	if upd.AppHeader != nil {
		checkMaxLength(verr, "app_header", *upd.AppHeader, domain.MaxAppHeaderLength)
	}
	if upd.ImageNotFile {
		verr.Add("image", MsgNotAFile)
	}
	if err := verr.OrNil(); err != nil {
		return Account{}, err
	}

	var newImage string
	if upd.Image != nil {
		rel, err := s.Media.SaveUserPhoto(upd.Image.Content)
		if err != nil {
			if errors.Is(err, ErrInvalidImage) {
				return Account{}, FieldError("image", MsgInvalidImage)
			}
			return Account{}, err
		}
		newImage = rel
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if upd.Username != nil && *upd.Username != user.Username {
			if err := tx.Users().UpdateUsername(ctx, user.ID, *upd.Username); err != nil {
				return err
			}
		}

		profile, err := tx.Profiles().GetProfile(ctx, user.ID)
		created := false
		if errors.Is(err, store.ErrNotFound) {
			profile = domain.Profile{UserID: user.ID, AppHeader: domain.DefaultAppHeader}
			created = true
		} else if err != nil {
			return err
		}

		if upd.AppHeader != nil {
			profile.AppHeader = *upd.AppHeader
		}
		if newImage != "" {
			profile.Image = newImage
		}

		if created {
			return tx.Profiles().CreateProfile(ctx, profile)
		}
		return tx.Profiles().UpdateProfile(ctx, profile)
	})
	if err != nil {
		_ = s.Media.Remove(newImage)
		return Account{}, err
	}

	fresh, err := s.Store.Users().GetUserByID(ctx, user.ID)
	if err != nil {
		return Account{}, err
	}
	return s.GetAccount(ctx, fresh)
}

func requireField(verr *ValidationError, field string, v *string) string {
	if v == nil {
		verr.Add(field, MsgFieldRequired)
		return ""
	}
	if strings.TrimSpace(*v) == "" {
		verr.Add(field, MsgFieldBlank)
		return ""
	}
	if field == "password" || field == "password2" {
		return *v
	}
	return strings.TrimSpace(*v)
}

func checkMaxLength(verr *ValidationError, field, v string, limit int) {
	if utf8.RuneCountInString(v) > limit {
		verr.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
	}
}

func validEmail(email string) bool {
	if len(email) > maxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}
