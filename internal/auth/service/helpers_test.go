package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/backrose/backrose/internal/auth/domain"
	"github.com/backrose/backrose/internal/auth/store/drivers/sqlite"
	"github.com/backrose/backrose/pkg/cryptox"
	"github.com/backrose/backrose/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testPassword = "Tea-Rose-Hybrid-42"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	Store  *sqlite.Store
	Clock  *testClock
	Users  *UserService
	Tokens *TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(dir, "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	hasher, err := cryptox.NewPasswordHasher("test-pepper")
	require.NoError(t, err)

	clock := &testClock{now: time.Now()}
	codec, err := jwtx.NewCodec([]byte("0123456789abcdef0123456789abcdef"), jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	users := &UserService{
		Store:  st,
		Hasher: hasher,
		Media:  &MediaStore{Root: filepath.Join(dir, "media"), URLPrefix: "/media/"},
	}
	tokens := &TokenService{
		Codec:                  codec,
		Revocations:            st.Revocations(),
		Users:                  users,
		AccessTTL:              5 * time.Minute,
		RefreshTTL:             24 * time.Hour,
		RotateRefresh:          true,
		BlacklistAfterRotation: true,
	}

	return &testEnv{Store: st, Clock: clock, Users: users, Tokens: tokens}
}

func strPtr(s string) *string { return &s }

func (e *testEnv) register(t *testing.T, email, username string) domain.User {
	t.Helper()

	u, err := e.Users.Register(context.Background(), RegisterInput{
		Email:     strPtr(email),
		Username:  strPtr(username),
		Password:  strPtr(testPassword),
		Password2: strPtr(testPassword),
	})
	require.NoError(t, err)
	return u
}
