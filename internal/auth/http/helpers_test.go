package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	authhttp "github.com/backrose/backrose/internal/auth/http"
	"github.com/backrose/backrose/internal/auth/service"
	"github.com/backrose/backrose/internal/auth/session"
	"github.com/backrose/backrose/internal/auth/store/drivers/sqlite"
	"github.com/backrose/backrose/pkg/cryptox"
	"github.com/backrose/backrose/pkg/jwtx"
	"github.com/backrose/backrose/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "gardener@roses.example"
	testPassword = "Tea-Rose-Hybrid-42"
)

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
	Server *httptest.Server
	Store  *sqlite.Store
	Clock  *testClock
	Users  *service.UserService
	Router *authhttp.Router
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

	media := &service.MediaStore{Root: filepath.Join(dir, "media"), URLPrefix: "/media/"}
	users := &service.UserService{Store: st, Hasher: hasher, Media: media}
	tokens := &service.TokenService{
		Codec:                  codec,
		Revocations:            st.Revocations(),
		Users:                  users,
		AccessTTL:              5 * time.Minute,
		RefreshTTL:             24 * time.Hour,
		RotateRefresh:          true,
		BlacklistAfterRotation: true,
	}

	// Plain http in tests, so cookies must not be Secure for the jar to
	// send them back.
	cfg := session.DefaultCookieConfig()
	cfg.Secure = false
	cfg.CSRFSecure = false
	cfg.SameSite = http.SameSiteLaxMode
	cookies := &session.CookieBinder{Config: cfg}

	router := authhttp.NewRouter("test", st, slogx.New(slogx.Config{Output: io.Discard}))
	router.TokenService = tokens
	router.UserService = users
	router.Cookies = cookies
	router.Media = media
	router.Authenticator = &session.Authenticator{
		Codec:   codec,
		Users:   users,
		Cookies: cookies,
		CSRF:    &session.CSRFGuard{CookieName: cfg.CSRFName, HeaderName: session.DefaultCSRFHeader},
	}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{Server: srv, Store: st, Clock: clock, Users: users, Router: router}
}

func strPtr(s string) *string { return &s }

func (e *testEnv) register(t *testing.T, email, username string) string {
	t.Helper()

	u, err := e.Users.Register(context.Background(), service.RegisterInput{
		Email:     strPtr(email),
		Username:  strPtr(username),
		Password:  strPtr(testPassword),
		Password2: strPtr(testPassword),
	})
	require.NoError(t, err)
	return u.ID
}

// browser is a cookie-carrying client against the test server.
type browser struct {
	t    *testing.T
	env  *testEnv
	http *http.Client
	base *url.URL
}

func (e *testEnv) browser(t *testing.T) *browser {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	base, err := url.Parse(e.Server.URL)
	require.NoError(t, err)

	return &browser{t: t, env: e, http: &http.Client{Jar: jar}, base: base}
}

func (b *browser) cookie(name string) string {
	for _, c := range b.http.Jar.Cookies(b.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (b *browser) setCookie(name, value string) {
	b.http.Jar.SetCookies(b.base, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// do sends body as JSON. Unsafe requests echo the csrftoken cookie unless
// csrf is false.
func (b *browser) do(method, path string, body any, csrf bool) *http.Response {
	b.t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, b.env.Server.URL+path, rd)
	require.NoError(b.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrf && !session.Safe(method) {
		req.Header.Set(session.DefaultCSRFHeader, b.cookie("csrftoken"))
	}
	return b.send(req)
}

func (b *browser) send(req *http.Request) *http.Response {
	b.t.Helper()

	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (b *browser) login(email, password string) *http.Response {
	b.t.Helper()
	return b.do(http.MethodPost, "/token/", map[string]string{"email": email, "password": password}, false)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func requireDetail(t *testing.T, resp *http.Response, status int, detail string) {
	t.Helper()

	require.Equal(t, status, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	require.Equal(t, detail, body["detail"])
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, G: 20, B: 60, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
