package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/backrose/backrose/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeClock is a settable time source for codec tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(t *testing.T) (*jwtx.Codec, *fakeClock) {
	t.Helper()

	clock := &fakeClock{t: time.Unix(1_700_000_000, 0).UTC()}
	codec, err := jwtx.NewCodec(testSecret, jwtx.WithClock(clock.Now))
	require.NoError(t, err)
	return codec, clock
}

func TestNewCodec_RejectsShortSecret(t *testing.T) {
	_, err := jwtx.NewCodec([]byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakSecret)
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)

	for _, typ := range []jwtx.TokenType{jwtx.TokenTypeAccess, jwtx.TokenTypeRefresh} {
		t.Run(string(typ), func(t *testing.T) {
			raw, issued, err := codec.Issue("01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", typ, time.Minute)
			require.NoError(t, err)
			require.Len(t, strings.Split(raw, "."), 3)

			claims, err := codec.Decode(raw, typ)
			require.NoError(t, err)
			require.Equal(t, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV", claims.Subject)
			require.Equal(t, typ, claims.TokenType)
			require.Equal(t, issued.JTI(), claims.JTI())
			require.Equal(t, issued.Expiry(), claims.Expiry())
		})
	}
}

func TestCodec_Expiry(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t)
	start := clock.t

	raw, _, err := codec.Issue("user-1", jwtx.TokenTypeAccess, 15*time.Minute)
	require.NoError(t, err)

	t.Run("valid just before exp", func(t *testing.T) {
		clock.t = start.Add(15*time.Minute - time.Second)
		_, err := codec.Decode(raw, jwtx.TokenTypeAccess)
		require.NoError(t, err)
	})

	t.Run("expired at exp", func(t *testing.T) {
		clock.t = start.Add(15 * time.Minute)
		_, err := codec.Decode(raw, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("expired after exp", func(t *testing.T) {
		clock.t = start.Add(time.Hour)
		_, err := codec.Decode(raw, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})
}

func TestCodec_RejectsWrongType(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)

	refresh, _, err := codec.Issue("user-1", jwtx.TokenTypeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(refresh, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrWrongType)
}

func TestCodec_TamperedSignature(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)

	raw, _, err := codec.Issue("user-1", jwtx.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Decode(tampered, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestCodec_ForeignSecret(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)
	other, err := jwtx.NewCodec([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	raw, _, err := other.Issue("user-1", jwtx.TokenTypeAccess, time.Hour)
	require.NoError(t, err)

	_, err = codec.Decode(raw, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t)

	claims := jwtx.NewClaims("user-1", jwtx.TokenTypeAccess, time.Hour, clock.t)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Decode(raw, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Decode(none, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"one segment", "abc"},
		{"two segments", "abc.def"},
		{"garbage segments", "!!!.???.***"},
		{"four segments", "a.b.c.d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.raw, jwtx.TokenTypeAccess)
			require.ErrorIs(t, err, jwtx.ErrMalformed)
		})
	}
}

func TestCodec_MissingSubjectIsMalformed(t *testing.T) {
	t.Parallel()

	codec, clock := newTestCodec(t)

	claims := jwtx.NewClaims("", jwtx.TokenTypeAccess, time.Hour, clock.t)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Decode(raw, jwtx.TokenTypeAccess)
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestCodec_IssueValidation(t *testing.T) {
	t.Parallel()

	codec, _ := newTestCodec(t)

	_, _, err := codec.Issue("", jwtx.TokenTypeAccess, time.Minute)
	require.Error(t, err)

	_, _, err = codec.Issue("user-1", "session", time.Minute)
	require.Error(t, err)

	_, _, err = codec.Issue("user-1", jwtx.TokenTypeAccess, 0)
	require.Error(t, err)
}
