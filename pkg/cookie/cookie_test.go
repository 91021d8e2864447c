package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edutrack/institute/pkg/cookie"
)

var (
	secretA = strings.Repeat("a", 32)
	secretB = strings.Repeat("b", 32)
)

// roundTrip copies Set-Cookie headers from a response into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(nil)
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"", "  "})
	assert.ErrorIs(t, err, cookie.ErrNoSecret)

	_, err = cookie.New([]string{"short"})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)

	m, err := cookie.NewFromConfig(cookie.Config{Secrets: secretA + ", " + secretB, Secure: true})
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestManager_SetGetDelete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New([]string{secretA}, cookie.WithSecure(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Set(rec, "refreshToken", "tok", cookie.WithSameSite(http.SameSiteStrictMode), cookie.WithMaxAge(time.Hour))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "tok", c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, 3600, c.MaxAge)
	assert.Equal(t, "/", c.Path)

	got, err := m.Get(roundTrip(rec), "refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)

	_, err = m.Get(roundTrip(rec), "missing")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	del := httptest.NewRecorder()
	m.Delete(del, "refreshToken")
	cookies = del.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	old, err := cookie.New([]string{secretA})
	require.NoError(t, err)
	rotated, err := cookie.New([]string{secretB, secretA})
	require.NoError(t, err)
	other, err := cookie.New([]string{secretB})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	old.SetSigned(rec, "oauth_state", "state-123")

	t.Run("same secret", func(t *testing.T) {
		t.Parallel()
		v, err := old.GetSigned(roundTrip(rec), "oauth_state")
		require.NoError(t, err)
		assert.Equal(t, "state-123", v)
	})

	t.Run("rotated secret still verifies", func(t *testing.T) {
		t.Parallel()
		v, err := rotated.GetSigned(roundTrip(rec), "oauth_state")
		require.NoError(t, err)
		assert.Equal(t, "state-123", v)
	})

	t.Run("unknown secret", func(t *testing.T) {
		t.Parallel()
		_, err := other.GetSigned(roundTrip(rec), "oauth_state")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("unsigned value", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "oauth_state", Value: "plain"})
		_, err := old.GetSigned(r, "oauth_state")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})
}
