package account

import (
	"net/http"

	"github.com/edutrack/institute/pkg/cookie"
	"github.com/edutrack/institute/svc/token"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
	StateCookie   = "oauth_state"
)

func (m *Module) setSession(w http.ResponseWriter, pair token.Pair) {
	m.cookies.Set(w, AccessCookie, pair.AccessToken,
		cookie.WithSameSite(http.SameSiteStrictMode),
		cookie.WithMaxAge(m.svc.AccessTTL()),
	)
	m.cookies.Set(w, RefreshCookie, pair.RefreshToken,
		cookie.WithSameSite(http.SameSiteStrictMode),
		cookie.WithMaxAge(m.svc.RefreshTTL()),
	)
}

func (m *Module) clearSession(w http.ResponseWriter) {
	m.cookies.Delete(w, AccessCookie, cookie.WithSameSite(http.SameSiteStrictMode))
	m.cookies.Delete(w, RefreshCookie, cookie.WithSameSite(http.SameSiteStrictMode))
}

// The provider redirects back cross-site, so the state cookie must be Lax.
func (m *Module) setState(w http.ResponseWriter, state string) {
	m.cookies.SetSigned(w, StateCookie, state,
		cookie.WithSameSite(http.SameSiteLaxMode),
		cookie.WithMaxAge(m.stateTTL),
	)
}

func (m *Module) clearState(w http.ResponseWriter) {
	m.cookies.Delete(w, StateCookie, cookie.WithSameSite(http.SameSiteLaxMode))
}
