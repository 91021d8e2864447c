package oauth

import (
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `env:"GOOGLE_CLIENT_SECRET"`
	CallbackURL  string   `env:"GOOGLE_CALLBACK_URL"`
	Scopes       []string `env:"GOOGLE_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`
}

func (c GoogleConfig) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewGoogle(cfg GoogleConfig, opts ...Option) Provider {
	a := newAdapter(ProviderGoogle, &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       cfg.Scopes,
		Endpoint:     google.Endpoint,
	}, googleUserInfoURL, decodeGoogle, opts)
	a.authOpts = []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("prompt", "select_account")}
	return a
}

func decodeGoogle(resp *http.Response) (Profile, error) {
	u, err := decodeJSON[googleUser](resp)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ProviderUserID: u.ID,
		Email:          u.Email,
		EmailVerified:  u.VerifiedEmail,
		Name:           u.Name,
		AvatarURL:      u.Picture,
	}, nil
}
