package oauth

import (
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

type FacebookConfig struct {
	ClientID     string   `env:"FACEBOOK_CLIENT_ID"`
	ClientSecret string   `env:"FACEBOOK_CLIENT_SECRET"`
	CallbackURL  string   `env:"FACEBOOK_CALLBACK_URL"`
	Scopes       []string `env:"FACEBOOK_SCOPES" envSeparator:"," envDefault:"email,public_profile"`
}

func (c FacebookConfig) Enabled() bool { return c.ClientID != "" && c.ClientSecret != "" }

const facebookMeURL = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"

type facebookUser struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

func NewFacebook(cfg FacebookConfig, opts ...Option) Provider {
	return newAdapter(ProviderFacebook, &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.CallbackURL,
		Scopes:       cfg.Scopes,
		Endpoint:     facebook.Endpoint,
	}, facebookMeURL, decodeFacebook, opts)
}

// Graph only returns an email it has confirmed.
func decodeFacebook(resp *http.Response) (Profile, error) {
	u, err := decodeJSON[facebookUser](resp)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ProviderUserID: u.ID,
		Email:          u.Email,
		EmailVerified:  u.Email != "",
		Name:           u.Name,
		AvatarURL:      u.Picture.Data.URL,
	}, nil
}
