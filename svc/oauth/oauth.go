// Package oauth wraps third-party identity providers behind one adapter
// interface: build the consent URL, then turn a callback code into a
// normalized profile.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

var (
	ErrExchangeFailed = errors.New("oauth: code exchange failed")
	ErrProfileFailed  = errors.New("oauth: profile fetch failed")
	ErrNoEmail        = errors.New("oauth: provider returned no email")
)

// Profile is what the callback flow needs from a provider.
type Profile struct {
	ProviderUserID string
	Email          string
	EmailVerified  bool
	Name           string
	AvatarURL      string
}

// Provider is one identity provider.
type Provider interface {
	Name() string
	AuthURL(state string) string
	// ResolveProfile exchanges code and fetches the profile. Failures wrap
	// ErrExchangeFailed or ErrProfileFailed.
	ResolveProfile(ctx context.Context, code string) (Profile, error)
}

type Option func(*adapter)

// WithHTTPClient replaces the default client with a 10s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(a *adapter) {
		if c != nil {
			a.httpClient = c
		}
	}
}

// WithEndpoint overrides the provider's OAuth endpoints.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(a *adapter) { a.conf.Endpoint = e }
}

// WithProfileURL overrides the profile API URL.
func WithProfileURL(u string) Option {
	return func(a *adapter) { a.profileURL = u }
}

// adapter is the shared oauth2 plumbing; providers differ only in
// endpoints, profile URL and the profile decoder.
type adapter struct {
	name       string
	conf       *oauth2.Config
	httpClient *http.Client
	profileURL string
	decode     func(*http.Response) (Profile, error)
	authOpts   []oauth2.AuthCodeOption
}

func newAdapter(name string, conf *oauth2.Config, profileURL string, decode func(*http.Response) (Profile, error), opts []Option) *adapter {
	a := &adapter{
		name:       name,
		conf:       conf,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		profileURL: profileURL,
		decode:     decode,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *adapter) Name() string { return a.name }

func (a *adapter) AuthURL(state string) string {
	return a.conf.AuthCodeURL(state, a.authOpts...)
}

func (a *adapter) ResolveProfile(ctx context.Context, code string) (Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := a.conf.Exchange(ctx, code)
	if err != nil {
		return Profile{}, errors.Join(ErrExchangeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.profileURL, nil)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFailed, err)
	}
	tok.SetAuthHeader(req)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("%w: %s returned status %d", ErrProfileFailed, a.name, resp.StatusCode)
	}
	p, err := a.decode(resp)
	if err != nil {
		return Profile{}, errors.Join(ErrProfileFailed, err)
	}
	if p.Email == "" {
		return Profile{}, ErrNoEmail
	}
	return p, nil
}

func decodeJSON[T any](resp *http.Response) (T, error) {
	var v T
	err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&v)
	return v, err
}
