// Package cookie writes and reads HTTP cookies with shared defaults and
// optional HMAC signing. Signing secrets rotate by listing the newest
// first: values are signed with the first secret and verified against all.
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const minSecretLength = 32

var (
	ErrNoSecret         = errors.New("cookie: no secret configured")
	ErrSecretTooShort   = errors.New("cookie: secret too short")
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
)

// Config is loaded from the environment. Secrets is a comma-separated list.
type Config struct {
	Secrets string `env:"COOKIE_SECRETS,required"`
	Domain  string `env:"COOKIE_DOMAIN"`
	Secure  bool   `env:"COOKIE_SECURE" envDefault:"true"`
}

// Options are the attributes written with each cookie.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// WithMaxAge sets Max-Age, truncated to whole seconds.
func WithMaxAge(d time.Duration) Option {
	return func(o *Options) { o.MaxAge = int(d / time.Second) }
}

// Manager holds signing secrets and default attributes.
type Manager struct {
	secrets  []string
	defaults Options
}

// New builds a Manager. Defaults are Path "/", HttpOnly and SameSite=Lax.
func New(secrets []string, opts ...Option) (*Manager, error) {
	clean := make([]string, 0, len(secrets))
	for i, s := range secrets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		clean = append(clean, s)
	}
	if len(clean) == 0 {
		return nil, ErrNoSecret
	}

	m := &Manager{
		secrets:  clean,
		defaults: Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode},
	}
	for _, opt := range opts {
		opt(&m.defaults)
	}
	return m, nil
}

// NewFromConfig builds a Manager from Config plus extra defaults.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	base := []Option{WithSecure(cfg.Secure)}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	return New(strings.Split(cfg.Secrets, ","), append(base, opts...)...)
}

func (m *Manager) options(opts []Option) Options {
	o := m.defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	o := m.options(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrCookieNotFound
	}
	return c.Value, nil
}

// Delete expires the cookie. Pass the same Path/Domain options used by Set.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	o := m.options(opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	})
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	m.Set(w, name, m.sign(value), opts...)
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(raw)
}

func (m *Manager) sign(value string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + mac(m.secrets[0], value)
}

func (m *Manager) verify(signed string) (string, error) {
	enc, sig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", ErrInvalidFormat
	}
	value := string(raw)
	for _, secret := range m.secrets {
		if hmac.Equal([]byte(sig), []byte(mac(secret, value))) {
			return value, nil
		}
	}
	return "", ErrInvalidSignature
}

func mac(secret, value string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
