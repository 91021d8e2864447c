// Package clientip resolves the originating client address of a request.
// The rate limiter keys its buckets on it.
//
// Forwarding headers are client-controlled, so a Resolver only reads them
// when the direct peer is one of the configured trusted proxies. Without
// trusted proxies the socket address is the client.
package clientip

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var ErrInvalidProxy = errors.New("clientip: invalid trusted proxy")

type Config struct {
	// TrustedProxies lists CIDRs or single addresses of the load balancers
	// in front of the service.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
}

// headers are consulted in order before X-Forwarded-For.
var headers = []string{"CF-Connecting-IP", "X-Real-IP"}

// Resolver picks the client IP of a request.
type Resolver struct {
	trusted []netip.Prefix
}

// New parses trusted proxy CIDRs. Bare addresses are taken as single-host
// prefixes.
func New(trusted ...string) (*Resolver, error) {
	r := &Resolver{}
	for _, s := range trusted {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !strings.Contains(s, "/") {
			addr, err := netip.ParseAddr(s)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, s)
			}
			r.trusted = append(r.trusted, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxy, s)
		}
		r.trusted = append(r.trusted, p.Masked())
	}
	return r, nil
}

func NewFromConfig(cfg Config) (*Resolver, error) {
	return New(cfg.TrustedProxies...)
}

// IP returns the normalized client IP or "" if none can be parsed.
func (r *Resolver) IP(req *http.Request) string {
	peer := remoteIP(req.RemoteAddr)
	if !r.isTrusted(peer) {
		return peer
	}

	for _, h := range headers {
		if ip := normalize(req.Header.Get(h)); ip != "" {
			return ip
		}
	}

	// Walk X-Forwarded-For from the right: the nearest entry that is not one
	// of our proxies is the client. Entries further left are unverifiable.
	if fwd := req.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
		parts := strings.Split(strings.Join(fwd, ","), ",")
		for i := len(parts) - 1; i >= 0; i-- {
			ip := normalize(parts[i])
			if ip == "" {
				break
			}
			if !r.isTrusted(ip) {
				return ip
			}
		}
	}
	return peer
}

// Middleware stores the resolved client IP in the request context.
func (r *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		next.ServeHTTP(w, req.WithContext(WithContext(req.Context(), r.IP(req))))
	})
}

func (r *Resolver) isTrusted(ip string) bool {
	if ip == "" || len(r.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range r.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// GetIP returns the address stored by Resolver.Middleware, falling back to
// the socket peer when the middleware did not run.
func GetIP(r *http.Request) string {
	if ip := FromContext(r.Context()); ip != "" {
		return ip
	}
	return remoteIP(r.RemoteAddr)
}

func remoteIP(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return normalize(addr)
	}
	return normalize(host)
}

func normalize(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

type ctxKey struct{}

func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKey{}, ip)
}

func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(ctxKey{}).(string)
	return ip
}
