// Package middleware provides a net/http guard that authenticates requests
// through an authkit Engine and attaches the resolved principal to the
// request context.
package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/edumentor/authkit"
)

type contextKey struct{}

// PrincipalFromContext returns the principal attached by Guard.
func PrincipalFromContext(ctx context.Context) (*authkit.RequestPrincipal, bool) {
	rp, ok := ctx.Value(contextKey{}).(*authkit.RequestPrincipal)
	return rp, ok
}

// Guard authenticates the Authorization header on every request. Requests
// carrying a token voided by a global logout get a distinct message so
// clients know to re-login rather than refresh blindly.
func Guard(engine *authkit.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if ip := clientIP(r); ip != "" {
				ctx = authkit.WithClientIP(ctx, ip)
			}
			if ua := r.UserAgent(); ua != "" {
				ctx = authkit.WithUserAgent(ctx, ua)
			}

			rp, err := engine.Validate(ctx, r.Header.Get("Authorization"))
			if err != nil {
				writeUnauthorized(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, contextKey{}, rp)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, err error) {
	msg := "unauthorized"
	switch {
	case errors.Is(err, authkit.ErrTokenInvalidated):
		msg = "session invalidated, please log in again"
	case errors.Is(err, authkit.ErrMFAChallengePending):
		msg = "mfa verification required"
	case errors.Is(err, authkit.ErrLogoutVersionUnavailable):
		w.Header().Set("Retry-After", "1")
		http.Error(w, "authentication temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, msg, http.StatusUnauthorized)
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
