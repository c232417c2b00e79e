package middleware

import (
	"context"
	"net"
	"net/http"

	crewauth "github.com/MrEthical07/crewauth"
)

// SessionCookieName is the cookie carrying the opaque session identifier.
const SessionCookieName = "crewauth_session"

type principalContextKey struct{}

// PrincipalFromContext returns the principal injected by [Guard], if any.
func PrincipalFromContext(ctx context.Context) (*crewauth.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*crewauth.Principal)
	return p, ok
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Guard authenticates requests by resolving the session cookie. Requests
// without a valid session receive 401 before the wrapped handler runs.
func Guard(engine *crewauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			// Stamp request context so engine-side audit events carry the
			// caller's address.
			ctx := crewauth.WithClientIP(r.Context(), remoteIP(r))
			ctx = crewauth.WithUserAgent(ctx, r.UserAgent())

			principal, err := engine.ResolveSession(ctx, cookie.Value)
			if err != nil || principal == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx = context.WithValue(ctx, principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
