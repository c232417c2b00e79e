package middleware

import (
	"net/http"
)

// RequirePermission gates a route on a resource:action permission held by the
// principal resolved by [Guard]. Requests without a principal receive 401;
// requests whose principal lacks the permission receive 403. Fail-closed: a
// missing or malformed permission set denies access.
func RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			for _, p := range principal.User.Permissions {
				if p.Resource == resource && p.Action == action {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
