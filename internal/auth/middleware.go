package auth

import "net/http"

// SessionCookie is the name of the session cookie.
const SessionCookie = "jb_session"

// Middleware resolves the session cookie into an Identity in the request
// context. It never rejects: unauthenticated requests pass through with no
// identity, and each handler decides whether one is required. That keeps the
// identity an explicit parameter of the core rather than ambient state.
func Middleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err == nil && cookie.Value != "" {
				if identity, err := Parse(secret, cookie.Value); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), identity))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
