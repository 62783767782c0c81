package middleware

import (
	"context"
	"net/http"
	"time"

	"go-tote-store/storefront"
)

const SessionCookie = "tote_session"

// SessionMiddleware resolves the visitor's session from its cookie, starting
// a new one when the cookie is missing or the session has expired.
func SessionMiddleware(mgr *storefront.Manager, secure bool, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *storefront.Session
			if c, err := r.Cookie(SessionCookie); err == nil {
				s, _ = mgr.Get(c.Value)
			}
			if s == nil {
				s = mgr.Start()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    s.ID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), SessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func SessionFrom(ctx context.Context) *storefront.Session {
	s, _ := ctx.Value(SessionContextKey).(*storefront.Session)
	return s
}

// ExpireSessionCookie tells the browser to forget its session.
func ExpireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
