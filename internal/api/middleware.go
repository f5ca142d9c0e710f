package api

import (
	"context"
	"net/http"
	"time"

	app_errors "memochat/internal/errors"
	"memochat/internal/navigation"
)

type stateKey struct{}

// CookieConfig describes the cookie that carries the client id.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// ClientState loads the caller's state from the store, creating one (and the
// cookie) when missing. The state stays locked for the whole request, so a
// client performs one action at a time.
func ClientState(store *navigation.Store, cookie CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var st *navigation.State
			if c, err := r.Cookie(cookie.Name); err == nil {
				st, _ = store.Get(c.Value)
			}
			if st == nil {
				st = store.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     cookie.Name,
					Value:    st.ID,
					Path:     "/",
					MaxAge:   int(cookie.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   cookie.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			st.Lock()
			defer st.Unlock()
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), stateKey{}, st)))
		})
	}
}

// StateFromContext returns the state installed by ClientState.
func StateFromContext(ctx context.Context) *navigation.State {
	st, _ := ctx.Value(stateKey{}).(*navigation.State)
	return st
}

// RequireAuth sends unauthenticated page requests to the login form.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := StateFromContext(r.Context())
		if st == nil || !st.Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuthAPI is RequireAuth for endpoints consumed by scripts: it answers 401 JSON.
func RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := StateFromContext(r.Context())
		if st == nil || !st.Authenticated {
			respondWithError(w, app_errors.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
