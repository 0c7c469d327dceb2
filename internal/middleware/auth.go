package middleware

import (
	"net/http"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/service"
)

// Session checks for a session cookie and adds the user to the request
// context when the token is valid. Invalid tokens clear the cookie and
// the request continues unauthenticated.
func Session(authService *service.AuthService, userService *service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.VerifySessionToken(cookie.Value)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			user, err := userService.ByID(userID)
			if err != nil {
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			// Never expose the hash downstream of the session check
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without an authenticated session.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := ctxkeys.User(r.Context())
		if user == nil {
			apperror.Write(w, apperror.Unauthorized("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	}
}
