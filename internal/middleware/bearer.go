package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/identity"
)

// BearerClaim verifies the Authorization bearer credential against the
// external identity provider and adds the extracted claim to the
// request context. Requests without a valid credential are rejected
// here; downstream handlers trust the claim completely.
func BearerClaim(verifier identity.Verifier) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				apperror.Write(w, apperror.New(http.StatusServiceUnavailable, "Identity provider not configured"))
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				apperror.Write(w, apperror.Unauthorized("No valid authorization header provided"))
				return
			}

			rawToken := strings.TrimPrefix(header, "Bearer ")
			if rawToken == "" {
				apperror.Write(w, apperror.Unauthorized("No token provided"))
				return
			}

			claim, err := verifier.Verify(r.Context(), rawToken)
			if err != nil {
				if errors.Is(err, identity.ErrMissingEmail) {
					apperror.Write(w, apperror.BadRequest(err.Error()))
					return
				}
				slog.Warn("bearer token verification failed", "error", err)
				apperror.Write(w, apperror.Forbidden("Invalid or expired token"))
				return
			}

			ctx := ctxkeys.WithClaim(r.Context(), claim)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
