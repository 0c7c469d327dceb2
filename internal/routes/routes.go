package routes

import (
	"net/http"

	"github.com/dwellist/dwellist/internal/app"
	"github.com/dwellist/dwellist/internal/handler"
	"github.com/dwellist/dwellist/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.Cfg)
	user := handler.NewUserHandler(app.UserService, app.AuthService)
	listing := handler.NewListingHandler(app.ListingService)
	image := handler.NewImageHandler(app.ImageService)

	mux := http.NewServeMux()

	// Auth flow endpoints are rate limited as a unit
	rateLimiter := middleware.RateLimitAuth()
	bearer := middleware.BearerClaim(app.IdentityVerifier)

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/auth/health", handler.Wrap(auth.Health))
	mux.HandleFunc("POST /api/auth/signup", rateLimiter(handler.Wrap(auth.SignUp)))
	mux.HandleFunc("POST /api/auth/signin", rateLimiter(handler.Wrap(auth.SignIn)))
	mux.HandleFunc("POST /api/auth/google", rateLimiter(handler.Wrap(auth.Google)))
	mux.HandleFunc("POST /api/auth/firebase", rateLimiter(bearer(handler.Wrap(auth.ExternalIdentity))))
	mux.HandleFunc("GET /api/auth/signout", handler.Wrap(auth.SignOut))

	// Server-side OAuth code flow
	mux.HandleFunc("GET /api/auth/oauth/google", rateLimiter(handler.Wrap(auth.OAuthGoogle)))
	mux.HandleFunc("GET /api/auth/oauth/google/callback", rateLimiter(handler.Wrap(auth.OAuthGoogleCallback)))

	// Listings are publicly readable
	mux.HandleFunc("GET /api/listing/get/{id}", handler.Wrap(listing.Get))
	mux.HandleFunc("GET /api/listing/get", handler.Wrap(listing.Search))

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/user/health", handler.Wrap(user.Health))
	mux.HandleFunc("POST /api/user/update/{id}", middleware.RequireAuth(handler.Wrap(user.Update)))
	mux.HandleFunc("DELETE /api/user/delete/{id}", middleware.RequireAuth(handler.Wrap(user.Delete)))
	mux.HandleFunc("GET /api/user/listings/{id}", middleware.RequireAuth(handler.Wrap(user.Listings)))

	mux.HandleFunc("POST /api/listing/create", middleware.RequireAuth(handler.Wrap(listing.Create)))
	mux.HandleFunc("POST /api/listing/update/{id}", middleware.RequireAuth(handler.Wrap(listing.Update)))
	mux.HandleFunc("DELETE /api/listing/delete/{id}", middleware.RequireAuth(handler.Wrap(listing.Delete)))

	mux.HandleFunc("POST /api/image/upload", middleware.RequireAuth(handler.Wrap(image.Upload)))
	mux.HandleFunc("DELETE /api/image/delete/{id}", middleware.RequireAuth(handler.Wrap(image.Delete)))
	mux.HandleFunc("GET /api/image/user-images/{id}", middleware.RequireAuth(handler.Wrap(image.UserImages)))
	mux.HandleFunc("GET /api/image/get/{id}", middleware.RequireAuth(handler.Wrap(image.Get)))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.CORS(app.Cfg.AllowedOrigins),
		middleware.RequestLogging,
		middleware.Session(app.AuthService, app.UserService),
	)
}
