package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dwellist/dwellist/internal/apperror"
	"github.com/dwellist/dwellist/internal/config"
	"github.com/dwellist/dwellist/internal/ctxkeys"
	"github.com/dwellist/dwellist/internal/identity"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/service"
	"github.com/dwellist/dwellist/internal/validation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type authHandler struct {
	authService       *service.AuthService
	appEnv            string
	appURL            string
	isProduction      bool
	googleOAuthConfig *oauth2.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *authHandler {
	return &authHandler{
		authService:  authService,
		appEnv:       cfg.AppEnv,
		appURL:       cfg.AppURL,
		isProduction: cfg.IsProduction(),
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/api/auth/oauth/google/callback",
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (h *authHandler) Health(w http.ResponseWriter, r *http.Request) error {
	return respond(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Backend is working!",
		"timestamp":   time.Now().Format(time.RFC3339),
		"environment": h.appEnv,
	})
}

func (h *authHandler) SignUp(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decode(r, &body)
	if err != nil {
		return err
	}

	if body.Username == "" || body.Email == "" || body.Password == "" {
		return apperror.BadRequest("username, email and password are required")
	}
	err = validation.ValidateUsername(body.Username)
	if err != nil {
		return apperror.BadRequest(err.Error())
	}
	err = validation.ValidateEmail(body.Email)
	if err != nil {
		return apperror.BadRequest(err.Error())
	}

	_, err = h.authService.SignUp(body.Username, body.Email, body.Password)
	if err != nil {
		// Duplicate email/username surfaces as a generic store failure
		return err
	}

	return respond(w, http.StatusCreated, "User created")
}

func (h *authHandler) SignIn(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	err := decode(r, &body)
	if err != nil {
		return err
	}

	if body.Email == "" || body.Password == "" {
		return apperror.BadRequest("email and password are required")
	}

	user, err := h.authService.SignIn(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return apperror.Unauthorized("User not found")
		}
		if errors.Is(err, service.ErrWrongCredentials) {
			return apperror.Unauthorized("Wrong Creds!")
		}
		return err
	}

	return h.issueSession(w, user)
}

// Google handles the client-side Google flow: the SPA already obtained
// the profile via the provider SDK and posts the fields it got back.
func (h *authHandler) Google(w http.ResponseWriter, r *http.Request) error {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Photo string `json:"photo"`
	}
	err := decode(r, &body)
	if err != nil {
		return err
	}

	user, err := h.authService.Reconcile(&identity.Claim{
		Email:   body.Email,
		Name:    body.Name,
		Picture: body.Photo,
	})
	if err != nil {
		if errors.Is(err, identity.ErrMissingEmail) {
			return apperror.BadRequest(err.Error())
		}
		return err
	}

	return h.issueSession(w, user)
}

// ExternalIdentity handles a bearer credential already verified by the
// BearerClaim middleware.
func (h *authHandler) ExternalIdentity(w http.ResponseWriter, r *http.Request) error {
	claim := ctxkeys.Claim(r.Context())
	if claim == nil {
		return apperror.BadRequest("identity claim not found")
	}

	user, err := h.authService.Reconcile(claim)
	if err != nil {
		if errors.Is(err, identity.ErrMissingEmail) {
			return apperror.BadRequest(err.Error())
		}
		return err
	}

	return h.issueSession(w, user)
}

// SignOut clears the session cookie. Succeeds whether or not a session
// existed.
func (h *authHandler) SignOut(w http.ResponseWriter, r *http.Request) error {
	h.authService.ClearSessionCookie(w)
	return respond(w, http.StatusOK, "Signed Out")
}

func (h *authHandler) issueSession(w http.ResponseWriter, user *model.User) error {
	token, err := h.authService.GenerateSessionToken(user.ID)
	if err != nil {
		slog.Error("failed to generate session token", "error", err, "user_id", user.ID)
		return err
	}

	h.authService.SetSessionCookie(w, token)
	return respond(w, http.StatusOK, user.View())
}

// OAuthGoogle starts the server-side OAuth code flow as an alternative
// to the SPA's client-side provider SDK.
func (h *authHandler) OAuthGoogle(w http.ResponseWriter, r *http.Request) error {
	state := generateOAuthState()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})

	url := h.googleOAuthConfig.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	return nil
}

func (h *authHandler) OAuthGoogleCallback(w http.ResponseWriter, r *http.Request) error {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie("oauth_state")
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("google oauth state validation failed", "error", err)
		return apperror.Forbidden("OAuth state validation failed")
	}

	// Clear state cookie
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		return apperror.BadRequest("OAuth callback missing code")
	}

	token, err := h.googleOAuthConfig.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("google oauth token exchange failed", "error", err)
		return apperror.Unauthorized("OAuth authentication failed")
	}

	userInfo, err := h.fetchGoogleUserInfo(r.Context(), token)
	if err != nil {
		slog.Error("failed to get google user info", "error", err)
		return apperror.Unauthorized("OAuth authentication failed")
	}

	user, err := h.authService.Reconcile(&identity.Claim{
		Subject:       userInfo.ID,
		Email:         userInfo.Email,
		EmailVerified: userInfo.VerifiedEmail,
		Name:          userInfo.Name,
		Picture:       userInfo.Picture,
	})
	if err != nil {
		if errors.Is(err, identity.ErrMissingEmail) {
			return apperror.BadRequest(err.Error())
		}
		return err
	}

	sessionToken, err := h.authService.GenerateSessionToken(user.ID)
	if err != nil {
		return err
	}
	h.authService.SetSessionCookie(w, sessionToken)

	slog.Info("user logged in with google oauth", "user_id", user.ID)
	http.Redirect(w, r, h.appURL, http.StatusSeeOther)
	return nil
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *authHandler) fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.googleOAuthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	info := &googleUserInfo{}
	err = json.NewDecoder(resp.Body).Decode(info)
	if err != nil {
		return nil, err
	}
	return info, nil
}

func generateOAuthState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
