// Package identity verifies bearer credentials issued by the external
// identity provider and extracts a canonical claim from them.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingEmail = errors.New("claim is missing required field: email")
)

// Claim is the transient, normalized identity extracted from a verified
// bearer token. It is never persisted as-is; reconciliation folds the
// relevant fields into the user record.
type Claim struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claim, error)
}

// oidcVerifier validates tokens against the provider's published keys.
// Firebase ID tokens are OIDC tokens issued by
// https://securetoken.google.com/<project-id> with the project id as
// audience.
type oidcVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func NewVerifier(ctx context.Context, projectID string) (Verifier, error) {
	issuer := "https://securetoken.google.com/" + projectID

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to init identity provider %q: %w", issuer, err)
	}

	return &oidcVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: projectID}),
	}, nil
}

func (v *oidcVerifier) Verify(ctx context.Context, rawToken string) (*Claim, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	var claims struct {
		Subject       string `json:"sub"`
		UserID        string `json:"user_id"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	err = idToken.Claims(&claims)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}

	return normalize(claims.Subject, claims.UserID, claims.Email, claims.EmailVerified, claims.Name, claims.Picture)
}

// unverifiedDecoder decodes the token payload without checking its
// signature. Development fallback only; config refuses to enable it in
// production.
type unverifiedDecoder struct{}

func NewUnverifiedDecoder() Verifier {
	slog.Warn("identity verification disabled, decoding bearer tokens without signature check")
	return &unverifiedDecoder{}
}

func (d *unverifiedDecoder) Verify(_ context.Context, rawToken string) (*Claim, error) {
	claims := jwt.MapClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(rawToken, claims)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}
	verified, _ := claims["email_verified"].(bool)

	return normalize(str("sub"), str("user_id"), str("email"), verified, str("name"), str("picture"))
}

func normalize(subject, userID, email string, verified bool, name, picture string) (*Claim, error) {
	if subject == "" {
		subject = userID
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	return &Claim{
		Subject:       subject,
		Email:         email,
		EmailVerified: verified,
		Name:          name,
		Picture:       picture,
	}, nil
}
