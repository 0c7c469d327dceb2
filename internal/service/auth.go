package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dwellist/dwellist/internal/identity"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the only carrier of the session token.
const SessionCookieName = "access_token"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrInvalidSession   = errors.New("invalid session token")
)

type AuthService struct {
	userRepository repository.UserRepository
	jwtSecret      string
	isProduction   bool
	sessionExpiry  time.Duration
}

func NewAuthService(
	userRepository repository.UserRepository,
	jwtSecret string,
	isProduction bool,
	sessionExpiry time.Duration,
) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtSecret:      jwtSecret,
		isProduction:   isProduction,
		sessionExpiry:  sessionExpiry,
	}
}

// SignUp creates a traditional credential account. Uniqueness is left
// to the store's constraints; a collision surfaces as
// repository.ErrDuplicateUser.
func (s *AuthService) SignUp(username, email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Avatar:       model.DefaultAvatarURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, err
	}

	slog.Info("user signed up", "user_id", user.ID, "username", username)
	return user, nil
}

// SignIn authenticates traditional credentials. The two failure modes
// are deliberately distinguishable to preserve existing client
// behavior, even though that leaks account existence.
func (s *AuthService) SignIn(email, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrWrongCredentials
	}

	return user, nil
}

// Reconcile maps a verified external identity onto exactly one local
// user record. The claim is trusted completely; cryptographic
// verification already happened at the boundary.
//
// Found record without a linked identity gets the provider id and
// verified flag backfilled; the avatar is only replaced while it is
// still the default placeholder. A missing record is created with a
// derived unique username and a throwaway password.
func (s *AuthService) Reconcile(claim *identity.Claim) (*model.User, error) {
	if claim == nil || claim.Email == "" {
		return nil, identity.ErrMissingEmail
	}
	email := strings.TrimSpace(strings.ToLower(claim.Email))

	user, err := s.userRepository.ByEmail(email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to lookup user: %w", err)
		}
		return s.createFromClaim(email, claim)
	}

	if user.HasExternalIdentity() {
		return user, nil
	}

	// Backfill identity linkage on first external sign-in
	if claim.Subject != "" {
		user.ExternalID = &claim.Subject
	}
	verified := claim.EmailVerified
	user.EmailVerified = &verified
	if claim.Picture != "" && user.HasDefaultAvatar() {
		user.Avatar = claim.Picture
	}

	err = s.userRepository.Update(user)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	slog.Info("external identity linked", "user_id", user.ID, "subject", claim.Subject)
	return user, nil
}

func (s *AuthService) createFromClaim(email string, claim *identity.Claim) (*model.User, error) {
	// Throwaway secret: externally created accounts have no usable
	// password but the schema requires a hash.
	secret, err := randomToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	hash, err := s.HashPassword(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix, err := randomToken(2)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suffix: %w", err)
	}

	avatar := claim.Picture
	if avatar == "" {
		avatar = model.DefaultAvatarURL
	}

	now := time.Now()
	verified := claim.EmailVerified
	user := &model.User{
		ID:            uuid.New().String(),
		Username:      deriveUsername(claim.Name, email) + suffix,
		Email:         email,
		PasswordHash:  hash,
		Avatar:        avatar,
		EmailVerified: &verified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if claim.Subject != "" {
		user.ExternalID = &claim.Subject
	}

	err = s.userRepository.Create(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created from external identity", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// deriveUsername builds a username base from the display name (spaces
// stripped, lower-cased) or, absent one, from the email's local part.
// The caller appends a random suffix for uniqueness.
func deriveUsername(name, email string) string {
	if name != "" {
		return strings.ToLower(strings.Join(strings.Fields(name), ""))
	}
	local, _, _ := strings.Cut(email, "@")
	return strings.ToLower(local)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// GenerateSessionToken issues the signed session token. The payload is
// the user identifier plus standard time bounds; nothing is stored
// server-side.
func (s *AuthService) GenerateSessionToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.sessionExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// VerifySessionToken validates a session token and returns the user
// identifier it embeds.
func (s *AuthService) VerifySessionToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidSession
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", ErrInvalidSession
	}

	return userID, nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionExpiry.Seconds()),
		Expires:  time.Now().Add(s.sessionExpiry),
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.isProduction,
		SameSite: http.SameSiteStrictMode,
	})
}

// randomToken returns 2n lowercase hex characters.
func randomToken(n int) (string, error) {
	bytes := make([]byte, n)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
