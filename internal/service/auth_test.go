package service

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/dwellist/dwellist/internal/identity"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo is an in-memory repository.UserRepository with the same
// constraint behavior as the real store.
type fakeUserRepo struct {
	users   map[string]*model.User // by id
	updates int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) ByID(id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Update(user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	r.updates++
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestAuthService(repo repository.UserRepository) *AuthService {
	return NewAuthService(repo, "test-secret", false, 24*time.Hour)
}

func TestSignUpCreatesHashedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.SignUp("alice", "Alice@Example.COM", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email, "email is stored lower-cased")
	assert.Equal(t, model.DefaultAvatarURL, user.Avatar)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestSignUpDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.SignUp("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp("alice2", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, repository.ErrDuplicateUser)
}

func TestSignIn(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.SignUp("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, err := svc.SignIn("Alice@Example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.SignIn("nobody@example.com", "secret1")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn("alice@example.com", "wrong")
		assert.ErrorIs(t, err, ErrWrongCredentials)
	})
}

func TestReconcileCreatesUserFromClaim(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Reconcile(&identity.Claim{
		Subject:       "provider-uid-1",
		Email:         "Jane.Doe@Example.com",
		EmailVerified: true,
		Name:          "Jane Doe",
		Picture:       "https://example.com/jane.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "jane.doe@example.com", user.Email)
	assert.Regexp(t, regexp.MustCompile(`^janedoe[0-9a-f]{4}$`), user.Username,
		"username is the lower-cased display name without spaces plus a hex suffix")
	assert.Equal(t, "https://example.com/jane.png", user.Avatar)
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "provider-uid-1", *user.ExternalID)
	require.NotNil(t, user.EmailVerified)
	assert.True(t, *user.EmailVerified)
	assert.NotEmpty(t, user.PasswordHash, "external accounts still get a throwaway password hash")
}

func TestReconcileUsernameFallsBackToEmailLocalPart(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Reconcile(&identity.Claim{Email: "bob@example.com"})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^bob[0-9a-f]{4}$`), user.Username)
	assert.Equal(t, model.DefaultAvatarURL, user.Avatar, "no picture in the claim leaves the default")
	assert.Nil(t, user.ExternalID, "no subject in the claim leaves the linkage empty")
}

func TestReconcileIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	claim := &identity.Claim{
		Subject:       "provider-uid-1",
		Email:         "jane@example.com",
		EmailVerified: true,
		Name:          "Jane Doe",
	}

	first, err := svc.Reconcile(claim)
	require.NoError(t, err)

	second, err := svc.Reconcile(claim)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Username, second.Username)
	assert.Len(t, repo.users, 1)
	assert.Zero(t, repo.updates, "a linked record is returned without a write")
}

func TestReconcileBackfillsLocalAccount(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	local, err := svc.SignUp("alice", "alice@example.com", "secret1")
	require.NoError(t, err)
	require.Nil(t, local.ExternalID)

	user, err := svc.Reconcile(&identity.Claim{
		Subject:       "provider-uid-9",
		Email:         "alice@example.com",
		EmailVerified: true,
		Picture:       "https://example.com/alice.png",
	})
	require.NoError(t, err)

	assert.Equal(t, local.ID, user.ID, "reconciliation reuses the existing record")
	assert.Equal(t, "alice", user.Username, "the chosen username is never replaced")
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "provider-uid-9", *user.ExternalID)
	assert.Equal(t, "https://example.com/alice.png", user.Avatar,
		"the default placeholder is replaced by the provider picture")
	assert.Equal(t, 1, repo.updates)
}

func TestReconcileKeepsCustomAvatar(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	local, err := svc.SignUp("alice", "alice@example.com", "secret1")
	require.NoError(t, err)

	local.Avatar = "https://example.com/custom.png"
	require.NoError(t, repo.Update(local))
	repo.updates = 0

	user, err := svc.Reconcile(&identity.Claim{
		Subject: "provider-uid-9",
		Email:   "alice@example.com",
		Picture: "https://example.com/provider.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/custom.png", user.Avatar,
		"an avatar the user chose is never overwritten")
}

func TestReconcileMissingEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.Reconcile(&identity.Claim{Subject: "provider-uid-1"})
	assert.ErrorIs(t, err, identity.ErrMissingEmail)

	_, err = svc.Reconcile(nil)
	assert.ErrorIs(t, err, identity.ErrMissingEmail)
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"Jane Doe", "jane@example.com", "janedoe"},
		{"  Jane   van   Doe ", "jane@example.com", "janevandoe"},
		{"", "Bob.Smith@example.com", "bob.smith"},
		{"UPPER", "x@example.com", "upper"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deriveUsername(tt.name, tt.email))
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	token, err := svc.GenerateSessionToken("user-123")
	require.NoError(t, err)

	userID, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestSessionTokenRejectsTampering(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	token, err := svc.GenerateSessionToken("user-123")
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(token + "x")
	assert.Error(t, err)

	other := NewAuthService(newFakeUserRepo(), "different-secret", false, time.Hour)
	_, err = other.VerifySessionToken(token)
	assert.Error(t, err)
}

func TestSessionCookieAttributes(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	w := httptest.NewRecorder()
	svc.SetSessionCookie(w, "token-value")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookieName, cookie.Name)
	assert.Equal(t, "token-value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure, "cookie is only Secure in production")
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)
}

func TestClearSessionCookie(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	w := httptest.NewRecorder()
	svc.ClearSessionCookie(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
