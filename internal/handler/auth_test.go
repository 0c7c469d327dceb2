package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dwellist/dwellist/internal/config"
	"github.com/dwellist/dwellist/internal/model"
	"github.com/dwellist/dwellist/internal/repository"
	"github.com/dwellist/dwellist/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateUser
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) ByID(id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) ByEmail(email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Update(user *model.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestAuthHandler(repo repository.UserRepository) *authHandler {
	authService := service.NewAuthService(repo, "test-secret", false, 24*time.Hour)
	cfg := &config.Config{
		AppEnv: "test",
		AppURL: "http://localhost:3000",
	}
	return NewAuthHandler(authService, cfg)
}

func doJSON(t *testing.T, h apiFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	Wrap(h).ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == service.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestSignUpHandler(t *testing.T) {
	repo := newMemUserRepo()
	h := newTestAuthHandler(repo)

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `"User created"`, w.Body.String())
	assert.Len(t, repo.users, 1)
}

func TestSignUpHandlerValidation(t *testing.T) {
	h := newTestAuthHandler(newMemUserRepo())

	t.Run("missing fields", func(t *testing.T) {
		w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup", `{"username":"alice"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, float64(http.StatusBadRequest), body["statusCode"])
	})

	t.Run("bad email", func(t *testing.T) {
		w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
			`{"username":"alice","email":"not-an-email","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad username", func(t *testing.T) {
		w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
			`{"username":"al ice","email":"alice@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup", `{`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSignInHandler(t *testing.T) {
	repo := newMemUserRepo()
	h := newTestAuthHandler(repo)

	w := doJSON(t, h.SignUp, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("success sets session cookie", func(t *testing.T) {
		w := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin",
			`{"email":"alice@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		cookie := sessionCookie(w)
		require.NotNil(t, cookie)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

		body := decodeBody(t, w)
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "password")
		assert.NotContains(t, body, "passwordHash")
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin",
			`{"email":"nobody@example.com","password":"secret1"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not found", decodeBody(t, w)["message"])
	})

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, h.SignIn, http.MethodPost, "/api/auth/signin",
			`{"email":"alice@example.com","password":"wrong"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Wrong Creds!", decodeBody(t, w)["message"])
	})
}

func TestSignOutHandler(t *testing.T) {
	h := newTestAuthHandler(newMemUserRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/signout", nil)
	w := httptest.NewRecorder()
	Wrap(h.SignOut).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"Signed Out"`, w.Body.String())

	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestGoogleHandler(t *testing.T) {
	repo := newMemUserRepo()
	h := newTestAuthHandler(repo)

	t.Run("creates account and session", func(t *testing.T) {
		w := doJSON(t, h.Google, http.MethodPost, "/api/auth/google",
			`{"email":"jane@example.com","name":"Jane Doe","photo":"https://example.com/jane.png"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, sessionCookie(w))

		body := decodeBody(t, w)
		username, _ := body["username"].(string)
		assert.True(t, strings.HasPrefix(username, "janedoe"))
		assert.Equal(t, "https://example.com/jane.png", body["avatar"])
	})

	t.Run("repeat sign-in reuses the account", func(t *testing.T) {
		w := doJSON(t, h.Google, http.MethodPost, "/api/auth/google",
			`{"email":"jane@example.com","name":"Jane Doe"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, repo.users, 1)
	})

	t.Run("missing email", func(t *testing.T) {
		w := doJSON(t, h.Google, http.MethodPost, "/api/auth/google", `{"name":"Jane Doe"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	h := newTestAuthHandler(newMemUserRepo())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/health", nil)
	w := httptest.NewRecorder()
	Wrap(h.Health).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Backend is working!", body["message"])
	assert.Equal(t, "test", body["environment"])
}

func TestErrorEnvelopeOnInternalFailure(t *testing.T) {
	failing := apiFunc(func(http.ResponseWriter, *http.Request) error {
		return assert.AnError
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	w := httptest.NewRecorder()
	Wrap(failing).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Internal Server Error", body["message"], "internal details never leak")
}
