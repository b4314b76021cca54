package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg/ratelimit"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/services"
)

func newAuthHandler(t *testing.T, limiter *ratelimit.LoginRateLimiter) *AuthHandler {
	t.Helper()
	db := dbtest.New(t)
	svc := services.NewAuthService(
		repository.NewSQLiteUserRepo(db.Conn),
		repository.NewSQLiteSessionRepo(db.Conn),
		"handler-test-secret-0123456789abcdef",
		15, 7,
	)
	_, _, err := svc.CreateAdmin(context.Background(), &models.CreateAdminRequest{
		Name: "Admin", Email: "admin@dixis.gr", Password: "correct horse",
	})
	require.NoError(t, err)
	return NewAuthHandler(svc, limiter)
}

func login(h *AuthHandler, ip, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	r.Header.Set("X-Forwarded-For", ip)
	w := httptest.NewRecorder()
	h.Login(w, r)
	return w
}

func TestLoginRateLimit(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(3, time.Minute)
	t.Cleanup(limiter.Close)
	h := newAuthHandler(t, limiter)

	bad := `{"email":"ghost@dixis.gr","password":"whatever1"}`
	for range 3 {
		assert.Equal(t, http.StatusUnauthorized, login(h, "10.0.0.1", bad).Code)
	}

	w := login(h, "10.0.0.1", bad)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "too many login attempts")

	assert.Equal(t, http.StatusUnauthorized, login(h, "10.0.0.2", bad).Code, "limits are per IP")
}

func TestLoginSuccessResetsLimit(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)
	h := newAuthHandler(t, limiter)

	assert.Equal(t, http.StatusUnauthorized, login(h, "10.0.0.1", `{"email":"ghost@dixis.gr","password":"x"}`).Code)

	w := login(h, "10.0.0.1", `{"email":"admin@dixis.gr","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var env struct {
		Data models.AuthTokens `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Data.AccessToken)
	assert.Empty(t, env.Data.User.PasswordHash)

	for range 2 {
		assert.Equal(t, http.StatusUnauthorized, login(h, "10.0.0.1", `{"email":"ghost@dixis.gr","password":"x"}`).Code)
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	h := newAuthHandler(t, nil)
	w := httptest.NewRecorder()
	h.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMe(t *testing.T) {
	h := NewAuthHandler(nil, nil)

	w := httptest.NewRecorder()
	h.Me(w, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	r = r.WithContext(context.WithValue(r.Context(), UserContextKey, &models.User{ID: 7, Name: "Eleni", Role: models.RoleAdmin}))
	w = httptest.NewRecorder()
	h.Me(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Eleni"`)
}
