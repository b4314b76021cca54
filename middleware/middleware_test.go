package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/handlers"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/services"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func withUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), handlers.UserContextKey, u))
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(okHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/", nil), &models.User{Role: models.RoleProducer}))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin access required")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, withUser(httptest.NewRequest(http.MethodGet, "/", nil), &models.User{Role: models.RoleAdmin}))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthRequire(t *testing.T) {
	db := dbtest.New(t)
	users := repository.NewSQLiteUserRepo(db.Conn)
	auth := services.NewAuthService(users, repository.NewSQLiteSessionRepo(db.Conn), "middleware-test-secret-0123456789", 15, 7)
	ctx := context.Background()

	_, _, err := auth.CreateAdmin(ctx, &models.CreateAdminRequest{Name: "Admin", Email: "admin@dixis.gr", Password: "password1"})
	require.NoError(t, err)
	tokens, err := auth.Login(ctx, &models.LoginRequest{Email: "admin@dixis.gr", Password: "password1"})
	require.NoError(t, err)

	var seen *models.User
	h := NewAuthMiddleware(auth, users).Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(handlers.UserContextKey).(*models.User)
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]int{
		"":                             http.StatusUnauthorized,
		"Token " + tokens.AccessToken:  http.StatusUnauthorized,
		"Bearer garbage":               http.StatusUnauthorized,
		"Bearer " + tokens.AccessToken: http.StatusNoContent,
	}
	for header, want := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, want, w.Code, "header %q", header)
	}

	require.NotNil(t, seen)
	assert.Equal(t, "admin@dixis.gr", seen.Email)
	assert.Empty(t, seen.PasswordHash)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var gotID string
	h := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value(handlers.RequestIDContextKey).(string)
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ok", nil)
	r.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(w, r)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", gotID)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), gotID)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.EqualValues(t, 2, entries[0].ContextMap()["bytes"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.EqualValues(t, http.StatusNotFound, entries[2].ContextMap()["status"])
	assert.Equal(t, "http", entries[0].LoggerName)
}
