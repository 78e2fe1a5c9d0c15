package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/gorev/handlers"
	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/services"
)

func newProtectedServer(t *testing.T, tokens services.TokenService) http.Handler {
	t.Helper()

	mw := NewAuthMiddleware(tokens)
	return mw.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := r.Context().Value(handlers.UserContextKey).(*models.Identity)
		require.True(t, ok)
		w.Header().Set("X-User-ID", identity.UserID)
		w.Header().Set("X-User-Email", identity.Email)
		w.WriteHeader(http.StatusOK)
	}))
}

func TestRequire_ValidToken(t *testing.T) {
	tokens := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	handler := newProtectedServer(t, tokens)

	token, err := tokens.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-123", rec.Header().Get("X-User-ID"))
	require.Equal(t, "a@x.com", rec.Header().Get("X-User-Email"))
}

// Header hiç yok → 401. Client bu durumda login akışına gider.
func TestRequire_MissingHeader(t *testing.T) {
	tokens := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	handler := newProtectedServer(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequire_MalformedHeader(t *testing.T) {
	tokens := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	handler := newProtectedServer(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Header var ama token geçersiz → 403. Client bu durumda silent refresh dener.
func TestRequire_InvalidToken(t *testing.T) {
	tokens := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	handler := newProtectedServer(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequire_ExpiredToken(t *testing.T) {
	expired := services.NewTokenService("access-secret", "refresh-secret", -1, 7)
	token, err := expired.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	tokens := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	handler := newProtectedServer(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}
