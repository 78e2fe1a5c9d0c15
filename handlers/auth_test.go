package handlers_test

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/gorev/database"
	"github.com/akinalp/gorev/handlers"
	"github.com/akinalp/gorev/middleware"
	"github.com/akinalp/gorev/pkg/ratelimit"
	"github.com/akinalp/gorev/repository"
	"github.com/akinalp/gorev/services"
)

// newTestServer, main.go'daki wire-up'ın test kopyasını kurar:
// gerçek SQLite (geçici dosya), gerçek service'ler, gerçek middleware.
// Sadece CORS ve email dışarıda kalır.
func newTestServer(t *testing.T, limiter *ratelimit.LoginRateLimiter) *httptest.Server {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	todoRepo := repository.NewSQLiteTodoRepo(db.Conn)
	resetRepo := repository.NewSQLiteResetTokenRepo(db.Conn)

	tokenService := services.NewTokenService("access-secret", "refresh-secret", 15, 7)
	authService := services.NewAuthService(db.Conn, userRepo, resetRepo, tokenService, nil)
	todoService := services.NewTodoService(todoRepo)

	authHandler := handlers.NewAuthHandler(authService, limiter)
	todoHandler := handlers.NewTodoHandler(todoService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))
	mux.Handle("GET /api/todos", authMiddleware.Require(http.HandlerFunc(todoHandler.List)))
	mux.Handle("POST /api/todos", authMiddleware.Require(http.HandlerFunc(todoHandler.Create)))
	mux.Handle("PATCH /api/todos/{id}", authMiddleware.Require(http.HandlerFunc(todoHandler.Toggle)))
	mux.Handle("DELETE /api/todos/{id}", authMiddleware.Require(http.HandlerFunc(todoHandler.Delete)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// postJSON, body'yi JSON olarak gönderir, yanıtı decode eder ve status döner.
func postJSON(t *testing.T, url, bearer string, body, out any) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func getJSON(t *testing.T, url, bearer string, out any) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type loginResponse struct {
	User struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Success bool `json:"success"`
	Data    struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"data"`
}

// Uçtan uca oturum senaryosu: kayıt, duplicate kayıt, login, me,
// refresh ve eski refresh token'ın reddi.
func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	creds := map[string]string{"email": "a@x.com", "password": "pw123"}

	// Kayıt → 200, sadece public view döner
	var registered struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	}
	status := postJSON(t, srv.URL+"/api/auth/register", "", creds, &registered)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, registered.ID)
	require.Equal(t, "a@x.com", registered.Email)

	// Aynı email ile ikinci kayıt → 400
	var dupErr struct {
		Message string `json:"message"`
	}
	status = postJSON(t, srv.URL+"/api/auth/register", "", creds, &dupErr)
	require.Equal(t, http.StatusBadRequest, status)
	require.NotEmpty(t, dupErr.Message)

	// Login → token çifti
	var login loginResponse
	status = postJSON(t, srv.URL+"/api/auth/login", "", creds, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	require.Equal(t, "a@x.com", login.User.Email)

	// Me → access token'daki kimlik
	var me struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
	}
	status = getJSON(t, srv.URL+"/api/auth/me", login.AccessToken, &me)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, registered.ID, me.ID)
	require.Equal(t, "a@x.com", me.Email)

	// Refresh → yeni çift
	var refreshed refreshResponse
	status = postJSON(t, srv.URL+"/api/auth/refresh", "",
		map[string]string{"refreshToken": login.RefreshToken}, &refreshed)
	require.Equal(t, http.StatusOK, status)
	require.True(t, refreshed.Success)
	require.NotEmpty(t, refreshed.Data.AccessToken)
	require.NotEmpty(t, refreshed.Data.RefreshToken)

	// Orijinal refresh token rotate edildi → 403
	status = postJSON(t, srv.URL+"/api/auth/refresh", "",
		map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusForbidden, status)

	// Yeni access token /me'de çalışır
	status = getJSON(t, srv.URL+"/api/auth/me", refreshed.Data.AccessToken, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestRefresh_MissingToken(t *testing.T) {
	srv := newTestServer(t, nil)

	status := postJSON(t, srv.URL+"/api/auth/refresh", "", map[string]string{}, nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestMe_TokenRequired(t *testing.T) {
	srv := newTestServer(t, nil)

	// Token yok → 401
	status := getJSON(t, srv.URL+"/api/auth/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	// Geçersiz token → 403
	status = getJSON(t, srv.URL+"/api/auth/me", "garbage", nil)
	require.Equal(t, http.StatusForbidden, status)
}

// Logout asla hard-fail olmaz: token'sız, geçersiz token'lı,
// boş body'li her çağrı 200 success döner.
func TestLogout_AlwaysSucceeds(t *testing.T) {
	srv := newTestServer(t, nil)

	var result struct {
		Success bool `json:"success"`
	}
	status := postJSON(t, srv.URL+"/api/auth/logout", "", map[string]string{}, &result)
	require.Equal(t, http.StatusOK, status)
	require.True(t, result.Success)

	status = postJSON(t, srv.URL+"/api/auth/logout", "garbage",
		map[string]string{"refreshToken": "also-garbage"}, &result)
	require.Equal(t, http.StatusOK, status)
	require.True(t, result.Success)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	srv := newTestServer(t, nil)
	creds := map[string]string{"email": "a@x.com", "password": "pw123"}

	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/register", "", creds, nil))

	var login loginResponse
	require.Equal(t, http.StatusOK, postJSON(t, srv.URL+"/api/auth/login", "", creds, &login))

	status := postJSON(t, srv.URL+"/api/auth/logout", login.AccessToken,
		map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, status)

	// Logout sonrası refresh artık çalışmaz
	status = postJSON(t, srv.URL+"/api/auth/refresh", "",
		map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.NewLoginRateLimiter(3, time.Minute)
	t.Cleanup(limiter.Stop)

	srv := newTestServer(t, limiter)
	wrong := map[string]string{"email": "a@x.com", "password": "wrong"}

	// İlk 3 deneme limitten geçer (401 alır, kullanıcı yok)
	for i := 0; i < 3; i++ {
		status := postJSON(t, srv.URL+"/api/auth/login", "", wrong, nil)
		require.Equal(t, http.StatusUnauthorized, status)
	}

	// 4. deneme → 429 + Retry-After header
	payload, err := json.Marshal(wrong)
	require.NoError(t, err)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
}
