package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/akinalp/gorev/models"
)

// APIError, sunucunun { "message": "..." } şeklinde döndüğü hataları temsil eder.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// IsAuthFailure, 401 veya 403 yanıtı olup olmadığını söyler.
func (e *APIError) IsAuthFailure() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// Client, gorev API client'ı.
//
// Retry protokolü (exactly-once semantics):
// 1. Korumalı bir istek 401/403 dönerse, istek başına BİR kez sessiz
//    refresh denenir. Marker per-request'tir (do() çağrısı içinde lokal),
//    global state değil — eşzamanlı istekler kendi one-shot retry
//    haklarını bağımsız kullanır.
// 2. Refresh başarılıysa orijinal istek yeni access token ile bir kez
//    daha gönderilir ve o yanıt caller'a şeffaf şekilde döner.
// 3. Refresh başarısızsa tüm lokal oturum verisi silinir,
//    OnSessionExpired tetiklenir ve hata caller'a iletilir.
// 4. Retry edilmiş istek yine 401/403 dönerse İKİNCİ refresh YAPILMAZ,
//    hata doğrudan döner. Sürekli reddeden bir sunucuya karşı sonsuz
//    retry döngüsü bu şekilde engellenir.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session

	// OnSessionExpired, refresh de başarısız olduğunda çağrılır (oturum
	// gerçekten bitti). UI katmanı burada login ekranına yönlendirir.
	// nil olabilir.
	OnSessionExpired func()
}

// New, verilen base URL için bir client oluşturur.
// baseURL örn: "http://localhost:3000" (sonunda / olmadan).
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		session:    NewSession(),
	}
}

// Session, client'ın oturum objesini döner.
func (c *Client) Session() *Session {
	return c.session
}

// send, tek bir HTTP isteği gönderir. Retry yapmaz.
// payload her çağrıda yeni bir reader'a sarılır, böylece retry'da
// body baştan okunabilir.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, authed bool) (*http.Response, error) {
	var body *bytes.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Her giden istek, gönderilmeden hemen önce GÜNCEL access token'ı okur.
	// Refresh sonrası retry'da buradan yeni token gider.
	if authed {
		accessToken, _ := c.session.Tokens()
		if accessToken != "" {
			req.Header.Set("Authorization", "Bearer "+accessToken)
		}
	}

	return c.httpClient.Do(req)
}

// do, isteği gönderir ve yanıtı out'a decode eder.
// authed isteklerde 401/403 için one-shot refresh-retry uygular.
func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, authed)
	if err != nil {
		return err
	}

	// 401/403 ve henüz retry edilmedi → refresh + tek retry.
	// Bu blok ikinci kez çalışmaz: retry'dan dönen yanıt aşağıdaki
	// genel hata yoluna düşer.
	if authed && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		resp.Body.Close()

		if err := c.refreshTokens(ctx); err != nil {
			return err
		}

		resp, err = c.send(ctx, method, path, payload, authed)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// refreshTokens, saklanan refresh token ile yeni bir token çifti alır.
//
// Başarısızlıkta (token yok, ağ hatası veya sunucu reddi) oturum
// tamamen temizlenir ve OnSessionExpired tetiklenir — caller'a dönen
// hata "oturum bitti" anlamına gelir.
func (c *Client) refreshTokens(ctx context.Context) error {
	_, refreshToken := c.session.Tokens()
	if refreshToken == "" {
		c.expireSession()
		return &APIError{Status: http.StatusUnauthorized, Message: "no refresh token available"}
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return fmt.Errorf("failed to encode refresh request: %w", err)
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", payload, false)
	if err != nil {
		c.expireSession()
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeAPIError(resp)
		c.expireSession()
		return apiErr
	}

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.expireSession()
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}

	c.session.Set(result.Data.AccessToken, result.Data.RefreshToken)
	return nil
}

// expireSession, lokal oturumu sonlandırır ve callback'i tetikler.
func (c *Client) expireSession() {
	c.session.Clear()
	if c.OnSessionExpired != nil {
		c.OnSessionExpired()
	}
}

// decodeAPIError, hata yanıtındaki { "message": "..." } body'sini parse eder.
func decodeAPIError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: body.Message}
}

// Register, yeni kullanıcı kaydeder. Token dönmez, ardından Login gerekir.
func (c *Client) Register(ctx context.Context, email, password string) (*models.PublicUser, error) {
	var user models.PublicUser
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": password}, &user, false)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login, giriş yapar ve dönen token çifti ile user view'ı oturuma yazar.
func (c *Client) Login(ctx context.Context, email, password string) (*models.PublicUser, error) {
	var result struct {
		User         models.PublicUser `json:"user"`
		AccessToken  string            `json:"accessToken"`
		RefreshToken string            `json:"refreshToken"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &result, false)
	if err != nil {
		return nil, err
	}

	c.session.Set(result.AccessToken, result.RefreshToken)
	c.session.SetUser(&result.User)
	return &result.User, nil
}

// Logout, sunucudaki refresh token'ı temizler ve lokal oturumu siler.
// Sunucu yanıtı ne olursa olsun lokal oturum SİLİNİR — kullanıcının
// niyeti oturumu kapatmaktır.
func (c *Client) Logout(ctx context.Context) error {
	_, refreshToken := c.session.Tokens()
	err := c.do(ctx, http.MethodPost, "/api/auth/logout",
		map[string]string{"refreshToken": refreshToken}, nil, true)
	c.session.Clear()
	return err
}

// Me, mevcut access token'ın sahibini döner.
func (c *Client) Me(ctx context.Context) (*models.PublicUser, error) {
	var user models.PublicUser
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &user, true); err != nil {
		return nil, err
	}
	c.session.SetUser(&user)
	return &user, nil
}

// Todos, kullanıcının todo listesini döner.
func (c *Client) Todos(ctx context.Context) ([]models.Todo, error) {
	var result struct {
		Todos []models.Todo `json:"todos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, &result, true); err != nil {
		return nil, err
	}
	return result.Todos, nil
}

// CreateTodo, yeni bir todo oluşturur.
func (c *Client) CreateTodo(ctx context.Context, title string) (*models.Todo, error) {
	var result struct {
		Todo models.Todo `json:"todo"`
	}
	err := c.do(ctx, http.MethodPost, "/api/todos",
		map[string]string{"title": title}, &result, true)
	if err != nil {
		return nil, err
	}
	return &result.Todo, nil
}

// ToggleTodo, bir todo'nun completed durumunu tersine çevirir.
func (c *Client) ToggleTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/todos/"+id, nil, nil, true)
}

// DeleteTodo, bir todo'yu siler.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, nil, true)
}
