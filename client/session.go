// Package client, gorev API'si için Go client'ı ve oturum yönetimini sağlar.
//
// İki sorumluluğu var:
// 1. Session: access/refresh token çiftinin ve cached kullanıcı görünümünün
//    TEK sahibi. Token state'i global değişkenlerde değil, explicit bir
//    objede tutulur — get/set/clear ile erişilir.
// 2. Client: her isteğe bearer token ekler ve 401/403 yanıtlarında
//    sessiz refresh + tek seferlik retry protokolünü uygular.
package client

import (
	"sync"

	"github.com/akinalp/gorev/models"
)

// Session, mevcut token çiftinin ve cached user view'ın tek sahibi.
//
// Mutex ile korunur: birden fazla goroutine aynı anda istek atabilir ve
// biri refresh sonucu token'ları güncellerken diğeri okuyor olabilir.
type Session struct {
	mu           sync.Mutex
	accessToken  string
	refreshToken string
	user         *models.PublicUser
}

// NewSession, boş bir oturum oluşturur.
func NewSession() *Session {
	return &Session{}
}

// Set, token çiftini günceller. Login ve başarılı refresh sonrası çağrılır.
func (s *Session) Set(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

// SetUser, cached kullanıcı görünümünü günceller.
func (s *Session) SetUser(user *models.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// Tokens, mevcut token çiftini döner.
func (s *Session) Tokens() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// User, cached kullanıcı görünümünü döner (nil olabilir).
func (s *Session) User() *models.PublicUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Clear, tüm oturum verisini siler: her iki token ve cached user.
// Logout'ta ve refresh başarısız olduğunda çağrılır.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
}
