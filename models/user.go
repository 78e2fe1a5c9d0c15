// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Veritabanındaki bir tablonun Go karşılığıdır.
// Aynı zamanda API'den gelen/giden verilerin şeklini de belirler.
//
// Go'da `json:"email"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User, bir kullanıcıyı ve credential'larını temsil eder.
//
// RefreshToken: kullanıcı başına EN FAZLA BİR aktif refresh token (tek oturum).
// nil = aktif oturum yok. Her başarılı login/refresh üzerine yazar,
// logout temizler. Refresh endpoint'inde sunulan token'ın imzası geçerli
// olsa bile buradaki değerle birebir eşleşmesi zorunludur — rotation ve
// logout'u etkili kılan tek mekanizma budur.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // json:"-" → API response'a DAHİL ETME (güvenlik!)
	RefreshToken *string    `json:"-"` // *string = nullable — Go'da nil olabilir
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PublicUser, API'ye dönen kullanıcı görünümü.
// Sadece id + email içerir — hash veya token ASLA bu view'a girmez.
// Frontend'in beklediği alan adı `_id` olduğu için tag öyle.
type PublicUser struct {
	ID    string `json:"_id"`
	Email string `json:"email"`
}

// ToPublicView, storage entity'sinden public görünüm üretir.
// Serialization method'larını User'a eklemek yerine ayrı, isimli bir
// dönüşüm fonksiyonu — view ile entity birbirine karışmaz.
func ToPublicView(u *User) PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email}
}

// Identity, auth middleware'ın request context'ine eklediği kimlik.
// Bilinçli olarak sadece iki alan: middleware DB'ye gitmez, token
// claim'lerinden gelen bilgiden fazlasını taşımaz.
type Identity struct {
	UserID string
	Email  string
}

// emailRegex, basit email format kontrolü.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// EmailRegex, email format regex'ini döner (diğer paketlerin kullanımı için).
func EmailRegex() *regexp.Regexp {
	return emailRegex
}

// RegisterRequest, kayıt olurken frontend'den gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, RegisterRequest'in geçerli olup olmadığını kontrol eder.
// Email normalize edilir (trim + lowercase) — unique kontrolü ve login
// lookup'ı her zaman aynı kanonik form üzerinden çalışır.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// LoginRequest, giriş yaparken frontend'den gelen veri.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
