// Package repository, veritabanı erişim katmanını tanımlar.
//
// Repository Pattern nedir?
// Veritabanı işlemlerini (CRUD) soyutlayan bir tasarım kalıbıdır.
// Service katmanı doğrudan SQL yazmaz — repository interface'i üzerinden çalışır.
//
// Neden interface?
// 1. Test: Mock repository yazarak DB olmadan test edebilirsin
// 2. Esneklik: SQLite'tan PostgreSQL'e geçmek istersen sadece yeni implementasyon yazarsın
// 3. SOLID (Dependency Inversion): Service, concrete struct'a değil interface'e bağımlı
//
// Go'da interface "implicit"tır — bir struct, interface'deki tüm method'ları
// implement ediyorsa otomatik olarak o interface'i sağlar.
package repository

import (
	"context"
	"time"

	"github.com/akinalp/gorev/models"
)

// UserRepository, kullanıcı veritabanı işlemleri için interface.
//
// context.Context: HTTP handler bir request aldığında context oluşturur —
// client bağlantıyı koparırsa context iptal olur ve devam eden DB sorgusu
// da durur. Resource waste'i önler.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail, email'e göre kullanıcıyı bulur. Email case-insensitive
	// natural key'dir — lookup her zaman lowercase form üzerinden yapılır.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// SetRefreshToken, kullanıcının refresh token'ını koşulsuz yazar.
	// Login üzerine yazar (varsa eski oturumu geçersiz kılar),
	// logout nil geçerek temizler.
	SetRefreshToken(ctx context.Context, userID string, token *string) error
	// RotateRefreshToken, refresh token'ı KOŞULLU olarak değiştirir:
	// sadece DB'deki değer oldToken'a hâlâ eşitse newToken yazılır.
	// Tek satırlık compare-and-swap — aynı eski token'la yarışan iki
	// refresh isteğinden yalnızca biri true alır, diğeri false
	// (rotation yarışının atomicity sınırı bu UPDATE'tir).
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) (bool, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	// UpdatePassword, kullanıcının şifre hash'ini günceller (password reset).
	UpdatePassword(ctx context.Context, userID string, newPasswordHash string) error
}
