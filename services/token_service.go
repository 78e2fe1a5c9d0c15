// Package services, business logic katmanını barındırır.
//
// Service Layer Pattern:
// Handler (HTTP) ile Repository (DB) arasında oturan katmandır.
// Tüm iş kuralları burada yaşar: şifre hash'leme, token üretme/doğrulama,
// oturum rotation'ı.
//
// Service ASLA http.Request/Response bilmez — sadece domain modelleri alır/verir.
// Service ASLA doğrudan SQL çalıştırmaz — Repository interface'i kullanır.
package services

import (
	"fmt"
	"time"

	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/golang-jwt/jwt/v5"
)

// TokenService, JWT üretme ve doğrulama işlemleri için interface.
//
// Bu service bilinçli olarak "saf"tır: secret'lar + saat dışında hiçbir
// state'e dokunmaz, storage'a ASLA gitmez. Refresh token'ın DB'deki
// değerle eşleşme kontrolü AuthService'in işidir — imza doğrulaması ile
// oturum doğrulaması ayrı sorumluluklardır.
type TokenService interface {
	// IssueAccessToken, kısa ömürlü access token üretir (id + email claim'leri).
	IssueAccessToken(userID, email string) (string, error)
	// IssueRefreshToken, uzun ömürlü refresh token üretir (id + tip ayracı).
	IssueRefreshToken(userID string) (string, error)
	// VerifyAccessToken, imza + expiry kontrolü yapar.
	// Her başarısızlık pkg.ErrForbidden olarak döner (403).
	VerifyAccessToken(tokenString string) (*models.AccessClaims, error)
	// VerifyRefreshToken, imza + expiry + tip ayracı kontrolü yapar.
	VerifyRefreshToken(tokenString string) (*models.RefreshClaims, error)
}

// tokenService, TokenService implementasyonu.
// Access ve refresh için AYRI secret'lar — bkz. config.JWTConfig.
type tokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExp     time.Duration
	refreshExp    time.Duration
}

// NewTokenService, constructor.
// accessExpMinutes/refreshExpDays config'ten gelir (varsayılan 15dk / 7 gün).
func NewTokenService(accessSecret, refreshSecret string, accessExpMinutes, refreshExpDays int) TokenService {
	return &tokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExp:     time.Duration(accessExpMinutes) * time.Minute,
		refreshExp:    time.Duration(refreshExpDays) * 24 * time.Hour,
	}
}

func (s *tokenService) IssueAccessToken(userID, email string) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gorev",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return signed, nil
}

func (s *tokenService) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := &models.RefreshClaims{
		UserID:    userID,
		TokenType: models.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshExp)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gorev",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.refreshSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return signed, nil
}

func (s *tokenService) VerifyAccessToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (any, error) {
		// alg confusion saldırısına karşı: sadece HMAC kabul et.
		// "none" veya RS256 gibi bir header ile gelen token burada reddedilir.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.accessSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", pkg.ErrForbidden)
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrForbidden)
	}

	return claims, nil
}

func (s *tokenService) VerifyRefreshToken(tokenString string) (*models.RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.RefreshClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.refreshSecret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired refresh token", pkg.ErrForbidden)
	}

	claims, ok := token.Claims.(*models.RefreshClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid refresh token claims", pkg.ErrForbidden)
	}

	// Tip ayracı: ayrı secret kullanılsa bile tip kontrolü yapılır.
	// Secret'ların yanlışlıkla aynı değere set edildiği bir deployment'ta
	// access token'ın refresh yerine geçmesini bu kontrol engeller.
	if claims.TokenType != models.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", pkg.ErrForbidden)
	}

	return claims, nil
}
