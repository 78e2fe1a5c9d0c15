// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Middleware Pattern nedir?
// Her HTTP request, handler'a ulaşmadan önce bir veya daha fazla middleware'dan geçer.
//
// Go'da middleware bir fonksiyondur:
//   func(next http.Handler) http.Handler
//
// "next" parametresi zincirdeki bir sonraki handler'dır.
// Middleware kendi işini yapar (ör: token doğrula), sonra next'i çağırır.
// Eğer hata varsa next'i çağırmaz, request burada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/akinalp/gorev/handlers"
	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/akinalp/gorev/services"
)

// AuthMiddleware, JWT access token doğrulama middleware'ı.
//
// Önemli: bu middleware DB'ye HİÇ dokunmaz. Access token stateless'tır,
// imza + expiry kontrolü yeterlidir. Refresh token rotate edilmiş ya da
// kullanıcı başka yerde logout olmuş olsa bile, henüz süresi dolmamış bir
// access token geçerli kalır. Bu kabul edilen bir staleness penceresidir
// ve access token ömrü (15 dk) ile sınırlıdır.
type AuthMiddleware struct {
	tokens services.TokenService
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokens services.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Require, JWT access token zorunlu kılan middleware.
//
// HTTP header formatı: Authorization: Bearer <token>
//
// Hata ayrımı:
// - Header yok veya "Bearer " formatında değil → 401 Unauthorized
// - Header var ama imza geçersiz / token süresi dolmuş → 403 Forbidden
//
// Bu ayrım client tarafı için önemli: her iki durumda da client'ın
// session manager'ı silent refresh denemesi yapar.
//
// Token geçerliyse context'e sadece { userId, email } eklenir.
// Password hash veya refresh token ASLA context'te taşınmaz.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Header'dan token'ı al
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		// 2. "Bearer " prefix'ini kaldır
		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		// 3. Token'ı doğrula — imza + expiry, storage'a bakılmaz.
		// VerifyAccessToken hataları pkg.ErrForbidden sarar → 403 döner.
		claims, err := m.tokens.VerifyAccessToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		// 4. Context'e kimliği ekle.
		// Downstream handler'lar r.Context().Value(handlers.UserContextKey) ile erişir.
		identity := &models.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
		}
		ctx := context.WithValue(r.Context(), handlers.UserContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
