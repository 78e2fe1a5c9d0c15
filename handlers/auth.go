// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler "ince" (thin) kalmalı: body'yi parse et, service'i çağır,
// sonucu JSON olarak yaz. İş mantığı ve DB erişimi service/repository
// katmanlarındadır — handler sadece köprü.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/akinalp/gorev/pkg/ratelimit"
	"github.com/akinalp/gorev/services"
)

// AuthHandler, auth endpoint'lerini yöneten struct.
// Service interface'i ve rate limiter constructor'dan alınır (DI).
type AuthHandler struct {
	authService  services.AuthService
	loginLimiter *ratelimit.LoginRateLimiter
}

// NewAuthHandler, constructor.
// loginLimiter: Login brute-force koruması. nil ise rate limiting devre dışı kalır.
func NewAuthHandler(authService services.AuthService, loginLimiter *ratelimit.LoginRateLimiter) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		loginLimiter: loginLimiter,
	}
}

// Register godoc
// POST /api/auth/register
// Body: { "email": "...", "password": "..." }
//
// Başarıda sadece public user view döner: { "_id": "...", "email": "..." }.
// Token DÖNMEZ — kayıt olan kullanıcı ayrıca login olmalı.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest

	// json.NewDecoder: Request body'yi Go struct'ına parse eder.
	// r.Body bir io.Reader'dır — stream olarak okunur, hepsini belleğe almaz.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// Login godoc
// POST /api/auth/login
// Body: { "email": "...", "password": "..." }
//
// Başarıda: { "user": {"_id","email"}, "accessToken": "...", "refreshToken": "..." }
//
// Rate limiting: IP bazlı brute-force koruması.
// - Her IP adresi için belirli bir zaman penceresi içinde izin verilen
//   maksimum login denemesi sayısı sınırlandırılır.
// - Limit aşıldığında 429 Too Many Requests döner.
// - Başarılı login sayacı sıfırlar — meşru kullanıcı bloke olmaz.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// Rate limit kontrolü — brute-force koruması
	ip := ratelimit.ExtractIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		retryAfter := h.loginLimiter.RetryAfterSeconds(ip)
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		pkg.ErrorWithMessage(w, http.StatusTooManyRequests,
			fmt.Sprintf("too many login attempts, please try again in %s",
				ratelimit.FormatRetryMessage(retryAfter)))
		return
	}

	var req models.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Başarılı login — sayacı sıfırla.
	// Meşru kullanıcı doğru şifreyi girdiğinde sayaç temizlenir,
	// böylece sonraki oturumlarında rate limit'e takılmaz.
	if h.loginLimiter != nil {
		h.loginLimiter.Reset(ip)
	}

	pkg.JSON(w, http.StatusOK, tokens)
}

// Refresh godoc
// POST /api/auth/refresh
// Body: { "refreshToken": "..." }
//
// Başarıda: { "success": true, "data": { "accessToken": "...", "refreshToken": "..." } }
//
// Hata ayrımı:
// - Token hiç gönderilmemiş → 401 (client login akışına yönlenir)
// - Token var ama geçersiz/expired/rotate edilmiş → 403
//
// Rotation: her başarılı refresh'te YENİ bir refresh token üretilir ve
// saklanan değerin üzerine yazılır. Eski refresh token o andan itibaren
// geçersizdir, response'taki yeni token kullanılmalı.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "refresh token is required")
		return
	}

	pair, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    pair,
	})
}

// Logout godoc
// POST /api/auth/logout
// Body: { "refreshToken": "..." } (opsiyonel), bearer token da opsiyonel.
//
// Best-effort: eşleşen kullanıcı bulunsun bulunmasın HER ZAMAN
// 200 { "success": true } döner. Client'ın niyeti (oturumu kapat)
// her durumda karşılanmış olur.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}

	// Body opsiyonel — parse hatası logout'u engellemez
	_ = json.NewDecoder(r.Body).Decode(&req)

	// Bearer token da opsiyonel — varsa kimlik oradan çözülür
	accessToken := ""
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		accessToken = strings.TrimPrefix(authHeader, "Bearer ")
	}

	// Logout hiçbir zaman hata dönmez (best-effort sözleşmesi)
	_ = h.authService.Logout(r.Context(), accessToken, req.RefreshToken)

	pkg.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Me godoc
// GET /api/auth/me
// Auth middleware gerektirir — context'te kimlik bilgisi olur.
//
// Başarıda: { "_id": "...", "email": "..." }
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// Context'ten kimliği al (auth middleware tarafından eklenir)
	identity, ok := r.Context().Value(UserContextKey).(*models.Identity)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	pkg.JSON(w, http.StatusOK, models.PublicUser{
		ID:    identity.UserID,
		Email: identity.Email,
	})
}

// ForgotPassword godoc
// POST /api/auth/forgot-password
// Body: { "email": "..." }
//
// Şifre sıfırlama emaili gönderir.
// Güvenlik: Email DB'de yoksa bile aynı success yanıtı döner (enumeration koruması).
// Cooldown: Aynı email'e 90 saniyede 1 istek. Cooldown aktifse kalan süre response'ta döner.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	cooldown, err := h.authService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	// Cooldown aktifse kalan süreyi response'a ekle — frontend geri sayım gösterir
	if cooldown > 0 {
		pkg.JSON(w, http.StatusOK, map[string]any{
			"message":  "cooldown active",
			"cooldown": cooldown,
		})
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "if the email exists, a reset link has been sent",
	})
}

// ResetPassword godoc
// POST /api/auth/reset-password
// Body: { "token": "...", "newPassword": "..." }
//
// Email'deki token ile şifre sıfırlar. Token doğrulanır, şifre güncellenir,
// token silinir ve aktif refresh token temizlenir (tüm oturumlar kapanır).
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{
		"message": "password has been reset successfully",
	})
}

// UserContextKey, context'te kimlik bilgisi taşımak için kullanılan key tipi.
//
// Go'da context.Value() any tip kabul eder — string key kullanmak çakışmaya neden olabilir.
// Özel bir tip tanımlayarak namespace collision'ı önleriz.
type contextKey string

const UserContextKey contextKey = "user"
