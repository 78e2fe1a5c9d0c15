package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/akinalp/gorev/database"
	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/akinalp/gorev/pkg/email"
	"github.com/akinalp/gorev/repository"
	"golang.org/x/crypto/bcrypt"
)

// ResetTokenValidity, şifre sıfırlama token'ının geçerlilik süresi.
const ResetTokenValidity = 20 * time.Minute

// ForgotPasswordCooldown, aynı email'e iki reset isteği arasındaki minimum süre.
const ForgotPasswordCooldown = 90 * time.Second

// AuthService interface'i — dışarıya açık API.
// Handler bu interface'e bağımlıdır, concrete struct'a değil.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.PublicUser, error)
	Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout, best-effort çalışır: kimlik access veya refresh token'dan
	// çözülebilirse oturum DB'de kapatılır; çözülemese bile hata dönmez.
	Logout(ctx context.Context, accessToken, refreshToken string) error
	// ForgotPassword, reset email'i gönderir. Cooldown aktifse kalan
	// saniyeyi döner (0 = email gönderildi veya sessizce yutuldu).
	ForgotPassword(ctx context.Context, emailAddr string) (int, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthTokens, başarılı login'in yanıtı.
// JSON alan adları frontend kontratına birebir uyar (camelCase).
type AuthTokens struct {
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// TokenPair, başarılı refresh'in yanıtı.
// Rotation politikası gereği yeni refresh token da döner —
// eskisi o anda değersizleştiği için client'ın yenisini saklaması şarttır.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// authService, AuthService interface'inin implementasyonu.
//
// db: sadece ResetPassword'un çok adımlı yazması için (WithTx).
// Diğer tüm operasyonlar tek satırlık UPDATE'lerle çalışır — SQLite'ta
// tek statement zaten atomik olduğu için ayrıca lock/transaction gerekmez.
type authService struct {
	db        *sql.DB
	userRepo  repository.UserRepository
	resetRepo repository.PasswordResetRepository
	tokens    TokenService
	email     email.EmailSender // nil olabilir — email özelliği devre dışı
}

// NewAuthService, constructor.
func NewAuthService(
	db *sql.DB,
	userRepo repository.UserRepository,
	resetRepo repository.PasswordResetRepository,
	tokens TokenService,
	emailSender email.EmailSender,
) AuthService {
	return &authService{
		db:        db,
		userRepo:  userRepo,
		resetRepo: resetRepo,
		tokens:    tokens,
		email:     emailSender,
	}
}

// Register, yeni kullanıcı kaydı oluşturur.
//
// Token ÜRETMEZ — kayıt ile giriş ayrı adımlardır, kullanıcı kayıttan
// sonra login olur. Dönen değer sadece public görünümdür (id + email);
// hash veya token asla response'a çıkmaz.
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.PublicUser, error) {
	// 1. Validation (email'i normalize de eder)
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	// 2. Bcrypt hash (cost=12)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. User oluştur — refresh token NULL: henüz aktif oturum yok
	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrAlreadyExists olabilir
	}

	view := models.ToPublicView(user)
	return &view, nil
}

// Login, kullanıcı girişi yapar.
//
// "Kullanıcı yok" ile "şifre yanlış" AYNI hatayı döner — farklı mesajlar
// hangi email'lerin kayıtlı olduğunu sızdırır (user enumeration).
//
// Başarılı login yeni bir refresh token yazar; kullanıcının başka bir
// cihazdaki oturumu o anda sessizce geçersizleşir (tek oturum politikası).
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*AuthTokens, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", pkg.ErrUnauthorized)
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	// Koşulsuz yaz — login her zaman kazanır, eski oturum düşer.
	if err := s.userRepo.SetRefreshToken(ctx, user.ID, &refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthTokens{
		User:         models.ToPublicView(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh, geçerli bir refresh token karşılığında yeni token çifti üretir.
//
// Geçerlilik ÜÇ katmanlıdır:
// 1. İmza + expiry + tip ayracı (TokenService)
// 2. Token'ın isimlendirdiği kullanıcı mevcut olmalı — kullanıcı kimliği
//    HER ZAMAN token claim'lerinden çözülür, client'ın gönderebileceği
//    herhangi bir id'den asla (başkasının oturumunu yenileme engeli)
// 3. Sunulan token DB'deki güncel değere birebir eşit olmalı —
//    rotate edilmiş, logout olmuş veya farklı oturumdan kalan token'lar
//    imzaları geçerli olsa bile burada elenir
//
// Rotation: her başarılı refresh yeni bir refresh token yazar (3. katmandaki
// karşılaştırma + yazma tek bir koşullu UPDATE'tir). Aynı eski token'la
// yarışan iki istekten yalnızca biri başarılı olur; kaybeden 403 alır.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrForbidden)
		}
		return nil, err
	}

	newAccessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	rotated, err := s.userRepo.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken)
	if err != nil {
		return nil, err
	}
	if !rotated {
		// DB'deki değer artık bu token değil: ya rotate edildi, ya logout
		// ile temizlendi. Eski token kalıcı olarak değersiz.
		return nil, fmt.Errorf("%w: invalid refresh token", pkg.ErrForbidden)
	}

	return &TokenPair{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// Logout, kullanıcının aktif oturumunu kapatır (stored refresh token'ı temizler).
//
// Best-effort: client'ın niyeti "oturumumu bitir"dir ve token'lar zaten
// client tarafında siliniyor — kimlik çözülemese veya DB yazımı başarısız
// olsa bile hata dönmek client'a hiçbir şey kazandırmaz. Storage hataları
// loglanır ama yutulur.
func (s *authService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	userID := ""

	if accessToken != "" {
		if claims, err := s.tokens.VerifyAccessToken(accessToken); err == nil {
			userID = claims.UserID
		}
	}
	if userID == "" && refreshToken != "" {
		if claims, err := s.tokens.VerifyRefreshToken(refreshToken); err == nil {
			userID = claims.UserID
		}
	}

	if userID == "" {
		return nil
	}

	if err := s.userRepo.SetRefreshToken(ctx, userID, nil); err != nil {
		log.Printf("[auth] logout: failed to clear refresh token for user %s: %v", userID, err)
	}

	return nil
}

// ForgotPassword, şifre sıfırlama email'i gönderir.
//
// Güvenlik: email DB'de yoksa bile (0, nil) döner — handler aynı success
// yanıtını yazar, kayıtlı email'ler sızdırılmaz (enumeration koruması).
// Cooldown: aynı kullanıcıya ForgotPasswordCooldown içinde ikinci istek
// gelirse kalan saniye döner, yeni email atılmaz.
func (s *authService) ForgotPassword(ctx context.Context, emailAddr string) (int, error) {
	// Fırsat temizliği — süresi dolmuş token'lar için ayrı cron gerekmez
	if err := s.resetRepo.DeleteExpired(ctx); err != nil {
		log.Printf("[auth] failed to clean up expired reset tokens: %v", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	// Cooldown kontrolü
	if latest, err := s.resetRepo.GetLatestByUserID(ctx, user.ID); err == nil {
		elapsed := time.Since(latest.CreatedAt)
		if elapsed < ForgotPasswordCooldown {
			return int((ForgotPasswordCooldown - elapsed).Seconds()) + 1, nil
		}
	}

	if s.email == nil {
		log.Printf("[auth] password reset requested but email sending is disabled")
		return 0, nil
	}

	// Plaintext token üret — DB'ye SADECE hash'i yazılır
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return 0, fmt.Errorf("failed to generate reset token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)
	hashBytes := sha256.Sum256([]byte(plaintext))

	if err := s.resetRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return 0, fmt.Errorf("failed to clear previous reset tokens: %w", err)
	}

	token := &models.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(hashBytes[:]),
		ExpiresAt: time.Now().Add(ResetTokenValidity),
	}
	if err := s.resetRepo.Create(ctx, token); err != nil {
		return 0, fmt.Errorf("failed to create reset token: %w", err)
	}

	if err := s.email.SendPasswordReset(ctx, user.Email, plaintext); err != nil {
		return 0, fmt.Errorf("failed to send reset email: %w", err)
	}

	return 0, nil
}

// ResetPassword, email'deki token ile şifreyi sıfırlar.
//
// Üç yazma tek transaction'da: hash güncelle + token'ları sil + aktif
// oturumu kapat. Oturumu kapatmak bilinçli bir tercih — şifresi ele
// geçirilmiş bir hesapta saldırganın elindeki refresh token da ölmeli.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	hashBytes := sha256.Sum256([]byte(token))
	record, err := s.resetRepo.GetByTokenHash(ctx, hex.EncodeToString(hashBytes[:]))
	if err != nil {
		if errors.Is(err, pkg.ErrNotFound) {
			return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
		}
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		return fmt.Errorf("%w: invalid or expired reset token", pkg.ErrBadRequest)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		userRepo := repository.NewSQLiteUserRepo(tx)
		resetRepo := repository.NewSQLiteResetTokenRepo(tx)

		if err := userRepo.UpdatePassword(ctx, record.UserID, string(newHash)); err != nil {
			return err
		}
		if err := resetRepo.DeleteByUserID(ctx, record.UserID); err != nil {
			return err
		}
		return userRepo.SetRefreshToken(ctx, record.UserID, nil)
	})
}
