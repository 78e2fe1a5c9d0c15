// Package main, gorev backend uygulamasının giriş noktasıdır.
//
// Bu dosyanın görevi — Dependency Injection "wire-up":
//   1.  Config'i yükle
//   2.  Database'i başlat (embedded migration'larla)
//   3.  Repository'leri oluştur (DB bağlantısı ile)
//   4.  Service'leri oluştur (repository'ler ile)
//   5.  Handler'ları oluştur (service'ler ile)
//   6.  Middleware'ları oluştur
//   7.  HTTP router'ı kur, route'ları bağla
//   8.  CORS yapılandır
//   9.  HTTP Server'ı başlat
//  10.  Graceful shutdown
//
// Global değişken YOK — her şey bu fonksiyonda oluşturulup birbirine bağlanıyor.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/akinalp/gorev/config"
	"github.com/akinalp/gorev/database"
	"github.com/akinalp/gorev/handlers"
	"github.com/akinalp/gorev/middleware"
	"github.com/akinalp/gorev/pkg/email"
	"github.com/akinalp/gorev/pkg/ratelimit"
	"github.com/akinalp/gorev/repository"
	"github.com/akinalp/gorev/services"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] gorev server starting...")

	// ─── 1. Config ───
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	log.Printf("[main] config loaded (port=%d)", cfg.Server.Port)

	// ─── 2. Database ───
	// Migration'lar binary'ye gömülü (go:embed) — deploy'da ayrı dosya taşınmaz.
	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	if err != nil {
		log.Fatalf("[main] failed to load embedded migrations: %v", err)
	}

	db, err := database.New(cfg.Database.Path, migrationsFS)
	if err != nil {
		log.Fatalf("[main] failed to initialize database: %v", err)
	}
	defer db.Close()

	// ─── 3. Repository Layer ───
	userRepo := repository.NewSQLiteUserRepo(db.Conn)
	todoRepo := repository.NewSQLiteTodoRepo(db.Conn)
	resetRepo := repository.NewSQLiteResetTokenRepo(db.Conn)

	// ─── 4. Service Layer ───
	tokenService := services.NewTokenService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Email gönderimi opsiyonel — API key yoksa şifre sıfırlama emaili
	// gönderilmez ama uygulamanın geri kalanı normal çalışır.
	var emailSender email.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
		log.Println("[main] email sending enabled (resend)")
	} else {
		log.Println("[main] RESEND_API_KEY not set, email sending disabled")
	}

	authService := services.NewAuthService(db.Conn, userRepo, resetRepo, tokenService, emailSender)
	todoService := services.NewTodoService(todoRepo)

	// Login brute-force koruması: IP başına 2 dakikada en fazla 5 deneme
	loginLimiter := ratelimit.NewLoginRateLimiter(5, 2*time.Minute)
	defer loginLimiter.Stop()

	// ─── 5. Handler Layer ───
	authHandler := handlers.NewAuthHandler(authService, loginLimiter)
	todoHandler := handlers.NewTodoHandler(todoService)

	// ─── 6. Middleware ───
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// ─── 7. HTTP Router ───
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","service":"gorev"}`)
	})

	// Auth — public endpoint'ler (token gerekmez)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("POST /api/auth/forgot-password", authHandler.ForgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", authHandler.ResetPassword)

	// Protected endpoint'ler — authMiddleware.Require() sarar
	mux.Handle("GET /api/auth/me", authMiddleware.Require(http.HandlerFunc(authHandler.Me)))

	// Todos — hepsi authenticated, kullanıcı sadece kendi todo'larını görür
	mux.Handle("GET /api/todos", authMiddleware.Require(http.HandlerFunc(todoHandler.List)))
	mux.Handle("POST /api/todos", authMiddleware.Require(http.HandlerFunc(todoHandler.Create)))
	mux.Handle("PATCH /api/todos/{id}", authMiddleware.Require(http.HandlerFunc(todoHandler.Toggle)))
	mux.Handle("DELETE /api/todos/{id}", authMiddleware.Require(http.HandlerFunc(todoHandler.Delete)))

	// ─── 8. CORS ───
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		Debug:            false,
	})

	handler := corsHandler.Handler(mux)

	// ─── 9. HTTP Server ───
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ─── 10. Graceful Shutdown ───
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[main] server listening on %s", cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	<-done
	log.Println("[main] shutting down...")

	// Yeni request kabul etmeyi durdur, mevcut request'lerin bitmesini bekle (5sn timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("[main] forced shutdown: %v", err)
	}

	log.Println("[main] server stopped gracefully")
}
