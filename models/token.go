package models

import "github.com/golang-jwt/jwt/v5"

// TokenTypeRefresh, refresh token claim'lerindeki tip ayracı (discriminator).
// Access token'larda bu alan hiç yoktur — ayrı secret'a ek olarak tip
// kontrolü de yapılır, böylece token türleri birbirinin yerine geçemez.
const TokenTypeRefresh = "refresh"

// AccessClaims, access token'ın payload'ı.
//
// JWT (JSON Web Token): kullanıcı kimliğini doğrulamak için kullanılan,
// imzalanmış bir token. 3 parçadan oluşur: header.payload.signature.
// Server her request'te imzayı ve expiry'yi doğrular — DB'ye gitmeden
// kullanıcının kim olduğunu bilir (stateless doğrulama).
//
// Claim'ler bilinçli olarak minimal tutulur (id + email): bearer credential
// ara katmanlarca loglanabilir/cache'lenebilir, içine türetilmiş veya hassas
// veri koymak sızıntı riskidir.
//
// Bu struct models paketinde tanımlanır çünkü birden fazla katman
// (services, middleware, client) tarafından kullanılır — circular
// dependency'yi önler.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// RefreshClaims, refresh token'ın payload'ı.
// Sadece kullanıcı id + tip ayracı taşır; email bile yoktur.
type RefreshClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}
