package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/gorev/pkg"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService("access-secret", "refresh-secret", 15, 7)

	token, err := s.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
}

func TestIssueAndVerifyRefreshToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService("access-secret", "refresh-secret", 15, 7)

	token, err := s.IssueRefreshToken("user-123")
	require.NoError(t, err)

	claims, err := s.VerifyRefreshToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", claims.UserID)
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	t.Parallel()

	// Negatif expiry — token üretildiği anda süresi dolmuş olur
	s := NewTokenService("access-secret", "refresh-secret", -1, 7)

	token, err := s.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	_, err = s.VerifyAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenService("right-secret", "refresh-secret", 15, 7)
	verifier := NewTokenService("wrong-secret", "refresh-secret", 15, 7)

	token, err := issuer.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	_, err = verifier.VerifyAccessToken(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}

func TestVerifyAccessToken_Malformed(t *testing.T) {
	t.Parallel()

	s := NewTokenService("access-secret", "refresh-secret", 15, 7)

	_, err := s.VerifyAccessToken("not.a.jwt")
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}

// Access token, refresh endpoint'inde geçerli sayılmamalı.
// İki katman birden engeller: ayrı secret (imza tutmaz) ve tip ayracı.
func TestVerifyRefreshToken_RejectsAccessToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService("access-secret", "refresh-secret", 15, 7)

	accessToken, err := s.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	_, err = s.VerifyRefreshToken(accessToken)
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}

// Tersi de geçerli: refresh token protected endpoint'lerde kullanılamaz.
func TestVerifyAccessToken_RejectsRefreshToken(t *testing.T) {
	t.Parallel()

	s := NewTokenService("access-secret", "refresh-secret", 15, 7)

	refreshToken, err := s.IssueRefreshToken("user-123")
	require.NoError(t, err)

	_, err = s.VerifyAccessToken(refreshToken)
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}

// Tip ayracı testi: refresh secret ile imzalanmış ama "refresh" tipi
// taşımayan bir token VerifyRefreshToken'dan geçmemeli. Aynı secret'la
// access token üreten bir servis bunu simüle eder.
func TestVerifyRefreshToken_MissingTypeTag(t *testing.T) {
	t.Parallel()

	sameSecret := NewTokenService("shared-secret", "shared-secret", 15, 7)

	accessToken, err := sameSecret.IssueAccessToken("user-123", "a@x.com")
	require.NoError(t, err)

	// İmza geçerli (aynı secret) ama token_type claim'i yok
	_, err = sameSecret.VerifyRefreshToken(accessToken)
	require.Error(t, err)
	require.True(t, errors.Is(err, pkg.ErrForbidden))
}
