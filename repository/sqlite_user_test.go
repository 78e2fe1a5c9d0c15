package repository

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/akinalp/gorev/database"
	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	migrationsFS, err := fs.Sub(database.EmbeddedMigrations, "migrations")
	require.NoError(t, err)

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), migrationsFS)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func createTestUser(t *testing.T, repo UserRepository, email string) *models.User {
	t.Helper()

	user := &models.User{Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), user))
	require.NotEmpty(t, user.ID)
	return user
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	user := createTestUser(t, repo, "a@x.com")

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)
	require.Nil(t, byID.RefreshToken)

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	// Email lookup case-insensitive
	byUpper, err := repo.GetByEmail(ctx, "A@X.COM")
	require.NoError(t, err)
	require.Equal(t, user.ID, byUpper.ID)

	_, err = repo.GetByID(ctx, "no-such-id")
	require.True(t, errors.Is(err, pkg.ErrNotFound))
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)

	createTestUser(t, repo, "a@x.com")

	dup := &models.User{Email: "a@x.com", PasswordHash: "hash"}
	err := repo.Create(context.Background(), dup)
	require.True(t, errors.Is(err, pkg.ErrAlreadyExists))
}

// Rotation'ın atomiklik sınırı: koşullu UPDATE. Aynı eski token ile
// yarışan iki rotate çağrısından yalnızca biri başarılı olmalı.
func TestUserRepo_RotateRefreshToken(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	user := createTestUser(t, repo, "a@x.com")

	r1 := "refresh-token-1"
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, &r1))

	// İlk rotate başarılı — saklanan değer hâlâ r1
	rotated, err := repo.RotateRefreshToken(ctx, user.ID, r1, "refresh-token-2")
	require.NoError(t, err)
	require.True(t, rotated)

	// r1 ile ikinci rotate denemesini DB reddeder — değer artık r2
	rotated, err = repo.RotateRefreshToken(ctx, user.ID, r1, "refresh-token-3")
	require.NoError(t, err)
	require.False(t, rotated)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	require.Equal(t, "refresh-token-2", *stored.RefreshToken)
}

func TestUserRepo_SetRefreshTokenNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewSQLiteUserRepo(db.Conn)
	ctx := context.Background()

	user := createTestUser(t, repo, "a@x.com")

	r1 := "refresh-token-1"
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, &r1))

	// nil → NULL: aktif oturum kapatıldı (logout)
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, nil))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Nil(t, stored.RefreshToken)

	// Temizlenmiş token ile rotate artık imkansız
	rotated, err := repo.RotateRefreshToken(ctx, user.ID, r1, "refresh-token-2")
	require.NoError(t, err)
	require.False(t, rotated)
}
