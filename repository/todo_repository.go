package repository

import (
	"context"

	"github.com/akinalp/gorev/models"
)

// TodoRepository, todo veritabanı işlemleri için interface.
//
// Tüm operasyonlar userID ile scope'ludur — bir kullanıcı başka bir
// kullanıcının todo'sunu SQL seviyesinde bile göremez/değiştiremez.
// Sahiplik kontrolü ayrı bir SELECT yerine WHERE koşuluna gömülüdür.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) error
	ListByUserID(ctx context.Context, userID string) ([]models.Todo, error)
	// ToggleCompleted, todo'nun completed durumunu tersine çevirir.
	// Todo yoksa veya başka kullanıcıya aitse pkg.ErrNotFound döner.
	ToggleCompleted(ctx context.Context, userID, id string) error
	// Delete, todo'yu siler. Yoksa/sahibi değilse pkg.ErrNotFound döner.
	Delete(ctx context.Context, userID, id string) error
}
