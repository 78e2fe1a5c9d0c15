package services

import (
	"context"
	"fmt"

	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/akinalp/gorev/repository"
)

// TodoService, todo iş mantığı interface'i.
// Tüm operasyonlar çağıran kullanıcının kimliği ile scope'ludur —
// userID her zaman auth middleware'ın context'e koyduğu kimlikten gelir.
type TodoService interface {
	List(ctx context.Context, userID string) ([]models.Todo, error)
	Create(ctx context.Context, userID string, req *models.CreateTodoRequest) (*models.Todo, error)
	Toggle(ctx context.Context, userID, todoID string) error
	Delete(ctx context.Context, userID, todoID string) error
}

type todoService struct {
	todoRepo repository.TodoRepository
}

// NewTodoService, constructor.
func NewTodoService(todoRepo repository.TodoRepository) TodoService {
	return &todoService{todoRepo: todoRepo}
}

func (s *todoService) List(ctx context.Context, userID string) ([]models.Todo, error) {
	return s.todoRepo.ListByUserID(ctx, userID)
}

func (s *todoService) Create(ctx context.Context, userID string, req *models.CreateTodoRequest) (*models.Todo, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrBadRequest, err.Error())
	}

	todo := &models.Todo{
		UserID: userID,
		Title:  req.Title,
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, err
	}

	return todo, nil
}

func (s *todoService) Toggle(ctx context.Context, userID, todoID string) error {
	return s.todoRepo.ToggleCompleted(ctx, userID, todoID)
}

func (s *todoService) Delete(ctx context.Context, userID, todoID string) error {
	return s.todoRepo.Delete(ctx, userID, todoID)
}
