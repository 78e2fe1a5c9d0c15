package repository

import (
	"context"
	"fmt"

	"github.com/akinalp/gorev/database"
	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/google/uuid"
)

// sqliteTodoRepo, TodoRepository interface'inin SQLite implementasyonu.
type sqliteTodoRepo struct {
	db database.TxQuerier
}

// NewSQLiteTodoRepo, constructor.
func NewSQLiteTodoRepo(db database.TxQuerier) TodoRepository {
	return &sqliteTodoRepo{db: db}
}

func (r *sqliteTodoRepo) Create(ctx context.Context, todo *models.Todo) error {
	todo.ID = uuid.NewString()

	query := `
		INSERT INTO todos (id, user_id, title, completed)
		VALUES (?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Completed,
	).Scan(&todo.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

func (r *sqliteTodoRepo) ListByUserID(ctx context.Context, userID string) ([]models.Todo, error) {
	query := `
		SELECT id, user_id, title, completed, created_at
		FROM todos WHERE user_id = ?
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close() // rows'u kapatmayı ASLA unutma — aksi halde bağlantı sızar (leak)

	// Boş liste için nil yerine boş slice — JSON'da [] döner, null değil.
	todos := []models.Todo{}
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan todo row: %w", err)
		}
		todos = append(todos, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todo rows: %w", err)
	}

	return todos, nil
}

func (r *sqliteTodoRepo) ToggleCompleted(ctx context.Context, userID, id string) error {
	// user_id koşulu sahiplik kontrolüdür — başka kullanıcının todo'su
	// "yokmuş gibi" davranır (404), varlığı bile sızdırılmaz.
	res, err := r.db.ExecContext(ctx,
		`UPDATE todos SET completed = NOT completed WHERE id = ? AND user_id = ?`,
		id, userID)
	if err != nil {
		return fmt.Errorf("failed to toggle todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read toggle result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteTodoRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}
