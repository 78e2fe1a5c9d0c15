package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Todo, bir kullanıcının todo listesindeki tek bir maddeyi temsil eder.
// Her todo bir kullanıcıya aittir — tüm sorgular user_id ile scope'lanır.
type Todo struct {
	ID        string    `json:"_id"`
	UserID    string    `json:"-"` // Sahiplik bilgisi API response'a gerekmez
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// MaxTodoTitleLength, todo başlığı için üst sınır.
const MaxTodoTitleLength = 500

// CreateTodoRequest, yeni todo oluştururken gelen veri.
type CreateTodoRequest struct {
	Title string `json:"title"`
}

// Validate, CreateTodoRequest'in geçerli olup olmadığını kontrol eder.
func (r *CreateTodoRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(r.Title) > MaxTodoTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTodoTitleLength)
	}
	return nil
}
