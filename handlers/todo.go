package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/akinalp/gorev/models"
	"github.com/akinalp/gorev/pkg"
	"github.com/akinalp/gorev/services"
)

// TodoHandler, todo endpoint'lerini yöneten struct.
// Tüm endpoint'ler auth middleware arkasındadır — kimlik context'ten gelir.
type TodoHandler struct {
	todoService services.TodoService
}

// NewTodoHandler, constructor.
func NewTodoHandler(todoService services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// identityFrom, context'ten kimliği okur.
// Middleware arkasında her zaman dolu olmalı — değilse 401.
func identityFrom(r *http.Request) (*models.Identity, bool) {
	identity, ok := r.Context().Value(UserContextKey).(*models.Identity)
	return identity, ok
}

// List godoc
// GET /api/todos
// Kullanıcının kendi todo'larını döner: { "todos": [...] }
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	todos, err := h.todoService.List(r.Context(), identity.UserID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"todos": todos})
}

// Create godoc
// POST /api/todos
// Body: { "title": "..." }
// Başarıda: { "todo": {...} }
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.todoService.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"todo": todo})
}

// Toggle godoc
// PATCH /api/todos/{id}
// Completed flag'ini tersine çevirir. Sahiplik kontrolü repository'de
// (WHERE user_id = ?) — başkasının todo'su 404 gibi davranır.
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id := r.PathValue("id")

	if err := h.todoService.Toggle(r.Context(), identity.UserID, id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// Delete godoc
// DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFrom(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	id := r.PathValue("id")

	if err := h.todoService.Delete(r.Context(), identity.UserID, id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]any{"success": true})
}
