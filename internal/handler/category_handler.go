package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"menu-admin/internal/catalog"
	"menu-admin/internal/model"
	"menu-admin/internal/service"

	"github.com/rs/zerolog"
)

// CategoryHandler serves the category endpoints. Reads come from the live
// mirror; all mutation goes through the category service.
type CategoryHandler struct {
	service service.CategoryService
	mirror  *catalog.Mirror
	logger  zerolog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(svc service.CategoryService, mirror *catalog.Mirror, logger zerolog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		mirror:  mirror,
		logger:  logger.With().Str("handler", "category").Logger(),
	}
}

type categoryRequest struct {
	Name    string `json:"name"`
	Confirm bool   `json:"confirm"`
}

// deletePrompt is returned when a cascade delete was requested without
// confirmation. It carries the size of the cascade so the caller can render a
// meaningful confirm dialog.
type deletePrompt struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	ProductCount int    `json:"productCount"`
}

// List handles GET /api/categories from the mirror, name-ascending.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.mirror.Categories())
}

// Create handles POST /api/categories.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid JSON body", h.logger)
		return
	}

	id, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Rename handles PUT /api/categories/{id}. The rename cascades to every
// product referencing the old name in one atomic batch.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request, id string) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid JSON body", h.logger)
		return
	}

	if err := h.service.Rename(r.Context(), id, req.Name); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/categories/{id}. The cascade removes every
// product in the category, so it runs only with confirm set; without it the
// response reports how many products would go.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	// An empty body is a delete without confirm, not a malformed request.
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid JSON body", h.logger)
		return
	}

	category, ok := h.mirror.CategoryByID(id)
	if !ok {
		writeDomainError(w, model.ErrCategoryNotFound, h.logger)
		return
	}
	name := req.Name
	if name == "" {
		name = category.Name
	}

	if !req.Confirm {
		count := len(h.mirror.ProductsInCategory(name))
		writeJSON(w, http.StatusConflict, deletePrompt{
			Error:        "CONFIRMATION_REQUIRED",
			Message:      fmt.Sprintf("Deleting %q also deletes all %d of its products; repeat with confirm set", name, count),
			ProductCount: count,
		})
		return
	}

	if err := h.service.Delete(r.Context(), id, name); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
