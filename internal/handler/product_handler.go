package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"menu-admin/internal/catalog"
	"menu-admin/internal/model"
	"menu-admin/internal/service"

	"github.com/rs/zerolog"
)

// maxUploadBytes bounds the multipart form size, image included.
const maxUploadBytes = 10 << 20

// ProductHandler serves the product endpoints. Saves arrive as multipart
// forms so the image file travels with the field values.
type ProductHandler struct {
	service service.ProductService
	mirror  *catalog.Mirror
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(svc service.ProductService, mirror *catalog.Mirror, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		mirror:  mirror,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products, optionally projected onto one category via
// the category query parameter.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		products := h.mirror.ProductsInCategory(category)
		if products == nil {
			products = []model.Product{}
		}
		writeJSON(w, http.StatusOK, products)
		return
	}
	writeJSON(w, http.StatusOK, h.mirror.Products())
}

// Create handles POST /api/products: a multipart form with name, price,
// description, categoryName and an optional image.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, file, err := h.parseSaveForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid multipart form", h.logger)
		return
	}
	if file != nil {
		defer file.Close()
	}

	categoryName := r.FormValue("categoryName")
	if err := h.service.Save(r.Context(), req, nil, categoryName); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Update handles PUT /api/products/{id}. The product's category never changes
// through this path; any category field in the form is ignored.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	existing, ok := h.mirror.ProductByID(id)
	if !ok {
		writeDomainError(w, model.ErrProductNotFound, h.logger)
		return
	}

	req, file, err := h.parseSaveForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidation, "invalid multipart form", h.logger)
		return
	}
	if file != nil {
		defer file.Close()
	}

	if err := h.service.Save(r.Context(), req, &existing, ""); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseSaveForm extracts the save fields and the optional image file. The
// returned file is nil when no image was attached.
func (h *ProductHandler) parseSaveForm(r *http.Request) (service.SaveRequest, multipart.File, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return service.SaveRequest{}, nil, err
	}

	req := service.SaveRequest{
		Name:        r.FormValue("name"),
		Price:       r.FormValue("price"),
		Description: r.FormValue("description"),
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, nil
		}
		return service.SaveRequest{}, nil, err
	}

	req.File = &service.FileUpload{Filename: header.Filename, Content: file}
	return req, file, nil
}
