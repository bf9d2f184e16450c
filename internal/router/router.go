package router

import (
	"net/http"
	"strings"

	"menu-admin/internal/handler"
	"menu-admin/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	categoryHandler *handler.CategoryHandler,
	productHandler *handler.ProductHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	categoryRoutes := func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r.URL.Path, "/api/categories")

		switch {
		case id == "" && r.Method == http.MethodGet:
			categoryHandler.List(w, r)
		case id == "" && r.Method == http.MethodPost:
			categoryHandler.Create(w, r)
		case id != "" && r.Method == http.MethodPut:
			categoryHandler.Rename(w, r, id)
		case id != "" && r.Method == http.MethodDelete:
			categoryHandler.Delete(w, r, id)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/categories", categoryRoutes)
	mux.HandleFunc("/api/categories/", categoryRoutes)

	productRoutes := func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r.URL.Path, "/api/products")

		switch {
		case id == "" && r.Method == http.MethodGet:
			productHandler.List(w, r)
		case id == "" && r.Method == http.MethodPost:
			productHandler.Create(w, r)
		case id != "" && r.Method == http.MethodPut:
			productHandler.Update(w, r, id)
		case id != "" && r.Method == http.MethodDelete:
			productHandler.Delete(w, r, id)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/products", productRoutes)
	mux.HandleFunc("/api/products/", productRoutes)

	// Apply middleware in order: Recovery -> Logging -> CORS -> APIKeyAuth
	var h http.Handler = mux
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}

// pathID extracts the trailing document ID from paths like prefix/{id};
// collection-level paths yield "".
func pathID(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	return strings.Trim(rest, "/")
}
