package handlers

import (
	"log/slog"
	"net/http"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/files"
)

type HomeHandler struct {
	*Base
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	products, err := h.API.ListProducts(r.Context(), "")
	if err != nil {
		slog.Error("Failed to fetch products", "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching designs."))
	}
	h.render(w, r, "home.html", map[string]interface{}{
		"Products": products,
	})
}

func (h *HomeHandler) Category(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	products, err := h.API.ListProducts(r.Context(), name)
	if err != nil {
		slog.Error("Failed to fetch category", "category", name, "error", err)
		h.flash(w, r, "error", api.UserMessage(err, "Error fetching designs."))
	}
	h.render(w, r, "category.html", map[string]interface{}{
		"Category": name,
		"Products": products,
	})
}

func (h *HomeHandler) Product(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	product, err := h.API.GetProduct(r.Context(), id)
	if err != nil {
		if api.IsStatus(err, http.StatusNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to fetch product", "id", id, "error", err)
		h.redirectWith(w, r, "/", "error", api.UserMessage(err, "Error fetching design."))
		return
	}

	counts := make(map[string]int)
	for _, format := range product.Formats() {
		counts[format] = len(files.FromDescriptor(product.Files[format]))
	}
	h.render(w, r, "product.html", map[string]interface{}{
		"Product":    product,
		"Formats":    product.Formats(),
		"FileCounts": counts,
	})
}
