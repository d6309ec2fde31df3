package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/alextreichler/embroiderystore/internal/models"
	"github.com/alextreichler/embroiderystore/internal/store"
)

// ContentHandler serves the FAQ, terms and privacy pages and their editors.
type ContentHandler struct {
	*Base
	Store *store.Store
}

func (h *ContentHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListFAQ()
	if err != nil {
		slog.Error("Failed to list FAQ", "error", err)
		http.Error(w, "Error fetching FAQ", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "faq.html", map[string]interface{}{
		"Entries": entries,
	})
}

// Page renders a stored page; the route decides the slug.
func (h *ContentHandler) Page(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := h.Store.GetPage(slug)
		if err != nil {
			slog.Error("Failed to fetch page", "slug", slug, "error", err)
			http.Error(w, "Error fetching page", http.StatusInternalServerError)
			return
		}
		if page == nil {
			http.NotFound(w, r)
			return
		}
		h.render(w, r, "page.html", map[string]interface{}{
			"Page": page,
		})
	}
}

func (h *ContentHandler) AdminIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Store.ListFAQ()
	if err != nil {
		slog.Error("Failed to list FAQ", "error", err)
		http.Error(w, "Error fetching FAQ", http.StatusInternalServerError)
		return
	}
	var pages []*models.ContentPage
	for _, slug := range store.ContentSlugs {
		p, err := h.Store.GetPage(slug)
		if err != nil {
			slog.Error("Failed to fetch page", "slug", slug, "error", err)
			continue
		}
		if p == nil {
			p = &models.ContentPage{Slug: slug, Title: strings.ToUpper(slug[:1]) + slug[1:]}
		}
		pages = append(pages, p)
	}
	h.render(w, r, "admin_content.html", map[string]interface{}{
		"Pages":   pages,
		"Entries": entries,
	})
}

func (h *ContentHandler) SavePage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if !isContentSlug(slug) {
		http.NotFound(w, r)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		h.redirectWith(w, r, "/admin/content", "error", "Title is required.")
		return
	}
	page := &models.ContentPage{Slug: slug, Title: title, Body: r.FormValue("body")}
	if err := h.Store.SavePage(page); err != nil {
		slog.Error("Failed to save page", "slug", slug, "error", err)
		h.redirectWith(w, r, "/admin/content", "error", "Error saving page.")
		return
	}
	slog.Info("Content page saved", "slug", slug)
	h.redirectWith(w, r, "/admin/content", "success", title+" saved.")
}

func (h *ContentHandler) CreateFAQ(w http.ResponseWriter, r *http.Request) {
	entry := &models.FAQEntry{
		Question: strings.TrimSpace(r.FormValue("question")),
		Answer:   strings.TrimSpace(r.FormValue("answer")),
	}
	if entry.Question == "" || entry.Answer == "" {
		h.redirectWith(w, r, "/admin/content", "error", "Question and answer are required.")
		return
	}
	if err := h.Store.CreateFAQ(entry); err != nil {
		slog.Error("Failed to create FAQ entry", "error", err)
		h.redirectWith(w, r, "/admin/content", "error", "Error saving FAQ entry.")
		return
	}
	h.redirectWith(w, r, "/admin/content", "success", "FAQ entry added.")
}

func (h *ContentHandler) UpdateFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	entry, err := h.Store.GetFAQ(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	entry.Question = strings.TrimSpace(r.FormValue("question"))
	entry.Answer = strings.TrimSpace(r.FormValue("answer"))
	if pos, err := strconv.Atoi(r.FormValue("position")); err == nil {
		entry.Position = pos
	}
	if entry.Question == "" || entry.Answer == "" {
		h.redirectWith(w, r, "/admin/content", "error", "Question and answer are required.")
		return
	}
	if err := h.Store.UpdateFAQ(entry); err != nil {
		slog.Error("Failed to update FAQ entry", "id", id, "error", err)
		h.redirectWith(w, r, "/admin/content", "error", "Error saving FAQ entry.")
		return
	}
	h.redirectWith(w, r, "/admin/content", "success", "FAQ entry updated.")
}

func (h *ContentHandler) DeleteFAQ(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}
	if err := h.Store.DeleteFAQ(id); err != nil {
		slog.Error("Failed to delete FAQ entry", "id", id, "error", err)
		h.redirectWith(w, r, "/admin/content", "error", "Error deleting FAQ entry.")
		return
	}
	h.redirectWith(w, r, "/admin/content", "success", "FAQ entry deleted.")
}

func isContentSlug(slug string) bool {
	for _, s := range store.ContentSlugs {
		if s == slug {
			return true
		}
	}
	return false
}
