package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/session"
)

const flashSession = "flash-session"

// Base carries what every page handler needs.
type Base struct {
	API          *api.Client
	Sessions     *session.Manager
	SessionStore sessions.Store
	Templates    *TemplateCache
}

// client returns the backend client acting for the request's user.
func (b *Base) client(r *http.Request) *api.Client {
	if s := session.FromContext(r.Context()); s.IsAuthenticated() {
		return b.API.As(s.Token)
	}
	return b.API
}

func (b *Base) flash(w http.ResponseWriter, r *http.Request, typ, msg string) {
	sess, _ := b.SessionStore.Get(r, flashSession)
	sess.AddFlash(FlashMessage{Type: typ, Message: msg})
	if err := sess.Save(r, w); err != nil {
		slog.Error("Failed to save flash", "error", err)
	}
}

// redirectWith adds a flash message and redirects with 303.
func (b *Base) redirectWith(w http.ResponseWriter, r *http.Request, url, typ, msg string) {
	b.flash(w, r, typ, msg)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// categories feeds the header menu. Failures only hide the menu.
func (b *Base) categories(ctx context.Context) []string {
	cats, err := b.API.ValidCategories(ctx)
	if err != nil {
		slog.Warn("Failed to load categories for header", "error", err)
		return nil
	}
	return cats
}

// render executes a cached page with the common header data.
func (b *Base) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	tmpl := b.Templates.Get(name)
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]interface{}{}
	}
	sess, _ := b.SessionStore.Get(r, flashSession)
	data["Flashes"] = GetFlash(sess)
	sess.Save(r, w) // Save session to clear flashes
	data["CsrfField"] = csrf.TemplateField(r)
	data["Session"] = session.FromContext(r.Context())
	if _, ok := data["Categories"]; !ok {
		data["Categories"] = b.categories(r.Context())
	}
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render template", "template", name, "error", err)
	}
}
