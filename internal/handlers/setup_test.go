package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/cache"
	"github.com/alextreichler/embroiderystore/internal/files"
	"github.com/alextreichler/embroiderystore/internal/retry"
	"github.com/alextreichler/embroiderystore/internal/session"
	"github.com/alextreichler/embroiderystore/internal/store"
)

// testApp is the full route table in front of a fake backend.
type testApp struct {
	t       *testing.T
	handler http.Handler
	backend *http.ServeMux
	api     *httptest.Server
	files   *httptest.Server
	manager *session.Manager
	store   *store.Store
	admin   *AdminHandler

	mu    sync.Mutex
	calls map[string]int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	app := &testApp{t: t, backend: http.NewServeMux(), calls: map[string]int{}}

	app.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.Lock()
		app.calls[r.Method+" "+r.URL.Path]++
		app.mu.Unlock()
		app.backend.ServeHTTP(w, r)
	}))
	t.Cleanup(app.api.Close)
	app.backend.HandleFunc("GET /products/valid-categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []string{"Floral", "Animals"})
	})

	fileMux := http.NewServeMux()
	fileMux.HandleFunc("GET /files/{name}", func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if strings.HasPrefix(name, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("stitches of " + name))
	})
	app.files = httptest.NewServer(fileMux)
	t.Cleanup(app.files.Close)

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	app.store = db

	templates := NewTemplateCache()
	require.NoError(t, templates.Load("../../templates"))

	cookieStore := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	cookieStore.Options.Path = "/"
	app.manager = session.NewManager(cookieStore)

	base := &Base{
		API:          api.NewClient(app.api.URL, 5*time.Second, cache.NewMemory(), time.Minute),
		Sessions:     app.manager,
		SessionStore: cookieStore,
		Templates:    templates,
	}
	fetcher := files.NewHTTPFetcher(5 * time.Second)
	app.admin = &AdminHandler{
		Base:          base,
		Store:         db,
		UploadTimeout: 10 * time.Second,
		Retry: retry.Policy{
			Attempts: 3,
			Sleep:    func(_ context.Context, _ time.Duration) error { return nil },
		},
	}
	srv := &Server{
		Home:     &HomeHandler{Base: base},
		Download: &DownloadHandler{Base: base, Store: db, Fetcher: fetcher, Dispatcher: files.NewDispatcher(fetcher, 0), Delay: time.Second},
		Content:  &ContentHandler{Base: base, Store: db},
		Auth:     &AuthHandler{Base: base, PublicBaseURL: "http://shop.test"},
		Account:  &AccountHandler{Base: base},
		Admin:    app.admin,
	}
	app.handler = SessionMiddleware(app.manager)(srv.Routes())
	return app
}

func (a *testApp) callCount(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[key]
}

func (a *testApp) fileURL(name string) string {
	return a.files.URL + "/files/" + name
}

// do serves req and returns the recorder.
func (a *testApp) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, cookies...)
}

// loginAs returns the auth cookie of a signed-in user with role.
func (a *testApp) loginAs(role string) []*http.Cookie {
	return a.cookiesFor(makeToken(a.t, role, time.Hour))
}

func (a *testApp) cookiesFor(token string) []*http.Cookie {
	a.t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(a.t, a.manager.SetToken(rec, req, token))
	return rec.Result().Cookies()
}

func makeToken(t *testing.T, role string, ttl time.Duration) string {
	t.Helper()
	claims := session.Claims{
		UserID:   "u-" + role,
		Email:    role + "@example.com",
		Username: role + "-name",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
