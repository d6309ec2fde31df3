package handlers

import (
	"net/http"

	"github.com/alextreichler/embroiderystore/internal/metrics"
	"github.com/alextreichler/embroiderystore/internal/models"
)

// Server groups the page handlers behind one route table.
type Server struct {
	Home     *HomeHandler
	Download *DownloadHandler
	Content  *ContentHandler
	Auth     *AuthHandler
	Account  *AccountHandler
	Admin    *AdminHandler

	StaticDir string
	// Limiter throttles the credential and code posts.
	Limiter *RateLimiter
}

// Routes builds the route table. Pages for customers require the user role
// and the back-office requires the admin role; see RequireRole.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	limit := func(next http.HandlerFunc) http.HandlerFunc {
		if s.Limiter == nil {
			return next
		}
		return s.Limiter.Middleware(next)
	}
	user := func(next http.HandlerFunc) http.HandlerFunc { return RequireRole(models.RoleUser, next) }
	admin := func(next http.HandlerFunc) http.HandlerFunc { return RequireRole(models.RoleAdmin, next) }
	signedIn := func(next http.HandlerFunc) http.HandlerFunc { return RequireRole("", next) }

	// Static Files
	if s.StaticDir != "" {
		fileServer := http.FileServer(http.Dir(s.StaticDir))
		mux.Handle("GET /static/", http.StripPrefix("/static", fileServer))
	}
	mux.Handle("GET /metrics", metrics.Handler())

	// Public Routes
	mux.HandleFunc("GET /{$}", s.Home.Index)
	mux.HandleFunc("GET /category/{name}", s.Home.Category)
	mux.HandleFunc("GET /products/{id}", s.Home.Product)
	mux.HandleFunc("GET /products/{id}/download", signedIn(s.Download.Download))
	mux.HandleFunc("GET /faq", s.Content.FAQ)
	mux.HandleFunc("GET /terms", s.Content.Page("terms"))
	mux.HandleFunc("GET /privacy", s.Content.Page("privacy"))

	// Auth
	mux.HandleFunc("GET /login", s.Auth.LoginGet)
	mux.HandleFunc("POST /login", limit(s.Auth.LoginPost))
	mux.HandleFunc("GET /login/otp", s.Auth.OTPGet)
	mux.HandleFunc("POST /login/otp", limit(s.Auth.OTPPost))
	mux.HandleFunc("GET /signup", s.Auth.SignupGet)
	mux.HandleFunc("POST /signup", limit(s.Auth.SignupPost))
	mux.HandleFunc("GET /auth/google", s.Auth.GoogleStart)
	mux.HandleFunc("GET /auth/google/callback", s.Auth.GoogleCallback)
	mux.HandleFunc("POST /logout", s.Auth.Logout)
	mux.HandleFunc("GET /account/password", signedIn(s.Auth.ChangePasswordGet))
	mux.HandleFunc("POST /account/password", signedIn(limit(s.Auth.ChangePasswordPost)))

	// Customer
	mux.HandleFunc("GET /cart", user(s.Account.Cart))
	mux.HandleFunc("POST /cart/add", user(s.Account.CartAdd))
	mux.HandleFunc("POST /cart/remove", user(s.Account.CartRemove))
	mux.HandleFunc("POST /checkout", user(s.Account.Checkout))
	mux.HandleFunc("GET /account/orders", user(s.Account.MyOrders))
	mux.HandleFunc("POST /wishlist", user(s.Account.WishlistAdd))
	mux.HandleFunc("GET /account/settings", signedIn(s.Account.Settings))
	mux.HandleFunc("POST /account/settings", signedIn(s.Account.SaveSettings))
	mux.HandleFunc("POST /account/2fa/send", signedIn(limit(s.Account.TwoFactorSend)))
	mux.HandleFunc("POST /account/2fa/verify", signedIn(limit(s.Account.TwoFactorVerify)))

	// Back-office
	mux.HandleFunc("GET /admin", admin(s.Admin.Dashboard))
	mux.HandleFunc("GET /admin/designs", admin(s.Admin.ListDesigns))
	mux.HandleFunc("GET /admin/designs/new", admin(s.Admin.AddDesignForm))
	mux.HandleFunc("POST /admin/designs", admin(s.Admin.CreateDesign))
	mux.HandleFunc("GET /admin/designs/{id}/edit", admin(s.Admin.EditDesignForm))
	mux.HandleFunc("POST /admin/designs/{id}", admin(s.Admin.UpdateDesign))
	mux.HandleFunc("POST /admin/designs/{id}/delete", admin(s.Admin.DeleteDesign))
	mux.HandleFunc("POST /admin/designs/{id}/formats/{format}/delete", admin(s.Admin.DeleteFormat))

	mux.HandleFunc("GET /admin/orders", admin(s.Admin.ListOrders))
	mux.HandleFunc("GET /admin/orders/{id}", admin(s.Admin.OrderDetail))
	mux.HandleFunc("POST /admin/orders/{id}/status", admin(s.Admin.UpdateOrderStatus))
	mux.HandleFunc("POST /admin/orders/{id}/retry-email", admin(s.Admin.RetryEmail))

	mux.HandleFunc("GET /admin/customers", admin(s.Admin.ListCustomers))
	mux.HandleFunc("GET /admin/customers/{id}", admin(s.Admin.EditCustomerForm))
	mux.HandleFunc("POST /admin/customers/{id}", admin(s.Admin.UpdateCustomer))

	mux.HandleFunc("GET /admin/content", admin(s.Content.AdminIndex))
	mux.HandleFunc("POST /admin/content/pages/{slug}", admin(s.Content.SavePage))
	mux.HandleFunc("POST /admin/content/faq", admin(s.Content.CreateFAQ))
	mux.HandleFunc("POST /admin/content/faq/{id}", admin(s.Content.UpdateFAQ))
	mux.HandleFunc("POST /admin/content/faq/{id}/delete", admin(s.Content.DeleteFAQ))

	return mux
}
