package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/alextreichler/embroiderystore/internal/api"
	"github.com/alextreichler/embroiderystore/internal/forms"
	"github.com/alextreichler/embroiderystore/internal/session"
)

type AuthHandler struct {
	*Base
	// PublicBaseURL is where the backend sends Google sign-ins back to.
	PublicBaseURL string
}

func (h *AuthHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	if session.FromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, h.home(r), http.StatusSeeOther)
		return
	}
	h.render(w, r, "login.html", nil)
}

func (h *AuthHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.redirectWith(w, r, "/login", "error", "Email and password are required.")
		return
	}

	res, err := h.API.Login(r.Context(), email, password)
	if err != nil {
		slog.Info("Login failed", "email", email, "error", err)
		h.redirectWith(w, r, "/login", "error", api.UserMessage(err, "Invalid email or password"))
		return
	}

	if res.OTPRequired || res.Token == "" {
		if err := h.Sessions.SetPendingOTP(w, r, email); err != nil {
			slog.Error("Failed to save session", "error", err)
			http.Error(w, "Failed to save session", http.StatusInternalServerError)
			return
		}
		msg := res.Message
		if msg == "" {
			msg = "We sent a verification code to your email."
		}
		h.redirectWith(w, r, "/login/otp", "info", msg)
		return
	}
	h.signIn(w, r, res.Token)
}

func (h *AuthHandler) OTPGet(w http.ResponseWriter, r *http.Request) {
	email := h.Sessions.PendingOTP(r)
	if email == "" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, "login_otp.html", map[string]interface{}{
		"Email": email,
	})
}

func (h *AuthHandler) OTPPost(w http.ResponseWriter, r *http.Request) {
	email := h.Sessions.PendingOTP(r)
	if email == "" {
		h.redirectWith(w, r, "/login", "error", "Your login session expired. Please sign in again.")
		return
	}
	code := strings.TrimSpace(r.FormValue("otp"))
	if errs := forms.OTP(code); errs.Any() {
		h.redirectWith(w, r, "/login/otp", "error", errs["otp"])
		return
	}

	res, err := h.API.VerifyLoginOTP(r.Context(), email, code)
	if err != nil || res.Token == "" {
		slog.Info("OTP verification failed", "email", email, "error", err)
		h.redirectWith(w, r, "/login/otp", "error", api.UserMessage(err, "Invalid or expired code."))
		return
	}
	h.signIn(w, r, res.Token)
}

// GoogleStart hands the browser to the backend's Google sign-in.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.API.GoogleLoginURL(h.PublicBaseURL+"/auth/google/callback"), http.StatusFound)
}

// GoogleCallback receives the token issued after Google sign-in.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		msg := r.URL.Query().Get("error")
		if msg == "" {
			msg = "Google sign-in failed."
		}
		h.redirectWith(w, r, "/login", "error", msg)
		return
	}
	h.signIn(w, r, token)
}

// signIn stores a backend token and sends the user to their landing page.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, token string) {
	s, err := session.Decode(token)
	if err != nil {
		slog.Warn("Backend issued an unusable token", "error", err)
		h.redirectWith(w, r, "/login", "error", "Sign-in failed. Please try again.")
		return
	}
	if err := h.Sessions.SetToken(w, r, token); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	target := "/"
	if s.IsAdmin() {
		target = "/admin"
	}
	slog.Info("Login successful", "user_id", s.UserID, "role", s.Role, "redirect", target)
	h.redirectWith(w, r, target, "success", "Welcome, "+s.DisplayName()+"!")
}

func (h *AuthHandler) SignupGet(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "signup.html", nil)
}

func (h *AuthHandler) SignupPost(w http.ResponseWriter, r *http.Request) {
	in := api.SignupInput{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
	}
	if errs := forms.Signup(in.Username, in.Email, in.Password, r.FormValue("confirm")); errs.Any() {
		h.render(w, r, "signup.html", map[string]interface{}{
			"Errors": errs,
			"Values": in,
		})
		return
	}

	msg, err := h.API.Signup(r.Context(), in)
	if err != nil {
		slog.Info("Signup failed", "email", in.Email, "error", err)
		h.render(w, r, "signup.html", map[string]interface{}{
			"Errors": forms.Errors{"form": api.UserMessage(err, "Signup failed. Please try again.")},
			"Values": in,
		})
		return
	}
	if msg == "" {
		msg = "Account created. Please check your email to verify it, then sign in."
	}
	h.redirectWith(w, r, "/login", "success", msg)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s := session.FromContext(r.Context()); s.IsAuthenticated() {
		if err := h.API.As(s.Token).Logout(r.Context()); err != nil {
			slog.Warn("Backend logout failed", "error", err)
		}
	}
	if err := h.Sessions.Clear(w, r); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
	h.redirectWith(w, r, "/login", "success", "Logged out successfully!")
}

func (h *AuthHandler) ChangePasswordGet(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "change_password.html", nil)
}

func (h *AuthHandler) ChangePasswordPost(w http.ResponseWriter, r *http.Request) {
	current := r.FormValue("current")
	next := r.FormValue("new")
	if errs := forms.PasswordChange(current, next, r.FormValue("confirm")); errs.Any() {
		h.render(w, r, "change_password.html", map[string]interface{}{
			"Errors": errs,
		})
		return
	}

	msg, err := h.client(r).ChangePassword(r.Context(), current, next)
	if err != nil {
		slog.Info("Password change failed", "error", err)
		h.render(w, r, "change_password.html", map[string]interface{}{
			"Errors": forms.Errors{"form": api.UserMessage(err, "Could not change password.")},
		})
		return
	}
	if msg == "" {
		msg = "Password changed."
	}
	h.redirectWith(w, r, "/account/settings", "success", msg)
}

func (h *AuthHandler) home(r *http.Request) string {
	if session.FromContext(r.Context()).IsAdmin() {
		return "/admin"
	}
	return "/"
}
