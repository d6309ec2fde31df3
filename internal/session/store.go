package session

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	cookieName  = "auth-session"
	tokenKey    = "token"
	otpEmailKey = "otp_email"
)

// Manager keeps the token in a signed cookie session.
type Manager struct {
	Store sessions.Store
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{Store: store}
}

// Load decodes the token of the request once. Expired or broken tokens are
// dropped from the cookie and the request continues anonymously.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) *Session {
	sess, _ := m.Store.Get(r, cookieName)
	token, _ := sess.Values[tokenKey].(string)
	if token == "" {
		return nil
	}
	s, err := Decode(token)
	if err != nil {
		slog.Info("Dropping unusable token", "error", err, "path", r.URL.Path)
		delete(sess.Values, tokenKey)
		if err := sess.Save(r, w); err != nil {
			slog.Error("Failed to save session", "error", err)
		}
		return nil
	}
	return s
}

// SetToken stores a freshly issued token.
func (m *Manager) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := m.Store.Get(r, cookieName)
	sess.Values[tokenKey] = token
	delete(sess.Values, otpEmailKey)
	return sess.Save(r, w)
}

// Clear removes the token, used on logout.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.Store.Get(r, cookieName)
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// SetPendingOTP remembers which email is waiting for its login code.
func (m *Manager) SetPendingOTP(w http.ResponseWriter, r *http.Request, email string) error {
	sess, _ := m.Store.Get(r, cookieName)
	sess.Values[otpEmailKey] = email
	return sess.Save(r, w)
}

func (m *Manager) PendingOTP(r *http.Request) string {
	sess, _ := m.Store.Get(r, cookieName)
	email, _ := sess.Values[otpEmailKey].(string)
	return email
}
