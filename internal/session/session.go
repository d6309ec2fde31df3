// Package session decodes the backend's bearer token into the identity used
// to drive page rendering and role checks. The token is never verified here;
// the backend authorizes every request on its own.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrExpired = errors.New("session: token expired")

// Claims is the payload the backend puts in its tokens.
type Claims struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the identity of the current request.
type Session struct {
	Token     string
	UserID    string
	Email     string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// Decode reads the token payload without checking the signature.
func Decode(token string) (*Session, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: decode token: %w", err)
	}

	s := &Session{
		Token:    token,
		UserID:   firstNonEmpty(claims.UserID, claims.ID, claims.Subject),
		Email:    claims.Email,
		Username: claims.Username,
		Role:     claims.Role,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
		if !time.Now().Before(s.ExpiresAt) {
			return nil, ErrExpired
		}
	}
	return s, nil
}

// IsAuthenticated reports whether a non-expired token is present.
func (s *Session) IsAuthenticated() bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}

// HasRole is an exact role match on an authenticated session.
func (s *Session) HasRole(role string) bool {
	return s.IsAuthenticated() && s.Role == role
}

func (s *Session) IsAdmin() bool {
	return s.HasRole("admin")
}

// DisplayName is what the header shows for the user.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	return firstNonEmpty(s.Username, s.Email)
}

type ctxKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, or nil for anonymous requests.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
