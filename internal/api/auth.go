package api

import (
	"context"
	"net/http"
	"net/url"
)

// LoginResult is either a token or a request for the emailed code.
type LoginResult struct {
	Token       string `json:"token"`
	OTPRequired bool   `json:"requires_otp"`
	Message     string `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyLoginOTP exchanges the emailed code for a token.
func (c *Client) VerifyLoginOTP(ctx context.Context, email, otp string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "otp": otp}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login/verify-otp", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Signup(ctx context.Context, in SignupInput) (string, error) {
	var msg Message
	err := c.sendJSON(ctx, http.MethodPost, "/auth/signup", in, &msg)
	return msg.Message, err
}

// Send2FACode emails a code used to turn on two-factor login.
func (c *Client) Send2FACode(ctx context.Context) (string, error) {
	var msg Message
	err := c.sendJSON(ctx, http.MethodPost, "/auth/2fa/send-otp", nil, &msg)
	return msg.Message, err
}

func (c *Client) Verify2FACode(ctx context.Context, otp string) (string, error) {
	var msg Message
	err := c.sendJSON(ctx, http.MethodPost, "/auth/2fa/verify-otp", map[string]string{"otp": otp}, &msg)
	return msg.Message, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) (string, error) {
	var msg Message
	body := map[string]string{"current_password": current, "new_password": next}
	err := c.sendJSON(ctx, http.MethodPost, "/auth/change-password", body, &msg)
	return msg.Message, err
}

// GoogleLoginURL is where the browser goes to start Google sign-in. The
// backend sends it back to callback with ?token=.
func (c *Client) GoogleLoginURL(callback string) string {
	return c.BaseURL + "/auth/google?redirect_uri=" + url.QueryEscape(callback)
}
