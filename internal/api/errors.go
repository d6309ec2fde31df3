package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %s: %d %s", e.Endpoint, e.Status, e.Message)
}

func newAPIError(status int, endpoint string, body []byte) *APIError {
	e := &APIError{Status: status, Endpoint: endpoint}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Kind int

const (
	KindGeneric Kind = iota
	KindNetwork
	KindTimeout
	KindServer
)

// Classify sorts an error into the categories shown to users.
func Classify(err error) Kind {
	if err == nil {
		return KindGeneric
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return KindServer
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.As(err, &urlErr) {
		return KindNetwork
	}
	return KindGeneric
}

// UserMessage turns err into the sentence shown in a flash message.
func UserMessage(err error, fallback string) string {
	switch Classify(err) {
	case KindNetwork:
		return "Network error. Please check your connection and try again."
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindServer:
		var apiErr *APIError
		errors.As(err, &apiErr)
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
	}
	return fallback
}
