package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// ErrSessionExpired reports that the backend rejected the session token. By
// the time a caller sees it, the session has been cleared and observers have
// been notified; no further error handling is expected from the caller.
var ErrSessionExpired = errors.New("session expired")

// Transport attaches the bearer token to every outgoing request and watches
// every response for token failures, forcing a logout when one is detected.
// It preempts whichever call happened to hit the failure.
type Transport struct {
	Base    http.RoundTripper
	Session *Session
	Logger  *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Session != nil {
		if token := t.Session.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if t.Session == nil || !t.isTokenError(resp) {
		return resp, nil
	}

	resp.Body.Close()
	if t.Logger != nil {
		t.Logger.WarnContext(req.Context(), "Token error detected, clearing session", "status", resp.StatusCode)
	}
	if err := t.Session.Logout(); err != nil && t.Logger != nil {
		t.Logger.ErrorContext(req.Context(), "Error clearing session", "error", err)
	}
	return nil, ErrSessionExpired
}

// isTokenError matches the backend's assorted ways of signalling an invalid
// session: 401/403, or an error message mentioning the token. The message
// match is deliberately broad because the backend's auth middleware is not
// consistent about status codes.
func (t *Transport) isTokenError(resp *http.Response) bool {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return true
	}
	if resp.StatusCode < 400 {
		return false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return false
	}

	msg := strings.ToLower(parsed.Message)
	for _, marker := range []string{"token", "unauthorized", "expired", "invalid"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
