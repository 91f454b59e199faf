package http

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"inno-quiz-service/internal/auth"
)

var errUnauthenticated = errors.New("authentication required")

// Identity resolves the authenticated username of a request. With token auth
// enabled it reads a bearer token (header, access_token cookie or token query
// parameter); otherwise it trusts the X-Username header set by an upstream gateway.
type Identity struct {
	tokens *auth.Tokens
}

func NewIdentity(tokens *auth.Tokens) *Identity {
	return &Identity{tokens: tokens}
}

func (i *Identity) Username(r *http.Request) (string, error) {
	if i.tokens == nil {
		if username := strings.TrimSpace(r.Header.Get("X-Username")); username != "" {
			return username, nil
		}
		return "", errUnauthenticated
	}
	raw := bearer(r.Header.Get("Authorization"))
	if raw == "" {
		if cookie, err := r.Cookie("access_token"); err == nil {
			raw = bearer(cookie.Value)
		}
	}
	if raw == "" {
		raw = r.URL.Query().Get("token")
	}
	if raw == "" {
		return "", errUnauthenticated
	}
	username, err := i.tokens.Verify(raw)
	if err != nil {
		return "", errUnauthenticated
	}
	return username, nil
}

func bearer(value string) string {
	const prefix = "Bearer "
	if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		return strings.TrimSpace(value[len(prefix):])
	}
	return strings.TrimSpace(value)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack keeps websocket upgrades working behind the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

// LogRequests logs one line per request.
func LogRequests(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
