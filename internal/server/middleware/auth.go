// Package middleware provides HTTP middleware shared by the preview server's
// routes.
package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const (
	tokenKey     ContextKey = "bearerToken"
	requestIDKey ContextKey = "requestID"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies a stored token when the request carries none.
type TokenSource interface {
	Load() (string, error)
}

// ErrMalformedAuthorization is returned for an Authorization header that is
// not a bearer token.
var ErrMalformedAuthorization = errors.New("authorization header must be 'Bearer <token>'")

// BearerToken extracts the caller's bearer token into the request context so
// handlers can forward it to the backend. Requests without an Authorization
// header fall back to fallback, which may be nil, but only when they come from
// a local origin: a page on another site never acts as the stored login. A
// present but malformed header is rejected with 401. Tokens are not verified
// here; the backend is the authority.
func BearerToken(fallback TokenSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ParseAuthorization(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if token == "" && fallback != nil && LocalRequest(r) {
				// A missing stored token just means anonymous
				token, _ = fallback.Load()
			}
			if token != "" {
				r = r.WithContext(context.WithValue(r.Context(), tokenKey, token))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LocalRequest reports whether r was sent by a local client: no Origin header
// (CLI tools, curl) or a loopback origin, and not marked cross-site by the
// browser.
func LocalRequest(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Site") == "cross-site" {
		return false
	}
	origin := r.Header.Get("Origin")
	return origin == "" || LoopbackOrigin(origin)
}

// LoopbackOrigin reports whether origin is an http(s) origin on localhost or
// a loopback address. The opaque "null" origin is not loopback.
func LoopbackOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ParseAuthorization returns the token of a "Bearer <token>" header value.
// An empty header yields an empty token and no error.
func ParseAuthorization(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", nil
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedAuthorization
	}
	return parts[1], nil
}

// Token returns the bearer token stored by BearerToken, or "".
func Token(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// RequestID tags every request with an id, reusing a valid incoming one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// GetRequestID returns the id assigned by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
