package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sakif/taskboard/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. A package-private key type
// means only THIS package can create a key of type contextKey, so no other
// package can read or shadow the identity stored here.
type contextKey string

const identityKey contextKey = "identity"

// Messages returned by RequireAuth. They are part of the public API contract
// (the frontend shows them), so they are fixed strings.
const (
	MsgNoToken      = "No token provided"
	MsgInvalidToken = "Invalid token"
)

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the "Authorization: Bearer <token>" header, verifies the token,
// and stores the caller's Identity in the request context:
//
//	no header / empty token  → 401 "No token provided" (handler never runs)
//	bad or expired token     → 401 "Invalid token"
//	valid token              → next handler, with Identity in ctx
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeUnauthorized(w, MsgNoToken)
				return
			}

			id, err := tokens.Verify(raw)
			if err != nil {
				writeUnauthorized(w, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
// RequireAuth uses it; tests use it to call handlers directly.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the authenticated caller from the request
// context. Returns false on routes that are not behind RequireAuth.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && id.UserID > 0
}

// UserIDFromContext is a shortcut for IdentityFromContext(ctx).UserID.
//
// Usage in handlers:
//
//	userID, ok := auth.UserIDFromContext(r.Context())
//	if !ok {
//	    // not authenticated
//	}
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively. Anything else yields "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
