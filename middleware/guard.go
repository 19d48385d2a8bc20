package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/sessiongate"
)

// debugQueryFlag enables the per-request decision trace without persisting it.
const debugQueryFlag = "sg_debug"

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Guard].
func IdentityFromContext(ctx context.Context) (sessiongate.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(sessiongate.Identity)
	return id, ok
}

// Guard returns middleware that enforces authentication under basePath. basePath
// is the canonical mount point of protected views, supplied by configuration
// rather than hardcoded per view; everything outside it passes through.
func Guard(engine *sessiongate.Engine, basePath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !underBasePath(r.URL.Path, basePath) {
				next.ServeHTTP(w, r)
				return
			}

			if engine == nil {
				unauthorized(w)
				return
			}

			ctx := r.Context()
			if r.URL.Query().Get(debugQueryFlag) == "1" {
				ctx = sessiongate.WithDebugLogging(ctx, true)
			}

			tok, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			identity, err := engine.ValidateToken(ctx, tok)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin returns middleware that additionally rejects non-admin identities
// with 403. Must run inside [Guard].
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok || !identity.IsAdmin {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func underBasePath(path, basePath string) bool {
	if basePath == "" || basePath == "/" {
		return true
	}
	basePath = strings.TrimSuffix(basePath, "/")
	return path == basePath || strings.HasPrefix(path, basePath+"/")
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	tok := value[len(bearer):]
	if tok == "" {
		return "", false
	}

	return tok, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
