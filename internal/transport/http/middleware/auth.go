package middleware

import (
	"net/http"
	"strings"

	"github.com/baechuer/account-service/internal/domain"
)

type TokenVerifier interface {
	VerifyToken(token string) (domain.Identity, error)
}

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// Auth verifies Authorization: Bearer <token> and injects the caller identity into
// the request context. Requests without a token are rejected.
func Auth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return authenticate(verifier, writeErr, true)
}

// OptionalAuth is Auth for routes that also serve anonymous callers.
// A missing header passes through anonymous; a present but bad token is still rejected.
func OptionalAuth(verifier TokenVerifier, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return authenticate(verifier, writeErr, false)
}

func authenticate(verifier TokenVerifier, writeErr WriteErrFunc, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if h == "" {
				if required {
					writeErr(w, r, domain.ErrNotAuthenticated())
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			reject := func(err error) {
				tokenRejectionsTotal.WithLabelValues(domain.CodeOf(err)).Inc()
				writeErr(w, r, err)
			}

			parts := strings.SplitN(h, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				reject(domain.ErrTokenMalformed())
				return
			}

			raw := strings.TrimSpace(parts[1])
			if raw == "" {
				reject(domain.ErrTokenMalformed())
				return
			}

			id, err := verifier.VerifyToken(raw)
			if err != nil {
				reject(err)
				return
			}

			if !id.Authenticated() {
				reject(domain.ErrTokenMalformed())
				return
			}

			ctx := WithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
