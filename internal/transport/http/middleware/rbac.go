package middleware

import (
	"net/http"

	"github.com/baechuer/account-service/internal/application/account"
)

// RequireAdmin rejects callers whose token does not carry the Admin role.
// Assumes Auth() has already injected the identity into context.
func RequireAdmin(writeErr WriteErrFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := account.RequireAdmin(IdentityFromContext(r.Context())); err != nil {
				writeErr(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
