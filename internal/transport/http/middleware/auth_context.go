package middleware

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
	pkgctx "github.com/baechuer/account-service/internal/pkg/context"
)

type ctxKey string

const ctxIdentity ctxKey = "identity"

// WithIdentity stores the caller and tags the context for log correlation.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	if id.AccountID != "" {
		ctx = pkgctx.WithAccountID(ctx, id.AccountID)
	}
	return context.WithValue(ctx, ctxIdentity, id)
}

// IdentityFromContext returns the caller identity; the zero value means anonymous.
func IdentityFromContext(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(ctxIdentity).(domain.Identity)
	return id
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id := IdentityFromContext(ctx)
	return id.AccountID, id.Authenticated()
}

func RoleFromContext(ctx context.Context) (domain.Role, bool) {
	id := IdentityFromContext(ctx)
	return id.Role, id.Authenticated()
}
