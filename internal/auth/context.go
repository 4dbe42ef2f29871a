package auth

import (
	"context"

	"github.com/jeeyuni/clone-junglebook/internal/model"
)

type contextKey string

const identityContextKey contextKey = "jbIdentity"

// WithIdentity attaches the authenticated identity to the context.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity from context if present.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	return identity, ok && identity != nil
}
