package jobboard

import (
	"context"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-jobboard/middleware/jwtware"
)

var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// WithIdentity stores the verified identity in the context
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext returns the verified identity, if any
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return "", false
	}
	identity, ok := ctx.Value(identityCtxKey).(Identity)
	return identity, ok && identity != ""
}

// GetRouterClaims extracts the claims the session gate stored in locals
func GetRouterClaims(ctx router.Context, key string) (jwtware.Claims, bool) {
	if key == "" {
		key = "user"
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(jwtware.Claims)
	return claims, ok
}

// ContextEnricherAdapter publishes the verified identity on the std context
func ContextEnricherAdapter(c context.Context, claims jwtware.Claims) context.Context {
	if claims == nil {
		return c
	}
	return WithIdentity(c, claims.Identity())
}

// requestIdentity looks for the identity on the std context first and falls
// back to the router locals.
func requestIdentity(ctx router.Context, key string) (Identity, bool) {
	if identity, ok := IdentityFromContext(ctx.Context()); ok {
		return identity, true
	}
	if claims, ok := GetRouterClaims(ctx, key); ok && claims.Identity() != "" {
		return claims.Identity(), true
	}
	return "", false
}
